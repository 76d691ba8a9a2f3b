package active

import (
	"context"
	"errors"
	"testing"

	"curator/internal/dataset"
	"curator/internal/entropy"
)

func poolOf(features ...[]float64) []dataset.Case {
	pool := make([]dataset.Case, len(features))
	for i, f := range features {
		pool[i] = dataset.Case{ID: string(rune('a' + i)), Features: f}
	}
	return pool
}

func uniformModel(classes ...string) *fakeModel {
	return &fakeModel{classes: classes}
}

func TestSelect_OnePerCluster(t *testing.T) {
	// Two tight blobs; the higher-entropy member of each must win.
	pool := poolOf(
		[]float64{0, 0},   // a: blob 1
		[]float64{0.1, 0}, // b: blob 1
		[]float64{9, 0},   // c: blob 2
		[]float64{9.1, 0}, // d: blob 2
	)
	model := &fakeModel{
		classes: []string{"x", "y"},
		probs: map[string]map[string]float64{
			"a": {"x": 0.9, "y": 0.1},
			"b": {"x": 0.5, "y": 0.5}, // max entropy in blob 1
			"c": {"x": 0.6, "y": 0.4}, // max entropy in blob 2
			"d": {"x": 1.0, "y": 0.0},
		},
	}

	s := &Selector{Entropy: entropy.Scorer{}}
	batch, err := s.Select(context.Background(), model, pool, 2)
	if err != nil {
		t.Fatal(err)
	}
	if len(batch) != 2 {
		t.Fatalf("batch size: got %d, want 2", len(batch))
	}

	ids := map[string]bool{}
	clusters := map[int]bool{}
	for _, sc := range batch {
		ids[sc.Case.ID] = true
		if clusters[sc.ClusterID] {
			t.Errorf("duplicate cluster id %d", sc.ClusterID)
		}
		clusters[sc.ClusterID] = true
	}
	if !ids["b"] || !ids["c"] {
		t.Errorf("selected %v, want {b, c}", ids)
	}
}

func TestSelect_ClampsToPoolSize(t *testing.T) {
	pool := poolOf(
		[]float64{0}, []float64{1}, []float64{2}, []float64{3}, []float64{4},
	)
	s := &Selector{Entropy: entropy.Scorer{}}
	batch, err := s.Select(context.Background(), uniformModel("x", "y"), pool, 12)
	if err != nil {
		t.Fatal(err)
	}
	if len(batch) != 5 {
		t.Fatalf("batch size: got %d, want 5 (clamped)", len(batch))
	}
	clusters := map[int]bool{}
	for _, sc := range batch {
		clusters[sc.ClusterID] = true
	}
	if len(clusters) != 5 {
		t.Errorf("got %d distinct clusters, want 5", len(clusters))
	}
}

func TestSelect_EmptyPool(t *testing.T) {
	s := &Selector{Entropy: entropy.Scorer{}}
	batch, err := s.Select(context.Background(), uniformModel("x", "y"), nil, 3)
	if err != nil {
		t.Fatal(err)
	}
	if len(batch) != 0 {
		t.Errorf("batch size: got %d, want 0", len(batch))
	}
}

func TestSelect_TieBrokenByFirstOccurrence(t *testing.T) {
	// All uniform predictions: every entropy ties, so the first member of
	// the single cluster must win.
	pool := poolOf([]float64{0}, []float64{0.1}, []float64{0.2})
	s := &Selector{Entropy: entropy.Scorer{}}
	batch, err := s.Select(context.Background(), uniformModel("x", "y"), pool, 1)
	if err != nil {
		t.Fatal(err)
	}
	if len(batch) != 1 || batch[0].Case.ID != "a" {
		t.Errorf("got %v, want case a", batch)
	}
}

func TestSelect_MalformedProbabilities(t *testing.T) {
	pool := poolOf([]float64{0}, []float64{1})

	tests := []struct {
		name  string
		probs map[string]float64
	}{
		{"does not sum to one", map[string]float64{"x": 0.7, "y": 0.7}},
		{"wrong class count", map[string]float64{"x": 1.0}},
		{"unknown class", map[string]float64{"x": 0.5, "z": 0.5}},
		{"negative probability", map[string]float64{"x": 1.5, "y": -0.5}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			model := &fakeModel{
				classes: []string{"x", "y"},
				probs:   map[string]map[string]float64{"a": tt.probs, "b": {"x": 0.5, "y": 0.5}},
			}
			s := &Selector{Entropy: entropy.Scorer{}}
			_, err := s.Select(context.Background(), model, pool, 2)
			if !errors.Is(err, ErrValidation) {
				t.Errorf("got %v, want ErrValidation", err)
			}
		})
	}
}

func TestSelect_PredictionErrorPropagates(t *testing.T) {
	pool := poolOf([]float64{0})
	model := &fakeModel{classes: []string{"x", "y"}, err: ErrPrediction}
	s := &Selector{Entropy: entropy.Scorer{}}
	_, err := s.Select(context.Background(), model, pool, 1)
	if !errors.Is(err, ErrPrediction) {
		t.Errorf("got %v, want ErrPrediction", err)
	}
}

func TestSelect_BatchMembersComeFromPool(t *testing.T) {
	pool := poolOf(
		[]float64{0, 1}, []float64{2, 3}, []float64{50, 1}, []float64{52, 2},
		[]float64{100, 0}, []float64{101, 5},
	)
	s := &Selector{Entropy: entropy.Scorer{}, Parallel: 2}
	batch, err := s.Select(context.Background(), uniformModel("x", "y", "z"), pool, 3)
	if err != nil {
		t.Fatal(err)
	}
	inPool := map[string]bool{}
	for _, c := range pool {
		inPool[c.ID] = true
	}
	for _, sc := range batch {
		if !inPool[sc.Case.ID] {
			t.Errorf("case %s not in the candidate pool", sc.Case.ID)
		}
	}
}
