package active_test

import (
	"context"
	"math/rand"
	"strconv"
	"testing"

	"curator/internal/active"
	"curator/internal/classifier"
	"curator/internal/cluster"
	"curator/internal/dataset"
	"curator/internal/entropy"
	"curator/internal/metrics"
	"curator/internal/oracle"
)

// blobs generates n cases around well-separated 2D centers, one per class,
// with a little deterministic jitter.
func blobs(prefix string, n int, classes []string, rng *rand.Rand) ([]dataset.Case, map[string]string) {
	centers := map[string][2]float64{
		classes[0]: {0, 0},
		classes[1]: {10, 0},
		classes[2]: {5, 10},
	}
	cases := make([]dataset.Case, n)
	labels := make(map[string]string, n)
	for i := 0; i < n; i++ {
		class := classes[i%len(classes)]
		center := centers[class]
		id := prefix + "-" + class + "-" + strconv.Itoa(i)
		cases[i] = dataset.Case{
			ID: id,
			Features: []float64{
				center[0] + rng.NormFloat64(),
				center[1] + rng.NormFloat64(),
			},
		}
		labels[id] = class
	}
	return cases, labels
}

// The full pipeline on synthetic data: three separable classes, a 60-case
// labelled pool split 18 seed / 42 test, a 200-case unlabelled pool, and
// fifteen rounds of twelve, ending at 198 training cases.
func TestLoop_EndToEnd(t *testing.T) {
	if testing.Short() {
		t.Skip("full pipeline run")
	}
	classes := []string{"alpha", "beta", "gamma"}
	rng := rand.New(rand.NewSource(99))

	labelledCases, truth := blobs("l", 60, classes, rng)
	var labelled dataset.LabelledSet
	for _, c := range labelledCases {
		labelled = append(labelled, c.WithLabel(truth[c.ID]))
	}
	pool, poolTruth := blobs("p", 200, classes, rng)

	loop := &active.Loop{
		Classifier: &classifier.Softmax{Epochs: 150, LearningRate: 0.5, L2: 1e-4},
		Oracle:     oracle.NewLookup(poolTruth),
		Evaluator:  metrics.Evaluator{},
		Selector:   &active.Selector{Entropy: entropy.Scorer{}, Linkage: cluster.Ward},
		Config:     active.LoopConfig{SeedPerClass: 6, PerRound: 12, Rounds: 15, Seed: 5},
	}

	res, err := loop.Run(context.Background(), labelled, pool)
	if err != nil {
		t.Fatal(err)
	}

	if len(res.Seed) != 18 || len(res.TestSet) != 42 {
		t.Fatalf("split: got %d seed / %d test, want 18 / 42", len(res.Seed), len(res.TestSet))
	}
	if len(res.Results) != 15 {
		t.Fatalf("results: got %d, want 15", len(res.Results))
	}
	if got := len(res.Final.Labelled); got != 198 {
		t.Errorf("final training size: got %d, want 198", got)
	}
	for i, r := range res.Results {
		if want := 18 + i*12; r.TrainingSize != want {
			t.Errorf("round %d training size: got %d, want %d", r.Round, r.TrainingSize, want)
		}
	}

	final := res.FinalRecord()
	if final["accuracy"] < 0.9 {
		t.Errorf("final accuracy %.3f on separable blobs, want >= 0.9", final["accuracy"])
	}
	if final["macro_auc"] < 0.9 {
		t.Errorf("final macro AUC %.3f on separable blobs, want >= 0.9", final["macro_auc"])
	}
}

// An active run followed by the significance test against random
// selection, wired exactly as the compare command does it.
func TestMonteCarlo_EndToEnd(t *testing.T) {
	if testing.Short() {
		t.Skip("full pipeline run")
	}
	classes := []string{"alpha", "beta", "gamma"}
	rng := rand.New(rand.NewSource(7))

	labelledCases, truth := blobs("l", 60, classes, rng)
	var labelled dataset.LabelledSet
	for _, c := range labelledCases {
		labelled = append(labelled, c.WithLabel(truth[c.ID]))
	}
	pool, poolTruth := blobs("p", 120, classes, rng)

	clf := &classifier.Softmax{Epochs: 150, LearningRate: 0.5, L2: 1e-4}
	orc := oracle.NewLookup(poolTruth)

	loop := &active.Loop{
		Classifier: clf,
		Oracle:     orc,
		Evaluator:  metrics.Evaluator{},
		Selector:   &active.Selector{Entropy: entropy.Scorer{}, Linkage: cluster.Ward},
		Config:     active.LoopConfig{SeedPerClass: 6, PerRound: 10, Rounds: 4, Seed: 3},
	}
	res, err := loop.Run(context.Background(), labelled, pool)
	if err != nil {
		t.Fatal(err)
	}

	sampled := 0
	for _, r := range res.Results {
		sampled += len(r.Batch)
	}

	mc := &active.MonteCarlo{
		Classifier: clf,
		Oracle:     orc,
		Evaluator:  metrics.Evaluator{},
		Config:     active.MonteCarloConfig{Trials: 10, SampleSize: sampled, Parallel: 4, Seed: 1000},
	}
	dist, err := mc.Run(context.Background(), res.Seed, pool, res.TestSet)
	if err != nil {
		t.Fatal(err)
	}
	if len(dist.Trials) != 10 {
		t.Fatalf("trials: got %d, want 10", len(dist.Trials))
	}

	p, err := dist.PValue("macro_auc", res.FinalRecord()["macro_auc"])
	if err != nil {
		t.Fatal(err)
	}
	if p < 0 || p > 1 {
		t.Errorf("p-value %g out of range", p)
	}
}
