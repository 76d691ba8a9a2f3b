package active

import (
	"context"
	"fmt"
	"math"
	"runtime"

	"golang.org/x/sync/errgroup"

	"curator/internal/cluster"
	"curator/internal/dataset"
	"curator/internal/entropy"
	"curator/internal/logging"
)

// probSumTolerance bounds how far a probability vector may drift from 1.
const probSumTolerance = 1e-6

// Selector picks the per-round batch: it clusters the candidate pool in
// raw feature space so the batch stays representative, then keeps the
// highest-entropy member of each cluster so every pick is informative.
// Pure uncertainty sampling tends to pick near-duplicate boundary cases;
// clustering on features (not on model output) breaks that failure mode.
type Selector struct {
	Entropy  entropy.Scorer
	Linkage  cluster.Linkage
	Parallel int // concurrent predictions; <=0 means GOMAXPROCS
}

// Select scores every candidate with the model, clusters the pool into
// min(k, len(pool)) groups, and returns the max-entropy member of each
// cluster tagged with its cluster ID and score. An empty pool yields an
// empty batch and no error. Malformed model output fails with
// ErrValidation; prediction failures propagate unchanged.
func (s *Selector) Select(ctx context.Context, model Model, pool []dataset.Case, k int) (SelectionBatch, error) {
	if len(pool) == 0 {
		return SelectionBatch{}, nil
	}
	if k <= 0 {
		return nil, fmt.Errorf("selector: batch size must be positive, got %d", k)
	}

	probs, err := s.predictAll(ctx, model, pool)
	if err != nil {
		return nil, err
	}

	features := make([][]float64, len(pool))
	for i, c := range pool {
		features[i] = c.Features
	}
	labels, err := cluster.Assign(features, k, s.Linkage)
	if err != nil {
		return nil, fmt.Errorf("selector: %w", err)
	}

	// One winner per cluster: highest entropy, first occurrence wins ties.
	nClusters := 0
	for _, id := range labels {
		if id+1 > nClusters {
			nClusters = id + 1
		}
	}
	winner := make([]int, nClusters)
	score := make([]float64, nClusters)
	for i := range winner {
		winner[i] = -1
		score[i] = math.Inf(-1)
	}
	for i := range pool {
		h := s.Entropy.Score(probs[i])
		id := labels[i]
		if h > score[id] {
			winner[id] = i
			score[id] = h
		}
	}

	batch := make(SelectionBatch, 0, nClusters)
	for id := 0; id < nClusters; id++ {
		batch = append(batch, SelectedCase{
			Case:      pool[winner[id]],
			ClusterID: id,
			Entropy:   score[id],
		})
	}

	logging.New("selector").Debug("batch selected",
		"pool", len(pool), "requested", k, "clusters", nClusters, "linkage", s.Linkage.String())
	return batch, nil
}

// predictAll runs model inference over the pool with a bounded worker
// pool. Outputs are pure functions of (model, case), so workers share
// nothing but the result slice, each writing its own index.
func (s *Selector) predictAll(ctx context.Context, model Model, pool []dataset.Case) ([]map[string]float64, error) {
	classes := model.Classes()
	probs := make([]map[string]float64, len(pool))

	limit := s.Parallel
	if limit <= 0 {
		limit = runtime.GOMAXPROCS(0)
	}
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(limit)
	for i := range pool {
		i := i
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			p, err := model.Predict(pool[i])
			if err != nil {
				return fmt.Errorf("predict case %s: %w", pool[i].ID, err)
			}
			if err := validateProbs(pool[i].ID, classes, p); err != nil {
				return err
			}
			probs[i] = p
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return probs, nil
}

// validateProbs rejects probability maps whose vocabulary differs from the
// model's or whose mass does not sum to ~1. Silent acceptance here would
// corrupt every downstream comparison, so this is a hard failure.
func validateProbs(caseID string, classes []string, probs map[string]float64) error {
	if len(probs) != len(classes) {
		return fmt.Errorf("case %s: %w: got %d classes, want %d", caseID, ErrValidation, len(probs), len(classes))
	}
	var sum float64
	for _, class := range classes {
		p, ok := probs[class]
		if !ok {
			return fmt.Errorf("case %s: %w: class %q missing", caseID, ErrValidation, class)
		}
		if p < 0 || p > 1 {
			return fmt.Errorf("case %s: %w: probability %g for class %q out of range", caseID, ErrValidation, p, class)
		}
		sum += p
	}
	if math.Abs(sum-1) > probSumTolerance {
		return fmt.Errorf("case %s: %w: probabilities sum to %g", caseID, ErrValidation, sum)
	}
	return nil
}
