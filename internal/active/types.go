// Package active implements the selection-and-iteration engine: the
// diversity-aware uncertainty sampler, the iteration state machine that
// grows the training set across rounds, and the Monte Carlo comparison
// that estimates how likely random selection is to match informed
// selection. Classifier, pseudolabel oracle, and evaluation are external
// collaborators supplied by the caller.
package active

import (
	"curator/internal/dataset"
	"curator/internal/metrics"
)

// Model is a trained artifact. Predict returns a per-class probability
// map summing to 1; Classes returns the vocabulary in stable order.
type Model interface {
	Predict(c dataset.Case) (map[string]float64, error)
	Classes() []string
}

// Classifier trains models from labelled sets. Train fails with
// ErrTraining when the set is empty or has fewer than 2 distinct classes.
type Classifier interface {
	Train(set dataset.LabelledSet) (Model, error)
}

// Oracle assigns ground-truth labels to selected cases. Label fails with
// ErrLookup when any identifier is unknown; it never returns a partially
// labelled batch.
type Oracle interface {
	Label(cases []dataset.Case) ([]dataset.Case, error)
}

// Evaluator measures a model against the frozen test set. Pure: no side
// effects on the model or the set.
type Evaluator interface {
	Evaluate(model metrics.Predictor, testSet dataset.LabelledSet) (metrics.Summary, error)
}

// SelectedCase is one pool member chosen in a round, annotated with the
// cluster it represented and its uncertainty score.
type SelectedCase struct {
	Case      dataset.Case `json:"case"`
	ClusterID int          `json:"cluster_id"`
	Entropy   float64      `json:"entropy"`
}

// SelectionBatch is the set of cases chosen in one round, exactly
// min(K, pool size) entries, one per cluster.
type SelectionBatch []SelectedCase

// Cases returns the bare cases of the batch.
func (b SelectionBatch) Cases() []dataset.Case {
	out := make([]dataset.Case, len(b))
	for i, sc := range b {
		out[i] = sc.Case
	}
	return out
}

// IDs returns the batch's case identifiers.
func (b SelectionBatch) IDs() []string {
	out := make([]string, len(b))
	for i, sc := range b {
		out[i] = sc.Case.ID
	}
	return out
}

// IterationResult is the immutable snapshot of one round: the metrics of
// the model trained at the start of the round, the batch selected with
// that model, and the training-set size the model saw.
type IterationResult struct {
	Round        int             `json:"round"`
	Summary      metrics.Summary `json:"summary"`
	Batch        SelectionBatch  `json:"batch"`
	TrainingSize int             `json:"training_size"`
}
