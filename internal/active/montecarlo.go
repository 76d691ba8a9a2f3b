package active

import (
	"context"
	"fmt"
	"math/rand"
	"runtime"

	"golang.org/x/sync/errgroup"

	"curator/internal/dataset"
	"curator/internal/logging"
	"curator/internal/metrics"
)

// MonteCarloConfig controls the significance test.
type MonteCarloConfig struct {
	Trials     int
	SampleSize int
	Parallel   int   // concurrent trials; <=0 means GOMAXPROCS
	Seed       int64 // base seed; trial i derives its own RNG from Seed+i
}

func (c MonteCarloConfig) validate() error {
	if c.Trials <= 0 {
		return fmt.Errorf("monte carlo config: trial count must be positive, got %d", c.Trials)
	}
	if c.SampleSize <= 0 {
		return fmt.Errorf("monte carlo config: sample size must be positive, got %d", c.SampleSize)
	}
	return nil
}

// Trial is one completed random-selection repetition.
type Trial struct {
	Index     int            `json:"index"`
	SampleIDs []string       `json:"sample_ids"`
	Record    metrics.Record `json:"record"`
}

// Distribution is the set of completed trials.
type Distribution struct {
	Trials []Trial `json:"trials"`
}

// PValue is the fraction of trials whose metric meets or beats the
// active-learning run's value: an empirical estimate of the probability
// that blind selection does as well as informed selection.
func (d Distribution) PValue(metric string, activeValue float64) (float64, error) {
	if len(d.Trials) == 0 {
		return 0, fmt.Errorf("p-value: no trials")
	}
	atLeast := 0
	for _, t := range d.Trials {
		v, ok := t.Record[metric]
		if !ok {
			return 0, fmt.Errorf("p-value: trial %d has no metric %q", t.Index, metric)
		}
		if v >= activeValue {
			atLeast++
		}
	}
	return float64(atLeast) / float64(len(d.Trials)), nil
}

// Values returns the trials' values for one metric, in trial order.
func (d Distribution) Values(metric string) []float64 {
	out := make([]float64, 0, len(d.Trials))
	for _, t := range d.Trials {
		out = append(out, t.Record[metric])
	}
	return out
}

// MonteCarlo estimates the null distribution: what informed selection is
// being compared against. Each trial draws a uniform random sample of the
// same size the active run labelled, trains on initial ∪ sample, and
// evaluates on the same frozen test set.
type MonteCarlo struct {
	Classifier Classifier
	Oracle     Oracle
	Evaluator  Evaluator
	Config     MonteCarloConfig
}

// Run executes the trials on a bounded worker pool. Trials are
// statistically independent: each owns its RNG (derived from the base
// seed and trial index) and its own copy of the initial labelled set, so
// no mutable state crosses trial boundaries. Results are collected only
// after every trial finishes. Cancelling ctx abandons unstarted trials;
// trials that already completed are returned alongside the error.
func (m *MonteCarlo) Run(ctx context.Context, initial dataset.LabelledSet, universe []dataset.Case, testSet dataset.LabelledSet) (Distribution, error) {
	if err := m.Config.validate(); err != nil {
		return Distribution{}, err
	}
	logger := logging.New("montecarlo")

	exclude := dataset.NewIDSet()
	for _, c := range initial {
		exclude.Add(c.ID)
	}

	limit := m.Config.Parallel
	if limit <= 0 {
		limit = runtime.GOMAXPROCS(0)
	}
	logger.Info("trials dispatched",
		"trials", m.Config.Trials, "sample_size", m.Config.SampleSize, "workers", limit)

	results := make([]*Trial, m.Config.Trials)
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(limit)
	for i := 0; i < m.Config.Trials; i++ {
		i := i
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			trial, err := m.runTrial(i, initial, universe, testSet, exclude)
			if err != nil {
				return fmt.Errorf("trial %d: %w", i, err)
			}
			results[i] = trial
			return nil
		})
	}
	err := g.Wait()

	// Completed trials survive a cancellation or a failed sibling.
	var dist Distribution
	for _, t := range results {
		if t != nil {
			dist.Trials = append(dist.Trials, *t)
		}
	}
	if err != nil {
		return dist, err
	}
	return dist, nil
}

// runTrial performs one isolated repetition.
func (m *MonteCarlo) runTrial(index int, initial dataset.LabelledSet, universe []dataset.Case, testSet dataset.LabelledSet, exclude dataset.IDSet) (*Trial, error) {
	rng := rand.New(rand.NewSource(m.Config.Seed + int64(index)))

	sample, err := dataset.SampleWithoutReplacement(universe, m.Config.SampleSize, exclude, rng)
	if err != nil {
		return nil, err
	}
	labelled, err := m.Oracle.Label(sample)
	if err != nil {
		return nil, err
	}

	// Append copies the initial set; the trial's training set is private.
	trainSet := initial.Append(labelled...)
	model, err := m.Classifier.Train(trainSet)
	if err != nil {
		return nil, err
	}
	summary, err := m.Evaluator.Evaluate(model, testSet)
	if err != nil {
		return nil, err
	}

	ids := make([]string, len(sample))
	for i, c := range sample {
		ids[i] = c.ID
	}
	return &Trial{Index: index, SampleIDs: ids, Record: summary.Record()}, nil
}
