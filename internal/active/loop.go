package active

import (
	"context"
	"fmt"
	"math/rand"

	"curator/internal/dataset"
	"curator/internal/logging"
)

// LoopConfig is the documented configuration surface of a run.
type LoopConfig struct {
	SeedPerClass int   // seed examples drawn per class
	PerRound     int   // cases to label per round
	Rounds       int   // iteration count
	Seed         int64 // RNG seed for the stratified seed draw
}

func (c LoopConfig) validate() error {
	if c.SeedPerClass <= 0 {
		return fmt.Errorf("loop config: seed-per-class must be positive, got %d", c.SeedPerClass)
	}
	if c.PerRound <= 0 {
		return fmt.Errorf("loop config: per-round quota must be positive, got %d", c.PerRound)
	}
	if c.Rounds <= 0 {
		return fmt.Errorf("loop config: round count must be positive, got %d", c.Rounds)
	}
	return nil
}

// Loop orchestrates the rounds: train on the current labelled set,
// evaluate on the frozen test set, select from the remaining pool,
// pseudolabel, merge, repeat. Rounds are inherently sequential; each
// selection depends on the model trained the round before.
type Loop struct {
	Classifier Classifier
	Oracle     Oracle
	Evaluator  Evaluator
	Selector   *Selector
	Config     LoopConfig
}

// RunResult is the completed run: the seed/test split it was built on and
// the full ordered result sequence, one entry per round.
type RunResult struct {
	Seed    dataset.LabelledSet
	TestSet dataset.LabelledSet
	Results []IterationResult
	Final   State
}

// FinalRecord returns the scalar metrics of the last round's model.
func (r *RunResult) FinalRecord() map[string]float64 {
	if len(r.Results) == 0 {
		return nil
	}
	return r.Results[len(r.Results)-1].Summary.Record()
}

// Run executes the configured number of rounds. labelledPool is split into
// the stratified seed set and the frozen test set; pool is the unlabelled
// universe. Any collaborator failure aborts the run immediately, wrapped
// with the round at which it occurred.
func (l *Loop) Run(ctx context.Context, labelledPool dataset.LabelledSet, pool []dataset.Case) (*RunResult, error) {
	if err := l.Config.validate(); err != nil {
		return nil, err
	}
	logger := logging.New("loop")

	rng := rand.New(rand.NewSource(l.Config.Seed))
	seed, testSet, err := dataset.StratifiedSeed(labelledPool, l.Config.SeedPerClass, rng)
	if err != nil {
		return nil, err
	}
	logger.Info("run initialized",
		"seed_cases", len(seed), "test_cases", len(testSet), "pool", len(pool), "rounds", l.Config.Rounds)

	state := NewState(seed)
	for round := 1; round <= l.Config.Rounds; round++ {
		if err := ctx.Err(); err != nil {
			return nil, fmt.Errorf("round %d: %w", round, err)
		}

		state = state.enter(PhaseTraining, round)
		model, err := l.Classifier.Train(state.Labelled)
		if err != nil {
			return nil, fmt.Errorf("round %d: train: %w", round, err)
		}
		summary, err := l.Evaluator.Evaluate(model, testSet)
		if err != nil {
			return nil, fmt.Errorf("round %d: evaluate: %w", round, err)
		}

		state = state.enter(PhaseSelecting, round)
		candidates := state.candidates(pool)
		if len(candidates) == 0 {
			return nil, fmt.Errorf("round %d: %w: %d rounds configured", round, ErrExhausted, l.Config.Rounds)
		}
		batch, err := l.Selector.Select(ctx, model, candidates, l.Config.PerRound)
		if err != nil {
			return nil, fmt.Errorf("round %d: select: %w", round, err)
		}

		state = state.enter(PhaseLabelling, round)
		labelled, err := l.Oracle.Label(batch.Cases())
		if err != nil {
			return nil, fmt.Errorf("round %d: label: %w", round, err)
		}

		result := IterationResult{
			Round:        round,
			Summary:      summary,
			Batch:        batch,
			TrainingSize: len(state.Labelled),
		}
		state = state.merged(labelled, result)
		logger.Info("round merged",
			"round", round, "batch", len(batch), "training_size", len(state.Labelled),
			"accuracy", summary.Accuracy, "macro_auc", summary.MacroAUC)
	}

	state = state.enter(PhaseTerminal, l.Config.Rounds)
	return &RunResult{
		Seed:    seed,
		TestSet: testSet,
		Results: state.Results,
		Final:   state,
	}, nil
}
