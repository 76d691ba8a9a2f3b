package main

import (
	"github.com/spf13/pflag"

	"curator/internal/active"
	"curator/internal/classifier"
	"curator/internal/cluster"
	"curator/internal/dataset"
	"curator/internal/entropy"
	"curator/internal/metrics"
	"curator/internal/oracle"
	"curator/internal/store"
)

// loopOptions is the shared configuration surface for commands that run
// the active-learning loop. JSON tags let a run's config be persisted
// verbatim alongside its results.
type loopOptions struct {
	Experiment     string   `json:"experiment"`
	SeedPerClass   int      `json:"seed_per_class"`
	PerRound       int      `json:"per_round"`
	Rounds         int      `json:"rounds"`
	Seed           int64    `json:"seed"`
	EntropyClasses []string `json:"entropy_classes,omitempty"`
	Linkage        string   `json:"linkage"`
	Parallel       int      `json:"parallel"`
	DBPath         string   `json:"-"`
	NoSave         bool     `json:"-"`
	Format         string   `json:"-"`
}

func (o *loopOptions) register(f *pflag.FlagSet) {
	f.StringVar(&o.Experiment, "experiment", "", "Experiment file (YAML or JSON)")
	f.IntVar(&o.SeedPerClass, "seed-per-class", 6, "Seed examples drawn per class")
	f.IntVar(&o.PerRound, "per-round", 12, "Cases to label per round")
	f.IntVar(&o.Rounds, "rounds", 15, "Number of rounds")
	f.Int64Var(&o.Seed, "seed", 1, "RNG seed")
	f.StringSliceVar(&o.EntropyClasses, "entropy-classes", nil, "Class subset fed to the entropy scorer (default: all)")
	f.StringVar(&o.Linkage, "linkage", "ward", "Clustering linkage (ward, average)")
	f.IntVar(&o.Parallel, "parallel", 0, "Concurrency (0 = GOMAXPROCS)")
	f.StringVar(&o.DBPath, "db", store.DefaultDBPath, "SQLite DB path for run history")
	f.BoolVar(&o.NoSave, "no-save", false, "Skip persisting the run")
	f.StringVar(&o.Format, "format", "ascii", "Table output format (ascii, markdown)")
}

// buildLoop wires the collaborators for one experiment.
func (o *loopOptions) buildLoop(exp *dataset.Experiment) (*active.Loop, error) {
	linkage, err := cluster.ParseLinkage(o.Linkage)
	if err != nil {
		return nil, err
	}
	return &active.Loop{
		Classifier: classifier.New(),
		Oracle:     oracle.NewLookup(exp.OracleLookup()),
		Evaluator:  metrics.Evaluator{},
		Selector: &active.Selector{
			Entropy:  entropy.Scorer{Focus: o.EntropyClasses},
			Linkage:  linkage,
			Parallel: o.Parallel,
		},
		Config: active.LoopConfig{
			SeedPerClass: o.SeedPerClass,
			PerRound:     o.PerRound,
			Rounds:       o.Rounds,
			Seed:         o.Seed,
		},
	}, nil
}
