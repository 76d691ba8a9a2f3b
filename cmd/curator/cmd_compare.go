package main

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"curator/internal/active"
	"curator/internal/classifier"
	"curator/internal/dataset"
	"curator/internal/metrics"
	"curator/internal/oracle"
	"curator/internal/report"
	"curator/internal/store"
)

var compareOpts struct {
	loopOptions
	trials int
	metric string
	mcSeed int64
}

var compareCmd = &cobra.Command{
	Use:   "compare",
	Short: "Estimate the significance of active selection vs random selection",
	Long: `Compare first runs the active-learning loop, then repeatedly draws
random samples of the same total size, trains on seed + sample, and evaluates
on the same frozen test set. The reported p-value is the fraction of random
trials that match or beat the active run's final metric.`,
	RunE: runCompare,
}

func init() {
	compareOpts.register(compareCmd.Flags())
	f := compareCmd.Flags()
	f.IntVar(&compareOpts.trials, "trials", 100, "Monte Carlo trial count")
	f.StringVar(&compareOpts.metric, "metric", "macro_auc", "Metric compared between active and random runs")
	f.Int64Var(&compareOpts.mcSeed, "mc-seed", 1000, "Base RNG seed for trial sampling")
	_ = compareCmd.MarkFlagRequired("experiment")
}

func runCompare(cmd *cobra.Command, _ []string) error {
	mode, err := report.ParseMode(compareOpts.Format)
	if err != nil {
		return err
	}

	exp, err := dataset.LoadFromPath(compareOpts.Experiment)
	if err != nil {
		return err
	}
	loop, err := compareOpts.buildLoop(exp)
	if err != nil {
		return err
	}

	res, err := loop.Run(cmd.Context(), exp.Labelled, exp.PoolCases())
	if err != nil {
		return err
	}
	fmt.Println(report.IterationTable(res.Results, mode))

	activeValue, ok := res.FinalRecord()[compareOpts.metric]
	if !ok {
		return fmt.Errorf("active run has no metric %q", compareOpts.metric)
	}

	// Random trials draw as many cases as the active run labelled in total,
	// starting from the same seed set and scored on the same frozen test set.
	sampleSize := 0
	for _, r := range res.Results {
		sampleSize += len(r.Batch)
	}
	mc := &active.MonteCarlo{
		Classifier: classifier.New(),
		Oracle:     oracle.NewLookup(exp.OracleLookup()),
		Evaluator:  metrics.Evaluator{},
		Config: active.MonteCarloConfig{
			Trials:     compareOpts.trials,
			SampleSize: sampleSize,
			Parallel:   compareOpts.Parallel,
			Seed:       compareOpts.mcSeed,
		},
	}
	dist, err := mc.Run(cmd.Context(), res.Seed, exp.PoolCases(), res.TestSet)
	if err != nil {
		return err
	}

	pValue, err := dist.PValue(compareOpts.metric, activeValue)
	if err != nil {
		return err
	}
	fmt.Println(report.MonteCarloTable(dist, compareOpts.metric, activeValue, pValue, mode))

	if compareOpts.NoSave {
		return nil
	}
	st, err := store.Open(compareOpts.DBPath)
	if err != nil {
		return err
	}
	defer st.Close()
	runID, err := saveCompareRun(st, exp.Name, res, dist)
	if err != nil {
		return err
	}
	fmt.Printf("run saved: %s\n", runID)
	return nil
}

// saveCompareRun persists the active iterations and the trial distribution
// under one run.
func saveCompareRun(st store.Store, experiment string, res *active.RunResult, dist active.Distribution) (string, error) {
	cfg := struct {
		loopOptions
		Trials int    `json:"trials"`
		Metric string `json:"metric"`
		MCSeed int64  `json:"mc_seed"`
	}{compareOpts.loopOptions, compareOpts.trials, compareOpts.metric, compareOpts.mcSeed}
	cfgJSON, err := json.Marshal(cfg)
	if err != nil {
		return "", fmt.Errorf("marshal config: %w", err)
	}
	runID, err := st.CreateRun(&store.Run{
		Name:       experiment,
		Kind:       store.KindMonteCarlo,
		Experiment: compareOpts.Experiment,
		ConfigJSON: string(cfgJSON),
	})
	if err != nil {
		return "", err
	}
	for _, r := range res.Results {
		record, err := json.Marshal(r.Summary.Record())
		if err != nil {
			return "", fmt.Errorf("marshal round %d record: %w", r.Round, err)
		}
		if _, err := st.AddIteration(&store.Iteration{
			RunID:        runID,
			Round:        r.Round,
			TrainingSize: r.TrainingSize,
			BatchSize:    len(r.Batch),
			Accuracy:     r.Summary.Accuracy,
			MacroAUC:     r.Summary.MacroAUC,
			RecordJSON:   string(record),
		}); err != nil {
			return "", err
		}
	}
	for _, t := range dist.Trials {
		record, err := json.Marshal(t.Record)
		if err != nil {
			return "", fmt.Errorf("marshal trial %d record: %w", t.Index, err)
		}
		if _, err := st.AddTrial(&store.Trial{
			RunID:      runID,
			TrialIndex: t.Index,
			RecordJSON: string(record),
		}); err != nil {
			return "", err
		}
	}
	return runID, nil
}
