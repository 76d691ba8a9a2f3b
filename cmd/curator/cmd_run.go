package main

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"curator/internal/active"
	"curator/internal/dataset"
	"curator/internal/report"
	"curator/internal/store"
)

var runOpts loopOptions

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run the active-learning loop over an experiment file",
	Long: `Run splits the labelled pool into a stratified seed set and a frozen
test set, then repeats for the configured number of rounds: train, evaluate,
select the most informative diverse batch from the pool, pseudolabel, merge.`,
	RunE: runRun,
}

func init() {
	runOpts.register(runCmd.Flags())
	_ = runCmd.MarkFlagRequired("experiment")
}

func runRun(cmd *cobra.Command, _ []string) error {
	mode, err := report.ParseMode(runOpts.Format)
	if err != nil {
		return err
	}

	exp, err := dataset.LoadFromPath(runOpts.Experiment)
	if err != nil {
		return err
	}
	loop, err := runOpts.buildLoop(exp)
	if err != nil {
		return err
	}

	res, err := loop.Run(cmd.Context(), exp.Labelled, exp.PoolCases())
	if err != nil {
		return err
	}

	fmt.Println(report.IterationTable(res.Results, mode))
	last := res.Results[len(res.Results)-1]
	fmt.Println(report.ConfusionTable(last.Summary.Confusion, mode))
	fmt.Println(report.AUCTable(last.Summary, mode))

	if runOpts.NoSave {
		return nil
	}
	st, err := store.Open(runOpts.DBPath)
	if err != nil {
		return err
	}
	defer st.Close()
	runID, err := saveActiveRun(st, &runOpts, exp.Name, res)
	if err != nil {
		return err
	}
	fmt.Printf("run saved: %s\n", runID)
	return nil
}

// saveActiveRun persists the run header and one row per iteration.
func saveActiveRun(st store.Store, opts *loopOptions, experiment string, res *active.RunResult) (string, error) {
	cfgJSON, err := json.Marshal(opts)
	if err != nil {
		return "", fmt.Errorf("marshal config: %w", err)
	}
	runID, err := st.CreateRun(&store.Run{
		Name:       experiment,
		Kind:       store.KindActive,
		Experiment: opts.Experiment,
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
	return runID, nil
}
