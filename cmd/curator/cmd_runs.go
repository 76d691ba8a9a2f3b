package main

import (
	"fmt"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"

	"curator/internal/store"
)

var runsFlags struct {
	dbPath string
}

var runsCmd = &cobra.Command{
	Use:   "runs",
	Short: "List recorded runs",
	RunE:  runRuns,
}

func init() {
	runsCmd.Flags().StringVar(&runsFlags.dbPath, "db", store.DefaultDBPath, "SQLite DB path for run history")
}

func runRuns(_ *cobra.Command, _ []string) error {
	st, err := store.Open(runsFlags.dbPath)
	if err != nil {
		return err
	}
	defer st.Close()

	runs, err := st.ListRuns()
	if err != nil {
		return err
	}
	if len(runs) == 0 {
		fmt.Println("no runs recorded")
		return nil
	}

	w := table.NewWriter()
	w.SetStyle(table.StyleLight)
	w.AppendHeader(table.Row{"id", "name", "kind", "created", "rounds", "trials"})
	for _, run := range runs {
		iterations, err := st.ListIterations(run.ID)
		if err != nil {
			return err
		}
		trials, err := st.ListTrials(run.ID)
		if err != nil {
			return err
		}
		w.AppendRow(table.Row{run.ID, run.Name, run.Kind, run.CreatedAt, len(iterations), len(trials)})
	}
	fmt.Println(w.Render())
	return nil
}
