// Package report renders run results for humans: the per-round trend
// table, the confusion matrix, and the Monte Carlo comparison summary.
// Raw records stay numeric for machines; this layer is words and tables.
package report

import (
	"fmt"
	"sort"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"

	"curator/internal/active"
	"curator/internal/metrics"
)

// Mode controls the output format.
type Mode int

const (
	ASCII    Mode = iota // fixed-width terminal tables
	Markdown             // GitHub-flavoured Markdown tables
)

// ParseMode maps a CLI format string to a Mode.
func ParseMode(s string) (Mode, error) {
	switch s {
	case "", "ascii", "text":
		return ASCII, nil
	case "markdown", "md":
		return Markdown, nil
	default:
		return ASCII, fmt.Errorf("unknown output format %q (want ascii or markdown)", s)
	}
}

func newTable(m Mode) table.Writer {
	w := table.NewWriter()
	if m == ASCII {
		w.SetStyle(table.StyleLight)
	}
	return w
}

func render(w table.Writer, m Mode) string {
	if m == Markdown {
		return w.RenderMarkdown()
	}
	return w.Render()
}

// IterationTable renders one row per round: training-set size, batch size,
// accuracy, macro AUC.
func IterationTable(results []active.IterationResult, m Mode) string {
	w := newTable(m)
	w.AppendHeader(table.Row{"round", "train size", "batch", "accuracy", "macro auc"})
	for _, r := range results {
		w.AppendRow(table.Row{
			r.Round,
			r.TrainingSize,
			len(r.Batch),
			fmt.Sprintf("%.4f", r.Summary.Accuracy),
			fmt.Sprintf("%.4f", r.Summary.MacroAUC),
		})
	}
	w.SetColumnConfigs([]table.ColumnConfig{
		{Number: 4, Align: text.AlignRight},
		{Number: 5, Align: text.AlignRight},
	})
	return render(w, m)
}

// ConfusionTable renders the confusion matrix, actual classes as rows and
// predicted classes as columns.
func ConfusionTable(cm *metrics.ConfusionMatrix, m Mode) string {
	w := newTable(m)
	header := table.Row{"actual \\ predicted"}
	for _, class := range cm.Classes {
		header = append(header, class)
	}
	w.AppendHeader(header)
	for _, actual := range cm.Classes {
		row := table.Row{actual}
		for _, predicted := range cm.Classes {
			row = append(row, cm.Count(actual, predicted))
		}
		w.AppendRow(row)
	}
	return render(w, m)
}

// AUCTable renders the per-class AUC values of a summary.
func AUCTable(s metrics.Summary, m Mode) string {
	w := newTable(m)
	w.AppendHeader(table.Row{"class", "auc"})
	for _, class := range s.Classes {
		w.AppendRow(table.Row{class, fmt.Sprintf("%.4f", s.ROC[class].AUC)})
	}
	w.AppendFooter(table.Row{"macro", fmt.Sprintf("%.4f", s.MacroAUC)})
	return render(w, m)
}

// MonteCarloTable renders the trial distribution for one metric next to
// the active-learning value and the empirical p-value.
func MonteCarloTable(dist active.Distribution, metric string, activeValue, pValue float64, m Mode) string {
	values := dist.Values(metric)
	mean, lo, hi := describe(values)

	w := newTable(m)
	w.AppendHeader(table.Row{"", metric})
	w.AppendRow(table.Row{"trials", len(values)})
	w.AppendRow(table.Row{"random mean", fmt.Sprintf("%.4f", mean)})
	w.AppendRow(table.Row{"random min", fmt.Sprintf("%.4f", lo)})
	w.AppendRow(table.Row{"random max", fmt.Sprintf("%.4f", hi)})
	w.AppendRow(table.Row{"active", fmt.Sprintf("%.4f", activeValue)})
	w.AppendFooter(table.Row{"p-value", fmt.Sprintf("%.4f", pValue)})
	return render(w, m)
}

func describe(values []float64) (mean, min, max float64) {
	if len(values) == 0 {
		return 0, 0, 0
	}
	sorted := append([]float64(nil), values...)
	sort.Float64s(sorted)
	var sum float64
	for _, v := range sorted {
		sum += v
	}
	return sum / float64(len(sorted)), sorted[0], sorted[len(sorted)-1]
}
