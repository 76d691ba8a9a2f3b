// Package metrics evaluates a trained model against the frozen test set:
// confusion matrix, per-class one-vs-rest ROC curves with trapezoidal AUC,
// and the scalar summary the trend and Monte Carlo comparisons consume.
// Evaluation is pure: neither the model nor the test set is modified.
package metrics

import (
	"fmt"
	"math"
	"sort"

	"curator/internal/dataset"
)

// Predictor is the read-only model view evaluation needs.
type Predictor interface {
	// Predict returns the per-class probability map for one case.
	Predict(c dataset.Case) (map[string]float64, error)
	// Classes returns the model's class vocabulary in stable order.
	Classes() []string
}

// Record is one row of scalar metrics, keyed by metric name.
type Record map[string]float64

// Point is one operating point of a ROC curve.
type Point struct {
	FPR float64 `json:"fpr"`
	TPR float64 `json:"tpr"`
}

// Curve is a one-vs-rest ROC curve for a single class.
type Curve struct {
	Points []Point `json:"points"`
	AUC    float64 `json:"auc"`
}

// Summary is the full evaluation output for one model on one test set.
type Summary struct {
	Classes   []string         `json:"classes"`
	Confusion *ConfusionMatrix `json:"confusion"`
	ROC       map[string]Curve `json:"roc"`
	Accuracy  float64          `json:"accuracy"`
	MacroAUC  float64          `json:"macro_auc"`
}

// Record flattens the summary into the scalar row used for trend plotting
// and Monte Carlo comparison: accuracy, macro_auc, and auc_<class> each.
func (s Summary) Record() Record {
	r := Record{
		"accuracy":  s.Accuracy,
		"macro_auc": s.MacroAUC,
	}
	for class, curve := range s.ROC {
		r["auc_"+class] = curve.AUC
	}
	return r
}

// Evaluator evaluates models against a test set. The zero value is usable.
type Evaluator struct{}

// Evaluate runs the model over every test case and assembles the summary.
// Prediction errors propagate unchanged with the case ID attached.
func (Evaluator) Evaluate(model Predictor, testSet dataset.LabelledSet) (Summary, error) {
	classes := model.Classes()
	cm := NewConfusionMatrix(classes)

	// Per-class score/truth columns for ROC.
	scores := make(map[string][]float64, len(classes))
	truths := make(map[string][]bool, len(classes))

	for _, c := range testSet {
		probs, err := model.Predict(c)
		if err != nil {
			return Summary{}, fmt.Errorf("evaluate case %s: %w", c.ID, err)
		}
		cm.Add(c.Label, argmax(classes, probs))
		for _, class := range classes {
			scores[class] = append(scores[class], probs[class])
			truths[class] = append(truths[class], c.Label == class)
		}
	}

	roc := make(map[string]Curve, len(classes))
	var aucSum float64
	for _, class := range classes {
		curve := ROC(scores[class], truths[class])
		roc[class] = curve
		aucSum += curve.AUC
	}
	macro := 0.0
	if len(classes) > 0 {
		macro = aucSum / float64(len(classes))
	}

	return Summary{
		Classes:   classes,
		Confusion: cm,
		ROC:       roc,
		Accuracy:  cm.Accuracy(),
		MacroAUC:  macro,
	}, nil
}

// argmax returns the class with the highest probability; ties go to the
// earlier class in vocabulary order.
func argmax(classes []string, probs map[string]float64) string {
	best := ""
	bestP := math.Inf(-1)
	for _, class := range classes {
		if p := probs[class]; p > bestP {
			best, bestP = class, p
		}
	}
	return best
}

// ROC computes the one-vs-rest ROC curve from per-case scores and truth
// flags. Tied scores collapse into a single operating point. A test set
// with no positives or no negatives has no discrimination to measure; the
// curve degrades to the chance diagonal with AUC 0.5.
func ROC(scores []float64, truth []bool) Curve {
	pos, neg := 0, 0
	for _, t := range truth {
		if t {
			pos++
		} else {
			neg++
		}
	}
	if pos == 0 || neg == 0 {
		return Curve{Points: []Point{{0, 0}, {1, 1}}, AUC: 0.5}
	}

	order := make([]int, len(scores))
	for i := range order {
		order[i] = i
	}
	sort.SliceStable(order, func(a, b int) bool { return scores[order[a]] > scores[order[b]] })

	points := []Point{{0, 0}}
	tp, fp := 0, 0
	auc := 0.0
	prev := Point{0, 0}
	for i := 0; i < len(order); {
		j := i
		for j < len(order) && scores[order[j]] == scores[order[i]] {
			if truth[order[j]] {
				tp++
			} else {
				fp++
			}
			j++
		}
		pt := Point{FPR: float64(fp) / float64(neg), TPR: float64(tp) / float64(pos)}
		auc += (pt.FPR - prev.FPR) * (pt.TPR + prev.TPR) / 2
		points = append(points, pt)
		prev = pt
		i = j
	}
	return Curve{Points: points, AUC: auc}
}

// ConfusionMatrix counts actual-vs-predicted class pairs.
type ConfusionMatrix struct {
	Classes []string `json:"classes"`
	Counts  [][]int  `json:"counts"` // Counts[actual][predicted]

	index map[string]int
}

// NewConfusionMatrix builds an empty matrix over the class vocabulary.
func NewConfusionMatrix(classes []string) *ConfusionMatrix {
	cm := &ConfusionMatrix{
		Classes: append([]string(nil), classes...),
		Counts:  make([][]int, len(classes)),
		index:   make(map[string]int, len(classes)),
	}
	for i, class := range classes {
		cm.Counts[i] = make([]int, len(classes))
		cm.index[class] = i
	}
	return cm
}

// Add records one (actual, predicted) observation. Classes outside the
// vocabulary are ignored; the loader guarantees they cannot occur.
func (cm *ConfusionMatrix) Add(actual, predicted string) {
	a, okA := cm.index[actual]
	p, okP := cm.index[predicted]
	if !okA || !okP {
		return
	}
	cm.Counts[a][p]++
}

// Count returns the cell for (actual, predicted).
func (cm *ConfusionMatrix) Count(actual, predicted string) int {
	a, okA := cm.index[actual]
	p, okP := cm.index[predicted]
	if !okA || !okP {
		return 0
	}
	return cm.Counts[a][p]
}

// Total returns the number of recorded observations.
func (cm *ConfusionMatrix) Total() int {
	total := 0
	for _, row := range cm.Counts {
		for _, n := range row {
			total += n
		}
	}
	return total
}

// Accuracy is the diagonal mass over the total; 0 for an empty matrix.
func (cm *ConfusionMatrix) Accuracy() float64 {
	total := cm.Total()
	if total == 0 {
		return 0
	}
	correct := 0
	for i := range cm.Counts {
		correct += cm.Counts[i][i]
	}
	return float64(correct) / float64(total)
}
