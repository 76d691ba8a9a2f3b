package active

import (
	"fmt"

	"curator/internal/dataset"
	"curator/internal/metrics"
)

// fakeModel answers predictions from a per-case table, falling back to a
// uniform distribution for unknown IDs.
type fakeModel struct {
	classes []string
	probs   map[string]map[string]float64
	err     error
}

func (m *fakeModel) Classes() []string { return m.classes }

func (m *fakeModel) Predict(c dataset.Case) (map[string]float64, error) {
	if m.err != nil {
		return nil, fmt.Errorf("case %s: %w", c.ID, m.err)
	}
	if p, ok := m.probs[c.ID]; ok {
		return p, nil
	}
	uniform := make(map[string]float64, len(m.classes))
	for _, class := range m.classes {
		uniform[class] = 1 / float64(len(m.classes))
	}
	return uniform, nil
}

// fakeClassifier returns a fixed model and remembers every training set it
// was handed.
type fakeClassifier struct {
	model    *fakeModel
	err      error
	trainLog []dataset.LabelledSet
}

func (c *fakeClassifier) Train(set dataset.LabelledSet) (Model, error) {
	if c.err != nil {
		return nil, c.err
	}
	c.trainLog = append(c.trainLog, set)
	return c.model, nil
}

// fakeEvaluator reports accuracy as a function of the test-set size so
// results are deterministic without real inference.
type fakeEvaluator struct {
	accuracy float64
}

func (e *fakeEvaluator) Evaluate(model metrics.Predictor, testSet dataset.LabelledSet) (metrics.Summary, error) {
	cm := metrics.NewConfusionMatrix(model.Classes())
	return metrics.Summary{
		Classes:   model.Classes(),
		Confusion: cm,
		ROC:       map[string]metrics.Curve{},
		Accuracy:  e.accuracy,
		MacroAUC:  e.accuracy,
	}, nil
}

// mapOracle labels from a table, like the real lookup oracle.
type mapOracle struct {
	labels map[string]string
}

func (o *mapOracle) Label(cases []dataset.Case) ([]dataset.Case, error) {
	for _, c := range cases {
		if _, ok := o.labels[c.ID]; !ok {
			return nil, fmt.Errorf("case %s: %w", c.ID, ErrLookup)
		}
	}
	out := make([]dataset.Case, len(cases))
	for i, c := range cases {
		out[i] = c.WithLabel(o.labels[c.ID])
	}
	return out, nil
}

// grid builds n pool cases spread along one axis, labels alternating over
// the class list.
func grid(n int, classes ...string) ([]dataset.Case, map[string]string) {
	cases := make([]dataset.Case, n)
	labels := make(map[string]string, n)
	for i := 0; i < n; i++ {
		id := fmt.Sprintf("p%03d", i)
		cases[i] = dataset.Case{ID: id, Features: []float64{float64(i), float64(i % 7)}}
		labels[id] = classes[i%len(classes)]
	}
	return cases, labels
}

// seedSet builds a labelled seed of perClass cases per class.
func seedSet(perClass int, classes ...string) dataset.LabelledSet {
	var set dataset.LabelledSet
	for ci, class := range classes {
		for i := 0; i < perClass; i++ {
			set = append(set, dataset.Case{
				ID:       fmt.Sprintf("s-%s-%d", class, i),
				Features: []float64{float64(ci*100 + i), float64(i)},
				Label:    class,
			})
		}
	}
	return set
}
