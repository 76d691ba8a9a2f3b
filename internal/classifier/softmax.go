// Package classifier provides the reference classifier collaborator: a
// multinomial logistic regression trained by full-batch gradient descent.
// The engine only depends on the Classifier/Model contracts; any model
// family that returns calibrated class probabilities can replace this one.
package classifier

import (
	"fmt"
	"math"

	"curator/internal/active"
	"curator/internal/dataset"
)

// Softmax trains multinomial logistic regression models. Features are
// z-score standardized against the training set before fitting. Training
// is deterministic: zero weight init, fixed epoch count.
type Softmax struct {
	Epochs       int
	LearningRate float64
	L2           float64
}

// New returns a Softmax with defaults that converge on the small feature
// sets this engine works with.
func New() *Softmax {
	return &Softmax{Epochs: 400, LearningRate: 0.5, L2: 1e-4}
}

// Train fits a model on the labelled set. Fails with active.ErrTraining
// when the set is empty or carries fewer than 2 distinct classes.
func (s *Softmax) Train(set dataset.LabelledSet) (active.Model, error) {
	if len(set) == 0 {
		return nil, fmt.Errorf("%w: empty training set", active.ErrTraining)
	}
	classes := set.Classes()
	if len(classes) < 2 {
		return nil, fmt.Errorf("%w: %d distinct classes", active.ErrTraining, len(classes))
	}

	dim := len(set[0].Features)
	for _, c := range set {
		if len(c.Features) != dim {
			return nil, fmt.Errorf("%w: case %s has %d features, want %d", active.ErrTraining, c.ID, len(c.Features), dim)
		}
	}

	mean, std := standardization(set, dim)
	x := make([][]float64, len(set))
	y := make([]int, len(set))
	classIdx := make(map[string]int, len(classes))
	for i, class := range classes {
		classIdx[class] = i
	}
	for i, c := range set {
		x[i] = scale(c.Features, mean, std)
		y[i] = classIdx[c.Label]
	}

	m := &Model{
		classes: classes,
		dim:     dim,
		mean:    mean,
		std:     std,
		weights: newMatrix(len(classes), dim+1),
	}

	n := float64(len(set))
	grad := newMatrix(len(classes), dim+1)
	for epoch := 0; epoch < s.Epochs; epoch++ {
		for k := range grad {
			for j := range grad[k] {
				grad[k][j] = 0
			}
		}
		for i, xi := range x {
			p := m.probsScaled(xi)
			for k := range classes {
				delta := p[k]
				if k == y[i] {
					delta -= 1
				}
				for j := 0; j < dim; j++ {
					grad[k][j] += delta * xi[j]
				}
				grad[k][dim] += delta // bias
			}
		}
		for k := range classes {
			for j := 0; j <= dim; j++ {
				g := grad[k][j] / n
				if j < dim {
					g += s.L2 * m.weights[k][j]
				}
				m.weights[k][j] -= s.LearningRate * g
			}
		}
	}
	return m, nil
}

// Model is a trained softmax classifier.
type Model struct {
	classes []string
	dim     int
	mean    []float64
	std     []float64
	weights [][]float64 // [class][dim+1], last column is the bias
}

// Classes returns the class vocabulary in training order (sorted labels).
func (m *Model) Classes() []string {
	return append([]string(nil), m.classes...)
}

// Predict returns the calibrated class probabilities for one case. Fails
// with active.ErrPrediction when the feature vector length differs from
// the training dimensionality.
func (m *Model) Predict(c dataset.Case) (map[string]float64, error) {
	if len(c.Features) != m.dim {
		return nil, fmt.Errorf("case %s: %w: got %d features, want %d", c.ID, active.ErrPrediction, len(c.Features), m.dim)
	}
	p := m.probsScaled(scale(c.Features, m.mean, m.std))
	out := make(map[string]float64, len(m.classes))
	for i, class := range m.classes {
		out[class] = p[i]
	}
	return out, nil
}

// probsScaled computes softmax probabilities for an already-standardized
// vector, shifting by the max logit for numerical stability.
func (m *Model) probsScaled(xi []float64) []float64 {
	logits := make([]float64, len(m.classes))
	maxLogit := math.Inf(-1)
	for k := range m.classes {
		z := m.weights[k][m.dim]
		for j := 0; j < m.dim; j++ {
			z += m.weights[k][j] * xi[j]
		}
		logits[k] = z
		if z > maxLogit {
			maxLogit = z
		}
	}
	var sum float64
	for k, z := range logits {
		e := math.Exp(z - maxLogit)
		logits[k] = e
		sum += e
	}
	for k := range logits {
		logits[k] /= sum
	}
	return logits
}

func standardization(set dataset.LabelledSet, dim int) (mean, std []float64) {
	mean = make([]float64, dim)
	std = make([]float64, dim)
	n := float64(len(set))
	for _, c := range set {
		for j, v := range c.Features {
			mean[j] += v
		}
	}
	for j := range mean {
		mean[j] /= n
	}
	for _, c := range set {
		for j, v := range c.Features {
			d := v - mean[j]
			std[j] += d * d
		}
	}
	for j := range std {
		std[j] = math.Sqrt(std[j] / n)
		if std[j] == 0 {
			std[j] = 1 // constant feature: leave it centered, not divided away
		}
	}
	return mean, std
}

func scale(features, mean, std []float64) []float64 {
	out := make([]float64, len(features))
	for j, v := range features {
		out[j] = (v - mean[j]) / std[j]
	}
	return out
}

func newMatrix(rows, cols int) [][]float64 {
	m := make([][]float64, rows)
	for i := range m {
		m[i] = make([]float64, cols)
	}
	return m
}
