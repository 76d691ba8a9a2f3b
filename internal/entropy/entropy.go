// Package entropy scores prediction uncertainty. The score is Shannon
// entropy over a designated subset of classes: zero when all probability
// mass sits on one class, maximal when mass is spread evenly.
package entropy

import "math"

// Scorer computes uncertainty scores from class-probability maps.
// Focus restricts scoring to the named classes; an empty Focus scores
// over every class present in the input. Which subset feeds the scorer
// is an explicit experiment choice, not an implementation detail.
type Scorer struct {
	Focus []string
}

// Score returns the Shannon entropy (natural log) of probs restricted to
// the scorer's focus classes. A probability of exactly 0 contributes 0,
// never NaN. Probabilities are renormalized over the focus subset so a
// two-class focus of a three-class prediction is a proper distribution.
func (s Scorer) Score(probs map[string]float64) float64 {
	classes := s.Focus
	if len(classes) == 0 {
		classes = make([]string, 0, len(probs))
		for class := range probs {
			classes = append(classes, class)
		}
	}

	var total float64
	for _, class := range classes {
		total += probs[class]
	}
	if total <= 0 {
		return 0
	}

	var h float64
	for _, class := range classes {
		p := probs[class] / total
		if p > 0 {
			h -= p * math.Log(p)
		}
	}
	return h
}

// Max returns the maximum attainable score for n focus classes, i.e. the
// entropy of the uniform distribution. Useful for normalized reporting.
func Max(n int) float64 {
	if n < 2 {
		return 0
	}
	return math.Log(float64(n))
}
