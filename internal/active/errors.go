package active

import "errors"

var (
	// ErrValidation is returned when a model emits malformed probabilities:
	// wrong class vocabulary or mass not summing to ~1.
	ErrValidation = errors.New("active: malformed model output")

	// ErrTraining is returned when the labelled set cannot produce a model
	// (empty, or fewer than 2 distinct classes).
	ErrTraining = errors.New("active: degenerate labelled set")

	// ErrPrediction is returned when a case's feature vector does not match
	// the model's expected input dimensionality.
	ErrPrediction = errors.New("active: feature dimensionality mismatch")

	// ErrLookup is returned when the pseudolabel oracle has no label for a
	// selected case identifier.
	ErrLookup = errors.New("active: missing pseudolabel")

	// ErrExhausted is returned when the candidate pool empties before the
	// configured round count is reached.
	ErrExhausted = errors.New("active: candidate pool exhausted")
)
