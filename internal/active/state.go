package active

import (
	"fmt"

	"curator/internal/dataset"
)

// Phase is the loop's position inside a run.
type Phase int

const (
	PhaseInitializing Phase = iota
	PhaseTraining
	PhaseSelecting
	PhaseLabelling
	PhaseMerged
	PhaseTerminal
)

func (p Phase) String() string {
	switch p {
	case PhaseInitializing:
		return "initializing"
	case PhaseTraining:
		return "training"
	case PhaseSelecting:
		return "selecting"
	case PhaseLabelling:
		return "labelling"
	case PhaseMerged:
		return "merged"
	case PhaseTerminal:
		return "terminal"
	default:
		return fmt.Sprintf("phase(%d)", int(p))
	}
}

// State is the loop's value at a point in time: the current training set,
// the identifiers already pulled from the pool, and the results so far.
// State is threaded functionally: every transition returns a new value and
// never mutates the old one, so a caller may hold any intermediate state
// (or hand copies to concurrent trials) safely.
type State struct {
	Phase     Phase
	Round     int // 1-based; 0 before the first round
	Labelled  dataset.LabelledSet
	Evaluated dataset.IDSet
	Results   []IterationResult
}

// NewState builds the initial state from the stratified seed set.
func NewState(seed dataset.LabelledSet) State {
	return State{
		Phase:     PhaseInitializing,
		Labelled:  seed,
		Evaluated: dataset.NewIDSet(),
	}
}

// enter returns a copy of the state moved to the given phase and round.
func (s State) enter(phase Phase, round int) State {
	s.Phase = phase
	s.Round = round
	return s
}

// merged returns the post-round state: the pseudolabelled cases appended
// to the training set, their IDs added to the evaluated set, and the
// round's result recorded. All three collections are copied, never
// mutated in place.
func (s State) merged(labelled []dataset.Case, result IterationResult) State {
	next := s
	next.Phase = PhaseMerged
	next.Labelled = s.Labelled.Append(labelled...)

	next.Evaluated = s.Evaluated.Clone()
	for _, c := range labelled {
		next.Evaluated.Add(c.ID)
	}

	next.Results = make([]IterationResult, len(s.Results), len(s.Results)+1)
	copy(next.Results, s.Results)
	next.Results = append(next.Results, result)
	return next
}

// candidates returns the pool members not yet evaluated, in pool order.
func (s State) candidates(pool []dataset.Case) []dataset.Case {
	out := make([]dataset.Case, 0, len(pool))
	for _, c := range pool {
		if !s.Evaluated.Has(c.ID) {
			out = append(out, c)
		}
	}
	return out
}
