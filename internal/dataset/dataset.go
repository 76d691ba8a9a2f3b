// Package dataset holds the in-memory data model for an active-learning
// experiment: cases with feature vectors, the labelled and unlabelled pools,
// and the bookkeeping set of already-evaluated case IDs. The package performs
// no I/O beyond the experiment-file loader; everything downstream works on
// materialized collections.
package dataset

import (
	"fmt"
	"math/rand"
	"sort"
)

// Case is one classifiable example. Features are a fixed-length vector
// extracted upstream; Label is empty until the case has been labelled.
// Cases are treated as immutable once created.
type Case struct {
	ID       string    `json:"id" yaml:"id"`
	Features []float64 `json:"features" yaml:"features"`
	Label    string    `json:"label,omitempty" yaml:"label,omitempty"`
}

// Labelled reports whether the case carries a class label.
func (c Case) Labelled() bool { return c.Label != "" }

// WithLabel returns a copy of the case carrying the given label.
// The original case is left untouched.
func (c Case) WithLabel(label string) Case {
	c.Label = label
	return c
}

// LabelledSet is an append-only collection of labelled cases. Order is
// not significant; existing entries are never mutated.
type LabelledSet []Case

// Append returns a new LabelledSet with the given cases added. The receiver
// is copied so callers holding the old set never observe the growth.
func (s LabelledSet) Append(cases ...Case) LabelledSet {
	out := make(LabelledSet, len(s), len(s)+len(cases))
	copy(out, s)
	return append(out, cases...)
}

// Classes returns the distinct labels present, sorted for determinism.
func (s LabelledSet) Classes() []string {
	seen := make(map[string]bool)
	for _, c := range s {
		if c.Label != "" {
			seen[c.Label] = true
		}
	}
	classes := make([]string, 0, len(seen))
	for label := range seen {
		classes = append(classes, label)
	}
	sort.Strings(classes)
	return classes
}

// IDSet tracks case identifiers that have already been evaluated.
// It only ever grows; an ID added once never leaves.
type IDSet map[string]struct{}

// NewIDSet builds an IDSet from the given identifiers.
func NewIDSet(ids ...string) IDSet {
	s := make(IDSet, len(ids))
	for _, id := range ids {
		s[id] = struct{}{}
	}
	return s
}

// Add inserts an identifier.
func (s IDSet) Add(id string) { s[id] = struct{}{} }

// Has reports membership.
func (s IDSet) Has(id string) bool {
	_, ok := s[id]
	return ok
}

// Clone returns an independent copy, so per-trial state never aliases
// the loop's own bookkeeping.
func (s IDSet) Clone() IDSet {
	out := make(IDSet, len(s))
	for id := range s {
		out[id] = struct{}{}
	}
	return out
}

// StratifiedSeed draws perClass cases per label uniformly without replacement
// from pool and returns (seed, rest). rest preserves pool order and becomes
// the frozen test set for the life of a run. The draw uses the provided RNG
// only; there is no global seed.
func StratifiedSeed(pool LabelledSet, perClass int, rng *rand.Rand) (seed, rest LabelledSet, err error) {
	if perClass <= 0 {
		return nil, nil, fmt.Errorf("stratified seed: per-class count must be positive, got %d", perClass)
	}

	byClass := make(map[string][]int)
	for i, c := range pool {
		if c.Label == "" {
			return nil, nil, fmt.Errorf("stratified seed: case %s has no label", c.ID)
		}
		byClass[c.Label] = append(byClass[c.Label], i)
	}

	picked := make(map[int]bool)
	for _, label := range pool.Classes() {
		idxs := byClass[label]
		if len(idxs) < perClass {
			return nil, nil, fmt.Errorf("stratified seed: class %q has %d cases, need %d", label, len(idxs), perClass)
		}
		// Partial Fisher-Yates over this class's indices.
		shuffled := make([]int, len(idxs))
		copy(shuffled, idxs)
		for i := 0; i < perClass; i++ {
			j := i + rng.Intn(len(shuffled)-i)
			shuffled[i], shuffled[j] = shuffled[j], shuffled[i]
			picked[shuffled[i]] = true
		}
	}

	for i, c := range pool {
		if picked[i] {
			seed = append(seed, c)
		} else {
			rest = append(rest, c)
		}
	}
	return seed, rest, nil
}

// SampleWithoutReplacement draws n cases uniformly at random from universe,
// skipping any whose ID is in exclude. It fails when fewer than n eligible
// cases exist.
func SampleWithoutReplacement(universe []Case, n int, exclude IDSet, rng *rand.Rand) ([]Case, error) {
	eligible := make([]Case, 0, len(universe))
	for _, c := range universe {
		if exclude.Has(c.ID) {
			continue
		}
		eligible = append(eligible, c)
	}
	if len(eligible) < n {
		return nil, fmt.Errorf("sample: need %d cases, only %d eligible", n, len(eligible))
	}
	for i := 0; i < n; i++ {
		j := i + rng.Intn(len(eligible)-i)
		eligible[i], eligible[j] = eligible[j], eligible[i]
	}
	out := make([]Case, n)
	copy(out, eligible[:n])
	return out, nil
}
