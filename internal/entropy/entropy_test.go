package entropy

import (
	"math"
	"testing"
)

func TestScore_ZeroWhenConcentrated(t *testing.T) {
	s := Scorer{}
	got := s.Score(map[string]float64{"a": 1, "b": 0, "c": 0})
	if got != 0 {
		t.Errorf("concentrated distribution: got %g, want 0", got)
	}
}

func TestScore_MaxAtUniform(t *testing.T) {
	s := Scorer{}
	got := s.Score(map[string]float64{"a": 1.0 / 3, "b": 1.0 / 3, "c": 1.0 / 3})
	want := math.Log(3)
	if math.Abs(got-want) > 1e-9 {
		t.Errorf("uniform distribution: got %g, want %g", got, want)
	}

	// Any skew must score below the uniform maximum.
	skewed := s.Score(map[string]float64{"a": 0.5, "b": 0.3, "c": 0.2})
	if skewed >= want {
		t.Errorf("skewed distribution scored %g, want < %g", skewed, want)
	}
}

func TestScore_ZeroProbabilityTermIsZero(t *testing.T) {
	s := Scorer{}
	got := s.Score(map[string]float64{"a": 0.5, "b": 0.5, "c": 0})
	want := math.Log(2)
	if math.IsNaN(got) {
		t.Fatal("zero probability produced NaN")
	}
	if math.Abs(got-want) > 1e-9 {
		t.Errorf("got %g, want %g", got, want)
	}
}

func TestScore_FocusSubsetRenormalizes(t *testing.T) {
	// Restricted to {a, b} the masses 0.2/0.2 renormalize to 0.5/0.5.
	s := Scorer{Focus: []string{"a", "b"}}
	got := s.Score(map[string]float64{"a": 0.2, "b": 0.2, "c": 0.6})
	want := math.Log(2)
	if math.Abs(got-want) > 1e-9 {
		t.Errorf("focus subset: got %g, want %g", got, want)
	}
}

func TestScore_NoMassInFocus(t *testing.T) {
	s := Scorer{Focus: []string{"a", "b"}}
	if got := s.Score(map[string]float64{"c": 1}); got != 0 {
		t.Errorf("no mass in focus: got %g, want 0", got)
	}
}

func TestMax(t *testing.T) {
	if got := Max(3); math.Abs(got-math.Log(3)) > 1e-9 {
		t.Errorf("Max(3) = %g, want ln 3", got)
	}
	if got := Max(1); got != 0 {
		t.Errorf("Max(1) = %g, want 0", got)
	}
}
