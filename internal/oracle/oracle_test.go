package oracle

import (
	"errors"
	"testing"

	"curator/internal/active"
	"curator/internal/dataset"
)

func TestLabel(t *testing.T) {
	orc := NewLookup(map[string]string{"a": "x", "b": "y"})
	cases := []dataset.Case{
		{ID: "a", Features: []float64{1}},
		{ID: "b", Features: []float64{2}},
	}

	out, err := orc.Label(cases)
	if err != nil {
		t.Fatal(err)
	}
	if out[0].Label != "x" || out[1].Label != "y" {
		t.Errorf("labels: got %q, %q", out[0].Label, out[1].Label)
	}
	if cases[0].Label != "" {
		t.Error("input case mutated")
	}
}

func TestLabel_UnknownIDFailsWhole(t *testing.T) {
	orc := NewLookup(map[string]string{"a": "x"})
	out, err := orc.Label([]dataset.Case{{ID: "a"}, {ID: "ghost"}})
	if !errors.Is(err, active.ErrLookup) {
		t.Fatalf("got %v, want ErrLookup", err)
	}
	if out != nil {
		t.Error("partial batch returned alongside the error")
	}
}

func TestSize(t *testing.T) {
	if got := NewLookup(map[string]string{"a": "x", "b": "y"}).Size(); got != 2 {
		t.Errorf("Size = %d, want 2", got)
	}
}
