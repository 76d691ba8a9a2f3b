package dataset

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

// Experiment is the on-disk description of one active-learning experiment:
// the class vocabulary, the labelled pool (split into seed + frozen test set
// at run time), and the unlabelled pool. Pool cases may carry labels; those
// feed the pseudolabel oracle only and are never shown to the model.
type Experiment struct {
	Name     string   `json:"name" yaml:"name"`
	Classes  []string `json:"classes" yaml:"classes"`
	Labelled []Case   `json:"labelled" yaml:"labelled"`
	Pool     []Case   `json:"pool" yaml:"pool"`
}

// LoadFromPath reads an experiment file (YAML or JSON) and validates it.
// Format is detected by extension (.yaml/.yml/.json) or by content.
func LoadFromPath(path string) (*Experiment, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read experiment: %w", err)
	}
	return Load(data, filepath.Ext(path))
}

// Load parses an experiment from bytes. ext is the file extension for the
// format hint; empty means detect from content.
func Load(data []byte, ext string) (*Experiment, error) {
	ext = strings.ToLower(ext)
	if ext == ".yml" {
		ext = ".yaml"
	}

	var exp Experiment
	switch {
	case ext == ".yaml":
		if err := yaml.Unmarshal(data, &exp); err != nil {
			return nil, fmt.Errorf("parse experiment yaml: %w", err)
		}
	case ext == ".json" || strings.HasPrefix(strings.TrimSpace(string(data)), "{"):
		if err := json.Unmarshal(data, &exp); err != nil {
			return nil, fmt.Errorf("parse experiment json: %w", err)
		}
	default:
		if err := yaml.Unmarshal(data, &exp); err != nil {
			return nil, fmt.Errorf("parse experiment yaml: %w", err)
		}
	}

	if err := exp.Validate(); err != nil {
		return nil, err
	}
	return &exp, nil
}

// Validate checks structural invariants: non-empty class vocabulary, unique
// case IDs across both pools, uniform feature dimensionality, and labels
// restricted to the declared classes.
func (e *Experiment) Validate() error {
	if len(e.Classes) < 2 {
		return fmt.Errorf("experiment %q: need at least 2 classes, got %d", e.Name, len(e.Classes))
	}
	if len(e.Labelled) == 0 {
		return fmt.Errorf("experiment %q: labelled pool is empty", e.Name)
	}

	known := make(map[string]bool, len(e.Classes))
	for _, cl := range e.Classes {
		known[cl] = true
	}

	dim := -1
	seen := make(map[string]bool)
	check := func(c Case, pool string, labelRequired bool) error {
		if c.ID == "" {
			return fmt.Errorf("experiment %q: %s case with empty id", e.Name, pool)
		}
		if seen[c.ID] {
			return fmt.Errorf("experiment %q: duplicate case id %s", e.Name, c.ID)
		}
		seen[c.ID] = true
		if dim == -1 {
			dim = len(c.Features)
		}
		if len(c.Features) != dim || dim == 0 {
			return fmt.Errorf("experiment %q: case %s has %d features, want %d", e.Name, c.ID, len(c.Features), dim)
		}
		if labelRequired && c.Label == "" {
			return fmt.Errorf("experiment %q: labelled case %s has no label", e.Name, c.ID)
		}
		if c.Label != "" && !known[c.Label] {
			return fmt.Errorf("experiment %q: case %s has unknown class %q", e.Name, c.ID, c.Label)
		}
		return nil
	}

	for _, c := range e.Labelled {
		if err := check(c, "labelled", true); err != nil {
			return err
		}
	}
	for _, c := range e.Pool {
		if err := check(c, "pool", false); err != nil {
			return err
		}
	}
	return nil
}

// OracleLookup builds the pseudolabel lookup from pool cases that carry a
// ground-truth label.
func (e *Experiment) OracleLookup() map[string]string {
	lookup := make(map[string]string)
	for _, c := range e.Pool {
		if c.Label != "" {
			lookup[c.ID] = c.Label
		}
	}
	return lookup
}

// PoolCases returns the unlabelled view of the pool: same IDs and features,
// labels stripped so the selection path can never peek at ground truth.
func (e *Experiment) PoolCases() []Case {
	out := make([]Case, len(e.Pool))
	for i, c := range e.Pool {
		c.Label = ""
		out[i] = c
	}
	return out
}
