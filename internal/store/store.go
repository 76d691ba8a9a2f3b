// Package store persists completed runs: the run header, the per-round
// iteration records of active-learning runs, and the per-trial records of
// Monte Carlo runs. Domain and CLI use only the Store interface; the
// implementation is SQLite or in-memory.
package store

// DefaultDBPath is the default relative path for the SQLite DB.
// Open() creates the parent dir (.curator) if needed.
const DefaultDBPath = ".curator/curator.db"

// Run kinds.
const (
	KindActive     = "active"
	KindMonteCarlo = "montecarlo"
)

// Run is one recorded engine invocation.
type Run struct {
	ID         string // uuid
	Name       string
	Kind       string // KindActive or KindMonteCarlo
	Experiment string
	ConfigJSON string
	CreatedAt  string
}

// Iteration is one active-learning round of a run.
type Iteration struct {
	ID           int64
	RunID        string
	Round        int
	TrainingSize int
	BatchSize    int
	Accuracy     float64
	MacroAUC     float64
	RecordJSON   string // flattened metric record
}

// Trial is one Monte Carlo repetition of a run.
type Trial struct {
	ID         int64
	RunID      string
	TrialIndex int
	RecordJSON string
}

// Store is the persistence facade.
type Store interface {
	CreateRun(run *Run) (string, error)
	GetRun(id string) (*Run, error)
	ListRuns() ([]*Run, error)

	AddIteration(it *Iteration) (int64, error)
	ListIterations(runID string) ([]*Iteration, error)

	AddTrial(tr *Trial) (int64, error)
	ListTrials(runID string) ([]*Trial, error)

	Close() error
}
