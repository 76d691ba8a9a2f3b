package store

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"

	_ "modernc.org/sqlite"
)

const schema = `
CREATE TABLE IF NOT EXISTS runs (
	id          TEXT PRIMARY KEY,
	name        TEXT NOT NULL,
	kind        TEXT NOT NULL,
	experiment  TEXT NOT NULL,
	config_json TEXT NOT NULL,
	created_at  TEXT NOT NULL
);
CREATE TABLE IF NOT EXISTS iterations (
	id            INTEGER PRIMARY KEY AUTOINCREMENT,
	run_id        TEXT NOT NULL REFERENCES runs(id),
	round         INTEGER NOT NULL,
	training_size INTEGER NOT NULL,
	batch_size    INTEGER NOT NULL,
	accuracy      REAL NOT NULL,
	macro_auc     REAL NOT NULL,
	record_json   TEXT NOT NULL
);
CREATE TABLE IF NOT EXISTS trials (
	id          INTEGER PRIMARY KEY AUTOINCREMENT,
	run_id      TEXT NOT NULL REFERENCES runs(id),
	trial_index INTEGER NOT NULL,
	record_json TEXT NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_iterations_run ON iterations(run_id, round);
CREATE INDEX IF NOT EXISTS idx_trials_run ON trials(run_id, trial_index);
`

// SqlStore implements Store with SQLite.
type SqlStore struct {
	db *sql.DB
}

// Open opens or creates a SQLite DB at path and applies the schema.
// Creates the parent directory (e.g. .curator) if it does not exist.
func Open(path string) (*SqlStore, error) {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("create store dir: %w", err)
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	if err := db.Ping(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping sqlite: %w", err)
	}
	if _, err := db.Exec(schema); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("apply schema: %w", err)
	}
	return &SqlStore{db: db}, nil
}

func (s *SqlStore) CreateRun(run *Run) (string, error) {
	if run == nil {
		return "", fmt.Errorf("run is nil")
	}
	id := run.ID
	if id == "" {
		id = uuid.NewString()
	}
	createdAt := run.CreatedAt
	if createdAt == "" {
		createdAt = time.Now().UTC().Format(time.RFC3339)
	}
	_, err := s.db.Exec(
		`INSERT INTO runs (id, name, kind, experiment, config_json, created_at) VALUES (?, ?, ?, ?, ?, ?)`,
		id, run.Name, run.Kind, run.Experiment, run.ConfigJSON, createdAt,
	)
	if err != nil {
		return "", fmt.Errorf("insert run: %w", err)
	}
	return id, nil
}

func (s *SqlStore) GetRun(id string) (*Run, error) {
	row := s.db.QueryRow(`SELECT id, name, kind, experiment, config_json, created_at FROM runs WHERE id = ?`, id)
	var run Run
	err := row.Scan(&run.ID, &run.Name, &run.Kind, &run.Experiment, &run.ConfigJSON, &run.CreatedAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get run %s: %w", id, err)
	}
	return &run, nil
}

func (s *SqlStore) ListRuns() ([]*Run, error) {
	rows, err := s.db.Query(`SELECT id, name, kind, experiment, config_json, created_at FROM runs ORDER BY created_at, id`)
	if err != nil {
		return nil, fmt.Errorf("list runs: %w", err)
	}
	defer rows.Close()
	var out []*Run
	for rows.Next() {
		var run Run
		if err := rows.Scan(&run.ID, &run.Name, &run.Kind, &run.Experiment, &run.ConfigJSON, &run.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan run: %w", err)
		}
		out = append(out, &run)
	}
	return out, rows.Err()
}

func (s *SqlStore) AddIteration(it *Iteration) (int64, error) {
	if it == nil {
		return 0, fmt.Errorf("iteration is nil")
	}
	res, err := s.db.Exec(
		`INSERT INTO iterations (run_id, round, training_size, batch_size, accuracy, macro_auc, record_json)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		it.RunID, it.Round, it.TrainingSize, it.BatchSize, it.Accuracy, it.MacroAUC, it.RecordJSON,
	)
	if err != nil {
		return 0, fmt.Errorf("insert iteration: %w", err)
	}
	return res.LastInsertId()
}

func (s *SqlStore) ListIterations(runID string) ([]*Iteration, error) {
	rows, err := s.db.Query(
		`SELECT id, run_id, round, training_size, batch_size, accuracy, macro_auc, record_json
		 FROM iterations WHERE run_id = ? ORDER BY round`, runID)
	if err != nil {
		return nil, fmt.Errorf("list iterations: %w", err)
	}
	defer rows.Close()
	var out []*Iteration
	for rows.Next() {
		var it Iteration
		if err := rows.Scan(&it.ID, &it.RunID, &it.Round, &it.TrainingSize, &it.BatchSize, &it.Accuracy, &it.MacroAUC, &it.RecordJSON); err != nil {
			return nil, fmt.Errorf("scan iteration: %w", err)
		}
		out = append(out, &it)
	}
	return out, rows.Err()
}

func (s *SqlStore) AddTrial(tr *Trial) (int64, error) {
	if tr == nil {
		return 0, fmt.Errorf("trial is nil")
	}
	res, err := s.db.Exec(
		`INSERT INTO trials (run_id, trial_index, record_json) VALUES (?, ?, ?)`,
		tr.RunID, tr.TrialIndex, tr.RecordJSON,
	)
	if err != nil {
		return 0, fmt.Errorf("insert trial: %w", err)
	}
	return res.LastInsertId()
}

func (s *SqlStore) ListTrials(runID string) ([]*Trial, error) {
	rows, err := s.db.Query(
		`SELECT id, run_id, trial_index, record_json FROM trials WHERE run_id = ? ORDER BY trial_index`, runID)
	if err != nil {
		return nil, fmt.Errorf("list trials: %w", err)
	}
	defer rows.Close()
	var out []*Trial
	for rows.Next() {
		var tr Trial
		if err := rows.Scan(&tr.ID, &tr.RunID, &tr.TrialIndex, &tr.RecordJSON); err != nil {
			return nil, fmt.Errorf("scan trial: %w", err)
		}
		out = append(out, &tr)
	}
	return out, rows.Err()
}

// Close closes the underlying database.
func (s *SqlStore) Close() error { return s.db.Close() }
