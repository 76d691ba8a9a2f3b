package store

import (
	"errors"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
)

// MemStore is the in-memory Store used by tests and by one-shot runs that
// skip persistence. Safe for concurrent use.
type MemStore struct {
	mu         sync.Mutex
	runs       map[string]*Run
	iterations map[string][]*Iteration // keyed by run ID
	trials     map[string][]*Trial
	nextIter   int64
	nextTrial  int64
}

// NewMemStore returns an empty MemStore.
func NewMemStore() *MemStore {
	return &MemStore{
		runs:       make(map[string]*Run),
		iterations: make(map[string][]*Iteration),
		trials:     make(map[string][]*Trial),
	}
}

func nowUTC() string { return time.Now().UTC().Format(time.RFC3339) }

func (s *MemStore) CreateRun(run *Run) (string, error) {
	if run == nil {
		return "", errors.New("run is nil")
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	cp := *run
	if cp.ID == "" {
		cp.ID = uuid.NewString()
	}
	if cp.CreatedAt == "" {
		cp.CreatedAt = nowUTC()
	}
	s.runs[cp.ID] = &cp
	return cp.ID, nil
}

func (s *MemStore) GetRun(id string) (*Run, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	run, ok := s.runs[id]
	if !ok {
		return nil, nil
	}
	cp := *run
	return &cp, nil
}

func (s *MemStore) ListRuns() ([]*Run, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]*Run, 0, len(s.runs))
	for _, run := range s.runs {
		cp := *run
		out = append(out, &cp)
	}
	sort.Slice(out, func(a, b int) bool {
		if out[a].CreatedAt != out[b].CreatedAt {
			return out[a].CreatedAt < out[b].CreatedAt
		}
		return out[a].ID < out[b].ID
	})
	return out, nil
}

func (s *MemStore) AddIteration(it *Iteration) (int64, error) {
	if it == nil {
		return 0, errors.New("iteration is nil")
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.runs[it.RunID]; !ok {
		return 0, errors.New("unknown run " + it.RunID)
	}
	s.nextIter++
	cp := *it
	cp.ID = s.nextIter
	s.iterations[it.RunID] = append(s.iterations[it.RunID], &cp)
	return cp.ID, nil
}

func (s *MemStore) ListIterations(runID string) ([]*Iteration, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	src := s.iterations[runID]
	out := make([]*Iteration, len(src))
	for i, it := range src {
		cp := *it
		out[i] = &cp
	}
	sort.Slice(out, func(a, b int) bool { return out[a].Round < out[b].Round })
	return out, nil
}

func (s *MemStore) AddTrial(tr *Trial) (int64, error) {
	if tr == nil {
		return 0, errors.New("trial is nil")
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.runs[tr.RunID]; !ok {
		return 0, errors.New("unknown run " + tr.RunID)
	}
	s.nextTrial++
	cp := *tr
	cp.ID = s.nextTrial
	s.trials[tr.RunID] = append(s.trials[tr.RunID], &cp)
	return cp.ID, nil
}

func (s *MemStore) ListTrials(runID string) ([]*Trial, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	src := s.trials[runID]
	out := make([]*Trial, len(src))
	for i, tr := range src {
		cp := *tr
		out[i] = &cp
	}
	sort.Slice(out, func(a, b int) bool { return out[a].TrialIndex < out[b].TrialIndex })
	return out, nil
}

func (s *MemStore) Close() error { return nil }
