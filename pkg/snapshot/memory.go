package snapshot

import (
	"sync"

	"github.com/recall-ai/recall/pkg/models"
)

// MemoryStore keeps snapshots in process memory. It backs ephemeral runs
// and tests; nothing survives a restart. Load and save failures can be
// injected to exercise degraded and recovery paths.
type MemoryStore struct {
	mu      sync.Mutex
	entries map[string]models.Entry
	loadErr error
	saveErr error
}

// NewMemoryStore returns an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{entries: map[string]models.Entry{}}
}

// Load returns a copy of the held entries, or the injected load error.
func (s *MemoryStore) Load() (map[string]models.Entry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.loadErr != nil {
		return nil, s.loadErr
	}
	out := make(map[string]models.Entry, len(s.entries))
	for k, e := range s.entries {
		out[k] = e
	}
	return out, nil
}

// Save replaces the held entries with a copy of entries. An injected save
// error fails the call and leaves the held snapshot untouched.
func (s *MemoryStore) Save(entries map[string]models.Entry) error {
	copied := make(map[string]models.Entry, len(entries))
	for k, e := range entries {
		copied[k] = e
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.saveErr != nil {
		return s.saveErr
	}
	s.entries = copied
	return nil
}

// FailLoads makes subsequent Load calls return err; nil restores normal
// operation.
func (s *MemoryStore) FailLoads(err error) {
	s.mu.Lock()
	s.loadErr = err
	s.mu.Unlock()
}

// FailSaves makes subsequent Save calls return err; nil restores normal
// operation.
func (s *MemoryStore) FailSaves(err error) {
	s.mu.Lock()
	s.saveErr = err
	s.mu.Unlock()
}

// Name identifies the driver in stats output.
func (s *MemoryStore) Name() string { return "memory" }

// Close is a no-op.
func (s *MemoryStore) Close() error { return nil }
