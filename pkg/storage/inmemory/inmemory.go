// Package inmemory provides a map-backed storage driver.
package inmemory

import (
	"context"
	"errors"
	"slices"
	"sync"

	"github.com/papercomputeco/relay/pkg/llm"
	"github.com/papercomputeco/relay/pkg/storage"
)

// Driver implements storage.Driver using an in-memory map.
type Driver struct {
	// mu is a read write sync mutex for locking the mapping of transcripts
	mu sync.RWMutex

	// transcripts is keyed by transcript ID
	transcripts map[string]*llm.Transcript
}

// NewDriver creates a new in-memory driver.
func NewDriver() *Driver {
	return &Driver{
		transcripts: make(map[string]*llm.Transcript),
	}
}

// Put stores a copy of t.
func (s *Driver) Put(_ context.Context, t *llm.Transcript) error {
	if t == nil {
		return errors.New("cannot store nil transcript")
	}
	if t.ID == "" {
		return errors.New("transcript id is required")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	c := *t
	s.transcripts[t.ID] = &c
	return nil
}

// Get retrieves a transcript by ID.
func (s *Driver) Get(_ context.Context, id string) (*llm.Transcript, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	t, ok := s.transcripts[id]
	if !ok {
		return nil, storage.NotFoundError{ID: id}
	}

	c := *t
	return &c, nil
}

// List returns transcripts, most recent first.
func (s *Driver) List(_ context.Context, opts storage.ListOptions) ([]*llm.Transcript, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	result := make([]*llm.Transcript, 0, len(s.transcripts))
	for _, t := range s.transcripts {
		if opts.Provider != "" && t.Provider != opts.Provider {
			continue
		}
		c := *t
		result = append(result, &c)
	}

	slices.SortFunc(result, func(a, b *llm.Transcript) int {
		return b.StartedAt.Compare(a.StartedAt)
	})

	if limit := opts.EffectiveLimit(); len(result) > limit {
		result = result[:limit]
	}
	return result, nil
}

// Close is a no-op for the in-memory driver.
func (s *Driver) Close() error {
	return nil
}
