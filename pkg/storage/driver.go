// Package storage persists the transcripts of relayed streams.
package storage

import (
	"context"

	"github.com/papercomputeco/relay/pkg/llm"
)

// Driver defines the interface for persisting and retrieving transcripts in
// a storage backend.
type Driver interface {
	// Put stores a transcript, replacing any transcript with the same ID.
	Put(ctx context.Context, t *llm.Transcript) error

	// Get retrieves a transcript by ID. Returns NotFoundError if it does not
	// exist.
	Get(ctx context.Context, id string) (*llm.Transcript, error)

	// List returns transcripts, most recent first.
	List(ctx context.Context, opts ListOptions) ([]*llm.Transcript, error)

	// Close closes the store and releases any resources.
	Close() error
}

// ListOptions filters List.
type ListOptions struct {
	// Provider restricts results to one provider when set.
	Provider string

	// Limit caps the number of results. Zero means DefaultListLimit.
	Limit int
}

// DefaultListLimit is the page size used when ListOptions.Limit is zero.
const DefaultListLimit = 100

// EffectiveLimit returns the limit to apply.
func (o ListOptions) EffectiveLimit() int {
	if o.Limit <= 0 {
		return DefaultListLimit
	}
	return o.Limit
}
