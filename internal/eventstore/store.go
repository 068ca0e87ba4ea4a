package eventstore

import (
	"context"
	"time"
)

// Store defines the interface for persisting and retrieving journal events.
type Store interface {
	// Append adds a new event to the store.
	Append(ctx context.Context, runID, stem, eventType string, payload []byte, metadata map[string]string) error

	// GetByRunID retrieves all events of one run.
	GetByRunID(ctx context.Context, runID string) ([]Event, error)

	// GetByStem retrieves all events concerning one document.
	GetByStem(ctx context.Context, stem string) ([]Event, error)

	// GetRange retrieves events within a time range.
	GetRange(ctx context.Context, start, end time.Time) ([]Event, error)

	// Close closes the store and releases resources.
	Close() error
}
