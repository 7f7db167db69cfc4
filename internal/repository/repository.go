package repository

import (
	"context"

	"manifestlock/internal/domain"
)

// RunHistory defines the interface for run-history persistence. The sqlite
// subpackage provides the implementation.
type RunHistory interface {
	// RecordRun persists a finished run together with its failures.
	RecordRun(ctx context.Context, run *domain.RunRecord) error

	// GetRun retrieves a single run by ID, failures included. Returns
	// nil when no such run exists.
	GetRun(ctx context.Context, id string) (*domain.RunRecord, error)

	// ListRuns returns the most recent runs, newest first, without their
	// failure lists. A non-positive limit returns all runs.
	ListRuns(ctx context.Context, limit int) ([]*domain.RunRecord, error)

	// Close releases resources
	Close() error
}
