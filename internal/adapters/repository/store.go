// Package repository keeps the results of asynchronous calorie jobs.
package repository

import (
	"context"

	"github.com/google/uuid"
	"github.com/okian/wellness/internal/domain/model"
)

// Store provides read/write access to job results.
type Store interface {
	// Save inserts or replaces the result for r.JobID.
	Save(ctx context.Context, r model.JobResult) error

	// Get returns the result for a job.
	// Returns ErrNotFound if the job is unknown or was evicted.
	Get(ctx context.Context, id uuid.UUID) (model.JobResult, error)

	// Delete forgets a job. Unknown ids are ignored.
	Delete(ctx context.Context, id uuid.UUID) error

	// Recent returns up to n results, most recently submitted first.
	Recent(ctx context.Context, n int) ([]model.JobResult, error)

	// Count returns the number of results retained.
	Count(ctx context.Context) int
}
