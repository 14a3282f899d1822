// Package store contains the database layer for clipline.
package store

import (
	"context"
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// Queue defines the interface for job queue operations.
// Implementations must use SELECT ... FOR UPDATE SKIP LOCKED semantics so
// that a queued job is claimed by at most one worker across any number of
// processes.
type Queue interface {
	// Enqueue inserts a new job row in queued state with progress 0.
	// It performs no deduplication and never blocks on downstream work.
	Enqueue(ctx context.Context, tx DBTransaction, job *Job) error

	// Claim atomically claims up to 'limit' queued jobs in creation order,
	// flips them to running and applies claim-time parent propagation in the
	// same transaction. Returns nil slice if no job is eligible.
	Claim(ctx context.Context, limit int, leaseFor time.Duration) ([]*Job, error)

	// UpdateProgress raises a running job's progress. Values below the
	// current progress are ignored; progress never decreases.
	UpdateProgress(ctx context.Context, jobID uuid.UUID, progress int) error

	// Heartbeat extends the lease on a running job.
	Heartbeat(ctx context.Context, jobID uuid.UUID, leaseUntil time.Time) error

	// Complete marks a running job succeeded with the given result metadata
	// and propagates the outcome to the owning project or clip. The job's
	// terminal write and the parent update commit atomically.
	Complete(ctx context.Context, jobID uuid.UUID, result json.RawMessage) error

	// Fail marks a running job failed, recording errMsg verbatim, and moves
	// the owning project or clip to error in the same transaction.
	Fail(ctx context.Context, jobID uuid.UUID, errMsg string) error

	// ReclaimStale returns running jobs whose lease expired back to queued
	// for another attempt, and permanently fails jobs that exhausted their
	// attempts. Returns the number of requeued jobs.
	ReclaimStale(ctx context.Context, maxAttempts int) (int64, error)

	// CountQueued tracks the number of jobs waiting in the queue.
	CountQueued(ctx context.Context) (int64, error)
}
