// Package pipeline contains the enqueue side of the clipline job queue.
package pipeline

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"clipline/internal/store"

	"github.com/google/uuid"
)

// ValidationError is returned for malformed enqueue requests. It is surfaced
// synchronously to the caller and never produces a job row.
type ValidationError struct {
	msg string
}

func (e *ValidationError) Error() string {
	return e.msg
}

func validationErrorf(format string, args ...any) *ValidationError {
	return &ValidationError{msg: fmt.Sprintf(format, args...)}
}

// EnqueueRequest describes one stage run to queue.
type EnqueueRequest struct {
	Type      store.JobType
	ProjectID uuid.UUID
	ClipID    *uuid.UUID
	Payload   json.RawMessage
}

// Enqueuer validates enqueue requests and inserts queued job rows.
// Idempotency is the caller's responsibility: no deduplication happens here,
// so callers must not double-enqueue transcription or analysis for the same
// project. Multiple video_cut jobs for different clips are fine.
type Enqueuer struct {
	queue  store.Queue
	logger *slog.Logger
}

// NewEnqueuer creates a new Enqueuer.
func NewEnqueuer(q store.Queue, logger *slog.Logger) *Enqueuer {
	if logger == nil {
		logger = slog.Default()
	}
	return &Enqueuer{queue: q, logger: logger}
}

// Enqueue inserts one queued job row and returns its id. It never blocks on
// downstream processing and performs no status propagation; that happens
// when the job reaches a terminal state.
func (e *Enqueuer) Enqueue(ctx context.Context, req EnqueueRequest) (uuid.UUID, error) {
	if !req.Type.Valid() {
		return uuid.Nil, validationErrorf("unknown job type %q", req.Type)
	}
	if req.ProjectID == uuid.Nil {
		return uuid.Nil, validationErrorf("project id is required")
	}
	if req.Type == store.JobTypeVideoCut && req.ClipID == nil {
		return uuid.Nil, validationErrorf("video_cut requires a clip id")
	}
	if req.Type != store.JobTypeVideoCut && req.ClipID != nil {
		return uuid.Nil, validationErrorf("%s jobs must not reference a clip", req.Type)
	}

	if req.Payload == nil {
		req.Payload = json.RawMessage(`{}`)
	}
	if _, err := store.DecodePayload(req.Type, req.Payload); err != nil {
		return uuid.Nil, validationErrorf("%v", err)
	}

	job := &store.Job{
		ProjectID: req.ProjectID,
		ClipID:    req.ClipID,
		Type:      req.Type,
		Payload:   req.Payload,
	}
	if err := e.queue.Enqueue(ctx, nil, job); err != nil {
		return uuid.Nil, fmt.Errorf("enqueue failed: %w", err)
	}

	e.logger.InfoContext(ctx, "job enqueued",
		"job_id", job.ID,
		"type", job.Type,
		"project_id", job.ProjectID,
	)
	return job.ID, nil
}
