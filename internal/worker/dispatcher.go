// Package worker contains the worker-side poll loop and stage dispatch.
package worker

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"clipline/internal/stage"
	"clipline/internal/store"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"
)

// Dispatcher routes a claimed job to its stage handler and writes exactly
// one terminal state. Stage errors are captured verbatim into the job; they
// never escape to the poll loop.
type Dispatcher struct {
	queue         store.Queue
	handlers      map[store.JobType]stage.Handler
	logger        *slog.Logger
	stageDuration metric.Float64Histogram
}

// NewDispatcher creates a dispatcher over the given stage handlers.
func NewDispatcher(q store.Queue, handlers []stage.Handler, logger *slog.Logger) *Dispatcher {
	if logger == nil {
		logger = slog.Default()
	}

	byType := make(map[store.JobType]stage.Handler, len(handlers))
	for _, h := range handlers {
		byType[h.Type()] = h
	}

	meter := otel.Meter("clipline-worker")
	stageDuration, err := meter.Float64Histogram("clipline.stage.duration",
		metric.WithDescription("Stage execution time in seconds"),
		metric.WithUnit("s"),
	)
	if err != nil {
		logger.Warn("failed to register stage duration metric", "error", err)
	}

	return &Dispatcher{
		queue:         q,
		handlers:      byType,
		logger:        logger,
		stageDuration: stageDuration,
	}
}

// Run executes the stage for one claimed job through to its terminal state.
// Terminal writes use a background context so an in-flight job still records
// its outcome during graceful shutdown.
func (d *Dispatcher) Run(ctx context.Context, job *store.Job) {
	tracer := otel.Tracer("clipline-worker")
	ctx, span := tracer.Start(ctx, "run_stage",
		trace.WithAttributes(
			attribute.String("job.id", job.ID.String()),
			attribute.String("job.type", string(job.Type)),
			attribute.String("project.id", job.ProjectID.String()),
		),
		trace.WithSpanKind(trace.SpanKindConsumer),
	)
	defer span.End()

	logger := d.logger.With("job_id", job.ID, "type", job.Type)

	handler, ok := d.handlers[job.Type]
	if !ok {
		logger.Error("no handler registered for job type")
		d.fail(job, fmt.Sprintf("no handler registered for job type %q", job.Type))
		return
	}

	progress := func(ctx context.Context, p int) {
		if err := d.queue.UpdateProgress(ctx, job.ID, p); err != nil {
			logger.Warn("progress update failed", "progress", p, "error", err)
		}
	}

	start := time.Now()
	result, err := d.runHandler(ctx, handler, job, progress)
	elapsed := time.Since(start)
	if d.stageDuration != nil {
		d.stageDuration.Record(ctx, elapsed.Seconds(),
			metric.WithAttributes(attribute.String("job.type", string(job.Type))))
	}

	if err != nil {
		span.RecordError(err)
		logger.Error("stage failed", "error", err, "elapsed", elapsed)
		d.fail(job, err.Error())
		return
	}

	logger.Info("stage succeeded", "elapsed", elapsed)
	if err := d.queue.Complete(context.Background(), job.ID, result); err != nil {
		logger.Error("failed to record success", "error", err)
	}
}

// runHandler isolates handler panics so a buggy stage cannot take down the
// worker slot.
func (d *Dispatcher) runHandler(ctx context.Context, handler stage.Handler, job *store.Job, progress stage.ProgressFunc) (result json.RawMessage, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("stage panic: %v", r)
		}
	}()
	return handler.Run(ctx, job, progress)
}

func (d *Dispatcher) fail(job *store.Job, msg string) {
	if err := d.queue.Fail(context.Background(), job.ID, msg); err != nil {
		d.logger.Error("failed to record failure", "job_id", job.ID, "error", err)
	}
}
