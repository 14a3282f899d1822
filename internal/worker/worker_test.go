package worker

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"clipline/internal/stage"
	"clipline/internal/store"

	"github.com/google/uuid"
)

// memQueue is an in-memory store.Queue with the same exclusivity contract as
// the postgres implementation: a queued job is handed to exactly one caller.
type memQueue struct {
	mu        sync.Mutex
	queued    []*store.Job
	claims    map[uuid.UUID]int
	completed map[uuid.UUID]json.RawMessage
	failed    map[uuid.UUID]string
	progress  map[uuid.UUID][]int
}

func newMemQueue() *memQueue {
	return &memQueue{
		claims:    make(map[uuid.UUID]int),
		completed: make(map[uuid.UUID]json.RawMessage),
		failed:    make(map[uuid.UUID]string),
		progress:  make(map[uuid.UUID][]int),
	}
}

func (q *memQueue) Enqueue(ctx context.Context, tx store.DBTransaction, job *store.Job) error {
	q.mu.Lock()
	defer q.mu.Unlock()
	if job.ID == uuid.Nil {
		job.ID = uuid.New()
	}
	job.Status = store.JobStatusQueued
	q.queued = append(q.queued, job)
	return nil
}

func (q *memQueue) Claim(ctx context.Context, limit int, leaseFor time.Duration) ([]*store.Job, error) {
	q.mu.Lock()
	defer q.mu.Unlock()
	if limit <= 0 {
		limit = 1
	}
	n := min(limit, len(q.queued))
	if n == 0 {
		return nil, nil
	}
	claimed := q.queued[:n]
	q.queued = q.queued[n:]
	for _, job := range claimed {
		job.Status = store.JobStatusRunning
		job.Attempt++
		q.claims[job.ID]++
	}
	return claimed, nil
}

func (q *memQueue) UpdateProgress(ctx context.Context, jobID uuid.UUID, progress int) error {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.progress[jobID] = append(q.progress[jobID], progress)
	return nil
}

func (q *memQueue) Heartbeat(ctx context.Context, jobID uuid.UUID, leaseUntil time.Time) error {
	return nil
}

func (q *memQueue) Complete(ctx context.Context, jobID uuid.UUID, result json.RawMessage) error {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.completed[jobID] = result
	return nil
}

func (q *memQueue) Fail(ctx context.Context, jobID uuid.UUID, errMsg string) error {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.failed[jobID] = errMsg
	return nil
}

func (q *memQueue) ReclaimStale(ctx context.Context, maxAttempts int) (int64, error) {
	return 0, nil
}

func (q *memQueue) CountQueued(ctx context.Context) (int64, error) {
	q.mu.Lock()
	defer q.mu.Unlock()
	return int64(len(q.queued)), nil
}

func (q *memQueue) terminalCount() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.completed) + len(q.failed)
}

// stubHandler is a configurable stage.Handler for dispatcher and poller tests.
type stubHandler struct {
	jobType store.JobType
	result  json.RawMessage
	err     error
	panics  bool
	delay   time.Duration
	runs    sync.Map // job id -> run count
}

func (h *stubHandler) Type() store.JobType {
	return h.jobType
}

func (h *stubHandler) Run(ctx context.Context, job *store.Job, progress stage.ProgressFunc) (json.RawMessage, error) {
	n, _ := h.runs.LoadOrStore(job.ID, 0)
	h.runs.Store(job.ID, n.(int)+1)

	if h.delay > 0 {
		time.Sleep(h.delay)
	}
	if h.panics {
		panic("handler exploded")
	}
	if h.err != nil {
		return nil, h.err
	}
	progress(ctx, 50)
	return h.result, nil
}

// blockingHandler mimics a real backend call: it honors ctx cancellation and
// only returns once released, so tests can hold a job in flight.
type blockingHandler struct {
	jobType store.JobType
	started chan struct{}
	release chan struct{}
}

func newBlockingHandler(jobType store.JobType) *blockingHandler {
	return &blockingHandler{
		jobType: jobType,
		started: make(chan struct{}),
		release: make(chan struct{}),
	}
}

func (h *blockingHandler) Type() store.JobType {
	return h.jobType
}

func (h *blockingHandler) Run(ctx context.Context, job *store.Job, progress stage.ProgressFunc) (json.RawMessage, error) {
	close(h.started)
	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case <-h.release:
		return json.RawMessage(`{}`), nil
	}
}
