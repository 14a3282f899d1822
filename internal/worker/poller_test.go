package worker

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"clipline/internal/stage"
	"clipline/internal/store"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func enqueueN(t *testing.T, q *memQueue, jobType store.JobType, n int) []uuid.UUID {
	t.Helper()
	ids := make([]uuid.UUID, 0, n)
	for i := 0; i < n; i++ {
		job := &store.Job{ProjectID: uuid.New(), Type: jobType}
		require.NoError(t, q.Enqueue(context.Background(), nil, job))
		ids = append(ids, job.ID)
	}
	return ids
}

func waitForTerminal(t *testing.T, q *memQueue, want int) {
	t.Helper()
	deadline := time.Now().Add(5 * time.Second)
	for time.Now().Before(deadline) {
		if q.terminalCount() >= want {
			return
		}
		time.Sleep(10 * time.Millisecond)
	}
	t.Fatalf("timed out waiting for %d terminal jobs, have %d", want, q.terminalCount())
}

func TestPoller_ProcessesAllJobsExactlyOnce(t *testing.T) {
	q := newMemQueue()
	ids := enqueueN(t, q, store.JobTypeTranscription, 8)

	h := &stubHandler{jobType: store.JobTypeTranscription, result: json.RawMessage(`{}`), delay: 5 * time.Millisecond}
	d := NewDispatcher(q, []stage.Handler{h}, nil)

	ctx, cancel := context.WithCancel(context.Background())

	// Two pollers in the same process stand in for two worker processes:
	// they share nothing but the queue.
	p1 := NewPoller(q, d, PollerConfig{ID: "w1", Concurrency: 3}, nil)
	p2 := NewPoller(q, d, PollerConfig{ID: "w2", Concurrency: 3}, nil)
	go p1.Run(ctx)
	go p2.Run(ctx)

	waitForTerminal(t, q, len(ids))
	cancel()
	<-p1.Done()
	<-p2.Done()

	for _, id := range ids {
		assert.Equal(t, 1, q.claims[id], "job %s claimed more than once", id)
		assert.Contains(t, q.completed, id)
	}
	assert.Empty(t, q.failed)
}

func TestPoller_FailedJobDoesNotStopLoop(t *testing.T) {
	q := newMemQueue()

	bad := &store.Job{ProjectID: uuid.New(), Type: store.JobTypeVideoCut}
	require.NoError(t, q.Enqueue(context.Background(), nil, bad))
	ids := enqueueN(t, q, store.JobTypeTranscription, 3)

	okHandler := &stubHandler{jobType: store.JobTypeTranscription, result: json.RawMessage(`{}`)}
	d := NewDispatcher(q, []stage.Handler{okHandler}, nil) // no video_cut handler

	ctx, cancel := context.WithCancel(context.Background())
	p := NewPoller(q, d, PollerConfig{Concurrency: 1}, nil)
	go p.Run(ctx)

	waitForTerminal(t, q, 4)
	cancel()
	<-p.Done()

	assert.Contains(t, q.failed[bad.ID], "no handler registered")
	for _, id := range ids {
		assert.Contains(t, q.completed, id, "jobs after a failure must still run")
	}
}

func TestPoller_ConfigDefaultsAndBounds(t *testing.T) {
	p := NewPoller(newMemQueue(), nil, PollerConfig{
		Concurrency:  64,
		PollInterval: time.Millisecond,
	}, nil)

	assert.Equal(t, MaxConcurrency, p.config.Concurrency)
	assert.Equal(t, MinPollInterval, p.config.PollInterval)

	p = NewPoller(newMemQueue(), nil, PollerConfig{}, nil)
	assert.Equal(t, 1, p.config.Concurrency)
	assert.Equal(t, time.Second, p.config.PollInterval)
	assert.Equal(t, 2, p.config.MaxAttempts)
}

func TestPoller_GracefulDrain(t *testing.T) {
	q := newMemQueue()
	ids := enqueueN(t, q, store.JobTypeTranscription, 1)

	// The handler honors ctx cancellation, like any stage driving an HTTP
	// backend. Shutdown must not be delivered to it as a stage failure.
	h := newBlockingHandler(store.JobTypeTranscription)
	d := NewDispatcher(q, []stage.Handler{h}, nil)

	ctx, cancel := context.WithCancel(context.Background())
	p := NewPoller(q, d, PollerConfig{Concurrency: 1}, nil)
	go p.Run(ctx)

	// Cancel while the job is in flight, give the cancellation time to land
	// anywhere it could, then let the stage finish.
	<-h.started
	cancel()
	time.Sleep(50 * time.Millisecond)
	close(h.release)
	<-p.Done()

	assert.Contains(t, q.completed, ids[0], "draining job must finish, not abort")
	assert.Empty(t, q.failed, "shutdown must not fail an in-flight job")
}
