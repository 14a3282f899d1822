package worker

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"clipline/internal/store"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

// Concurrency is bounded to avoid overwhelming the transcription/AI/transcode
// backends behind the stage handlers.
const (
	MaxConcurrency  = 20
	MinPollInterval = 100 * time.Millisecond
)

// PollerConfig holds configuration for the worker poll loop.
type PollerConfig struct {
	ID                string
	Concurrency       int           // Worker slots (default 1, capped at MaxConcurrency)
	PollInterval      time.Duration // Base interval between claim attempts (default 1s, min 100ms)
	MaxBackoff        time.Duration // Maximum backoff when queue is empty (default 30s)
	HeartbeatInterval time.Duration // Interval between lease extensions (default 1m)
	LeaseDuration     time.Duration // How long a claim stays valid without a heartbeat (default 5m)
	SweepInterval     time.Duration // Interval between orphaned-job sweeps (default 1m)
	MaxAttempts       int           // Attempts before an orphaned job is permanently failed (default 2)
}

// Poller is the worker-side pull loop. Multiple pollers in multiple
// processes coordinate only through the store's row locking: any queued job
// is claimed by exactly one of them.
type Poller struct {
	queue      store.Queue
	dispatcher *Dispatcher
	config     PollerConfig
	logger     *slog.Logger
	claimed    metric.Int64Counter
	done       chan struct{}
}

// NewPoller creates a new poller.
func NewPoller(q store.Queue, d *Dispatcher, config PollerConfig, logger *slog.Logger) *Poller {
	if logger == nil {
		logger = slog.Default()
	}

	if config.Concurrency <= 0 {
		config.Concurrency = 1
	}
	if config.Concurrency > MaxConcurrency {
		config.Concurrency = MaxConcurrency
	}
	if config.PollInterval <= 0 {
		config.PollInterval = 1 * time.Second
	}
	if config.PollInterval < MinPollInterval {
		config.PollInterval = MinPollInterval
	}
	if config.MaxBackoff <= 0 {
		config.MaxBackoff = 30 * time.Second
	}
	if config.HeartbeatInterval <= 0 {
		config.HeartbeatInterval = 1 * time.Minute
	}
	if config.LeaseDuration <= 0 {
		config.LeaseDuration = 5 * time.Minute
	}
	if config.SweepInterval <= 0 {
		config.SweepInterval = 1 * time.Minute
	}
	if config.MaxAttempts <= 0 {
		config.MaxAttempts = 2
	}

	meter := otel.Meter("clipline-worker")
	claimed, err := meter.Int64Counter("clipline.jobs.claimed",
		metric.WithDescription("Jobs claimed by this worker"),
	)
	if err != nil {
		logger.Warn("failed to register claim metric", "error", err)
	}

	return &Poller{
		queue:      q,
		dispatcher: d,
		config:     config,
		logger:     logger.With("worker_id", config.ID),
		claimed:    claimed,
		done:       make(chan struct{}),
	}
}

// Run starts the main pull-loop. It blocks until the context is cancelled.
// On SIGTERM, it stops claiming new work and allows in-flight jobs to finish.
func (p *Poller) Run(ctx context.Context) error {
	p.logger.Info("poller starting", "concurrency", p.config.Concurrency, "poll_interval", p.config.PollInterval)

	// Semaphore to limit concurrency
	sem := make(chan struct{}, p.config.Concurrency)
	var wg sync.WaitGroup

	// Channel to signal when a slot becomes available (adaptive polling)
	pollNow := make(chan struct{}, 1)

	// Current backoff duration (increases on empty queue, resets on work found)
	currentBackoff := p.config.PollInterval

	triggerPoll := func() {
		select {
		case pollNow <- struct{}{}:
		default:
			// Already a poll pending
		}
	}

	go p.runSweep(ctx)

	// Initial poll
	triggerPoll()

	for {
		select {
		case <-ctx.Done():
			p.logger.Info("context cancelled, waiting for running jobs to finish")
			wg.Wait()
			close(p.done)
			return ctx.Err()

		case <-time.After(currentBackoff):
			triggerPoll()

		case <-pollNow:
			availableSlots := p.config.Concurrency - len(sem)
			if availableSlots <= 0 {
				continue
			}

			jobs, err := p.queue.Claim(ctx, availableSlots, p.config.LeaseDuration)
			if err != nil {
				p.logger.Error("claim failed", "error", err)
				continue
			}

			if len(jobs) == 0 {
				// Empty queue - increase backoff (exponential, capped at MaxBackoff)
				currentBackoff = currentBackoff * 2
				if currentBackoff > p.config.MaxBackoff {
					currentBackoff = p.config.MaxBackoff
				}
				continue
			}

			// Found work - reset backoff to minimum
			currentBackoff = p.config.PollInterval

			if p.claimed != nil {
				p.claimed.Add(ctx, int64(len(jobs)),
					metric.WithAttributes(attribute.String("worker.id", p.config.ID)))
			}
			p.logger.Info("claimed jobs", "count", len(jobs))

			for _, job := range jobs {
				sem <- struct{}{}

				wg.Add(1)
				go func(job *store.Job) {
					defer wg.Done()
					defer func() {
						<-sem
						// Slot free again - trigger immediate re-poll
						triggerPoll()
					}()
					p.process(ctx, job)
				}(job)
			}

			// If we filled fewer slots than available, poll again immediately
			if len(jobs) < availableSlots {
				triggerPoll()
			}
		}
	}
}

// Done returns a channel that is closed when the poller has fully stopped.
func (p *Poller) Done() <-chan struct{} {
	return p.done
}

// process runs one claimed job with its heartbeat alive for the duration of
// the stage. The heartbeat uses a background context so shutdown does not
// drop the lease of a draining job, and the stage itself runs detached from
// the poll context: cancelling the poller stops claiming, it never aborts a
// stage that already holds a claim.
func (p *Poller) process(ctx context.Context, job *store.Job) {
	heartbeatCtx, cancelHeartbeat := context.WithCancel(context.Background())
	defer cancelHeartbeat()
	go p.runHeartbeat(heartbeatCtx, job)

	p.dispatcher.Run(context.WithoutCancel(ctx), job)
}

// runHeartbeat extends the job's lease periodically while its stage is
// executing, so the sweep does not hand the job to another worker.
func (p *Poller) runHeartbeat(ctx context.Context, job *store.Job) {
	ticker := time.NewTicker(p.config.HeartbeatInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			leaseUntil := time.Now().Add(p.config.LeaseDuration)
			if err := p.queue.Heartbeat(context.Background(), job.ID, leaseUntil); err != nil {
				p.logger.Warn("heartbeat failed", "job_id", job.ID, "error", err)
			}
		}
	}
}

// runSweep reclaims running jobs whose worker crashed before writing a
// terminal state. Every worker runs the sweep; SKIP LOCKED in the store
// keeps concurrent sweeps from double-handling a row.
func (p *Poller) runSweep(ctx context.Context) {
	ticker := time.NewTicker(p.config.SweepInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			n, err := p.queue.ReclaimStale(ctx, p.config.MaxAttempts)
			if err != nil {
				p.logger.Error("stale sweep failed", "error", err)
				continue
			}
			if n > 0 {
				p.logger.Info("requeued orphaned jobs", "count", n)
			}
		}
	}
}
