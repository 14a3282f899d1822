package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"clipline/internal/store"

	"github.com/google/uuid"
	"github.com/lib/pq"
)

// Default lease policy for the orphaned-job sweep.
const (
	DefaultLease  = 5 * time.Minute
	WorkerLostMsg = "worker lost: lease expired with no terminal state"
)

// ErrJobNotRunning is returned by terminal writes when the job row is not in
// running state. Terminal states are never overwritten.
var ErrJobNotRunning = errors.New("job is not running")

// Enqueue inserts a new job row in queued state.
func (s *Store) Enqueue(ctx context.Context, tx store.DBTransaction, job *store.Job) error {
	if job.ID == uuid.Nil {
		job.ID = uuid.New()
	}
	if job.Payload == nil {
		job.Payload = json.RawMessage(`{}`)
	}

	query := `
		INSERT INTO jobs (id, project_id, clip_id, type, status, progress, payload, created_at)
		VALUES ($1, $2, $3, $4, 'queued', 0, $5, NOW())
		RETURNING created_at
	`

	executor := s.getExecutor(tx)
	err := executor.QueryRowContext(ctx, query, job.ID, job.ProjectID, job.ClipID, job.Type, []byte(job.Payload)).
		Scan(&job.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to enqueue %s job for project %s: %w", job.Type, job.ProjectID, err)
	}

	job.Status = store.JobStatusQueued
	return nil
}

// Claim atomically claims up to 'limit' queued jobs using
// SELECT ... FOR UPDATE SKIP LOCKED. A job visible to two pollers at the same
// instant is claimed by exactly one; the loser sees no eligible row.
// The flip to running and the claim-time parent status updates commit in the
// same transaction.
func (s *Store) Claim(ctx context.Context, limit int, leaseFor time.Duration) ([]*store.Job, error) {
	if limit <= 0 {
		limit = 1
	}
	if leaseFor <= 0 {
		leaseFor = DefaultLease
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback()

	rows, err := tx.QueryContext(ctx, `
		SELECT id, project_id, clip_id, type, payload, attempt
		FROM jobs
		WHERE status = 'queued'
		ORDER BY created_at ASC
		FOR UPDATE SKIP LOCKED
		LIMIT $1
	`, limit)
	if err != nil {
		return nil, fmt.Errorf("claim query failed: %w", err)
	}
	defer rows.Close()

	var jobs []*store.Job
	var jobIDs []uuid.UUID
	for rows.Next() {
		var job store.Job
		var payload []byte
		if err := rows.Scan(&job.ID, &job.ProjectID, &job.ClipID, &job.Type, &payload, &job.Attempt); err != nil {
			return nil, fmt.Errorf("claim scan failed: %w", err)
		}
		job.Payload = payload
		jobs = append(jobs, &job)
		jobIDs = append(jobIDs, job.ID)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("claim rows error: %w", err)
	}

	// Empty queue
	if len(jobs) == 0 {
		return nil, nil
	}

	now := time.Now()
	lease := now.Add(leaseFor)
	_, err = tx.ExecContext(ctx, `
		UPDATE jobs
		SET status = 'running', started_at = COALESCE(started_at, NOW()),
		    attempt = attempt + 1, lease_expires_at = $1
		WHERE id = ANY($2)
	`, lease, pq.Array(jobIDs))
	if err != nil {
		return nil, fmt.Errorf("claim status update failed: %w", err)
	}

	// Claim-time propagation: parent status mirrors the stage that just
	// started. Failed parents stay in error until the caller re-triggers.
	var transcribing, analyzing []uuid.UUID
	var cutting []uuid.UUID
	for _, job := range jobs {
		job.Status = store.JobStatusRunning
		job.Attempt++
		job.StartedAt = &now
		job.LeaseExpiresAt = &lease

		switch job.Type {
		case store.JobTypeTranscription:
			transcribing = append(transcribing, job.ProjectID)
		case store.JobTypeAnalysis:
			analyzing = append(analyzing, job.ProjectID)
		case store.JobTypeVideoCut:
			if job.ClipID != nil {
				cutting = append(cutting, *job.ClipID)
			}
		}
	}
	if len(transcribing) > 0 {
		if _, err := tx.ExecContext(ctx,
			`UPDATE projects SET status = 'transcribing', updated_at = NOW() WHERE id = ANY($1)`,
			pq.Array(transcribing)); err != nil {
			return nil, fmt.Errorf("claim project update failed: %w", err)
		}
	}
	if len(analyzing) > 0 {
		if _, err := tx.ExecContext(ctx,
			`UPDATE projects SET status = 'analyzing', updated_at = NOW() WHERE id = ANY($1)`,
			pq.Array(analyzing)); err != nil {
			return nil, fmt.Errorf("claim project update failed: %w", err)
		}
	}
	if len(cutting) > 0 {
		if _, err := tx.ExecContext(ctx,
			`UPDATE clips SET status = 'processing', updated_at = NOW() WHERE id = ANY($1)`,
			pq.Array(cutting)); err != nil {
			return nil, fmt.Errorf("claim clip update failed: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return nil, err
	}

	return jobs, nil
}

// UpdateProgress raises a running job's progress. GREATEST keeps progress
// monotonically non-decreasing even if stage callbacks arrive out of order.
func (s *Store) UpdateProgress(ctx context.Context, jobID uuid.UUID, progress int) error {
	if progress < 0 {
		progress = 0
	}
	if progress > 100 {
		progress = 100
	}
	_, err := s.db.ExecContext(ctx, `
		UPDATE jobs
		SET progress = GREATEST(progress, $2)
		WHERE id = $1 AND status = 'running'
	`, jobID, progress)
	return err
}

// Heartbeat extends the lease on a running job so the sweep does not reclaim
// it while its stage is still executing.
func (s *Store) Heartbeat(ctx context.Context, jobID uuid.UUID, leaseUntil time.Time) error {
	_, err := s.db.ExecContext(ctx, `
		UPDATE jobs
		SET lease_expires_at = $2
		WHERE id = $1 AND status = 'running'
	`, jobID, leaseUntil)
	return err
}

// Complete marks a running job succeeded and mirrors the outcome onto the
// owning project or clip. Both writes commit in one transaction so a reader
// can never observe a succeeded job whose parent is still in a pre-stage
// status.
func (s *Store) Complete(ctx context.Context, jobID uuid.UUID, result json.RawMessage) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	job, err := lockRunningJob(ctx, tx, jobID)
	if err != nil {
		return err
	}

	if result == nil {
		result = json.RawMessage(`{}`)
	}
	_, err = tx.ExecContext(ctx, `
		UPDATE jobs
		SET status = 'succeeded', progress = 100, result_metadata = $2,
		    error_message = NULL, lease_expires_at = NULL, completed_at = NOW()
		WHERE id = $1
	`, jobID, []byte(result))
	if err != nil {
		return fmt.Errorf("failed to complete job %s: %w", jobID, err)
	}

	if err := propagateSuccess(ctx, tx, job, result); err != nil {
		return err
	}

	return tx.Commit()
}

// Fail marks a running job failed with the stage error captured verbatim and
// moves the owning entity to error in the same transaction.
func (s *Store) Fail(ctx context.Context, jobID uuid.UUID, errMsg string) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	job, err := lockRunningJob(ctx, tx, jobID)
	if err != nil {
		return err
	}

	_, err = tx.ExecContext(ctx, `
		UPDATE jobs
		SET status = 'failed', error_message = $2, lease_expires_at = NULL, completed_at = NOW()
		WHERE id = $1
	`, jobID, errMsg)
	if err != nil {
		return fmt.Errorf("failed to fail job %s: %w", jobID, err)
	}

	if err := propagateFailure(ctx, tx, job, errMsg); err != nil {
		return err
	}

	return tx.Commit()
}

// ReclaimStale requeues running jobs whose lease expired, giving each a
// bounded number of attempts before it is permanently failed as orphaned.
// Expired rows are locked with SKIP LOCKED so concurrent sweeps from several
// workers do not double-handle a job.
func (s *Store) ReclaimStale(ctx context.Context, maxAttempts int) (int64, error) {
	if maxAttempts <= 0 {
		maxAttempts = 1
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, err
	}
	defer tx.Rollback()

	rows, err := tx.QueryContext(ctx, `
		SELECT id, project_id, clip_id, type, attempt
		FROM jobs
		WHERE status = 'running' AND lease_expires_at < NOW()
		FOR UPDATE SKIP LOCKED
	`)
	if err != nil {
		return 0, fmt.Errorf("stale scan failed: %w", err)
	}
	defer rows.Close()

	var requeue []uuid.UUID
	var orphaned []*store.Job
	for rows.Next() {
		var job store.Job
		if err := rows.Scan(&job.ID, &job.ProjectID, &job.ClipID, &job.Type, &job.Attempt); err != nil {
			return 0, fmt.Errorf("stale scan failed: %w", err)
		}
		if job.Attempt < maxAttempts {
			requeue = append(requeue, job.ID)
		} else {
			orphaned = append(orphaned, &job)
		}
	}
	if err := rows.Err(); err != nil {
		return 0, fmt.Errorf("stale rows error: %w", err)
	}

	if len(requeue) > 0 {
		_, err = tx.ExecContext(ctx, `
			UPDATE jobs
			SET status = 'queued', started_at = NULL, progress = 0, lease_expires_at = NULL
			WHERE id = ANY($1)
		`, pq.Array(requeue))
		if err != nil {
			return 0, fmt.Errorf("stale requeue failed: %w", err)
		}
	}

	for _, job := range orphaned {
		_, err = tx.ExecContext(ctx, `
			UPDATE jobs
			SET status = 'failed', error_message = $2, lease_expires_at = NULL, completed_at = NOW()
			WHERE id = $1
		`, job.ID, WorkerLostMsg)
		if err != nil {
			return 0, fmt.Errorf("orphan fail failed: %w", err)
		}
		if err := propagateFailure(ctx, tx, job, WorkerLostMsg); err != nil {
			return 0, err
		}
	}

	if err := tx.Commit(); err != nil {
		return 0, err
	}

	return int64(len(requeue)), nil
}

// CountQueued tracks the queue depth for metrics.
func (s *Store) CountQueued(ctx context.Context) (int64, error) {
	var count int64
	err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM jobs WHERE status = 'queued'`).Scan(&count)
	return count, err
}

// lockRunningJob loads and row-locks a job that must still be running.
// The claim is held by the calling worker for the lifetime of the stage, so
// this lock only ever contends with the sweep.
func lockRunningJob(ctx context.Context, tx store.DBTransaction, jobID uuid.UUID) (*store.Job, error) {
	var job store.Job
	err := tx.QueryRowContext(ctx, `
		SELECT id, project_id, clip_id, type
		FROM jobs
		WHERE id = $1 AND status = 'running'
		FOR UPDATE
	`, jobID).Scan(&job.ID, &job.ProjectID, &job.ClipID, &job.Type)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrJobNotRunning
	}
	if err != nil {
		return nil, fmt.Errorf("failed to lock job %s: %w", jobID, err)
	}
	return &job, nil
}

// propagateSuccess applies the per-type terminal transition to the owning
// project or clip inside the caller's transaction.
func propagateSuccess(ctx context.Context, tx store.DBTransaction, job *store.Job, result json.RawMessage) error {
	switch job.Type {
	case store.JobTypeTranscription:
		// Transcript available; the caller may now request analysis.
		return setProjectStatus(ctx, tx, job.ProjectID, store.ProjectStatusAnalyzing)

	case store.JobTypeAnalysis:
		var res store.AnalysisResult
		if err := json.Unmarshal(result, &res); err != nil {
			return fmt.Errorf("malformed analysis result for job %s: %w", job.ID, err)
		}
		for _, sug := range res.Suggestions {
			_, err := tx.ExecContext(ctx, `
				INSERT INTO clips (id, project_id, title, description, social_copy,
				                   start_seconds, end_seconds, score, status, created_at, updated_at)
				VALUES ($1, $2, $3, $4, $5, $6, $7, $8, 'pending', NOW(), NOW())
			`, uuid.New(), job.ProjectID, sug.Title, nullString(sug.Description),
				nullString(sug.SocialCopy), sug.StartSeconds, sug.EndSeconds, sug.Score)
			if err != nil {
				return fmt.Errorf("failed to insert suggested clip: %w", err)
			}
		}
		return setProjectStatus(ctx, tx, job.ProjectID, store.ProjectStatusCompleted)

	case store.JobTypeVideoCut:
		if job.ClipID == nil {
			return fmt.Errorf("video_cut job %s has no clip", job.ID)
		}
		var res store.VideoCutResult
		if err := json.Unmarshal(result, &res); err != nil {
			return fmt.Errorf("malformed video_cut result for job %s: %w", job.ID, err)
		}
		_, err := tx.ExecContext(ctx, `
			UPDATE clips
			SET status = 'completed', output_object = $2, error_message = NULL, updated_at = NOW()
			WHERE id = $1
		`, *job.ClipID, res.OutputObject)
		if err != nil {
			return fmt.Errorf("failed to update clip %s: %w", *job.ClipID, err)
		}
		return nil

	case store.JobTypeUploadTransfer:
		var res store.UploadTransferResult
		if err := json.Unmarshal(result, &res); err != nil {
			return fmt.Errorf("malformed upload_transfer result for job %s: %w", job.ID, err)
		}
		_, err := tx.ExecContext(ctx, `
			UPDATE projects
			SET status = 'processing', source_object = $2, size_bytes = NULLIF($3, 0),
			    error_message = NULL, updated_at = NOW()
			WHERE id = $1
		`, job.ProjectID, res.SourceObject, res.SizeBytes)
		if err != nil {
			return fmt.Errorf("failed to update project %s: %w", job.ProjectID, err)
		}
		return nil
	}

	return fmt.Errorf("unknown job type %q", job.Type)
}

// propagateFailure moves the owning entity to error with the job's message.
// Clip-scoped jobs never touch the project, so two video_cut failures on
// different clips stay isolated.
func propagateFailure(ctx context.Context, tx store.DBTransaction, job *store.Job, errMsg string) error {
	if job.ClipID != nil {
		_, err := tx.ExecContext(ctx, `
			UPDATE clips
			SET status = 'error', error_message = $2, updated_at = NOW()
			WHERE id = $1
		`, *job.ClipID, errMsg)
		if err != nil {
			return fmt.Errorf("failed to propagate error to clip %s: %w", *job.ClipID, err)
		}
		return nil
	}

	_, err := tx.ExecContext(ctx, `
		UPDATE projects
		SET status = 'error', error_message = $2, updated_at = NOW()
		WHERE id = $1
	`, job.ProjectID, errMsg)
	if err != nil {
		return fmt.Errorf("failed to propagate error to project %s: %w", job.ProjectID, err)
	}
	return nil
}

func setProjectStatus(ctx context.Context, tx store.DBTransaction, projectID uuid.UUID, status store.ProjectStatus) error {
	_, err := tx.ExecContext(ctx, `
		UPDATE projects
		SET status = $2, error_message = NULL, updated_at = NOW()
		WHERE id = $1
	`, projectID, status)
	if err != nil {
		return fmt.Errorf("failed to update project %s: %w", projectID, err)
	}
	return nil
}

func nullString(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
