package postgres

import (
	"context"
	"fmt"

	"clipline/internal/store"

	"github.com/google/uuid"
)

const jobColumns = `id, project_id, clip_id, type, status, progress, attempt,
	payload, result_metadata, error_message, lease_expires_at, created_at, started_at, completed_at`

// GetJobByID returns a job by its ID.
func (s *Store) GetJobByID(ctx context.Context, id uuid.UUID) (*store.Job, error) {
	query := fmt.Sprintf("SELECT %s FROM jobs WHERE id = $1", jobColumns)

	job, err := scanJob(s.db.QueryRowContext(ctx, query, id))
	if err != nil {
		return nil, err
	}
	return job, nil
}

// ListJobsByProject returns all jobs of a project, newest first.
// Read-only; consumed by the API layer for client polling.
func (s *Store) ListJobsByProject(ctx context.Context, projectID uuid.UUID) ([]*store.Job, error) {
	query := fmt.Sprintf("SELECT %s FROM jobs WHERE project_id = $1 ORDER BY created_at DESC", jobColumns)

	rows, err := s.db.QueryContext(ctx, query, projectID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var jobs []*store.Job
	for rows.Next() {
		job, err := scanJob(rows)
		if err != nil {
			return nil, err
		}
		jobs = append(jobs, job)
	}
	return jobs, rows.Err()
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanJob(row rowScanner) (*store.Job, error) {
	var job store.Job
	var payload, result []byte
	err := row.Scan(
		&job.ID, &job.ProjectID, &job.ClipID, &job.Type, &job.Status,
		&job.Progress, &job.Attempt, &payload, &result, &job.ErrorMessage,
		&job.LeaseExpiresAt, &job.CreatedAt, &job.StartedAt, &job.CompletedAt,
	)
	if err != nil {
		return nil, err
	}
	job.Payload = payload
	job.ResultMetadata = result
	return &job, nil
}
