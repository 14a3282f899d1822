package postgres

import (
	"context"
	"fmt"
	"time"

	"clipline/internal/store"

	"github.com/google/uuid"
)

// CreateProject inserts a new project row in uploading state.
func (s *Store) CreateProject(ctx context.Context, tx store.DBTransaction, project *store.Project) error {
	if project.ID == uuid.Nil {
		project.ID = uuid.New()
	}
	if project.Status == "" {
		project.Status = store.ProjectStatusUploading
	}
	if project.CreatedAt.IsZero() {
		project.CreatedAt = time.Now()
	}

	query := `
		INSERT INTO projects (id, owner_id, title, source_object, duration_seconds, size_bytes, status, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $8)
	`

	executor := s.getExecutor(tx)
	_, err := executor.ExecContext(ctx, query,
		project.ID,
		project.OwnerID,
		project.Title,
		project.SourceObject,
		project.DurationSeconds,
		project.SizeBytes,
		project.Status,
		project.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create project: %w", err)
	}
	return nil
}

// GetProjectByID returns a project by its ID.
func (s *Store) GetProjectByID(ctx context.Context, id uuid.UUID) (*store.Project, error) {
	query := `
		SELECT id, owner_id, title, source_object, duration_seconds, size_bytes,
		       status, error_message, created_at, updated_at
		FROM projects WHERE id = $1
	`

	var p store.Project
	err := s.db.QueryRowContext(ctx, query, id).Scan(
		&p.ID, &p.OwnerID, &p.Title, &p.SourceObject, &p.DurationSeconds,
		&p.SizeBytes, &p.Status, &p.ErrorMessage, &p.CreatedAt, &p.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &p, nil
}

// DeleteProject removes a project. Clips and jobs cascade at the schema level.
func (s *Store) DeleteProject(ctx context.Context, id uuid.UUID) error {
	_, err := s.db.ExecContext(ctx, "DELETE FROM projects WHERE id = $1", id)
	return err
}
