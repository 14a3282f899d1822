package postgres

import (
	"context"
	"fmt"
	"time"

	"clipline/internal/store"

	"github.com/google/uuid"
)

const clipColumns = `id, project_id, title, description, social_copy, start_seconds,
	end_seconds, score, output_object, status, error_message, created_at, updated_at`

// CreateClip inserts a single user-created clip. Bulk inserts from the
// analysis stage go through the terminal-write transaction instead.
func (s *Store) CreateClip(ctx context.Context, tx store.DBTransaction, clip *store.Clip) error {
	if clip.ID == uuid.Nil {
		clip.ID = uuid.New()
	}
	if clip.Status == "" {
		clip.Status = store.ClipStatusPending
	}
	if clip.StartSeconds >= clip.EndSeconds {
		return fmt.Errorf("invalid clip range: start %.3f >= end %.3f", clip.StartSeconds, clip.EndSeconds)
	}
	if clip.CreatedAt.IsZero() {
		clip.CreatedAt = time.Now()
	}

	query := `
		INSERT INTO clips (id, project_id, title, description, social_copy,
		                   start_seconds, end_seconds, score, status, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $10)
	`

	executor := s.getExecutor(tx)
	_, err := executor.ExecContext(ctx, query,
		clip.ID,
		clip.ProjectID,
		clip.Title,
		clip.Description,
		clip.SocialCopy,
		clip.StartSeconds,
		clip.EndSeconds,
		clip.Score,
		clip.Status,
		clip.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create clip: %w", err)
	}
	return nil
}

// GetClipByID returns a clip by its ID.
func (s *Store) GetClipByID(ctx context.Context, id uuid.UUID) (*store.Clip, error) {
	query := fmt.Sprintf("SELECT %s FROM clips WHERE id = $1", clipColumns)

	clip, err := scanClip(s.db.QueryRowContext(ctx, query, id))
	if err != nil {
		return nil, err
	}
	return clip, nil
}

// ListClipsByProject returns all clips of a project, newest first.
func (s *Store) ListClipsByProject(ctx context.Context, projectID uuid.UUID) ([]*store.Clip, error) {
	query := fmt.Sprintf("SELECT %s FROM clips WHERE project_id = $1 ORDER BY created_at DESC", clipColumns)

	rows, err := s.db.QueryContext(ctx, query, projectID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var clips []*store.Clip
	for rows.Next() {
		clip, err := scanClip(rows)
		if err != nil {
			return nil, err
		}
		clips = append(clips, clip)
	}
	return clips, rows.Err()
}

func scanClip(row rowScanner) (*store.Clip, error) {
	var c store.Clip
	err := row.Scan(
		&c.ID, &c.ProjectID, &c.Title, &c.Description, &c.SocialCopy,
		&c.StartSeconds, &c.EndSeconds, &c.Score, &c.OutputObject,
		&c.Status, &c.ErrorMessage, &c.CreatedAt, &c.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &c, nil
}
