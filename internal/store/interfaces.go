package store

import (
	"context"
	"database/sql"

	"github.com/google/uuid"
)

// DBTransaction defines the methods shared by *sql.DB and *sql.Tx.
// This allows us to pass either a connection pool or an active transaction to the repository methods.
type DBTransaction interface {
	ExecContext(ctx context.Context, query string, args ...interface{}) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...interface{}) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...interface{}) *sql.Row
}

type Tx interface {
	DBTransaction
	Commit() error
	Rollback() error
}

// ProjectStore handles persistence of projects.
type ProjectStore interface {
	// CreateProject inserts a new project row.
	CreateProject(ctx context.Context, tx DBTransaction, project *Project) error

	// GetProjectByID returns a project by its ID.
	GetProjectByID(ctx context.Context, id uuid.UUID) (*Project, error)

	// DeleteProject removes a project; clips and jobs cascade.
	DeleteProject(ctx context.Context, id uuid.UUID) error
}

// ClipStore handles persistence of clips.
type ClipStore interface {
	// CreateClip inserts a single user-created clip in pending state.
	CreateClip(ctx context.Context, tx DBTransaction, clip *Clip) error

	// GetClipByID returns a clip by its ID.
	GetClipByID(ctx context.Context, id uuid.UUID) (*Clip, error)

	// ListClipsByProject returns all clips of a project, newest first.
	ListClipsByProject(ctx context.Context, projectID uuid.UUID) ([]*Clip, error)
}

// JobStore handles the read side of the jobs table, consumed by the API
// layer for client-facing polling.
type JobStore interface {
	// GetJobByID returns a job by its ID.
	GetJobByID(ctx context.Context, id uuid.UUID) (*Job, error)

	// ListJobsByProject returns all jobs of a project, newest first.
	ListJobsByProject(ctx context.Context, projectID uuid.UUID) ([]*Job, error)
}
