package handlers

import (
	"context"
	"database/sql"
	"encoding/json"
	"time"

	"clipline/internal/store"

	"github.com/google/uuid"
)

// Mock transaction
type mockTx struct {
	commitErr error
}

func (m *mockTx) ExecContext(ctx context.Context, query string, args ...interface{}) (sql.Result, error) {
	return nil, nil
}
func (m *mockTx) QueryContext(ctx context.Context, query string, args ...interface{}) (*sql.Rows, error) {
	return nil, nil
}
func (m *mockTx) QueryRowContext(ctx context.Context, query string, args ...interface{}) *sql.Row {
	return nil
}

func (m *mockTx) Commit() error { return m.commitErr }

func (m *mockTx) Rollback() error { return nil }

// Mock Store
type mockStore struct {
	beginTxErr error
	commitErr  error
	pingErr    error

	// Project Hooks
	createProjectErr error
	getProjectResp   *store.Project
	getProjectErr    error
	deleteProjectErr error

	// Clip Hooks
	createClipErr error
	getClipResp   *store.Clip
	getClipErr    error
	listClipsResp []*store.Clip
	listClipsErr  error

	// Job Hooks
	getJobResp   *store.Job
	getJobErr    error
	listJobsResp []*store.Job
	listJobsErr  error

	// Queue Hooks
	enqueueErr error

	// Spies (to verify arguments passed by handlers)
	capturedProject *store.Project
	capturedJob     *store.Job
}

func (m *mockStore) BeginTx(ctx context.Context) (store.Tx, error) {
	if m.beginTxErr != nil {
		return nil, m.beginTxErr
	}
	return &mockTx{commitErr: m.commitErr}, nil
}

func (m *mockStore) Ping(ctx context.Context) error {
	return m.pingErr
}

func (m *mockStore) CreateProject(ctx context.Context, tx store.DBTransaction, project *store.Project) error {
	m.capturedProject = project
	return m.createProjectErr
}

func (m *mockStore) GetProjectByID(ctx context.Context, id uuid.UUID) (*store.Project, error) {
	return m.getProjectResp, m.getProjectErr
}

func (m *mockStore) DeleteProject(ctx context.Context, id uuid.UUID) error {
	return m.deleteProjectErr
}

func (m *mockStore) CreateClip(ctx context.Context, tx store.DBTransaction, clip *store.Clip) error {
	return m.createClipErr
}

func (m *mockStore) GetClipByID(ctx context.Context, id uuid.UUID) (*store.Clip, error) {
	return m.getClipResp, m.getClipErr
}

func (m *mockStore) ListClipsByProject(ctx context.Context, projectID uuid.UUID) ([]*store.Clip, error) {
	return m.listClipsResp, m.listClipsErr
}

func (m *mockStore) GetJobByID(ctx context.Context, id uuid.UUID) (*store.Job, error) {
	return m.getJobResp, m.getJobErr
}

func (m *mockStore) ListJobsByProject(ctx context.Context, projectID uuid.UUID) ([]*store.Job, error) {
	return m.listJobsResp, m.listJobsErr
}

func (m *mockStore) Enqueue(ctx context.Context, tx store.DBTransaction, job *store.Job) error {
	if m.enqueueErr != nil {
		return m.enqueueErr
	}
	if job.ID == uuid.Nil {
		job.ID = uuid.New()
	}
	m.capturedJob = job
	return nil
}

func (m *mockStore) Claim(ctx context.Context, limit int, leaseFor time.Duration) ([]*store.Job, error) {
	return nil, nil
}

func (m *mockStore) UpdateProgress(ctx context.Context, jobID uuid.UUID, progress int) error {
	return nil
}

func (m *mockStore) Heartbeat(ctx context.Context, jobID uuid.UUID, leaseUntil time.Time) error {
	return nil
}

func (m *mockStore) Complete(ctx context.Context, jobID uuid.UUID, result json.RawMessage) error {
	return nil
}

func (m *mockStore) Fail(ctx context.Context, jobID uuid.UUID, errMsg string) error {
	return nil
}

func (m *mockStore) ReclaimStale(ctx context.Context, maxAttempts int) (int64, error) {
	return 0, nil
}

func (m *mockStore) CountQueued(ctx context.Context) (int64, error) {
	return 0, nil
}
