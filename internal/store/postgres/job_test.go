package postgres

import (
	"context"
	"testing"
	"time"

	"clipline/internal/store"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
)

func jobRows() *sqlmock.Rows {
	return sqlmock.NewRows([]string{
		"id", "project_id", "clip_id", "type", "status", "progress", "attempt",
		"payload", "result_metadata", "error_message", "lease_expires_at",
		"created_at", "started_at", "completed_at",
	})
}

func TestGetJobByID(t *testing.T) {
	s, mock := newMockStore(t)
	defer s.db.Close()

	jobID := uuid.New()
	projID := uuid.New()
	now := time.Now()

	mock.ExpectQuery(`SELECT (.+) FROM jobs WHERE id = \$1`).
		WithArgs(jobID).
		WillReturnRows(jobRows().
			AddRow(jobID, projID, nil, "transcription", "succeeded", 100, 1,
				[]byte(`{"source_object":"uploads/v1.mp4"}`), []byte(`{"transcript_object":"t.json"}`),
				nil, nil, now, now, now))

	job, err := s.GetJobByID(context.Background(), jobID)
	if err != nil {
		t.Fatalf("GetJobByID failed: %v", err)
	}
	if job.Status != store.JobStatusSucceeded {
		t.Errorf("got status %s, want succeeded", job.Status)
	}
	if job.Progress != 100 {
		t.Errorf("got progress %d, want 100", job.Progress)
	}
	if string(job.ResultMetadata) != `{"transcript_object":"t.json"}` {
		t.Errorf("unexpected result metadata: %s", job.ResultMetadata)
	}
}

func TestListJobsByProject(t *testing.T) {
	s, mock := newMockStore(t)
	defer s.db.Close()

	projID := uuid.New()
	now := time.Now()

	mock.ExpectQuery(`FROM jobs WHERE project_id = \$1 ORDER BY created_at DESC`).
		WithArgs(projID).
		WillReturnRows(jobRows().
			AddRow(uuid.New(), projID, nil, "analysis", "queued", 0, 0, []byte(`{}`), nil, nil, nil, now, nil, nil).
			AddRow(uuid.New(), projID, nil, "transcription", "succeeded", 100, 1, []byte(`{}`), []byte(`{}`), nil, nil, now, now, now))

	jobs, err := s.ListJobsByProject(context.Background(), projID)
	if err != nil {
		t.Fatalf("ListJobsByProject failed: %v", err)
	}
	if len(jobs) != 2 {
		t.Fatalf("expected 2 jobs, got %d", len(jobs))
	}
	if jobs[0].Type != store.JobTypeAnalysis {
		t.Errorf("got type %s, want analysis", jobs[0].Type)
	}
}
