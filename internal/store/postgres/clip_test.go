package postgres

import (
	"context"
	"testing"
	"time"

	"clipline/internal/store"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
)

func TestCreateClip_InvalidRange(t *testing.T) {
	s, _ := newMockStore(t)
	defer s.db.Close()

	clip := &store.Clip{
		ProjectID:    uuid.New(),
		Title:        "backwards",
		StartSeconds: 25,
		EndSeconds:   10,
	}
	if err := s.CreateClip(context.Background(), nil, clip); err == nil {
		t.Error("expected error for start >= end, got nil")
	}
}

func TestCreateClip_Success(t *testing.T) {
	s, mock := newMockStore(t)
	defer s.db.Close()

	clip := &store.Clip{
		ProjectID:    uuid.New(),
		Title:        "Hook",
		StartSeconds: 10,
		EndSeconds:   25,
	}

	mock.ExpectExec(`INSERT INTO clips`).
		WillReturnResult(sqlmock.NewResult(0, 1))

	if err := s.CreateClip(context.Background(), nil, clip); err != nil {
		t.Fatalf("CreateClip failed: %v", err)
	}
	if clip.ID == uuid.Nil {
		t.Error("expected clip id to be assigned")
	}
	if clip.Status != store.ClipStatusPending {
		t.Errorf("got status %s, want pending", clip.Status)
	}
}

func TestGetClipByID(t *testing.T) {
	s, mock := newMockStore(t)
	defer s.db.Close()

	clipID := uuid.New()
	projID := uuid.New()
	now := time.Now()

	mock.ExpectQuery(`FROM clips WHERE id = \$1`).
		WithArgs(clipID).
		WillReturnRows(sqlmock.NewRows([]string{
			"id", "project_id", "title", "description", "social_copy", "start_seconds",
			"end_seconds", "score", "output_object", "status", "error_message", "created_at", "updated_at",
		}).AddRow(clipID, projID, "Hook", nil, nil, 10.0, 25.0, nil, nil, "pending", nil, now, now))

	clip, err := s.GetClipByID(context.Background(), clipID)
	if err != nil {
		t.Fatalf("GetClipByID failed: %v", err)
	}
	if clip.StartSeconds != 10 || clip.EndSeconds != 25 {
		t.Errorf("got range [%v, %v], want [10, 25]", clip.StartSeconds, clip.EndSeconds)
	}
}
