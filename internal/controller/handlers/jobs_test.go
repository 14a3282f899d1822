package handlers

import (
	"database/sql"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"clipline/internal/store"
	"clipline/pkg/api"

	"github.com/google/uuid"
)

func enqueueRequest(t *testing.T, projectID, body string) *http.Request {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, "/projects/"+projectID+"/jobs", strings.NewReader(body))
	req.SetPathValue("projectID", projectID)
	return req
}

func TestEnqueueJob_Success(t *testing.T) {
	projectID := uuid.New()
	ms := &mockStore{getProjectResp: &store.Project{ID: projectID}}
	h := New(ms, nil)

	body := `{"type": "transcription", "payload": {"source_object": "sources/a.mp4"}}`
	rr := httptest.NewRecorder()
	h.EnqueueJob(rr, enqueueRequest(t, projectID.String(), body))

	if rr.Code != http.StatusOK {
		t.Fatalf("got status %d, want 200: %s", rr.Code, rr.Body.String())
	}

	var resp api.EnqueueJobResponse
	if err := json.NewDecoder(rr.Body).Decode(&resp); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if resp.JobID == "" {
		t.Error("expected job_id in response")
	}
	if ms.capturedJob == nil || ms.capturedJob.Type != store.JobTypeTranscription {
		t.Errorf("unexpected queued job: %+v", ms.capturedJob)
	}
}

func TestEnqueueJob_ValidationErrorIs400(t *testing.T) {
	projectID := uuid.New()
	ms := &mockStore{getProjectResp: &store.Project{ID: projectID}}
	h := New(ms, nil)

	// transcription payload is missing its required source_object
	body := `{"type": "transcription", "payload": {}}`
	rr := httptest.NewRecorder()
	h.EnqueueJob(rr, enqueueRequest(t, projectID.String(), body))

	if rr.Code != http.StatusBadRequest {
		t.Fatalf("got status %d, want 400: %s", rr.Code, rr.Body.String())
	}
	if ms.capturedJob != nil {
		t.Error("no job row should exist after a validation failure")
	}
}

func TestEnqueueJob_UnknownType(t *testing.T) {
	projectID := uuid.New()
	ms := &mockStore{getProjectResp: &store.Project{ID: projectID}}
	h := New(ms, nil)

	body := `{"type": "thumbnail", "payload": {}}`
	rr := httptest.NewRecorder()
	h.EnqueueJob(rr, enqueueRequest(t, projectID.String(), body))

	if rr.Code != http.StatusBadRequest {
		t.Errorf("got status %d, want 400", rr.Code)
	}
}

func TestEnqueueJob_ProjectNotFound(t *testing.T) {
	ms := &mockStore{getProjectErr: sql.ErrNoRows}
	h := New(ms, nil)

	body := `{"type": "transcription", "payload": {"source_object": "sources/a.mp4"}}`
	rr := httptest.NewRecorder()
	h.EnqueueJob(rr, enqueueRequest(t, uuid.New().String(), body))

	if rr.Code != http.StatusNotFound {
		t.Errorf("got status %d, want 404", rr.Code)
	}
}

func TestEnqueueJob_VideoCutWithClip(t *testing.T) {
	projectID := uuid.New()
	clipID := uuid.New()
	ms := &mockStore{getProjectResp: &store.Project{ID: projectID}}
	h := New(ms, nil)

	body := `{"type": "video_cut", "clip_id": "` + clipID.String() + `",
		"payload": {"source_object": "sources/a.mp4", "start_seconds": 10, "end_seconds": 42}}`
	rr := httptest.NewRecorder()
	h.EnqueueJob(rr, enqueueRequest(t, projectID.String(), body))

	if rr.Code != http.StatusOK {
		t.Fatalf("got status %d, want 200: %s", rr.Code, rr.Body.String())
	}
	if ms.capturedJob.ClipID == nil || *ms.capturedJob.ClipID != clipID {
		t.Errorf("queued job should carry the clip id, got %+v", ms.capturedJob.ClipID)
	}
}

func TestEnqueueJob_StoreErrorIs500(t *testing.T) {
	projectID := uuid.New()
	ms := &mockStore{
		getProjectResp: &store.Project{ID: projectID},
		enqueueErr:     errors.New("db down"),
	}
	h := New(ms, nil)

	body := `{"type": "transcription", "payload": {"source_object": "sources/a.mp4"}}`
	rr := httptest.NewRecorder()
	h.EnqueueJob(rr, enqueueRequest(t, projectID.String(), body))

	if rr.Code != http.StatusInternalServerError {
		t.Errorf("got status %d, want 500", rr.Code)
	}
}

func TestGetJob_Success(t *testing.T) {
	jobID := uuid.New()
	ms := &mockStore{
		getJobResp: &store.Job{
			ID:        jobID,
			ProjectID: uuid.New(),
			Type:      store.JobTypeAnalysis,
			Status:    store.JobStatusRunning,
			Progress:  40,
		},
	}
	h := New(ms, nil)

	req := httptest.NewRequest(http.MethodGet, "/jobs/"+jobID.String(), nil)
	req.SetPathValue("id", jobID.String())
	rr := httptest.NewRecorder()

	h.GetJob(rr, req)

	if rr.Code != http.StatusOK {
		t.Fatalf("got status %d, want 200: %s", rr.Code, rr.Body.String())
	}

	var resp api.JobResponse
	if err := json.NewDecoder(rr.Body).Decode(&resp); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if resp.Status != "running" || resp.Progress != 40 {
		t.Errorf("unexpected job response: %+v", resp)
	}
}

func TestGetJob_NotFound(t *testing.T) {
	ms := &mockStore{getJobErr: sql.ErrNoRows}
	h := New(ms, nil)

	id := uuid.New().String()
	req := httptest.NewRequest(http.MethodGet, "/jobs/"+id, nil)
	req.SetPathValue("id", id)
	rr := httptest.NewRecorder()

	h.GetJob(rr, req)

	if rr.Code != http.StatusNotFound {
		t.Errorf("got status %d, want 404", rr.Code)
	}
}

func TestListJobs_Success(t *testing.T) {
	projectID := uuid.New()
	ms := &mockStore{
		listJobsResp: []*store.Job{
			{ID: uuid.New(), ProjectID: projectID, Type: store.JobTypeAnalysis, Status: store.JobStatusQueued},
			{ID: uuid.New(), ProjectID: projectID, Type: store.JobTypeTranscription, Status: store.JobStatusSucceeded, Progress: 100},
		},
	}
	h := New(ms, nil)

	req := httptest.NewRequest(http.MethodGet, "/projects/"+projectID.String()+"/jobs", nil)
	req.SetPathValue("projectID", projectID.String())
	rr := httptest.NewRecorder()

	h.ListJobs(rr, req)

	if rr.Code != http.StatusOK {
		t.Fatalf("got status %d, want 200: %s", rr.Code, rr.Body.String())
	}

	var resp api.ListJobsResponse
	if err := json.NewDecoder(rr.Body).Decode(&resp); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if len(resp.Jobs) != 2 {
		t.Fatalf("got %d jobs, want 2", len(resp.Jobs))
	}
}
