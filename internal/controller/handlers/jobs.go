package handlers

import (
	"database/sql"
	"encoding/json"
	"errors"
	"net/http"

	"clipline/internal/pipeline"
	"clipline/internal/store"
	"clipline/pkg/api"

	"github.com/google/uuid"
)

// EnqueueJob handles POST /projects/{projectID}/jobs.
// Validation failures are returned synchronously as 400 and never produce a
// job row; a 200 means the stage is queued and will run eventually.
func (h *Handlers) EnqueueJob(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	projectID, err := uuid.Parse(r.PathValue("projectID"))
	if err != nil {
		h.httpError(w, "Invalid project id", http.StatusBadRequest)
		return
	}

	var req api.EnqueueJobRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.httpError(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	if _, err := h.store.GetProjectByID(ctx, projectID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			h.httpError(w, "Project not found", http.StatusNotFound)
			return
		}
		h.httpError(w, "Internal database error", http.StatusInternalServerError)
		return
	}

	enqReq := pipeline.EnqueueRequest{
		Type:      store.JobType(req.Type),
		ProjectID: projectID,
		Payload:   req.Payload,
	}
	if req.ClipID != "" {
		clipID, err := uuid.Parse(req.ClipID)
		if err != nil {
			h.httpError(w, "Invalid clip id", http.StatusBadRequest)
			return
		}
		enqReq.ClipID = &clipID
	}

	jobID, err := h.enqueuer.Enqueue(ctx, enqReq)
	if err != nil {
		var verr *pipeline.ValidationError
		if errors.As(err, &verr) {
			h.httpError(w, verr.Error(), http.StatusBadRequest)
			return
		}
		h.httpError(w, "Failed to enqueue job", http.StatusInternalServerError)
		return
	}

	h.respondJson(w, http.StatusOK, api.EnqueueJobResponse{JobID: jobID.String()})
}

// GetJob handles GET /jobs/{id}.
// Clients poll this for per-stage progress and result metadata.
func (h *Handlers) GetJob(w http.ResponseWriter, r *http.Request) {
	jobID, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		h.httpError(w, "Invalid job id", http.StatusBadRequest)
		return
	}

	job, err := h.store.GetJobByID(r.Context(), jobID)
	if errors.Is(err, sql.ErrNoRows) {
		h.httpError(w, "Job not found", http.StatusNotFound)
		return
	}
	if err != nil {
		h.httpError(w, "Internal database error", http.StatusInternalServerError)
		return
	}

	h.respondJson(w, http.StatusOK, jobToResponse(job))
}

// ListJobs handles GET /projects/{projectID}/jobs.
func (h *Handlers) ListJobs(w http.ResponseWriter, r *http.Request) {
	projectID, err := uuid.Parse(r.PathValue("projectID"))
	if err != nil {
		h.httpError(w, "Invalid project id", http.StatusBadRequest)
		return
	}

	jobs, err := h.store.ListJobsByProject(r.Context(), projectID)
	if err != nil {
		h.httpError(w, "Internal database error", http.StatusInternalServerError)
		return
	}

	resp := api.ListJobsResponse{Jobs: make([]api.JobResponse, 0, len(jobs))}
	for _, j := range jobs {
		resp.Jobs = append(resp.Jobs, jobToResponse(j))
	}
	h.respondJson(w, http.StatusOK, resp)
}
