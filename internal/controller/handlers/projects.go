package handlers

import (
	"database/sql"
	"encoding/json"
	"errors"
	"net/http"

	"clipline/internal/store"
	"clipline/pkg/api"

	"github.com/google/uuid"
)

// CreateProject handles POST /projects.
// It registers a new project in uploading state. When the request references
// a staged upload, the upload_transfer job is queued in the same transaction
// so the project can never exist without its intake job.
func (h *Handlers) CreateProject(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req api.CreateProjectRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.httpError(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	if req.Title == "" {
		h.httpError(w, "Title is required", http.StatusBadRequest)
		return
	}

	ownerID, err := uuid.Parse(req.OwnerID)
	if err != nil {
		h.httpError(w, "Valid owner id is required", http.StatusBadRequest)
		return
	}

	project := &store.Project{
		ID:      uuid.New(),
		OwnerID: ownerID,
		Title:   req.Title,
	}

	tx, err := h.store.BeginTx(ctx)
	if err != nil {
		h.httpError(w, "Internal database error", http.StatusInternalServerError)
		return
	}
	defer tx.Rollback()

	if err := h.store.CreateProject(ctx, tx, project); err != nil {
		h.httpError(w, "Failed to create project", http.StatusInternalServerError)
		return
	}

	resp := api.CreateProjectResponse{ProjectID: project.ID.String()}

	if req.UploadID != "" {
		payload, _ := json.Marshal(store.UploadTransferPayload{UploadID: req.UploadID})
		job := &store.Job{
			ProjectID: project.ID,
			Type:      store.JobTypeUploadTransfer,
			Payload:   payload,
		}
		if err := h.store.Enqueue(ctx, tx, job); err != nil {
			h.httpError(w, "Failed to enqueue transfer", http.StatusInternalServerError)
			return
		}
		resp.JobID = job.ID.String()
	}

	if err := tx.Commit(); err != nil {
		h.httpError(w, "Failed to commit transaction", http.StatusInternalServerError)
		return
	}

	h.respondJson(w, http.StatusCreated, resp)
}

// GetProject handles GET /projects/{projectID}.
// Clients poll this to follow pipeline progress on the project status enum.
func (h *Handlers) GetProject(w http.ResponseWriter, r *http.Request) {
	projectID, err := uuid.Parse(r.PathValue("projectID"))
	if err != nil {
		h.httpError(w, "Invalid project id", http.StatusBadRequest)
		return
	}

	project, err := h.store.GetProjectByID(r.Context(), projectID)
	if errors.Is(err, sql.ErrNoRows) {
		h.httpError(w, "Project not found", http.StatusNotFound)
		return
	}
	if err != nil {
		h.httpError(w, "Internal database error", http.StatusInternalServerError)
		return
	}

	h.respondJson(w, http.StatusOK, projectToResponse(project))
}

// DeleteProject handles DELETE /projects/{projectID}.
// Clips and jobs cascade at the schema level.
func (h *Handlers) DeleteProject(w http.ResponseWriter, r *http.Request) {
	projectID, err := uuid.Parse(r.PathValue("projectID"))
	if err != nil {
		h.httpError(w, "Invalid project id", http.StatusBadRequest)
		return
	}

	if err := h.store.DeleteProject(r.Context(), projectID); err != nil {
		h.httpError(w, "Failed to delete project", http.StatusInternalServerError)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// ListClips handles GET /projects/{projectID}/clips.
func (h *Handlers) ListClips(w http.ResponseWriter, r *http.Request) {
	projectID, err := uuid.Parse(r.PathValue("projectID"))
	if err != nil {
		h.httpError(w, "Invalid project id", http.StatusBadRequest)
		return
	}

	clips, err := h.store.ListClipsByProject(r.Context(), projectID)
	if err != nil {
		h.httpError(w, "Internal database error", http.StatusInternalServerError)
		return
	}

	resp := api.ListClipsResponse{Clips: make([]api.ClipResponse, 0, len(clips))}
	for _, c := range clips {
		resp.Clips = append(resp.Clips, clipToResponse(c))
	}
	h.respondJson(w, http.StatusOK, resp)
}
