// Package handlers contains HTTP handlers for the controller API.
package handlers

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"strconv"

	"clipline/internal/pipeline"
	"clipline/internal/store"
	"clipline/pkg/api"
)

// StoreFactory combines the interfaces needed for the controller to function.
type StoreFactory interface {
	BeginTx(ctx context.Context) (store.Tx, error)
	Ping(ctx context.Context) error
	store.ProjectStore
	store.ClipStore
	store.JobStore
	store.Queue
}

// Handlers holds all HTTP handlers and their dependencies.
type Handlers struct {
	store    StoreFactory
	enqueuer *pipeline.Enqueuer
	logger   *slog.Logger
}

// New creates a new Handlers instance with the given store dependency.
func New(s StoreFactory, logger *slog.Logger) *Handlers {
	if logger == nil {
		logger = slog.Default()
	}
	return &Handlers{
		store:    s,
		enqueuer: pipeline.NewEnqueuer(s, logger),
		logger:   logger,
	}
}

// A helper function to write standard JSON responses.
func (h *Handlers) respondJson(w http.ResponseWriter, status int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if payload != nil {
		json.NewEncoder(w).Encode(payload)
	}
}

// A helper function to return consistent error messages.
func (h *Handlers) httpError(w http.ResponseWriter, message string, code int) {
	h.respondJson(w, code, api.ErrorResponse{
		Error: message,
		Code:  strconv.Itoa(code),
	})
}

func jobToResponse(j *store.Job) api.JobResponse {
	resp := api.JobResponse{
		ID:             j.ID.String(),
		ProjectID:      j.ProjectID.String(),
		Type:           string(j.Type),
		Status:         string(j.Status),
		Progress:       j.Progress,
		Attempt:        j.Attempt,
		ResultMetadata: j.ResultMetadata,
		Error:          j.ErrorMessage,
		CreatedAt:      j.CreatedAt,
		StartedAt:      j.StartedAt,
		CompletedAt:    j.CompletedAt,
	}
	if j.ClipID != nil {
		resp.ClipID = j.ClipID.String()
	}
	return resp
}

func projectToResponse(p *store.Project) api.ProjectResponse {
	return api.ProjectResponse{
		ID:              p.ID.String(),
		OwnerID:         p.OwnerID.String(),
		Title:           p.Title,
		Status:          string(p.Status),
		SourceObject:    p.SourceObject,
		DurationSeconds: p.DurationSeconds,
		SizeBytes:       p.SizeBytes,
		Error:           p.ErrorMessage,
		CreatedAt:       p.CreatedAt,
		UpdatedAt:       p.UpdatedAt,
	}
}

func clipToResponse(c *store.Clip) api.ClipResponse {
	return api.ClipResponse{
		ID:           c.ID.String(),
		ProjectID:    c.ProjectID.String(),
		Title:        c.Title,
		Description:  c.Description,
		SocialCopy:   c.SocialCopy,
		StartSeconds: c.StartSeconds,
		EndSeconds:   c.EndSeconds,
		Score:        c.Score,
		OutputObject: c.OutputObject,
		Status:       string(c.Status),
		Error:        c.ErrorMessage,
	}
}
