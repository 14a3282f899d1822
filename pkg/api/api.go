// Package api contains shared JSON request/response structs.
// This package is shared between the CLI and Controller.
package api

import (
	"encoding/json"
	"time"
)

// CreateProjectRequest is the request body for registering a new project.
type CreateProjectRequest struct {
	Title string `json:"title"`
	// OwnerID scopes the project to the account that created it.
	OwnerID string `json:"owner_id"`
	// UploadID references a staged upload. When set, an upload_transfer job
	// is queued immediately after the project row is created.
	UploadID string `json:"upload_id,omitempty"`
}

// CreateProjectResponse is the response body after creating a project.
type CreateProjectResponse struct {
	ProjectID string `json:"project_id"`
	JobID     string `json:"job_id,omitempty"`
}

// EnqueueJobRequest is the request body for queueing one pipeline stage.
type EnqueueJobRequest struct {
	Type    string          `json:"type"`
	ClipID  string          `json:"clip_id,omitempty"`
	Payload json.RawMessage `json:"payload"`
}

// EnqueueJobResponse is the response body after queueing a job.
type EnqueueJobResponse struct {
	JobID string `json:"job_id"`
}

// JobResponse represents a job in API responses.
type JobResponse struct {
	ID             string          `json:"id"`
	ProjectID      string          `json:"project_id"`
	ClipID         string          `json:"clip_id,omitempty"`
	Type           string          `json:"type"`
	Status         string          `json:"status"`
	Progress       int             `json:"progress"`
	Attempt        int             `json:"attempt"`
	ResultMetadata json.RawMessage `json:"result_metadata,omitempty"`
	Error          *string         `json:"error,omitempty"`
	CreatedAt      time.Time       `json:"created_at"`
	StartedAt      *time.Time      `json:"started_at,omitempty"`
	CompletedAt    *time.Time      `json:"completed_at,omitempty"`
}

// ProjectResponse represents a project in API responses.
type ProjectResponse struct {
	ID              string    `json:"id"`
	OwnerID         string    `json:"owner_id"`
	Title           string    `json:"title"`
	Status          string    `json:"status"`
	SourceObject    *string   `json:"source_object,omitempty"`
	DurationSeconds *float64  `json:"duration_seconds,omitempty"`
	SizeBytes       *int64    `json:"size_bytes,omitempty"`
	Error           *string   `json:"error,omitempty"`
	CreatedAt       time.Time `json:"created_at"`
	UpdatedAt       time.Time `json:"updated_at"`
}

// ClipResponse represents a clip in API responses.
type ClipResponse struct {
	ID           string   `json:"id"`
	ProjectID    string   `json:"project_id"`
	Title        string   `json:"title"`
	Description  *string  `json:"description,omitempty"`
	SocialCopy   *string  `json:"social_copy,omitempty"`
	StartSeconds float64  `json:"start_seconds"`
	EndSeconds   float64  `json:"end_seconds"`
	Score        *float64 `json:"score,omitempty"`
	OutputObject *string  `json:"output_object,omitempty"`
	Status       string   `json:"status"`
	Error        *string  `json:"error,omitempty"`
}

// ListJobsResponse is the response body for listing a project's jobs.
type ListJobsResponse struct {
	Jobs []JobResponse `json:"jobs"`
}

// ListClipsResponse is the response body for listing a project's clips.
type ListClipsResponse struct {
	Clips []ClipResponse `json:"clips"`
}

// ErrorResponse is the standard error response format.
type ErrorResponse struct {
	Error   string `json:"error"`
	Code    string `json:"code,omitempty"`
	Details string `json:"details,omitempty"`
}
