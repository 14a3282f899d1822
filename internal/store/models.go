// Package store contains the database layer for clipline.
package store

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// Project represents one uploaded source video. It is owned exclusively by
// the user who created it; clips and jobs cascade on delete.
type Project struct {
	ID              uuid.UUID
	OwnerID         uuid.UUID
	Title           string
	SourceObject    *string // Object storage key of the source video
	DurationSeconds *float64
	SizeBytes       *int64
	Status          ProjectStatus
	ErrorMessage    *string
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

// Clip represents one suggested or user-created segment of a project.
type Clip struct {
	ID           uuid.UUID
	ProjectID    uuid.UUID
	Title        string
	Description  *string
	SocialCopy   *string
	StartSeconds float64
	EndSeconds   float64
	Score        *float64
	OutputObject *string // Set by the video_cut stage
	Status       ClipStatus
	ErrorMessage *string
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// Job represents a single unit of pipeline work. A job always belongs to a
// project; video_cut jobs additionally reference the clip being rendered.
type Job struct {
	ID             uuid.UUID
	ProjectID      uuid.UUID
	ClipID         *uuid.UUID
	Type           JobType
	Status         JobStatus
	Progress       int // 0-100, never decreases while running
	Attempt        int
	Payload        json.RawMessage
	ResultMetadata json.RawMessage
	ErrorMessage   *string
	LeaseExpiresAt *time.Time
	CreatedAt      time.Time
	StartedAt      *time.Time
	CompletedAt    *time.Time
}

// JobType identifies the pipeline stage a job runs.
type JobType string

const (
	JobTypeTranscription  JobType = "transcription"
	JobTypeAnalysis       JobType = "analysis"
	JobTypeVideoCut       JobType = "video_cut"
	JobTypeUploadTransfer JobType = "upload_transfer"
)

// Valid reports whether t is one of the known job types.
func (t JobType) Valid() bool {
	switch t {
	case JobTypeTranscription, JobTypeAnalysis, JobTypeVideoCut, JobTypeUploadTransfer:
		return true
	}
	return false
}

// JobStatus represents the state of a job.
// Transitions are forward-only: queued -> running -> succeeded | failed.
type JobStatus string

const (
	JobStatusQueued    JobStatus = "queued"
	JobStatusRunning   JobStatus = "running"
	JobStatusSucceeded JobStatus = "succeeded"
	JobStatusFailed    JobStatus = "failed"
)

// Terminal reports whether the status is an end state.
func (s JobStatus) Terminal() bool {
	return s == JobStatusSucceeded || s == JobStatusFailed
}

// ProjectStatus mirrors pipeline progress onto the project. It is derived
// from job state by the store, never set independently by the API.
type ProjectStatus string

const (
	ProjectStatusUploading    ProjectStatus = "uploading"
	ProjectStatusProcessing   ProjectStatus = "processing"
	ProjectStatusTranscribing ProjectStatus = "transcribing"
	ProjectStatusAnalyzing    ProjectStatus = "analyzing"
	ProjectStatusCompleted    ProjectStatus = "completed"
	ProjectStatusError        ProjectStatus = "error"
)

// ClipStatus represents the state of a clip.
type ClipStatus string

const (
	ClipStatusPending    ClipStatus = "pending"
	ClipStatusProcessing ClipStatus = "processing"
	ClipStatusCompleted  ClipStatus = "completed"
	ClipStatusError      ClipStatus = "error"
)
