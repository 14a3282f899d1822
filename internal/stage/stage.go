// Package stage contains the per-type stage handlers run by the worker.
// The actual transcription/AI/transcode work lives behind the collaborator
// interfaces; handlers are responsible for fetching stage inputs, driving
// the collaborator, reporting progress and shaping the typed result.
package stage

import (
	"context"
	"encoding/json"
	"io"

	"clipline/internal/store"
)

// ProgressFunc reports progress (0-100) for the job being processed.
// Implementations ignore values below the job's current progress.
type ProgressFunc func(ctx context.Context, progress int)

// Handler runs one pipeline stage for a claimed job.
// A returned error marks the job failed with the error text captured
// verbatim; the returned raw message becomes the job's result_metadata.
type Handler interface {
	Type() store.JobType
	Run(ctx context.Context, job *store.Job, progress ProgressFunc) (json.RawMessage, error)
}

// Transcriber is the external speech-to-text backend.
type Transcriber interface {
	// Transcribe fetches the media at sourceURL and returns the transcript
	// document. language may be empty for auto-detection.
	Transcribe(ctx context.Context, sourceURL, language string) (Transcript, error)
}

// Transcript is the outcome of a transcription call.
type Transcript struct {
	Document        []byte // Stage-opaque transcript (segments, words, timings)
	Language        string
	DurationSeconds float64
}

// Analyzer is the external AI model that suggests clip-worthy segments.
type Analyzer interface {
	Suggest(ctx context.Context, transcript []byte, maxSuggestions int) ([]store.ClipSuggestion, error)
}

// Cutter is the external transcoder that renders a clip from a source video.
type Cutter interface {
	// Cut renders [startSeconds, endSeconds) of the media at sourceURL and
	// returns a reader over the rendered output.
	Cut(ctx context.Context, sourceURL string, startSeconds, endSeconds float64) (CutOutput, error)
}

// CutOutput is the rendered clip returned by a Cutter.
type CutOutput struct {
	Body        io.ReadCloser
	ContentType string
}
