package stage

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"time"

	"clipline/internal/storage"
	"clipline/internal/store"
)

const presignTTL = 30 * time.Minute

// TranscriptionHandler runs the transcription stage: presign the source
// video, hand it to the speech-to-text backend, store the transcript.
type TranscriptionHandler struct {
	store       storage.Storage
	transcriber Transcriber
}

func NewTranscriptionHandler(s storage.Storage, t Transcriber) *TranscriptionHandler {
	return &TranscriptionHandler{store: s, transcriber: t}
}

func (h *TranscriptionHandler) Type() store.JobType {
	return store.JobTypeTranscription
}

func (h *TranscriptionHandler) Run(ctx context.Context, job *store.Job, progress ProgressFunc) (json.RawMessage, error) {
	payload, err := store.DecodePayload(job.Type, job.Payload)
	if err != nil {
		return nil, err
	}
	p := payload.(store.TranscriptionPayload)

	sourceURL, err := h.store.PresignGet(ctx, p.SourceObject, presignTTL)
	if err != nil {
		return nil, fmt.Errorf("presign source: %w", err)
	}
	progress(ctx, 10)

	transcript, err := h.transcriber.Transcribe(ctx, sourceURL, p.Language)
	if err != nil {
		return nil, err
	}
	progress(ctx, 90)

	key := fmt.Sprintf("transcripts/%s.json", job.ProjectID)
	if err := h.store.Put(ctx, key, bytes.NewReader(transcript.Document), "application/json"); err != nil {
		return nil, fmt.Errorf("store transcript: %w", err)
	}

	return json.Marshal(store.TranscriptionResult{
		TranscriptObject: key,
		Language:         transcript.Language,
		DurationSeconds:  transcript.DurationSeconds,
	})
}
