package stage

import (
	"context"
	"encoding/json"
	"fmt"

	"clipline/internal/storage"
	"clipline/internal/store"
)

// VideoCutHandler runs the video_cut stage: render the clip's time range
// from the source video and upload the output.
type VideoCutHandler struct {
	store  storage.Storage
	cutter Cutter
}

func NewVideoCutHandler(s storage.Storage, c Cutter) *VideoCutHandler {
	return &VideoCutHandler{store: s, cutter: c}
}

func (h *VideoCutHandler) Type() store.JobType {
	return store.JobTypeVideoCut
}

func (h *VideoCutHandler) Run(ctx context.Context, job *store.Job, progress ProgressFunc) (json.RawMessage, error) {
	if job.ClipID == nil {
		return nil, fmt.Errorf("video_cut job %s has no clip", job.ID)
	}

	payload, err := store.DecodePayload(job.Type, job.Payload)
	if err != nil {
		return nil, err
	}
	p := payload.(store.VideoCutPayload)

	sourceURL, err := h.store.PresignGet(ctx, p.SourceObject, presignTTL)
	if err != nil {
		return nil, fmt.Errorf("presign source: %w", err)
	}
	progress(ctx, 10)

	out, err := h.cutter.Cut(ctx, sourceURL, p.StartSeconds, p.EndSeconds)
	if err != nil {
		return nil, err
	}
	defer out.Body.Close()
	progress(ctx, 80)

	key := fmt.Sprintf("clips/%s.mp4", *job.ClipID)
	if err := h.store.Put(ctx, key, out.Body, out.ContentType); err != nil {
		return nil, fmt.Errorf("store clip output: %w", err)
	}

	return json.Marshal(store.VideoCutResult{
		OutputObject:    key,
		DurationSeconds: p.EndSeconds - p.StartSeconds,
	})
}
