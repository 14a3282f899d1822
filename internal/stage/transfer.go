package stage

import (
	"context"
	"encoding/json"
	"fmt"

	"clipline/internal/storage"
	"clipline/internal/store"
)

// UploadTransferHandler moves a completed browser upload into the canonical
// source location for its project.
type UploadTransferHandler struct {
	store storage.Storage
}

func NewUploadTransferHandler(s storage.Storage) *UploadTransferHandler {
	return &UploadTransferHandler{store: s}
}

func (h *UploadTransferHandler) Type() store.JobType {
	return store.JobTypeUploadTransfer
}

func (h *UploadTransferHandler) Run(ctx context.Context, job *store.Job, progress ProgressFunc) (json.RawMessage, error) {
	payload, err := store.DecodePayload(job.Type, job.Payload)
	if err != nil {
		return nil, err
	}
	p := payload.(store.UploadTransferPayload)

	srcKey := fmt.Sprintf("uploads/%s", p.UploadID)
	dstKey := fmt.Sprintf("sources/%s.mp4", job.ProjectID)

	progress(ctx, 10)
	size, err := h.store.Copy(ctx, srcKey, dstKey)
	if err != nil {
		return nil, fmt.Errorf("transfer upload: %w", err)
	}
	progress(ctx, 90)

	// Staging cleanup is best-effort; the copy already succeeded.
	_ = h.store.Delete(ctx, srcKey)

	return json.Marshal(store.UploadTransferResult{
		SourceObject: dstKey,
		SizeBytes:    size,
	})
}
