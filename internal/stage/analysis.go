package stage

import (
	"context"
	"encoding/json"
	"fmt"
	"io"

	"clipline/internal/storage"
	"clipline/internal/store"
)

const defaultMaxSuggestions = 10

// AnalysisHandler runs the analysis stage: load the transcript and ask the
// AI backend for clip-worthy segments. The suggested clips are inserted as
// pending rows by the terminal write, not here.
type AnalysisHandler struct {
	store    storage.Storage
	analyzer Analyzer
}

func NewAnalysisHandler(s storage.Storage, a Analyzer) *AnalysisHandler {
	return &AnalysisHandler{store: s, analyzer: a}
}

func (h *AnalysisHandler) Type() store.JobType {
	return store.JobTypeAnalysis
}

func (h *AnalysisHandler) Run(ctx context.Context, job *store.Job, progress ProgressFunc) (json.RawMessage, error) {
	payload, err := store.DecodePayload(job.Type, job.Payload)
	if err != nil {
		return nil, err
	}
	p := payload.(store.AnalysisPayload)

	rc, err := h.store.Get(ctx, p.TranscriptObject)
	if err != nil {
		return nil, fmt.Errorf("fetch transcript: %w", err)
	}
	transcript, err := io.ReadAll(rc)
	rc.Close()
	if err != nil {
		return nil, fmt.Errorf("read transcript: %w", err)
	}
	progress(ctx, 20)

	maxSuggestions := p.MaxSuggestions
	if maxSuggestions <= 0 {
		maxSuggestions = defaultMaxSuggestions
	}

	suggestions, err := h.analyzer.Suggest(ctx, transcript, maxSuggestions)
	if err != nil {
		return nil, err
	}
	progress(ctx, 95)

	// Drop suggestions the schema would reject.
	valid := suggestions[:0]
	for _, s := range suggestions {
		if s.StartSeconds < s.EndSeconds {
			valid = append(valid, s)
		}
	}

	return json.Marshal(store.AnalysisResult{Suggestions: valid})
}
