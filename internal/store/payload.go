package store

import (
	"encoding/json"
	"fmt"

	"github.com/go-playground/validator/v10"
)

// validate is shared by all payload types; struct-level rules are registered
// once at init.
var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterStructValidation(func(sl validator.StructLevel) {
		p := sl.Current().Interface().(VideoCutPayload)
		if p.StartSeconds >= p.EndSeconds {
			sl.ReportError(p.StartSeconds, "StartSeconds", "start", "ltfield", "EndSeconds")
		}
	}, VideoCutPayload{})
	return v
}

// TranscriptionPayload is the input for a transcription job.
type TranscriptionPayload struct {
	SourceObject string `json:"source_object" validate:"required"`
	Language     string `json:"language,omitempty"`
}

// TranscriptionResult is written as result_metadata on success.
type TranscriptionResult struct {
	TranscriptObject string  `json:"transcript_object"`
	Language         string  `json:"language,omitempty"`
	DurationSeconds  float64 `json:"duration_seconds,omitempty"`
}

// AnalysisPayload is the input for an analysis job.
type AnalysisPayload struct {
	TranscriptObject string `json:"transcript_object" validate:"required"`
	MaxSuggestions   int    `json:"max_suggestions,omitempty" validate:"omitempty,min=1,max=50"`
}

// ClipSuggestion is one AI-suggested segment produced by analysis.
type ClipSuggestion struct {
	StartSeconds float64  `json:"start"`
	EndSeconds   float64  `json:"end"`
	Title        string   `json:"title"`
	Description  string   `json:"description,omitempty"`
	SocialCopy   string   `json:"social_copy,omitempty"`
	Score        *float64 `json:"score,omitempty"`
}

// AnalysisResult is written as result_metadata on success. The suggestions
// are also inserted as pending clip rows in the terminal transaction.
type AnalysisResult struct {
	Suggestions []ClipSuggestion `json:"suggestions"`
}

// VideoCutPayload is the input for a video_cut job.
type VideoCutPayload struct {
	SourceObject string  `json:"source_object" validate:"required"`
	StartSeconds float64 `json:"start" validate:"min=0"`
	EndSeconds   float64 `json:"end" validate:"gt=0"`
}

// VideoCutResult is written as result_metadata on success.
type VideoCutResult struct {
	OutputObject    string  `json:"output_object"`
	DurationSeconds float64 `json:"duration_seconds,omitempty"`
}

// UploadTransferPayload is the input for an upload_transfer job.
type UploadTransferPayload struct {
	UploadID  string `json:"upload_id" validate:"required"`
	SourceURL string `json:"source_url,omitempty" validate:"omitempty,url"`
}

// UploadTransferResult is written as result_metadata on success.
type UploadTransferResult struct {
	SourceObject string `json:"source_object"`
	SizeBytes    int64  `json:"size_bytes,omitempty"`
}

// DecodePayload parses and validates raw payload bytes for the given job
// type. Stage handlers must only ever see the variant matching their type.
func DecodePayload(t JobType, raw json.RawMessage) (any, error) {
	var (
		payload any
		err     error
	)

	switch t {
	case JobTypeTranscription:
		var p TranscriptionPayload
		err = json.Unmarshal(raw, &p)
		payload = p
	case JobTypeAnalysis:
		var p AnalysisPayload
		err = json.Unmarshal(raw, &p)
		payload = p
	case JobTypeVideoCut:
		var p VideoCutPayload
		err = json.Unmarshal(raw, &p)
		payload = p
	case JobTypeUploadTransfer:
		var p UploadTransferPayload
		err = json.Unmarshal(raw, &p)
		payload = p
	default:
		return nil, fmt.Errorf("unknown job type %q", t)
	}

	if err != nil {
		return nil, fmt.Errorf("malformed %s payload: %w", t, err)
	}
	if err := validate.Struct(payload); err != nil {
		return nil, fmt.Errorf("invalid %s payload: %w", t, err)
	}
	return payload, nil
}
