package stage

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"clipline/internal/store"
)

// Static errors for media backend operations.
var (
	// ErrBackendURLRequired is returned when no backend base URL is configured.
	ErrBackendURLRequired = errors.New("stage: media backend URL is required")
	// ErrBackendUnavailable is returned when the backend answers with a 5xx status.
	ErrBackendUnavailable = errors.New("stage: media backend unavailable")
)

// RemoteBackend talks to the media backend service that does the actual
// transcription, clip suggestion and transcoding work. It implements
// Transcriber, Analyzer and Cutter; the stage handlers stay agnostic of
// where the heavy lifting happens.
type RemoteBackend struct {
	baseURL    string
	token      string
	httpClient *http.Client
}

// BackendOption is a function that configures a RemoteBackend.
type BackendOption func(*RemoteBackend)

// WithToken sets the bearer token sent on every backend request.
func WithToken(token string) BackendOption {
	return func(b *RemoteBackend) {
		b.token = token
	}
}

// WithHTTPClient sets a custom HTTP client.
func WithHTTPClient(c *http.Client) BackendOption {
	return func(b *RemoteBackend) {
		b.httpClient = c
	}
}

// NewRemoteBackend creates a client for the media backend service.
func NewRemoteBackend(baseURL string, opts ...BackendOption) (*RemoteBackend, error) {
	if baseURL == "" {
		return nil, ErrBackendURLRequired
	}

	b := &RemoteBackend{
		baseURL: baseURL,
		// Transcription and transcode calls run for minutes on long
		// sources; the timeout bounds a hung backend, not normal work.
		httpClient: &http.Client{Timeout: 30 * time.Minute},
	}
	for _, opt := range opts {
		opt(b)
	}
	return b, nil
}

type transcribeRequest struct {
	SourceURL string `json:"source_url"`
	Language  string `json:"language,omitempty"`
}

type transcribeResponse struct {
	Transcript      json.RawMessage `json:"transcript"`
	Language        string          `json:"language"`
	DurationSeconds float64         `json:"duration_seconds"`
}

// Transcribe sends the source video to the speech-to-text backend.
func (b *RemoteBackend) Transcribe(ctx context.Context, sourceURL, language string) (Transcript, error) {
	var resp transcribeResponse
	err := b.postJSON(ctx, "/v1/transcribe", transcribeRequest{
		SourceURL: sourceURL,
		Language:  language,
	}, &resp)
	if err != nil {
		return Transcript{}, err
	}

	return Transcript{
		Document:        resp.Transcript,
		Language:        resp.Language,
		DurationSeconds: resp.DurationSeconds,
	}, nil
}

type suggestRequest struct {
	Transcript     json.RawMessage `json:"transcript"`
	MaxSuggestions int             `json:"max_suggestions"`
}

type suggestResponse struct {
	Suggestions []store.ClipSuggestion `json:"suggestions"`
}

// Suggest asks the analysis backend for clip-worthy segments.
func (b *RemoteBackend) Suggest(ctx context.Context, transcript []byte, max int) ([]store.ClipSuggestion, error) {
	var resp suggestResponse
	err := b.postJSON(ctx, "/v1/suggest", suggestRequest{
		Transcript:     transcript,
		MaxSuggestions: max,
	}, &resp)
	if err != nil {
		return nil, err
	}
	return resp.Suggestions, nil
}

type cutRequest struct {
	SourceURL    string  `json:"source_url"`
	StartSeconds float64 `json:"start_seconds"`
	EndSeconds   float64 `json:"end_seconds"`
}

// Cut renders one clip. The response body streams the rendered video, so the
// caller owns closing it.
func (b *RemoteBackend) Cut(ctx context.Context, sourceURL string, start, end float64) (CutOutput, error) {
	body, err := json.Marshal(cutRequest{
		SourceURL:    sourceURL,
		StartSeconds: start,
		EndSeconds:   end,
	})
	if err != nil {
		return CutOutput{}, err
	}

	resp, err := b.do(ctx, "/v1/cut", body)
	if err != nil {
		return CutOutput{}, err
	}

	if resp.StatusCode != http.StatusOK {
		defer resp.Body.Close()
		return CutOutput{}, b.statusError(resp)
	}

	contentType := resp.Header.Get("Content-Type")
	if contentType == "" {
		contentType = "video/mp4"
	}
	return CutOutput{Body: resp.Body, ContentType: contentType}, nil
}

func (b *RemoteBackend) postJSON(ctx context.Context, path string, req, out any) error {
	body, err := json.Marshal(req)
	if err != nil {
		return err
	}

	resp, err := b.do(ctx, path, body)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return b.statusError(resp)
	}

	return json.NewDecoder(resp.Body).Decode(out)
}

func (b *RemoteBackend) do(ctx context.Context, path string, body []byte) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, b.baseURL+path, bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	if b.token != "" {
		req.Header.Set("Authorization", "Bearer "+b.token)
	}

	return b.httpClient.Do(req)
}

func (b *RemoteBackend) statusError(resp *http.Response) error {
	detail, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
	if resp.StatusCode >= 500 {
		return fmt.Errorf("%w: status %d: %s", ErrBackendUnavailable, resp.StatusCode, bytes.TrimSpace(detail))
	}
	return fmt.Errorf("stage: backend rejected request: status %d: %s", resp.StatusCode, bytes.TrimSpace(detail))
}
