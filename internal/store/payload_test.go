package store

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDecodePayload_Transcription(t *testing.T) {
	payload, err := DecodePayload(JobTypeTranscription, json.RawMessage(`{"source_object":"uploads/v1.mp4"}`))
	require.NoError(t, err)

	p, ok := payload.(TranscriptionPayload)
	require.True(t, ok)
	assert.Equal(t, "uploads/v1.mp4", p.SourceObject)
}

func TestDecodePayload_UnknownType(t *testing.T) {
	_, err := DecodePayload(JobType("thumbnail"), json.RawMessage(`{}`))
	assert.ErrorContains(t, err, "unknown job type")
}

func TestDecodePayload_MissingRequiredField(t *testing.T) {
	_, err := DecodePayload(JobTypeTranscription, json.RawMessage(`{}`))
	assert.ErrorContains(t, err, "invalid transcription payload")
}

func TestDecodePayload_MalformedJSON(t *testing.T) {
	_, err := DecodePayload(JobTypeAnalysis, json.RawMessage(`{`))
	assert.ErrorContains(t, err, "malformed analysis payload")
}

func TestDecodePayload_VideoCutRange(t *testing.T) {
	// A payload meant for another type must not decode as video_cut.
	_, err := DecodePayload(JobTypeVideoCut, json.RawMessage(`{"transcript_object":"t.json"}`))
	require.Error(t, err)

	// start must be strictly before end
	_, err = DecodePayload(JobTypeVideoCut, json.RawMessage(`{"source_object":"s.mp4","start":25,"end":10}`))
	require.Error(t, err)

	payload, err := DecodePayload(JobTypeVideoCut, json.RawMessage(`{"source_object":"s.mp4","start":10,"end":25}`))
	require.NoError(t, err)
	p := payload.(VideoCutPayload)
	assert.Equal(t, 10.0, p.StartSeconds)
	assert.Equal(t, 25.0, p.EndSeconds)
}

func TestDecodePayload_UploadTransfer(t *testing.T) {
	_, err := DecodePayload(JobTypeUploadTransfer, json.RawMessage(`{"source_url":"not a url"}`))
	require.Error(t, err)

	payload, err := DecodePayload(JobTypeUploadTransfer, json.RawMessage(`{"upload_id":"u-1","source_url":"https://cdn.example.com/v1.mp4"}`))
	require.NoError(t, err)
	assert.Equal(t, "u-1", payload.(UploadTransferPayload).UploadID)
}
