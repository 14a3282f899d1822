package cmd

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"clipline/pkg/api"

	"github.com/spf13/viper"
)

func TestJobsCommand_ListsJobs(t *testing.T) {
	resetViper()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !strings.Contains(r.URL.Path, "/projects/proj-123/jobs") {
			t.Errorf("unexpected path: %s", r.URL.Path)
		}

		resp := api.ListJobsResponse{
			Jobs: []api.JobResponse{
				{ID: "job-1", ProjectID: "proj-123", Type: "analysis", Status: "queued", CreatedAt: time.Now()},
				{ID: "job-2", ProjectID: "proj-123", Type: "transcription", Status: "succeeded", Progress: 100, CreatedAt: time.Now().Add(-time.Hour)},
			},
		}
		w.WriteHeader(http.StatusOK)
		json.NewEncoder(w).Encode(resp)
	}))
	defer server.Close()

	viper.Set("url", server.URL)

	var stdout bytes.Buffer
	rootCmd.SetOut(&stdout)
	rootCmd.SetErr(&stdout)
	rootCmd.SetArgs([]string{"jobs", "proj-123"})

	err := rootCmd.Execute()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	output := stdout.String()
	if !strings.Contains(output, "job-1") || !strings.Contains(output, "job-2") {
		t.Errorf("expected both jobs in output, got: %s", output)
	}
	if !strings.Contains(output, "transcription") {
		t.Errorf("expected job type in output, got: %s", output)
	}
}

func TestJobsCommand_Empty(t *testing.T) {
	resetViper()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		json.NewEncoder(w).Encode(api.ListJobsResponse{Jobs: []api.JobResponse{}})
	}))
	defer server.Close()

	viper.Set("url", server.URL)

	var stdout bytes.Buffer
	rootCmd.SetOut(&stdout)
	rootCmd.SetErr(&stdout)
	rootCmd.SetArgs([]string{"jobs", "proj-123"})

	err := rootCmd.Execute()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if !strings.Contains(stdout.String(), "No jobs found") {
		t.Errorf("expected empty message, got: %s", stdout.String())
	}
}

func TestJobCommand_ShowsDetails(t *testing.T) {
	resetViper()

	started := time.Now().Add(-10 * time.Minute)
	completed := time.Now().Add(-9 * time.Minute)
	errMsg := "transcode timeout"

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !strings.Contains(r.URL.Path, "/jobs/job-456") {
			t.Errorf("unexpected path: %s", r.URL.Path)
		}

		resp := api.JobResponse{
			ID:          "job-456",
			ProjectID:   "proj-123",
			ClipID:      "clip-9",
			Type:        "video_cut",
			Status:      "failed",
			Progress:    80,
			Attempt:     1,
			Error:       &errMsg,
			CreatedAt:   started,
			StartedAt:   &started,
			CompletedAt: &completed,
		}
		w.WriteHeader(http.StatusOK)
		json.NewEncoder(w).Encode(resp)
	}))
	defer server.Close()

	viper.Set("url", server.URL)

	var stdout bytes.Buffer
	rootCmd.SetOut(&stdout)
	rootCmd.SetErr(&stdout)
	rootCmd.SetArgs([]string{"job", "job-456"})

	err := rootCmd.Execute()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	output := stdout.String()
	if !strings.Contains(output, "job-456") {
		t.Errorf("expected job ID, got: %s", output)
	}
	if !strings.Contains(output, "clip-9") {
		t.Errorf("expected clip ID, got: %s", output)
	}
	if !strings.Contains(output, "transcode timeout") {
		t.Errorf("expected error message, got: %s", output)
	}
	if !strings.Contains(output, "80%") {
		t.Errorf("expected progress, got: %s", output)
	}
}

func TestJobCommand_ShowsResultMetadata(t *testing.T) {
	resetViper()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		resp := api.JobResponse{
			ID:             "job-ok",
			ProjectID:      "proj-123",
			Type:           "transcription",
			Status:         "succeeded",
			Progress:       100,
			Attempt:        1,
			ResultMetadata: json.RawMessage(`{"transcript_object":"transcripts/proj-123.json"}`),
			CreatedAt:      time.Now(),
		}
		w.WriteHeader(http.StatusOK)
		json.NewEncoder(w).Encode(resp)
	}))
	defer server.Close()

	viper.Set("url", server.URL)

	var stdout bytes.Buffer
	rootCmd.SetOut(&stdout)
	rootCmd.SetErr(&stdout)
	rootCmd.SetArgs([]string{"job", "job-ok"})

	err := rootCmd.Execute()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if !strings.Contains(stdout.String(), "transcripts/proj-123.json") {
		t.Errorf("expected result metadata, got: %s", stdout.String())
	}
}
