package cmd

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"clipline/pkg/api"
)

// Client handles API calls to the clipline controller.
type Client struct {
	BaseURL    string
	HTTPClient *http.Client
}

// NewClient creates a new client with the given base URL.
func NewClient(baseURL string) *Client {
	return &Client{
		BaseURL: baseURL,
		HTTPClient: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
}

// APIError represents an error response from the API.
type APIError struct {
	StatusCode int
	Message    string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("API error (%d): %s", e.StatusCode, e.Message)
}

// CreateProject sends POST /projects to register a new project.
func (c *Client) CreateProject(req api.CreateProjectRequest) (*api.CreateProjectResponse, error) {
	var result api.CreateProjectResponse
	if err := c.post(fmt.Sprintf("%s/projects", c.BaseURL), req, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

// EnqueueJob sends POST /projects/{id}/jobs to queue one pipeline stage.
func (c *Client) EnqueueJob(projectID string, req api.EnqueueJobRequest) (*api.EnqueueJobResponse, error) {
	var result api.EnqueueJobResponse
	if err := c.post(fmt.Sprintf("%s/projects/%s/jobs", c.BaseURL, projectID), req, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

// GetProject sends GET /projects/{id} to retrieve project details.
func (c *Client) GetProject(projectID string) (*api.ProjectResponse, error) {
	var result api.ProjectResponse
	if err := c.get(fmt.Sprintf("%s/projects/%s", c.BaseURL, projectID), &result); err != nil {
		return nil, err
	}
	return &result, nil
}

// GetJob sends GET /jobs/{id} to retrieve job details.
func (c *Client) GetJob(jobID string) (*api.JobResponse, error) {
	var result api.JobResponse
	if err := c.get(fmt.Sprintf("%s/jobs/%s", c.BaseURL, jobID), &result); err != nil {
		return nil, err
	}
	return &result, nil
}

// ListJobs sends GET /projects/{id}/jobs to list a project's jobs.
func (c *Client) ListJobs(projectID string) ([]api.JobResponse, error) {
	var result api.ListJobsResponse
	if err := c.get(fmt.Sprintf("%s/projects/%s/jobs", c.BaseURL, projectID), &result); err != nil {
		return nil, err
	}
	return result.Jobs, nil
}

// ListClips sends GET /projects/{id}/clips to list a project's clips.
func (c *Client) ListClips(projectID string) ([]api.ClipResponse, error) {
	var result api.ListClipsResponse
	if err := c.get(fmt.Sprintf("%s/projects/%s/clips", c.BaseURL, projectID), &result); err != nil {
		return nil, err
	}
	return result.Clips, nil
}

func (c *Client) post(endpoint string, req, out any) error {
	bodyBytes, err := json.Marshal(req)
	if err != nil {
		return fmt.Errorf("failed to marshal request: %w", err)
	}

	httpReq, err := http.NewRequest(http.MethodPost, endpoint, bytes.NewReader(bodyBytes))
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	httpReq.Header.Add("Content-Type", "application/json")

	return c.do(httpReq, out)
}

func (c *Client) get(endpoint string, out any) error {
	httpReq, err := http.NewRequest(http.MethodGet, endpoint, nil)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}

	return c.do(httpReq, out)
}

func (c *Client) do(req *http.Request, out any) error {
	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		return fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	respBody, _ := io.ReadAll(resp.Body)
	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusCreated {
		return &APIError{StatusCode: resp.StatusCode, Message: string(respBody)}
	}

	if err := json.Unmarshal(respBody, out); err != nil {
		return fmt.Errorf("failed to parse response: %w", err)
	}
	return nil
}
