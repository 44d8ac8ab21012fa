// Package video is a client for an external text-to-video rendering service.
// Rendering is asynchronous on the remote side: a render is submitted, then
// polled until it yields a downloadable video URL.
package video

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/jonathan/trendcast/internal/types"
)

// Defaults for the polling loop.
const (
	defaultPollInterval = 5 * time.Second
	defaultMaxPolls     = 60
)

// Error is returned for any render service failure.
type Error struct {
	Message    string
	StatusCode int
	Cause      error
}

func (e *Error) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("video service: %s (HTTP %d)", e.Message, e.StatusCode)
	}
	if e.Cause != nil {
		return fmt.Sprintf("video service: %s: %v", e.Message, e.Cause)
	}
	return "video service: " + e.Message
}

func (e *Error) Unwrap() error {
	return e.Cause
}

// Client talks to the render service over HTTP.
type Client struct {
	BaseURL      string
	APIKey       string
	HTTPClient   *http.Client
	PollInterval time.Duration
	MaxPolls     int
}

// NewClient creates a render client.
func NewClient(baseURL, apiKey string) *Client {
	return &Client{
		BaseURL:      baseURL,
		APIKey:       apiKey,
		HTTPClient:   &http.Client{Timeout: 30 * time.Second},
		PollInterval: defaultPollInterval,
		MaxPolls:     defaultMaxPolls,
	}
}

type renderRequest struct {
	Script          string `json:"script"`
	Style           string `json:"style,omitempty"`
	DurationSeconds int    `json:"duration_seconds,omitempty"`
	AspectRatio     string `json:"aspect_ratio"`
}

type renderResponse struct {
	ID       string `json:"id"`
	Status   string `json:"status"`
	VideoURL string `json:"video_url,omitempty"`
	Error    string `json:"error,omitempty"`
}

// Generate submits a render and polls until it finishes, returning the video
// URL. The context bounds the whole wait.
func (c *Client) Generate(ctx context.Context, script string, cfg types.WorkflowConfig) (string, error) {
	submitted, err := c.post(ctx, "/v1/renders", renderRequest{
		Script:          script,
		Style:           cfg.Style,
		DurationSeconds: cfg.DurationSeconds,
		AspectRatio:     "9:16",
	})
	if err != nil {
		return "", err
	}
	if submitted.ID == "" {
		return "", &Error{Message: "submit returned no render id"}
	}

	interval := c.PollInterval
	if interval <= 0 {
		interval = defaultPollInterval
	}
	maxPolls := c.MaxPolls
	if maxPolls <= 0 {
		maxPolls = defaultMaxPolls
	}

	for i := 0; i < maxPolls; i++ {
		select {
		case <-ctx.Done():
			return "", &Error{Message: "render wait aborted", Cause: ctx.Err()}
		case <-time.After(interval):
		}

		status, err := c.get(ctx, "/v1/renders/"+submitted.ID)
		if err != nil {
			return "", err
		}
		switch status.Status {
		case "completed":
			if status.VideoURL == "" {
				return "", &Error{Message: "render completed without a video url"}
			}
			return status.VideoURL, nil
		case "failed":
			return "", &Error{Message: "render failed: " + status.Error}
		}
	}
	return "", &Error{Message: fmt.Sprintf("render %s did not finish within %d polls", submitted.ID, maxPolls)}
}

func (c *Client) post(ctx context.Context, path string, payload any) (*renderResponse, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, &Error{Message: "failed to encode request", Cause: err}
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.BaseURL+path, bytes.NewReader(body))
	if err != nil {
		return nil, &Error{Message: "failed to build request", Cause: err}
	}
	req.Header.Set("Content-Type", "application/json")
	return c.do(req)
}

func (c *Client) get(ctx context.Context, path string) (*renderResponse, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.BaseURL+path, nil)
	if err != nil {
		return nil, &Error{Message: "failed to build request", Cause: err}
	}
	return c.do(req)
}

func (c *Client) do(req *http.Request) (*renderResponse, error) {
	if c.APIKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.APIKey)
	}

	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		return nil, &Error{Message: "request failed", Cause: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, &Error{Message: "unexpected response", StatusCode: resp.StatusCode}
	}

	var out renderResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return nil, &Error{Message: "failed to decode response", Cause: err}
	}
	return &out, nil
}
