// Package publish is a client for a cross-posting service that distributes a
// rendered video to social platforms.
package publish

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"
)

// Error is returned for any publishing service failure.
type Error struct {
	Platform   string
	Message    string
	StatusCode int
	Cause      error
}

func (e *Error) Error() string {
	msg := "publish service: " + e.Message
	if e.Platform != "" {
		msg = fmt.Sprintf("publish service: %s: %s", e.Platform, e.Message)
	}
	if e.StatusCode != 0 {
		msg += fmt.Sprintf(" (HTTP %d)", e.StatusCode)
	}
	return msg
}

func (e *Error) Unwrap() error {
	return e.Cause
}

// Client talks to the cross-posting service over HTTP.
type Client struct {
	BaseURL    string
	APIKey     string
	HTTPClient *http.Client
}

// NewClient creates a publish client.
func NewClient(baseURL, apiKey string) *Client {
	return &Client{
		BaseURL:    baseURL,
		APIKey:     apiKey,
		HTTPClient: &http.Client{Timeout: 60 * time.Second},
	}
}

type postRequest struct {
	VideoURL  string   `json:"video_url"`
	Caption   string   `json:"caption"`
	Platforms []string `json:"platforms"`
}

type postResponse struct {
	Posts []struct {
		Platform string `json:"platform"`
		PostID   string `json:"post_id"`
		Error    string `json:"error,omitempty"`
	} `json:"posts"`
}

// Publish posts the video to every requested platform in one batch call and
// returns one post reference per successful platform. Any per-platform
// failure fails the whole batch; partially published workflows are worse
// than failed ones.
func (c *Client) Publish(ctx context.Context, videoRef, caption string, platforms []string) ([]string, error) {
	body, err := json.Marshal(postRequest{VideoURL: videoRef, Caption: caption, Platforms: platforms})
	if err != nil {
		return nil, &Error{Message: "failed to encode request", Cause: err}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.BaseURL+"/v1/posts", bytes.NewReader(body))
	if err != nil {
		return nil, &Error{Message: "failed to build request", Cause: err}
	}
	req.Header.Set("Content-Type", "application/json")
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

	var out postResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return nil, &Error{Message: "failed to decode response", Cause: err}
	}

	refs := make([]string, 0, len(out.Posts))
	for _, p := range out.Posts {
		if p.Error != "" {
			return nil, &Error{Platform: p.Platform, Message: p.Error}
		}
		refs = append(refs, p.Platform+":"+p.PostID)
	}
	if len(refs) == 0 {
		return nil, &Error{Message: "service accepted the batch but returned no posts"}
	}
	return refs, nil
}
