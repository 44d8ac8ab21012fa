package publish

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPublish_Batch(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/v1/posts", r.URL.Path)
		assert.Equal(t, "Bearer pub-key", r.Header.Get("Authorization"))

		var req postRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, "https://cdn.example/v.mp4", req.VideoURL)
		assert.Equal(t, "caption #tech", req.Caption)
		assert.Equal(t, []string{"tiktok", "youtube"}, req.Platforms)

		json.NewEncoder(w).Encode(map[string]any{
			"posts": []map[string]string{
				{"platform": "tiktok", "post_id": "111"},
				{"platform": "youtube", "post_id": "222"},
			},
		})
	}))
	defer srv.Close()

	refs, err := NewClient(srv.URL, "pub-key").Publish(
		context.Background(), "https://cdn.example/v.mp4", "caption #tech", []string{"tiktok", "youtube"})
	require.NoError(t, err)
	assert.Equal(t, []string{"tiktok:111", "youtube:222"}, refs)
}

func TestPublish_PerPlatformFailureFailsBatch(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]any{
			"posts": []map[string]string{
				{"platform": "tiktok", "post_id": "111"},
				{"platform": "youtube", "error": "upload rejected"},
			},
		})
	}))
	defer srv.Close()

	_, err := NewClient(srv.URL, "").Publish(context.Background(), "v", "c", []string{"tiktok", "youtube"})
	var perr *Error
	require.ErrorAs(t, err, &perr)
	assert.Equal(t, "youtube", perr.Platform)
	assert.Contains(t, perr.Message, "upload rejected")
}

func TestPublish_HTTPError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer srv.Close()

	_, err := NewClient(srv.URL, "").Publish(context.Background(), "v", "c", []string{"tiktok"})
	var perr *Error
	require.ErrorAs(t, err, &perr)
	assert.Equal(t, http.StatusBadGateway, perr.StatusCode)
}

func TestPublish_EmptyResponse(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]any{"posts": []any{}})
	}))
	defer srv.Close()

	_, err := NewClient(srv.URL, "").Publish(context.Background(), "v", "c", []string{"tiktok"})
	var perr *Error
	require.ErrorAs(t, err, &perr)
	assert.Contains(t, perr.Message, "no posts")
}
