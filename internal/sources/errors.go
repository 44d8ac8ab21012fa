package sources

import (
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/jonathan/trendcast/internal/fetch"
	"github.com/jonathan/trendcast/internal/types"
)

// SourceUnavailableError indicates the external platform could not be
// reached or returned an unusable response. Terminal for the current job.
type SourceUnavailableError struct {
	Source  types.SourceType
	Message string
	Cause   error
}

func (e *SourceUnavailableError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("source %s unavailable: %s: %v", e.Source, e.Message, e.Cause)
	}
	return fmt.Sprintf("source %s unavailable: %s", e.Source, e.Message)
}

func (e *SourceUnavailableError) Unwrap() error {
	return e.Cause
}

// RateLimitedError indicates the external platform rejected the call with a
// rate limit. Also terminal for the current job; the caller creates a new
// job to retry.
type RateLimitedError struct {
	Source     types.SourceType
	RetryAfter time.Duration
}

func (e *RateLimitedError) Error() string {
	if e.RetryAfter > 0 {
		return fmt.Sprintf("source %s rate limited, retry after %s", e.Source, e.RetryAfter)
	}
	return fmt.Sprintf("source %s rate limited", e.Source)
}

// wrapFetchErr classifies a fetch failure: HTTP 429 becomes RateLimitedError,
// everything else SourceUnavailableError.
func wrapFetchErr(source types.SourceType, err error) error {
	var fe *fetch.Error
	if errors.As(err, &fe) && fe.StatusCode == http.StatusTooManyRequests {
		return &RateLimitedError{Source: source}
	}
	return &SourceUnavailableError{Source: source, Message: "request failed", Cause: err}
}
