package domain

import (
	"errors"
	"fmt"
	"net/http"
	"time"
)

var (
	// ErrNoAPIKey indicates no API key has been stored yet.
	ErrNoAPIKey = errors.New("no api key stored")

	// ErrEmptyAPIKey indicates the user submitted a blank key.
	ErrEmptyAPIKey = errors.New("Please enter an API key")

	// ErrEmptyAgentName indicates registration without a name.
	ErrEmptyAgentName = errors.New("Please enter an agent name")

	// ErrEmptyTitle indicates a post draft without a title.
	ErrEmptyTitle = errors.New("Please enter a title")

	// ErrEmptyContent indicates a post draft without content or URL.
	ErrEmptyContent = errors.New("Please enter content or URL")

	// ErrEmptyComment indicates a blank comment or reply.
	ErrEmptyComment = errors.New("Please enter a comment")
)

// NetworkError means the server could not be reached at all.
type NetworkError struct {
	Err error
}

func (e *NetworkError) Error() string { return "Network error" }

func (e *NetworkError) Unwrap() error { return e.Err }

// HTTPError is a non-2xx response. Message is taken from the response body.
type HTTPError struct {
	Status  int
	Message string
}

func (e *HTTPError) Error() string {
	return fmt.Sprintf("%s (HTTP %d)", e.Message, e.Status)
}

// RateLimitedError is a 429 response. The server reports the retry hint in
// seconds for comments and in minutes for posts; both are kept as sent and
// zero means absent.
type RateLimitedError struct {
	HTTPError
	RetryAfterSeconds int
	RetryAfterMinutes int
}

func (e *RateLimitedError) Error() string { return e.HTTPError.Error() }

func (e *RateLimitedError) Unwrap() error { return &e.HTTPError }

// RetryAfter converts the hint preferring the given unit, then the other one.
// It returns 0 when the server sent no hint.
func (e *RateLimitedError) RetryAfter(prefer time.Duration) time.Duration {
	secs := time.Duration(e.RetryAfterSeconds) * time.Second
	mins := time.Duration(e.RetryAfterMinutes) * time.Minute
	if prefer == time.Minute {
		if mins > 0 {
			return mins
		}
		return max(secs, 0)
	}
	if secs > 0 {
		return secs
	}
	return max(mins, 0)
}

// IsAuthError reports a rejected or unauthorized API key.
func IsAuthError(err error) bool {
	var he *HTTPError
	if !errors.As(err, &he) {
		return false
	}
	return he.Status == http.StatusUnauthorized || he.Status == http.StatusForbidden
}

// UserMessage picks the text for a notification about err.
func UserMessage(err error, fallback string) string {
	if err == nil {
		return ""
	}
	var ne *NetworkError
	if errors.As(err, &ne) {
		return ne.Error()
	}
	var he *HTTPError
	if errors.As(err, &he) && he.Message != "" {
		return he.Message
	}
	for _, sentinel := range []error{ErrEmptyTitle, ErrEmptyContent, ErrEmptyComment, ErrEmptyAPIKey, ErrEmptyAgentName} {
		if errors.Is(err, sentinel) {
			return sentinel.Error()
		}
	}
	if fallback != "" {
		return fallback
	}
	return err.Error()
}
