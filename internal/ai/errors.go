package ai

import (
	"errors"
	"fmt"
)

var (
	// ErrMissingCredential is returned before any network call when no API key is configured.
	ErrMissingCredential = errors.New("ai: no service credential configured")

	// ErrUpstreamUnavailable matches every failure of the generation service:
	// transport errors, non-success statuses and empty completions.
	ErrUpstreamUnavailable = errors.New("ai: generation service unavailable")

	// ErrEmptyCompletion is returned, together with ErrUpstreamUnavailable,
	// when the service answers without any content.
	ErrEmptyCompletion = errors.New("ai: empty completion")
)

// UpstreamError carries the status and body of a non-success response for diagnostics.
type UpstreamError struct {
	Provider string
	Status   int
	Body     string
}

func (e *UpstreamError) Error() string {
	return fmt.Sprintf("%s api error (status %d): %s", e.Provider, e.Status, e.Body)
}

// Is makes errors.Is(err, ErrUpstreamUnavailable) true for every UpstreamError.
func (e *UpstreamError) Is(target error) bool {
	return target == ErrUpstreamUnavailable
}
