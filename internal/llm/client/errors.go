package llmclient

import (
	"errors"
	"strings"
)

// ErrEmptyResponse is returned when a provider call succeeds but carries no
// usable content (no candidates, no text block).
var ErrEmptyResponse = errors.New("llm: empty response")

// PermanentError indicates a provider failure that will not resolve with
// retries (invalid credentials, safety block).
type PermanentError struct {
	Err error
}

func (e *PermanentError) Error() string { return e.Err.Error() }
func (e *PermanentError) Unwrap() error { return e.Err }

func NewPermanentError(err error) error {
	return &PermanentError{Err: err}
}

// UserMessage maps a raw provider error onto a message suitable for the job
// record's error field. Each failure class stays distinguishable so the
// client UI can give actionable advice.
func UserMessage(err error) string {
	if err == nil {
		return ""
	}
	m := err.Error()
	lower := strings.ToLower(m)
	switch {
	case strings.Contains(m, "API_KEY_INVALID") || strings.Contains(lower, "api key not valid") || strings.Contains(lower, "invalid x-api-key"):
		return "Invalid or missing API key. Check the provider credentials in the environment."
	case strings.Contains(m, "429") || strings.Contains(lower, "quota") || strings.Contains(lower, "rate limit") || strings.Contains(lower, "resource_exhausted"):
		return "Rate limit or quota exceeded. Try again in a moment."
	case strings.Contains(lower, "blockreason") || strings.Contains(lower, "blocked") || strings.Contains(lower, "safety"):
		return "Response was blocked by safety filters. Try different or shorter input."
	case strings.Contains(m, "404") || strings.Contains(lower, "not found") || strings.Contains(lower, "model_not_found"):
		return "The configured model is not available for this key."
	default:
		return m
	}
}
