package ai

import (
	"errors"
	"fmt"
)

// ErrNoText is wrapped by GenerationError when the service answered without a textual payload.
var ErrNoText = errors.New("generation returned no text")

// ErrToolLoop is wrapped by GenerationError when the model keeps requesting searches.
var ErrToolLoop = errors.New("model kept requesting tools without answering")

// ConfigurationError reports a missing credential or model. Features depending on generation
// should not be offered while it is returned.
type ConfigurationError struct {
	Reason string
}

func (e *ConfigurationError) Error() string {
	return "generation not configured: " + e.Reason
}

// GenerationError reports a failed, timed out or empty upstream call. Callers surface it as a
// retryable failure; the client never retries on its own.
type GenerationError struct {
	Template string
	Err      error
}

func (e *GenerationError) Error() string {
	if e.Template == "" {
		return fmt.Sprintf("generation failed: %v", e.Err)
	}
	return fmt.Sprintf("generation %q failed: %v", e.Template, e.Err)
}

func (e *GenerationError) Unwrap() error {
	return e.Err
}

// ParseError reports text that is not the JSON the caller expected. Raw keeps the offending
// payload for diagnostics.
type ParseError struct {
	Raw string
	Err error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("parse generation output: %v", e.Err)
}

func (e *ParseError) Unwrap() error {
	return e.Err
}

// IsConfiguration reports whether err carries a ConfigurationError.
func IsConfiguration(err error) bool {
	var target *ConfigurationError
	return errors.As(err, &target)
}

// IsRetryable reports whether err is a generation or parse failure the user may retry.
func IsRetryable(err error) bool {
	var genErr *GenerationError
	var parseErr *ParseError
	return errors.As(err, &genErr) || errors.As(err, &parseErr)
}
