package domain

import (
	"errors"
	"fmt"
	"strings"
)

var (
	ErrMissingCredential = errors.New("missing credential")
	ErrInvalidInput      = errors.New("invalid input")
	ErrInvalidJob        = errors.New("invalid image job")
	ErrJobFailed         = errors.New("image job failed")
	ErrPollTimeout       = errors.New("image job did not finish in time")
	ErrMalformedResponse = errors.New("malformed text response")
	ErrSuperseded        = errors.New("superseded by a newer submission")
)

// ConfigError reports a provider credential that was never configured. It is
// detected before any network call is made.
type ConfigError struct {
	Setting string
}

func (e *ConfigError) Error() string {
	return fmt.Sprintf("%s not configured, please follow instructions in README.md", e.Setting)
}

// Is lets callers match any ConfigError against ErrMissingCredential.
func (e *ConfigError) Is(target error) bool {
	return target == ErrMissingCredential
}

// UpstreamError carries a non-success provider response so it can be relayed
// to the caller untouched.
type UpstreamError struct {
	Provider   string
	StatusCode int
	Body       []byte
}

func (e *UpstreamError) Error() string {
	body := strings.TrimSpace(string(e.Body))
	if len(body) > 256 {
		body = body[:256] + "..."
	}
	if body == "" {
		return fmt.Sprintf("%s: status %d", e.Provider, e.StatusCode)
	}
	return fmt.Sprintf("%s: status %d: %s", e.Provider, e.StatusCode, body)
}

// InvalidInput wraps ErrInvalidInput with a client-facing message.
func InvalidInput(message string) error {
	return fmt.Errorf("%w: %s", ErrInvalidInput, message)
}

// InputMessage returns the client-facing part of an ErrInvalidInput error.
func InputMessage(err error) string {
	msg := err.Error()
	prefix := ErrInvalidInput.Error() + ": "
	if idx := strings.Index(msg, prefix); idx >= 0 {
		return msg[idx+len(prefix):]
	}
	return msg
}
