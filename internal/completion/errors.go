package completion

import (
	"errors"
	"fmt"

	"github.com/iksnae/persona-chat/internal"
)

var (
	// ErrNotConfigured means the credential or endpoint is missing
	ErrNotConfigured = errors.New("completion client not configured")

	// ErrEmptyReply means the endpoint answered without any text
	ErrEmptyReply = internal.ErrEmptyReply
)

// APIError is a non-success answer from a completion endpoint
type APIError struct {
	Status  int
	Message string
}

func (e *APIError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("completion error (HTTP %d)", e.Status)
	}
	return fmt.Sprintf("completion error (HTTP %d): %s", e.Status, e.Message)
}

// CompletionError wraps a failure with the backend that produced it
type CompletionError struct {
	Backend string // "direct", "route"
	Err     error
}

func (e *CompletionError) Error() string {
	return fmt.Sprintf("%s completion failed: %v", e.Backend, e.Err)
}

func (e *CompletionError) Unwrap() error {
	return e.Err
}
