package service

import (
	"errors"
	"strings"
)

var (
	// ErrChannelNotFound indicates no channel matches the given tag or id.
	ErrChannelNotFound = errors.New("channel not found")
	// ErrTopicNotFound indicates no topic matches the given id.
	ErrTopicNotFound = errors.New("topic not found")
	// ErrNotAuthorized indicates the caller may not perform the operation.
	// The message is deliberately generic so private channels cannot be
	// enumerated beyond what CanView already permits.
	ErrNotAuthorized = errors.New("not authorized")
	// ErrTopicReadOnly indicates replies to the topic are closed.
	ErrTopicReadOnly = errors.New("topic is read-only")
	// ErrNotAParent indicates a reply targeted something that is itself a reply.
	ErrNotAParent = errors.New("replies must target a top-level topic")
)

// FieldError is a single validation failure tied to an input field.
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// ValidationError accumulates every failed check for one request so the
// caller can re-display all of them at once instead of failing fast.
type ValidationError struct {
	Errors []FieldError
}

func (e *ValidationError) Error() string {
	parts := make([]string, 0, len(e.Errors))
	for _, fe := range e.Errors {
		parts = append(parts, fe.Field+": "+fe.Message)
	}
	return "validation failed: " + strings.Join(parts, "; ")
}

func (e *ValidationError) add(field, message string) {
	e.Errors = append(e.Errors, FieldError{Field: field, Message: message})
}

func (e *ValidationError) orNil() error {
	if len(e.Errors) == 0 {
		return nil
	}
	return e
}

// AsValidationError unwraps err into a *ValidationError when possible.
func AsValidationError(err error) (*ValidationError, bool) {
	var ve *ValidationError
	if errors.As(err, &ve) {
		return ve, true
	}
	return nil, false
}
