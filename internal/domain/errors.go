package domain

import (
	"errors"
	"fmt"
	"strings"
)

// ValidationKind distinguishes the ways a request can fail validation.
type ValidationKind string

const (
	MissingInput   ValidationKind = "missing_input"
	AmbiguousInput ValidationKind = "ambiguous_input"
)

// ValidationError is returned before any engine contact when the request shape is wrong.
type ValidationError struct {
	Kind    ValidationKind
	Message string
}

func (e *ValidationError) Error() string {
	return e.Message
}

// Is matches another ValidationError of the same kind, so the sentinels below
// work with errors.Is.
func (e *ValidationError) Is(target error) bool {
	var t *ValidationError
	if !errors.As(target, &t) {
		return false
	}
	return t.Kind == e.Kind
}

var (
	ErrMissingInput   = &ValidationError{Kind: MissingInput, Message: "no imageData or pdfData provided in input"}
	ErrAmbiguousInput = &ValidationError{Kind: AmbiguousInput, Message: "provide either imageData or pdfData, not both"}
)

// DecodeError reports a malformed payload: bad base64, an undecodable image, or an invalid PDF.
type DecodeError struct {
	Kind InputKind
	Err  error
}

func (e *DecodeError) Error() string {
	return fmt.Sprintf("failed to decode %s: %v", e.Kind, e.Err)
}

func (e *DecodeError) Unwrap() error {
	return e.Err
}

// InitializationError reports that every engine construction strategy failed.
type InitializationError struct {
	Provider string
	Attempts []error
}

func (e *InitializationError) Error() string {
	msgs := make([]string, 0, len(e.Attempts))
	for _, a := range e.Attempts {
		msgs = append(msgs, a.Error())
	}
	return fmt.Sprintf("%s engine unavailable: %s", e.Provider, strings.Join(msgs, "; "))
}

func (e *InitializationError) Unwrap() []error {
	return e.Attempts
}

// InferenceError wraps a failure raised by the engine while processing an artifact.
type InferenceError struct {
	Engine string
	Err    error
}

func (e *InferenceError) Error() string {
	return fmt.Sprintf("%s inference failed: %v", e.Engine, e.Err)
}

func (e *InferenceError) Unwrap() error {
	return e.Err
}

// ErrUnauthorized is returned by the auth layer for missing or invalid tokens.
var ErrUnauthorized = errors.New("unauthorized")
