package models

import (
	"errors"
	"fmt"
)

// Error kinds. Compare with errors.Is.
var (
	ErrExtraction       = errors.New("resume text extraction failed")
	ErrValidation       = errors.New("resume metadata invalid")
	ErrPersistence      = errors.New("candidate persistence failed")
	ErrIndexConsistency = errors.New("vector index and candidate store disagree")
)

// Error carries an error kind together with the operation and cause.
type Error struct {
	Op     string
	Kind   error
	Detail string
	Err    error
}

func (e *Error) Error() string {
	msg := e.Kind.Error()
	if e.Op != "" {
		msg = e.Op + ": " + msg
	}
	if e.Detail != "" {
		msg += " (" + e.Detail + ")"
	}
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Is reports whether target is this error's kind.
func (e *Error) Is(target error) bool {
	return e.Kind == target
}

// NewExtractionError reports that the document at path yielded no usable text.
func NewExtractionError(path string, err error) error {
	return &Error{Op: "extract", Kind: ErrExtraction, Detail: path, Err: err}
}

// NewValidationError reports a missing or malformed metadata field.
func NewValidationError(field, detail string) error {
	return &Error{Op: "validate", Kind: ErrValidation, Detail: fmt.Sprintf("%s: %s", field, detail)}
}

// NewPersistenceError reports a failure reading or writing durable state.
func NewPersistenceError(op string, err error) error {
	return &Error{Op: op, Kind: ErrPersistence, Err: err}
}

// NewIndexConsistencyError reports a vector index position with no candidate.
func NewIndexConsistencyError(position int) error {
	return &Error{Op: "resolve", Kind: ErrIndexConsistency, Detail: fmt.Sprintf("position %d", position)}
}
