package domain

import (
	"errors"
	"fmt"
)

var (
	// ErrSourceUnavailable signals a missing or unreadable document source.
	ErrSourceUnavailable = errors.New("document source unavailable")
	// ErrMalformedRecord signals a source record that does not match the document shape.
	ErrMalformedRecord = errors.New("malformed document record")
	// ErrInvalidInput signals a request rejected by boundary validation.
	ErrInvalidInput = errors.New("invalid input")
	// ErrNotImplemented signals an unimplemented feature.
	ErrNotImplemented = errors.New("not implemented")
)

// RecordError wraps ErrMalformedRecord with the position of the offending record.
type RecordError struct {
	Index  int
	Reason string
}

func (e *RecordError) Error() string {
	return fmt.Sprintf("%s: record %d: %s", ErrMalformedRecord.Error(), e.Index, e.Reason)
}

func (e *RecordError) Unwrap() error { return ErrMalformedRecord }

// NewRecordError creates a malformed record error.
func NewRecordError(index int, reason string) error {
	return &RecordError{Index: index, Reason: reason}
}
