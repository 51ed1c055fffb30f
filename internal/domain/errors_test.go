package domain

import (
	"errors"
	"fmt"
	"testing"
)

func TestRecordError_Unwrap(t *testing.T) {
	err := NewRecordError(3, "id is required")

	if !errors.Is(err, ErrMalformedRecord) {
		t.Fatalf("expected errors.Is(ErrMalformedRecord), got %v", err)
	}

	var re *RecordError
	if !errors.As(err, &re) {
		t.Fatal("expected errors.As to extract RecordError")
	}
	if re.Index != 3 {
		t.Errorf("Index = %d, want 3", re.Index)
	}

	want := "malformed document record: record 3: id is required"
	if err.Error() != want {
		t.Errorf("Error() = %q, want %q", err.Error(), want)
	}
}

func TestRecordError_Wrapped(t *testing.T) {
	err := fmt.Errorf("decode documents.json: %w", NewRecordError(0, "title is required"))
	if !errors.Is(err, ErrMalformedRecord) {
		t.Errorf("wrapped record error lost its sentinel: %v", err)
	}
	if errors.Is(err, ErrSourceUnavailable) {
		t.Error("record error must not match ErrSourceUnavailable")
	}
}
