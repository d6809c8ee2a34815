package recognition

import (
	"context"
	"errors"
	"fmt"
	"testing"
)

func TestReasonAndOutcome(t *testing.T) {
	tests := []struct {
		err         error
		wantOutcome string
	}{
		{nil, "success"},
		{ErrInvalidInput, "invalid_input"},
		{fmt.Errorf("%w: bad header", ErrDecode), "decode_error"},
		{ErrNoFaceDetected, "no_face_detected"},
		{ErrEmptyStore, "empty_store"},
		{ErrNoMatch, "no_match"},
		{fmt.Errorf("%w: timeout", ErrStoreFailure), "store_failure"},
		{fmt.Errorf("%w: %w", ErrCancelled, context.Canceled), "cancelled"},
		{errors.New("something else"), "internal_error"},
	}

	for _, tt := range tests {
		t.Run(tt.wantOutcome, func(t *testing.T) {
			if got := Outcome(tt.err); got != tt.wantOutcome {
				t.Errorf("Outcome() = %q, want %q", got, tt.wantOutcome)
			}
			reason := Reason(tt.err)
			if tt.err == nil && reason != "" {
				t.Errorf("Reason(nil) = %q", reason)
			}
			if tt.err != nil && reason == "" {
				t.Errorf("Reason() is empty")
			}
		})
	}
}

func TestReasonHidesInternalDetail(t *testing.T) {
	err := fmt.Errorf("%w: mongodb://admin:secret@db", ErrStoreFailure)
	if got := Reason(err); got != "the identity store is unavailable, please retry" {
		t.Errorf("Reason() = %q", got)
	}
}
