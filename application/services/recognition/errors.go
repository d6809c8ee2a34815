package recognition

import (
	"errors"
)

var (
	ErrInvalidInput   = errors.New("invalid input")
	ErrDecode         = errors.New("image could not be decoded")
	ErrNoFaceDetected = errors.New("no backend detected a usable face")
	ErrEmptyStore     = errors.New("no identities are enrolled")
	ErrNoMatch        = errors.New("no reliable identity match")
	ErrStoreFailure   = errors.New("identity store failure")
	ErrCancelled      = errors.New("request cancelled")
)

var reasons = []struct {
	err    error
	reason string
}{
	{ErrInvalidInput, "the request is missing an image, id or name"},
	{ErrDecode, "the image could not be read"},
	{ErrNoFaceDetected, "no face was detected by any algorithm"},
	{ErrEmptyStore, "there are no registered users"},
	{ErrNoMatch, "no reliable identity match was found"},
	{ErrStoreFailure, "the identity store is unavailable, please retry"},
	{ErrCancelled, "the request was cancelled before recognition finished"},
}

// Reason maps an engine error to a message that is safe to show a caller.
func Reason(err error) string {
	if err == nil {
		return ""
	}
	for _, r := range reasons {
		if errors.Is(err, r.err) {
			return r.reason
		}
	}
	return "an unexpected error occured"
}

// Outcome is a short stable label for logs and audit records.
func Outcome(err error) string {
	switch {
	case err == nil:
		return "success"
	case errors.Is(err, ErrInvalidInput):
		return "invalid_input"
	case errors.Is(err, ErrDecode):
		return "decode_error"
	case errors.Is(err, ErrNoFaceDetected):
		return "no_face_detected"
	case errors.Is(err, ErrEmptyStore):
		return "empty_store"
	case errors.Is(err, ErrNoMatch):
		return "no_match"
	case errors.Is(err, ErrStoreFailure):
		return "store_failure"
	case errors.Is(err, ErrCancelled):
		return "cancelled"
	default:
		return "internal_error"
	}
}
