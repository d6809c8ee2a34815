package apperrors

import (
	"errors"
	"net/http"

	"facevote.io/application/services/recognition"
	"facevote.io/infrastructure/logger"
	server_response "facevote.io/infrastructure/serverResponse"
)

func NotFoundError(ctx interface{}, message string) {
	server_response.Responder.Respond(ctx, http.StatusNotFound, false, message, nil, nil)
}

func ValidationFailedError(ctx interface{}, errMessages *[]error) {
	server_response.Responder.Respond(ctx, http.StatusUnprocessableEntity, false, "Payload validation failed 🙄", nil, *errMessages)
}

func ErrorProcessingPayload(ctx interface{}) {
	server_response.Responder.Respond(ctx, http.StatusBadRequest, false, "Abnormal payload passed 🤨", nil, nil)
}

func PayloadTooLarge(ctx interface{}, limitMB int64) {
	server_response.Responder.Respond(ctx, http.StatusRequestEntityTooLarge, false, "image exceeds the upload limit", map[string]int64{
		"limit_mb": limitMB,
	}, nil)
}

// RecognitionError replies with the caller-safe reason for an engine error.
// Negative outcomes (no face, empty store, no match) are answers rather than
// faults and keep a 200 status.
func RecognitionError(ctx interface{}, err error) {
	status := RecognitionStatus(err)
	if status >= http.StatusInternalServerError {
		logger.Error("recognition request failed", logger.LoggerOptions{
			Key:  "error",
			Data: err.Error(),
		})
	}
	server_response.Responder.Respond(ctx, status, false, recognition.Reason(err), nil, nil)
}

// RecognitionStatus maps an engine error to an HTTP status code.
func RecognitionStatus(err error) int {
	switch {
	case errors.Is(err, recognition.ErrInvalidInput):
		return http.StatusUnprocessableEntity
	case errors.Is(err, recognition.ErrDecode):
		return http.StatusBadRequest
	case errors.Is(err, recognition.ErrNoFaceDetected),
		errors.Is(err, recognition.ErrEmptyStore),
		errors.Is(err, recognition.ErrNoMatch):
		return http.StatusOK
	case errors.Is(err, recognition.ErrStoreFailure):
		return http.StatusServiceUnavailable
	case errors.Is(err, recognition.ErrCancelled):
		return http.StatusRequestTimeout
	default:
		return http.StatusInternalServerError
	}
}
