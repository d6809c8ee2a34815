package controller

import (
	"context"
	"net/http"

	apperrors "facevote.io/application/appErrors"
	"facevote.io/application/controller/dto"
	"facevote.io/application/interfaces"
	"facevote.io/application/services/recognition"
	"facevote.io/application/services/similarity"
	"facevote.io/infrastructure/biometric/types"
	"facevote.io/infrastructure/logger"
	server_response "facevote.io/infrastructure/serverResponse"
	"facevote.io/infrastructure/validator"
)

// Recognizer is the part of the recognition engine the HTTP layer drives.
type Recognizer interface {
	Enroll(ctx context.Context, image []byte, id, name string) (*recognition.EnrollResult, error)
	Verify(ctx context.Context, image []byte) (*recognition.Verdict, error)
}

// StatusSource reports per-backend model state.
type StatusSource interface {
	Statuses() []types.EncoderStatus
}

type RecognitionController struct {
	Engine   Recognizer
	Statuses StatusSource
}

// RegisterFace enrolls the face in the uploaded image under the given id.
func (rc *RecognitionController) RegisterFace(ctx *interfaces.ApplicationContext[dto.RegisterFaceDTO]) {
	validationErr := validator.ValidatorInstance.ValidateStruct(ctx.Body)
	if validationErr != nil {
		apperrors.ValidationFailedError(ctx.Ctx, validationErr)
		return
	}

	result, err := rc.Engine.Enroll(requestContext(ctx.Context, ctx.RequestID), ctx.Body.Image, ctx.Body.ID, ctx.Body.Name)
	if err != nil {
		logger.Info("face registration failed", logger.LoggerOptions{
			Key:  "outcome",
			Data: recognition.Outcome(err),
		}, logger.LoggerOptions{
			Key:  "requestID",
			Data: ctx.RequestID,
		})
		apperrors.RecognitionError(ctx.Ctx, err)
		return
	}

	server_response.Responder.Respond(ctx.Ctx, http.StatusOK, true, result.Message, result, nil)
}

// RecognizeFace identifies the person in the uploaded image.
func (rc *RecognitionController) RecognizeFace(ctx *interfaces.ApplicationContext[dto.RecognizeFaceDTO]) {
	validationErr := validator.ValidatorInstance.ValidateStruct(ctx.Body)
	if validationErr != nil {
		apperrors.ValidationFailedError(ctx.Ctx, validationErr)
		return
	}

	verdict, err := rc.Engine.Verify(requestContext(ctx.Context, ctx.RequestID), ctx.Body.Image)
	if err != nil {
		logger.Info("face recognition failed", logger.LoggerOptions{
			Key:  "outcome",
			Data: recognition.Outcome(err),
		}, logger.LoggerOptions{
			Key:  "requestID",
			Data: ctx.RequestID,
		})
		apperrors.RecognitionError(ctx.Ctx, err)
		return
	}

	server_response.Responder.Respond(ctx.Ctx, http.StatusOK, true, "", verdict, nil)
}

// ListBackends reports each backend's scoring profile next to its load state
// and processing stats.
func (rc *RecognitionController) ListBackends(ctx *interfaces.ApplicationContext[any]) {
	statuses := map[string]types.EncoderStatus{}
	if rc.Statuses != nil {
		for _, status := range rc.Statuses.Statuses() {
			statuses[status.Backend.String()] = status
		}
	}

	reports := []dto.BackendReport{}
	for _, profile := range similarity.Profiles() {
		status := statuses[profile.Backend.String()]
		reports = append(reports, dto.BackendReport{
			Profile:      profile,
			ModelsLoaded: status.ModelsLoaded,
			Stats:        status.Stats,
		})
	}

	server_response.Responder.Respond(ctx.Ctx, http.StatusOK, true, "", reports, nil)
}

func HealthCheck(ctx *interfaces.ApplicationContext[any]) {
	server_response.Responder.Respond(ctx.Ctx, http.StatusOK, true, "Face Recognition API is running", dto.HealthResponse{
		Status: "ok",
	}, nil)
}

func requestContext(ctx context.Context, requestID string) context.Context {
	if ctx == nil {
		ctx = context.Background()
	}
	if requestID == "" {
		return ctx
	}
	return recognition.WithRequestID(ctx, requestID)
}
