package dto

import (
	"facevote.io/application/services/similarity"
	"facevote.io/infrastructure/biometric/types"
)

// RegisterFaceDTO is the multipart enrollment form: image, name and id.
type RegisterFaceDTO struct {
	ID    string `form:"id" validate:"required,max=128,identity_id"`
	Name  string `form:"name" validate:"required,max=256,display_name"`
	Image []byte `validate:"required,min=1"`
}

// RecognizeFaceDTO is the multipart verification form.
type RecognizeFaceDTO struct {
	Image []byte `validate:"required,min=1"`
}

// BackendReport joins a backend's scoring profile with its runtime status.
type BackendReport struct {
	similarity.Profile
	ModelsLoaded bool                  `json:"models_loaded"`
	Stats        types.ProcessingStats `json:"stats"`
}

type HealthResponse struct {
	Status string `json:"status"`
}
