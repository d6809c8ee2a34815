package repository

import (
	"context"
	"errors"

	"facevote.io/entities"
)

var ErrInvalidIdentity = errors.New("identity must have an id and at least one valid embedding")

// IdentityStore persists enrolled identities. Put merges per backend: an
// embedding replaces the stored one for the same backend, and backends the
// identity does not carry keep what they had. A completed Put is visible to
// every later read.
type IdentityStore interface {
	Put(ctx context.Context, identity *entities.Identity) error
	GetAll(ctx context.Context) (map[string]entities.IdentityProfile, error)
	// GetEmbedding returns nil, nil when the identity or the backend's
	// embedding is absent.
	GetEmbedding(ctx context.Context, id string, backend entities.Backend) (entities.Embedding, error)
}

// validateIdentity rejects writes that would persist an unusable record.
func validateIdentity(identity *entities.Identity) error {
	if identity == nil || identity.ID == "" || len(identity.Embeddings) == 0 {
		return ErrInvalidIdentity
	}
	for backend, embedding := range identity.Embeddings {
		if !backend.IsKnown() {
			return ErrInvalidIdentity
		}
		if err := entities.ValidateEmbedding(embedding); err != nil {
			return err
		}
	}
	return nil
}
