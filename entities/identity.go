package entities

import (
	"time"
)

// Identity is an enrollment record: profile fields plus at most one embedding
// per backend. A backend with no embedding is absent from the map.
type Identity struct {
	ID         string                `bson:"_id" json:"id"`
	Name       string                `bson:"name" json:"name"`
	Embeddings map[Backend]Embedding `bson:"embeddings" json:"-"`

	CreatedAt time.Time `bson:"createdAt" json:"createdAt"`
	UpdatedAt time.Time `bson:"updatedAt" json:"updatedAt"`
}

// IdentityProfile is an Identity without its embeddings.
type IdentityProfile struct {
	ID        string    `bson:"_id" json:"id"`
	Name      string    `bson:"name" json:"name"`
	CreatedAt time.Time `bson:"createdAt" json:"createdAt"`
	UpdatedAt time.Time `bson:"updatedAt" json:"updatedAt"`
}

func (model Identity) ParseModel() any {
	now := time.Now()
	if model.CreatedAt.IsZero() {
		model.CreatedAt = now
	}
	model.UpdatedAt = now
	return &model
}

func (model Identity) Profile() IdentityProfile {
	return IdentityProfile{
		ID:        model.ID,
		Name:      model.Name,
		CreatedAt: model.CreatedAt,
		UpdatedAt: model.UpdatedAt,
	}
}

// Clone deep-copies the identity so callers cannot mutate stored vectors.
func (model Identity) Clone() Identity {
	out := model
	if model.Embeddings != nil {
		out.Embeddings = make(map[Backend]Embedding, len(model.Embeddings))
		for backend, vec := range model.Embeddings {
			out.Embeddings[backend] = vec.Clone()
		}
	}
	return out
}
