package repository

import (
	"context"
	"sync"
	"time"

	"facevote.io/entities"
	"facevote.io/infrastructure/database/connection/datastore"
	"facevote.io/infrastructure/database/repository/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

var identityOnce = sync.Once{}

var identityRepository mongo.MongoRepository[entities.Identity]

func IdentityRepo() *mongo.MongoRepository[entities.Identity] {
	identityOnce.Do(func() {
		identityRepository = mongo.MongoRepository[entities.Identity]{Model: datastore.IdentityModel}
	})
	return &identityRepository
}

// MongoIdentityStore keeps one document per identity with embeddings keyed
// by backend name.
type MongoIdentityStore struct {
	Repo *mongo.MongoRepository[entities.Identity]
}

func NewMongoIdentityStore(repo *mongo.MongoRepository[entities.Identity]) *MongoIdentityStore {
	return &MongoIdentityStore{Repo: repo}
}

// Put upserts the name and every carried embedding in a single document
// update, so readers never observe part of an enrollment.
func (store *MongoIdentityStore) Put(ctx context.Context, identity *entities.Identity) error {
	if err := validateIdentity(identity); err != nil {
		return err
	}

	now := time.Now()
	set := map[string]interface{}{
		"name":      identity.Name,
		"updatedAt": now,
	}
	for backend, embedding := range identity.Embeddings {
		set["embeddings."+backend.String()] = []float32(embedding)
	}
	return store.Repo.UpsertPartialByID(ctx, identity.ID, set, map[string]interface{}{
		"createdAt": now,
	})
}

func (store *MongoIdentityStore) GetAll(ctx context.Context) (map[string]entities.IdentityProfile, error) {
	identities, err := store.Repo.FindMany(ctx, map[string]interface{}{}, options.Find().SetProjection(map[string]any{
		"embeddings": 0,
	}))
	if err != nil {
		return nil, err
	}

	profiles := make(map[string]entities.IdentityProfile, len(*identities))
	for _, identity := range *identities {
		profiles[identity.ID] = identity.Profile()
	}
	return profiles, nil
}

func (store *MongoIdentityStore) GetEmbedding(ctx context.Context, id string, backend entities.Backend) (entities.Embedding, error) {
	identity, err := store.Repo.FindByID(ctx, id, options.FindOne().SetProjection(map[string]any{
		"embeddings." + backend.String(): 1,
	}))
	if err != nil {
		return nil, err
	}
	if identity == nil {
		return nil, nil
	}
	embedding, exists := identity.Embeddings[backend]
	if !exists || len(embedding) == 0 {
		return nil, nil
	}
	return embedding, nil
}
