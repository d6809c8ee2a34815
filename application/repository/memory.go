package repository

import (
	"context"
	"sync"
	"time"

	"facevote.io/entities"
)

// MemoryIdentityStore keeps identities in process memory. Stored and returned
// values are deep copies.
type MemoryIdentityStore struct {
	mutex      sync.RWMutex
	identities map[string]entities.Identity
}

func NewMemoryIdentityStore() *MemoryIdentityStore {
	return &MemoryIdentityStore{identities: map[string]entities.Identity{}}
}

func (store *MemoryIdentityStore) Put(_ context.Context, identity *entities.Identity) error {
	if err := validateIdentity(identity); err != nil {
		return err
	}

	store.mutex.Lock()
	defer store.mutex.Unlock()

	now := time.Now()
	current, exists := store.identities[identity.ID]
	if !exists {
		current = entities.Identity{
			ID:         identity.ID,
			Embeddings: map[entities.Backend]entities.Embedding{},
			CreatedAt:  now,
		}
	}
	current.Name = identity.Name
	current.UpdatedAt = now
	for backend, embedding := range identity.Embeddings {
		current.Embeddings[backend] = embedding.Clone()
	}
	store.identities[identity.ID] = current
	return nil
}

func (store *MemoryIdentityStore) GetAll(_ context.Context) (map[string]entities.IdentityProfile, error) {
	store.mutex.RLock()
	defer store.mutex.RUnlock()

	profiles := make(map[string]entities.IdentityProfile, len(store.identities))
	for id, identity := range store.identities {
		profiles[id] = identity.Profile()
	}
	return profiles, nil
}

func (store *MemoryIdentityStore) GetEmbedding(_ context.Context, id string, backend entities.Backend) (entities.Embedding, error) {
	store.mutex.RLock()
	defer store.mutex.RUnlock()

	identity, exists := store.identities[id]
	if !exists {
		return nil, nil
	}
	embedding, exists := identity.Embeddings[backend]
	if !exists {
		return nil, nil
	}
	return embedding.Clone(), nil
}
