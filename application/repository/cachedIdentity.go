package repository

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"facevote.io/application/utils"
	"facevote.io/entities"
	"facevote.io/infrastructure/logger"
)

const (
	identityDirectoryKey = "identity-directory"
	// identityGenerationKey holds the token of the current directory snapshot.
	// Every Put replaces it, so snapshots taken before a write are never served.
	identityGenerationKey = identityDirectoryKey + ":gen"
)

// ErrDirectoryInvalidation is returned by Put when the identity was stored but
// the cached directory could not be moved to a new generation.
var ErrDirectoryInvalidation = errors.New("identity directory cache could not be invalidated")

// DirectoryCache is the subset of the redis repository used for the
// identity directory.
type DirectoryCache interface {
	CreateEntry(ctx context.Context, key string, payload interface{}, ttl time.Duration) bool
	CreateEntryIfAbsent(ctx context.Context, key string, payload interface{}, ttl time.Duration) bool
	FindOneByteArray(ctx context.Context, key string) *[]byte
}

// CachedIdentityStore serves GetAll from redis. Snapshots are keyed by a
// generation token that every Put replaces. Read failures fall through to the
// wrapped store. Embeddings are never cached.
type CachedIdentityStore struct {
	Store IdentityStore
	Cache DirectoryCache
	TTL   time.Duration
}

func NewCachedIdentityStore(store IdentityStore, cache DirectoryCache, ttl time.Duration) *CachedIdentityStore {
	return &CachedIdentityStore{Store: store, Cache: cache, TTL: ttl}
}

func directoryKey(generation string) string {
	return identityDirectoryKey + ":" + generation
}

func (store *CachedIdentityStore) Put(ctx context.Context, identity *entities.Identity) error {
	if err := store.Store.Put(ctx, identity); err != nil {
		return err
	}
	if !store.Cache.CreateEntry(ctx, identityGenerationKey, utils.GenerateUULDString(), 0) {
		logger.Error("failed to advance identity directory generation", logger.LoggerOptions{
			Key:  "id",
			Data: identity.ID,
		})
		return ErrDirectoryInvalidation
	}
	return nil
}

// generation returns the current snapshot token, minting one when none exists.
// It reports false when no token can be established.
func (store *CachedIdentityStore) generation(ctx context.Context) (string, bool) {
	if token := store.Cache.FindOneByteArray(ctx, identityGenerationKey); token != nil {
		return string(*token), true
	}
	fresh := utils.GenerateUULDString()
	if store.Cache.CreateEntryIfAbsent(ctx, identityGenerationKey, fresh, 0) {
		return fresh, true
	}
	if token := store.Cache.FindOneByteArray(ctx, identityGenerationKey); token != nil {
		return string(*token), true
	}
	return "", false
}

func (store *CachedIdentityStore) GetAll(ctx context.Context) (map[string]entities.IdentityProfile, error) {
	generation, cacheable := store.generation(ctx)
	if cacheable {
		if cached := store.Cache.FindOneByteArray(ctx, directoryKey(generation)); cached != nil {
			profiles := map[string]entities.IdentityProfile{}
			if err := json.Unmarshal(*cached, &profiles); err == nil {
				return profiles, nil
			}
			logger.Warning("discarding unreadable identity directory cache entry")
		}
	}

	profiles, err := store.Store.GetAll(ctx)
	if err != nil {
		return nil, err
	}
	if !cacheable {
		return profiles, nil
	}
	if payload, err := json.Marshal(profiles); err == nil {
		store.Cache.CreateEntry(ctx, directoryKey(generation), payload, store.TTL)
	}
	return profiles, nil
}

func (store *CachedIdentityStore) GetEmbedding(ctx context.Context, id string, backend entities.Backend) (entities.Embedding, error) {
	return store.Store.GetEmbedding(ctx, id, backend)
}
