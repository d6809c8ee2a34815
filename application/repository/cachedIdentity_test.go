package repository

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"facevote.io/entities"
)

type fakeCache struct {
	mutex      sync.Mutex
	entries    map[string][]byte
	sets       int
	failWrites bool
}

func newFakeCache() *fakeCache {
	return &fakeCache{entries: map[string][]byte{}}
}

func (c *fakeCache) store(key string, payload interface{}) {
	switch v := payload.(type) {
	case []byte:
		c.entries[key] = v
	case string:
		c.entries[key] = []byte(v)
	}
}

func (c *fakeCache) CreateEntry(_ context.Context, key string, payload interface{}, _ time.Duration) bool {
	c.mutex.Lock()
	defer c.mutex.Unlock()
	if c.failWrites {
		return false
	}
	c.sets++
	c.store(key, payload)
	return true
}

func (c *fakeCache) CreateEntryIfAbsent(_ context.Context, key string, payload interface{}, _ time.Duration) bool {
	c.mutex.Lock()
	defer c.mutex.Unlock()
	if c.failWrites {
		return false
	}
	if _, ok := c.entries[key]; ok {
		return false
	}
	c.sets++
	c.store(key, payload)
	return true
}

func (c *fakeCache) FindOneByteArray(_ context.Context, key string) *[]byte {
	c.mutex.Lock()
	defer c.mutex.Unlock()
	v, ok := c.entries[key]
	if !ok {
		return nil
	}
	return &v
}

type countingStore struct {
	IdentityStore
	getAllCalls int
	failGetAll  bool
	// when set, GetAll signals read after taking its snapshot and waits on
	// release before returning it.
	read    chan struct{}
	release chan struct{}
}

func (s *countingStore) GetAll(ctx context.Context) (map[string]entities.IdentityProfile, error) {
	s.getAllCalls++
	if s.failGetAll {
		return nil, errors.New("boom")
	}
	profiles, err := s.IdentityStore.GetAll(ctx)
	if s.read != nil {
		s.read <- struct{}{}
		<-s.release
	}
	return profiles, err
}

func identityWith(id string, embedding entities.Embedding) *entities.Identity {
	return &entities.Identity{ID: id, Embeddings: map[entities.Backend]entities.Embedding{
		entities.BackendInsightFace: embedding,
	}}
}

func TestCachedIdentityStore_GetAllUsesCache(t *testing.T) {
	ctx := context.Background()
	backing := &countingStore{IdentityStore: NewMemoryIdentityStore()}
	cache := newFakeCache()
	store := NewCachedIdentityStore(backing, cache, time.Minute)

	_ = store.Put(ctx, &entities.Identity{ID: "u1", Name: "Ada", Embeddings: map[entities.Backend]entities.Embedding{
		entities.BackendInsightFace: unit(1, 0),
	}})

	for i := 0; i < 3; i++ {
		all, err := store.GetAll(ctx)
		if err != nil {
			t.Fatalf("GetAll() error = %v", err)
		}
		if all["u1"].Name != "Ada" {
			t.Fatalf("GetAll() = %v, want u1/Ada", all)
		}
	}
	if backing.getAllCalls != 1 {
		t.Errorf("backing GetAll calls = %d, want 1", backing.getAllCalls)
	}
}

func TestCachedIdentityStore_PutInvalidates(t *testing.T) {
	ctx := context.Background()
	backing := &countingStore{IdentityStore: NewMemoryIdentityStore()}
	cache := newFakeCache()
	store := NewCachedIdentityStore(backing, cache, time.Minute)

	_ = store.Put(ctx, &entities.Identity{ID: "u1", Embeddings: map[entities.Backend]entities.Embedding{
		entities.BackendInsightFace: unit(1, 0),
	}})
	if _, err := store.GetAll(ctx); err != nil {
		t.Fatalf("GetAll() error = %v", err)
	}

	_ = store.Put(ctx, &entities.Identity{ID: "u2", Embeddings: map[entities.Backend]entities.Embedding{
		entities.BackendInsightFace: unit(0, 1),
	}})
	all, _ := store.GetAll(ctx)
	if _, ok := all["u2"]; !ok {
		t.Errorf("GetAll() after Put = %v, want u2 visible", all)
	}
	if backing.getAllCalls != 2 {
		t.Errorf("backing GetAll calls = %d, want 2", backing.getAllCalls)
	}
}

func TestCachedIdentityStore_FailedPutKeepsCache(t *testing.T) {
	ctx := context.Background()
	cache := newFakeCache()
	store := NewCachedIdentityStore(NewMemoryIdentityStore(), cache, time.Minute)

	if err := store.Put(ctx, &entities.Identity{ID: "u1"}); err == nil {
		t.Fatal("Put() accepted an identity without embeddings")
	}
	if cache.sets != 0 {
		t.Errorf("cache sets = %d, want 0", cache.sets)
	}
}

func TestCachedIdentityStore_UnreadableEntryFallsBack(t *testing.T) {
	ctx := context.Background()
	backing := &countingStore{IdentityStore: NewMemoryIdentityStore()}
	cache := newFakeCache()
	cache.entries[identityGenerationKey] = []byte("g1")
	cache.entries[directoryKey("g1")] = []byte("{not json")
	store := NewCachedIdentityStore(backing, cache, time.Minute)

	if _, err := store.GetAll(ctx); err != nil {
		t.Fatalf("GetAll() error = %v", err)
	}
	if backing.getAllCalls != 1 {
		t.Errorf("backing GetAll calls = %d, want 1", backing.getAllCalls)
	}
}

func TestCachedIdentityStore_BackingErrorNotCached(t *testing.T) {
	ctx := context.Background()
	backing := &countingStore{IdentityStore: NewMemoryIdentityStore(), failGetAll: true}
	cache := newFakeCache()
	store := NewCachedIdentityStore(backing, cache, time.Minute)

	if _, err := store.GetAll(ctx); err == nil {
		t.Fatal("GetAll() error = nil, want backing error")
	}
	if len(cache.entries) != 1 {
		t.Errorf("cache entries = %v, want only the generation token", cache.entries)
	}
}

func TestCachedIdentityStore_PutFailsWhenGenerationCannotAdvance(t *testing.T) {
	ctx := context.Background()
	backing := &countingStore{IdentityStore: NewMemoryIdentityStore()}
	cache := newFakeCache()
	store := NewCachedIdentityStore(backing, cache, time.Minute)

	if err := store.Put(ctx, identityWith("u1", unit(1, 0))); err != nil {
		t.Fatalf("Put(u1) error = %v", err)
	}
	if _, err := store.GetAll(ctx); err != nil {
		t.Fatalf("GetAll() error = %v", err)
	}

	cache.failWrites = true
	err := store.Put(ctx, identityWith("u2", unit(0, 1)))
	if !errors.Is(err, ErrDirectoryInvalidation) {
		t.Fatalf("Put(u2) error = %v, want ErrDirectoryInvalidation", err)
	}
}

func TestCachedIdentityStore_NoGenerationBypassesCache(t *testing.T) {
	ctx := context.Background()
	backing := &countingStore{IdentityStore: NewMemoryIdentityStore()}
	cache := newFakeCache()
	cache.failWrites = true
	store := NewCachedIdentityStore(backing, cache, time.Minute)

	_ = backing.IdentityStore.Put(ctx, identityWith("u1", unit(1, 0)))
	for i := 0; i < 2; i++ {
		all, err := store.GetAll(ctx)
		if err != nil {
			t.Fatalf("GetAll() error = %v", err)
		}
		if _, ok := all["u1"]; !ok {
			t.Fatalf("GetAll() = %v, want u1", all)
		}
	}
	if backing.getAllCalls != 2 {
		t.Errorf("backing GetAll calls = %d, want 2", backing.getAllCalls)
	}
}

func TestCachedIdentityStore_SnapshotTakenBeforePutIsNotServed(t *testing.T) {
	ctx := context.Background()
	backing := &countingStore{
		IdentityStore: NewMemoryIdentityStore(),
		read:          make(chan struct{}),
		release:       make(chan struct{}),
	}
	cache := newFakeCache()
	store := NewCachedIdentityStore(backing, cache, time.Minute)
	if err := backing.IdentityStore.Put(ctx, identityWith("u1", unit(1, 0))); err != nil {
		t.Fatalf("seed error = %v", err)
	}

	done := make(chan struct{})
	go func() {
		defer close(done)
		_, _ = store.GetAll(ctx)
	}()
	<-backing.read

	if err := store.Put(ctx, identityWith("u2", unit(0, 1))); err != nil {
		t.Fatalf("Put(u2) error = %v", err)
	}
	close(backing.release)
	<-done

	backing.read = nil
	all, err := store.GetAll(ctx)
	if err != nil {
		t.Fatalf("GetAll() error = %v", err)
	}
	if _, ok := all["u2"]; !ok {
		t.Errorf("GetAll() after Put = %v, want u2 visible", all)
	}
}
