package repository

import (
	"context"
	"errors"
	"math"
	"testing"

	"facevote.io/entities"
)

func unit(values ...float32) entities.Embedding {
	e, err := entities.NormalizeEmbedding(values)
	if err != nil {
		panic(err)
	}
	return e
}

func TestMemoryIdentityStore_Put(t *testing.T) {
	ctx := context.Background()

	tests := []struct {
		name     string
		identity *entities.Identity
		wantErr  bool
	}{
		{"nil identity", nil, true},
		{"missing id", &entities.Identity{Name: "a", Embeddings: map[entities.Backend]entities.Embedding{entities.BackendFaceNet: unit(1, 0)}}, true},
		{"no embeddings", &entities.Identity{ID: "u1", Name: "a"}, true},
		{"unknown backend", &entities.Identity{ID: "u1", Embeddings: map[entities.Backend]entities.Embedding{"dlib2": unit(1, 0)}}, true},
		{"non unit embedding", &entities.Identity{ID: "u1", Embeddings: map[entities.Backend]entities.Embedding{entities.BackendFaceNet: {3, 4}}}, true},
		{"valid", &entities.Identity{ID: "u1", Name: "a", Embeddings: map[entities.Backend]entities.Embedding{entities.BackendFaceNet: unit(1, 0)}}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store := NewMemoryIdentityStore()
			err := store.Put(ctx, tt.identity)
			if (err != nil) != tt.wantErr {
				t.Fatalf("Put() error = %v, wantErr %v", err, tt.wantErr)
			}
			all, _ := store.GetAll(ctx)
			if tt.wantErr && len(all) != 0 {
				t.Errorf("failed Put left %d identities", len(all))
			}
		})
	}
}

func TestMemoryIdentityStore_PutMergesPerBackend(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryIdentityStore()

	first := &entities.Identity{ID: "u1", Name: "Ada", Embeddings: map[entities.Backend]entities.Embedding{
		entities.BackendInsightFace: unit(1, 0),
		entities.BackendFaceNet:     unit(0, 1),
	}}
	if err := store.Put(ctx, first); err != nil {
		t.Fatalf("Put() error = %v", err)
	}

	second := &entities.Identity{ID: "u1", Name: "Ada L", Embeddings: map[entities.Backend]entities.Embedding{
		entities.BackendFaceNet: unit(1, 1),
	}}
	if err := store.Put(ctx, second); err != nil {
		t.Fatalf("Put() error = %v", err)
	}

	all, _ := store.GetAll(ctx)
	if got := all["u1"].Name; got != "Ada L" {
		t.Errorf("name = %q, want %q", got, "Ada L")
	}

	kept, _ := store.GetEmbedding(ctx, "u1", entities.BackendInsightFace)
	if len(kept) != 2 || kept[0] != 1 {
		t.Errorf("insightface embedding = %v, want kept from first enrollment", kept)
	}
	replaced, _ := store.GetEmbedding(ctx, "u1", entities.BackendFaceNet)
	if len(replaced) != 2 || replaced[0] != replaced[1] {
		t.Errorf("facenet embedding = %v, want replaced", replaced)
	}
	if all["u1"].CreatedAt.After(all["u1"].UpdatedAt) {
		t.Errorf("createdAt after updatedAt")
	}
}

func TestMemoryIdentityStore_GetEmbedding(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryIdentityStore()
	_ = store.Put(ctx, &entities.Identity{ID: "u1", Embeddings: map[entities.Backend]entities.Embedding{
		entities.BackendInsightFace: unit(1, 0),
	}})

	tests := []struct {
		name    string
		id      string
		backend entities.Backend
		wantNil bool
	}{
		{"present", "u1", entities.BackendInsightFace, false},
		{"missing backend", "u1", entities.BackendFaceRecognition, true},
		{"missing identity", "u2", entities.BackendInsightFace, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := store.GetEmbedding(ctx, tt.id, tt.backend)
			if err != nil {
				t.Fatalf("GetEmbedding() error = %v", err)
			}
			if (got == nil) != tt.wantNil {
				t.Errorf("GetEmbedding() = %v, wantNil %v", got, tt.wantNil)
			}
		})
	}
}

func TestMemoryIdentityStore_ReturnsCopies(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryIdentityStore()
	input := unit(1, 0)
	_ = store.Put(ctx, &entities.Identity{ID: "u1", Embeddings: map[entities.Backend]entities.Embedding{
		entities.BackendInsightFace: input,
	}})

	input[0] = 42
	got, _ := store.GetEmbedding(ctx, "u1", entities.BackendInsightFace)
	got[1] = 42

	again, _ := store.GetEmbedding(ctx, "u1", entities.BackendInsightFace)
	if again[0] != 1 || again[1] != 0 {
		t.Errorf("stored embedding mutated through caller slices: %v", again)
	}
}

func TestValidateIdentityRejectsNonFinite(t *testing.T) {
	nan := float32(math.NaN())
	err := validateIdentity(&entities.Identity{ID: "u1", Embeddings: map[entities.Backend]entities.Embedding{
		entities.BackendInsightFace: {nan, 1},
	}})
	if err == nil {
		t.Fatal("validateIdentity() accepted a non-finite embedding")
	}
	if errors.Is(err, ErrInvalidIdentity) {
		t.Errorf("error = %v, want embedding validation error", err)
	}
}
