package recognition

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"time"

	"facevote.io/application/repository"
	"facevote.io/entities"
	"facevote.io/infrastructure/biometric/types"
)

var (
	e1 = entities.Embedding{1, 0, 0, 0}
	e2 = entities.Embedding{0, 1, 0, 0}
	e3 = entities.Embedding{0, 0, 1, 0}
)

var testImage = []byte("jpeg bytes")

type fakeFrame struct {
	closed atomic.Int32
}

func (f *fakeFrame) Width() int  { return 640 }
func (f *fakeFrame) Height() int { return 480 }
func (f *fakeFrame) Close() error {
	f.closed.Add(1)
	return nil
}

type fakeDecoder struct {
	mutex  sync.Mutex
	err    error
	frames []*fakeFrame
}

func (d *fakeDecoder) Decode(data []byte) (types.Frame, error) {
	if d.err != nil {
		return nil, d.err
	}
	frame := &fakeFrame{}
	d.mutex.Lock()
	d.frames = append(d.frames, frame)
	d.mutex.Unlock()
	return frame, nil
}

func (d *fakeDecoder) lastFrame() *fakeFrame {
	d.mutex.Lock()
	defer d.mutex.Unlock()
	return d.frames[len(d.frames)-1]
}

// fakeEncoder returns embedding, or abstains when embedding is nil.
type fakeEncoder struct {
	backend   entities.Backend
	dim       int
	embedding entities.Embedding
	err       error
	panics    bool
	// release, when set, blocks the call until closed, ignoring ctx.
	release chan struct{}
	calls   atomic.Int32
}

func (f *fakeEncoder) Backend() entities.Backend { return f.backend }
func (f *fakeEncoder) Dimension() int            { return f.dim }

func (f *fakeEncoder) DetectAndEncode(ctx context.Context, frame types.Frame) (*types.Detection, error) {
	f.calls.Add(1)
	if f.release != nil {
		<-f.release
	}
	if f.panics {
		panic("model exploded")
	}
	if f.err != nil {
		return nil, f.err
	}
	if f.embedding == nil {
		return nil, nil
	}
	return &types.Detection{Embedding: f.embedding.Clone(), Confidence: 0.99}, nil
}

func encoder(backend entities.Backend, embedding entities.Embedding) *fakeEncoder {
	return &fakeEncoder{backend: backend, dim: 4, embedding: embedding}
}

// encoders builds the three backends in registry order; nil abstains.
func encoders(insight, dlib, facenet entities.Embedding) []types.FaceEncoder {
	return []types.FaceEncoder{
		encoder(entities.BackendInsightFace, insight),
		encoder(entities.BackendFaceRecognition, dlib),
		encoder(entities.BackendFaceNet, facenet),
	}
}

type failingStore struct {
	repository.IdentityStore
	failPut          bool
	failGetAll       bool
	failGetEmbedding bool
}

var errStoreDown = errors.New("connection refused")

func (s *failingStore) Put(ctx context.Context, identity *entities.Identity) error {
	if s.failPut {
		return errStoreDown
	}
	return s.IdentityStore.Put(ctx, identity)
}

func (s *failingStore) GetAll(ctx context.Context) (map[string]entities.IdentityProfile, error) {
	if s.failGetAll {
		return nil, errStoreDown
	}
	return s.IdentityStore.GetAll(ctx)
}

func (s *failingStore) GetEmbedding(ctx context.Context, id string, backend entities.Backend) (entities.Embedding, error) {
	if s.failGetEmbedding {
		return nil, errStoreDown
	}
	return s.IdentityStore.GetEmbedding(ctx, id, backend)
}

type recordingAuditor struct {
	mutex  sync.Mutex
	audits []entities.RecognitionAudit
}

func (a *recordingAuditor) Record(_ context.Context, audit entities.RecognitionAudit) {
	a.mutex.Lock()
	defer a.mutex.Unlock()
	a.audits = append(a.audits, audit)
}

func (a *recordingAuditor) last() entities.RecognitionAudit {
	a.mutex.Lock()
	defer a.mutex.Unlock()
	return a.audits[len(a.audits)-1]
}

// seededStore holds u1 enrolled with e1 and u2 with e2 on every backend.
func seededStore() *repository.MemoryIdentityStore {
	store := repository.NewMemoryIdentityStore()
	ctx := context.Background()
	for _, seed := range []struct {
		id, name  string
		embedding entities.Embedding
	}{{"u1", "Ada", e1}, {"u2", "Bob", e2}} {
		embeddings := map[entities.Backend]entities.Embedding{}
		for _, b := range entities.Backends {
			embeddings[b] = seed.embedding
		}
		if err := store.Put(ctx, &entities.Identity{ID: seed.id, Name: seed.name, Embeddings: embeddings}); err != nil {
			panic(err)
		}
	}
	return store
}

func newTestEngine(encs []types.FaceEncoder, store repository.IdentityStore) (*Engine, *fakeDecoder, *recordingAuditor) {
	decoder := &fakeDecoder{}
	auditor := &recordingAuditor{}
	engine := NewEngine(decoder, encs, store, Options{BackendTimeout: time.Second, Auditor: auditor})
	return engine, decoder, auditor
}
