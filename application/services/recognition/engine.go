package recognition

import (
	"context"
	"time"

	"facevote.io/application/repository"
	"facevote.io/entities"
	"facevote.io/infrastructure/biometric/types"
)

const DefaultBackendTimeout = 20 * time.Second

// Auditor receives a summary of every enroll and verify call.
type Auditor interface {
	Record(ctx context.Context, audit entities.RecognitionAudit)
}

// Engine enrolls identities and verifies probes by majority vote across the
// configured face encoders.
type Engine struct {
	decoder        types.ImageDecoder
	encoders       []types.FaceEncoder
	store          repository.IdentityStore
	auditor        Auditor
	backendTimeout time.Duration
	locks          *KeyedMutex
}

type Options struct {
	// BackendTimeout bounds each encoder call. Zero means DefaultBackendTimeout.
	BackendTimeout time.Duration
	Auditor        Auditor
}

func NewEngine(decoder types.ImageDecoder, encoders []types.FaceEncoder, store repository.IdentityStore, opts Options) *Engine {
	timeout := opts.BackendTimeout
	if timeout <= 0 {
		timeout = DefaultBackendTimeout
	}
	return &Engine{
		decoder:        decoder,
		encoders:       encoders,
		store:          store,
		auditor:        opts.Auditor,
		backendTimeout: timeout,
		locks:          NewKeyedMutex(),
	}
}

// Backends lists the configured backends in run order.
func (e *Engine) Backends() []entities.Backend {
	backends := make([]entities.Backend, len(e.encoders))
	for i, enc := range e.encoders {
		backends[i] = enc.Backend()
	}
	return backends
}

type requestIDKey struct{}

// WithRequestID tags ctx so audit records can be correlated with requests.
func WithRequestID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, requestIDKey{}, id)
}

// RequestID returns the id set by WithRequestID, or "".
func RequestID(ctx context.Context) string {
	id, _ := ctx.Value(requestIDKey{}).(string)
	return id
}

func (e *Engine) audit(ctx context.Context, audit entities.RecognitionAudit) {
	if e.auditor == nil {
		return
	}
	audit.RequestID = RequestID(ctx)
	audit.Timestamp = time.Now()
	e.auditor.Record(context.WithoutCancel(ctx), audit)
}
