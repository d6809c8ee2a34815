package entities

import (
	"errors"
	"math"
)

// minEmbeddingNorm is the norm below which an embedding is treated as degenerate.
const minEmbeddingNorm = 1e-6

var (
	ErrEmptyEmbedding      = errors.New("embedding is empty")
	ErrNonFiniteEmbedding  = errors.New("embedding contains non-finite values")
	ErrDegenerateEmbedding = errors.New("embedding norm is too close to zero")
	ErrUnnormalizedVector  = errors.New("embedding is not unit-normalized")
)

// Embedding is a single backend's L2-normalized representation of one face.
type Embedding []float32

// Norm returns the L2 norm computed in float64.
func (e Embedding) Norm() float64 {
	sum := 0.0
	for _, v := range e {
		sum += float64(v) * float64(v)
	}
	return math.Sqrt(sum)
}

// IsFinite reports whether no component is NaN or Inf.
func (e Embedding) IsFinite() bool {
	for _, v := range e {
		f := float64(v)
		if math.IsNaN(f) || math.IsInf(f, 0) {
			return false
		}
	}
	return true
}

func (e Embedding) Clone() Embedding {
	if e == nil {
		return nil
	}
	out := make(Embedding, len(e))
	copy(out, e)
	return out
}

// NormalizeEmbedding returns a unit-norm copy of raw. Degenerate or non-finite
// input is rejected rather than propagated.
func NormalizeEmbedding(raw []float32) (Embedding, error) {
	if len(raw) == 0 {
		return nil, ErrEmptyEmbedding
	}
	vec := Embedding(raw)
	if !vec.IsFinite() {
		return nil, ErrNonFiniteEmbedding
	}
	norm := vec.Norm()
	if norm < minEmbeddingNorm || math.IsInf(norm, 0) {
		return nil, ErrDegenerateEmbedding
	}
	normalized := make(Embedding, len(raw))
	for i, v := range raw {
		normalized[i] = float32(float64(v) / norm)
	}
	if !normalized.IsFinite() {
		return nil, ErrNonFiniteEmbedding
	}
	return normalized, nil
}

// ValidateEmbedding checks the storage contract: non-empty, finite, unit norm
// within [0.999, 1.001].
func ValidateEmbedding(e Embedding) error {
	if len(e) == 0 {
		return ErrEmptyEmbedding
	}
	if !e.IsFinite() {
		return ErrNonFiniteEmbedding
	}
	norm := e.Norm()
	if norm < minEmbeddingNorm {
		return ErrDegenerateEmbedding
	}
	if math.Abs(norm-1) > 1e-3 {
		return ErrUnnormalizedVector
	}
	return nil
}
