// Package embedding turns text into vectors and compares them.
package embedding

import (
	"context"
	"errors"
	"fmt"
	"math"
)

// ErrDimensionMismatch is returned when two vectors of different length are compared.
var ErrDimensionMismatch = errors.New("embedding dimensions do not match")

// Vector is a dense text embedding.
type Vector []float32

// Provider produces embeddings for text. Implementations must be deterministic for a fixed
// model and safe for concurrent use.
type Provider interface {
	// Embed returns the embedding of a single text.
	Embed(ctx context.Context, text string) (Vector, error)
	// EmbedSet returns one embedding per input text, in input order.
	EmbedSet(ctx context.Context, texts []string) ([]Vector, error)
}

// Similarity returns the cosine similarity of a and b in [-1, 1].
// Zero-norm or mismatched vectors yield 0.
func Similarity(a, b Vector) float64 {
	sim, err := SimilarityChecked(a, b)
	if err != nil {
		return 0
	}
	return sim
}

// SimilarityChecked is Similarity that reports mismatched dimensions.
func SimilarityChecked(a, b Vector) (float64, error) {
	if len(a) != len(b) {
		return 0, fmt.Errorf("%w: %d != %d", ErrDimensionMismatch, len(a), len(b))
	}

	var dot, na, nb float64
	for i := range a {
		x, y := float64(a[i]), float64(b[i])
		dot += x * y
		na += x * x
		nb += y * y
	}

	if na == 0 || nb == 0 {
		return 0, nil
	}

	sim := dot / (math.Sqrt(na) * math.Sqrt(nb))
	return math.Max(-1, math.Min(1, sim)), nil
}

// Matrix returns the pairwise similarity of every row vector against every column vector.
func Matrix(rows, cols []Vector) ([][]float64, error) {
	out := make([][]float64, len(rows))
	for i, r := range rows {
		out[i] = make([]float64, len(cols))
		for j, c := range cols {
			sim, err := SimilarityChecked(r, c)
			if err != nil {
				return nil, err
			}
			out[i][j] = sim
		}
	}
	return out, nil
}

// EmbedEach implements EmbedSet on top of a single-text embed function.
func EmbedEach(ctx context.Context, texts []string, embed func(context.Context, string) (Vector, error)) ([]Vector, error) {
	out := make([]Vector, len(texts))
	for i, text := range texts {
		v, err := embed(ctx, text)
		if err != nil {
			return nil, err
		}
		out[i] = v
	}
	return out, nil
}
