// Package embeddingtest provides embedding providers for tests.
package embeddingtest

import (
	"context"
	"sync"

	"github.com/spigell/job-advisor/internal/embedding"
)

// Static returns fixed vectors per text. Unknown texts embed to a zero vector of Dims
// length, which is similar to nothing.
type Static struct {
	Dims    int
	Vectors map[string]embedding.Vector
	// Err, when set, is returned by every call.
	Err error

	mu    sync.Mutex
	calls []string
}

// New creates a static provider of the given dimension.
func New(dims int, vectors map[string]embedding.Vector) *Static {
	if vectors == nil {
		vectors = map[string]embedding.Vector{}
	}
	return &Static{Dims: dims, Vectors: vectors}
}

// Set registers the vector for text.
func (s *Static) Set(text string, v embedding.Vector) *Static {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.Vectors[text] = v
	return s
}

// Embed implements embedding.Provider.
func (s *Static) Embed(_ context.Context, text string) (embedding.Vector, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.calls = append(s.calls, text)
	if s.Err != nil {
		return nil, s.Err
	}
	if v, ok := s.Vectors[text]; ok {
		return v, nil
	}
	return make(embedding.Vector, s.Dims), nil
}

// EmbedSet implements embedding.Provider.
func (s *Static) EmbedSet(ctx context.Context, texts []string) ([]embedding.Vector, error) {
	return embedding.EmbedEach(ctx, texts, s.Embed)
}

// Calls returns every text embedded so far.
func (s *Static) Calls() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]string(nil), s.calls...)
}
