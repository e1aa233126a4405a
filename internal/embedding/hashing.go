package embedding

import (
	"context"
	"math"
	"strings"
	"unicode"

	"github.com/cespare/xxhash/v2"
)

// DefaultDimensions is the bucket count used by Hashing when none is configured.
const DefaultDimensions = 512

// Hashing is an offline embedder based on signed feature hashing of word tokens and
// character trigrams. It has no model to download and returns the same vector for the
// same text across processes.
type Hashing struct {
	dims int
}

// NewHashing creates a hashing embedder with the given number of dimensions.
func NewHashing(dims int) *Hashing {
	if dims <= 0 {
		dims = DefaultDimensions
	}
	return &Hashing{dims: dims}
}

// Dimensions returns the vector length.
func (h *Hashing) Dimensions() int { return h.dims }

// Embed hashes text into a normalized vector. Text without word characters embeds to zero.
func (h *Hashing) Embed(_ context.Context, text string) (Vector, error) {
	v := make([]float64, h.dims)
	for _, token := range tokenize(text) {
		h.add(v, "w:"+token, 1)

		padded := []rune("#" + token + "#")
		for i := 0; i+3 <= len(padded); i++ {
			h.add(v, "t:"+string(padded[i:i+3]), 0.5)
		}
	}

	var norm float64
	for _, x := range v {
		norm += x * x
	}

	out := make(Vector, h.dims)
	if norm == 0 {
		return out, nil
	}

	norm = math.Sqrt(norm)
	for i, x := range v {
		out[i] = float32(x / norm)
	}
	return out, nil
}

// EmbedSet embeds every text in order.
func (h *Hashing) EmbedSet(ctx context.Context, texts []string) ([]Vector, error) {
	return EmbedEach(ctx, texts, h.Embed)
}

func (h *Hashing) add(v []float64, feature string, weight float64) {
	sum := xxhash.Sum64String(feature)
	idx := int(sum % uint64(h.dims))
	if sum&(1<<63) != 0 {
		weight = -weight
	}
	v[idx] += weight
}

func tokenize(text string) []string {
	return strings.FieldsFunc(strings.ToLower(text), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r) && r != '+' && r != '#'
	})
}
