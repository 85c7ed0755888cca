// Package embedder provides implementations of the engine.Encoder interface
// for converting text into dense vector embeddings. The local backend runs
// in-process with no external service; the Ollama and OpenAI backends talk
// to their respective APIs.
package embedder

import (
	"context"
	"hash/fnv"
	"math"
	"strings"
	"unicode"
)

// defaultLocalDimensions matches the output dimension the catalog's stored
// embeddings were produced with.
const defaultLocalDimensions = 384

// LocalEmbedder is a deterministic in-process encoder based on token feature
// hashing. It needs no model files or network access, which makes it the
// default backend for development and for catalogs whose embeddings were
// produced the same way. It is safe for concurrent use.
type LocalEmbedder struct {
	// dimensions is the output vector length.
	dimensions int
}

// NewLocalEmbedder constructs a LocalEmbedder with the given output
// dimension. Zero or negative means the default.
func NewLocalEmbedder(dimensions int) *LocalEmbedder {
	if dimensions <= 0 {
		dimensions = defaultLocalDimensions
	}
	return &LocalEmbedder{dimensions: dimensions}
}

// Encode hashes each token of text into a bucket of the output vector and
// L2-normalizes the result. Equal inputs always produce equal vectors. Empty
// or whitespace-only input yields a zero vector, which similarity scoring
// treats as matching nothing.
func (e *LocalEmbedder) Encode(_ context.Context, text string) ([]float64, error) {
	vec := make([]float64, e.dimensions)

	for _, token := range tokenize(text) {
		h := fnv.New32a()
		_, _ = h.Write([]byte(token))
		sum := h.Sum32()

		bucket := int(sum % uint32(e.dimensions))
		// One hash bit decides the sign so colliding tokens can cancel
		// instead of always accumulating.
		if sum&0x80000000 != 0 {
			vec[bucket] -= 1
		} else {
			vec[bucket] += 1
		}
	}

	var norm float64
	for _, v := range vec {
		norm += v * v
	}
	if norm > 0 {
		norm = math.Sqrt(norm)
		for i := range vec {
			vec[i] /= norm
		}
	}
	return vec, nil
}

// tokenize lowercases text and splits it on anything that is not a letter or
// digit.
func tokenize(text string) []string {
	return strings.FieldsFunc(strings.ToLower(text), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})
}
