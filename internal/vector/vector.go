// Package vector provides the similarity primitives used by the search
// engine: cosine similarity between dense float vectors, and normalization
// of embedding values as they come back from the storage layer (text-encoded
// JSON, native float slices, or nothing at all).
package vector

import (
	"encoding/json"
	"math"
)

// Cosine returns the cosine similarity between a and b, in [-1, 1].
// It returns 0.0 when either vector is all zeros so callers never divide by
// zero, and 0.0 when the lengths differ — a length mismatch means the stored
// vector came from a different model and is not comparable.
func Cosine(a, b []float64) float64 {
	if len(a) == 0 || len(b) == 0 || len(a) != len(b) {
		return 0.0
	}

	var dot, normA, normB float64
	for i := range a {
		dot += a[i] * b[i]
		normA += a[i] * a[i]
		normB += b[i] * b[i]
	}

	if normA == 0 || normB == 0 {
		return 0.0
	}

	return dot / (math.Sqrt(normA) * math.Sqrt(normB))
}

// ParseStored normalizes a raw embedding value read from the database into a
// flat []float64. It accepts text-encoded JSON arrays (string or []byte),
// native float slices, and []any holding numbers. Anything it cannot
// interpret yields nil, which callers treat as "skip this row" — a malformed
// stored vector must never abort a search.
func ParseStored(raw any) []float64 {
	switch v := raw.(type) {
	case nil:
		return nil

	case []float64:
		if len(v) == 0 {
			return nil
		}
		out := make([]float64, len(v))
		copy(out, v)
		return out

	case []float32:
		if len(v) == 0 {
			return nil
		}
		out := make([]float64, len(v))
		for i, f := range v {
			out[i] = float64(f)
		}
		return out

	case []any:
		return fromAnySlice(v)

	case string:
		return fromJSON([]byte(v))

	case []byte:
		return fromJSON(v)

	default:
		return nil
	}
}

// fromJSON decodes a JSON array of numbers. Returns nil for anything that is
// not a non-empty flat numeric array.
func fromJSON(data []byte) []float64 {
	var vals []float64
	if err := json.Unmarshal(data, &vals); err != nil {
		return nil
	}
	if len(vals) == 0 {
		return nil
	}
	return vals
}

// fromAnySlice converts a []any of numeric values, tolerating the numeric
// types SQL drivers hand back. A single non-numeric element invalidates the
// whole vector.
func fromAnySlice(vals []any) []float64 {
	if len(vals) == 0 {
		return nil
	}
	out := make([]float64, len(vals))
	for i, v := range vals {
		switch n := v.(type) {
		case float64:
			out[i] = n
		case float32:
			out[i] = float64(n)
		case int:
			out[i] = float64(n)
		case int64:
			out[i] = float64(n)
		case json.Number:
			f, err := n.Float64()
			if err != nil {
				return nil
			}
			out[i] = f
		default:
			return nil
		}
	}
	return out
}
