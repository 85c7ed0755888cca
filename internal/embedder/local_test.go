package embedder

import (
	"context"
	"math"
	"testing"
)

func Test_LocalEmbedder_Deterministic(t *testing.T) {
	t.Parallel()

	e := NewLocalEmbedder(0)
	ctx := context.Background()

	a, err := e.Encode(ctx, "Samsung Galaxy S24 telefon")
	if err != nil {
		t.Fatalf("Encode: %v", err)
	}
	b, err := e.Encode(ctx, "Samsung Galaxy S24 telefon")
	if err != nil {
		t.Fatalf("Encode: %v", err)
	}

	if len(a) != defaultLocalDimensions {
		t.Fatalf("dimension = %d, want %d", len(a), defaultLocalDimensions)
	}
	for i := range a {
		if a[i] != b[i] {
			t.Fatalf("vectors differ at index %d: %v vs %v", i, a[i], b[i])
		}
	}
}

func Test_LocalEmbedder_Normalized(t *testing.T) {
	t.Parallel()

	e := NewLocalEmbedder(64)
	vec, err := e.Encode(context.Background(), "inverter klima 18000 btu")
	if err != nil {
		t.Fatalf("Encode: %v", err)
	}

	var norm float64
	for _, v := range vec {
		norm += v * v
	}
	if math.Abs(math.Sqrt(norm)-1.0) > 1e-9 {
		t.Errorf("vector norm = %v, want 1.0", math.Sqrt(norm))
	}
}

func Test_LocalEmbedder_EmptyInputIsZeroVector(t *testing.T) {
	t.Parallel()

	e := NewLocalEmbedder(32)
	for _, text := range []string{"", "   ", "\t\n"} {
		vec, err := e.Encode(context.Background(), text)
		if err != nil {
			t.Fatalf("Encode(%q): %v", text, err)
		}
		if len(vec) != 32 {
			t.Fatalf("dimension = %d, want 32", len(vec))
		}
		for i, v := range vec {
			if v != 0 {
				t.Fatalf("Encode(%q)[%d] = %v, want 0", text, i, v)
			}
		}
	}
}

func Test_LocalEmbedder_DistinctTextsDiffer(t *testing.T) {
	t.Parallel()

	e := NewLocalEmbedder(0)
	ctx := context.Background()

	a, _ := e.Encode(ctx, "Samsung Galaxy S24 telefon")
	b, _ := e.Encode(ctx, "Apple iPhone 15 telefon")

	identical := true
	for i := range a {
		if a[i] != b[i] {
			identical = false
			break
		}
	}
	if identical {
		t.Error("distinct texts produced identical vectors")
	}
}

func Test_LocalEmbedder_CaseAndPunctuationInsensitive(t *testing.T) {
	t.Parallel()

	e := NewLocalEmbedder(0)
	ctx := context.Background()

	a, _ := e.Encode(ctx, "Samsung, Galaxy!")
	b, _ := e.Encode(ctx, "samsung galaxy")

	for i := range a {
		if a[i] != b[i] {
			t.Fatalf("vectors differ at index %d", i)
		}
	}
}
