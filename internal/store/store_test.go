package store

import (
	"context"
	"testing"
)

// openTestStore opens an in-memory catalog populated with two product
// categories. The "telephone" category has a full schema; "klima" has no
// rating column, exercising the heterogeneous-schema paths.
func openTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := Open(":memory:")
	if err != nil {
		t.Fatalf("open in-memory store: %v", err)
	}
	t.Cleanup(func() { _ = s.Close() })

	ddl := []string{
		`CREATE TABLE telephone (
			product_id TEXT PRIMARY KEY,
			name       TEXT,
			brand      TEXT,
			price      REAL,
			rating     REAL
		)`,
		`CREATE TABLE telephone_embeddings (
			id            INTEGER PRIMARY KEY AUTOINCREMENT,
			product_id    TEXT,
			product_name  TEXT,
			combined_text TEXT,
			embedding     TEXT,
			created_at    TEXT
		)`,
		`CREATE TABLE klima (
			id    TEXT PRIMARY KEY,
			name  TEXT,
			brand TEXT,
			price REAL
		)`,
		`CREATE TABLE klima_embeddings (
			id            INTEGER PRIMARY KEY AUTOINCREMENT,
			product_id    TEXT,
			product_name  TEXT,
			combined_text TEXT,
			embedding     TEXT,
			created_at    TEXT
		)`,
	}
	for _, q := range ddl {
		if _, err := s.DB().Exec(q); err != nil {
			t.Fatalf("create table: %v", err)
		}
	}

	seed := []string{
		`INSERT INTO telephone VALUES ('T1', 'Galaxy S24', 'Samsung', 1200, 4.6)`,
		`INSERT INTO telephone VALUES ('T2', 'iPhone 15', 'Apple', 1500, 4.8)`,
		`INSERT INTO telephone VALUES ('T3', 'Redmi Note', 'Xiaomi', 300, 4.1)`,
		`INSERT INTO telephone VALUES ('T4', 'Broken Listing', '', 0, 0)`,
		`INSERT INTO telephone_embeddings (product_id, product_name, combined_text, embedding, created_at)
			VALUES ('T1', 'Galaxy S24', 'Samsung Galaxy S24 telefon', '[1, 0, 0]', '2024-05-01')`,
		`INSERT INTO telephone_embeddings (product_id, product_name, combined_text, embedding, created_at)
			VALUES ('T2', 'iPhone 15', 'Apple iPhone 15 telefon', '[0, 1, 0]', '2024-05-01')`,
		`INSERT INTO telephone_embeddings (product_id, product_name, combined_text, embedding, created_at)
			VALUES ('T9', 'Orphan', 'row only present here', '[0, 0, 1]', '2024-05-02')`,
		`INSERT INTO telephone_embeddings (product_id, product_name, combined_text, embedding, created_at)
			VALUES ('T3', 'Redmi Note', 'Xiaomi Redmi Note telefon', NULL, '2024-05-01')`,
		`INSERT INTO klima VALUES ('K1', 'Inverter Klima', 'Samsung', 800)`,
		`INSERT INTO klima_embeddings (product_id, product_name, combined_text, embedding, created_at)
			VALUES ('K1', 'Inverter Klima', 'Samsung inverter klima 18000 BTU', '[0.5, 0.5, 0]', '2024-05-03')`,
	}
	for _, q := range seed {
		if _, err := s.DB().Exec(q); err != nil {
			t.Fatalf("seed: %v", err)
		}
	}
	return s
}

func Test_Store_ListEmbeddingCollections(t *testing.T) {
	t.Parallel()
	s := openTestStore(t)

	got, err := s.ListEmbeddingCollections(context.Background())
	if err != nil {
		t.Fatalf("list embedding collections: %v", err)
	}
	want := []string{"klima_embeddings", "telephone_embeddings"}
	if len(got) != len(want) {
		t.Fatalf("want %v, got %v", want, got)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("collection[%d]: want %q, got %q", i, want[i], got[i])
		}
	}
}

func Test_Store_ListBaseCollectionsExcludesEmbeddings(t *testing.T) {
	t.Parallel()
	s := openTestStore(t)

	got, err := s.ListBaseCollections(context.Background())
	if err != nil {
		t.Fatalf("list base collections: %v", err)
	}
	want := []string{"klima", "telephone"}
	if len(got) != len(want) {
		t.Fatalf("want %v, got %v", want, got)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("collection[%d]: want %q, got %q", i, want[i], got[i])
		}
	}
}

func Test_Store_CollectionExists(t *testing.T) {
	t.Parallel()
	s := openTestStore(t)
	ctx := context.Background()

	ok, err := s.CollectionExists(ctx, "telephone")
	if err != nil || !ok {
		t.Errorf("telephone should exist (ok=%v, err=%v)", ok, err)
	}
	ok, err = s.CollectionExists(ctx, "no_such_table")
	if err != nil || ok {
		t.Errorf("no_such_table should not exist (ok=%v, err=%v)", ok, err)
	}
}

func Test_Store_ColumnsInDeclarationOrder(t *testing.T) {
	t.Parallel()
	s := openTestStore(t)

	cols, err := s.Columns(context.Background(), "telephone")
	if err != nil {
		t.Fatalf("columns: %v", err)
	}
	want := []string{"product_id", "name", "brand", "price", "rating"}
	if len(cols) != len(want) {
		t.Fatalf("want %v, got %v", want, cols)
	}
	for i := range want {
		if cols[i] != want[i] {
			t.Errorf("col[%d]: want %q, got %q", i, want[i], cols[i])
		}
	}
}

func Test_Store_ScanEmbeddingsSkipsNullAndHonorsCap(t *testing.T) {
	t.Parallel()
	s := openTestStore(t)
	ctx := context.Background()

	rows, err := s.ScanEmbeddings(ctx, "telephone_embeddings", 200)
	if err != nil {
		t.Fatalf("scan: %v", err)
	}
	// T3 has a NULL embedding and must not appear.
	if len(rows) != 3 {
		t.Fatalf("want 3 rows with embeddings, got %d", len(rows))
	}
	for _, r := range rows {
		if r.ProductID == "T3" {
			t.Error("row with NULL embedding was returned")
		}
	}

	capped, err := s.ScanEmbeddings(ctx, "telephone_embeddings", 2)
	if err != nil {
		t.Fatalf("capped scan: %v", err)
	}
	if len(capped) != 2 {
		t.Errorf("want scan cap of 2 honored, got %d rows", len(capped))
	}
}

func Test_Store_LookupRow(t *testing.T) {
	t.Parallel()
	s := openTestStore(t)
	ctx := context.Background()

	cols := []string{"product_id", "name", "brand", "price", "rating"}
	row, err := s.LookupRow(ctx, "telephone", cols, "product_id", "T1")
	if err != nil {
		t.Fatalf("lookup: %v", err)
	}
	if row == nil {
		t.Fatal("want row, got nil")
	}
	if row["brand"] != "Samsung" {
		t.Errorf("want brand Samsung, got %v", row["brand"])
	}

	missing, err := s.LookupRow(ctx, "telephone", cols, "product_id", "nope")
	if err != nil {
		t.Fatalf("lookup missing: %v", err)
	}
	if missing != nil {
		t.Errorf("want nil for missing id, got %v", missing)
	}
}

func Test_Store_LookupEmbedding(t *testing.T) {
	t.Parallel()
	s := openTestStore(t)
	ctx := context.Background()

	r, err := s.LookupEmbedding(ctx, "telephone_embeddings", "T9")
	if err != nil {
		t.Fatalf("lookup embedding: %v", err)
	}
	if r == nil || r.ProductName != "Orphan" || r.CreatedAt != "2024-05-02" {
		t.Errorf("unexpected embedding row: %+v", r)
	}

	missing, err := s.LookupEmbedding(ctx, "telephone_embeddings", "nope")
	if err != nil {
		t.Fatalf("lookup missing embedding: %v", err)
	}
	if missing != nil {
		t.Errorf("want nil for missing id, got %+v", missing)
	}
}

func Test_Store_AvgPositiveExcludesNonPositive(t *testing.T) {
	t.Parallel()
	s := openTestStore(t)
	ctx := context.Background()

	avg, ok, err := s.AvgPositive(ctx, "telephone", "price")
	if err != nil {
		t.Fatalf("avg: %v", err)
	}
	if !ok {
		t.Fatal("want ok=true with positive prices present")
	}
	// (1200 + 1500 + 300) / 3 — the zero-priced row is excluded.
	if avg != 1000 {
		t.Errorf("want avg 1000, got %v", avg)
	}
}

func Test_Store_AvgPositiveNoQualifyingRows(t *testing.T) {
	t.Parallel()
	s := openTestStore(t)
	if _, err := s.DB().Exec(`CREATE TABLE empty_cat (id TEXT, price REAL)`); err != nil {
		t.Fatalf("create: %v", err)
	}

	_, ok, err := s.AvgPositive(context.Background(), "empty_cat", "price")
	if err != nil {
		t.Fatalf("avg: %v", err)
	}
	if ok {
		t.Error("want ok=false when no positive values exist")
	}
}

func Test_Store_CountContainingIsCaseInsensitiveSubstring(t *testing.T) {
	t.Parallel()
	s := openTestStore(t)
	ctx := context.Background()

	n, err := s.CountContaining(ctx, "telephone", "brand", "samsung")
	if err != nil {
		t.Fatalf("count: %v", err)
	}
	if n != 1 {
		t.Errorf("want 1 Samsung row, got %d", n)
	}

	n, err = s.CountContaining(ctx, "telephone", "brand", "SUNG")
	if err != nil {
		t.Fatalf("count substring: %v", err)
	}
	if n != 1 {
		t.Errorf("want substring match to count 1, got %d", n)
	}
}

func Test_Store_DistinctValuesExcludesEmptyAndNullMarkers(t *testing.T) {
	t.Parallel()
	s := openTestStore(t)

	brands, err := s.DistinctValues(context.Background(), "telephone", "brand")
	if err != nil {
		t.Fatalf("distinct: %v", err)
	}
	// The '' brand of T4 must be excluded.
	want := []string{"Apple", "Samsung", "Xiaomi"}
	if len(brands) != len(want) {
		t.Fatalf("want %v, got %v", want, brands)
	}
	for i := range want {
		if brands[i] != want[i] {
			t.Errorf("brand[%d]: want %q, got %q", i, want[i], brands[i])
		}
	}
}

func Test_Store_TopPositiveOrdersByRankDesc(t *testing.T) {
	t.Parallel()
	s := openTestStore(t)

	rows, err := s.TopPositive(context.Background(), "telephone",
		[]string{"name", "price"}, "price", 2)
	if err != nil {
		t.Fatalf("top positive: %v", err)
	}
	if len(rows) != 2 {
		t.Fatalf("want 2 rows, got %d", len(rows))
	}
	if rows[0]["name"] != "iPhone 15" || rows[1]["name"] != "Galaxy S24" {
		t.Errorf("unexpected order: %v then %v", rows[0]["name"], rows[1]["name"])
	}
}
