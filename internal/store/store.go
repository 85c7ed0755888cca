// Package store provides the SQLite-backed product catalog used by the
// search engine. Product rows live in per-category tables with heterogeneous
// schemas; each searchable category has a sibling "<name>_embeddings" table
// holding one embedding row per product. The store only reads — ingestion
// jobs own all writes.
//
// The store issues exactly four query shapes: catalog introspection, bounded
// row scans with an explicit projection, point lookups by identifier, and
// simple aggregates. Table and column names are interpolated only after they
// have been observed in the catalog; identifiers that originate from a
// request are validated by the caller against the catalog first, and row
// identifiers are always bound as parameters.
package store

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	_ "modernc.org/sqlite" // register "sqlite" driver
)

// EmbeddingSuffix is the naming convention marking a table as the embedding
// sub-collection of the base table whose name precedes the suffix.
const EmbeddingSuffix = "_embeddings"

// EmbeddingRow is one row of an embedding sub-collection.
type EmbeddingRow struct {
	// ProductID identifies the product row in the base collection.
	ProductID string
	// ProductName is the denormalized product name captured at embed time.
	ProductName string
	// CombinedText is the text the embedding was computed from.
	CombinedText string
	// Raw is the embedding column value as the driver returned it. It may be
	// a JSON string, a byte slice, or nil; vector.ParseStored normalizes it.
	Raw any
	// CreatedAt is the embed timestamp as stored (text or unix seconds).
	CreatedAt string
}

// Store is a read-only view over the product catalog database.
type Store struct {
	// db is the underlying database connection pool.
	db *sql.DB
}

// DefaultDBPath returns the default catalog database path,
// ~/.prodrisk/products.db, creating the directory if needed.
func DefaultDBPath() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("store: could not determine home directory: %w", err)
	}
	dir := filepath.Join(home, ".prodrisk")
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return "", fmt.Errorf("store: could not create %s: %w", dir, err)
	}
	return filepath.Join(dir, "products.db"), nil
}

// Open opens the catalog database at the given path. Use ":memory:" for an
// in-memory database in tests.
func Open(path string) (*Store, error) {
	// WAL mode keeps concurrent readers from blocking each other while an
	// ingestion job writes.
	dsn := path + "?_journal_mode=WAL&_busy_timeout=5000"
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("store: open %s: %w", path, err)
	}
	return &Store{db: db}, nil
}

// Ping verifies the database is reachable.
func (s *Store) Ping(ctx context.Context) error {
	if err := s.db.PingContext(ctx); err != nil {
		return fmt.Errorf("store: ping: %w", err)
	}
	return nil
}

// Close releases the database connection pool.
func (s *Store) Close() error {
	if err := s.db.Close(); err != nil {
		return fmt.Errorf("store: close: %w", err)
	}
	return nil
}

// DB exposes the underlying pool for test fixtures that need to create and
// populate tables. Production code never writes through it.
func (s *Store) DB() *sql.DB { return s.db }

// ListEmbeddingCollections returns the names of all embedding sub-collection
// tables, ordered by name.
func (s *Store) ListEmbeddingCollections(ctx context.Context) ([]string, error) {
	const q = `
SELECT name FROM sqlite_master
WHERE  type = 'table'
AND    name NOT LIKE 'sqlite_%'
AND    name LIKE '%' || ?
ORDER  BY name`
	return s.queryNames(ctx, q, EmbeddingSuffix)
}

// ListBaseCollections returns the names of all base product tables, ordered
// by name. System tables and embedding sub-collections are excluded.
func (s *Store) ListBaseCollections(ctx context.Context) ([]string, error) {
	const q = `
SELECT name FROM sqlite_master
WHERE  type = 'table'
AND    name NOT LIKE 'sqlite_%'
AND    name NOT LIKE '%' || ?
ORDER  BY name`
	return s.queryNames(ctx, q, EmbeddingSuffix)
}

// CollectionExists reports whether a table with the given name exists.
func (s *Store) CollectionExists(ctx context.Context, name string) (bool, error) {
	const q = `SELECT COUNT(*) FROM sqlite_master WHERE type = 'table' AND name = ?`
	var n int
	if err := s.db.QueryRowContext(ctx, q, name).Scan(&n); err != nil {
		return false, fmt.Errorf("store: collection exists %q: %w", name, err)
	}
	return n > 0, nil
}

// Columns returns the column names of the given collection in declaration
// order. The collection name must come from the catalog.
func (s *Store) Columns(ctx context.Context, collection string) ([]string, error) {
	// PRAGMA arguments cannot be bound as parameters.
	q := fmt.Sprintf(`PRAGMA table_info(%s)`, quoteIdent(collection))
	rows, err := s.db.QueryContext(ctx, q)
	if err != nil {
		return nil, fmt.Errorf("store: columns of %q: %w", collection, err)
	}
	defer rows.Close()

	var cols []string
	for rows.Next() {
		var (
			cid     int
			name    string
			typ     string
			notNull int
			dflt    any
			pk      int
		)
		if err := rows.Scan(&cid, &name, &typ, &notNull, &dflt, &pk); err != nil {
			return nil, fmt.Errorf("store: columns scan for %q: %w", collection, err)
		}
		cols = append(cols, name)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("store: columns rows for %q: %w", collection, err)
	}
	return cols, nil
}

// ScanEmbeddings returns up to max rows of the given embedding sub-collection
// that carry a non-null embedding. The cap bounds the table scan so one huge
// collection cannot dominate search latency.
func (s *Store) ScanEmbeddings(ctx context.Context, collection string, max int) ([]EmbeddingRow, error) {
	q := fmt.Sprintf(`
SELECT product_id, product_name, combined_text, embedding
FROM   %s
WHERE  embedding IS NOT NULL
LIMIT  ?`, quoteIdent(collection))

	rows, err := s.db.QueryContext(ctx, q, max)
	if err != nil {
		return nil, fmt.Errorf("store: scan embeddings %q: %w", collection, err)
	}
	defer rows.Close()

	var out []EmbeddingRow
	for rows.Next() {
		var r EmbeddingRow
		var id, name, combined any
		if err := rows.Scan(&id, &name, &combined, &r.Raw); err != nil {
			return nil, fmt.Errorf("store: scan embeddings row in %q: %w", collection, err)
		}
		r.ProductID = stringify(id)
		r.ProductName = stringify(name)
		r.CombinedText = stringify(combined)
		out = append(out, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("store: scan embeddings rows %q: %w", collection, err)
	}
	return out, nil
}

// LookupRow fetches the single row of collection whose idColumn equals id,
// projected over the given columns. Returns nil when no row matches.
func (s *Store) LookupRow(ctx context.Context, collection string, columns []string, idColumn, id string) (map[string]any, error) {
	quoted := make([]string, len(columns))
	for i, c := range columns {
		quoted[i] = quoteIdent(c)
	}
	q := fmt.Sprintf(`SELECT %s FROM %s WHERE %s = ?`,
		strings.Join(quoted, ", "), quoteIdent(collection), quoteIdent(idColumn))

	vals := make([]any, len(columns))
	ptrs := make([]any, len(columns))
	for i := range vals {
		ptrs[i] = &vals[i]
	}

	err := s.db.QueryRowContext(ctx, q, id).Scan(ptrs...)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("store: lookup %q in %q: %w", id, collection, err)
	}

	row := make(map[string]any, len(columns))
	for i, c := range columns {
		row[c] = vals[i]
	}
	return row, nil
}

// LookupEmbedding fetches the embedding row for the given product id from an
// embedding sub-collection. Returns nil when no row matches.
func (s *Store) LookupEmbedding(ctx context.Context, collection, productID string) (*EmbeddingRow, error) {
	q := fmt.Sprintf(`
SELECT product_id, product_name, combined_text, created_at
FROM   %s
WHERE  product_id = ?`, quoteIdent(collection))

	var id, name, combined, created any
	err := s.db.QueryRowContext(ctx, q, productID).Scan(&id, &name, &combined, &created)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("store: lookup embedding %q in %q: %w", productID, collection, err)
	}

	return &EmbeddingRow{
		ProductID:    stringify(id),
		ProductName:  stringify(name),
		CombinedText: stringify(combined),
		CreatedAt:    stringify(created),
	}, nil
}

// CountRows returns the total row count of a collection.
func (s *Store) CountRows(ctx context.Context, collection string) (int, error) {
	q := fmt.Sprintf(`SELECT COUNT(*) FROM %s`, quoteIdent(collection))
	var n int
	if err := s.db.QueryRowContext(ctx, q).Scan(&n); err != nil {
		return 0, fmt.Errorf("store: count %q: %w", collection, err)
	}
	return n, nil
}

// AvgPositive returns the average of the given numeric column over rows where
// it is strictly positive. ok is false when no row qualifies.
func (s *Store) AvgPositive(ctx context.Context, collection, column string) (avg float64, ok bool, err error) {
	q := fmt.Sprintf(`SELECT AVG(%[1]s) FROM %[2]s WHERE %[1]s > 0`,
		quoteIdent(column), quoteIdent(collection))
	var v sql.NullFloat64
	if err := s.db.QueryRowContext(ctx, q).Scan(&v); err != nil {
		return 0, false, fmt.Errorf("store: avg %s of %q: %w", column, collection, err)
	}
	return v.Float64, v.Valid, nil
}

// CountContaining returns the number of rows whose column value contains
// needle, compared case-insensitively. Used for brand saturation counts.
func (s *Store) CountContaining(ctx context.Context, collection, column, needle string) (int, error) {
	q := fmt.Sprintf(`SELECT COUNT(*) FROM %s WHERE lower(%s) LIKE '%%' || lower(?) || '%%'`,
		quoteIdent(collection), quoteIdent(column))
	var n int
	if err := s.db.QueryRowContext(ctx, q, needle).Scan(&n); err != nil {
		return 0, fmt.Errorf("store: count %s containing %q in %q: %w", column, needle, collection, err)
	}
	return n, nil
}

// DistinctValues returns the distinct non-empty values of the given column,
// ordered ascending. Literal "null" strings left behind by sloppy imports are
// excluded along with NULL and empty values.
func (s *Store) DistinctValues(ctx context.Context, collection, column string) ([]string, error) {
	q := fmt.Sprintf(`
SELECT DISTINCT %[1]s FROM %[2]s
WHERE  %[1]s IS NOT NULL
AND    %[1]s != ''
AND    lower(%[1]s) != 'null'
ORDER  BY %[1]s`, quoteIdent(column), quoteIdent(collection))

	rows, err := s.db.QueryContext(ctx, q)
	if err != nil {
		return nil, fmt.Errorf("store: distinct %s of %q: %w", column, collection, err)
	}
	defer rows.Close()

	var out []string
	for rows.Next() {
		var v any
		if err := rows.Scan(&v); err != nil {
			return nil, fmt.Errorf("store: distinct scan %q: %w", collection, err)
		}
		out = append(out, stringify(v))
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("store: distinct rows %q: %w", collection, err)
	}
	return out, nil
}

// TopPositive returns up to n rows projected over columns, restricted to rows
// where rankColumn is strictly positive and ordered by it descending.
func (s *Store) TopPositive(ctx context.Context, collection string, columns []string, rankColumn string, n int) ([]map[string]any, error) {
	quoted := make([]string, len(columns))
	for i, c := range columns {
		quoted[i] = quoteIdent(c)
	}
	q := fmt.Sprintf(`
SELECT %[1]s FROM %[2]s
WHERE  %[3]s IS NOT NULL AND %[3]s > 0
ORDER  BY %[3]s DESC
LIMIT  ?`, strings.Join(quoted, ", "), quoteIdent(collection), quoteIdent(rankColumn))

	rows, err := s.db.QueryContext(ctx, q, n)
	if err != nil {
		return nil, fmt.Errorf("store: top rows of %q: %w", collection, err)
	}
	defer rows.Close()

	var out []map[string]any
	for rows.Next() {
		vals := make([]any, len(columns))
		ptrs := make([]any, len(columns))
		for i := range vals {
			ptrs[i] = &vals[i]
		}
		if err := rows.Scan(ptrs...); err != nil {
			return nil, fmt.Errorf("store: top rows scan %q: %w", collection, err)
		}
		row := make(map[string]any, len(columns))
		for i, c := range columns {
			row[c] = vals[i]
		}
		out = append(out, row)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("store: top rows %q: %w", collection, err)
	}
	return out, nil
}

// queryNames runs a single-column name query and collects the results.
func (s *Store) queryNames(ctx context.Context, q string, args ...any) ([]string, error) {
	rows, err := s.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, fmt.Errorf("store: catalog query: %w", err)
	}
	defer rows.Close()

	var names []string
	for rows.Next() {
		var n string
		if err := rows.Scan(&n); err != nil {
			return nil, fmt.Errorf("store: catalog scan: %w", err)
		}
		names = append(names, n)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("store: catalog rows: %w", err)
	}
	return names, nil
}

// quoteIdent wraps an identifier in double quotes, doubling any embedded
// quote. Identifiers reach this function only after catalog validation; the
// quoting is the final guard against a hostile name breaking out of its
// position in the statement.
func quoteIdent(name string) string {
	return `"` + strings.ReplaceAll(name, `"`, `""`) + `"`
}

// stringify renders a driver value as a string without the quoting fmt
// applies to byte slices. Numeric ids keep their shortest decimal form.
func stringify(v any) string {
	switch t := v.(type) {
	case nil:
		return ""
	case string:
		return t
	case []byte:
		return string(t)
	case int64:
		return strconv.FormatInt(t, 10)
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64)
	default:
		return fmt.Sprintf("%v", t)
	}
}
