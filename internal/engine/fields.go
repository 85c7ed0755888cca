package engine

import (
	"context"
	"sync"
)

// Logical field names the engine cares about. Collections are heterogeneous:
// a logical field resolves to whichever physical column a collection actually
// has, or to nothing at all.
const (
	fieldID           = "id"
	fieldName         = "name"
	fieldPrice        = "price"
	fieldRating       = "rating"
	fieldBrand        = "brand"
	fieldSeller       = "seller"
	fieldStockStatus  = "stock_status"
	fieldAvailability = "availability"
)

// fieldCandidates lists, per logical field, the physical column names that
// can satisfy it, in preference order.
var fieldCandidates = map[string][]string{
	fieldID:           {"product_id", "id"},
	fieldName:         {"name", "product_name", "title"},
	fieldPrice:        {"price"},
	fieldRating:       {"rating"},
	fieldBrand:        {"brand"},
	fieldSeller:       {"seller_name", "seller"},
	fieldStockStatus:  {"stock_status"},
	fieldAvailability: {"availability"},
}

// fieldMap maps a logical field to the physical column that satisfies it in
// one collection. Absent fields are simply missing from the map.
type fieldMap map[string]string

// collectionSchema is the cached probe result for one collection.
type collectionSchema struct {
	// columns is the full column list in declaration order.
	columns []string
	// fields is the resolved logical-to-physical mapping.
	fields fieldMap
}

// fieldCache memoizes column probes. Collection schemas only change through
// out-of-band ingestion jobs, so a process-lifetime cache is safe.
type fieldCache struct {
	mu      sync.RWMutex
	schemas map[string]*collectionSchema
}

func newFieldCache() *fieldCache {
	return &fieldCache{schemas: make(map[string]*collectionSchema)}
}

// schemaFor returns the cached schema for a collection, probing the catalog
// on first use.
func (e *Engine) schemaFor(ctx context.Context, collection string) (*collectionSchema, error) {
	e.fields.mu.RLock()
	cached, ok := e.fields.schemas[collection]
	e.fields.mu.RUnlock()
	if ok {
		return cached, nil
	}

	columns, err := e.store.Columns(ctx, collection)
	if err != nil {
		return nil, err
	}

	present := make(map[string]bool, len(columns))
	for _, c := range columns {
		present[c] = true
	}

	fields := make(fieldMap, len(fieldCandidates))
	for logical, candidates := range fieldCandidates {
		for _, phys := range candidates {
			if present[phys] {
				fields[logical] = phys
				break
			}
		}
	}

	schema := &collectionSchema{columns: columns, fields: fields}

	e.fields.mu.Lock()
	e.fields.schemas[collection] = schema
	e.fields.mu.Unlock()

	return schema, nil
}
