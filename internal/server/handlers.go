package server

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"github.com/furkancmc/prodrisk/internal/engine"
	"github.com/furkancmc/prodrisk/internal/logging"
)

// defaultSearchLimit is the result cap applied when a search request does
// not specify one.
const defaultSearchLimit = 10

// handleSearch handles POST /api/search. Every response carries enriched
// results: each candidate's resolved details and risk analysis are attached
// whether or not filter predicates were supplied.
func (s *Server) handleSearch(w http.ResponseWriter, r *http.Request) {
	log := logging.FromContext(r.Context())

	var req searchRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.Query == "" {
		writeError(w, http.StatusBadRequest, "query is required")
		return
	}
	if req.Limit <= 0 {
		req.Limit = defaultSearchLimit
	}

	filters := &engine.Filters{
		PriceMin:  req.PriceMin,
		PriceMax:  req.PriceMax,
		RatingMin: req.RatingMin,
		Brands:    req.Brands,
	}

	s.metrics.searchActive.Inc()
	start := time.Now()

	results, err := s.risk.SearchWithFilters(r.Context(), req.Query, req.Collections, filters, req.Limit)

	elapsed := time.Since(start)
	s.metrics.searchActive.Dec()

	if err != nil {
		s.metrics.searchRequestsTotal.WithLabelValues("error").Inc()
		s.metrics.searchDurationSeconds.WithLabelValues("error").Observe(elapsed.Seconds())
		log.Error("search failed", slog.String("query", req.Query), slog.Any("error", err))
		writeError(w, http.StatusInternalServerError, "search failed")
		return
	}

	s.metrics.searchRequestsTotal.WithLabelValues("ok").Inc()
	s.metrics.searchDurationSeconds.WithLabelValues("ok").Observe(elapsed.Seconds())

	if results == nil {
		results = []engine.SearchResult{}
	}
	writeJSON(w, http.StatusOK, searchResponse{
		Query:   req.Query,
		Count:   len(results),
		Results: results,
	})
}

// handleProductDetails handles GET /api/products/{id}. The owning category
// is passed as the "collection" query parameter.
func (s *Server) handleProductDetails(w http.ResponseWriter, r *http.Request) {
	log := logging.FromContext(r.Context())

	productID := r.PathValue("id")
	collection := r.URL.Query().Get("collection")
	if collection == "" {
		writeError(w, http.StatusBadRequest, "collection query parameter is required")
		return
	}

	details, err := s.risk.GetProductDetails(r.Context(), productID, collection)
	if err != nil {
		log.Error("details lookup failed",
			slog.String("product_id", productID),
			slog.String("collection", collection),
			slog.Any("error", err),
		)
		writeError(w, http.StatusInternalServerError, "details lookup failed")
		return
	}
	if details == nil {
		writeError(w, http.StatusNotFound, "product not found")
		return
	}

	writeJSON(w, http.StatusOK, details)
}

// handleStats handles GET /api/stats.
func (s *Server) handleStats(w http.ResponseWriter, r *http.Request) {
	log := logging.FromContext(r.Context())

	stats, err := s.risk.CollectionStats(r.Context())
	if err != nil {
		log.Error("stats aggregation failed", slog.Any("error", err))
		writeError(w, http.StatusInternalServerError, "stats aggregation failed")
		return
	}

	writeJSON(w, http.StatusOK, stats)
}

// handleBrands handles GET /api/brands.
func (s *Server) handleBrands(w http.ResponseWriter, r *http.Request) {
	log := logging.FromContext(r.Context())

	brands, err := s.risk.ListBrands(r.Context())
	if err != nil {
		log.Error("brand listing failed", slog.Any("error", err))
		writeError(w, http.StatusInternalServerError, "brand listing failed")
		return
	}
	if brands == nil {
		brands = []string{}
	}

	writeJSON(w, http.StatusOK, brandsResponse{Brands: brands})
}

// handleSales handles GET /api/sales, the dashboard feed.
func (s *Server) handleSales(w http.ResponseWriter, r *http.Request) {
	log := logging.FromContext(r.Context())

	sales, err := s.risk.SalesData(r.Context())
	if err != nil {
		log.Error("sales feed failed", slog.Any("error", err))
		writeError(w, http.StatusInternalServerError, "sales feed failed")
		return
	}
	if sales == nil {
		sales = []engine.SalesEntry{}
	}

	writeJSON(w, http.StatusOK, salesResponse{Sales: sales, Count: len(sales)})
}

// handleHealth handles GET /api/health for liveness checks.
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// writeJSON encodes v as the JSON response body with the given status.
func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// writeError writes a JSON error body with the given status.
func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, errorResponse{Error: msg})
}
