package api

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"sort"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/reviewlens/reviewlens/internal/catalog"
	"github.com/reviewlens/reviewlens/internal/pipeline"
)

const maxAutocompleteResults = 5

// Searcher runs the review pipeline for a query.
type Searcher interface {
	Search(ctx context.Context, query string) pipeline.Result
}

// SimilarFinder returns bucketed catalog neighbors for a product.
type SimilarFinder interface {
	Similar(ctx context.Context, name string) catalog.Buckets
}

// QueryIndex lists previously searched queries for autocomplete.
type QueryIndex interface {
	SearchQueries() ([]string, error)
}

// Deps holds the collaborators of the HTTP layer. An empty Token
// disables authentication.
type Deps struct {
	Searcher Searcher
	Finder   SimilarFinder
	Queries  QueryIndex
	Catalog  catalog.SnapshotLoader
	Token    string
}

// SearchResponse is the combined payload for one search: the consensus
// result plus the query product's catalog neighbors.
type SearchResponse struct {
	pipeline.Result
	SimilarProducts catalog.Buckets `json:"similar_products"`
}

// NewHandler builds the HTTP API.
func NewHandler(deps Deps) http.Handler {
	r := chi.NewRouter()

	r.Get("/health", handleHealth)

	r.Group(func(r chi.Router) {
		if deps.Token != "" {
			r.Use(BearerAuth(deps.Token))
		}
		r.Get("/search/{query}", handleSearch(deps))
		r.Get("/similar_products/{name}", handleSimilarProducts(deps))
		r.Get("/autocomplete", handleAutocomplete(deps))
		r.Get("/categories", handleCategories(deps))
		r.Get("/brands", handleBrands(deps))
	})

	return r
}

func handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, map[string]string{"status": "ok"})
}

func handleSearch(deps Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		query := pathParam(r, "query")
		if query == "" {
			httpError(w, http.StatusBadRequest, "invalid_request_error", "search query cannot be empty")
			return
		}

		result := deps.Searcher.Search(r.Context(), query)

		similar := catalog.EmptyBuckets()
		if deps.Finder != nil {
			similar = deps.Finder.Similar(r.Context(), query)
		}

		writeJSON(w, SearchResponse{Result: result, SimilarProducts: similar})
	}
}

func handleSimilarProducts(deps Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		name := pathParam(r, "name")
		if name == "" {
			httpError(w, http.StatusBadRequest, "invalid_request_error", "product name cannot be empty")
			return
		}

		buckets := deps.Finder.Similar(r.Context(), name)
		writeJSON(w, map[string]catalog.Buckets{"similar_products": buckets})
	}
}

func handleAutocomplete(deps Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		query := strings.TrimSpace(strings.ToLower(r.URL.Query().Get("query")))
		if query == "" {
			httpError(w, http.StatusBadRequest, "invalid_request_error", "query parameter is required")
			return
		}

		known, err := deps.Queries.SearchQueries()
		if err != nil {
			httpError(w, http.StatusInternalServerError, "api_error", "failed to list queries: %v", err)
			return
		}

		matches := []string{}
		for _, q := range known {
			if strings.Contains(strings.ToLower(strings.TrimSpace(q)), query) {
				matches = append(matches, q)
			}
		}
		// Shortest suggestions first; ties keep store order.
		sort.SliceStable(matches, func(i, j int) bool {
			return len(matches[i]) < len(matches[j])
		})
		if len(matches) > maxAutocompleteResults {
			matches = matches[:maxAutocompleteResults]
		}

		writeJSON(w, matches)
	}
}

func handleCategories(deps Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		snap, err := deps.Catalog.LoadSnapshot()
		if err != nil {
			httpError(w, http.StatusInternalServerError, "api_error", "failed to load catalog: %v", err)
			return
		}
		writeJSON(w, snap.Categories())
	}
}

func handleBrands(deps Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		snap, err := deps.Catalog.LoadSnapshot()
		if err != nil {
			httpError(w, http.StatusInternalServerError, "api_error", "failed to load catalog: %v", err)
			return
		}
		writeJSON(w, snap.Brands())
	}
}

// pathParam returns a trimmed, URL-decoded chi path parameter.
func pathParam(r *http.Request, key string) string {
	raw := chi.URLParam(r, key)
	if decoded, err := url.PathUnescape(raw); err == nil {
		raw = decoded
	}
	return strings.TrimSpace(raw)
}

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(v)
}

func httpError(w http.ResponseWriter, code int, errType string, format string, args ...any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	msg := fmt.Sprintf(format, args...)
	json.NewEncoder(w).Encode(map[string]any{
		"error": map[string]any{
			"message": msg,
			"type":    errType,
		},
	})
}
