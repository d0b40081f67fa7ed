package handler

import (
	"context"
	"log/slog"
	"net/http"
)

// RecentLister lists recently looked-up domains.
type RecentLister interface {
	List(ctx context.Context) ([]string, error)
}

// Recent returns the recent lookups. A nil lister means history is disabled.
func Recent(h RecentLister, logger *slog.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if h == nil {
			http.Error(w, `{"error":"history disabled"}`, http.StatusServiceUnavailable)
			return
		}
		domains, err := h.List(r.Context())
		if err != nil {
			logger.Error("list recent lookups failed", "error", err)
			http.Error(w, `{"error":"failed to load history"}`, http.StatusInternalServerError)
			return
		}
		if domains == nil {
			domains = []string{}
		}
		writeJSON(w, http.StatusOK, map[string][]string{"domains": domains})
	}
}

// RecentClearer empties the recent lookup list.
type RecentClearer interface {
	Clear(ctx context.Context) error
}

// ClearRecent drops the recent lookups. A nil clearer means history is disabled.
func ClearRecent(h RecentClearer, logger *slog.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if h == nil {
			http.Error(w, `{"error":"history disabled"}`, http.StatusServiceUnavailable)
			return
		}
		if err := h.Clear(r.Context()); err != nil {
			logger.Error("clear recent lookups failed", "error", err)
			http.Error(w, `{"error":"failed to clear history"}`, http.StatusInternalServerError)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}
}
