package middleware

import (
	"context"
	"log/slog"
	"net/http"
	"strings"
)

// VisitRecorder adds one visit to today's statistics.
type VisitRecorder interface {
	RecordVisit(ctx context.Context) error
}

// untracked paths are infrastructure, not pages a visitor opens.
var untracked = []string{"/static/", "/metrics", "/healthz"}

// CountVisits records a visit before the request is routed. A failed
// update is logged and the request carries on.
func CountVisits(rec VisitRecorder, logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if tracked(r.URL.Path) {
				if err := rec.RecordVisit(r.Context()); err != nil {
					logger.Error("recording visit",
						slog.String("path", r.URL.Path),
						slog.String("error", err.Error()),
					)
				}
			}
			next.ServeHTTP(w, r)
		})
	}
}

func tracked(path string) bool {
	for _, prefix := range untracked {
		if strings.HasPrefix(path, prefix) {
			return false
		}
	}
	return true
}
