package server

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/twiced-technology-gmbh/taskrank/internal/ctxlog"
)

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(code int) {
	r.status = code
	r.ResponseWriter.WriteHeader(code)
}

// logRequests attaches logger to each request context and logs the outcome.
func logRequests(logger *slog.Logger, next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		reqLogger := logger.With("method", r.Method, "path", r.URL.Path)
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}

		next.ServeHTTP(rec, r.WithContext(ctxlog.WithLogger(r.Context(), reqLogger)))

		level := slog.LevelInfo
		if rec.status >= http.StatusInternalServerError {
			level = slog.LevelError
		}
		reqLogger.Log(r.Context(), level, "Handled request.",
			"status", rec.status,
			"duration", time.Since(start),
		)
	})
}
