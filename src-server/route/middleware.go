package route

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/google/uuid"
)

type RequestIDCtxKeyType string

const RequestIDCtxKey RequestIDCtxKeyType = "request-id"

// WithRequestID tags the request with a fresh ID and logs method, path,
// and handling time.
func WithRequestID(next func(http.ResponseWriter, *http.Request)) func(http.ResponseWriter, *http.Request) {
	return func(w http.ResponseWriter, r *http.Request) {
		requestID := uuid.NewString()
		w.Header().Set("X-Request-Id", requestID)
		ctx := context.WithValue(r.Context(), RequestIDCtxKey, requestID)

		startTimer := time.Now()
		next(w, r.WithContext(ctx))
		slog.Debug("request handled",
			"request_id", requestID,
			"method", r.Method,
			"path", r.URL.Path,
			"duration", time.Since(startTimer))
	}
}
