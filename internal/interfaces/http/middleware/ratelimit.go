package middleware

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-chi/httprate"

	"github.com/turtacn/coverage-intelligence/pkg/errors"
)

// RateLimit allows requests per window for each client IP and answers the
// rest with 429 and the standard error body.
func RateLimit(requests int, window time.Duration) func(http.Handler) http.Handler {
	return httprate.Limit(requests, window,
		httprate.WithKeyFuncs(httprate.KeyByIP),
		httprate.WithLimitHandler(func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusTooManyRequests)
			_ = json.NewEncoder(w).Encode(map[string]string{
				"code":       string(errors.ErrCodeTooManyRequests),
				"message":    "rate limit exceeded",
				"request_id": ContextGetRequestID(r.Context()),
			})
		}),
	)
}
