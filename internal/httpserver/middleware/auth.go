package middleware

import (
	"crypto/subtle"
	"encoding/json"
	"net/http"
	"strings"

	"github.com/davidbz/janus/internal/config"
	"github.com/davidbz/janus/internal/schema"
)

// Auth creates a middleware that validates the inbound service key. Clients
// present the key as a Bearer token, the same slot their completions SDK
// uses for the provider key. An empty configured key disables the check.
// The health endpoint is always open.
func Auth(cfg *config.AuthConfig) Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if cfg == nil || cfg.ServiceKey == "" || r.URL.Path == "/health" {
				next.ServeHTTP(w, r)
				return
			}

			token, ok := strings.CutPrefix(r.Header.Get("Authorization"), "Bearer ")
			if !ok || subtle.ConstantTimeCompare([]byte(strings.TrimSpace(token)), []byte(cfg.ServiceKey)) != 1 {
				w.Header().Set("Content-Type", "application/json")
				w.WriteHeader(http.StatusUnauthorized)
				_ = json.NewEncoder(w).Encode(schema.ErrorResponse{Error: schema.ErrorEnvelope{
					Type:    "invalid_request",
					Code:    "invalid_api_key",
					Message: "the provided API key does not match SERVICE_API_KEY",
				}})
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}
