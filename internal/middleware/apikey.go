// AngelaMos | 2026
// apikey.go

package middleware

import (
	"net/http"

	"github.com/carterperez-dev/membership/internal/core"
)

const APIKeyHeader = "X-API-Key"

// RequireAPIKey guards internal routes. An empty configured key rejects
// every request rather than allowing them all.
func RequireAPIKey(key string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			provided := r.Header.Get(APIKeyHeader)
			if key == "" || provided == "" ||
				!core.ConstantTimeEqual(provided, key) {
				core.JSONError(w, core.ForbiddenError("invalid API key"))
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}
