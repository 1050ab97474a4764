package rest

import (
	"net/http"
	"strings"

	"github.com/mealmuse/recipe-discovery/services/recommender-service/internal/security"
)

// AuthMiddleware guards the internal trigger surface. Only admin tokens may
// start a batch run; issuer pinning lives in the verifier.
func AuthMiddleware(verifier security.OperatorVerifier) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			raw := strings.TrimSpace(r.Header.Get("Authorization"))
			if !strings.HasPrefix(raw, "Bearer ") {
				writeFail(w, http.StatusUnauthorized, "unauthorized", "missing bearer token")
				return
			}

			claims, err := verifier.VerifyOperatorToken(strings.TrimPrefix(raw, "Bearer "))
			if err != nil {
				writeFail(w, http.StatusUnauthorized, "unauthorized", "invalid token")
				return
			}
			if !strings.EqualFold(claims.Role, "admin") {
				writeFail(w, http.StatusForbidden, "forbidden", "admin role required")
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}
