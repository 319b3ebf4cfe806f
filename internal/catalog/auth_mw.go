package catalog

import (
	"net/http"

	"ProductDesk/internal/auth"
	"ProductDesk/pkg/kit"
)

// RequireWriter rejects requests without a valid bearer token.
func RequireWriter(tokens *auth.TokenMaker) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			tok, ok := kit.BearerToken(r)
			if !ok {
				kit.WriteError(w, r, http.StatusUnauthorized, "missing token", nil)
				return
			}
			if _, err := tokens.Parse(tok); err != nil {
				kit.WriteError(w, r, http.StatusUnauthorized, "invalid token", nil)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
