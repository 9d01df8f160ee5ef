package handler

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/cletusgizo/ZapPay-Global/internal/token"
)

type contextKey string

const userIDKey contextKey = "userID"

// UserIDFromContext returns the authenticated subject set by the bearer
// middleware.
func UserIDFromContext(ctx context.Context) (string, bool) {
	userID, ok := ctx.Value(userIDKey).(string)
	return userID, ok
}

// RequireAccessToken verifies the bearer access token and injects its
// subject into the request context.
func RequireAccessToken(signer *token.Signer) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			header := r.Header.Get("Authorization")
			if header == "" || !strings.HasPrefix(header, "Bearer ") {
				respondWithError(w, http.StatusUnauthorized, errors.New("missing bearer token"), "Unauthorized")
				return
			}

			claims, err := signer.Verify(strings.TrimPrefix(header, "Bearer "), token.KindAccess)
			if err != nil {
				respondWithError(w, http.StatusUnauthorized, errors.New("invalid or expired token"), "Unauthorized")
				return
			}

			ctx := context.WithValue(r.Context(), userIDKey, claims.Subject)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
