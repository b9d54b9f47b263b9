package middleware

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/messicms/media-service/internal/utils/jwt"
	"github.com/messicms/media-service/internal/utils/response"
)

type contextKey string

const UserIDKey contextKey = "userID"

// Authenticate resolves the request's owner from a bearer token. A
// missing or invalid token does not reject the request: uploads may be
// anonymous, and an anonymous owner is recorded as user id 0.
func Authenticate(jwtSecret string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			var userID int64

			authHeader := r.Header.Get("Authorization")
			if token, ok := strings.CutPrefix(authHeader, "Bearer "); ok && token != "" {
				if id, err := jwt.ExtractUserIDFromToken(token, jwtSecret); err == nil {
					userID = id
				}
			}

			ctx := context.WithValue(r.Context(), UserIDKey, userID)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// RequireAuth rejects requests whose owner resolved to anonymous. Used
// on destructive routes.
func RequireAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		userID, ok := GetUserIDFromContext(r.Context())
		if !ok || userID == 0 {
			response.WriteJSON(w, http.StatusUnauthorized, response.GeneralError(
				errors.New("authentication required")))
			return
		}

		next.ServeHTTP(w, r)
	})
}

// GetUserIDFromContext extracts the user ID from the request context
func GetUserIDFromContext(ctx context.Context) (int64, bool) {
	userID, ok := ctx.Value(UserIDKey).(int64)
	return userID, ok
}
