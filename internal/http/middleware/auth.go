package middleware

import (
	"context"
	"net/http"
	"strings"

	"github.com/google/uuid"

	"github.com/rfmendes/contas/internal/http/respond"
)

type ctxKey int

const userIDKey ctxKey = iota

// TokenParser validates a bearer token and returns the user it was
// issued to.
type TokenParser interface {
	ParseAccess(token string) (uuid.UUID, error)
}

// Auth rejects requests without a valid bearer token and stores the
// authenticated user id in the request context.
func Auth(tokens TokenParser) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token, ok := strings.CutPrefix(r.Header.Get("Authorization"), "Bearer ")
			if !ok || token == "" {
				respond.Error(w, http.StatusUnauthorized, "missing bearer token")
				return
			}

			userID, err := tokens.ParseAccess(token)
			if err != nil {
				respond.Error(w, http.StatusUnauthorized, "invalid or expired token")
				return
			}

			next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), userIDKey, userID)))
		})
	}
}

// UserID returns the authenticated user id placed by Auth. Zero when
// the request skipped the middleware.
func UserID(ctx context.Context) uuid.UUID {
	id, _ := ctx.Value(userIDKey).(uuid.UUID)
	return id
}
