package middleware

import (
	"context"
	"net/http"
	"strings"

	"github.com/chris/store-payments/pkg/api"
	"github.com/chris/store-payments/pkg/handlers/response"
	"github.com/chris/store-payments/pkg/logging"
	"go.uber.org/zap"
)

type userIDKey struct{}

// TokenVerifier resolves a bearer token to a user id.
type TokenVerifier interface {
	Verify(token string) (string, error)
}

// WithUserID stores the authenticated user id in the context.
func WithUserID(ctx context.Context, userID string) context.Context {
	return context.WithValue(ctx, userIDKey{}, userID)
}

// UserIDFromContext returns the authenticated user id, if any.
func UserIDFromContext(ctx context.Context) (string, bool) {
	userID, ok := ctx.Value(userIDKey{}).(string)
	return userID, ok && userID != ""
}

// Authenticate enforces a bearer token on operations marked with api.BearerAuthScopes.
func Authenticate(verifier TokenVerifier) api.MiddlewareFunc {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.Context().Value(api.BearerAuthScopes) == nil {
				next.ServeHTTP(w, r)
				return
			}

			header := r.Header.Get("Authorization")
			token, found := strings.CutPrefix(header, "Bearer ")
			if !found || strings.TrimSpace(token) == "" {
				response.Fail(w, http.StatusUnauthorized, "Access token required")
				return
			}

			userID, err := verifier.Verify(strings.TrimSpace(token))
			if err != nil {
				logging.FromContext(r.Context()).Debug("rejected bearer token", zap.Error(err))
				response.Fail(w, http.StatusUnauthorized, "Invalid or expired token")
				return
			}

			ctx := WithUserID(r.Context(), userID)
			ctx = logging.ContextWithLogger(ctx, logging.FromContext(ctx).With(zap.String("user_id", userID)))
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// RequireUser returns the authenticated user id or writes a 401.
func RequireUser(w http.ResponseWriter, r *http.Request) (string, bool) {
	userID, ok := UserIDFromContext(r.Context())
	if !ok {
		response.Fail(w, http.StatusUnauthorized, "Access token required")
	}
	return userID, ok
}
