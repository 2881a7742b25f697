package middleware

import (
	"context"
	"net/http"
	"strings"

	"github.com/scrollr/scrollr/internal/apperr"
	"github.com/scrollr/scrollr/internal/httpx"
	"github.com/scrollr/scrollr/internal/logging"
	"github.com/scrollr/scrollr/internal/models"
)

type contextKey string

const userKey contextKey = "user"

// ErrNoToken is the 401 for a request that reached a protected handler
// without an authenticated user.
var ErrNoToken = apperr.New(apperr.KindUnauthorized, "Not authorized, no token")

// TokenAuthenticator resolves a raw bearer token to its user. An empty
// token must yield an Unauthorized error.
type TokenAuthenticator interface {
	UserFromToken(ctx context.Context, token string) (*models.User, error)
}

// RequireAuth is middleware that validates the Authorization bearer token
// and injects the resolved user into the request context.
func RequireAuth(authn TokenAuthenticator, log logging.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			user, err := authn.UserFromToken(r.Context(), bearerToken(r))
			if err != nil {
				log.Warn(r.Context(), "auth rejected", "path", r.URL.Path, "err", err)
				httpx.WriteError(w, r, log, err)
				return
			}

			ctx := context.WithValue(r.Context(), userKey, user)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// UserFromContext returns the user stored by RequireAuth.
func UserFromContext(ctx context.Context) (*models.User, bool) {
	user, ok := ctx.Value(userKey).(*models.User)
	return user, ok && user != nil
}

// WithUser returns ctx carrying user, as RequireAuth does.
func WithUser(ctx context.Context, user *models.User) context.Context {
	return context.WithValue(ctx, userKey, user)
}

func bearerToken(r *http.Request) string {
	scheme, token, ok := strings.Cut(r.Header.Get("Authorization"), " ")
	if !ok || !strings.EqualFold(scheme, "bearer") {
		return ""
	}
	return strings.TrimSpace(token)
}
