package middleware

import (
	"context"
	"net/http"
	"strings"

	"github.com/ecomarket/ecomarket-api/internal/models"
	"github.com/ecomarket/ecomarket-api/internal/store"
	"github.com/ecomarket/ecomarket-api/internal/token"
	"github.com/ecomarket/ecomarket-api/internal/utils"
)

// Identity is what the auth guard resolves for downstream handlers. Role is
// read from the store at request time, not from the token, so role changes
// and deactivation apply immediately to already-issued tokens.
type Identity struct {
	ID    int64
	Email string
	Role  models.Role
}

type ctxKey string

const identityKey ctxKey = "identity"

// GetIdentity returns the identity resolved by Auth, if any.
func GetIdentity(ctx context.Context) (Identity, bool) {
	id, ok := ctx.Value(identityKey).(Identity)
	return id, ok
}

// WithIdentity is exposed for handler tests that bypass the middleware.
func WithIdentity(ctx context.Context, id Identity) context.Context {
	return context.WithValue(ctx, identityKey, id)
}

// Auth validates the bearer token on protected routes and attaches the
// resolved identity to the request context.
func Auth(issuer *token.Issuer, users store.UserStore) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			raw, ok := bearerToken(r)
			if !ok {
				utils.JSONError(w, http.StatusUnauthorized, "missing bearer token")
				return
			}

			claims, err := issuer.Verify(raw)
			if err != nil {
				utils.JSONError(w, http.StatusUnauthorized, "invalid token")
				return
			}

			user, err := users.GetByID(r.Context(), claims.SubjectID())
			if err != nil || !user.IsActive {
				utils.JSONError(w, http.StatusUnauthorized, "invalid token")
				return
			}

			ctx := WithIdentity(r.Context(), Identity{
				ID:    user.ID,
				Email: user.Email,
				Role:  user.Role,
			})

			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func bearerToken(r *http.Request) (string, bool) {
	auth := r.Header.Get("Authorization")
	if auth == "" {
		return "", false
	}

	parts := strings.SplitN(auth, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return "", false
	}

	tok := strings.TrimSpace(parts[1])
	return tok, tok != ""
}
