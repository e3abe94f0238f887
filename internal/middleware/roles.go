package middleware

import (
	"net/http"

	"github.com/ecomarket/ecomarket-api/internal/models"
	"github.com/ecomarket/ecomarket-api/internal/utils"
)

// RequireRoles passes the request through only when the identity resolved by
// Auth holds one of the given roles. A missing identity means the route was
// wired without Auth in front; that fails closed rather than open.
func RequireRoles(roles ...models.Role) func(http.Handler) http.Handler {
	allowed := make(map[models.Role]struct{}, len(roles))
	for _, r := range roles {
		allowed[r] = struct{}{}
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			id, ok := GetIdentity(r.Context())
			if !ok {
				utils.JSONError(w, http.StatusForbidden, "forbidden")
				return
			}

			if _, ok := allowed[id.Role]; !ok {
				utils.JSONError(w, http.StatusForbidden, "forbidden")
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}
