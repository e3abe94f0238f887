package middleware

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ecomarket/ecomarket-api/internal/models"
	"github.com/ecomarket/ecomarket-api/internal/store"
	"github.com/ecomarket/ecomarket-api/internal/token"
)

func seedActiveUser(t *testing.T, users *store.MemoryUserStore, email string, role models.Role) *models.User {
	t.Helper()
	u, err := users.Create(context.Background(), &models.User{
		Email: email, PasswordHash: "h", Role: role,
	})
	require.NoError(t, err)
	return u
}

func authTestServer(issuer *token.Issuer, users store.UserStore) http.Handler {
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if id, ok := GetIdentity(r.Context()); ok {
			w.Header().Set("X-Identity-Email", id.Email)
			w.Header().Set("X-Identity-Role", id.Role.String())
		}
		w.WriteHeader(http.StatusOK)
	})
	return Auth(issuer, users)(next)
}

func TestAuthRejectsMissingOrMalformedHeader(t *testing.T) {
	users := store.NewMemoryUserStore()
	issuer := token.NewIssuer("test-secret", time.Hour)
	h := authTestServer(issuer, users)

	cases := map[string]string{
		"missing":       "",
		"not bearer":    "Basic abc",
		"empty token":   "Bearer ",
		"garbage token": "Bearer not.a.jwt",
	}

	for name, header := range cases {
		t.Run(name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/auth/profile", nil)
			if header != "" {
				req.Header.Set("Authorization", header)
			}
			rec := httptest.NewRecorder()
			h.ServeHTTP(rec, req)
			assert.Equal(t, http.StatusUnauthorized, rec.Code)
		})
	}
}

func TestAuthAttachesIdentity(t *testing.T) {
	users := store.NewMemoryUserStore()
	issuer := token.NewIssuer("test-secret", time.Hour)
	u := seedActiveUser(t, users, "a@x.com", models.RoleCustomer)

	tok, err := issuer.Sign(u.ID, u.Email)
	require.NoError(t, err)

	h := authTestServer(issuer, users)
	req := httptest.NewRequest(http.MethodGet, "/auth/profile", nil)
	req.Header.Set("Authorization", "Bearer "+tok)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "a@x.com", rec.Header().Get("X-Identity-Email"))
	assert.Equal(t, "CUSTOMER", rec.Header().Get("X-Identity-Role"))
}

func TestAuthRejectsDeactivatedUser(t *testing.T) {
	users := store.NewMemoryUserStore()
	issuer := token.NewIssuer("test-secret", time.Hour)
	u := seedActiveUser(t, users, "a@x.com", models.RoleCustomer)

	tok, err := issuer.Sign(u.ID, u.Email)
	require.NoError(t, err)

	// token stays signature-valid, but the live lookup sees the flag
	require.NoError(t, users.SetActive(context.Background(), u.ID, false))

	h := authTestServer(issuer, users)
	req := httptest.NewRequest(http.MethodGet, "/auth/profile", nil)
	req.Header.Set("Authorization", "Bearer "+tok)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestAuthSeesRoleChangesImmediately(t *testing.T) {
	users := store.NewMemoryUserStore()
	issuer := token.NewIssuer("test-secret", time.Hour)
	u := seedActiveUser(t, users, "a@x.com", models.RoleCustomer)

	tok, err := issuer.Sign(u.ID, u.Email)
	require.NoError(t, err)

	u.Role = models.RoleSeller
	_, err = users.Update(context.Background(), u)
	require.NoError(t, err)

	h := authTestServer(issuer, users)
	req := httptest.NewRequest(http.MethodGet, "/auth/profile", nil)
	req.Header.Set("Authorization", "Bearer "+tok)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "SELLER", rec.Header().Get("X-Identity-Role"))
}

func TestAuthRejectsExpiredToken(t *testing.T) {
	users := store.NewMemoryUserStore()
	expired := token.NewIssuer("test-secret", -time.Minute)
	u := seedActiveUser(t, users, "a@x.com", models.RoleCustomer)

	tok, err := expired.Sign(u.ID, u.Email)
	require.NoError(t, err)

	h := authTestServer(token.NewIssuer("test-secret", time.Hour), users)
	req := httptest.NewRequest(http.MethodGet, "/auth/profile", nil)
	req.Header.Set("Authorization", "Bearer "+tok)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}
