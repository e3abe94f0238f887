package handlers_test

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strconv"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"github.com/ecomarket/ecomarket-api/internal/handlers"
	"github.com/ecomarket/ecomarket-api/internal/middleware"
	"github.com/ecomarket/ecomarket-api/internal/models"
	"github.com/ecomarket/ecomarket-api/internal/password"
	"github.com/ecomarket/ecomarket-api/internal/service"
	"github.com/ecomarket/ecomarket-api/internal/store"
	"github.com/ecomarket/ecomarket-api/internal/token"
)

type testApp struct {
	router *chi.Mux
	users  *store.MemoryUserStore
	admin  *service.AdminService
}

func newTestApp(t *testing.T) *testApp {
	t.Helper()

	users := store.NewMemoryUserStore()
	hasher := password.NewHasher(bcrypt.MinCost)
	issuer := token.NewIssuer("test-secret", time.Hour)
	logger := zap.NewNop()

	authSvc := service.NewAuthService(users, hasher, issuer, nil, logger)
	adminSvc := service.NewAdminService(users, hasher, logger)
	h := handlers.NewHandler(authSvc, adminSvc, 8, logger)

	r := chi.NewRouter()
	r.Post("/auth/signup", h.Auth.SignUp)
	r.Post("/auth/login", h.Auth.Login)

	r.Group(func(r chi.Router) {
		r.Use(middleware.Auth(issuer, users))
		r.Get("/auth/profile", h.Auth.Profile)
		r.Put("/auth/profile", h.Auth.UpdateProfile)
		r.Delete("/auth/profile", h.Auth.DeleteProfile)

		r.Group(func(r chi.Router) {
			r.Use(middleware.RequireRoles(models.RoleSeller, models.RoleAdmin))
			r.Get("/seller/overview", h.Seller.Overview)
		})

		r.Group(func(r chi.Router) {
			r.Use(middleware.RequireRoles(models.RoleAdmin))
			r.Get("/admin/users", h.Admin.ListUsers)
			r.Put("/admin/users/{id}/role", h.Admin.UpdateRole)
		})
	})

	return &testApp{router: r, users: users, admin: adminSvc}
}

func (a *testApp) do(t *testing.T, method, path, bearer string, body any) *httptest.ResponseRecorder {
	t.Helper()

	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}

	req := httptest.NewRequest(method, path, &buf)
	if bearer != "" {
		req.Header.Set("Authorization", "Bearer "+bearer)
	}

	rec := httptest.NewRecorder()
	a.router.ServeHTTP(rec, req)
	return rec
}

func decodeAuthResult(t *testing.T, rec *httptest.ResponseRecorder) (user map[string]any, tok string) {
	t.Helper()
	var payload struct {
		User  map[string]any `json:"user"`
		Token string         `json:"token"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &payload))
	return payload.User, payload.Token
}

func TestSignupLoginFlow(t *testing.T) {
	app := newTestApp(t)

	signup := map[string]string{
		"email":     "a@x.com",
		"password":  "Secret123",
		"firstName": "Ada",
		"lastName":  "Lovelace",
	}

	rec := app.do(t, http.MethodPost, "/auth/signup", "", signup)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	user, tok := decodeAuthResult(t, rec)
	assert.Equal(t, "a@x.com", user["email"])
	assert.Equal(t, "CUSTOMER", user["role"])
	assert.NotContains(t, rec.Body.String(), "Secret123")
	assert.NotContains(t, rec.Body.String(), "password_hash")
	require.NotEmpty(t, tok)

	// immediate duplicate signup
	rec = app.do(t, http.MethodPost, "/auth/signup", "", signup)
	assert.Equal(t, http.StatusConflict, rec.Code)

	// login with correct password yields a usable token
	rec = app.do(t, http.MethodPost, "/auth/login", "", map[string]string{
		"email": "a@x.com", "password": "Secret123",
	})
	require.Equal(t, http.StatusOK, rec.Code)
	_, loginTok := decodeAuthResult(t, rec)

	rec = app.do(t, http.MethodGet, "/auth/profile", loginTok, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "a@x.com")

	// wrong password
	rec = app.do(t, http.MethodPost, "/auth/login", "", map[string]string{
		"email": "a@x.com", "password": "wrong",
	})
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Contains(t, rec.Body.String(), "invalid credentials")
}

func TestSignupValidation(t *testing.T) {
	app := newTestApp(t)

	cases := map[string]map[string]string{
		"bad email":      {"email": "not-an-email", "password": "Secret123", "firstName": "A", "lastName": "B"},
		"short password": {"email": "a@x.com", "password": "short", "firstName": "A", "lastName": "B"},
		"missing names":  {"email": "a@x.com", "password": "Secret123"},
	}

	for name, body := range cases {
		t.Run(name, func(t *testing.T) {
			rec := app.do(t, http.MethodPost, "/auth/signup", "", body)
			assert.Equal(t, http.StatusBadRequest, rec.Code)
		})
	}
}

func TestProfileLifecycle(t *testing.T) {
	app := newTestApp(t)

	rec := app.do(t, http.MethodPost, "/auth/signup", "", map[string]string{
		"email": "a@x.com", "password": "Secret123", "firstName": "Ada", "lastName": "Lovelace",
	})
	require.Equal(t, http.StatusCreated, rec.Code)
	_, tok := decodeAuthResult(t, rec)

	// partial update
	rec = app.do(t, http.MethodPut, "/auth/profile", tok, map[string]string{"firstName": "Grace"})
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "Grace")

	// soft delete
	rec = app.do(t, http.MethodDelete, "/auth/profile", tok, nil)
	require.Equal(t, http.StatusNoContent, rec.Code)

	// the same token stops working immediately
	rec = app.do(t, http.MethodGet, "/auth/profile", tok, nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	// and login is refused even with the correct password
	rec = app.do(t, http.MethodPost, "/auth/login", "", map[string]string{
		"email": "a@x.com", "password": "Secret123",
	})
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestRoleGatedRoutes(t *testing.T) {
	app := newTestApp(t)
	ctx := context.Background()

	rec := app.do(t, http.MethodPost, "/auth/signup", "", map[string]string{
		"email": "customer@x.com", "password": "Secret123", "firstName": "C", "lastName": "C",
	})
	require.Equal(t, http.StatusCreated, rec.Code)
	user, customerTok := decodeAuthResult(t, rec)

	// customer hits admin route
	rec = app.do(t, http.MethodGet, "/admin/users", customerTok, nil)
	assert.Equal(t, http.StatusForbidden, rec.Code)

	// customer hits seller route
	rec = app.do(t, http.MethodGet, "/seller/overview", customerTok, nil)
	assert.Equal(t, http.StatusForbidden, rec.Code)

	// promote to SELLER via the admin service; the old token picks the
	// new role up on the next request
	userID := int64(user["id"].(float64))
	_, err := app.admin.UpdateRole(ctx, userID, models.RoleSeller)
	require.NoError(t, err)

	rec = app.do(t, http.MethodGet, "/seller/overview", customerTok, nil)
	assert.Equal(t, http.StatusOK, rec.Code)

	// seller still cannot administer users
	rec = app.do(t, http.MethodGet, "/admin/users", customerTok, nil)
	assert.Equal(t, http.StatusForbidden, rec.Code)

	// admin can
	admin, err := app.admin.CreateUser(ctx, service.CreateUserInput{
		Email: "admin@x.com", Password: "Secret123", Role: models.RoleAdmin,
	})
	require.NoError(t, err)

	rec = app.do(t, http.MethodPost, "/auth/login", "", map[string]string{
		"email": admin.Email, "password": "Secret123",
	})
	require.Equal(t, http.StatusOK, rec.Code)
	_, adminTok := decodeAuthResult(t, rec)

	rec = app.do(t, http.MethodGet, "/admin/users", adminTok, nil)
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = app.do(t, http.MethodPut, "/admin/users/"+strconv.FormatInt(userID, 10)+"/role", adminTok,
		map[string]string{"role": "CUSTOMER"})
	assert.Equal(t, http.StatusOK, rec.Code)
}
