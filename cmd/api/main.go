package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"time"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/ecomarket/ecomarket-api/internal/config"
	"github.com/ecomarket/ecomarket-api/internal/db"
	"github.com/ecomarket/ecomarket-api/internal/handlers"
	"github.com/ecomarket/ecomarket-api/internal/middleware"
	"github.com/ecomarket/ecomarket-api/internal/models"
	"github.com/ecomarket/ecomarket-api/internal/password"
	"github.com/ecomarket/ecomarket-api/internal/service"
	"github.com/ecomarket/ecomarket-api/internal/store"
	"github.com/ecomarket/ecomarket-api/internal/token"
	"github.com/ecomarket/ecomarket-api/internal/utils"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config: %v", err)
	}

	logger, err := newLogger(cfg.Environment)
	if err != nil {
		log.Fatalf("logger: %v", err)
	}
	defer func() { _ = logger.Sync() }()

	if cfg.UsingDevSecret() {
		logger.Warn("JWT_SECRET not set, using insecure development fallback")
	}

	dbConn, err := db.Connect(cfg)
	if err != nil {
		logger.Fatal("db connect", zap.Error(err))
	}
	defer dbConn.Close()

	ctx := context.Background()
	if err := db.Migrate(ctx, dbConn); err != nil {
		logger.Fatal("db migrate", zap.Error(err))
	}

	users := store.NewPostgresUserStore(dbConn)
	hasher := password.NewHasher(cfg.BcryptCost)
	issuer := token.NewIssuer(cfg.JWTSecret, cfg.TokenTTL)
	notifier := &service.LogNotifier{Logger: logger}

	authSvc := service.NewAuthService(users, hasher, issuer, notifier, logger)
	adminSvc := service.NewAdminService(users, hasher, logger)

	if err := adminSvc.EnsureAdmin(ctx, cfg.AdminEmail, cfg.AdminPassword); err != nil {
		logger.Fatal("bootstrap admin", zap.Error(err))
	}

	h := handlers.NewHandler(authSvc, adminSvc, cfg.PasswordMinLength, logger)

	authGuard := middleware.Auth(issuer, users)
	limiter := middleware.NewRateLimiter(cfg.AuthRateLimitRPM)

	r := chi.NewRouter()
	r.Use(middleware.RequestLogger(logger))

	r.Get("/healthz", func(w http.ResponseWriter, req *http.Request) {
		if err := dbConn.PingContext(req.Context()); err != nil {
			utils.JSONError(w, http.StatusServiceUnavailable, "db unreachable")
			return
		}
		utils.JSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})

	// Public
	r.Group(func(r chi.Router) {
		r.Use(limiter.Handler)
		r.Post("/auth/signup", h.Auth.SignUp)
		r.Post("/auth/login", h.Auth.Login)
	})

	// Protected
	r.Group(func(r chi.Router) {
		r.Use(authGuard)

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
			r.Post("/admin/users", h.Admin.CreateUser)
			r.Get("/admin/users/stats", h.Admin.Stats)
			r.Get("/admin/users/search", h.Admin.SearchUsers)
			r.Get("/admin/users/{id}", h.Admin.GetUser)
			r.Put("/admin/users/{id}/role", h.Admin.UpdateRole)
			r.Put("/admin/users/{id}/status", h.Admin.UpdateStatus)
		})
	})

	srv := &http.Server{
		Addr:    ":" + cfg.HTTPPort,
		Handler: r,
	}

	go func() {
		logger.Info("listening", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("listen", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt)
	<-quit
	logger.Info("shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Fatal("server forced to shutdown", zap.Error(err))
	}

	logger.Info("server exited")
}

func newLogger(env string) (*zap.Logger, error) {
	if env == config.EnvDevelopment {
		return zap.NewDevelopment()
	}
	return zap.NewProduction()
}
