package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"golang.org/x/crypto/bcrypt"
)

const EnvDevelopment = "development"

// devSecret is only ever used when APP_ENV=development and no JWT_SECRET is
// set. Load refuses to fall back to it in any other environment.
const devSecret = "ecomarket-dev-only-secret"

// Config contains runtime configuration values.
type Config struct {
	Environment string
	HTTPPort    string

	DatabaseURL   string
	DBMaxOpen     int
	DBMaxIdle     int
	DBMaxLifetime time.Duration

	JWTSecret string
	TokenTTL  time.Duration

	BcryptCost        int
	PasswordMinLength int

	AuthRateLimitRPM int

	// Optional bootstrap admin created at startup if absent.
	AdminEmail    string
	AdminPassword string
}

// Load reads configuration from environment variables with sane defaults.
// A missing JWT_SECRET is fatal outside development.
func Load() (Config, error) {
	_ = godotenv.Load()

	cfg := Config{
		Environment:       getEnv("APP_ENV", EnvDevelopment),
		HTTPPort:          getEnv("PORT", "4000"),
		DatabaseURL:       os.Getenv("DATABASE_URL"),
		DBMaxOpen:         getInt("DB_MAX_OPEN", 25),
		DBMaxIdle:         getInt("DB_MAX_IDLE", 25),
		DBMaxLifetime:     getDuration("DB_MAX_LIFETIME", 5*time.Minute),
		JWTSecret:         strings.TrimSpace(os.Getenv("JWT_SECRET")),
		TokenTTL:          getDuration("TOKEN_TTL", 24*time.Hour),
		BcryptCost:        getInt("BCRYPT_COST", bcrypt.DefaultCost),
		PasswordMinLength: getInt("PASSWORD_MIN_LENGTH", 8),
		AuthRateLimitRPM:  getInt("AUTH_RATE_LIMIT_RPM", 60),
		AdminEmail:        strings.TrimSpace(os.Getenv("ADMIN_EMAIL")),
		AdminPassword:     os.Getenv("ADMIN_PASSWORD"),
	}

	if cfg.DatabaseURL == "" {
		return Config{}, fmt.Errorf("DATABASE_URL is required")
	}

	if cfg.JWTSecret == "" {
		if cfg.Environment != EnvDevelopment {
			return Config{}, fmt.Errorf("JWT_SECRET is required when APP_ENV=%s", cfg.Environment)
		}
		cfg.JWTSecret = devSecret
	}

	if cfg.BcryptCost < bcrypt.MinCost || cfg.BcryptCost > bcrypt.MaxCost {
		return Config{}, fmt.Errorf("BCRYPT_COST must be between %d and %d", bcrypt.MinCost, bcrypt.MaxCost)
	}
	if cfg.PasswordMinLength < 6 {
		return Config{}, fmt.Errorf("PASSWORD_MIN_LENGTH must be at least 6")
	}
	if cfg.TokenTTL <= 0 {
		return Config{}, fmt.Errorf("TOKEN_TTL must be positive")
	}

	return cfg, nil
}

// UsingDevSecret reports whether the insecure development fallback is active,
// so startup can warn about it.
func (c Config) UsingDevSecret() bool {
	return c.JWTSecret == devSecret
}

func getEnv(key, def string) string {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		return v
	}
	return def
}

func getInt(key string, def int) int {
	if v, ok := os.LookupEnv(key); ok {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return def
}

func getDuration(key string, def time.Duration) time.Duration {
	if v, ok := os.LookupEnv(key); ok {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
		// fallback: bare number of seconds
		if n, err := strconv.Atoi(v); err == nil {
			return time.Duration(n) * time.Second
		}
	}
	return def
}
