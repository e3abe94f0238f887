package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/ecomarket/ecomarket-api/internal/models"
	"github.com/ecomarket/ecomarket-api/internal/password"
	"github.com/ecomarket/ecomarket-api/internal/store"
	"github.com/ecomarket/ecomarket-api/internal/token"
)

// AuthResult pairs the sanitized user record with a freshly issued token.
type AuthResult struct {
	User  *models.User `json:"user"`
	Token string       `json:"token"`
}

type SignupInput struct {
	Email     string
	Password  string
	FirstName string
	LastName  string
}

// UpdateProfileInput carries a partial profile update; nil fields are
// left untouched.
type UpdateProfileInput struct {
	Email     *string
	Password  *string
	FirstName *string
	LastName  *string
}

// AuthService orchestrates signup, login and profile management over the
// credential store, the hasher and the token issuer.
type AuthService struct {
	store    store.UserStore
	hasher   *password.Hasher
	issuer   *token.Issuer
	notifier Notifier
	logger   *zap.Logger
}

func NewAuthService(s store.UserStore, h *password.Hasher, i *token.Issuer, n Notifier, logger *zap.Logger) *AuthService {
	return &AuthService{store: s, hasher: h, issuer: i, notifier: n, logger: logger}
}

// Signup registers a new user with the default role and returns it together
// with a bearer token. Duplicate emails fail with ErrEmailTaken even under
// concurrent signups: the pre-check is advisory, the unique index decides.
func (s *AuthService) Signup(ctx context.Context, in SignupInput) (*AuthResult, error) {
	email := strings.TrimSpace(in.Email)

	if _, err := s.store.GetByEmail(ctx, email); err == nil {
		return nil, ErrEmailTaken
	} else if !errors.Is(err, store.ErrNotFound) {
		return nil, fmt.Errorf("check existing user: %w", err)
	}

	hash, err := s.hasher.Hash(in.Password)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	user := &models.User{
		Email:        email,
		PasswordHash: hash,
		FirstName:    strings.TrimSpace(in.FirstName),
		LastName:     strings.TrimSpace(in.LastName),
		Role:         models.DefaultRole,
	}

	user, err = s.store.Create(ctx, user)
	if err != nil {
		if errors.Is(err, store.ErrDuplicateEmail) {
			return nil, ErrEmailTaken
		}
		return nil, fmt.Errorf("create user: %w", err)
	}

	tok, err := s.issuer.Sign(user.ID, user.Email)
	if err != nil {
		return nil, fmt.Errorf("issue token: %w", err)
	}

	s.dispatchWelcome(user)

	return &AuthResult{User: user, Token: tok}, nil
}

// Login verifies credentials and issues a fresh token. Unknown email, wrong
// password and deactivated accounts are indistinguishable to the caller.
func (s *AuthService) Login(ctx context.Context, email, pass string) (*AuthResult, error) {
	user, err := s.store.GetByEmail(ctx, strings.TrimSpace(email))
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, fmt.Errorf("load user: %w", err)
	}

	if !user.IsActive {
		return nil, ErrInvalidCredentials
	}

	if !s.hasher.Verify(user.PasswordHash, pass) {
		return nil, ErrInvalidCredentials
	}

	tok, err := s.issuer.Sign(user.ID, user.Email)
	if err != nil {
		return nil, fmt.Errorf("issue token: %w", err)
	}

	if err := s.store.TouchLastLogin(ctx, user.ID); err != nil {
		s.logger.Warn("record last login", zap.Int64("user_id", user.ID), zap.Error(err))
	}

	return &AuthResult{User: user, Token: tok}, nil
}

// Profile returns the user record for an authenticated subject.
func (s *AuthService) Profile(ctx context.Context, userID int64) (*models.User, error) {
	user, err := s.store.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("load user: %w", err)
	}
	return user, nil
}

// UpdateProfile applies a partial update. An email change re-checks
// uniqueness; a password change re-hashes.
func (s *AuthService) UpdateProfile(ctx context.Context, userID int64, in UpdateProfileInput) (*models.User, error) {
	user, err := s.Profile(ctx, userID)
	if err != nil {
		return nil, err
	}

	if in.Email != nil {
		user.Email = strings.TrimSpace(*in.Email)
	}
	if in.FirstName != nil {
		user.FirstName = strings.TrimSpace(*in.FirstName)
	}
	if in.LastName != nil {
		user.LastName = strings.TrimSpace(*in.LastName)
	}
	if in.Password != nil {
		hash, err := s.hasher.Hash(*in.Password)
		if err != nil {
			return nil, fmt.Errorf("hash password: %w", err)
		}
		user.PasswordHash = hash
	}

	user, err = s.store.Update(ctx, user)
	if err != nil {
		switch {
		case errors.Is(err, store.ErrDuplicateEmail):
			return nil, ErrEmailTaken
		case errors.Is(err, store.ErrNotFound):
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("update user: %w", err)
	}

	return user, nil
}

// DeactivateProfile soft-deletes the account. Idempotent.
func (s *AuthService) DeactivateProfile(ctx context.Context, userID int64) error {
	if err := s.store.SetActive(ctx, userID, false); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return ErrUserNotFound
		}
		return fmt.Errorf("deactivate user: %w", err)
	}
	return nil
}

// dispatchWelcome fires the signup notification without blocking the caller
// and without retries. At most one attempt; errors are only logged.
func (s *AuthService) dispatchWelcome(user *models.User) {
	if s.notifier == nil {
		return
	}
	go func() {
		defer func() {
			if r := recover(); r != nil {
				s.logger.Error("welcome notification panicked", zap.Any("panic", r))
			}
		}()

		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()

		if err := s.notifier.SendWelcome(ctx, user); err != nil {
			s.logger.Warn("welcome notification failed",
				zap.Int64("user_id", user.ID), zap.Error(err))
		}
	}()
}
