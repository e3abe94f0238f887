package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/ecomarket/ecomarket-api/internal/models"
	"github.com/ecomarket/ecomarket-api/internal/password"
	"github.com/ecomarket/ecomarket-api/internal/store"
)

// UserPage is one page of an admin user listing.
type UserPage struct {
	Users []models.User `json:"users"`
	Total int64         `json:"total"`
	Page  int           `json:"page"`
	Limit int           `json:"limit"`
}

type CreateUserInput struct {
	Email     string
	Password  string
	FirstName string
	LastName  string
	Role      models.Role
}

// AdminService covers the user-management operations behind the ADMIN role.
type AdminService struct {
	store  store.UserStore
	hasher *password.Hasher
	logger *zap.Logger
}

func NewAdminService(s store.UserStore, h *password.Hasher, logger *zap.Logger) *AdminService {
	return &AdminService{store: s, hasher: h, logger: logger}
}

func (s *AdminService) ListUsers(ctx context.Context, f store.ListFilter) (*UserPage, error) {
	if f.Role != "" && !f.Role.IsValid() {
		return nil, ErrInvalidRole
	}
	if f.Page < 1 {
		f.Page = 1
	}
	if f.Limit < 1 {
		f.Limit = 10
	}

	users, total, err := s.store.List(ctx, f)
	if err != nil {
		return nil, fmt.Errorf("list users: %w", err)
	}

	return &UserPage{Users: users, Total: total, Page: f.Page, Limit: f.Limit}, nil
}

func (s *AdminService) GetUser(ctx context.Context, id int64) (*models.User, error) {
	user, err := s.store.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("load user: %w", err)
	}
	return user, nil
}

func (s *AdminService) SearchUsers(ctx context.Context, query string) ([]models.User, error) {
	users, err := s.store.Search(ctx, strings.TrimSpace(query))
	if err != nil {
		return nil, fmt.Errorf("search users: %w", err)
	}
	return users, nil
}

// UpdateRole assigns a new role. Assigning the current role is rejected so
// accidental double-submits surface to the operator.
func (s *AdminService) UpdateRole(ctx context.Context, id int64, role models.Role) (*models.User, error) {
	if !role.IsValid() {
		return nil, ErrInvalidRole
	}

	user, err := s.GetUser(ctx, id)
	if err != nil {
		return nil, err
	}
	if user.Role == role {
		return nil, ErrNoChange
	}

	user.Role = role
	user, err = s.store.Update(ctx, user)
	if err != nil {
		return nil, fmt.Errorf("update role: %w", err)
	}

	s.logger.Info("user role updated",
		zap.Int64("user_id", user.ID), zap.String("role", role.String()))
	return user, nil
}

// UpdateStatus activates or deactivates an account.
func (s *AdminService) UpdateStatus(ctx context.Context, id int64, active bool) (*models.User, error) {
	user, err := s.GetUser(ctx, id)
	if err != nil {
		return nil, err
	}
	if user.IsActive == active {
		return nil, ErrNoChange
	}

	if err := s.store.SetActive(ctx, id, active); err != nil {
		return nil, fmt.Errorf("update status: %w", err)
	}
	user.IsActive = active

	s.logger.Info("user status updated",
		zap.Int64("user_id", user.ID), zap.Bool("is_active", active))
	return user, nil
}

// CreateUser registers a user with an explicit role, e.g. another admin.
func (s *AdminService) CreateUser(ctx context.Context, in CreateUserInput) (*models.User, error) {
	if !in.Role.IsValid() {
		return nil, ErrInvalidRole
	}

	hash, err := s.hasher.Hash(in.Password)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	user := &models.User{
		Email:        strings.TrimSpace(in.Email),
		PasswordHash: hash,
		FirstName:    strings.TrimSpace(in.FirstName),
		LastName:     strings.TrimSpace(in.LastName),
		Role:         in.Role,
	}

	user, err = s.store.Create(ctx, user)
	if err != nil {
		if errors.Is(err, store.ErrDuplicateEmail) {
			return nil, ErrEmailTaken
		}
		return nil, fmt.Errorf("create user: %w", err)
	}

	return user, nil
}

func (s *AdminService) Stats(ctx context.Context) (models.UserStats, error) {
	stats, err := s.store.Stats(ctx)
	if err != nil {
		return models.UserStats{}, fmt.Errorf("user stats: %w", err)
	}
	return stats, nil
}

// EnsureAdmin creates the bootstrap admin account on first start. A clash on
// email means it already exists, which is fine.
func (s *AdminService) EnsureAdmin(ctx context.Context, email, pass string) error {
	if email == "" || pass == "" {
		return nil
	}

	_, err := s.CreateUser(ctx, CreateUserInput{
		Email:    email,
		Password: pass,
		Role:     models.RoleAdmin,
	})
	if errors.Is(err, ErrEmailTaken) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("bootstrap admin: %w", err)
	}

	s.logger.Info("bootstrap admin created", zap.String("email", email))
	return nil
}
