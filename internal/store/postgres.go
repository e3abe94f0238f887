package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jmoiron/sqlx"

	"github.com/ecomarket/ecomarket-api/internal/models"
)

const uniqueViolation = "23505"

const userColumns = `id, email, password_hash, first_name, last_name, role, is_active, last_login_at, created_at, updated_at`

type PostgresUserStore struct {
	db *sqlx.DB
}

func NewPostgresUserStore(db *sqlx.DB) *PostgresUserStore {
	return &PostgresUserStore{db: db}
}

func (s *PostgresUserStore) Create(ctx context.Context, u *models.User) (*models.User, error) {
	query := `
		INSERT INTO users (email, password_hash, first_name, last_name, role)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id, is_active, created_at, updated_at
	`

	err := s.db.QueryRowxContext(ctx, query,
		u.Email, u.PasswordHash, u.FirstName, u.LastName, u.Role).
		Scan(&u.ID, &u.IsActive, &u.CreatedAt, &u.UpdatedAt)

	if err != nil {
		if isUniqueViolation(err) {
			return nil, ErrDuplicateEmail
		}
		return nil, fmt.Errorf("store: create user: %w", err)
	}

	return u, nil
}

func (s *PostgresUserStore) GetByID(ctx context.Context, id int64) (*models.User, error) {
	var u models.User
	err := s.db.GetContext(ctx, &u,
		`SELECT `+userColumns+` FROM users WHERE id=$1`, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("store: get user by id: %w", err)
	}
	return &u, nil
}

func (s *PostgresUserStore) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	var u models.User
	err := s.db.GetContext(ctx, &u,
		`SELECT `+userColumns+` FROM users WHERE email=$1`, email)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("store: get user by email: %w", err)
	}
	return &u, nil
}

func (s *PostgresUserStore) Update(ctx context.Context, u *models.User) (*models.User, error) {
	query := `
		UPDATE users
		SET email=$1, password_hash=$2, first_name=$3, last_name=$4,
		    role=$5, is_active=$6, updated_at=now()
		WHERE id=$7
		RETURNING updated_at
	`

	err := s.db.QueryRowxContext(ctx, query,
		u.Email, u.PasswordHash, u.FirstName, u.LastName,
		u.Role, u.IsActive, u.ID).
		Scan(&u.UpdatedAt)

	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		if isUniqueViolation(err) {
			return nil, ErrDuplicateEmail
		}
		return nil, fmt.Errorf("store: update user: %w", err)
	}

	return u, nil
}

func (s *PostgresUserStore) SetActive(ctx context.Context, id int64, active bool) error {
	res, err := s.db.ExecContext(ctx,
		`UPDATE users SET is_active=$1, updated_at=now() WHERE id=$2`, active, id)
	if err != nil {
		return fmt.Errorf("store: set active: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("store: set active: %w", err)
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *PostgresUserStore) TouchLastLogin(ctx context.Context, id int64) error {
	_, err := s.db.ExecContext(ctx,
		`UPDATE users SET last_login_at=now() WHERE id=$1`, id)
	if err != nil {
		return fmt.Errorf("store: touch last login: %w", err)
	}
	return nil
}

func (s *PostgresUserStore) List(ctx context.Context, f ListFilter) ([]models.User, int64, error) {
	if f.Page < 1 {
		f.Page = 1
	}
	if f.Limit < 1 || f.Limit > 100 {
		f.Limit = 10
	}
	offset := (f.Page - 1) * f.Limit

	where := ""
	args := []any{}
	if f.Role != "" {
		where = " WHERE role=$1"
		args = append(args, f.Role)
	}

	var total int64
	if err := s.db.GetContext(ctx, &total, `SELECT count(*) FROM users`+where, args...); err != nil {
		return nil, 0, fmt.Errorf("store: count users: %w", err)
	}

	query := fmt.Sprintf(`SELECT %s FROM users%s ORDER BY created_at DESC LIMIT $%d OFFSET $%d`,
		userColumns, where, len(args)+1, len(args)+2)
	args = append(args, f.Limit, offset)

	users := []models.User{}
	if err := s.db.SelectContext(ctx, &users, query, args...); err != nil {
		return nil, 0, fmt.Errorf("store: list users: %w", err)
	}

	return users, total, nil
}

func (s *PostgresUserStore) Search(ctx context.Context, query string) ([]models.User, error) {
	pattern := "%" + query + "%"
	users := []models.User{}
	err := s.db.SelectContext(ctx, &users, `
		SELECT `+userColumns+` FROM users
		WHERE email ILIKE $1 OR first_name ILIKE $1 OR last_name ILIKE $1
		ORDER BY created_at DESC
		LIMIT 50
	`, pattern)
	if err != nil {
		return nil, fmt.Errorf("store: search users: %w", err)
	}
	return users, nil
}

func (s *PostgresUserStore) Stats(ctx context.Context) (models.UserStats, error) {
	stats := models.UserStats{RoleCounts: map[models.Role]int64{}}

	if err := s.db.GetContext(ctx, &stats.TotalUsers, `SELECT count(*) FROM users`); err != nil {
		return models.UserStats{}, fmt.Errorf("store: count users: %w", err)
	}
	if err := s.db.GetContext(ctx, &stats.ActiveUsers, `SELECT count(*) FROM users WHERE is_active`); err != nil {
		return models.UserStats{}, fmt.Errorf("store: count active users: %w", err)
	}
	stats.InactiveUsers = stats.TotalUsers - stats.ActiveUsers

	rows, err := s.db.QueryxContext(ctx, `SELECT role, count(*) FROM users GROUP BY role`)
	if err != nil {
		return models.UserStats{}, fmt.Errorf("store: count users by role: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var role models.Role
		var n int64
		if err := rows.Scan(&role, &n); err != nil {
			return models.UserStats{}, fmt.Errorf("store: scan role count: %w", err)
		}
		stats.RoleCounts[role] = n
	}
	if err := rows.Err(); err != nil {
		return models.UserStats{}, fmt.Errorf("store: iterate role counts: %w", err)
	}

	return stats, nil
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == uniqueViolation
}
