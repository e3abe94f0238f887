package store

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/ecomarket/ecomarket-api/internal/models"
)

// MemoryUserStore is an in-memory UserStore. It enforces the same email
// uniqueness the Postgres schema does, so service-level behaviour matches.
// Used by tests; not suitable for production.
type MemoryUserStore struct {
	mu     sync.Mutex
	nextID int64
	users  map[int64]models.User
}

func NewMemoryUserStore() *MemoryUserStore {
	return &MemoryUserStore{nextID: 1, users: make(map[int64]models.User)}
}

func (s *MemoryUserStore) Create(ctx context.Context, u *models.User) (*models.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, existing := range s.users {
		if existing.Email == u.Email {
			return nil, ErrDuplicateEmail
		}
	}

	now := time.Now()
	rec := *u
	rec.ID = s.nextID
	rec.IsActive = true
	rec.CreatedAt = now
	rec.UpdatedAt = now
	s.nextID++
	s.users[rec.ID] = rec

	out := rec
	return &out, nil
}

func (s *MemoryUserStore) GetByID(ctx context.Context, id int64) (*models.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	u, ok := s.users[id]
	if !ok {
		return nil, ErrNotFound
	}
	out := u
	return &out, nil
}

func (s *MemoryUserStore) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, u := range s.users {
		if u.Email == email {
			out := u
			return &out, nil
		}
	}
	return nil, ErrNotFound
}

func (s *MemoryUserStore) Update(ctx context.Context, u *models.User) (*models.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	existing, ok := s.users[u.ID]
	if !ok {
		return nil, ErrNotFound
	}

	for id, other := range s.users {
		if id != u.ID && other.Email == u.Email {
			return nil, ErrDuplicateEmail
		}
	}

	rec := *u
	rec.CreatedAt = existing.CreatedAt
	rec.UpdatedAt = time.Now()
	s.users[rec.ID] = rec

	out := rec
	return &out, nil
}

func (s *MemoryUserStore) SetActive(ctx context.Context, id int64, active bool) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	u, ok := s.users[id]
	if !ok {
		return ErrNotFound
	}
	u.IsActive = active
	u.UpdatedAt = time.Now()
	s.users[id] = u
	return nil
}

func (s *MemoryUserStore) TouchLastLogin(ctx context.Context, id int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	u, ok := s.users[id]
	if !ok {
		return ErrNotFound
	}
	now := time.Now()
	u.LastLoginAt = &now
	s.users[id] = u
	return nil
}

func (s *MemoryUserStore) List(ctx context.Context, f ListFilter) ([]models.User, int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if f.Page < 1 {
		f.Page = 1
	}
	if f.Limit < 1 {
		f.Limit = 10
	}

	var all []models.User
	for _, u := range s.users {
		if f.Role != "" && u.Role != f.Role {
			continue
		}
		all = append(all, u)
	}
	sort.Slice(all, func(i, j int) bool { return all[i].ID < all[j].ID })

	total := int64(len(all))
	start := (f.Page - 1) * f.Limit
	if start >= len(all) {
		return []models.User{}, total, nil
	}
	end := start + f.Limit
	if end > len(all) {
		end = len(all)
	}
	return all[start:end], total, nil
}

func (s *MemoryUserStore) Search(ctx context.Context, query string) ([]models.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	q := strings.ToLower(query)
	out := []models.User{}
	for _, u := range s.users {
		if strings.Contains(strings.ToLower(u.Email), q) ||
			strings.Contains(strings.ToLower(u.FirstName), q) ||
			strings.Contains(strings.ToLower(u.LastName), q) {
			out = append(out, u)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (s *MemoryUserStore) Stats(ctx context.Context) (models.UserStats, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	stats := models.UserStats{RoleCounts: map[models.Role]int64{}}
	for _, u := range s.users {
		stats.TotalUsers++
		if u.IsActive {
			stats.ActiveUsers++
		}
		stats.RoleCounts[u.Role]++
	}
	stats.InactiveUsers = stats.TotalUsers - stats.ActiveUsers
	return stats, nil
}
