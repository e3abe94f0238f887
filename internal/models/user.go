package models

import "time"

// Role is the closed set of access levels a user can hold.
type Role string

const (
	RoleCustomer Role = "CUSTOMER"
	RoleSeller   Role = "SELLER"
	RoleAdmin    Role = "ADMIN"
)

// DefaultRole is assigned at signup; elevated roles are granted by admins.
const DefaultRole = RoleCustomer

// IsValid checks if the role is one of the predefined valid roles.
func (r Role) IsValid() bool {
	switch r {
	case RoleCustomer, RoleSeller, RoleAdmin:
		return true
	default:
		return false
	}
}

func (r Role) String() string { return string(r) }

// User is the credential-store record. PasswordHash never serializes.
type User struct {
	ID           int64      `db:"id" json:"id"`
	Email        string     `db:"email" json:"email"`
	PasswordHash string     `db:"password_hash" json:"-"`
	FirstName    string     `db:"first_name" json:"firstName"`
	LastName     string     `db:"last_name" json:"lastName"`
	Role         Role       `db:"role" json:"role"`
	IsActive     bool       `db:"is_active" json:"isActive"`
	LastLoginAt  *time.Time `db:"last_login_at" json:"lastLoginAt,omitempty"`
	CreatedAt    time.Time  `db:"created_at" json:"createdAt"`
	UpdatedAt    time.Time  `db:"updated_at" json:"updatedAt"`
}

// UserStats summarizes the user base for the admin dashboard.
type UserStats struct {
	TotalUsers    int64          `json:"totalUsers"`
	ActiveUsers   int64          `json:"activeUsers"`
	InactiveUsers int64          `json:"inactiveUsers"`
	RoleCounts    map[Role]int64 `json:"roleCounts"`
}
