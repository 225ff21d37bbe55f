package models

import "time"

// UserRole represents the available roles for authorization decisions.
type UserRole string

const (
	RoleAdmin UserRole = "Admin"
	RoleUser  UserRole = "User"
)

// User represents an account stored in the users table.
type User struct {
	ID               string    `db:"id" json:"id"`
	Username         string    `db:"username" json:"username"`
	PasswordHash     string    `db:"password_hash" json:"-"`
	Role             UserRole  `db:"role" json:"role"`
	TwoFactorEnabled bool      `db:"two_factor_enabled" json:"two_factor_enabled"`
	TwoFactorSecret  string    `db:"two_factor_secret" json:"-"`
	CreatedAt        time.Time `db:"created_at" json:"created_at"`
	UpdatedAt        time.Time `db:"updated_at" json:"updated_at"`
}

// UserInfo describes a user in API responses.
type UserInfo struct {
	ID               string   `json:"id"`
	Username         string   `json:"username"`
	Role             UserRole `json:"role"`
	TwoFactorEnabled bool     `json:"two_factor_enabled"`
}

// Info maps the stored record to its response shape.
func (u *User) Info() UserInfo {
	return UserInfo{
		ID:               u.ID,
		Username:         u.Username,
		Role:             u.Role,
		TwoFactorEnabled: u.TwoFactorEnabled,
	}
}

// Pagination contains pagination metadata returned in list responses.
type Pagination struct {
	Page       int `json:"page"`
	PageSize   int `json:"page_size"`
	TotalCount int `json:"total_count"`
}
