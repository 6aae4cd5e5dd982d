package model

import (
	"time"
)

// User status constants
const (
	UserStatusActive  = "active"
	UserStatusPending = "pending"
	UserStatusLocked  = "locked"
)

// Application roles, checked server-side on every protected request
const (
	RoleAdmin        = "admin"
	RolePsychologist = "psychologist"
	RoleClient       = "client"
)

// User represents a platform account
type User struct {
	Base
	Email            string     `json:"email" db:"email"`
	PasswordHash     string     `json:"-" db:"password_hash"`
	FirstName        string     `json:"first_name" db:"first_name"`
	LastName         string     `json:"last_name" db:"last_name"`
	Phone            *string    `json:"phone,omitempty" db:"phone"`
	Status           string     `json:"status" db:"status"`
	LastLoginAt      *time.Time `json:"last_login_at,omitempty" db:"last_login_at"`
	LoginAttempts    int        `json:"-" db:"login_attempts"`
	LastLoginAttempt time.Time  `json:"-" db:"last_login_attempt"`
}

// FullName joins first and last name for display
func (u *User) FullName() string {
	return u.FirstName + " " + u.LastName
}
