package models

import (
	"time"
)

// User is a reviewer or administrator (table 'users')
type User struct {
	ID           int64     `json:"id" db:"id" example:"1"`
	Email        string    `json:"email" db:"email" example:"admin@hackathon.app"`
	PasswordHash string    `json:"-" db:"password_hash"`
	Name         string    `json:"name" db:"name" example:"Ada Admin"`
	Role         RoleType  `json:"role" db:"role" example:"ADMINISTRATOR"`
	CreatedAt    time.Time `json:"createdAt" db:"created_at"`
	UpdatedAt    time.Time `json:"updatedAt" db:"updated_at"`
}

// Caller is the identity attached to a request by the auth middleware.
// A nil *Caller means the request is anonymous.
type Caller struct {
	UserID int64
	Email  string
	Role   RoleType
}

// IsAdministrator reports whether the caller holds the ADMINISTRATOR role
func (c *Caller) IsAdministrator() bool {
	return c != nil && c.Role == RoleAdministrator
}
