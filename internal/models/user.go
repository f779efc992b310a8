package models

import (
	"time"

	"github.com/uptrace/bun"
)

// Role is the closed set of roles a user can hold. Raw strings coming in
// over the API must be validated with ParseRole before they reach the store.
type Role string

const (
	RoleUser  Role = "User"
	RoleAdmin Role = "Admin"
)

// ParseRole validates a raw role string against the closed enumeration.
func ParseRole(s string) (Role, bool) {
	switch Role(s) {
	case RoleUser, RoleAdmin:
		return Role(s), true
	}
	return "", false
}

type User struct {
	bun.BaseModel `bun:"table:users"`

	ID            int64     `bun:"id,pk,autoincrement" json:"id"`
	Name          string    `bun:"name,notnull" json:"name"`
	Email         string    `bun:"email,unique,notnull" json:"email"`
	PasswordHash  string    `bun:"password_hash,notnull" json:"-"`
	Role          Role      `bun:"role,notnull" json:"role"`
	IsActive      bool      `bun:"is_active,notnull" json:"isActive"`
	EmailVerified bool      `bun:"email_verified,notnull" json:"emailVerified"`
	CreatedAt     time.Time `bun:"created_at,notnull,default:current_timestamp" json:"createdAt"`
}
