package models

import (
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// User is an admin account able to manage catalogs and trigger runs.
type User struct {
	ID           string    `db:"id" json:"id"`
	Email        string    `db:"email" json:"email"`
	PasswordHash string    `db:"password_hash" json:"-"`
	FullName     string    `db:"full_name" json:"full_name"`
	Role         string    `db:"role" json:"role"`
	Active       bool      `db:"active" json:"active"`
	CreatedAt    time.Time `db:"created_at" json:"created_at"`
	UpdatedAt    time.Time `db:"updated_at" json:"updated_at"`
}

// Account roles, in decreasing order of capability.
const (
	RoleAdmin     = "admin"
	RoleScheduler = "scheduler"
	RoleViewer    = "viewer"
)

// JWTClaims is the access-token payload.
type JWTClaims struct {
	UserID   string `json:"uid"`
	Email    string `json:"email"`
	FullName string `json:"name"`
	Role     string `json:"role"`
	jwt.RegisteredClaims
}
