package models

import "time"

// Role constants
const (
	RoleAdmin = "admin"
	RoleUser  = "user"
)

// User represents an account stored in sika-server.
type User struct {
	UserID       string    `json:"user_id"`
	Email        string    `json:"email"`
	Name         string    `json:"name"`
	PasswordHash string    `json:"password_hash"`
	Role         string    `json:"role"`
	CreatedAt    time.Time `json:"created_at"`
}

// UserKeyValue is a per-user preference entry.
type UserKeyValue struct {
	UserID    string    `json:"user_id"`
	Key       string    `json:"key"`
	Value     string    `json:"value"`
	UpdatedAt time.Time `json:"updated_at"`
}
