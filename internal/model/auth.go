package model

import (
	"time"
)

// LoginRequest carries the demo login form
type LoginRequest struct {
	Username string `json:"username" binding:"required"`
	Password string `json:"password" binding:"required"`
}

// LoginResponse is returned after a successful login
type LoginResponse struct {
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expires_at"`
	User      *User     `json:"user"`
	Redirect  string    `json:"redirect"`
}

// ChangePasswordRequest is validated by the auth service so that each
// failure carries the form's message.
type ChangePasswordRequest struct {
	CurrentPassword string `json:"current_password"`
	NewPassword     string `json:"new_password"`
	ConfirmPassword string `json:"confirm_password"`
}

// Session is the server side record behind a token
type Session struct {
	ID        string    `json:"id"`
	Token     string    `json:"token"`
	User      *User     `json:"user"`
	IssuedAt  time.Time `json:"issued_at"`
	ExpiresAt time.Time `json:"expires_at"`
}

// TokenClaims are the identity fields carried in a session token
type TokenClaims struct {
	UserID    int64
	Role      Role
	SessionID string
	ExpiresAt time.Time
}
