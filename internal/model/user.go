package model

import "strings"

// User represents a staff account
type User struct {
	Base         `yaml:",inline"`
	Username     string  `json:"username" db:"username" yaml:"username"`
	FirstName    string  `json:"first_name" db:"first_name" yaml:"first_name"`
	LastName     string  `json:"last_name" db:"last_name" yaml:"last_name"`
	Email        string  `json:"email" db:"email" yaml:"email"`
	Role         Role    `json:"role" db:"role" yaml:"role"`
	Specialty    *string `json:"specialty,omitempty" db:"specialty" yaml:"specialty,omitempty"`
	IsActive     bool    `json:"is_active" db:"is_active" yaml:"-"`
	PasswordHash string  `json:"-" db:"password_hash" yaml:"-"`
}

func (u *User) FullName() string {
	return strings.TrimSpace(u.FirstName + " " + u.LastName)
}

// CanLogin reports whether the account has credentials and is enabled.
func (u *User) CanLogin() bool {
	return u.IsActive && u.PasswordHash != ""
}

// UserFilter represents user search parameters
type UserFilter struct {
	Role       Role   `form:"role" binding:"omitempty,oneof=admin doctor receptionist"`
	Search     string `form:"search"`
	ActiveOnly bool   `form:"active_only"`
}

// CreateUserRequest represents user creation parameters
type CreateUserRequest struct {
	Username  string  `json:"username" binding:"required,min=3"`
	FirstName string  `json:"first_name" binding:"required"`
	LastName  string  `json:"last_name" binding:"required"`
	Email     string  `json:"email" binding:"required,email"`
	Role      Role    `json:"role" binding:"required,oneof=admin doctor receptionist"`
	Specialty *string `json:"specialty"`
	Password  string  `json:"password" binding:"required,min=6"`
}

// UpdateProfileRequest carries the editable profile fields. Name checks are
// done by the service so the caller gets the profile form's message.
type UpdateProfileRequest struct {
	FirstName string  `json:"first_name"`
	LastName  string  `json:"last_name"`
	Email     *string `json:"email" binding:"omitempty,email"`
	Specialty *string `json:"specialty"`
}
