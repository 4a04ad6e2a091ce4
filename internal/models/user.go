package models

import (
	"errors"
	"strings"
	"time"
)

// User represents a registered user. The same account can act as driver
// (publishing routes) and passenger (booking seats).
type User struct {
	ID                string    `json:"id" db:"id"`
	Username          string    `json:"username" db:"username"`
	Email             string    `json:"email" db:"email"`
	PasswordHash      string    `json:"-" db:"password_hash"`
	Phone             *string   `json:"phone,omitempty" db:"phone"`
	ProfilePictureURL *string   `json:"profile_picture_url,omitempty" db:"profile_picture_url"`
	Rating            *float64  `json:"rating,omitempty" db:"rating"`
	CreatedAt         time.Time `json:"created_at" db:"created_at"`
}

// RegisterRequest represents the request to create a new account
type RegisterRequest struct {
	Username string  `json:"username" binding:"required"`
	Email    string  `json:"email" binding:"required,email"`
	Password string  `json:"password" binding:"required"`
	Phone    *string `json:"phone,omitempty"`
}

// LoginRequest represents the login request
type LoginRequest struct {
	Email    string `json:"email" binding:"required"`
	Password string `json:"password" binding:"required"`
}

// UpdateProfileRequest represents the request to update the caller's profile
type UpdateProfileRequest struct {
	Username          *string `json:"username,omitempty"`
	Phone             *string `json:"phone,omitempty"`
	ProfilePictureURL *string `json:"profile_picture_url,omitempty"`
}

// Validate validates the register request
func (r *RegisterRequest) Validate() error {
	if strings.TrimSpace(r.Username) == "" {
		return errors.New("username is required")
	}

	if len(r.Password) < 8 {
		return errors.New("password must be at least 8 characters")
	}

	return nil
}

// PublicProfile is the user shape exposed to other users
type PublicProfile struct {
	ID                string   `json:"id"`
	Username          string   `json:"username"`
	ProfilePictureURL *string  `json:"profile_picture_url,omitempty"`
	Rating            *float64 `json:"rating,omitempty"`
	ReviewCount       int      `json:"review_count"`
}
