package dto

import "time"

// LoginRequest is the credential payload from the login page and bots.
type LoginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// LoginUser mirrors the profile shape the legacy frontend expects.
type LoginUser struct {
	Username string `json:"username"`
	Role     string `json:"rol"`
	UserCode int64  `json:"user_code"`
}

// LoginResponse carries the profile plus the session token.
type LoginResponse struct {
	Success   bool      `json:"success"`
	User      LoginUser `json:"user"`
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expires_at"`
}

// AdminResponse is one roster entry for the preference picker.
type AdminResponse struct {
	UserCode int64  `json:"user_code"`
	Username string `json:"username"`
}

// UserResponse is one directory account.
type UserResponse struct {
	UserCode int64  `json:"user_code"`
	Username string `json:"username"`
}
