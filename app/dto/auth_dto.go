// Package dto contains Data Transfer Objects for API request and response structures
package dto

// SignupRequest represents the signup form data
type SignupRequest struct {
	Name            string `json:"name" validate:"required,max=255"`
	Email           string `json:"email" validate:"required,email,max=255"`
	Password        string `json:"password" validate:"required,min=8,max=100"`
	ConfirmPassword string `json:"confirm_password" validate:"required,eqfield=Password"`
}

// SignupResponse represents the response after successful signup
type SignupResponse struct {
	Message string         `json:"message"`
	User    AuthUserDTO    `json:"user"`
	Session SessionInfoDTO `json:"session"`
}

// LoginRequest represents the request payload for user login
type LoginRequest struct {
	Email    string `json:"email" validate:"required,email,max=255"`
	Password string `json:"password" validate:"required,min=8,max=100"`
}

// LoginResponse represents the successful login response
type LoginResponse struct {
	User    AuthUserDTO    `json:"user"`
	Session SessionInfoDTO `json:"session"`
}

// LogoutRequest represents the logout request
type LogoutRequest struct {
	UserID uint `json:"-"`
}

// LogoutResponse represents the logout response
type LogoutResponse struct {
	Message string `json:"message"`
}

// AuthUserDTO represents user data for authentication responses
type AuthUserDTO struct {
	ID              uint    `json:"id"`
	UUID            string  `json:"uuid"`
	Name            string  `json:"name"`
	Email           string  `json:"email"`
	Image           *string `json:"image,omitempty"`
	IsEmailVerified *bool   `json:"is_email_verified"`
	IsActive        *bool   `json:"is_active"`
	CreatedAt       string  `json:"created_at"`
}

// SessionInfoDTO carries the session tokens returned on signup and login
type SessionInfoDTO struct {
	SessionToken string  `json:"session_token"`
	RefreshToken *string `json:"refresh_token,omitempty"`
	TokenType    string  `json:"token_type"`
	ExpiresIn    int     `json:"expires_in"`
	CreatedAt    string  `json:"created_at"`
}
