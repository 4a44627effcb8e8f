package dto

import "github.com/prohmpiriya/eventhub/internal/domain"

// RegisterRequest is the body of POST /authentication/registration.
// Password is optional for guests.
type RegisterRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required_unless=Role guest,max=72"`
	Name     string `json:"name" binding:"required,min=1,max=100"`
	Role     string `json:"role" binding:"required,role"`
	Phone    string `json:"phone" binding:"omitempty,max=32"`
}

// LoginRequest is the body of POST /authentication/login
type LoginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

// ChangePasswordRequest is the body of POST /authentication/change-password
type ChangePasswordRequest struct {
	OldPassword string `json:"old_password" binding:"required"`
	NewPassword string `json:"new_password" binding:"required,max=72"`
}

// ResetPasswordRequest is the body of POST /authentication/reset-password
type ResetPasswordRequest struct {
	Email string `json:"email" binding:"required,email"`
}

// ConfirmResetPasswordRequest is the body of POST /authentication/reset-password/confirm
type ConfirmResetPasswordRequest struct {
	Token       string `json:"token" binding:"required"`
	NewPassword string `json:"new_password" binding:"required,max=72"`
}

// UpdateProfileRequest patches the caller's user and profile
type UpdateProfileRequest struct {
	Name      *string `json:"name" binding:"omitempty,min=1,max=100"`
	Phone     *string `json:"phone" binding:"omitempty,max=32"`
	Bio       *string `json:"bio" binding:"omitempty,max=1000"`
	City      *string `json:"city" binding:"omitempty,max=100"`
	AvatarURL *string `json:"avatar_url" binding:"omitempty,url"`
}

// UserResponse is the public view of a user
type UserResponse struct {
	ID    string      `json:"id"`
	Email string      `json:"email"`
	Name  string      `json:"name"`
	Role  domain.Role `json:"role"`
}

// NewUserResponse builds a UserResponse from a domain user
func NewUserResponse(u *domain.User) *UserResponse {
	return &UserResponse{ID: u.ID, Email: u.Email, Name: u.Name, Role: u.Role}
}

// AuthResponse is returned by login and registration
type AuthResponse struct {
	AccessToken string        `json:"access_token,omitempty"`
	TokenType   string        `json:"token_type,omitempty"`
	ExpiresIn   int64         `json:"expires_in,omitempty"`
	User        *UserResponse `json:"user"`
}

// ProfileResponse is the body of GET /authentication/profile
type ProfileResponse struct {
	User    *UserResponse       `json:"user"`
	Profile *domain.UserProfile `json:"profile"`
}
