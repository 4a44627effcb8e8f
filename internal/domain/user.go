package domain

import (
	"strings"
	"time"
	"unicode"
)

// Role is a user's permission level
type Role string

const (
	RoleOrganizer  Role = "organizer"
	RoleSubscriber Role = "subscriber"
	RoleGuest      Role = "guest"
	RoleAdmin      Role = "admin"
)

// IsValid reports whether r is a known role
func (r Role) IsValid() bool {
	switch r {
	case RoleOrganizer, RoleSubscriber, RoleGuest, RoleAdmin:
		return true
	}
	return false
}

// CanSelfRegister reports whether r may be chosen at registration
func (r Role) CanSelfRegister() bool {
	return r == RoleOrganizer || r == RoleSubscriber || r == RoleGuest
}

// CanManageEvents reports whether r may create events
func (r Role) CanManageEvents() bool {
	return r == RoleOrganizer || r == RoleAdmin
}

// User is an account
type User struct {
	ID           string    `json:"id"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"-"`
	Name         string    `json:"name"`
	Role         Role      `json:"role"`
	IsActive     bool      `json:"is_active"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// IsGuest reports whether the account is a provisional guest registration
func (u *User) IsGuest() bool {
	return u.Role == RoleGuest
}

// UserProfile holds optional contact details, one per user
type UserProfile struct {
	UserID    string    `json:"user_id"`
	Phone     string    `json:"phone"`
	Bio       string    `json:"bio"`
	City      string    `json:"city"`
	AvatarURL string    `json:"avatar_url"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Claims are the JWT claims issued at login
type Claims struct {
	UserID string `json:"user_id"`
	Email  string `json:"email"`
	Role   Role   `json:"role"`
}

// NormalizeEmail trims and lower-cases an email address
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// MaxPasswordBytes is the longest input bcrypt accepts
const MaxPasswordBytes = 72

// ValidatePassword enforces minimum password strength and the bcrypt length limit
func ValidatePassword(password string) error {
	if len(password) > MaxPasswordBytes {
		return ErrPasswordTooLong
	}
	if len(password) < 8 {
		return ErrWeakPassword
	}

	var hasUpper, hasLower, hasDigit bool
	for _, ch := range password {
		switch {
		case unicode.IsUpper(ch):
			hasUpper = true
		case unicode.IsLower(ch):
			hasLower = true
		case unicode.IsDigit(ch):
			hasDigit = true
		}
	}
	if !hasUpper || !hasLower || !hasDigit {
		return ErrWeakPassword
	}
	return nil
}
