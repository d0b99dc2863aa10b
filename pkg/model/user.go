package model

import (
	"fmt"
	"strings"
	"time"
)

// User is the identity attached to a session.
type User struct {
	ID        string `json:"id" yaml:"id"`
	Name      string `json:"name" yaml:"name"`
	Email     string `json:"email" yaml:"email"`
	GroupID   string `json:"groupId" yaml:"group_id"`
	GroupName string `json:"groupName" yaml:"group_name"`
}

// Initial returns the upper-cased first letter of the user's name, or "U".
func (u *User) Initial() string {
	if u == nil || u.Name == "" {
		return "U"
	}
	return strings.ToUpper(string([]rune(u.Name)[:1]))
}

// UserFromLogin derives a placeholder user from a login name when the
// backend does not expose /users/self.
func UserFromLogin(username string) User {
	name := username
	if at := strings.Index(username, "@"); at > 0 {
		name = username[:at]
	}
	return User{
		ID:        "1",
		Name:      name,
		Email:     username,
		GroupID:   "default",
		GroupName: "My Inventory",
	}
}

// LoginRequest is the body of POST /v1/users/login.
type LoginRequest struct {
	Username     string `json:"username"`
	Password     string `json:"password"`
	StayLoggedIn bool   `json:"stayLoggedIn,omitempty"`
}

// Validate checks required fields before submission.
func (r LoginRequest) Validate() error {
	if strings.TrimSpace(r.Username) == "" {
		return fmt.Errorf("username: %w", ErrRequired)
	}
	if r.Password == "" {
		return fmt.Errorf("password: %w", ErrRequired)
	}
	return nil
}

// RegisterRequest is the body of POST /v1/users/register.
type RegisterRequest struct {
	Email    string `json:"email"`
	Name     string `json:"name"`
	Password string `json:"password"`
}

// Validate checks required fields before submission.
func (r RegisterRequest) Validate() error {
	if strings.TrimSpace(r.Email) == "" {
		return fmt.Errorf("email: %w", ErrRequired)
	}
	if r.Password == "" {
		return fmt.Errorf("password: %w", ErrRequired)
	}
	return nil
}

// TokenResponse is returned by a successful login.
type TokenResponse struct {
	Token           string    `json:"token"`
	AttachmentToken string    `json:"attachmentToken"`
	ExpiresAt       time.Time `json:"expiresAt"`
}
