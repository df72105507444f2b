package user

import (
	"time"

	"github.com/google/uuid"
)

// User is a registered account.
type User struct {
	ID                uuid.UUID  `json:"id"`
	Email             string     `json:"email"`
	Nickname          string     `json:"nickname"`
	FirstName         string     `json:"first_name,omitempty"`
	LastName          string     `json:"last_name,omitempty"`
	Bio               string     `json:"bio,omitempty"`
	ProfilePictureURL string     `json:"profile_picture_url,omitempty"`
	ProfilePictureKey string     `json:"-"`
	PasswordHash      string     `json:"-"`
	EmailVerified     bool       `json:"email_verified"`
	VerificationToken string     `json:"-"`
	FailedLoginCount  int        `json:"failed_login_count"`
	IsLocked          bool       `json:"is_locked"`
	LastLoginAt       *time.Time `json:"last_login_at,omitempty"`
	CreatedAt         time.Time  `json:"created_at"`
	UpdatedAt         time.Time  `json:"updated_at"`
}

// DisplayName is used as {name} in emails: first name, else nickname.
func (u *User) DisplayName() string {
	if u.FirstName != "" {
		return u.FirstName
	}
	return u.Nickname
}

// RegisterInput is the data accepted by Service.Register.
type RegisterInput struct {
	Email     string `json:"email"`
	Password  string `json:"password"`
	Nickname  string `json:"nickname,omitempty"`
	FirstName string `json:"first_name,omitempty"`
	LastName  string `json:"last_name,omitempty"`
	Bio       string `json:"bio,omitempty"`
}

// UpdateInput carries optional profile changes; nil fields are left as they are.
type UpdateInput struct {
	Nickname  *string `json:"nickname,omitempty"`
	FirstName *string `json:"first_name,omitempty"`
	LastName  *string `json:"last_name,omitempty"`
	Bio       *string `json:"bio,omitempty"`
}

// Page is one page of List results.
type Page struct {
	Users  []*User `json:"items"`
	Total  int     `json:"total"`
	Limit  int     `json:"limit"`
	Offset int     `json:"offset"`
}
