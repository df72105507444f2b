package user

import "errors"

var (
	ErrNotFound           = errors.New("user not found")
	ErrEmailTaken         = errors.New("email already registered")
	ErrNicknameTaken      = errors.New("nickname already taken")
	ErrInvalidCredentials = errors.New("incorrect email or password")
	ErrAccountLocked      = errors.New("account locked due to too many failed login attempts")
	ErrEmailNotVerified   = errors.New("email address is not verified")
	ErrInvalidToken       = errors.New("invalid verification token")
	ErrNoProfilePicture   = errors.New("user has no profile picture")
	ErrNotificationFailed = errors.New("failed to send notification email")
)
