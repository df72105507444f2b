package auth

import "errors"

var (
	ErrInvalidToken     = errors.New("auth: invalid token")
	ErrExpiredToken     = errors.New("auth: token is expired")
	ErrMissingToken     = errors.New("auth: missing bearer token")
	ErrForbidden        = errors.New("auth: not allowed to manage this account")
	ErrMissingSecret    = errors.New("auth: missing signing secret")
	ErrPasswordTooShort = errors.New("auth: password is too short")
	ErrPasswordTooLong  = errors.New("auth: password is too long")
	ErrPasswordMismatch = errors.New("auth: password does not match")
)
