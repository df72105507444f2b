package ratelimiter

import "errors"

var (
	ErrInvalidConfig = errors.New("invalid rate limit configuration")
	ErrLimited       = errors.New("too many requests")
)
