package validator

import "errors"

// ErrValidationFailed matches every ValidationErrors value via errors.Is.
var ErrValidationFailed = errors.New("validation failed")
