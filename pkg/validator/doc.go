// Package validator provides small composable validation rules.
//
//	err := validator.Apply(
//		validator.ValidEmail("email", in.Email),
//		validator.MinLen("password", in.Password, 8),
//		validator.When(in.Nickname != "", validator.Nickname("nickname", in.Nickname)),
//	)
//
// Apply returns ValidationErrors, which matches ErrValidationFailed with
// errors.Is and exposes per-field messages through Fields.
package validator
