package email

import "errors"

var (
	ErrFailedToSendEmail = errors.New("mailer.errors.failed_to_send_email")
	ErrInvalidConfig     = errors.New("mailer.errors.invalid_config")
	ErrInvalidParams     = errors.New("mailer.errors.invalid_params")

	// SMTP session failures. Each is joined with the underlying error.
	ErrTransport      = errors.New("mailer.errors.transport")
	ErrAuthentication = errors.New("mailer.errors.authentication")
	ErrDelivery       = errors.New("mailer.errors.delivery")
)
