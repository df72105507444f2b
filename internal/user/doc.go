// Package user implements the account lifecycle: registration with email
// verification, login with a failed-attempt lock, profile updates, and
// profile pictures kept in object storage.
//
// Emails are composed from markdown templates (pkg/mailtemplate) and sent
// through an email.EmailSender. A failed verification email after
// registration is reported to the caller (ErrNotificationFailed) while the
// account stays created; other notifications are best-effort and only
// logged.
package user
