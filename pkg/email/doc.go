// Package email delivers transactional emails through pluggable providers.
//
// Every provider implements EmailSender:
//   - SMTPSender sends over an authenticated STARTTLS session (the default for
//     production)
//   - postmark client (NewPostmarkClient) uses the Postmark HTTP API
//   - DevSender writes emails to disk for local development
//
// NewSender picks one from Config: when SEND_REAL_MAIL is false the DevSender is
// used, when Postmark tokens are present Postmark is used, otherwise SMTP.
//
// # SMTP delivery
//
// SMTPSender makes exactly one attempt per call and never retries:
//
//  1. dial the server (ErrTransport)
//  2. STARTTLS (ErrTransport)
//  3. AUTH PLAIN (ErrAuthentication)
//  4. MAIL, RCPT, DATA (ErrDelivery)
//
// Once the session is open it is released exactly once on every return path:
// QUIT is sent, and the connection is closed directly if QUIT fails. Errors are
// joined with their cause, so both the category and the server reply are
// reachable:
//
//	err := sender.Send(ctx, "Welcome", html, "user@example.com")
//	if errors.Is(err, email.ErrAuthentication) {
//	    var reply *textproto.Error
//	    if errors.As(err, &reply) {
//	        // reply.Code == 535
//	    }
//	}
//
// The MIME message is built with github.com/go-mail/mail. The network session
// is injectable through WithDialer, which is how the tests drive the sender.
//
// # Configuration
//
// Config is parsed from the environment:
//
//	SEND_REAL_MAIL=true
//	SMTP_SERVER=smtp.mailtrap.io
//	SMTP_PORT=2525
//	SMTP_USERNAME=...
//	SMTP_PASSWORD=...
//	SMTP_SENDER=no-reply@example.com   # defaults to SMTP_USERNAME
//
// # Errors
//
//   - ErrInvalidParams: SendEmailParams failed validation
//   - ErrInvalidConfig: provider configuration is incomplete
//   - ErrTransport, ErrAuthentication, ErrDelivery: SMTP session failures
//   - ErrFailedToSendEmail: DevSender and Postmark failures
package email
