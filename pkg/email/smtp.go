package email

import (
	"bytes"
	"context"
	"crypto/tls"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net"
	"net/smtp"
	"strings"
	"time"

	"github.com/go-mail/mail"

	"github.com/dmitrymomot/usermgmt/pkg/logger"
)

// Session is the subset of an SMTP client conversation used by SMTPSender.
// *smtp.Client satisfies it.
type Session interface {
	StartTLS(config *tls.Config) error
	Auth(a smtp.Auth) error
	Mail(from string) error
	Rcpt(to string) error
	Data() (io.WriteCloser, error)
	Quit() error
	Close() error
}

// DialFunc opens an SMTP session to addr. The returned session has already read
// the server greeting.
type DialFunc func(ctx context.Context, addr string) (Session, error)

// SMTPSender delivers HTML emails over an authenticated STARTTLS session.
// Every call opens its own session, so it is safe for concurrent use.
type SMTPSender struct {
	cfg  SMTPConfig
	dial DialFunc
	log  *slog.Logger
}

// SMTPOption configures SMTPSender.
type SMTPOption func(*SMTPSender)

// WithDialer replaces the network dialer. Mostly useful in tests.
func WithDialer(dial DialFunc) SMTPOption {
	return func(s *SMTPSender) {
		if dial != nil {
			s.dial = dial
		}
	}
}

// WithLogger sets the logger used for delivery diagnostics.
func WithLogger(l *slog.Logger) SMTPOption {
	return func(s *SMTPSender) {
		if l != nil {
			s.log = l
		}
	}
}

// NewSMTPSender creates an SMTP-backed sender.
func NewSMTPSender(cfg SMTPConfig, opts ...SMTPOption) (*SMTPSender, error) {
	if cfg.Server == "" {
		return nil, fmt.Errorf("%w: SMTP server is required", ErrInvalidConfig)
	}
	if cfg.Port <= 0 || cfg.Port > 65535 {
		return nil, fmt.Errorf("%w: SMTP port %d is out of range", ErrInvalidConfig, cfg.Port)
	}
	if cfg.Username == "" || cfg.Password == "" {
		return nil, fmt.Errorf("%w: SMTP credentials are required", ErrInvalidConfig)
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 10 * time.Second
	}

	s := &SMTPSender{
		cfg: cfg,
		log: slog.New(slog.DiscardHandler),
	}
	s.dial = netDialer(cfg)
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

// SendEmail implements EmailSender.
func (s *SMTPSender) SendEmail(ctx context.Context, params SendEmailParams) error {
	if err := params.Validate(); err != nil {
		return err
	}
	return s.Send(ctx, params.Subject, params.BodyHTML, strings.TrimSpace(params.SendTo))
}

// Send delivers one HTML message to recipient. It makes a single attempt:
// dial, STARTTLS, AUTH, MAIL/RCPT/DATA. Once dialed, the session is released
// exactly once on every return path.
func (s *SMTPSender) Send(ctx context.Context, subject, htmlBody, recipient string) error {
	log := s.log.With(logger.Component("smtp"), logger.Recipient(recipient))

	sess, err := s.dial(ctx, s.cfg.Addr())
	if err != nil {
		log.ErrorContext(ctx, "smtp dial failed", logger.Error(err))
		return errors.Join(ErrTransport, err)
	}
	defer s.release(ctx, log, sess)

	if err := sess.StartTLS(&tls.Config{
		ServerName:         s.cfg.Server,
		InsecureSkipVerify: s.cfg.InsecureSkipVerify,
	}); err != nil {
		log.ErrorContext(ctx, "smtp starttls failed", logger.Error(err))
		return errors.Join(ErrTransport, err)
	}

	if err := sess.Auth(smtp.PlainAuth("", s.cfg.Username, s.cfg.Password, s.cfg.Server)); err != nil {
		log.ErrorContext(ctx, "smtp authentication failed", logger.Error(err))
		return errors.Join(ErrAuthentication, err)
	}

	msg, err := s.buildMessage(subject, htmlBody, recipient)
	if err != nil {
		return errors.Join(ErrDelivery, err)
	}

	if err := s.deliver(sess, recipient, msg); err != nil {
		log.ErrorContext(ctx, "smtp delivery failed", logger.Error(err))
		return errors.Join(ErrDelivery, err)
	}

	log.InfoContext(ctx, "email sent")
	return nil
}

func (s *SMTPSender) deliver(sess Session, recipient string, msg []byte) error {
	if err := sess.Mail(s.cfg.from()); err != nil {
		return err
	}
	if err := sess.Rcpt(recipient); err != nil {
		return err
	}
	w, err := sess.Data()
	if err != nil {
		return err
	}
	if _, err := w.Write(msg); err != nil {
		_ = w.Close()
		return err
	}
	return w.Close()
}

func (s *SMTPSender) buildMessage(subject, htmlBody, recipient string) ([]byte, error) {
	m := mail.NewMessage()
	m.SetHeader("From", s.cfg.from())
	m.SetHeader("To", recipient)
	m.SetHeader("Subject", subject)
	m.SetBody("text/html", htmlBody)

	var buf bytes.Buffer
	if _, err := m.WriteTo(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// release sends QUIT, falling back to a hard close when QUIT fails.
func (s *SMTPSender) release(ctx context.Context, log *slog.Logger, sess Session) {
	if err := sess.Quit(); err != nil {
		log.DebugContext(ctx, "smtp quit failed, closing connection", logger.Error(err))
		if err := sess.Close(); err != nil {
			log.DebugContext(ctx, "smtp close failed", logger.Error(err))
		}
	}
}

func netDialer(cfg SMTPConfig) DialFunc {
	return func(ctx context.Context, addr string) (Session, error) {
		d := net.Dialer{Timeout: cfg.Timeout}
		conn, err := d.DialContext(ctx, "tcp", addr)
		if err != nil {
			return nil, err
		}

		deadline := time.Now().Add(cfg.Timeout)
		if dl, ok := ctx.Deadline(); ok && dl.Before(deadline) {
			deadline = dl
		}
		if err := conn.SetDeadline(deadline); err != nil {
			_ = conn.Close()
			return nil, err
		}

		client, err := smtp.NewClient(conn, cfg.Server)
		if err != nil {
			_ = conn.Close()
			return nil, err
		}
		return client, nil
	}
}
