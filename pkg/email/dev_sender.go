package email

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"time"

	"github.com/dmitrymomot/usermgmt/pkg/logger"
)

// DevSender implements EmailSender for local development and tests.
// Instead of talking to a mail server it writes every email to dir as an HTML
// file plus a JSON metadata file.
type DevSender struct {
	dir string
	log *slog.Logger
	now func() time.Time
}

// DevOption configures DevSender.
type DevOption func(*DevSender)

// WithDevLogger logs a line for every captured email.
func WithDevLogger(l *slog.Logger) DevOption {
	return func(d *DevSender) {
		if l != nil {
			d.log = l
		}
	}
}

// WithClock overrides the timestamp source used for file names.
func WithClock(now func() time.Time) DevOption {
	return func(d *DevSender) {
		if now != nil {
			d.now = now
		}
	}
}

// NewDevSender creates a sender that saves emails under dir.
// The directory is created on first send.
func NewDevSender(dir string, opts ...DevOption) *DevSender {
	d := &DevSender{
		dir: dir,
		log: slog.New(slog.DiscardHandler),
		now: time.Now,
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

type emailMetadata struct {
	Timestamp string `json:"timestamp"`
	SendTo    string `json:"send_to"`
	Subject   string `json:"subject"`
	Tag       string `json:"tag,omitempty"`
	HTMLFile  string `json:"html_file"`
}

// SendEmail writes <timestamp>_<tag-or-subject>.html and .json.
func (d *DevSender) SendEmail(ctx context.Context, params SendEmailParams) error {
	if err := params.Validate(); err != nil {
		return err
	}

	if err := os.MkdirAll(d.dir, 0o755); err != nil {
		return fmt.Errorf("%w: failed to create directory: %v", ErrFailedToSendEmail, err)
	}

	now := d.now()
	identifier := params.Tag
	if identifier == "" {
		identifier = params.Subject
	}
	base := fmt.Sprintf("%s_%s", now.Format("2006_01_02_150405.000000"), sanitizeFilename(identifier))

	htmlName := base + ".html"
	if err := os.WriteFile(filepath.Join(d.dir, htmlName), []byte(params.BodyHTML), 0o644); err != nil {
		return fmt.Errorf("%w: failed to write HTML file: %v", ErrFailedToSendEmail, err)
	}

	meta, err := json.MarshalIndent(emailMetadata{
		Timestamp: now.Format(time.RFC3339),
		SendTo:    params.SendTo,
		Subject:   params.Subject,
		Tag:       params.Tag,
		HTMLFile:  htmlName,
	}, "", "  ")
	if err != nil {
		return fmt.Errorf("%w: failed to marshal metadata: %v", ErrFailedToSendEmail, err)
	}
	if err := os.WriteFile(filepath.Join(d.dir, base+".json"), meta, 0o644); err != nil {
		return fmt.Errorf("%w: failed to write JSON file: %v", ErrFailedToSendEmail, err)
	}

	d.log.InfoContext(ctx, "email captured",
		logger.Component("dev_mailer"),
		logger.Recipient(params.SendTo),
		logger.Template(params.Tag),
		slog.String("file", htmlName),
	)
	return nil
}

var unsafeFilenameChars = regexp.MustCompile(`[^a-z0-9\-_.]`)

// sanitizeFilename lowercases s, turns spaces into underscores and drops
// anything that is not safe in a file name.
func sanitizeFilename(s string) string {
	s = strings.ToLower(strings.ReplaceAll(s, " ", "_"))
	s = unsafeFilenameChars.ReplaceAllString(s, "")

	const maxLength = 100
	if len(s) > maxLength {
		s = s[:maxLength]
	}
	if s == "" {
		return "email"
	}
	return s
}
