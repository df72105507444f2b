package email_test

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/usermgmt/pkg/email"
)

// MockEmailSender is a mock implementation of EmailSender for testing
type MockEmailSender struct {
	mock.Mock
}

func (m *MockEmailSender) SendEmail(ctx context.Context, params email.SendEmailParams) error {
	args := m.Called(ctx, params)
	return args.Error(0)
}

var _ email.EmailSender = (*MockEmailSender)(nil)

func TestSendEmailParams_Validate(t *testing.T) {
	t.Parallel()

	valid := email.SendEmailParams{
		SendTo:   "user@example.com",
		Subject:  "Test Subject",
		BodyHTML: "<p>Test body</p>",
	}

	tests := []struct {
		name   string
		mutate func(p *email.SendEmailParams)
		errMsg string
	}{
		{name: "valid params", mutate: func(*email.SendEmailParams) {}},
		{name: "complex valid email", mutate: func(p *email.SendEmailParams) { p.SendTo = "test.user+tag@sub.example.com" }},
		{name: "empty SendTo", mutate: func(p *email.SendEmailParams) { p.SendTo = "" }, errMsg: "SendTo is required"},
		{name: "whitespace SendTo", mutate: func(p *email.SendEmailParams) { p.SendTo = "   " }, errMsg: "SendTo is required"},
		{name: "invalid email", mutate: func(p *email.SendEmailParams) { p.SendTo = "invalid-email" }, errMsg: "SendTo must be a valid email address"},
		{name: "missing domain", mutate: func(p *email.SendEmailParams) { p.SendTo = "user@" }, errMsg: "SendTo must be a valid email address"},
		{name: "missing local part", mutate: func(p *email.SendEmailParams) { p.SendTo = "@example.com" }, errMsg: "SendTo must be a valid email address"},
		{name: "empty Subject", mutate: func(p *email.SendEmailParams) { p.Subject = " " }, errMsg: "Subject is required"},
		{name: "empty BodyHTML", mutate: func(p *email.SendEmailParams) { p.BodyHTML = "" }, errMsg: "BodyHTML is required"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			p := valid
			tt.mutate(&p)

			err := p.Validate()
			if tt.errMsg == "" {
				assert.NoError(t, err)
				return
			}
			assert.ErrorIs(t, err, email.ErrInvalidParams)
			assert.Contains(t, err.Error(), tt.errMsg)
		})
	}
}

func TestDevSender_SendEmail(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	fixed := time.Date(2025, 1, 2, 3, 4, 5, 0, time.UTC)

	t.Run("writes html and metadata", func(t *testing.T) {
		t.Parallel()
		dir := t.TempDir()
		sender := email.NewDevSender(dir, email.WithClock(func() time.Time { return fixed }))

		err := sender.SendEmail(ctx, email.SendEmailParams{
			SendTo:   "user@example.com",
			Subject:  "Verify your email",
			BodyHTML: "<p>Test content</p>",
			Tag:      "email_verification",
		})
		require.NoError(t, err)

		base := filepath.Join(dir, "2025_01_02_030405.000000_email_verification")
		html, err := os.ReadFile(base + ".html")
		require.NoError(t, err)
		assert.Equal(t, "<p>Test content</p>", string(html))

		raw, err := os.ReadFile(base + ".json")
		require.NoError(t, err)
		var meta map[string]any
		require.NoError(t, json.Unmarshal(raw, &meta))
		assert.Equal(t, "user@example.com", meta["send_to"])
		assert.Equal(t, "Verify your email", meta["subject"])
		assert.Equal(t, "email_verification", meta["tag"])
		assert.Equal(t, "2025-01-02T03:04:05Z", meta["timestamp"])
		assert.Equal(t, "2025_01_02_030405.000000_email_verification.html", meta["html_file"])
	})

	t.Run("uses sanitized subject without tag", func(t *testing.T) {
		t.Parallel()
		dir := t.TempDir()
		sender := email.NewDevSender(dir)

		err := sender.SendEmail(ctx, email.SendEmailParams{
			SendTo:   "user@example.com",
			Subject:  "Password Reset!",
			BodyHTML: "<p>Reset</p>",
		})
		require.NoError(t, err)

		files, err := os.ReadDir(dir)
		require.NoError(t, err)
		require.Len(t, files, 2)
		for _, f := range files {
			assert.True(t, strings.Contains(f.Name(), "_password_reset."), f.Name())
		}
	})

	t.Run("validation error writes nothing", func(t *testing.T) {
		t.Parallel()
		dir := t.TempDir()
		sender := email.NewDevSender(dir)

		err := sender.SendEmail(ctx, email.SendEmailParams{Subject: "s", BodyHTML: "<p>x</p>"})
		assert.ErrorIs(t, err, email.ErrInvalidParams)

		files, err := os.ReadDir(dir)
		require.NoError(t, err)
		assert.Empty(t, files)
	})

	t.Run("directory creation error", func(t *testing.T) {
		t.Parallel()
		sender := email.NewDevSender("/dev/null/cannot-create-here")

		err := sender.SendEmail(ctx, email.SendEmailParams{
			SendTo:   "user@example.com",
			Subject:  "Test",
			BodyHTML: "<p>x</p>",
		})
		assert.ErrorIs(t, err, email.ErrFailedToSendEmail)
		assert.Contains(t, err.Error(), "failed to create directory")
	})
}

func TestNewPostmarkClient(t *testing.T) {
	t.Parallel()

	valid := email.PostmarkConfig{
		ServerToken:  "server",
		AccountToken: "account",
		SenderEmail:  "sender@example.com",
		SupportEmail: "support@example.com",
	}

	client, err := email.NewPostmarkClient(valid)
	require.NoError(t, err)
	assert.NotNil(t, client)

	tests := []struct {
		name   string
		mutate func(c *email.PostmarkConfig)
	}{
		{name: "missing server token", mutate: func(c *email.PostmarkConfig) { c.ServerToken = "" }},
		{name: "missing account token", mutate: func(c *email.PostmarkConfig) { c.AccountToken = "" }},
		{name: "invalid sender", mutate: func(c *email.PostmarkConfig) { c.SenderEmail = "nope" }},
		{name: "invalid support", mutate: func(c *email.PostmarkConfig) { c.SupportEmail = "nope" }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			cfg := valid
			tt.mutate(&cfg)
			client, err := email.NewPostmarkClient(cfg)
			assert.ErrorIs(t, err, email.ErrInvalidConfig)
			assert.Nil(t, client)
		})
	}

	t.Run("rejects invalid params before calling the API", func(t *testing.T) {
		t.Parallel()
		client, err := email.NewPostmarkClient(valid)
		require.NoError(t, err)

		err = client.SendEmail(context.Background(), email.SendEmailParams{SendTo: "user@example.com"})
		assert.ErrorIs(t, err, email.ErrInvalidParams)
	})
}

func TestNewSender(t *testing.T) {
	t.Parallel()

	t.Run("dev sender when real mail disabled", func(t *testing.T) {
		t.Parallel()
		s, err := email.NewSender(email.Config{SendRealMail: false, DevDir: t.TempDir()}, nil)
		require.NoError(t, err)
		assert.IsType(t, &email.DevSender{}, s)
	})

	t.Run("smtp sender", func(t *testing.T) {
		t.Parallel()
		s, err := email.NewSender(email.Config{
			SendRealMail: true,
			SMTP: email.SMTPConfig{
				Server:   "smtp.mailtrap.io",
				Port:     2525,
				Username: "user",
				Password: "pass",
			},
		}, nil)
		require.NoError(t, err)
		assert.IsType(t, &email.SMTPSender{}, s)
	})

	t.Run("smtp without credentials", func(t *testing.T) {
		t.Parallel()
		_, err := email.NewSender(email.Config{
			SendRealMail: true,
			SMTP:         email.SMTPConfig{Server: "smtp.mailtrap.io", Port: 2525},
		}, nil)
		assert.ErrorIs(t, err, email.ErrInvalidConfig)
	})

	t.Run("postmark when tokens are set", func(t *testing.T) {
		t.Parallel()
		s, err := email.NewSender(email.Config{
			SendRealMail: true,
			Postmark: email.PostmarkConfig{
				ServerToken:  "server",
				AccountToken: "account",
				SenderEmail:  "sender@example.com",
			},
		}, nil)
		require.NoError(t, err)
		_, isSMTP := s.(*email.SMTPSender)
		assert.False(t, isSMTP)
		_, isDev := s.(*email.DevSender)
		assert.False(t, isDev)
	})
}
