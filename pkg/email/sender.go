package email

import (
	"fmt"
	"log/slog"

	"github.com/dmitrymomot/usermgmt/pkg/logger"
)

// NewSender picks the provider for cfg:
//   - SendRealMail=false: DevSender writing to cfg.DevDir
//   - Postmark tokens set: Postmark
//   - otherwise: SMTP
func NewSender(cfg Config, log *slog.Logger) (EmailSender, error) {
	if log == nil {
		log = slog.New(slog.DiscardHandler)
	}

	switch {
	case !cfg.SendRealMail:
		log.Info("real mail disabled, capturing emails on disk", slog.String("dir", cfg.DevDir))
		return NewDevSender(cfg.DevDir, WithDevLogger(log)), nil
	case cfg.Postmark.enabled():
		return NewPostmarkClient(cfg.Postmark)
	default:
		sender, err := NewSMTPSender(cfg.SMTP, WithLogger(log))
		if err != nil {
			return nil, fmt.Errorf("smtp sender: %w", err)
		}
		log.Info("smtp sender configured", logger.Component("smtp"), slog.String("addr", cfg.SMTP.Addr()))
		return sender, nil
	}
}
