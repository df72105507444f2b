package email

import (
	"strconv"
	"time"
)

// Config selects and configures the outbound email provider.
// With SendRealMail disabled, emails are written to DevDir instead of being sent.
type Config struct {
	SendRealMail bool   `env:"SEND_REAL_MAIL" envDefault:"false"`
	DevDir       string `env:"DEV_MAIL_DIR" envDefault:"tmp/emails"`

	SMTP     SMTPConfig
	Postmark PostmarkConfig
}

// SMTPConfig holds the SMTP relay settings used by SMTPSender.
type SMTPConfig struct {
	Server             string        `env:"SMTP_SERVER" envDefault:"smtp.mailtrap.io"`
	Port               int           `env:"SMTP_PORT" envDefault:"2525"`
	Username           string        `env:"SMTP_USERNAME"`
	Password           string        `env:"SMTP_PASSWORD"`
	Sender             string        `env:"SMTP_SENDER"` // Falls back to Username
	Timeout            time.Duration `env:"SMTP_TIMEOUT" envDefault:"10s"`
	InsecureSkipVerify bool          `env:"SMTP_INSECURE_SKIP_VERIFY" envDefault:"false"`
}

// Addr returns host:port of the SMTP server.
func (c SMTPConfig) Addr() string {
	return c.Server + ":" + strconv.Itoa(c.Port)
}

func (c SMTPConfig) from() string {
	if c.Sender != "" {
		return c.Sender
	}
	return c.Username
}

// PostmarkConfig holds Postmark API credentials.
// Tokens are optional; Postmark is used only when both are set.
type PostmarkConfig struct {
	ServerToken  string `env:"POSTMARK_SERVER_TOKEN"`
	AccountToken string `env:"POSTMARK_ACCOUNT_TOKEN"`
	SenderEmail  string `env:"SENDER_EMAIL"`
	SupportEmail string `env:"SUPPORT_EMAIL"`
}

func (c PostmarkConfig) enabled() bool {
	return c.ServerToken != "" && c.AccountToken != ""
}
