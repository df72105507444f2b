// Package config assembles the service configuration from the environment.
package config

import (
	"errors"

	"github.com/dmitrymomot/usermgmt/internal/auth"
	"github.com/dmitrymomot/usermgmt/internal/httpapi"
	"github.com/dmitrymomot/usermgmt/internal/user"
	"github.com/dmitrymomot/usermgmt/pkg/config"
	"github.com/dmitrymomot/usermgmt/pkg/email"
	"github.com/dmitrymomot/usermgmt/pkg/httpserver"
	"github.com/dmitrymomot/usermgmt/pkg/pg"
	"github.com/dmitrymomot/usermgmt/pkg/ratelimiter"
	"github.com/dmitrymomot/usermgmt/pkg/storage"
)

// ErrInvalid is returned when a loaded configuration fails Validate.
var ErrInvalid = errors.New("invalid configuration")

// App is the full service configuration. Nested structs carry their own
// env tags; none of them are prefixed.
type App struct {
	Env          string `env:"APP_ENV" envDefault:"development"`
	ServiceName  string `env:"SERVICE_NAME" envDefault:"usermgmt"`
	LogLevel     string `env:"LOG_LEVEL"`
	TemplatesDir string `env:"TEMPLATES_DIR"`

	HTTP      httpserver.Config
	API       httpapi.Config
	DB        pg.Config
	Email     email.Config
	Storage   storage.Config
	Auth      auth.Config
	User      user.Config
	RateLimit ratelimiter.Config
}

// Load reads the optional dotenv files and parses App from the environment.
func Load(envFiles ...string) (App, error) {
	if len(envFiles) > 0 {
		if err := config.LoadEnv(envFiles...); err != nil {
			return App{}, err
		}
	}

	var app App
	if err := config.Reload(&app); err != nil {
		return App{}, err
	}
	if err := app.Validate(); err != nil {
		return App{}, err
	}
	return app, nil
}

// Validate checks settings that env tags cannot express.
func (a App) Validate() error {
	var errs []error
	if a.DB.ConnectionString == "" {
		errs = append(errs, errors.New("PG_CONN_URL is required"))
	}
	if a.Auth.SecretKey == "" {
		errs = append(errs, errors.New("JWT_SECRET_KEY is required"))
	}
	if a.User.MaxLoginAttempts < 1 {
		errs = append(errs, errors.New("MAX_LOGIN_ATTEMPTS must be at least 1"))
	}
	if a.Storage.Bucket == "" {
		errs = append(errs, errors.New("MINIO_BUCKET_NAME is required"))
	}
	if len(errs) == 0 {
		return nil
	}
	return errors.Join(append([]error{ErrInvalid}, errs...)...)
}

// IsProduction reports whether the service runs in production.
func (a App) IsProduction() bool {
	return a.Env == "production" || a.Env == "prod"
}
