package main

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/spf13/cobra"

	"github.com/dmitrymomot/usermgmt/internal/auth"
	"github.com/dmitrymomot/usermgmt/internal/config"
	"github.com/dmitrymomot/usermgmt/internal/db/migrations"
	"github.com/dmitrymomot/usermgmt/internal/httpapi"
	"github.com/dmitrymomot/usermgmt/internal/metrics"
	"github.com/dmitrymomot/usermgmt/internal/user"
	"github.com/dmitrymomot/usermgmt/pkg/email"
	"github.com/dmitrymomot/usermgmt/pkg/httpserver"
	"github.com/dmitrymomot/usermgmt/pkg/logger"
	"github.com/dmitrymomot/usermgmt/pkg/mailtemplate"
	"github.com/dmitrymomot/usermgmt/pkg/pg"
	"github.com/dmitrymomot/usermgmt/pkg/ratelimiter"
	"github.com/dmitrymomot/usermgmt/pkg/storage"
	"github.com/dmitrymomot/usermgmt/templates"
)

func newServeCommand(flags *rootFlags) *cobra.Command {
	var skipMigrations bool

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, log, err := loadApp(flags)
			if err != nil {
				return err
			}
			return serve(cmd.Context(), cfg, log, !skipMigrations)
		},
	}
	cmd.Flags().BoolVar(&skipMigrations, "skip-migrations", false, "do not apply pending migrations on start")
	return cmd
}

func serve(ctx context.Context, cfg config.App, log *slog.Logger, migrate bool) error {
	start := time.Now()

	pool, err := pg.Connect(ctx, cfg.DB)
	if err != nil {
		return err
	}
	defer pool.Close()

	if migrate {
		if err := pg.Migrate(ctx, pool, cfg.DB, migrations.FS, pg.MigrateUp, log); err != nil {
			return err
		}
	}

	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	m, err := metrics.New(reg)
	if err != nil {
		return err
	}
	if err := m.RegisterPool(pool); err != nil {
		return err
	}

	pictures, err := storage.New(ctx, cfg.Storage, storage.WithLogger(log))
	if err != nil {
		return err
	}
	pictures.EnsureBucket(ctx)

	mailer, err := email.NewSender(cfg.Email, log)
	if err != nil {
		return err
	}

	tokens, err := auth.NewTokenIssuer(cfg.Auth)
	if err != nil {
		return err
	}

	svc, err := user.NewService(cfg.User, user.Deps{
		Store:     user.NewPgStore(pool),
		Templates: newComposer(cfg.TemplatesDir),
		Mailer:    mailer,
		Pictures:  pictures,
		Passwords: auth.NewHasher(0),
		Tokens:    tokens,
	}, user.WithLogger(log), user.WithObserver(m))
	if err != nil {
		return err
	}

	limiter, err := ratelimiter.New(cfg.RateLimit)
	if err != nil {
		return err
	}
	defer limiter.Close()

	router := httpapi.NewRouter(cfg.API, httpapi.Deps{
		Users:  svc,
		Tokens: tokens,
		Logger: log,
		Ready: []httpserver.Check{
			{Name: "postgres", Fn: pg.Healthcheck(pool)},
		},
		Metrics:        m.Middleware,
		MetricsHandler: metrics.Handler(reg),
		AuthLimiter:    limiter,
	})

	srv := httpserver.NewFromConfig(cfg.HTTP,
		httpserver.WithLogger(log),
		httpserver.WithStartHook(func(ctx context.Context, addr string) {
			log.InfoContext(ctx, "listening", slog.String("addr", addr), slog.String("env", cfg.Env))
		}),
		httpserver.WithStopHook(func(ctx context.Context, _ string) {
			log.InfoContext(ctx, "stopped", logger.Duration(time.Since(start)))
		}),
	)
	if err := srv.Run(ctx, router); err != nil {
		return fmt.Errorf("http server: %w", err)
	}
	return nil
}

// newComposer reads templates from dir when set, otherwise from the
// embedded defaults.
func newComposer(dir string) *mailtemplate.Composer {
	if dir != "" {
		return mailtemplate.New(mailtemplate.DirSource(dir))
	}
	return mailtemplate.New(mailtemplate.FSSource(templates.FS))
}
