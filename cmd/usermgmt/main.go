// Command usermgmt runs the user management service.
package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/go-chi/chi/v5/middleware"
	"github.com/spf13/cobra"

	"github.com/dmitrymomot/usermgmt/internal/config"
	"github.com/dmitrymomot/usermgmt/pkg/logger"
)

func main() {
	if err := newRootCommand(os.Stdout).ExecuteContext(context.Background()); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

type rootFlags struct {
	envFiles []string
}

func newRootCommand(out io.Writer) *cobra.Command {
	flags := &rootFlags{}

	root := &cobra.Command{
		Use:           "usermgmt",
		Short:         "User management service",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.SetOut(out)
	root.PersistentFlags().StringSliceVar(&flags.envFiles, "env-file", nil, "dotenv files to load before reading the environment")

	root.AddCommand(
		newServeCommand(flags),
		newMigrateCommand(flags),
		newRenderCommand(),
	)
	return root
}

// loadApp loads configuration and builds the process logger from it.
func loadApp(flags *rootFlags) (config.App, *slog.Logger, error) {
	cfg, err := config.Load(flags.envFiles...)
	if err != nil {
		return config.App{}, nil, err
	}

	opts := []logger.Option{
		logger.WithEnvironment(cfg.Env, cfg.ServiceName),
		logger.WithContextValue("request_id", middleware.RequestIDKey),
	}
	if cfg.LogLevel != "" {
		opts = append(opts, logger.WithLevelName(cfg.LogLevel))
	}
	log := logger.New(opts...)
	logger.SetAsDefault(log)
	return cfg, log, nil
}
