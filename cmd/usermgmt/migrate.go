package main

import (
	"github.com/spf13/cobra"

	"github.com/dmitrymomot/usermgmt/internal/db/migrations"
	"github.com/dmitrymomot/usermgmt/pkg/pg"
)

func newMigrateCommand(flags *rootFlags) *cobra.Command {
	return &cobra.Command{
		Use:       "migrate [up|down|status]",
		Short:     "Apply, roll back or inspect database migrations",
		Args:      cobra.MatchAll(cobra.MaximumNArgs(1), cobra.OnlyValidArgs),
		ValidArgs: []string{pg.MigrateUp, pg.MigrateDown, pg.MigrateStatus},
		RunE: func(cmd *cobra.Command, args []string) error {
			command := pg.MigrateUp
			if len(args) == 1 {
				command = args[0]
			}

			cfg, log, err := loadApp(flags)
			if err != nil {
				return err
			}

			pool, err := pg.Connect(cmd.Context(), cfg.DB)
			if err != nil {
				return err
			}
			defer pool.Close()

			return pg.Migrate(cmd.Context(), pool, cfg.DB, migrations.FS, command, log)
		},
	}
}
