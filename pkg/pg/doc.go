// Package pg wires PostgreSQL into the service using pgx/v5.
//
// Connect opens a *pgxpool.Pool from Config (PG_* environment variables) and
// retries while the database is still starting. Migrate runs goose commands
// (up, down, status) from an fs.FS, normally the embedded SQL files in
// internal/db/migrations. Healthcheck returns a readiness probe, and the
// Is*Error helpers classify *pgconn.PgError values so stores can map them to
// domain errors.
//
//	pool, err := pg.Connect(ctx, cfg)
//	if err != nil {
//		return err
//	}
//	defer pool.Close()
//
//	if err := pg.Migrate(ctx, pool, cfg, migrations.FS, pg.MigrateUp, log); err != nil {
//		return err
//	}
package pg
