// Package httpserver runs the API's http.Server with graceful shutdown.
//
// Run binds the listener first (so Addr is known to start hooks), serves
// until the context ends, SIGINT/SIGTERM arrives or Shutdown is called, and
// then drains in-flight requests within the shutdown timeout.
//
//	srv := httpserver.NewFromConfig(cfg, httpserver.WithLogger(log))
//	if err := srv.Run(ctx, router); err != nil {
//		log.Error("server failed", logger.Error(err))
//	}
//
// HealthCheckHandler builds /healthz (liveness) and /readyz (readiness)
// endpoints from named dependency checks.
package httpserver
