package httpserver

import (
	"context"
	"log/slog"
	"time"
)

// Option configures the Server.
type Option func(*settings)

// Hook runs on server lifecycle events. addr is the bound listen address.
type Hook func(ctx context.Context, addr string)

// WithAddr sets the listen address. An empty addr is ignored.
func WithAddr(addr string) Option {
	return func(s *settings) {
		if addr != "" {
			s.addr = addr
		}
	}
}

// WithReadTimeout sets http.Server.ReadTimeout.
func WithReadTimeout(d time.Duration) Option {
	return func(s *settings) { setIfPositive(&s.readTimeout, d) }
}

// WithWriteTimeout sets http.Server.WriteTimeout.
func WithWriteTimeout(d time.Duration) Option {
	return func(s *settings) { setIfPositive(&s.writeTimeout, d) }
}

// WithIdleTimeout sets http.Server.IdleTimeout.
func WithIdleTimeout(d time.Duration) Option {
	return func(s *settings) { setIfPositive(&s.idleTimeout, d) }
}

// WithShutdownTimeout bounds graceful shutdown.
func WithShutdownTimeout(d time.Duration) Option {
	return func(s *settings) { setIfPositive(&s.shutdownTimeout, d) }
}

// WithLogger sets the logger. Defaults to a discarding logger.
func WithLogger(l *slog.Logger) Option {
	return func(s *settings) {
		if l != nil {
			s.log = l
		}
	}
}

// WithStartHook registers a hook that runs once the listener is bound.
func WithStartHook(h Hook) Option {
	return func(s *settings) {
		if h != nil {
			s.startHooks = append(s.startHooks, h)
		}
	}
}

// WithStopHook registers a hook that runs after shutdown completes.
func WithStopHook(h Hook) Option {
	return func(s *settings) {
		if h != nil {
			s.stopHooks = append(s.stopHooks, h)
		}
	}
}
