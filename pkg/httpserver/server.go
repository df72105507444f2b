package httpserver

import (
	"context"
	"errors"
	"log/slog"
	"net"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/dmitrymomot/usermgmt/pkg/logger"
)

type settings struct {
	addr              string
	readTimeout       time.Duration
	readHeaderTimeout time.Duration
	writeTimeout      time.Duration
	idleTimeout       time.Duration
	shutdownTimeout   time.Duration
	log               *slog.Logger
	startHooks        []Hook
	stopHooks         []Hook
}

// Server runs an http.Server until its context is canceled, SIGINT/SIGTERM
// arrives or Shutdown is called, then drains connections.
type Server struct {
	cfg settings

	mu       sync.Mutex
	srv      *http.Server
	addr     string
	stopOnce sync.Once
	stopErr  error
}

// New returns a Server with defaults (":8080", 5s shutdown) overridden by opts.
func New(opts ...Option) *Server {
	cfg := settings{
		addr:              ":8080",
		readHeaderTimeout: 10 * time.Second,
		shutdownTimeout:   5 * time.Second,
		log:               slog.New(slog.DiscardHandler),
	}
	for _, opt := range opts {
		opt(&cfg)
	}
	cfg.log = cfg.log.With(logger.Component("httpserver"))
	return &Server{cfg: cfg}
}

// Addr returns the bound address while the server is running.
func (s *Server) Addr() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.addr
}

// Run listens and serves handler, blocking until the server stops.
// A clean shutdown returns nil; listen or serve failures are joined with ErrStart.
func (s *Server) Run(ctx context.Context, handler http.Handler) error {
	if handler == nil {
		handler = http.NotFoundHandler()
	}

	s.mu.Lock()
	if s.srv != nil {
		s.mu.Unlock()
		return errors.Join(ErrStart, ErrAlreadyRunning)
	}
	ln, err := net.Listen("tcp", s.cfg.addr)
	if err != nil {
		s.mu.Unlock()
		return errors.Join(ErrStart, err)
	}
	srv := &http.Server{
		Handler:           handler,
		ReadTimeout:       s.cfg.readTimeout,
		ReadHeaderTimeout: s.cfg.readHeaderTimeout,
		WriteTimeout:      s.cfg.writeTimeout,
		IdleTimeout:       s.cfg.idleTimeout,
		ErrorLog:          slog.NewLogLogger(s.cfg.log.Handler(), slog.LevelWarn),
	}
	s.srv = srv
	s.addr = ln.Addr().String()
	s.mu.Unlock()

	s.cfg.log.InfoContext(ctx, "http server listening", slog.String("addr", s.addr))
	for _, h := range s.cfg.startHooks {
		h(ctx, s.addr)
	}

	errCh := make(chan error, 1)
	go func() { errCh <- srv.Serve(ln) }()

	sigCtx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	var serveErr error
	select {
	case <-sigCtx.Done():
		if err := s.Shutdown(context.WithoutCancel(ctx)); err != nil {
			s.cfg.log.ErrorContext(ctx, "graceful shutdown failed", logger.Error(err))
		}
		serveErr = <-errCh
	case serveErr = <-errCh:
	}

	if serveErr != nil && !errors.Is(serveErr, http.ErrServerClosed) {
		return errors.Join(ErrStart, serveErr)
	}
	return nil
}

// Shutdown drains the server within the shutdown timeout. Repeated calls
// return the first result; calling it before Run is a no-op.
func (s *Server) Shutdown(ctx context.Context) error {
	s.mu.Lock()
	srv := s.srv
	addr := s.addr
	s.mu.Unlock()
	if srv == nil {
		return nil
	}

	s.stopOnce.Do(func() {
		ctx, cancel := context.WithTimeout(ctx, s.cfg.shutdownTimeout)
		defer cancel()

		if err := srv.Shutdown(ctx); err != nil && !errors.Is(err, http.ErrServerClosed) {
			s.stopErr = errors.Join(ErrShutdown, err)
		}
		s.cfg.log.InfoContext(ctx, "http server stopped", slog.String("addr", addr))
		for _, h := range s.cfg.stopHooks {
			h(ctx, addr)
		}
	})
	return s.stopErr
}
