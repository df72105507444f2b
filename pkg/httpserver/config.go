package httpserver

import "time"

// Config is the env-driven server configuration.
type Config struct {
	Addr              string        `env:"HTTP_ADDR" envDefault:":8080"`
	ReadTimeout       time.Duration `env:"HTTP_READ_TIMEOUT" envDefault:"30s"`
	ReadHeaderTimeout time.Duration `env:"HTTP_READ_HEADER_TIMEOUT" envDefault:"10s"`
	WriteTimeout      time.Duration `env:"HTTP_WRITE_TIMEOUT" envDefault:"30s"`
	IdleTimeout       time.Duration `env:"HTTP_IDLE_TIMEOUT" envDefault:"120s"`
	ShutdownTimeout   time.Duration `env:"HTTP_SHUTDOWN_TIMEOUT" envDefault:"5s"`
}

// NewFromConfig builds a Server from cfg. Zero values keep the defaults and
// opts are applied after cfg, so they win.
func NewFromConfig(cfg Config, opts ...Option) *Server {
	all := make([]Option, 0, len(opts)+1)
	all = append(all, func(s *settings) {
		if cfg.Addr != "" {
			s.addr = cfg.Addr
		}
		setIfPositive(&s.readTimeout, cfg.ReadTimeout)
		setIfPositive(&s.readHeaderTimeout, cfg.ReadHeaderTimeout)
		setIfPositive(&s.writeTimeout, cfg.WriteTimeout)
		setIfPositive(&s.idleTimeout, cfg.IdleTimeout)
		setIfPositive(&s.shutdownTimeout, cfg.ShutdownTimeout)
	})
	return New(append(all, opts...)...)
}

func setIfPositive(dst *time.Duration, v time.Duration) {
	if v > 0 {
		*dst = v
	}
}
