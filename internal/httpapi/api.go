package httpapi

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"net/netip"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/google/uuid"

	"github.com/dmitrymomot/usermgmt/internal/auth"
	"github.com/dmitrymomot/usermgmt/internal/user"
	"github.com/dmitrymomot/usermgmt/pkg/httpserver"
	"github.com/dmitrymomot/usermgmt/pkg/logger"
	"github.com/dmitrymomot/usermgmt/pkg/ratelimiter"
)

// UserService is the subset of *user.Service the API calls.
type UserService interface {
	Register(ctx context.Context, in user.RegisterInput) (*user.User, error)
	VerifyEmail(ctx context.Context, id uuid.UUID, token string) (*user.User, error)
	Login(ctx context.Context, email, password string) (string, *user.User, error)
	Get(ctx context.Context, id uuid.UUID) (*user.User, error)
	List(ctx context.Context, limit, offset int) (*user.Page, error)
	Update(ctx context.Context, id uuid.UUID, in user.UpdateInput) (*user.User, error)
	Delete(ctx context.Context, id uuid.UUID) error
	Unlock(ctx context.Context, id uuid.UUID) (*user.User, error)
	UploadProfilePicture(ctx context.Context, id uuid.UUID, r io.Reader, fileName string) (*user.User, error)
	ProfilePictureURL(ctx context.Context, id uuid.UUID) (string, error)
}

// Config tunes the HTTP layer.
type Config struct {
	// MaxUploadBytes caps the whole multipart request for picture uploads.
	MaxUploadBytes int64         `env:"HTTP_MAX_UPLOAD_BYTES" envDefault:"11534336"`
	RequestTimeout time.Duration `env:"HTTP_REQUEST_TIMEOUT" envDefault:"30s"`
	// TrustedProxies are the CIDRs whose X-Forwarded-For and X-Real-IP
	// headers are believed. Empty means the socket address is always used.
	TrustedProxies []netip.Prefix `env:"HTTP_TRUSTED_PROXIES" envSeparator:","`
}

// Deps are the API collaborators. Users and Tokens are required.
type Deps struct {
	Users          UserService
	Tokens         *auth.TokenIssuer
	Logger         *slog.Logger
	Ready          []httpserver.Check
	Metrics        func(http.Handler) http.Handler
	MetricsHandler http.Handler
	// AuthLimiter throttles /register and /login per client IP.
	AuthLimiter *ratelimiter.Limiter
}

// API serves the user management endpoints.
type API struct {
	cfg    Config
	users  UserService
	tokens *auth.TokenIssuer
	log    *slog.Logger
}

// NewRouter builds the chi router with every route and middleware.
func NewRouter(cfg Config, deps Deps) http.Handler {
	if deps.Logger == nil {
		deps.Logger = slog.New(slog.DiscardHandler)
	}
	if cfg.MaxUploadBytes <= 0 {
		cfg.MaxUploadBytes = 11 << 20
	}
	a := &API{
		cfg:    cfg,
		users:  deps.Users,
		tokens: deps.Tokens,
		log:    deps.Logger.With(logger.Component("httpapi")),
	}

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(ratelimiter.RealIP(cfg.TrustedProxies))
	r.Use(a.requestLogger)
	r.Use(a.recoverer)
	r.Use(corsHandler())
	if deps.Metrics != nil {
		r.Use(deps.Metrics)
	}
	if cfg.RequestTimeout > 0 {
		r.Use(middleware.Timeout(cfg.RequestTimeout))
	}

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusNotFound, errorResponse{Message: "Not Found"})
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusMethodNotAllowed, errorResponse{Message: "Method Not Allowed"})
	})

	r.Get("/healthz", httpserver.HealthCheckHandler(a.log, 0))
	r.Get("/readyz", httpserver.HealthCheckHandler(a.log, 5*time.Second, deps.Ready...))
	if deps.MetricsHandler != nil {
		r.Method(http.MethodGet, "/metrics", deps.MetricsHandler)
	}

	r.Group(func(r chi.Router) {
		if deps.AuthLimiter != nil {
			r.Use(ratelimiter.Middleware(deps.AuthLimiter, ratelimiter.ClientIP, a.rateLimited))
		}
		r.Post("/register", a.register)
		r.Post("/login", a.login)
	})
	r.Get("/verify-email/{id}/{token}", a.verifyEmail)

	r.Group(func(r chi.Router) {
		r.Use(auth.Middleware(deps.Tokens, a.writeError))

		r.Get("/users", a.listUsers)
		r.Route("/users/{id}", func(r chi.Router) {
			r.Get("/", a.getUser)
			r.Get("/profile-picture", a.profilePictureURL)
			r.With(a.requireAdmin).Post("/unlock", a.unlockUser)

			r.Group(func(r chi.Router) {
				r.Use(a.requireOwner)
				r.Put("/", a.updateUser)
				r.Delete("/", a.deleteUser)
				r.Post("/profile-picture", a.uploadProfilePicture)
			})
		})
	})

	return r
}
