package httpapi

import (
	"fmt"
	"log/slog"
	"net/http"
	"runtime/debug"
	"time"

	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/dmitrymomot/usermgmt/internal/auth"
	"github.com/dmitrymomot/usermgmt/pkg/logger"
)

// corsHandler allows any origin, method and header, without credentials.
func corsHandler() func(http.Handler) http.Handler {
	return cors.Handler(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{
			http.MethodGet, http.MethodPost, http.MethodPut,
			http.MethodPatch, http.MethodDelete, http.MethodOptions,
		},
		AllowedHeaders:       []string{"*"},
		ExposedHeaders:       []string{middleware.RequestIDHeader},
		MaxAge:               600,
		OptionsSuccessStatus: http.StatusNoContent,
	})
}

// requireOwner lets the request through when the token holder owns the
// {id} account or is an admin.
func (a *API) requireOwner(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id, err := userID(r)
		if err != nil {
			a.writeError(w, r, err)
			return
		}
		claims, ok := auth.ClaimsFromContext(r.Context())
		if !ok {
			a.writeError(w, r, auth.ErrMissingToken)
			return
		}
		if !claims.CanManage(id) {
			a.writeError(w, r, auth.ErrForbidden)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// requireAdmin restricts a route to tokens carrying the admin claim.
func (a *API) requireAdmin(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		claims, ok := auth.ClaimsFromContext(r.Context())
		if !ok {
			a.writeError(w, r, auth.ErrMissingToken)
			return
		}
		if !claims.Admin {
			a.writeError(w, r, auth.ErrForbidden)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// requestLogger logs one line per request.
func (a *API) requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		w.Header().Set(middleware.RequestIDHeader, middleware.GetReqID(r.Context()))
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)

		status := ww.Status()
		if status == 0 {
			status = http.StatusOK
		}
		a.log.InfoContext(r.Context(), "http request",
			slog.String("method", r.Method),
			slog.String("path", r.URL.Path),
			slog.Int("status", status),
			slog.Int("bytes", ww.BytesWritten()),
			logger.Duration(time.Since(start)),
			logger.RequestID(middleware.GetReqID(r.Context())),
		)
	})
}

// recoverer turns panics into the generic 500 response.
func (a *API) recoverer(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			rec := recover()
			if rec == nil {
				return
			}
			if rec == http.ErrAbortHandler {
				panic(rec)
			}
			a.log.ErrorContext(r.Context(), "panic recovered",
				slog.String("panic", fmt.Sprint(rec)),
				slog.String("stack", string(debug.Stack())),
				logger.RequestID(middleware.GetReqID(r.Context())),
			)
			writeJSON(w, http.StatusInternalServerError, errorResponse{Message: internalErrorMessage})
		}()
		next.ServeHTTP(w, r)
	})
}
