package httpapi

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5/middleware"

	"github.com/dmitrymomot/usermgmt/internal/auth"
	"github.com/dmitrymomot/usermgmt/internal/user"
	"github.com/dmitrymomot/usermgmt/pkg/logger"
	"github.com/dmitrymomot/usermgmt/pkg/ratelimiter"
	"github.com/dmitrymomot/usermgmt/pkg/storage"
	"github.com/dmitrymomot/usermgmt/pkg/validator"
)

// Request-level errors raised by the handlers themselves.
var (
	ErrInvalidJSON          = errors.New("invalid JSON body")
	ErrUnsupportedMediaType = errors.New("unsupported media type")
	ErrInvalidID            = errors.New("invalid user id")
	ErrInvalidQuery         = errors.New("invalid query parameter")
	ErrMissingFile          = errors.New("multipart field \"file\" is required")
)

const internalErrorMessage = "An unexpected error occurred."

// HTTPError pairs a status code with the message sent to the client.
type HTTPError struct {
	Code    int
	Message string
}

func (e HTTPError) Error() string { return e.Message }

type errorResponse struct {
	Message string              `json:"message"`
	Errors  map[string][]string `json:"errors,omitempty"`
}

// classify maps domain errors to a status code. Unknown errors are 500.
func classify(err error) int {
	var httpErr HTTPError
	var maxBytes *http.MaxBytesError
	switch {
	case errors.As(err, &httpErr):
		return httpErr.Code

	case errors.Is(err, user.ErrNotificationFailed):
		return http.StatusBadGateway

	case errors.Is(err, validator.ErrValidationFailed),
		errors.Is(err, ErrInvalidJSON),
		errors.Is(err, ErrInvalidID),
		errors.Is(err, ErrInvalidQuery),
		errors.Is(err, ErrMissingFile),
		errors.Is(err, user.ErrInvalidToken),
		errors.Is(err, auth.ErrPasswordTooShort),
		errors.Is(err, auth.ErrPasswordTooLong),
		errors.Is(err, storage.ErrUnsupportedFileType),
		errors.Is(err, storage.ErrInvalidObjectKey):
		return http.StatusBadRequest

	case errors.Is(err, ErrUnsupportedMediaType):
		return http.StatusUnsupportedMediaType

	case errors.Is(err, user.ErrInvalidCredentials),
		errors.Is(err, auth.ErrMissingToken),
		errors.Is(err, auth.ErrInvalidToken),
		errors.Is(err, auth.ErrExpiredToken):
		return http.StatusUnauthorized

	case errors.Is(err, user.ErrAccountLocked),
		errors.Is(err, user.ErrEmailNotVerified),
		errors.Is(err, auth.ErrForbidden):
		return http.StatusForbidden

	case errors.Is(err, user.ErrNotFound),
		errors.Is(err, user.ErrNoProfilePicture),
		errors.Is(err, storage.ErrObjectNotFound):
		return http.StatusNotFound

	case errors.Is(err, user.ErrEmailTaken),
		errors.Is(err, user.ErrNicknameTaken):
		return http.StatusConflict

	case errors.Is(err, storage.ErrFileTooLarge),
		errors.As(err, &maxBytes):
		return http.StatusRequestEntityTooLarge

	case errors.Is(err, ratelimiter.ErrLimited):
		return http.StatusTooManyRequests
	}
	return http.StatusInternalServerError
}

// message returns the client-facing text for err. Server errors never leak
// their cause.
func message(code int, err error) string {
	var httpErr HTTPError
	switch {
	case code >= http.StatusInternalServerError && code != http.StatusBadGateway:
		return internalErrorMessage
	case errors.As(err, &httpErr):
		return httpErr.Message
	case code == http.StatusBadGateway:
		return "The request was processed but the notification email could not be sent."
	case code == http.StatusRequestEntityTooLarge:
		return storage.ErrFileTooLarge.Error()
	case errors.Is(err, validator.ErrValidationFailed):
		return validator.ErrValidationFailed.Error()
	case errors.Is(err, user.ErrInvalidCredentials):
		return "Incorrect email or password."
	case errors.Is(err, user.ErrAccountLocked):
		return "Account locked due to too many failed login attempts."
	}
	return rootMessage(err)
}

// rootMessage returns the text of the first sentinel the error wraps, so
// details like SQL or SDK messages stay in the logs.
func rootMessage(err error) string {
	for _, sentinel := range []error{
		ErrInvalidJSON, ErrUnsupportedMediaType, ErrInvalidID, ErrInvalidQuery, ErrMissingFile,
		user.ErrInvalidToken, user.ErrEmailNotVerified, user.ErrNotFound, user.ErrNoProfilePicture,
		user.ErrEmailTaken, user.ErrNicknameTaken,
		auth.ErrMissingToken, auth.ErrInvalidToken, auth.ErrExpiredToken, auth.ErrForbidden,
		auth.ErrPasswordTooShort, auth.ErrPasswordTooLong,
		storage.ErrUnsupportedFileType, storage.ErrInvalidObjectKey, storage.ErrObjectNotFound,
		ratelimiter.ErrLimited,
	} {
		if errors.Is(err, sentinel) {
			return sentinel.Error()
		}
	}
	return http.StatusText(classify(err))
}

// writeError renders err as JSON and logs server-side failures.
func (a *API) writeError(w http.ResponseWriter, r *http.Request, err error) {
	code := classify(err)
	resp := errorResponse{Message: message(code, err)}
	if ve := validator.ExtractValidationErrors(err); ve != nil {
		resp.Errors = ve.Fields()
	}

	level := slog.LevelDebug
	if code >= http.StatusInternalServerError {
		level = slog.LevelError
	}
	a.log.Log(r.Context(), level, "request failed",
		slog.Int("status", code),
		logger.RequestID(middleware.GetReqID(r.Context())),
		logger.Error(err),
	)

	if code == http.StatusUnauthorized {
		w.Header().Set("WWW-Authenticate", "Bearer")
	}
	writeJSON(w, code, resp)
}

func (a *API) rateLimited(w http.ResponseWriter, r *http.Request, _ ratelimiter.Result) {
	a.writeError(w, r, ratelimiter.ErrLimited)
}
