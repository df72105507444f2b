package httpapi

import (
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/google/uuid"

	"github.com/dmitrymomot/usermgmt/internal/user"
	"github.com/dmitrymomot/usermgmt/pkg/logger"
)

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type loginResponse struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
	ExpiresIn   int64  `json:"expires_in"`
}

type userMessage struct {
	Message string     `json:"message"`
	User    *user.User `json:"user,omitempty"`
}

type pictureURLResponse struct {
	URL string `json:"url"`
}

func (a *API) register(w http.ResponseWriter, r *http.Request) {
	var in user.RegisterInput
	if err := decodeJSON(w, r, &in); err != nil {
		a.writeError(w, r, err)
		return
	}

	u, err := a.users.Register(r.Context(), in)
	if err != nil {
		// The account exists even when the verification email failed.
		if u != nil && errors.Is(err, user.ErrNotificationFailed) {
			a.log.ErrorContext(r.Context(), "verification email not sent",
				logger.RequestID(middleware.GetReqID(r.Context())),
				logger.Error(err),
			)
			writeJSON(w, http.StatusBadGateway, userMessage{
				Message: message(http.StatusBadGateway, err),
				User:    u,
			})
			return
		}
		a.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, u)
}

func (a *API) login(w http.ResponseWriter, r *http.Request) {
	var in loginRequest
	if err := decodeJSON(w, r, &in); err != nil {
		a.writeError(w, r, err)
		return
	}

	token, _, err := a.users.Login(r.Context(), in.Email, in.Password)
	if err != nil {
		a.writeError(w, r, err)
		return
	}

	resp := loginResponse{AccessToken: token, TokenType: "bearer"}
	if a.tokens != nil {
		resp.ExpiresIn = int64(a.tokens.TTL().Seconds())
	}
	writeJSON(w, http.StatusOK, resp)
}

func (a *API) verifyEmail(w http.ResponseWriter, r *http.Request) {
	id, err := userID(r)
	if err != nil {
		a.writeError(w, r, err)
		return
	}

	u, err := a.users.VerifyEmail(r.Context(), id, chi.URLParam(r, "token"))
	if err != nil {
		a.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, userMessage{Message: "Email verified successfully.", User: u})
}

func (a *API) listUsers(w http.ResponseWriter, r *http.Request) {
	limit, err := queryInt(r, "limit", 0)
	if err != nil {
		a.writeError(w, r, err)
		return
	}
	offset, err := queryInt(r, "offset", 0)
	if err != nil {
		a.writeError(w, r, err)
		return
	}

	page, err := a.users.List(r.Context(), limit, offset)
	if err != nil {
		a.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, page)
}

func (a *API) getUser(w http.ResponseWriter, r *http.Request) {
	id, err := userID(r)
	if err != nil {
		a.writeError(w, r, err)
		return
	}

	u, err := a.users.Get(r.Context(), id)
	if err != nil {
		a.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, u)
}

func (a *API) updateUser(w http.ResponseWriter, r *http.Request) {
	id, err := userID(r)
	if err != nil {
		a.writeError(w, r, err)
		return
	}
	var in user.UpdateInput
	if err := decodeJSON(w, r, &in); err != nil {
		a.writeError(w, r, err)
		return
	}

	u, err := a.users.Update(r.Context(), id, in)
	if err != nil {
		a.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, u)
}

func (a *API) deleteUser(w http.ResponseWriter, r *http.Request) {
	id, err := userID(r)
	if err != nil {
		a.writeError(w, r, err)
		return
	}

	if err := a.users.Delete(r.Context(), id); err != nil {
		a.writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (a *API) unlockUser(w http.ResponseWriter, r *http.Request) {
	id, err := userID(r)
	if err != nil {
		a.writeError(w, r, err)
		return
	}

	u, err := a.users.Unlock(r.Context(), id)
	if err != nil {
		a.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, u)
}

// uploadProfilePicture streams the "file" part of a multipart body straight
// into storage without buffering it to disk.
func (a *API) uploadProfilePicture(w http.ResponseWriter, r *http.Request) {
	id, err := userID(r)
	if err != nil {
		a.writeError(w, r, err)
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, a.cfg.MaxUploadBytes)
	mr, err := r.MultipartReader()
	if err != nil {
		if errors.Is(err, http.ErrNotMultipart) {
			a.writeError(w, r, fmt.Errorf("%w: expected multipart/form-data", ErrUnsupportedMediaType))
			return
		}
		a.writeError(w, r, fmt.Errorf("%w: %v", ErrMissingFile, err))
		return
	}

	for {
		part, err := mr.NextPart()
		if errors.Is(err, io.EOF) {
			a.writeError(w, r, ErrMissingFile)
			return
		}
		if err != nil {
			var maxBytes *http.MaxBytesError
			if errors.As(err, &maxBytes) {
				a.writeError(w, r, err)
				return
			}
			a.writeError(w, r, fmt.Errorf("%w: %v", ErrMissingFile, err))
			return
		}
		if part.FormName() != "file" || part.FileName() == "" {
			_ = part.Close()
			continue
		}

		u, err := a.users.UploadProfilePicture(r.Context(), id, part, part.FileName())
		_ = part.Close()
		if err != nil {
			a.writeError(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, u)
		return
	}
}

func (a *API) profilePictureURL(w http.ResponseWriter, r *http.Request) {
	id, err := userID(r)
	if err != nil {
		a.writeError(w, r, err)
		return
	}

	url, err := a.users.ProfilePictureURL(r.Context(), id)
	if err != nil {
		a.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, pictureURLResponse{URL: url})
}

func userID(r *http.Request) (uuid.UUID, error) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		return uuid.Nil, fmt.Errorf("%w: %v", ErrInvalidID, err)
	}
	return id, nil
}

func queryInt(r *http.Request, key string, def int) (int, error) {
	raw := r.URL.Query().Get(key)
	if raw == "" {
		return def, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n < 0 {
		return 0, fmt.Errorf("%w: %s must be a non-negative integer", ErrInvalidQuery, key)
	}
	return n, nil
}
