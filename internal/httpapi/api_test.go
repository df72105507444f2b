package httpapi_test

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/usermgmt/internal/auth"
	"github.com/dmitrymomot/usermgmt/internal/httpapi"
	"github.com/dmitrymomot/usermgmt/internal/user"
	"github.com/dmitrymomot/usermgmt/pkg/httpserver"
	"github.com/dmitrymomot/usermgmt/pkg/ratelimiter"
	"github.com/dmitrymomot/usermgmt/pkg/storage"
	"github.com/dmitrymomot/usermgmt/pkg/validator"
)

type mockUsers struct {
	mock.Mock
}

func (m *mockUsers) Register(ctx context.Context, in user.RegisterInput) (*user.User, error) {
	args := m.Called(ctx, in)
	u, _ := args.Get(0).(*user.User)
	return u, args.Error(1)
}

func (m *mockUsers) VerifyEmail(ctx context.Context, id uuid.UUID, token string) (*user.User, error) {
	args := m.Called(ctx, id, token)
	u, _ := args.Get(0).(*user.User)
	return u, args.Error(1)
}

func (m *mockUsers) Login(ctx context.Context, email, password string) (string, *user.User, error) {
	args := m.Called(ctx, email, password)
	u, _ := args.Get(1).(*user.User)
	return args.String(0), u, args.Error(2)
}

func (m *mockUsers) Get(ctx context.Context, id uuid.UUID) (*user.User, error) {
	args := m.Called(ctx, id)
	u, _ := args.Get(0).(*user.User)
	return u, args.Error(1)
}

func (m *mockUsers) List(ctx context.Context, limit, offset int) (*user.Page, error) {
	args := m.Called(ctx, limit, offset)
	p, _ := args.Get(0).(*user.Page)
	return p, args.Error(1)
}

func (m *mockUsers) Update(ctx context.Context, id uuid.UUID, in user.UpdateInput) (*user.User, error) {
	args := m.Called(ctx, id, in)
	u, _ := args.Get(0).(*user.User)
	return u, args.Error(1)
}

func (m *mockUsers) Delete(ctx context.Context, id uuid.UUID) error {
	return m.Called(ctx, id).Error(0)
}

func (m *mockUsers) Unlock(ctx context.Context, id uuid.UUID) (*user.User, error) {
	args := m.Called(ctx, id)
	u, _ := args.Get(0).(*user.User)
	return u, args.Error(1)
}

func (m *mockUsers) UploadProfilePicture(ctx context.Context, id uuid.UUID, r io.Reader, fileName string) (*user.User, error) {
	// Drain the part so the handler sees the same stream a real store would.
	data, _ := io.ReadAll(r)
	args := m.Called(ctx, id, string(data), fileName)
	u, _ := args.Get(0).(*user.User)
	return u, args.Error(1)
}

func (m *mockUsers) ProfilePictureURL(ctx context.Context, id uuid.UUID) (string, error) {
	args := m.Called(ctx, id)
	return args.String(0), args.Error(1)
}

type harness struct {
	users   *mockUsers
	handler http.Handler
	tokens  *auth.TokenIssuer
	token   string
}

func newHarness(t *testing.T, cfg httpapi.Config, ready ...httpserver.Check) *harness {
	t.Helper()

	tokens, err := auth.NewTokenIssuer(auth.Config{
		SecretKey:         "test-secret",
		AccessTokenExpire: time.Hour,
		AdminEmails:       []string{"admin@example.com"},
	})
	require.NoError(t, err)
	token, err := tokens.Issue(uuid.New(), "admin@example.com")
	require.NoError(t, err)

	users := &mockUsers{}
	t.Cleanup(func() { users.AssertExpectations(t) })

	return &harness{
		users: users,
		handler: httpapi.NewRouter(cfg, httpapi.Deps{
			Users:  users,
			Tokens: tokens,
			Ready:  ready,
		}),
		tokens: tokens,
		token:  token,
	}
}

func (h *harness) do(req *http.Request) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	h.handler.ServeHTTP(rec, req)
	return rec
}

func (h *harness) authed(req *http.Request) *http.Request {
	req.Header.Set("Authorization", "Bearer "+h.token)
	return req
}

func (h *harness) as(t *testing.T, req *http.Request, id uuid.UUID, addr string) *http.Request {
	t.Helper()
	token, err := h.tokens.Issue(id, addr)
	require.NoError(t, err)
	req.Header.Set("Authorization", "Bearer "+token)
	return req
}

func jsonRequest(method, target, body string) *http.Request {
	req := httptest.NewRequest(method, target, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	return req
}

func decode(t *testing.T, rec *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var body map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body), rec.Body.String())
	return body
}

func multipartBody(t *testing.T, field, fileName string, content []byte) (*bytes.Buffer, string) {
	t.Helper()
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	require.NoError(t, mw.WriteField("note", "ignored"))
	if field != "" {
		fw, err := mw.CreateFormFile(field, fileName)
		require.NoError(t, err)
		_, err = fw.Write(content)
		require.NoError(t, err)
	}
	require.NoError(t, mw.Close())
	return &buf, mw.FormDataContentType()
}

func TestRegister(t *testing.T) {
	t.Parallel()

	in := user.RegisterInput{Email: "ann@example.com", Password: "password123"}
	body := `{"email":"ann@example.com","password":"password123"}`

	t.Run("created", func(t *testing.T) {
		t.Parallel()
		h := newHarness(t, httpapi.Config{})
		h.users.On("Register", mock.Anything, in).
			Return(&user.User{ID: uuid.New(), Email: in.Email, Nickname: "brave_otter_042"}, nil).Once()

		rec := h.do(jsonRequest(http.MethodPost, "/register", body))
		assert.Equal(t, http.StatusCreated, rec.Code)
		got := decode(t, rec)
		assert.Equal(t, "ann@example.com", got["email"])
		assert.Equal(t, "brave_otter_042", got["nickname"])
		assert.NotContains(t, got, "password_hash")
	})

	t.Run("notification failure keeps the user", func(t *testing.T) {
		t.Parallel()
		h := newHarness(t, httpapi.Config{})
		h.users.On("Register", mock.Anything, in).
			Return(&user.User{ID: uuid.New(), Email: in.Email}, errors.Join(user.ErrNotificationFailed, errors.New("dial tcp: refused"))).Once()

		rec := h.do(jsonRequest(http.MethodPost, "/register", body))
		assert.Equal(t, http.StatusBadGateway, rec.Code)
		got := decode(t, rec)
		assert.NotContains(t, got["message"], "refused")
		require.IsType(t, map[string]any{}, got["user"])
		assert.Equal(t, in.Email, got["user"].(map[string]any)["email"])
	})

	t.Run("validation errors", func(t *testing.T) {
		t.Parallel()
		h := newHarness(t, httpapi.Config{})
		verr := validator.ValidationErrors{{Field: "email", Message: "must be a valid email address"}}
		h.users.On("Register", mock.Anything, mock.Anything).Return(nil, verr).Once()

		rec := h.do(jsonRequest(http.MethodPost, "/register", `{"email":"nope","password":"password123"}`))
		assert.Equal(t, http.StatusBadRequest, rec.Code)
		got := decode(t, rec)
		assert.Equal(t, map[string]any{"email": []any{"must be a valid email address"}}, got["errors"])
	})

	t.Run("email taken", func(t *testing.T) {
		t.Parallel()
		h := newHarness(t, httpapi.Config{})
		h.users.On("Register", mock.Anything, in).Return(nil, user.ErrEmailTaken).Once()

		rec := h.do(jsonRequest(http.MethodPost, "/register", body))
		assert.Equal(t, http.StatusConflict, rec.Code)
		assert.Equal(t, user.ErrEmailTaken.Error(), decode(t, rec)["message"])
	})

	t.Run("rejects non-json body", func(t *testing.T) {
		t.Parallel()
		h := newHarness(t, httpapi.Config{})
		req := httptest.NewRequest(http.MethodPost, "/register", strings.NewReader(body))
		req.Header.Set("Content-Type", "text/plain")

		assert.Equal(t, http.StatusUnsupportedMediaType, h.do(req).Code)
	})

	t.Run("rejects unknown fields", func(t *testing.T) {
		t.Parallel()
		h := newHarness(t, httpapi.Config{})
		rec := h.do(jsonRequest(http.MethodPost, "/register", `{"email":"a@b.co","role":"admin"}`))
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})
}

func TestLogin(t *testing.T) {
	t.Parallel()

	body := `{"email":"ann@example.com","password":"password123"}`

	t.Run("issues token", func(t *testing.T) {
		t.Parallel()
		h := newHarness(t, httpapi.Config{})
		h.users.On("Login", mock.Anything, "ann@example.com", "password123").
			Return("signed.jwt.token", &user.User{ID: uuid.New()}, nil).Once()

		rec := h.do(jsonRequest(http.MethodPost, "/login", body))
		require.Equal(t, http.StatusOK, rec.Code)
		got := decode(t, rec)
		assert.Equal(t, "signed.jwt.token", got["access_token"])
		assert.Equal(t, "bearer", got["token_type"])
		assert.InDelta(t, 3600, got["expires_in"], 0)
	})

	tests := []struct {
		name string
		err  error
		code int
	}{
		{"invalid credentials", user.ErrInvalidCredentials, http.StatusUnauthorized},
		{"locked", user.ErrAccountLocked, http.StatusForbidden},
		{"unverified", user.ErrEmailNotVerified, http.StatusForbidden},
		{"unexpected", errors.New("pq: connection reset"), http.StatusInternalServerError},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			h := newHarness(t, httpapi.Config{})
			h.users.On("Login", mock.Anything, mock.Anything, mock.Anything).Return("", nil, tt.err).Once()

			rec := h.do(jsonRequest(http.MethodPost, "/login", body))
			assert.Equal(t, tt.code, rec.Code)
			msg := decode(t, rec)["message"]
			assert.NotEmpty(t, msg)
			assert.NotContains(t, msg, "pq:")
			if tt.code == http.StatusUnauthorized {
				assert.Equal(t, "Bearer", rec.Header().Get("WWW-Authenticate"))
			}
		})
	}
}

func TestVerifyEmail(t *testing.T) {
	t.Parallel()

	id := uuid.New()

	t.Run("verified", func(t *testing.T) {
		t.Parallel()
		h := newHarness(t, httpapi.Config{})
		h.users.On("VerifyEmail", mock.Anything, id, "tok").
			Return(&user.User{ID: id, EmailVerified: true}, nil).Once()

		rec := h.do(httptest.NewRequest(http.MethodGet, "/verify-email/"+id.String()+"/tok", nil))
		require.Equal(t, http.StatusOK, rec.Code)
		got := decode(t, rec)
		assert.Equal(t, true, got["user"].(map[string]any)["email_verified"])
	})

	t.Run("wrong token", func(t *testing.T) {
		t.Parallel()
		h := newHarness(t, httpapi.Config{})
		h.users.On("VerifyEmail", mock.Anything, id, "bad").Return(nil, user.ErrInvalidToken).Once()

		rec := h.do(httptest.NewRequest(http.MethodGet, "/verify-email/"+id.String()+"/bad", nil))
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("malformed id", func(t *testing.T) {
		t.Parallel()
		h := newHarness(t, httpapi.Config{})
		rec := h.do(httptest.NewRequest(http.MethodGet, "/verify-email/42/tok", nil))
		assert.Equal(t, http.StatusBadRequest, rec.Code)
		assert.Equal(t, httpapi.ErrInvalidID.Error(), decode(t, rec)["message"])
	})
}

func TestProtectedRoutes_RequireToken(t *testing.T) {
	t.Parallel()

	h := newHarness(t, httpapi.Config{})
	for _, req := range []*http.Request{
		httptest.NewRequest(http.MethodGet, "/users", nil),
		httptest.NewRequest(http.MethodDelete, "/users/"+uuid.NewString(), nil),
		httptest.NewRequest(http.MethodGet, "/users/"+uuid.NewString()+"/profile-picture", nil),
	} {
		rec := h.do(req)
		assert.Equal(t, http.StatusUnauthorized, rec.Code, req.URL.Path)
	}

	req := httptest.NewRequest(http.MethodGet, "/users", nil)
	req.Header.Set("Authorization", "Bearer not-a-jwt")
	assert.Equal(t, http.StatusUnauthorized, h.do(req).Code)
}

func TestUsersCRUD(t *testing.T) {
	t.Parallel()

	id := uuid.New()

	t.Run("list passes paging", func(t *testing.T) {
		t.Parallel()
		h := newHarness(t, httpapi.Config{})
		h.users.On("List", mock.Anything, 5, 10).
			Return(&user.Page{Users: []*user.User{{ID: id}}, Total: 11, Limit: 5, Offset: 10}, nil).Once()

		rec := h.do(h.authed(httptest.NewRequest(http.MethodGet, "/users?limit=5&offset=10", nil)))
		require.Equal(t, http.StatusOK, rec.Code)
		got := decode(t, rec)
		assert.InDelta(t, 11, got["total"], 0)
		assert.Len(t, got["items"], 1)
	})

	t.Run("list rejects bad paging", func(t *testing.T) {
		t.Parallel()
		h := newHarness(t, httpapi.Config{})
		rec := h.do(h.authed(httptest.NewRequest(http.MethodGet, "/users?limit=-1", nil)))
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("get not found", func(t *testing.T) {
		t.Parallel()
		h := newHarness(t, httpapi.Config{})
		h.users.On("Get", mock.Anything, id).Return(nil, user.ErrNotFound).Once()

		rec := h.do(h.authed(httptest.NewRequest(http.MethodGet, "/users/"+id.String(), nil)))
		assert.Equal(t, http.StatusNotFound, rec.Code)
	})

	t.Run("update", func(t *testing.T) {
		t.Parallel()
		h := newHarness(t, httpapi.Config{})
		bio := "hello"
		h.users.On("Update", mock.Anything, id, user.UpdateInput{Bio: &bio}).
			Return(&user.User{ID: id, Bio: bio}, nil).Once()

		rec := h.do(h.authed(jsonRequest(http.MethodPut, "/users/"+id.String(), `{"bio":"hello"}`)))
		require.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, "hello", decode(t, rec)["bio"])
	})

	t.Run("delete", func(t *testing.T) {
		t.Parallel()
		h := newHarness(t, httpapi.Config{})
		h.users.On("Delete", mock.Anything, id).Return(nil).Once()

		rec := h.do(h.authed(httptest.NewRequest(http.MethodDelete, "/users/"+id.String(), nil)))
		assert.Equal(t, http.StatusNoContent, rec.Code)
		assert.Empty(t, rec.Body.String())
	})

	t.Run("unlock", func(t *testing.T) {
		t.Parallel()
		h := newHarness(t, httpapi.Config{})
		h.users.On("Unlock", mock.Anything, id).Return(&user.User{ID: id}, nil).Once()

		rec := h.do(h.authed(httptest.NewRequest(http.MethodPost, "/users/"+id.String()+"/unlock", nil)))
		require.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, false, decode(t, rec)["is_locked"])
	})
}

func TestAccountAccess(t *testing.T) {
	t.Parallel()

	self := uuid.New()
	other := uuid.New()
	const addr = "jane@example.com"

	t.Run("other accounts are forbidden", func(t *testing.T) {
		t.Parallel()
		h := newHarness(t, httpapi.Config{})

		body, ct := multipartBody(t, "file", "me.png", []byte("PNGDATA"))
		upload := httptest.NewRequest(http.MethodPost, "/users/"+other.String()+"/profile-picture", body)
		upload.Header.Set("Content-Type", ct)

		for _, req := range []*http.Request{
			jsonRequest(http.MethodPut, "/users/"+other.String(), `{"bio":"pwned"}`),
			httptest.NewRequest(http.MethodDelete, "/users/"+other.String(), nil),
			httptest.NewRequest(http.MethodPost, "/users/"+other.String()+"/unlock", nil),
			upload,
		} {
			rec := h.do(h.as(t, req, self, addr))
			assert.Equal(t, http.StatusForbidden, rec.Code, req.Method+" "+req.URL.Path)
			assert.Equal(t, auth.ErrForbidden.Error(), decode(t, rec)["message"])
		}
	})

	t.Run("unlock requires admin even for own account", func(t *testing.T) {
		t.Parallel()
		h := newHarness(t, httpapi.Config{})
		req := httptest.NewRequest(http.MethodPost, "/users/"+self.String()+"/unlock", nil)
		assert.Equal(t, http.StatusForbidden, h.do(h.as(t, req, self, addr)).Code)
	})

	t.Run("own account is allowed", func(t *testing.T) {
		t.Parallel()
		h := newHarness(t, httpapi.Config{})
		h.users.On("Delete", mock.Anything, self).Return(nil).Once()

		req := httptest.NewRequest(http.MethodDelete, "/users/"+self.String(), nil)
		assert.Equal(t, http.StatusNoContent, h.do(h.as(t, req, self, addr)).Code)
	})

	t.Run("reading other accounts is allowed", func(t *testing.T) {
		t.Parallel()
		h := newHarness(t, httpapi.Config{})
		h.users.On("Get", mock.Anything, other).Return(&user.User{ID: other}, nil).Once()

		req := httptest.NewRequest(http.MethodGet, "/users/"+other.String(), nil)
		assert.Equal(t, http.StatusOK, h.do(h.as(t, req, self, addr)).Code)
	})
}

func TestProfilePicture(t *testing.T) {
	t.Parallel()

	id := uuid.New()
	target := "/users/" + id.String() + "/profile-picture"

	t.Run("upload streams the file part", func(t *testing.T) {
		t.Parallel()
		h := newHarness(t, httpapi.Config{})
		h.users.On("UploadProfilePicture", mock.Anything, id, "PNGDATA", "me.png").
			Return(&user.User{ID: id, ProfilePictureURL: "http://minio:9000/profile-pictures/x.png"}, nil).Once()

		body, ct := multipartBody(t, "file", "me.png", []byte("PNGDATA"))
		req := h.authed(httptest.NewRequest(http.MethodPost, target, body))
		req.Header.Set("Content-Type", ct)

		rec := h.do(req)
		require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
		assert.Equal(t, "http://minio:9000/profile-pictures/x.png", decode(t, rec)["profile_picture_url"])
	})

	t.Run("missing file part", func(t *testing.T) {
		t.Parallel()
		h := newHarness(t, httpapi.Config{})
		body, ct := multipartBody(t, "", "", nil)
		req := h.authed(httptest.NewRequest(http.MethodPost, target, body))
		req.Header.Set("Content-Type", ct)

		rec := h.do(req)
		assert.Equal(t, http.StatusBadRequest, rec.Code)
		assert.Equal(t, httpapi.ErrMissingFile.Error(), decode(t, rec)["message"])
	})

	t.Run("not multipart", func(t *testing.T) {
		t.Parallel()
		h := newHarness(t, httpapi.Config{})
		rec := h.do(h.authed(jsonRequest(http.MethodPost, target, `{}`)))
		assert.Equal(t, http.StatusUnsupportedMediaType, rec.Code)
	})

	t.Run("unsupported type", func(t *testing.T) {
		t.Parallel()
		h := newHarness(t, httpapi.Config{})
		h.users.On("UploadProfilePicture", mock.Anything, id, "%PDF", "cv.pdf").
			Return(nil, storage.ErrUnsupportedFileType).Once()

		body, ct := multipartBody(t, "file", "cv.pdf", []byte("%PDF"))
		req := h.authed(httptest.NewRequest(http.MethodPost, target, body))
		req.Header.Set("Content-Type", ct)

		assert.Equal(t, http.StatusBadRequest, h.do(req).Code)
	})

	t.Run("too large", func(t *testing.T) {
		t.Parallel()
		h := newHarness(t, httpapi.Config{})
		h.users.On("UploadProfilePicture", mock.Anything, id, mock.Anything, "big.jpg").
			Return(nil, storage.ErrFileTooLarge).Once()

		body, ct := multipartBody(t, "file", "big.jpg", bytes.Repeat([]byte{0xff}, 64))
		req := h.authed(httptest.NewRequest(http.MethodPost, target, body))
		req.Header.Set("Content-Type", ct)

		assert.Equal(t, http.StatusRequestEntityTooLarge, h.do(req).Code)
	})

	t.Run("presigned url", func(t *testing.T) {
		t.Parallel()
		h := newHarness(t, httpapi.Config{})
		h.users.On("ProfilePictureURL", mock.Anything, id).Return("https://signed.example/x", nil).Once()

		rec := h.do(h.authed(httptest.NewRequest(http.MethodGet, target, nil)))
		require.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, "https://signed.example/x", decode(t, rec)["url"])
	})

	t.Run("no picture", func(t *testing.T) {
		t.Parallel()
		h := newHarness(t, httpapi.Config{})
		h.users.On("ProfilePictureURL", mock.Anything, id).Return("", user.ErrNoProfilePicture).Once()

		rec := h.do(h.authed(httptest.NewRequest(http.MethodGet, target, nil)))
		assert.Equal(t, http.StatusNotFound, rec.Code)
	})
}

func TestHealthAndCORS(t *testing.T) {
	t.Parallel()

	h := newHarness(t, httpapi.Config{},
		httpserver.Check{Name: "postgres", Fn: func(context.Context) error { return errors.New("down") }},
	)

	assert.Equal(t, http.StatusOK, h.do(httptest.NewRequest(http.MethodGet, "/healthz", nil)).Code)
	assert.Equal(t, http.StatusServiceUnavailable, h.do(httptest.NewRequest(http.MethodGet, "/readyz", nil)).Code)

	req := httptest.NewRequest(http.MethodOptions, "/users", nil)
	req.Header.Set("Origin", "https://app.example")
	req.Header.Set("Access-Control-Request-Method", http.MethodGet)
	req.Header.Set("Access-Control-Request-Headers", "Authorization")
	rec := h.do(req)
	assert.Equal(t, http.StatusNoContent, rec.Code)
	assert.Equal(t, "*", rec.Header().Get("Access-Control-Allow-Origin"))
	assert.Equal(t, "Authorization", rec.Header().Get("Access-Control-Allow-Headers"))

	rec = h.do(httptest.NewRequest(http.MethodGet, "/nope", nil))
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.NotEmpty(t, rec.Header().Get("X-Request-Id"))
}

func TestAuthRoutes_RateLimited(t *testing.T) {
	t.Parallel()

	limiter, err := ratelimiter.New(ratelimiter.Config{Capacity: 2, RefillRate: 1, RefillInterval: time.Hour},
		ratelimiter.WithSweepInterval(0))
	require.NoError(t, err)
	t.Cleanup(limiter.Close)

	tokens, err := auth.NewTokenIssuer(auth.Config{SecretKey: "test-secret"})
	require.NoError(t, err)
	users := &mockUsers{}
	users.On("Login", mock.Anything, mock.Anything, mock.Anything).Return("", nil, user.ErrInvalidCredentials).Twice()
	t.Cleanup(func() { users.AssertExpectations(t) })

	handler := httpapi.NewRouter(httpapi.Config{}, httpapi.Deps{Users: users, Tokens: tokens, AuthLimiter: limiter})

	codes := make([]int, 0, 3)
	for i := range 3 {
		req := jsonRequest(http.MethodPost, "/login", `{"email":"a@b.co","password":"x"}`)
		req.RemoteAddr = "198.51.100.7:1234"
		// Forwarding headers from an untrusted peer do not change the bucket.
		req.Header.Set("X-Forwarded-For", "203.0.113."+strconv.Itoa(i))
		req.Header.Set("X-Real-IP", "192.0.2."+strconv.Itoa(i))
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)
		codes = append(codes, rec.Code)
		if rec.Code == http.StatusTooManyRequests {
			assert.Equal(t, ratelimiter.ErrLimited.Error(), decode(t, rec)["message"])
			assert.NotEmpty(t, rec.Header().Get("Retry-After"))
		}
	}
	assert.Equal(t, []int{http.StatusUnauthorized, http.StatusUnauthorized, http.StatusTooManyRequests}, codes)
}
