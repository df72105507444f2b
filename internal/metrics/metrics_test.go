package metrics_test

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/usermgmt/internal/metrics"
)

func TestCounters(t *testing.T) {
	t.Parallel()

	reg := prometheus.NewRegistry()
	m, err := metrics.New(reg)
	require.NoError(t, err)

	m.EmailSent("email_verification", nil)
	m.EmailSent("email_verification", errors.New("smtp down"))
	m.ProfileUpload(nil)

	expected := `
# HELP usermgmt_emails_sent_total Emails dispatched, by template and result.
# TYPE usermgmt_emails_sent_total counter
usermgmt_emails_sent_total{result="failure",template="email_verification"} 1
usermgmt_emails_sent_total{result="success",template="email_verification"} 1
`
	assert.NoError(t, testutil.GatherAndCompare(reg, strings.NewReader(expected), "usermgmt_emails_sent_total"))

	uploads := `
# HELP usermgmt_profile_uploads_total Profile picture uploads, by result.
# TYPE usermgmt_profile_uploads_total counter
usermgmt_profile_uploads_total{result="success"} 1
`
	assert.NoError(t, testutil.GatherAndCompare(reg, strings.NewReader(uploads), "usermgmt_profile_uploads_total"))
}

func TestNew_SameRegistryTwice(t *testing.T) {
	t.Parallel()

	reg := prometheus.NewRegistry()
	a, err := metrics.New(reg)
	require.NoError(t, err)
	b, err := metrics.New(reg)
	require.NoError(t, err)

	a.ProfileUpload(nil)
	b.ProfileUpload(nil)

	n, err := testutil.GatherAndCount(reg, "usermgmt_profile_uploads_total")
	require.NoError(t, err)
	assert.Equal(t, 1, n)
}

func TestMiddleware_UsesRoutePattern(t *testing.T) {
	t.Parallel()

	reg := prometheus.NewRegistry()
	m, err := metrics.New(reg)
	require.NoError(t, err)

	r := chi.NewRouter()
	r.Use(m.Middleware)
	r.Get("/users/{id}", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	})

	for _, id := range []string{"a", "b"} {
		r.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/users/"+id, nil))
	}

	expected := `
# HELP usermgmt_http_requests_total HTTP requests, by method, route pattern and status.
# TYPE usermgmt_http_requests_total counter
usermgmt_http_requests_total{method="GET",route="/users/{id}",status="404"} 2
`
	assert.NoError(t, testutil.GatherAndCompare(reg, strings.NewReader(expected), "usermgmt_http_requests_total"))

	rec := httptest.NewRecorder()
	metrics.Handler(reg).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "usermgmt_http_request_duration_seconds")
}
