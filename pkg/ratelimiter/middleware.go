package ratelimiter

import (
	"net"
	"net/http"
	"strconv"
	"time"
)

// KeyFunc extracts the bucket key from a request.
type KeyFunc func(r *http.Request) string

// ClientIP keys requests by the host part of RemoteAddr. Run it behind
// RealIP when the service sits behind a proxy.
func ClientIP(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}

// LimitedFunc writes the response for a rejected request.
type LimitedFunc func(w http.ResponseWriter, r *http.Request, res Result)

// Middleware rejects requests once their bucket is empty. It always sets
// the X-RateLimit-* headers. A nil onLimited responds with plain 429.
func Middleware(l *Limiter, key KeyFunc, onLimited LimitedFunc) func(http.Handler) http.Handler {
	if key == nil {
		key = ClientIP
	}
	if onLimited == nil {
		onLimited = func(w http.ResponseWriter, _ *http.Request, _ Result) {
			http.Error(w, http.StatusText(http.StatusTooManyRequests), http.StatusTooManyRequests)
		}
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			res := l.Allow(key(r))

			h := w.Header()
			h.Set("X-RateLimit-Limit", strconv.Itoa(res.Limit))
			h.Set("X-RateLimit-Remaining", strconv.Itoa(max(0, res.Remaining)))
			h.Set("X-RateLimit-Reset", strconv.FormatInt(res.ResetAt.Unix(), 10))

			if !res.Allowed() {
				retry := res.RetryAfter(l.now())
				h.Set("Retry-After", strconv.Itoa(int((retry+time.Second-1)/time.Second)))
				onLimited(w, r, res)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
