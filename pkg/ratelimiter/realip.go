package ratelimiter

import (
	"net/http"
	"net/netip"
	"strings"
)

// RealIP replaces RemoteAddr with the client address reported by
// X-Forwarded-For or X-Real-IP. The headers are honoured only when the
// direct peer is inside one of the trusted prefixes; every other request
// keeps its socket address. With no trusted prefixes the middleware is a
// no-op.
func RealIP(trusted []netip.Prefix) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		if len(trusted) == 0 {
			return next
		}
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if ip, ok := forwardedClient(r, trusted); ok {
				r.RemoteAddr = ip
			}
			next.ServeHTTP(w, r)
		})
	}
}

// forwardedClient walks X-Forwarded-For from the right and returns the first
// hop that is not a trusted proxy, falling back to X-Real-IP.
func forwardedClient(r *http.Request, trusted []netip.Prefix) (string, bool) {
	peer, err := netip.ParseAddr(ClientIP(r))
	if err != nil || !isTrusted(peer, trusted) {
		return "", false
	}

	hops := strings.Split(strings.Join(r.Header.Values("X-Forwarded-For"), ","), ",")
	for i := len(hops) - 1; i >= 0; i-- {
		hop := strings.TrimSpace(hops[i])
		if hop == "" {
			continue
		}
		addr, err := netip.ParseAddr(hop)
		if err != nil {
			break
		}
		if !isTrusted(addr, trusted) {
			return addr.String(), true
		}
	}

	if addr, err := netip.ParseAddr(strings.TrimSpace(r.Header.Get("X-Real-IP"))); err == nil {
		return addr.String(), true
	}
	return "", false
}

func isTrusted(addr netip.Addr, trusted []netip.Prefix) bool {
	addr = addr.Unmap()
	for _, p := range trusted {
		if p.Contains(addr) {
			return true
		}
	}
	return false
}
