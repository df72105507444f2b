// Package httpapi exposes the user service over JSON/HTTP.
//
// NewRouter wires a chi router with request ids, access logging, panic
// recovery, CORS and optional Prometheus instrumentation. Registration,
// login and email verification are public. Everything under /users
// requires a bearer access token issued by internal/auth.
//
// Domain errors are mapped to status codes in one place (errors.go).
// Server-side failures are logged with the request id and reported to the
// client with a generic message.
package httpapi
