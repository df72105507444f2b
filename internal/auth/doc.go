// Package auth holds the credential primitives of the service: bcrypt
// password hashing, HS256 access tokens built on golang-jwt, and an HTTP
// middleware that requires a bearer token.
package auth
