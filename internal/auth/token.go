package auth

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// Config holds the access token settings.
type Config struct {
	SecretKey         string        `env:"JWT_SECRET_KEY" envDefault:"a_very_secret_key"`
	AccessTokenExpire time.Duration `env:"ACCESS_TOKEN_EXPIRE" envDefault:"15m"`
	Issuer            string        `env:"JWT_ISSUER" envDefault:"usermgmt"`
	// AdminEmails get the admin claim when a token is issued for them.
	AdminEmails []string `env:"ADMIN_EMAILS" envSeparator:","`
}

// Claims are the access token claims. Subject carries the user id.
type Claims struct {
	Email string `json:"email,omitempty"`
	Admin bool   `json:"admin,omitempty"`
	jwt.RegisteredClaims
}

// CanManage reports whether the token holder may modify the account id:
// admins manage every account, users only their own.
func (c Claims) CanManage(id uuid.UUID) bool {
	return c.Admin || c.Subject == id.String()
}

// UserID parses the subject as a user id.
func (c Claims) UserID() (uuid.UUID, error) {
	id, err := uuid.Parse(c.Subject)
	if err != nil {
		return uuid.Nil, errors.Join(ErrInvalidToken, err)
	}
	return id, nil
}

// TokenIssuer signs and verifies HS256 access tokens.
type TokenIssuer struct {
	secret []byte
	ttl    time.Duration
	issuer string
	admins map[string]struct{}
	now    func() time.Time
}

// TokenOption configures a TokenIssuer.
type TokenOption func(*TokenIssuer)

// WithClock overrides the time source used for issuing and validating.
func WithClock(now func() time.Time) TokenOption {
	return func(t *TokenIssuer) {
		if now != nil {
			t.now = now
		}
	}
}

// NewTokenIssuer validates cfg and returns a TokenIssuer.
func NewTokenIssuer(cfg Config, opts ...TokenOption) (*TokenIssuer, error) {
	if cfg.SecretKey == "" {
		return nil, ErrMissingSecret
	}
	ttl := cfg.AccessTokenExpire
	if ttl <= 0 {
		ttl = 15 * time.Minute
	}
	t := &TokenIssuer{
		secret: []byte(cfg.SecretKey),
		ttl:    ttl,
		issuer: cfg.Issuer,
		admins: make(map[string]struct{}, len(cfg.AdminEmails)),
		now:    time.Now,
	}
	for _, addr := range cfg.AdminEmails {
		if addr = strings.ToLower(strings.TrimSpace(addr)); addr != "" {
			t.admins[addr] = struct{}{}
		}
	}
	for _, opt := range opts {
		opt(t)
	}
	return t, nil
}

// TTL returns the access token lifetime.
func (t *TokenIssuer) TTL() time.Duration { return t.ttl }

// Issue returns a signed access token for the user.
func (t *TokenIssuer) Issue(userID uuid.UUID, email string) (string, error) {
	now := t.now()
	_, admin := t.admins[strings.ToLower(email)]
	claims := Claims{
		Email: email,
		Admin: admin,
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        uuid.NewString(),
			Subject:   userID.String(),
			Issuer:    t.issuer,
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(t.ttl)),
		},
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(t.secret)
	if err != nil {
		return "", fmt.Errorf("sign token: %w", err)
	}
	return signed, nil
}

// Parse verifies the signature, algorithm and time claims of token.
func (t *TokenIssuer) Parse(token string) (*Claims, error) {
	opts := []jwt.ParserOption{
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithTimeFunc(t.now),
		jwt.WithExpirationRequired(),
	}
	if t.issuer != "" {
		opts = append(opts, jwt.WithIssuer(t.issuer))
	}

	claims := &Claims{}
	_, err := jwt.ParseWithClaims(token, claims, func(*jwt.Token) (any, error) {
		return t.secret, nil
	}, opts...)
	switch {
	case err == nil:
		return claims, nil
	case errors.Is(err, jwt.ErrTokenExpired):
		return nil, errors.Join(ErrExpiredToken, err)
	default:
		return nil, errors.Join(ErrInvalidToken, err)
	}
}
