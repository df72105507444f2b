package user

import (
	"context"
	"crypto/rand"
	"crypto/subtle"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/dmitrymomot/usermgmt/internal/auth"
	"github.com/dmitrymomot/usermgmt/pkg/email"
	"github.com/dmitrymomot/usermgmt/pkg/logger"
	"github.com/dmitrymomot/usermgmt/pkg/mailtemplate"
	"github.com/dmitrymomot/usermgmt/pkg/randomname"
	"github.com/dmitrymomot/usermgmt/pkg/validator"
)

// Email templates sent by the service.
const (
	TemplateEmailVerification = "email_verification"
	TemplateAccountVerified   = "account_verified"
	TemplateAccountLocked     = "account_locked"
	TemplateAccountUnlocked   = "account_unlocked"
)

const (
	DefaultPageSize = 10
	MaxPageSize     = 100
)

// Config holds the account policy settings.
type Config struct {
	MaxLoginAttempts int    `env:"MAX_LOGIN_ATTEMPTS" envDefault:"3"`
	BaseURL          string `env:"SERVER_BASE_URL" envDefault:"http://localhost"`
}

// Renderer composes an email from a named template.
type Renderer interface {
	RenderMessage(name string, vars map[string]any) (mailtemplate.Message, error)
}

// PictureStorage stores profile pictures. *storage.Storage implements it.
type PictureStorage interface {
	UploadProfilePicture(ctx context.Context, r io.Reader, fileName string) (string, error)
	ProfilePictureURL(ctx context.Context, fileName string) (string, error)
}

// PasswordHasher is implemented by auth.Hasher.
type PasswordHasher interface {
	Hash(password string) (string, error)
	Check(hash, password string) error
}

// TokenIssuer is implemented by *auth.TokenIssuer.
type TokenIssuer interface {
	Issue(userID uuid.UUID, email string) (string, error)
}

// Observer receives outcome events, typically for metrics.
type Observer interface {
	EmailSent(template string, err error)
	ProfileUpload(err error)
}

type noopObserver struct{}

func (noopObserver) EmailSent(string, error) {}
func (noopObserver) ProfileUpload(error)     {}

// Deps are the collaborators of Service. All of them are required.
type Deps struct {
	Store     Store
	Templates Renderer
	Mailer    email.EmailSender
	Pictures  PictureStorage
	Passwords PasswordHasher
	Tokens    TokenIssuer
}

// Service implements account registration, login and profile management.
type Service struct {
	cfg      Config
	deps     Deps
	names    *randomname.Generator
	observer Observer
	log      *slog.Logger
	now      func() time.Time
}

// Option configures Service.
type Option func(*Service)

func WithLogger(l *slog.Logger) Option {
	return func(s *Service) {
		if l != nil {
			s.log = l
		}
	}
}

func WithObserver(o Observer) Option {
	return func(s *Service) {
		if o != nil {
			s.observer = o
		}
	}
}

func WithClock(now func() time.Time) Option {
	return func(s *Service) {
		if now != nil {
			s.now = now
		}
	}
}

func WithNameGenerator(g *randomname.Generator) Option {
	return func(s *Service) {
		if g != nil {
			s.names = g
		}
	}
}

// NewService checks deps and returns a Service.
func NewService(cfg Config, deps Deps, opts ...Option) (*Service, error) {
	switch {
	case deps.Store == nil:
		return nil, errors.New("user: store is required")
	case deps.Templates == nil:
		return nil, errors.New("user: template renderer is required")
	case deps.Mailer == nil:
		return nil, errors.New("user: mailer is required")
	case deps.Pictures == nil:
		return nil, errors.New("user: picture storage is required")
	case deps.Passwords == nil:
		return nil, errors.New("user: password hasher is required")
	case deps.Tokens == nil:
		return nil, errors.New("user: token issuer is required")
	}
	if cfg.MaxLoginAttempts <= 0 {
		cfg.MaxLoginAttempts = 3
	}
	cfg.BaseURL = strings.TrimSuffix(cfg.BaseURL, "/")

	s := &Service{
		cfg:      cfg,
		deps:     deps,
		names:    randomname.New(),
		observer: noopObserver{},
		log:      slog.New(slog.DiscardHandler),
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	s.log = s.log.With(logger.Component("user"))
	return s, nil
}

// Register creates an unverified account and emails the verification link.
// When the email cannot be sent the user is still stored; the returned error
// wraps ErrNotificationFailed alongside the created user.
func (s *Service) Register(ctx context.Context, in RegisterInput) (*User, error) {
	in.Email = normalizeEmail(in.Email)
	in.Nickname = strings.TrimSpace(in.Nickname)

	if err := validator.Apply(
		validator.ValidEmail("email", in.Email),
		validator.MinLen("password", in.Password, auth.MinPasswordLength),
		validator.MaxLen("password", in.Password, auth.MaxPasswordLength),
		validator.When(in.Nickname != "",
			validator.Nickname("nickname", in.Nickname),
			validator.MinLen("nickname", in.Nickname, 3),
			validator.MaxLen("nickname", in.Nickname, 50),
		),
		validator.MaxLen("first_name", in.FirstName, 100),
		validator.MaxLen("last_name", in.LastName, 100),
		validator.MaxLen("bio", in.Bio, 500),
	); err != nil {
		return nil, err
	}

	if _, err := s.deps.Store.GetByEmail(ctx, in.Email); err == nil {
		return nil, ErrEmailTaken
	} else if !errors.Is(err, ErrNotFound) {
		return nil, fmt.Errorf("check email: %w", err)
	}

	hash, err := s.deps.Passwords.Hash(in.Password)
	if err != nil {
		return nil, err
	}

	nickname := in.Nickname
	if nickname == "" {
		nickname, err = s.names.Generate(ctx, func(ctx context.Context, name string) (bool, error) {
			taken, err := s.deps.Store.NicknameExists(ctx, name)
			return !taken, err
		})
		if err != nil {
			return nil, fmt.Errorf("generate nickname: %w", err)
		}
	}

	now := s.now().UTC()
	u := &User{
		ID:                uuid.New(),
		Email:             in.Email,
		Nickname:          nickname,
		FirstName:         strings.TrimSpace(in.FirstName),
		LastName:          strings.TrimSpace(in.LastName),
		Bio:               in.Bio,
		PasswordHash:      hash,
		VerificationToken: rand.Text(),
		CreatedAt:         now,
		UpdatedAt:         now,
	}
	if err := s.deps.Store.Create(ctx, u); err != nil {
		return nil, err
	}
	s.log.InfoContext(ctx, "user registered", logger.UserID(u.ID.String()))

	if err := s.notify(ctx, u, TemplateEmailVerification, map[string]any{
		"verification_url": s.VerificationURL(u),
	}); err != nil {
		return u, err
	}
	return u, nil
}

// VerificationURL is the link mailed to a new user.
func (s *Service) VerificationURL(u *User) string {
	return fmt.Sprintf("%s/verify-email/%s/%s", s.cfg.BaseURL, u.ID, u.VerificationToken)
}

// VerifyEmail marks the email verified when token matches the stored one.
// The confirmation email is best-effort.
func (s *Service) VerifyEmail(ctx context.Context, id uuid.UUID, token string) (*User, error) {
	u, err := s.deps.Store.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if u.VerificationToken == "" || subtle.ConstantTimeCompare([]byte(u.VerificationToken), []byte(token)) != 1 {
		return nil, ErrInvalidToken
	}

	u.EmailVerified = true
	u.VerificationToken = ""
	u.UpdatedAt = s.now().UTC()
	if err := s.deps.Store.Update(ctx, u); err != nil {
		return nil, err
	}

	s.notifyBestEffort(ctx, u, TemplateAccountVerified)
	return u, nil
}

// Login checks credentials and returns a signed access token. Each wrong
// password counts towards MaxLoginAttempts; reaching it locks the account
// and sends the account_locked email.
func (s *Service) Login(ctx context.Context, emailAddr, password string) (string, *User, error) {
	u, err := s.deps.Store.GetByEmail(ctx, normalizeEmail(emailAddr))
	if errors.Is(err, ErrNotFound) {
		return "", nil, ErrInvalidCredentials
	}
	if err != nil {
		return "", nil, err
	}
	if u.IsLocked {
		return "", nil, ErrAccountLocked
	}

	if err := s.deps.Passwords.Check(u.PasswordHash, password); err != nil {
		if !errors.Is(err, auth.ErrPasswordMismatch) {
			return "", nil, err
		}
		return "", nil, s.recordFailedLogin(ctx, u.ID)
	}

	if !u.EmailVerified {
		return "", nil, ErrEmailNotVerified
	}

	u, err = s.deps.Store.RecordLogin(ctx, u.ID, s.now().UTC())
	if errors.Is(err, ErrNotFound) {
		return "", nil, ErrAccountLocked
	}
	if err != nil {
		return "", nil, err
	}

	token, err := s.deps.Tokens.Issue(u.ID, u.Email)
	if err != nil {
		return "", nil, err
	}
	s.log.InfoContext(ctx, "user logged in", logger.UserID(u.ID.String()))
	return token, u, nil
}

// recordFailedLogin counts a wrong password. Only the attempt whose write
// flips the lock sends the account_locked email; attempts racing past it
// find the row locked.
func (s *Service) recordFailedLogin(ctx context.Context, id uuid.UUID) error {
	u, err := s.deps.Store.RecordFailedLogin(ctx, id, s.cfg.MaxLoginAttempts, s.now().UTC())
	if errors.Is(err, ErrNotFound) {
		return ErrAccountLocked
	}
	if err != nil {
		return err
	}
	if !u.IsLocked {
		return ErrInvalidCredentials
	}

	s.log.WarnContext(ctx, "account locked", logger.UserID(u.ID.String()),
		slog.Int("failed_attempts", u.FailedLoginCount))
	s.notifyBestEffort(ctx, u, TemplateAccountLocked)
	return ErrAccountLocked
}

// Get returns a user by id.
func (s *Service) Get(ctx context.Context, id uuid.UUID) (*User, error) {
	return s.deps.Store.GetByID(ctx, id)
}

// List returns a page of users. limit is clamped to [1, MaxPageSize],
// defaulting to DefaultPageSize; a negative offset is treated as 0.
func (s *Service) List(ctx context.Context, limit, offset int) (*Page, error) {
	if limit <= 0 {
		limit = DefaultPageSize
	}
	limit = min(limit, MaxPageSize)
	offset = max(offset, 0)

	users, total, err := s.deps.Store.List(ctx, limit, offset)
	if err != nil {
		return nil, err
	}
	return &Page{Users: users, Total: total, Limit: limit, Offset: offset}, nil
}

// Update applies the non-nil fields of in.
func (s *Service) Update(ctx context.Context, id uuid.UUID, in UpdateInput) (*User, error) {
	var rules []validator.Rule
	if in.Nickname != nil {
		*in.Nickname = strings.TrimSpace(*in.Nickname)
		rules = append(rules,
			validator.Nickname("nickname", *in.Nickname),
			validator.MinLen("nickname", *in.Nickname, 3),
			validator.MaxLen("nickname", *in.Nickname, 50),
		)
	}
	if in.FirstName != nil {
		rules = append(rules, validator.MaxLen("first_name", *in.FirstName, 100))
	}
	if in.LastName != nil {
		rules = append(rules, validator.MaxLen("last_name", *in.LastName, 100))
	}
	if in.Bio != nil {
		rules = append(rules, validator.MaxLen("bio", *in.Bio, 500))
	}
	if err := validator.Apply(rules...); err != nil {
		return nil, err
	}

	u, err := s.deps.Store.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if in.Nickname != nil {
		u.Nickname = *in.Nickname
	}
	if in.FirstName != nil {
		u.FirstName = strings.TrimSpace(*in.FirstName)
	}
	if in.LastName != nil {
		u.LastName = strings.TrimSpace(*in.LastName)
	}
	if in.Bio != nil {
		u.Bio = *in.Bio
	}
	u.UpdatedAt = s.now().UTC()

	if err := s.deps.Store.Update(ctx, u); err != nil {
		return nil, err
	}
	return u, nil
}

// Delete removes a user.
func (s *Service) Delete(ctx context.Context, id uuid.UUID) error {
	if err := s.deps.Store.Delete(ctx, id); err != nil {
		return err
	}
	s.log.InfoContext(ctx, "user deleted", logger.UserID(id.String()))
	return nil
}

// Unlock clears the lock and the failed login counter, then sends the
// account_unlocked email (best-effort).
func (s *Service) Unlock(ctx context.Context, id uuid.UUID) (*User, error) {
	u, wasLocked, err := s.deps.Store.Unlock(ctx, id, s.now().UTC())
	if err != nil {
		return nil, err
	}
	if wasLocked {
		s.log.InfoContext(ctx, "account unlocked", logger.UserID(u.ID.String()))
		s.notifyBestEffort(ctx, u, TemplateAccountUnlocked)
	}
	return u, nil
}

// UploadProfilePicture stores the picture under "<user-id>-<uuid>.<ext>"
// and records its URL on the user.
func (s *Service) UploadProfilePicture(ctx context.Context, id uuid.UUID, r io.Reader, fileName string) (*User, error) {
	u, err := s.deps.Store.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	ext := strings.ToLower(fileName[strings.LastIndex(fileName, ".")+1:])
	key := fmt.Sprintf("%s-%s.%s", u.ID, uuid.New(), ext)

	url, err := s.deps.Pictures.UploadProfilePicture(ctx, r, key)
	s.observer.ProfileUpload(err)
	if err != nil {
		return nil, err
	}

	u.ProfilePictureURL = url
	u.ProfilePictureKey = key
	u.UpdatedAt = s.now().UTC()
	if err := s.deps.Store.Update(ctx, u); err != nil {
		return nil, err
	}
	s.log.InfoContext(ctx, "profile picture updated", logger.UserID(u.ID.String()), logger.ObjectKey(key))
	return u, nil
}

// ProfilePictureURL returns a presigned URL for the user's current picture.
func (s *Service) ProfilePictureURL(ctx context.Context, id uuid.UUID) (string, error) {
	u, err := s.deps.Store.GetByID(ctx, id)
	if err != nil {
		return "", err
	}
	if u.ProfilePictureKey == "" {
		return "", ErrNoProfilePicture
	}
	return s.deps.Pictures.ProfilePictureURL(ctx, u.ProfilePictureKey)
}

// notify renders template for u and sends it. vars are merged over the
// defaults ({name}, {email}). The defaults come from user input and are
// escaped so they render as plain text.
func (s *Service) notify(ctx context.Context, u *User, template string, vars map[string]any) error {
	data := map[string]any{
		"name":  mailtemplate.EscapeMarkdown(u.DisplayName()),
		"email": mailtemplate.EscapeMarkdown(u.Email),
	}
	for k, v := range vars {
		data[k] = v
	}

	err := s.send(ctx, u.Email, template, data)
	s.observer.EmailSent(template, err)
	if err != nil {
		s.log.ErrorContext(ctx, "notification failed",
			logger.UserID(u.ID.String()), logger.Template(template), logger.Error(err))
		return errors.Join(ErrNotificationFailed, err)
	}
	return nil
}

func (s *Service) notifyBestEffort(ctx context.Context, u *User, template string) {
	_ = s.notify(ctx, u, template, nil)
}

func (s *Service) send(ctx context.Context, to, template string, data map[string]any) error {
	msg, err := s.deps.Templates.RenderMessage(template, data)
	if err != nil {
		return err
	}
	subject := mailtemplate.UnescapeMarkdown(msg.Subject)
	if subject == "" {
		subject = defaultSubject(template)
	}
	return s.deps.Mailer.SendEmail(ctx, email.SendEmailParams{
		SendTo:   to,
		Subject:  subject,
		BodyHTML: msg.HTML,
		Tag:      template,
	})
}

func defaultSubject(template string) string {
	switch template {
	case TemplateEmailVerification:
		return "Verify Your Account"
	case TemplateAccountVerified:
		return "Your Account Is Verified"
	case TemplateAccountLocked:
		return "Your Account Has Been Locked"
	case TemplateAccountUnlocked:
		return "Your Account Has Been Unlocked"
	}
	return strings.ReplaceAll(template, "_", " ")
}

func normalizeEmail(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}
