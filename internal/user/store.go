package user

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// Store persists users. Implementations return ErrNotFound for missing rows
// and ErrEmailTaken or ErrNicknameTaken for uniqueness violations.
//
// Update never writes the lockout fields (failed_login_count, is_locked,
// last_login_at). They change only through RecordFailedLogin, RecordLogin
// and Unlock, each of which is a single atomic write.
type Store interface {
	Create(ctx context.Context, u *User) error
	GetByID(ctx context.Context, id uuid.UUID) (*User, error)
	GetByEmail(ctx context.Context, email string) (*User, error)
	NicknameExists(ctx context.Context, nickname string) (bool, error)
	Update(ctx context.Context, u *User) error
	List(ctx context.Context, limit, offset int) ([]*User, int, error)
	Delete(ctx context.Context, id uuid.UUID) error

	// RecordFailedLogin increments the counter of an unlocked user and locks
	// it once the counter reaches maxAttempts. It returns ErrNotFound when
	// the user is missing or already locked.
	RecordFailedLogin(ctx context.Context, id uuid.UUID, maxAttempts int, at time.Time) (*User, error)
	// RecordLogin resets the counter and stamps last_login_at of an unlocked
	// user. It returns ErrNotFound when the user is missing or locked.
	RecordLogin(ctx context.Context, id uuid.UUID, at time.Time) (*User, error)
	// Unlock clears the lock and the counter. wasLocked reports the state
	// before the write.
	Unlock(ctx context.Context, id uuid.UUID, at time.Time) (u *User, wasLocked bool, err error)
}
