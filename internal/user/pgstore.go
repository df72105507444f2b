package user

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/dmitrymomot/usermgmt/pkg/pg"
)

// DBTX is satisfied by *pgxpool.Pool, *pgx.Conn and pgx.Tx.
type DBTX interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

const userColumns = `id, email, nickname, first_name, last_name, bio,
	profile_picture_url, profile_picture_key, password_hash, email_verified,
	verification_token, failed_login_count, is_locked, last_login_at,
	created_at, updated_at`

// PgStore is the PostgreSQL Store.
type PgStore struct {
	db DBTX
}

// NewPgStore returns a Store backed by db.
func NewPgStore(db DBTX) *PgStore {
	return &PgStore{db: db}
}

func (s *PgStore) Create(ctx context.Context, u *User) error {
	const q = `INSERT INTO users (` + userColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16)`

	_, err := s.db.Exec(ctx, q,
		u.ID, u.Email, u.Nickname, u.FirstName, u.LastName, u.Bio,
		u.ProfilePictureURL, u.ProfilePictureKey, u.PasswordHash, u.EmailVerified,
		u.VerificationToken, u.FailedLoginCount, u.IsLocked, u.LastLoginAt,
		u.CreatedAt, u.UpdatedAt,
	)
	if err != nil {
		return mapWriteError("create user", err)
	}
	return nil
}

func (s *PgStore) GetByID(ctx context.Context, id uuid.UUID) (*User, error) {
	u, err := scanUser(s.db.QueryRow(ctx, `SELECT `+userColumns+` FROM users WHERE id = $1`, id))
	if err != nil {
		return nil, mapReadError("get user by id", err)
	}
	return u, nil
}

func (s *PgStore) GetByEmail(ctx context.Context, email string) (*User, error) {
	u, err := scanUser(s.db.QueryRow(ctx, `SELECT `+userColumns+` FROM users WHERE email = $1`, email))
	if err != nil {
		return nil, mapReadError("get user by email", err)
	}
	return u, nil
}

func (s *PgStore) NicknameExists(ctx context.Context, nickname string) (bool, error) {
	var exists bool
	err := s.db.QueryRow(ctx, `SELECT EXISTS (SELECT 1 FROM users WHERE nickname = $1)`, nickname).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("check nickname: %w", err)
	}
	return exists, nil
}

func (s *PgStore) Update(ctx context.Context, u *User) error {
	const q = `UPDATE users SET
		email = $2, nickname = $3, first_name = $4, last_name = $5, bio = $6,
		profile_picture_url = $7, profile_picture_key = $8, password_hash = $9,
		email_verified = $10, verification_token = $11, updated_at = $12
		WHERE id = $1`

	tag, err := s.db.Exec(ctx, q,
		u.ID, u.Email, u.Nickname, u.FirstName, u.LastName, u.Bio,
		u.ProfilePictureURL, u.ProfilePictureKey, u.PasswordHash,
		u.EmailVerified, u.VerificationToken, u.UpdatedAt,
	)
	if err != nil {
		return mapWriteError("update user", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *PgStore) RecordFailedLogin(ctx context.Context, id uuid.UUID, maxAttempts int, at time.Time) (*User, error) {
	const q = `UPDATE users SET
		failed_login_count = failed_login_count + 1,
		is_locked = failed_login_count + 1 >= $2,
		updated_at = $3
		WHERE id = $1 AND NOT is_locked
		RETURNING ` + userColumns

	u, err := scanUser(s.db.QueryRow(ctx, q, id, maxAttempts, at))
	if err != nil {
		return nil, mapReadError("record failed login", err)
	}
	return u, nil
}

func (s *PgStore) RecordLogin(ctx context.Context, id uuid.UUID, at time.Time) (*User, error) {
	const q = `UPDATE users SET
		failed_login_count = 0, last_login_at = $2, updated_at = $2
		WHERE id = $1 AND NOT is_locked
		RETURNING ` + userColumns

	u, err := scanUser(s.db.QueryRow(ctx, q, id, at))
	if err != nil {
		return nil, mapReadError("record login", err)
	}
	return u, nil
}

func (s *PgStore) Unlock(ctx context.Context, id uuid.UUID, at time.Time) (*User, bool, error) {
	const q = `WITH prev AS (
			SELECT is_locked FROM users WHERE id = $1 FOR UPDATE
		)
		UPDATE users SET is_locked = false, failed_login_count = 0, updated_at = $2
		WHERE id = $1
		RETURNING ` + userColumns + `, (SELECT is_locked FROM prev)`

	var (
		u         User
		wasLocked bool
	)
	err := s.db.QueryRow(ctx, q, id, at).Scan(append(u.scanTargets(), &wasLocked)...)
	if err != nil {
		return nil, false, mapReadError("unlock user", err)
	}
	return &u, wasLocked, nil
}

func (s *PgStore) List(ctx context.Context, limit, offset int) ([]*User, int, error) {
	var total int
	if err := s.db.QueryRow(ctx, `SELECT count(*) FROM users`).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count users: %w", err)
	}

	rows, err := s.db.Query(ctx,
		`SELECT `+userColumns+` FROM users ORDER BY created_at, id LIMIT $1 OFFSET $2`,
		limit, offset,
	)
	if err != nil {
		return nil, 0, fmt.Errorf("list users: %w", err)
	}
	defer rows.Close()

	users := make([]*User, 0, limit)
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, 0, fmt.Errorf("scan user: %w", err)
		}
		users = append(users, u)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("list users: %w", err)
	}
	return users, total, nil
}

func (s *PgStore) Delete(ctx context.Context, id uuid.UUID) error {
	tag, err := s.db.Exec(ctx, `DELETE FROM users WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete user: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func scanUser(row pgx.Row) (*User, error) {
	var u User
	if err := row.Scan(u.scanTargets()...); err != nil {
		return nil, err
	}
	return &u, nil
}

// scanTargets lists field pointers in userColumns order.
func (u *User) scanTargets() []any {
	return []any{
		&u.ID, &u.Email, &u.Nickname, &u.FirstName, &u.LastName, &u.Bio,
		&u.ProfilePictureURL, &u.ProfilePictureKey, &u.PasswordHash, &u.EmailVerified,
		&u.VerificationToken, &u.FailedLoginCount, &u.IsLocked, &u.LastLoginAt,
		&u.CreatedAt, &u.UpdatedAt,
	}
}

func mapReadError(op string, err error) error {
	if pg.IsNotFoundError(err) {
		return ErrNotFound
	}
	return fmt.Errorf("%s: %w", op, err)
}

func mapWriteError(op string, err error) error {
	if pg.IsDuplicateKeyError(err) {
		switch pg.ConstraintName(err) {
		case "users_nickname_key":
			return errors.Join(ErrNicknameTaken, err)
		default:
			return errors.Join(ErrEmailTaken, err)
		}
	}
	return fmt.Errorf("%s: %w", op, err)
}
