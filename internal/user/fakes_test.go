package user_test

import (
	"context"
	"errors"
	"io"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/dmitrymomot/usermgmt/internal/user"
	"github.com/dmitrymomot/usermgmt/pkg/email"
	"github.com/dmitrymomot/usermgmt/pkg/storage"
)

type memStore struct {
	mu    sync.Mutex
	users map[uuid.UUID]user.User
}

func newMemStore() *memStore {
	return &memStore{users: make(map[uuid.UUID]user.User)}
}

func (m *memStore) Create(_ context.Context, u *user.User) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, existing := range m.users {
		if existing.Email == u.Email {
			return user.ErrEmailTaken
		}
		if existing.Nickname == u.Nickname {
			return user.ErrNicknameTaken
		}
	}
	m.users[u.ID] = *u
	return nil
}

func (m *memStore) GetByID(_ context.Context, id uuid.UUID) (*user.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	u, ok := m.users[id]
	if !ok {
		return nil, user.ErrNotFound
	}
	return &u, nil
}

func (m *memStore) GetByEmail(_ context.Context, addr string) (*user.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, u := range m.users {
		if u.Email == addr {
			return &u, nil
		}
	}
	return nil, user.ErrNotFound
}

func (m *memStore) NicknameExists(_ context.Context, nickname string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, u := range m.users {
		if u.Nickname == nickname {
			return true, nil
		}
	}
	return false, nil
}

func (m *memStore) Update(_ context.Context, u *user.User) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	cur, ok := m.users[u.ID]
	if !ok {
		return user.ErrNotFound
	}
	next := *u
	next.FailedLoginCount = cur.FailedLoginCount
	next.IsLocked = cur.IsLocked
	next.LastLoginAt = cur.LastLoginAt
	m.users[u.ID] = next
	return nil
}

func (m *memStore) RecordFailedLogin(_ context.Context, id uuid.UUID, maxAttempts int, at time.Time) (*user.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	u, ok := m.users[id]
	if !ok || u.IsLocked {
		return nil, user.ErrNotFound
	}
	u.FailedLoginCount++
	u.IsLocked = u.FailedLoginCount >= maxAttempts
	u.UpdatedAt = at
	m.users[id] = u
	return &u, nil
}

func (m *memStore) RecordLogin(_ context.Context, id uuid.UUID, at time.Time) (*user.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	u, ok := m.users[id]
	if !ok || u.IsLocked {
		return nil, user.ErrNotFound
	}
	u.FailedLoginCount = 0
	u.LastLoginAt = &at
	u.UpdatedAt = at
	m.users[id] = u
	return &u, nil
}

func (m *memStore) Unlock(_ context.Context, id uuid.UUID, at time.Time) (*user.User, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	u, ok := m.users[id]
	if !ok {
		return nil, false, user.ErrNotFound
	}
	wasLocked := u.IsLocked
	u.IsLocked = false
	u.FailedLoginCount = 0
	u.UpdatedAt = at
	m.users[id] = u
	return &u, wasLocked, nil
}

func (m *memStore) List(_ context.Context, limit, offset int) ([]*user.User, int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	all := make([]*user.User, 0, len(m.users))
	for _, u := range m.users {
		all = append(all, &u)
	}
	sort.Slice(all, func(i, j int) bool { return all[i].Email < all[j].Email })
	if offset >= len(all) {
		return []*user.User{}, len(all), nil
	}
	end := min(offset+limit, len(all))
	return all[offset:end], len(all), nil
}

func (m *memStore) Delete(_ context.Context, id uuid.UUID) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.users[id]; !ok {
		return user.ErrNotFound
	}
	delete(m.users, id)
	return nil
}

// outbox records sent emails and can be told to fail.
type outbox struct {
	mu   sync.Mutex
	sent []email.SendEmailParams
	err  error
}

func (o *outbox) SendEmail(_ context.Context, p email.SendEmailParams) error {
	o.mu.Lock()
	defer o.mu.Unlock()
	if o.err != nil {
		return o.err
	}
	o.sent = append(o.sent, p)
	return nil
}

func (o *outbox) tags() []string {
	o.mu.Lock()
	defer o.mu.Unlock()
	out := make([]string, 0, len(o.sent))
	for _, p := range o.sent {
		out = append(out, p.Tag)
	}
	return out
}

func (o *outbox) last() email.SendEmailParams {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.sent[len(o.sent)-1]
}

type fakePictures struct {
	mu      sync.Mutex
	objects map[string][]byte
	err     error
}

func (f *fakePictures) UploadProfilePicture(_ context.Context, r io.Reader, key string) (string, error) {
	if f.err != nil {
		return "", f.err
	}
	data, err := io.ReadAll(r)
	if err != nil {
		return "", err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.objects == nil {
		f.objects = make(map[string][]byte)
	}
	f.objects[key] = data
	return "http://minio:9000/picture/" + key, nil
}

func (f *fakePictures) ProfilePictureURL(_ context.Context, key string) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.objects[key]; !ok {
		return "", storage.ErrObjectNotFound
	}
	return "http://minio:9000/picture/" + key + "?X-Amz-Signature=sig", nil
}

type countingObserver struct {
	mu      sync.Mutex
	emails  map[string]int
	failed  int
	uploads int
}

func (c *countingObserver) EmailSent(template string, err error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.emails == nil {
		c.emails = make(map[string]int)
	}
	c.emails[template]++
	if err != nil {
		c.failed++
	}
}

func (c *countingObserver) ProfileUpload(error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.uploads++
}

var errSMTPDown = errors.New("smtp down")
