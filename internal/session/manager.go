package session

import (
	"context"
	"fmt"
	"time"

	"github.com/mcansh/snkrs-sub000/internal/kv"
)

// Manager owns the session lifecycle for one cookie backend.
//
// GetSession is fail-open: any failure yields a fresh anonymous session.
// Commit is fail-closed: if the backing store cannot be written, the
// response cannot claim the session state, so the error propagates.
type Manager interface {
	GetSession(ctx context.Context, cookieHeader string) *Session

	// Commit persists the session and returns the Set-Cookie header value.
	Commit(ctx context.Context, s *Session) (string, error)

	// Destroy invalidates the session and returns a clearing Set-Cookie
	// header value.
	Destroy(ctx context.Context, s *Session) (string, error)
}

// KVManager keeps only an opaque id in the cookie; the payload lives in
// the key-value store under session:<id> with a 14-day expiry enforced by
// the store itself.
type KVManager struct {
	store kv.Store
	opts  CookieOptions
	ttl   time.Duration
}

func NewKVManager(store kv.Store, opts CookieOptions) *KVManager {
	return &KVManager{
		store: store,
		opts:  opts,
		ttl:   maxAge,
	}
}

func (m *KVManager) key(id string) string {
	return "session:" + id
}

func (m *KVManager) GetSession(ctx context.Context, cookieHeader string) *Session {
	id := cookieValue(cookieHeader)
	if id == "" {
		return New()
	}

	raw, ok, err := m.store.Get(ctx, m.key(id))
	if err != nil || !ok {
		// store down or record expired: anonymous, never an error
		return New()
	}

	s, ok := decode(id, []byte(raw))
	if !ok {
		// payload failed the schema check: discard, don't throw
		return New()
	}
	return s
}

func (m *KVManager) Commit(ctx context.Context, s *Session) (string, error) {
	if s.id == "" {
		id, err := generateID()
		if err != nil {
			return "", err
		}
		s.id = id
	}

	data, err := s.encode()
	if err != nil {
		return "", fmt.Errorf("session: encode: %w", err)
	}

	if err := m.store.Set(ctx, m.key(s.id), string(data), m.ttl); err != nil {
		return "", fmt.Errorf("session: commit: %w", err)
	}

	return buildCookie(s.id, m.opts), nil
}

func (m *KVManager) Destroy(ctx context.Context, s *Session) (string, error) {
	if s.id != "" {
		if err := m.store.Del(ctx, m.key(s.id)); err != nil {
			return "", fmt.Errorf("session: destroy: %w", err)
		}
	}
	return clearCookie(m.opts), nil
}
