// internal/common/database/sessions.go
package database

import (
	"context"
	"errors"
	"fmt"
	"time"

	"candidate-evaluation-workers/internal/engine/session"

	"github.com/goccy/go-json"
	"github.com/redis/go-redis/v9"
)

const (
	sessionKeyPrefix  = "session:"
	DefaultSessionTTL = 2 * time.Hour
)

var (
	ErrSessionNotFound = errors.New("session not found")
	ErrSessionStore    = errors.New("session store failure")
)

// SessionStore keeps evaluation sessions in Redis. Sessions expire after the
// TTL; every Save refreshes it.
type SessionStore struct {
	client *redis.Client
	ttl    time.Duration
	now    func() time.Time
}

func NewSessionStore(client *redis.Client, ttl time.Duration) *SessionStore {
	if ttl <= 0 {
		ttl = DefaultSessionTTL
	}
	return &SessionStore{client: client, ttl: ttl, now: time.Now}
}

func SessionKey(id string) string {
	return sessionKeyPrefix + id
}

// Load returns the stored session or ErrSessionNotFound.
func (s *SessionStore) Load(ctx context.Context, id string) (session.State, error) {
	raw, err := s.client.Get(ctx, SessionKey(id)).Result()
	if errors.Is(err, redis.Nil) {
		return session.State{}, fmt.Errorf("%w: %s", ErrSessionNotFound, id)
	}
	if err != nil {
		return session.State{}, fmt.Errorf("%w: get %s: %v", ErrSessionStore, id, err)
	}

	var st session.State
	if err := json.Unmarshal([]byte(raw), &st); err != nil {
		return session.State{}, fmt.Errorf("%w: decode %s: %v", ErrSessionStore, id, err)
	}
	return st, nil
}

// LoadOrNew returns the stored session, or a fresh one when none exists.
func (s *SessionStore) LoadOrNew(ctx context.Context, id string) (session.State, error) {
	st, err := s.Load(ctx, id)
	if errors.Is(err, ErrSessionNotFound) {
		return session.New(id, s.now().UTC()), nil
	}
	return st, err
}

// Save writes st and refreshes its expiry.
func (s *SessionStore) Save(ctx context.Context, st session.State) error {
	st.UpdatedAt = s.now().UTC()
	data, err := json.Marshal(st)
	if err != nil {
		return fmt.Errorf("%w: encode %s: %v", ErrSessionStore, st.ID, err)
	}
	if err := s.client.Set(ctx, SessionKey(st.ID), string(data), s.ttl).Err(); err != nil {
		return fmt.Errorf("%w: set %s: %v", ErrSessionStore, st.ID, err)
	}
	return nil
}

func (s *SessionStore) Delete(ctx context.Context, id string) error {
	if err := s.client.Del(ctx, SessionKey(id)).Err(); err != nil {
		return fmt.Errorf("%w: del %s: %v", ErrSessionStore, id, err)
	}
	return nil
}
