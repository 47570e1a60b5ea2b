// Package dashboard backs the recruiter dashboard: the shortlist toggle and
// the CSV export of evaluation rows.
package dashboard

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"candidate-evaluation-workers/internal/models"
)

var (
	ErrToggleInFlight = errors.New("shortlist toggle already in flight")
	ErrToggleFailed   = errors.New("shortlist toggle failed")
	ErrRowNotFound    = errors.New("dashboard row not found")
)

// Key identifies a dashboard row.
type Key struct {
	Email     string
	Timestamp time.Time
}

func KeyOf(r models.EvaluationRecord) Key {
	return Key{Email: r.Email, Timestamp: r.Timestamp}
}

func (k Key) String() string {
	return k.Email + "|" + k.Timestamp.UTC().Format(time.RFC3339Nano)
}

// Store is the local copy of the shortlist column.
type Store interface {
	Shortlist(ctx context.Context, email string, ts time.Time) (string, error)
	SetShortlist(ctx context.Context, email string, ts time.Time, value string) error
}

// Remote is the endpoint that owns the shortlist.
type Remote interface {
	SetShortlist(ctx context.Context, u models.ShortlistUpdate) error
}

// Flip returns the opposite shortlist value. Anything but YES counts as NO.
func Flip(value string) string {
	if value == models.ShortlistYes {
		return models.ShortlistNo
	}
	return models.ShortlistYes
}

type patch struct {
	key   Key
	value string
}

func (p patch) apply(ctx context.Context, s Store) error {
	return s.SetShortlist(ctx, p.key.Email, p.key.Timestamp, p.value)
}

// Toggle reports the outcome of one shortlist change.
type Toggle struct {
	Previous   string `json:"previous"`
	Value      string `json:"value"`
	RolledBack bool   `json:"rolledBack"`
}

// Toggler flips the shortlist flag optimistically: the local store changes
// first and is restored from the inverse patch when the remote call fails.
// Only one toggle per row runs at a time.
type Toggler struct {
	store  Store
	remote Remote

	mu       sync.Mutex
	inflight map[string]struct{}
}

func NewToggler(store Store, remote Remote) *Toggler {
	return &Toggler{store: store, remote: remote, inflight: make(map[string]struct{})}
}

func (t *Toggler) ToggleShortlist(ctx context.Context, key Key) (Toggle, error) {
	id := key.String()
	if !t.acquire(id) {
		return Toggle{}, fmt.Errorf("%w: %s", ErrToggleInFlight, id)
	}
	defer t.release(id)

	prev, err := t.store.Shortlist(ctx, key.Email, key.Timestamp)
	if err != nil {
		return Toggle{}, err
	}

	next := Flip(prev)
	forward := patch{key: key, value: next}
	inverse := patch{key: key, value: prev}

	if err := forward.apply(ctx, t.store); err != nil {
		return Toggle{Previous: prev, Value: prev}, err
	}

	remoteErr := t.remote.SetShortlist(ctx, models.ShortlistUpdate{
		Email:     key.Email,
		Timestamp: key.Timestamp.UTC().Format(time.RFC3339),
		Value:     next,
	})
	if remoteErr == nil {
		return Toggle{Previous: prev, Value: next}, nil
	}

	// The caller's context may already be done; the rollback must still run.
	if rbErr := inverse.apply(context.WithoutCancel(ctx), t.store); rbErr != nil {
		return Toggle{Previous: prev, Value: next},
			fmt.Errorf("%w: %v; rollback failed: %v", ErrToggleFailed, remoteErr, rbErr)
	}
	return Toggle{Previous: prev, Value: prev, RolledBack: true},
		fmt.Errorf("%w: %v", ErrToggleFailed, remoteErr)
}

func (t *Toggler) acquire(id string) bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	if _, busy := t.inflight[id]; busy {
		return false
	}
	t.inflight[id] = struct{}{}
	return true
}

func (t *Toggler) release(id string) {
	t.mu.Lock()
	delete(t.inflight, id)
	t.mu.Unlock()
}

// MemoryStore is a Store over an in-memory row list.
type MemoryStore struct {
	mu   sync.RWMutex
	rows []models.EvaluationRecord
}

func NewMemoryStore(rows []models.EvaluationRecord) *MemoryStore {
	return &MemoryStore{rows: append([]models.EvaluationRecord(nil), rows...)}
}

func (m *MemoryStore) Shortlist(_ context.Context, email string, ts time.Time) (string, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if i := m.find(email, ts); i >= 0 {
		return m.rows[i].Shortlist, nil
	}
	return "", fmt.Errorf("%w: %s", ErrRowNotFound, Key{email, ts})
}

func (m *MemoryStore) SetShortlist(_ context.Context, email string, ts time.Time, value string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if i := m.find(email, ts); i >= 0 {
		m.rows[i].Shortlist = value
		return nil
	}
	return fmt.Errorf("%w: %s", ErrRowNotFound, Key{email, ts})
}

// Rows returns a copy of the current rows.
func (m *MemoryStore) Rows() []models.EvaluationRecord {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return append([]models.EvaluationRecord(nil), m.rows...)
}

func (m *MemoryStore) find(email string, ts time.Time) int {
	for i, r := range m.rows {
		if r.Email == email && r.Timestamp.Equal(ts) {
			return i
		}
	}
	return -1
}
