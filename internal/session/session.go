// Package session keeps server-side admin sessions. A session id is an
// opaque random token carried in a cookie; the record behind it binds the
// id to exactly one admin user until logout or expiry.
package session

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
)

type Session struct {
	ID        string    `json:"id"`
	UserID    int64     `json:"user_id"`
	Username  string    `json:"username"`
	CreatedAt time.Time `json:"created_at"`
	ExpiresAt time.Time `json:"expires_at"`
}

// Store persists sessions. Get returns nil, nil for unknown or expired ids
// and Delete of an unknown id succeeds.
type Store interface {
	Create(ctx context.Context, userID int64, username string) (*Session, error)
	Get(ctx context.Context, id string) (*Session, error)
	Delete(ctx context.Context, id string) error
}

func newSession(userID int64, username string, now time.Time, ttl time.Duration) *Session {
	return &Session{
		ID:        uuid.NewString(),
		UserID:    userID,
		Username:  username,
		CreatedAt: now,
		ExpiresAt: now.Add(ttl),
	}
}

// Backend is the key/value surface RedisStore needs; *redisclient.Client
// implements it
type Backend interface {
	SetJSON(ctx context.Context, key string, v interface{}, ttl time.Duration) error
	GetJSON(ctx context.Context, key string, v interface{}) (bool, error)
	Delete(ctx context.Context, key string) error
}

// RedisStore keeps each session under "session:<id>" with a TTL so Redis
// expires abandoned sessions on its own
type RedisStore struct {
	backend Backend
	ttl     time.Duration
}

func NewRedisStore(backend Backend, ttl time.Duration) *RedisStore {
	return &RedisStore{backend: backend, ttl: ttl}
}

func key(id string) string {
	return "session:" + id
}

func (s *RedisStore) Create(ctx context.Context, userID int64, username string) (*Session, error) {
	sess := newSession(userID, username, time.Now(), s.ttl)
	if err := s.backend.SetJSON(ctx, key(sess.ID), sess, s.ttl); err != nil {
		return nil, fmt.Errorf("failed to store session: %w", err)
	}
	return sess, nil
}

func (s *RedisStore) Get(ctx context.Context, id string) (*Session, error) {
	if id == "" {
		return nil, nil
	}
	var sess Session
	found, err := s.backend.GetJSON(ctx, key(id), &sess)
	if err != nil {
		return nil, fmt.Errorf("failed to load session: %w", err)
	}
	if !found || time.Now().After(sess.ExpiresAt) {
		return nil, nil
	}
	return &sess, nil
}

func (s *RedisStore) Delete(ctx context.Context, id string) error {
	if id == "" {
		return nil
	}
	if err := s.backend.Delete(ctx, key(id)); err != nil {
		return fmt.Errorf("failed to delete session: %w", err)
	}
	return nil
}

// MemoryStore is a process-local Store for tests and single-node runs
type MemoryStore struct {
	mu       sync.Mutex
	ttl      time.Duration
	now      func() time.Time
	sessions map[string]Session
}

func NewMemoryStore(ttl time.Duration) *MemoryStore {
	return &MemoryStore{
		ttl:      ttl,
		now:      time.Now,
		sessions: make(map[string]Session),
	}
}

// SetClock replaces the time source used for expiry
func (s *MemoryStore) SetClock(now func() time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.now = now
}

func (s *MemoryStore) Create(_ context.Context, userID int64, username string) (*Session, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess := newSession(userID, username, s.now(), s.ttl)
	s.sessions[sess.ID] = *sess
	return sess, nil
}

func (s *MemoryStore) Get(_ context.Context, id string) (*Session, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess, ok := s.sessions[id]
	if !ok {
		return nil, nil
	}
	if s.now().After(sess.ExpiresAt) {
		delete(s.sessions, id)
		return nil, nil
	}
	return &sess, nil
}

func (s *MemoryStore) Delete(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.sessions, id)
	return nil
}

// Len returns the number of stored sessions, expired ones included
func (s *MemoryStore) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.sessions)
}
