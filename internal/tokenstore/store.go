// Package tokenstore persists the customer session (access token, refresh token, user data).
package tokenstore

import (
	"context"
	"sync"
)

// Well-known keys of the session triple.
const (
	AccessTokenKey  = "accessToken"
	RefreshTokenKey = "refreshToken"
	UserDataKey     = "userData"
)

// Store is a process-wide key/value store. Writes are last-writer-wins.
type Store interface {
	// Get returns the value for key; ok is false when the key is absent.
	Get(ctx context.Context, key string) (value string, ok bool, err error)
	// Set stores value under key, replacing any previous value.
	Set(ctx context.Context, key, value string) error
	// Delete removes key; deleting an absent key is not an error.
	Delete(ctx context.Context, key string) error
}

// Memory is an in-process Store.
type Memory struct {
	mu sync.RWMutex
	m  map[string]string
}

var _ Store = (*Memory)(nil)

// NewMemory returns an empty in-memory store.
func NewMemory() *Memory {
	return &Memory{m: map[string]string{}}
}

func (s *Memory) Get(_ context.Context, key string) (string, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	v, ok := s.m[key]
	return v, ok, nil
}

func (s *Memory) Set(_ context.Context, key, value string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.m[key] = value
	return nil
}

func (s *Memory) Delete(_ context.Context, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.m, key)
	return nil
}

// Len reports the number of stored keys.
func (s *Memory) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.m)
}
