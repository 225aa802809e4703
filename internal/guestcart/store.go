// Package guestcart holds carts that have no owning account. They are keyed
// by an opaque session key and live only as long as the session, mirroring
// browser session storage on the server side.
package guestcart

import (
	"context"
	"sync"

	"tarzi-api/internal/domain"
)

// Store is the key-value abstraction guest carts are persisted through. Get
// returns domain.ErrNotFound for unknown keys.
type Store interface {
	Get(ctx context.Context, key string) (*domain.Cart, error)
	Set(ctx context.Context, key string, cart *domain.Cart) error
	Delete(ctx context.Context, key string) error
}

type memoryStore struct {
	mu    sync.RWMutex
	carts map[string]domain.Cart
}

// NewMemory returns an in-process Store used in tests and when no Redis
// address is configured.
func NewMemory() Store {
	return &memoryStore{carts: make(map[string]domain.Cart)}
}

func (s *memoryStore) Get(_ context.Context, key string) (*domain.Cart, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	cart, ok := s.carts[key]
	if !ok {
		return nil, domain.ErrNotFound
	}
	out := cart
	return &out, nil
}

func (s *memoryStore) Set(_ context.Context, key string, cart *domain.Cart) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.carts[key] = *cart
	return nil
}

func (s *memoryStore) Delete(_ context.Context, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.carts, key)
	return nil
}
