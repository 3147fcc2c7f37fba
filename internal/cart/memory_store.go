package cart

import (
	"context"
	"fmt"
	"slices"
	"sync"

	"github.com/nikolayk812/pixshop/internal/domain"
	"github.com/nikolayk812/pixshop/internal/port"
)

// MemoryStore is a process-local CartStore for development and tests.
type MemoryStore struct {
	mu    sync.Mutex
	carts map[string]domain.Cart
}

func NewMemoryStore() port.CartStore {
	return &MemoryStore{carts: make(map[string]domain.Cart)}
}

func (s *MemoryStore) Load(_ context.Context, sessionID string) (domain.Cart, error) {
	if sessionID == "" {
		return domain.Cart{}, fmt.Errorf("sessionID is empty")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	c := s.carts[sessionID]
	return domain.Cart{Lines: slices.Clone(c.Lines)}, nil
}

func (s *MemoryStore) Save(_ context.Context, sessionID string, c domain.Cart) error {
	if sessionID == "" {
		return fmt.Errorf("sessionID is empty")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if c.IsEmpty() {
		delete(s.carts, sessionID)
		return nil
	}

	s.carts[sessionID] = domain.Cart{Lines: slices.Clone(c.Lines)}
	return nil
}

func (s *MemoryStore) Clear(_ context.Context, sessionID string) error {
	if sessionID == "" {
		return fmt.Errorf("sessionID is empty")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.carts, sessionID)
	return nil
}
