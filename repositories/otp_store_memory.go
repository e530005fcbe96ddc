// repositories/otp_store_memory.go
package repositories

import (
	"context"
	"sync"
	"time"

	"github.com/pathforge/pathforge_backend/models"
)

// MemoryPendingStore is an in-process PendingRegistrationStore. It backs the
// server when Redis is unreachable (single-instance development only; records
// do not survive restarts) and the fakes in tests. Code expiry is still the
// verifier's lazy check; the sweep only reclaims abandoned records, matching
// the Redis key TTL.
type MemoryPendingStore struct {
	mu      sync.Mutex
	pending map[string]models.PendingRegistration
}

// NewMemoryPendingStore creates an empty in-memory store and starts its
// retention sweep
func NewMemoryPendingStore() *MemoryPendingStore {
	s := &MemoryPendingStore{
		pending: make(map[string]models.PendingRegistration),
	}
	go s.sweep()
	return s
}

// sweep evicts registrations that have outlived the retention window
func (s *MemoryPendingStore) sweep() {
	for {
		time.Sleep(1 * time.Hour)
		cutoff := time.Now().Add(-PendingRetention)
		s.mu.Lock()
		for email, reg := range s.pending {
			if reg.IssuedAt.Before(cutoff) {
				delete(s.pending, email)
			}
		}
		s.mu.Unlock()
	}
}

// Save stores the registration, replacing any existing record for the email
func (s *MemoryPendingStore) Save(ctx context.Context, reg *models.PendingRegistration) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.pending[reg.Email] = *reg
	return nil
}

// Get returns a copy of the pending registration for the email, if any
func (s *MemoryPendingStore) Get(ctx context.Context, email string) (*models.PendingRegistration, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	reg, ok := s.pending[email]
	if !ok {
		return nil, ErrPendingNotFound
	}
	return &reg, nil
}

// Consume removes and returns the pending registration in one atomic step
func (s *MemoryPendingStore) Consume(ctx context.Context, email string) (*models.PendingRegistration, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	reg, ok := s.pending[email]
	if !ok {
		return nil, ErrPendingNotFound
	}
	delete(s.pending, email)
	return &reg, nil
}

// Delete removes the pending registration for the email
func (s *MemoryPendingStore) Delete(ctx context.Context, email string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.pending, email)
	return nil
}
