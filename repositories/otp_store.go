// repositories/otp_store.go
package repositories

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/go-redis/redis/v8"

	"github.com/pathforge/pathforge_backend/models"
)

// ErrPendingNotFound is returned when no pending registration exists for an
// email, either because none was issued or because it was already consumed.
var ErrPendingNotFound = errors.New("pending registration not found")

// PendingRegistrationStore holds in-flight signups keyed by email. Save
// overwrites any prior record for the same email. Consume atomically removes
// and returns the record, so two concurrent verifications for the same email
// admit at most one winner.
type PendingRegistrationStore interface {
	Save(ctx context.Context, reg *models.PendingRegistration) error
	Get(ctx context.Context, email string) (*models.PendingRegistration, error)
	Consume(ctx context.Context, email string) (*models.PendingRegistration, error)
	Delete(ctx context.Context, email string) error
}

// PendingRetention is how long a pending registration is kept in Redis.
// It deliberately outlives the code's validity window: an expired code must
// still be recoverable through resend, while truly abandoned signups evict
// themselves when the retention lapses.
const PendingRetention = 24 * time.Hour

// RedisPendingStore keeps pending registrations in Redis so any server
// instance can serve resend/verify for a given email.
type RedisPendingStore struct {
	client *redis.Client
}

// NewRedisPendingStore creates a Redis-backed pending registration store
func NewRedisPendingStore(client *redis.Client) *RedisPendingStore {
	return &RedisPendingStore{client: client}
}

func pendingKey(email string) string {
	return fmt.Sprintf("pending_registration:%s", email)
}

// Save stores the registration, replacing any existing record for the email
func (s *RedisPendingStore) Save(ctx context.Context, reg *models.PendingRegistration) error {
	data, err := json.Marshal(reg)
	if err != nil {
		return fmt.Errorf("failed to marshal pending registration: %w", err)
	}

	if err := s.client.Set(ctx, pendingKey(reg.Email), data, PendingRetention).Err(); err != nil {
		return fmt.Errorf("failed to store in Redis: %w", err)
	}
	return nil
}

// Get returns the pending registration for the email, if any
func (s *RedisPendingStore) Get(ctx context.Context, email string) (*models.PendingRegistration, error) {
	data, err := s.client.Get(ctx, pendingKey(email)).Result()
	if err != nil {
		if err == redis.Nil {
			return nil, ErrPendingNotFound
		}
		return nil, fmt.Errorf("Redis error: %w", err)
	}

	var reg models.PendingRegistration
	if err := json.Unmarshal([]byte(data), &reg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal pending registration: %w", err)
	}
	return &reg, nil
}

// Consume removes and returns the pending registration in one atomic step
func (s *RedisPendingStore) Consume(ctx context.Context, email string) (*models.PendingRegistration, error) {
	data, err := s.client.GetDel(ctx, pendingKey(email)).Result()
	if err != nil {
		if err == redis.Nil {
			return nil, ErrPendingNotFound
		}
		return nil, fmt.Errorf("Redis error: %w", err)
	}

	var reg models.PendingRegistration
	if err := json.Unmarshal([]byte(data), &reg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal pending registration: %w", err)
	}
	return &reg, nil
}

// Delete removes the pending registration for the email
func (s *RedisPendingStore) Delete(ctx context.Context, email string) error {
	return s.client.Del(ctx, pendingKey(email)).Err()
}
