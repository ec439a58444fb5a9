// Package draft persists in-progress checkout form state between visits, at
// the session boundary and outside the transactional core. A draft holds
// shipping fields and the card holder name only — the card number and CVV
// are never written to any store — and is cleared on a committed checkout so
// it can never refill or resubmit a completed order.
package draft

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/zeynelltalay/KURA-Ecommercee/domain"
)

var ErrDraftNotFound = errors.New("checkout draft not found")

type Store struct {
	client *redis.Client
	ttl    time.Duration
}

func NewStore(client *redis.Client, ttl time.Duration) *Store {
	if ttl <= 0 {
		ttl = 24 * time.Hour
	}
	return &Store{client: client, ttl: ttl}
}

func (s *Store) Save(ctx context.Context, userID string, d domain.CheckoutDraft) error {
	d.SavedAt = time.Now()
	data, err := json.Marshal(d)
	if err != nil {
		return fmt.Errorf("marshal draft failed: %w", err)
	}
	if err := s.client.Set(ctx, draftKey(userID), data, s.ttl).Err(); err != nil {
		return fmt.Errorf("redis set failed: %w", err)
	}
	return nil
}

func (s *Store) Load(ctx context.Context, userID string) (domain.CheckoutDraft, error) {
	data, err := s.client.Get(ctx, draftKey(userID)).Bytes()
	if errors.Is(err, redis.Nil) {
		return domain.CheckoutDraft{}, ErrDraftNotFound
	}
	if err != nil {
		return domain.CheckoutDraft{}, fmt.Errorf("redis get failed: %w", err)
	}

	var d domain.CheckoutDraft
	if err := json.Unmarshal(data, &d); err != nil {
		return domain.CheckoutDraft{}, fmt.Errorf("unmarshal draft failed: %w", err)
	}
	return d, nil
}

func (s *Store) Clear(ctx context.Context, userID string) error {
	if err := s.client.Del(ctx, draftKey(userID)).Err(); err != nil {
		return fmt.Errorf("redis delete failed: %w", err)
	}
	return nil
}

func draftKey(userID string) string {
	return fmt.Sprintf("checkout-draft:%s", userID)
}
