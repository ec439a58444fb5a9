package cart

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"golang.org/x/sync/singleflight"

	"github.com/zeynelltalay/KURA-Ecommercee/domain"
)

// Service owns cart mutations for a session. Each cart is exclusively
// mutated through its owning user's requests; the service never clears a
// cart on its own — only an explicit Clear after a committed checkout does.
type Service struct {
	repo Repository
	log  *slog.Logger
	sfg  singleflight.Group // Prevents read stampede on the same cart
}

func NewService(repo Repository, log *slog.Logger) *Service {
	return &Service{
		repo: repo,
		log:  log,
	}
}

// Get returns the user's cart, or a fresh empty one when none is stored.
func (s *Service) Get(ctx context.Context, userID string) (*domain.Cart, error) {
	v, err, _ := s.sfg.Do(userID, func() (interface{}, error) {
		cart, err := s.repo.Get(ctx, userID)
		if errors.Is(err, ErrCartNotFound) {
			now := time.Now()
			return &domain.Cart{
				UserID:    userID,
				CreatedAt: now,
				UpdatedAt: now,
			}, nil
		}
		if err != nil {
			return nil, err
		}
		return cart, nil
	})
	if err != nil {
		return nil, err
	}
	return v.(*domain.Cart), nil
}

// AddLine merges a line into the cart and persists it.
func (s *Service) AddLine(ctx context.Context, userID string, line domain.CartLine) (*domain.Cart, error) {
	if line.Quantity < 1 {
		return nil, fmt.Errorf("invalid quantity: %d", line.Quantity)
	}

	cart, err := s.Get(ctx, userID)
	if err != nil {
		return nil, err
	}

	cart.Add(line)
	if err := s.repo.Save(ctx, cart); err != nil {
		s.log.Error("save cart failed", "user_id", userID, "error", err)
		return nil, err
	}
	return cart, nil
}

// SetQuantity updates a line's quantity; a quantity below one removes the
// line, so a zero-quantity line is never persisted.
func (s *Service) SetQuantity(ctx context.Context, userID, productID string, quantity int) (*domain.Cart, error) {
	cart, err := s.Get(ctx, userID)
	if err != nil {
		return nil, err
	}

	if !cart.SetQuantity(productID, quantity) {
		return nil, ErrLineNotFound
	}
	if err := s.repo.Save(ctx, cart); err != nil {
		s.log.Error("save cart failed", "user_id", userID, "error", err)
		return nil, err
	}
	return cart, nil
}

// RemoveLine deletes a line from the cart.
func (s *Service) RemoveLine(ctx context.Context, userID, productID string) (*domain.Cart, error) {
	cart, err := s.Get(ctx, userID)
	if err != nil {
		return nil, err
	}

	if !cart.Remove(productID) {
		return nil, ErrLineNotFound
	}
	if err := s.repo.Save(ctx, cart); err != nil {
		s.log.Error("save cart failed", "user_id", userID, "error", err)
		return nil, err
	}
	return cart, nil
}

// Clear drops the stored cart. Called only after a committed checkout; an
// already-missing cart is not an error.
func (s *Service) Clear(ctx context.Context, userID string) error {
	if err := s.repo.Delete(ctx, userID); err != nil && !errors.Is(err, ErrCartNotFound) {
		s.log.Error("clear cart failed", "user_id", userID, "error", err)
		return err
	}
	return nil
}
