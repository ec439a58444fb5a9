// Package order persists and reads the immutable order records produced by
// committed checkouts.
package order

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sort"

	"github.com/zeynelltalay/KURA-Ecommercee/domain"
	"github.com/zeynelltalay/KURA-Ecommercee/internal/kvstore"
)

// Collection is the order collection name in the document store.
const Collection = "orders"

var ErrOrderNotFound = errors.New("order not found")

// Stage places the order document into the transaction's write set, at the
// id pre-generated before the transaction opened. Orders are write-once:
// nothing in this package updates an existing order.
func Stage(tx *kvstore.Tx, o domain.Order) error {
	return tx.Set(Collection, o.ID, o)
}

// Backend is the store surface the read side needs.
type Backend interface {
	kvstore.Store
	kvstore.Scanner
}

// Repository reads committed orders for their owning user.
type Repository struct {
	store Backend
}

func NewRepository(store Backend) *Repository {
	return &Repository{store: store}
}

// Get returns the order only to its originating user. A foreign order reads
// the same as a missing one.
func (r *Repository) Get(ctx context.Context, orderID, userID string) (domain.Order, error) {
	var o domain.Order
	if err := r.store.Get(ctx, Collection, orderID, &o); err != nil {
		if errors.Is(err, kvstore.ErrNotFound) {
			return domain.Order{}, ErrOrderNotFound
		}
		return domain.Order{}, fmt.Errorf("read order %s: %w", orderID, err)
	}
	if o.UserID != userID {
		return domain.Order{}, ErrOrderNotFound
	}
	return o, nil
}

// ListByUser returns the user's orders, newest first.
func (r *Repository) ListByUser(ctx context.Context, userID string) ([]domain.Order, error) {
	orders := []domain.Order{}
	err := r.store.Scan(ctx, Collection, func(key string, data []byte) error {
		var o domain.Order
		if err := json.Unmarshal(data, &o); err != nil {
			return fmt.Errorf("decode order %s: %w", key, err)
		}
		if o.UserID == userID {
			orders = append(orders, o)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	sort.Slice(orders, func(i, j int) bool {
		return orders[i].CreatedAt.After(orders[j].CreatedAt)
	})
	return orders, nil
}
