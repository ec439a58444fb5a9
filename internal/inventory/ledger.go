// Package inventory mediates access to the per-product stock counters.
// Stock lives as a field on the product document, so the decrement staged
// during checkout and the denormalized snapshot data come from the same
// transactional read.
package inventory

import (
	"context"
	"errors"
	"fmt"

	"github.com/zeynelltalay/KURA-Ecommercee/internal/kvstore"
)

// Collection is the product collection name in the document store.
const Collection = "products"

var ErrProductNotFound = errors.New("product not found")

// Product is the stored product document. Stock is the shared mutable
// counter; it is only ever modified inside an atomic transaction.
type Product struct {
	ID    string  `json:"id"`
	Name  string  `json:"name"`
	Price float64 `json:"price"`
	Image string  `json:"image,omitempty"`
	Stock int     `json:"stock"`
}

// InsufficientStockError reports a line whose requested quantity exceeds the
// available stock, with enough detail for the caller to adjust the cart.
type InsufficientStockError struct {
	ProductID string
	Name      string
	Available int
	Requested int
}

func (e *InsufficientStockError) Error() string {
	return fmt.Sprintf("insufficient stock for %s (%s): requested %d, available %d",
		e.Name, e.ProductID, e.Requested, e.Available)
}

// Ledger reads and conditionally writes stock counters.
type Ledger struct {
	store kvstore.Store
}

func NewLedger(store kvstore.Store) *Ledger {
	return &Ledger{store: store}
}

// Check reads the product inside the transaction and verifies its stock can
// cover the requested quantity. Must only be called within an active
// transaction: an un-transacted read-then-write would race against
// concurrent checkouts.
func (l *Ledger) Check(tx *kvstore.Tx, productID string, quantity int) (Product, error) {
	var p Product
	if err := tx.Get(Collection, productID, &p); err != nil {
		if errors.Is(err, kvstore.ErrNotFound) {
			return Product{}, fmt.Errorf("%w: %s", ErrProductNotFound, productID)
		}
		return Product{}, fmt.Errorf("read product %s: %w", productID, err)
	}
	if p.Stock < quantity {
		return Product{}, &InsufficientStockError{
			ProductID: p.ID,
			Name:      p.Name,
			Available: p.Stock,
			Requested: quantity,
		}
	}
	return p, nil
}

// StageDecrement stages the write of p.Stock - quantity for a previously
// checked product. The stock floor is re-asserted here so a staged write can
// never carry a negative counter.
func (l *Ledger) StageDecrement(tx *kvstore.Tx, p Product, quantity int) error {
	if p.Stock < quantity {
		return &InsufficientStockError{
			ProductID: p.ID,
			Name:      p.Name,
			Available: p.Stock,
			Requested: quantity,
		}
	}
	p.Stock -= quantity
	return tx.Set(Collection, p.ID, p)
}

// Product performs a point read outside any transaction, for display and
// add-to-cart snapshots.
func (l *Ledger) Product(ctx context.Context, productID string) (Product, error) {
	var p Product
	if err := l.store.Get(ctx, Collection, productID, &p); err != nil {
		if errors.Is(err, kvstore.ErrNotFound) {
			return Product{}, fmt.Errorf("%w: %s", ErrProductNotFound, productID)
		}
		return Product{}, err
	}
	return p, nil
}

// Put upserts a product document. Used for seeding and administration.
func (l *Ledger) Put(ctx context.Context, p Product) error {
	return l.store.RunTransaction(ctx, func(tx *kvstore.Tx) error {
		return tx.Set(Collection, p.ID, p)
	})
}

// SetStock replaces a product's stock counter inside a transaction, so it
// cannot clobber a concurrent checkout's decrement.
func (l *Ledger) SetStock(ctx context.Context, productID string, stock int) error {
	return l.store.RunTransaction(ctx, func(tx *kvstore.Tx) error {
		var p Product
		if err := tx.Get(Collection, productID, &p); err != nil {
			if errors.Is(err, kvstore.ErrNotFound) {
				return fmt.Errorf("%w: %s", ErrProductNotFound, productID)
			}
			return err
		}
		p.Stock = stock
		return tx.Set(Collection, p.ID, p)
	})
}
