// Package checkout orchestrates the commit of a shopping cart into a
// durable order: validate the payment and address, then decrement every
// line's stock and write the order record as one all-or-nothing transaction.
package checkout

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/zeynelltalay/KURA-Ecommercee/domain"
	"github.com/zeynelltalay/KURA-Ecommercee/internal/inventory"
	"github.com/zeynelltalay/KURA-Ecommercee/internal/kvstore"
	"github.com/zeynelltalay/KURA-Ecommercee/internal/order"
	"github.com/zeynelltalay/KURA-Ecommercee/internal/validation"
)

var (
	ErrMissingUser   = errors.New("checkout requires an authenticated user")
	ErrEmptyCart     = errors.New("cart is empty, nothing to checkout")
	ErrDuplicateLine = errors.New("cart holds more than one line for a product")
)

// Submission is everything one checkout attempt needs, passed in explicitly
// rather than read from ambient session state. The cart is a snapshot owned
// by the caller; the engine never mutates it.
type Submission struct {
	UserID  string
	Cart    domain.Cart
	Payment domain.PaymentInstrument
	Address domain.ShippingAddress
}

// Receipt is the success outcome: the committed order id and confirmed total.
type Receipt struct {
	OrderID string
	Total   float64
	Status  domain.CheckoutStatus
}

// Engine runs checkout attempts against the document store. It holds no
// per-attempt state, so any number of checkouts may be in flight at once;
// the only shared mutable data is the store-held stock counters, touched
// exclusively inside the atomic transaction.
type Engine struct {
	store  kvstore.Store
	ledger *inventory.Ledger
	log    *slog.Logger
	now    func() time.Time
}

func NewEngine(store kvstore.Store, log *slog.Logger) *Engine {
	return &Engine{
		store:  store,
		ledger: inventory.NewLedger(store),
		log:    log,
		now:    time.Now,
	}
}

// Submit drives one attempt through VALIDATING and COMMITTING. Validation
// failures never open a transaction. Within the transaction, stock is
// checked for every line before any write is staged, and either all
// decrements plus the order write become visible together or none do.
// Nothing is retried here: insufficient stock, a concurrent-modification
// conflict and a transient store failure all surface to the caller, who may
// resubmit against fresh state with a newly allocated order id.
func (e *Engine) Submit(ctx context.Context, sub Submission) (*Receipt, error) {
	if sub.UserID == "" {
		return nil, ErrMissingUser
	}
	if sub.Cart.Empty() {
		return nil, ErrEmptyCart
	}
	// One line per product: staging two decrements for the same key would
	// collapse into one write, silently dropping a decrement.
	seen := make(map[string]struct{}, len(sub.Cart.Lines))
	for _, line := range sub.Cart.Lines {
		if _, dup := seen[line.ProductID]; dup {
			return nil, fmt.Errorf("%w: %s", ErrDuplicateLine, line.ProductID)
		}
		seen[line.ProductID] = struct{}{}
	}

	now := e.now()
	if err := validation.Payment(sub.Payment, now); err != nil {
		e.logAbort(sub.UserID, "", err)
		return nil, err
	}
	if err := validation.Address(sub.Address); err != nil {
		e.logAbort(sub.UserID, "", err)
		return nil, err
	}

	orderID := e.store.NewID()
	ord := buildOrder(orderID, sub, now)

	err := e.store.RunTransaction(ctx, func(tx *kvstore.Tx) error {
		// First pass: read and check stock for every line. All reads happen
		// before any staged write so they share one committed snapshot.
		checked := make([]inventory.Product, len(sub.Cart.Lines))
		for i, line := range sub.Cart.Lines {
			p, err := e.ledger.Check(tx, line.ProductID, line.Quantity)
			if err != nil {
				return err
			}
			checked[i] = p
		}

		// Second pass: stage every decrement, then the order write.
		for i, line := range sub.Cart.Lines {
			if err := e.ledger.StageDecrement(tx, checked[i], line.Quantity); err != nil {
				return err
			}
		}
		return order.Stage(tx, ord)
	})
	if err != nil {
		e.logAbort(sub.UserID, orderID, err)
		return nil, err
	}

	e.log.Info("checkout committed",
		"user_id", sub.UserID,
		"order_id", orderID,
		"total", ord.TotalAmount,
		"status", domain.CheckoutStatusCommitted.String(),
	)
	return &Receipt{
		OrderID: orderID,
		Total:   ord.TotalAmount,
		Status:  domain.CheckoutStatusCommitted,
	}, nil
}

func (e *Engine) logAbort(userID, orderID string, err error) {
	e.log.Warn("checkout aborted",
		"user_id", userID,
		"order_id", orderID,
		"kind", string(Classify(err)),
		"status", domain.CheckoutStatusAborted.String(),
		"error", err.Error(),
	)
}

func buildOrder(orderID string, sub Submission, now time.Time) domain.Order {
	items := make([]domain.OrderItem, len(sub.Cart.Lines))
	for i, line := range sub.Cart.Lines {
		items[i] = domain.OrderItem{
			ProductID: line.ProductID,
			Name:      line.Name,
			Price:     line.Price,
			Quantity:  line.Quantity,
			Image:     line.Image,
		}
	}
	return domain.Order{
		ID:              orderID,
		UserID:          sub.UserID,
		Items:           items,
		ShippingAddress: sub.Address,
		TotalAmount:     sub.Cart.TotalPrice(),
		Payment:         sub.Payment.Masked(),
		Status:          domain.OrderStatusCompleted,
		CreatedAt:       now,
	}
}
