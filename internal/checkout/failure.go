package checkout

import (
	"errors"

	"github.com/zeynelltalay/KURA-Ecommercee/internal/inventory"
	"github.com/zeynelltalay/KURA-Ecommercee/internal/kvstore"
	"github.com/zeynelltalay/KURA-Ecommercee/internal/validation"
)

// FailureKind buckets every checkout failure into the taxonomy callers act
// on: correct the input, adjust the cart, or resubmit as-is.
type FailureKind string

const (
	// FailureValidation covers bad input detected before any store access.
	// Recoverable by user correction only.
	FailureValidation FailureKind = "validation"

	// FailureInsufficientStock is the business-rule conflict detected inside
	// the transaction. Resubmission is safe and starts a fresh transaction.
	FailureInsufficientStock FailureKind = "insufficient_stock"

	// FailureConflict means another checkout raced and won. Blind
	// resubmission is safe: every attempt re-reads fresh stock values.
	FailureConflict FailureKind = "conflict"

	// FailureTransient covers connectivity and other store failures. No
	// partial state can exist, so a wholesale retry is safe.
	FailureTransient FailureKind = "transient"
)

// Classify maps a Submit error onto the failure taxonomy. Unknown errors
// are treated as transient, since the transaction boundary guarantees they
// left no partial state behind.
func Classify(err error) FailureKind {
	var verr *validation.Error
	if errors.As(err, &verr) {
		return FailureValidation
	}
	var serr *inventory.InsufficientStockError
	if errors.As(err, &serr) {
		return FailureInsufficientStock
	}
	switch {
	case errors.Is(err, kvstore.ErrConflict):
		return FailureConflict
	case errors.Is(err, ErrMissingUser), errors.Is(err, ErrEmptyCart),
		errors.Is(err, ErrDuplicateLine), errors.Is(err, inventory.ErrProductNotFound):
		return FailureValidation
	default:
		return FailureTransient
	}
}
