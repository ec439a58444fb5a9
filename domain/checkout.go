package domain

import "time"

// CheckoutStatus tracks one checkout attempt through the engine:
// IDLE -> VALIDATING -> COMMITTING -> {COMMITTED, ABORTED}.
type CheckoutStatus string

const (
	CheckoutStatusIdle       CheckoutStatus = "IDLE"
	CheckoutStatusValidating CheckoutStatus = "VALIDATING"
	CheckoutStatusCommitting CheckoutStatus = "COMMITTING"
	CheckoutStatusCommitted  CheckoutStatus = "COMMITTED"
	CheckoutStatusAborted    CheckoutStatus = "ABORTED"
)

func (s CheckoutStatus) IsTerminal() bool {
	return s == CheckoutStatusCommitted || s == CheckoutStatusAborted
}

// String representation (for logging)
func (s CheckoutStatus) String() string {
	return string(s)
}

// CheckoutDraft is in-progress checkout form state saved between visits.
// It deliberately holds only shipping fields and the card holder name;
// the card number and CVV are never written to any store.
type CheckoutDraft struct {
	Address    ShippingAddress `json:"address"`
	CardHolder string          `json:"card_holder,omitempty"`
	SavedAt    time.Time       `json:"saved_at"`
}
