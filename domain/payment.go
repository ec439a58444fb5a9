package domain

import "strings"

// PaymentInstrument holds the raw card details for a single checkout
// attempt. It is transient: only the masked derivative produced by Masked
// is ever persisted.
type PaymentInstrument struct {
	CardNumber string `json:"card_number"`
	CardHolder string `json:"card_holder"`
	Expiry     string `json:"expiry"` // MM/YY
	CVV        string `json:"cvv"`
}

// MaskedPayment is the non-sensitive payment reference kept on the order.
type MaskedPayment struct {
	Method     string `json:"method"`
	CardHolder string `json:"card_holder"`
	LastFour   string `json:"last_four"`
}

const PaymentMethodCreditCard = "credit_card"

// Masked derives the persistable payment reference: holder name plus the
// last four digits of the card number.
func (p PaymentInstrument) Masked() MaskedPayment {
	digits := strings.NewReplacer(" ", "", "-", "").Replace(p.CardNumber)
	lastFour := digits
	if len(digits) > 4 {
		lastFour = digits[len(digits)-4:]
	}
	return MaskedPayment{
		Method:     PaymentMethodCreditCard,
		CardHolder: p.CardHolder,
		LastFour:   lastFour,
	}
}

// ShippingAddress is a plain value object; every field is required at
// validation time.
type ShippingAddress struct {
	FirstName  string `json:"first_name"`
	LastName   string `json:"last_name"`
	Address    string `json:"address"`
	City       string `json:"city"`
	District   string `json:"district"`
	PostalCode string `json:"postal_code"`
	Phone      string `json:"phone"`
	Email      string `json:"email"`
}
