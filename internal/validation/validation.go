// Package validation holds the pure payment and shipping checks run before
// any store access. Functions here never touch I/O and always return a
// structured outcome, so validating the same input twice yields the same
// result.
package validation

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/zeynelltalay/KURA-Ecommercee/domain"
)

var (
	cardShape  = regexp.MustCompile(`^[0-9]{16}$`)
	cvvShape   = regexp.MustCompile(`^[0-9]{3}$`)
	emailShape = regexp.MustCompile(`^[^@\s]+@[^@\s]+$`)
)

// Violation describes a single failed field check.
type Violation struct {
	Field  string `json:"field"`
	Reason string `json:"reason"`
}

// Error carries every violation found in one validation pass.
type Error struct {
	Violations []Violation
}

func (e *Error) Error() string {
	parts := make([]string, 0, len(e.Violations))
	for _, v := range e.Violations {
		parts = append(parts, fmt.Sprintf("%s: %s", v.Field, v.Reason))
	}
	return "validation failed: " + strings.Join(parts, "; ")
}

// ValidCardNumber reports whether the card number has the accepted shape
// after stripping spaces and dashes: exactly sixteen digits. This is a
// shape check, not a checksum.
func ValidCardNumber(number string) bool {
	stripped := strings.NewReplacer(" ", "", "-", "").Replace(number)
	return cardShape.MatchString(stripped)
}

// ValidCVV reports whether the CVV is exactly three digits.
func ValidCVV(cvv string) bool {
	return cvvShape.MatchString(cvv)
}

// ValidExpiry parses an MM/YY expiry and reports whether it names a
// calendar month strictly after now. Anything unparseable is rejected.
func ValidExpiry(expiry string, now time.Time) bool {
	month, year, ok := parseExpiry(expiry)
	if !ok {
		return false
	}
	// Start of the expiry month must lie in the future: a card expiring
	// this month is already unusable.
	start := time.Date(year, time.Month(month), 1, 0, 0, 0, 0, now.Location())
	return start.After(now)
}

func parseExpiry(expiry string) (month, year int, ok bool) {
	parts := strings.Split(strings.TrimSpace(expiry), "/")
	if len(parts) != 2 {
		return 0, 0, false
	}
	m, err := strconv.Atoi(parts[0])
	if err != nil || m < 1 || m > 12 {
		return 0, 0, false
	}
	y, err := strconv.Atoi(parts[1])
	if err != nil || y < 0 || y > 99 {
		return 0, 0, false
	}
	return m, 2000 + y, true
}

// Payment validates a payment instrument against the current time.
// Returns nil when every check passes.
func Payment(p domain.PaymentInstrument, now time.Time) *Error {
	var violations []Violation
	if !ValidCardNumber(p.CardNumber) {
		violations = append(violations, Violation{Field: "card_number", Reason: "must be 16 digits"})
	}
	if !ValidCVV(p.CVV) {
		violations = append(violations, Violation{Field: "cvv", Reason: "must be 3 digits"})
	}
	if !ValidExpiry(p.Expiry, now) {
		violations = append(violations, Violation{Field: "expiry", Reason: "must be a future month in MM/YY form"})
	}
	if len(violations) == 0 {
		return nil
	}
	return &Error{Violations: violations}
}

// Address validates a shipping address: every field is required and the
// email must have a local@domain shape.
func Address(a domain.ShippingAddress) *Error {
	var violations []Violation
	required := []struct {
		field string
		value string
	}{
		{"first_name", a.FirstName},
		{"last_name", a.LastName},
		{"address", a.Address},
		{"city", a.City},
		{"district", a.District},
		{"postal_code", a.PostalCode},
		{"phone", a.Phone},
		{"email", a.Email},
	}
	for _, r := range required {
		if strings.TrimSpace(r.value) == "" {
			violations = append(violations, Violation{Field: r.field, Reason: "is required"})
		}
	}
	if strings.TrimSpace(a.Email) != "" && !emailShape.MatchString(a.Email) {
		violations = append(violations, Violation{Field: "email", Reason: "must look like local@domain"})
	}
	if len(violations) == 0 {
		return nil
	}
	return &Error{Violations: violations}
}
