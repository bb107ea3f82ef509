package ledger

import (
	"errors"
	"fmt"
	"strings"
	"unicode"

	"github.com/shopspring/decimal"
)

var (
	// ErrInvalidAmount is wrapped by every amount ValidationError.
	ErrInvalidAmount = errors.New("invalid amount")
	// ErrInvalidIdentifier is wrapped by every identifier ValidationError.
	ErrInvalidIdentifier = errors.New("invalid identifier")
	// ErrInvalidSource is wrapped when a credit source is not recognised.
	ErrInvalidSource = errors.New("invalid credit source")
	// ErrDuplicateIssue is returned when an issuance reference was already credited.
	ErrDuplicateIssue = errors.New("credit already issued for reference")
)

const maxIdentifierLength = 256

// ValidationError is returned before any mutation when input is rejected.
type ValidationError struct {
	Field  string
	Reason string
	kind   error
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("validation failed for %s: %s", e.Field, e.Reason)
}

func (e *ValidationError) Unwrap() error { return e.kind }

func invalid(kind error, field, reason string) *ValidationError {
	return &ValidationError{Field: field, Reason: reason, kind: kind}
}

// ParseAmount parses a decimal kWh amount, rejecting NaN, infinities and malformed input.
func ParseAmount(field, raw string) (decimal.Decimal, error) {
	s := strings.TrimSpace(raw)
	switch strings.ToLower(strings.TrimLeft(s, "+-")) {
	case "nan", "inf", "infinity":
		return decimal.Zero, invalid(ErrInvalidAmount, field, "must be a finite number")
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero, invalid(ErrInvalidAmount, field, "must be a decimal number")
	}
	return d, nil
}

func validatePositive(field string, amount decimal.Decimal) error {
	if !amount.IsPositive() {
		return invalid(ErrInvalidAmount, field, "must be greater than zero")
	}
	return nil
}

func validateNonNegative(field string, amount decimal.Decimal) error {
	if amount.IsNegative() {
		return invalid(ErrInvalidAmount, field, "must not be negative")
	}
	return nil
}

func validateIdentifier(field, id string) error {
	if strings.TrimSpace(id) == "" {
		return invalid(ErrInvalidIdentifier, field, "must not be empty")
	}
	if len(id) > maxIdentifierLength {
		return invalid(ErrInvalidIdentifier, field, fmt.Sprintf("must be at most %d bytes", maxIdentifierLength))
	}
	for _, r := range id {
		if unicode.IsControl(r) {
			return invalid(ErrInvalidIdentifier, field, "must not contain control characters")
		}
	}
	return nil
}
