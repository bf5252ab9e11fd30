// Package payment validates card details and charges them through a
// gateway.
package payment

import (
	"strconv"
	"strings"
	"time"
)

// Method is how an order is paid.
type Method string

const (
	MethodCash Method = "cash"
	MethodCard Method = "card"
)

// CardFormat is the command callers are asked to send.
const CardFormat = "CARD [number] [MM/YY] [CVV]"

// Card holds the fields of a CARD command. It is never logged.
type Card struct {
	Number string
	Expiry string
	CVV    string
}

// Last4 returns the last four digits of the card number.
func (c Card) Last4() string {
	if len(c.Number) < 4 {
		return c.Number
	}
	return c.Number[len(c.Number)-4:]
}

// CardError is a user-facing validation failure for one card field.
type CardError struct {
	Field   string
	Message string
}

func (e *CardError) Error() string { return e.Message }
func (e *CardError) Kind() string  { return "invalid_card" }

var (
	errFormat = &CardError{Field: "format", Message: "Invalid card format. Please use: " + CardFormat}
	errNumber = &CardError{Field: "number", Message: "Invalid card number. Please enter a 16-digit number."}
	errCVV    = &CardError{Field: "cvv", Message: "Invalid CVV. Please enter a 3-digit number."}
	errExpiry = &CardError{Field: "expiry", Message: "Invalid expiration date. Please use MM/YY format with a future date."}
)

// ParseCardCommand splits "CARD <number> <MM/YY> <cvv>" into its fields.
// Fields must be separated by single spaces; the leading token is
// case-insensitive. Only the structure is checked here.
func ParseCardCommand(text string) (Card, error) {
	parts := strings.Split(strings.TrimSpace(text), " ")
	if len(parts) != 4 || !strings.EqualFold(parts[0], "card") {
		return Card{}, errFormat
	}
	for _, p := range parts[1:] {
		if p == "" {
			return Card{}, errFormat
		}
	}
	return Card{Number: parts[1], Expiry: parts[2], CVV: parts[3]}, nil
}

// ValidateCard checks number, expiry and cvv against the current year.
func ValidateCard(number, expiry, cvv string) error {
	return ValidateCardAt(number, expiry, cvv, time.Now())
}

// ValidateCardAt is ValidateCard with an explicit clock. Expiry is checked
// at year precision only: a card is accepted through the whole of its
// expiry year.
func ValidateCardAt(number, expiry, cvv string, now time.Time) error {
	if !digits(number, 16) {
		return errNumber
	}
	if !digits(cvv, 3) {
		return errCVV
	}

	mm, yy, ok := strings.Cut(expiry, "/")
	if !ok || !digits(mm, 2) || !digits(yy, 2) {
		return errExpiry
	}
	month, _ := strconv.Atoi(mm)
	year, _ := strconv.Atoi(yy)
	if month < 1 || month > 12 {
		return errExpiry
	}
	if year < now.Year()%100 {
		return errExpiry
	}
	return nil
}

// Validate runs ValidateCardAt on c.
func (c Card) Validate(now time.Time) error {
	return ValidateCardAt(c.Number, c.Expiry, c.CVV, now)
}

func digits(s string, n int) bool {
	if len(s) != n {
		return false
	}
	for i := 0; i < len(s); i++ {
		if s[i] < '0' || s[i] > '9' {
			return false
		}
	}
	return true
}
