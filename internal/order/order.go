// Package order records finalized orders and runs their fulfillment steps.
package order

import (
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/iliamunaev/coffee-sms/internal/cart"
	"github.com/iliamunaev/coffee-sms/internal/menu"
	"github.com/iliamunaev/coffee-sms/internal/payment"
)

// Status is an order's fulfillment status.
type Status string

const (
	Pending   Status = "PENDING"
	Preparing Status = "PREPARING"
	Ready     Status = "READY"
	Completed Status = "COMPLETED"
	Cancelled Status = "CANCELLED"
)

// ParseStatus accepts any letter case.
func ParseStatus(s string) (Status, bool) {
	st := Status(strings.ToUpper(strings.TrimSpace(s)))
	switch st {
	case Pending, Preparing, Ready, Completed, Cancelled:
		return st, true
	}
	return "", false
}

// Terminal reports whether no further transition is allowed.
func (s Status) Terminal() bool { return s == Completed || s == Cancelled }

// CanTransition reports whether s may move to next.
// The forward path is PENDING -> PREPARING -> READY -> COMPLETED; any
// non-terminal status may be CANCELLED.
func (s Status) CanTransition(next Status) bool {
	if s.Terminal() {
		return false
	}
	if next == Cancelled {
		return true
	}
	switch s {
	case Pending:
		return next == Preparing
	case Preparing:
		return next == Ready
	case Ready:
		return next == Completed
	}
	return false
}

// Order is an immutable snapshot of a paid cart. Only Status changes,
// and only through Book.UpdateStatus.
type Order struct {
	ID               string
	CallerID         string
	Lines            []cart.Line
	Total            menu.Money
	Method           payment.Method
	CreatedAt        time.Time
	EstimatedReadyAt time.Time
	Status           Status
}

// NewID returns a short unique order token.
func NewID() string {
	return strings.ReplaceAll(uuid.NewString(), "-", "")[:8]
}

// New snapshots c into a PENDING order ready prep after now.
func New(callerID string, c *cart.Cart, method payment.Method, now time.Time, prep time.Duration) Order {
	return Order{
		ID:               NewID(),
		CallerID:         callerID,
		Lines:            c.Lines(),
		Total:            c.Total(),
		Method:           method,
		CreatedAt:        now,
		EstimatedReadyAt: now.Add(prep),
		Status:           Pending,
	}
}

// Summary renders the order's lines and total.
func (o Order) Summary() string {
	return cart.Summarize(o.Lines, o.Total)
}

func (o Order) clone() Order {
	lines := make([]cart.Line, len(o.Lines))
	for i, l := range o.Lines {
		l.Modifiers = append([]string(nil), l.Modifiers...)
		lines[i] = l
	}
	o.Lines = lines
	return o
}
