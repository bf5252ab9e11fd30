// Package kitchen sends tickets for paid orders to the bar.
package kitchen

import (
	"context"
	"time"

	"github.com/iliamunaev/coffee-sms/internal/order"
)

// TicketLine is one drink or food item to prepare.
type TicketLine struct {
	Name      string   `json:"name"`
	Modifiers []string `json:"modifiers,omitempty"`
	Quantity  int      `json:"quantity"`
}

// Ticket is what the bar sees for an order.
type Ticket struct {
	OrderID  string       `json:"order_id"`
	CallerID string       `json:"caller_id"`
	Lines    []TicketLine `json:"lines"`
	Total    string       `json:"total"`
	Method   string       `json:"payment_method"`
	ReadyAt  time.Time    `json:"ready_at"`
}

// NewTicket builds a ticket from a recorded order.
func NewTicket(o order.Order) Ticket {
	lines := make([]TicketLine, 0, len(o.Lines))
	for _, l := range o.Lines {
		lines = append(lines, TicketLine{
			Name:      l.Name,
			Modifiers: append([]string(nil), l.Modifiers...),
			Quantity:  l.Quantity,
		})
	}
	return Ticket{
		OrderID:  o.ID,
		CallerID: o.CallerID,
		Lines:    lines,
		Total:    o.Total.String(),
		Method:   string(o.Method),
		ReadyAt:  o.EstimatedReadyAt,
	}
}

// Publisher delivers tickets.
type Publisher interface {
	Publish(ctx context.Context, t Ticket) error
	Close() error
}

// Step adapts p into an order fulfillment step.
func Step(p Publisher) order.Step {
	if p == nil {
		panic("kitchen.Step: nil publisher")
	}
	return order.Step{
		Name: "kitchen",
		Run: func(ctx context.Context, o order.Order) error {
			return p.Publish(ctx, NewTicket(o))
		},
	}
}
