// Package model defines the request and response payloads used by the API.
// It keeps transport-level types in one place for reuse.
package model

import "time"

// MessageRequest is one inbound text from a caller.
type MessageRequest struct {
	CallerID string `json:"caller_id"`
	Text     string `json:"text"`
}

// MessageResponse carries the assistant's reply.
type MessageResponse struct {
	Status string        `json:"status"` // "ok" | "error"
	Reply  string        `json:"reply,omitempty"`
	Error  *ErrorPayload `json:"error,omitempty"`
}

// StatusUpdateRequest moves an order to a new status.
type StatusUpdateRequest struct {
	CallerID string `json:"caller_id"`
	OrderID  string `json:"order_id"`
	Status   string `json:"status"` // "PREPARING" | "READY" | "COMPLETED" | "CANCELLED"
}

// LineView is one order line.
type LineView struct {
	Name      string   `json:"name"`
	Modifiers []string `json:"modifiers,omitempty"`
	Quantity  int      `json:"quantity"`
	UnitPrice string   `json:"unit_price"` // "$5.25"
	Subtotal  string   `json:"subtotal"`
}

// OrderView is a finalized order as returned by the API.
type OrderView struct {
	ID               string     `json:"id"`
	CallerID         string     `json:"caller_id"`
	Lines            []LineView `json:"lines"`
	Total            string     `json:"total"`
	PaymentMethod    string     `json:"payment_method"`
	Status           string     `json:"status"`
	CreatedAt        time.Time  `json:"created_at"`
	EstimatedReadyAt time.Time  `json:"estimated_ready_at"`
}

// OrdersResponse lists a caller's orders, oldest first.
type OrdersResponse struct {
	Status string        `json:"status"`
	Orders []OrderView   `json:"orders,omitempty"`
	Order  *OrderView    `json:"order,omitempty"`
	Error  *ErrorPayload `json:"error,omitempty"`
}

// StepResult captures the outcome of a fulfillment step.
type StepResult struct {
	Name       string `json:"name"`
	Status     string `json:"status"` // "ok" | "error" | "canceled"
	DurationMS int64  `json:"duration_ms"`
	Detail     string `json:"detail,omitempty"` // error kind
}

// HealthResponse reports liveness and load.
type HealthResponse struct {
	Status     string `json:"status"`
	InFlight   int64  `json:"in_flight"`
	Dispatched uint64 `json:"dispatched"`
	Sessions   int    `json:"sessions"`
}

// ErrorPayload describes an error response.
type ErrorPayload struct {
	Kind    string `json:"kind"`              // "bad_request", "order_not_found"
	Message string `json:"message,omitempty"` // optional, human-readable error message
}
