// Package apperr defines the domain error taxonomy shared by the
// state machine, the order book and the HTTP gateway.
package apperr

import (
	"context"
	"errors"
	"net/http"
)

var (
	ErrPaymentDeclined   = errors.New("payment declined")
	ErrOrderNotFound     = errors.New("order not found")
	ErrInvalidTransition = errors.New("invalid order status transition")
	ErrBadRequest        = errors.New("bad request")
)

// kinder is satisfied by domain errors
// that carry their own classification kind.
type kinder interface {
	Kind() string
}

// kindToStatus maps error classification kinds
// to HTTP status codes.
var kindToStatus = map[string]int{
	"payment_declined":   http.StatusPaymentRequired,
	"invalid_card":       http.StatusBadRequest,
	"bad_request":        http.StatusBadRequest,
	"order_not_found":    http.StatusNotFound,
	"invalid_transition": http.StatusConflict,
	"timeout":            http.StatusGatewayTimeout,
	"canceled":           http.StatusRequestTimeout,
}

// Kind returns the stable classification of err.
func Kind(err error) string {
	if err == nil {
		return ""
	}

	var k kinder
	if errors.As(err, &k) {
		return k.Kind()
	}

	switch {
	case errors.Is(err, ErrPaymentDeclined):
		return "payment_declined"

	case errors.Is(err, ErrOrderNotFound):
		return "order_not_found"

	case errors.Is(err, ErrInvalidTransition):
		return "invalid_transition"

	case errors.Is(err, ErrBadRequest):
		return "bad_request"

	case errors.Is(err, context.DeadlineExceeded):
		return "timeout"

	case errors.Is(err, context.Canceled):
		return "canceled"

	default:
		return "internal"
	}
}

// HTTPStatus maps err to the status code the gateway answers with.
func HTTPStatus(err error) int {
	if err == nil {
		return http.StatusOK
	}
	if s, ok := kindToStatus[Kind(err)]; ok {
		return s
	}
	return http.StatusInternalServerError
}
