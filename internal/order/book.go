package order

import (
	"fmt"
	"sync"

	logging "github.com/op/go-logging"

	"github.com/iliamunaev/coffee-sms/internal/apperr"
)

var log = logging.MustGetLogger("order")

// Book is the completed-orders registry: per caller, an append-only list
// ordered oldest first. Safe for concurrent use.
type Book struct {
	mu     sync.RWMutex
	orders map[string][]Order
}

// NewBook returns an empty Book.
func NewBook() *Book {
	return &Book{orders: make(map[string][]Order)}
}

// Append records o.
func (b *Book) Append(o Order) {
	b.mu.Lock()
	b.orders[o.CallerID] = append(b.orders[o.CallerID], o.clone())
	b.mu.Unlock()

	log.Infof("order recorded id=%s caller=%s total=%s method=%s", o.ID, o.CallerID, o.Total, o.Method)
}

// Orders returns copies of the caller's orders, oldest first.
func (b *Book) Orders(callerID string) []Order {
	b.mu.RLock()
	defer b.mu.RUnlock()

	src := b.orders[callerID]
	out := make([]Order, len(src))
	for i, o := range src {
		out[i] = o.clone()
	}
	return out
}

// Latest returns the caller's most recent order.
func (b *Book) Latest(callerID string) (Order, bool) {
	b.mu.RLock()
	defer b.mu.RUnlock()

	src := b.orders[callerID]
	if len(src) == 0 {
		return Order{}, false
	}
	return src[len(src)-1].clone(), true
}

// Get finds one order by id.
func (b *Book) Get(callerID, id string) (Order, error) {
	b.mu.RLock()
	defer b.mu.RUnlock()

	for _, o := range b.orders[callerID] {
		if o.ID == id {
			return o.clone(), nil
		}
	}
	return Order{}, fmt.Errorf("order %s: %w", id, apperr.ErrOrderNotFound)
}

// Count is the total number of recorded orders.
func (b *Book) Count() int {
	b.mu.RLock()
	defer b.mu.RUnlock()

	n := 0
	for _, list := range b.orders {
		n += len(list)
	}
	return n
}

// UpdateStatus moves an order along its lifecycle and returns the result.
func (b *Book) UpdateStatus(callerID, id string, next Status) (Order, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	list := b.orders[callerID]
	for i := range list {
		if list[i].ID != id {
			continue
		}
		cur := list[i].Status
		if !cur.CanTransition(next) {
			return Order{}, fmt.Errorf("order %s: %s -> %s: %w", id, cur, next, apperr.ErrInvalidTransition)
		}
		list[i].Status = next
		log.Infof("order status id=%s %s -> %s", id, cur, next)
		return list[i].clone(), nil
	}
	return Order{}, fmt.Errorf("order %s: %w", id, apperr.ErrOrderNotFound)
}
