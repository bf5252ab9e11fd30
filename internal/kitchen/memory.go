package kitchen

import (
	"context"
	"sync"

	logging "github.com/op/go-logging"
)

var log = logging.MustGetLogger("kitchen")

// MemoryPublisher keeps tickets in process. It is used when no broker is
// configured and in tests.
type MemoryPublisher struct {
	mu      sync.Mutex
	tickets []Ticket
	closed  bool
}

// NewMemoryPublisher returns an empty in-process queue.
func NewMemoryPublisher() *MemoryPublisher { return &MemoryPublisher{} }

// Publish implements Publisher.
func (m *MemoryPublisher) Publish(ctx context.Context, t Ticket) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.closed {
		return errClosed
	}
	m.tickets = append(m.tickets, t)
	log.Debugf("ticket queued order=%s lines=%d", t.OrderID, len(t.Lines))
	return nil
}

// Tickets returns the queued tickets, oldest first.
func (m *MemoryPublisher) Tickets() []Ticket {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]Ticket(nil), m.tickets...)
}

// Close implements Publisher.
func (m *MemoryPublisher) Close() error {
	m.mu.Lock()
	m.closed = true
	m.mu.Unlock()
	return nil
}
