package payment

import (
	"context"
	"fmt"
	"time"

	logging "github.com/op/go-logging"

	"github.com/iliamunaev/coffee-sms/internal/apperr"
	"github.com/iliamunaev/coffee-sms/internal/menu"
	"github.com/iliamunaev/coffee-sms/internal/service/tracker"
)

var log = logging.MustGetLogger("payment")

// Gateway charges a card. A decline wraps apperr.ErrPaymentDeclined.
type Gateway interface {
	Charge(ctx context.Context, amount menu.Money, card Card) error
}

// MockGateway approves every card except those whose number ends in
// "0000". It simulates latency and honors context cancellation.
type MockGateway struct {
	delay time.Duration
	tr    *tracker.Tracker
}

// NewMockGateway returns a mock gateway. tr may be nil.
func NewMockGateway(delay time.Duration, tr *tracker.Tracker) *MockGateway {
	return &MockGateway{delay: delay, tr: tr}
}

// Charge implements Gateway.
func (g *MockGateway) Charge(ctx context.Context, amount menu.Money, card Card) error {
	if g.tr != nil {
		g.tr.Inc()
		defer g.tr.Dec()
	}

	// Block until the delay elapses or the context is done
	if err := waitOrCancel(ctx, g.delay); err != nil {
		return err
	}

	if amount <= 0 {
		return fmt.Errorf("payment: amount %s: %w", amount, apperr.ErrPaymentDeclined)
	}
	if card.Last4() == "0000" {
		log.Infof("mock gateway declined card ending %s", card.Last4())
		return fmt.Errorf("payment: card ending %s: %w", card.Last4(), apperr.ErrPaymentDeclined)
	}

	log.Debugf("mock gateway charged %s to card ending %s", amount, card.Last4())
	return nil
}

// waitOrCancel blocks for d or until ctx is canceled.
//
// It returns nil if the duration elapses, or ctx.Err() if the context
// is done first. If d <= 0, it returns immediately.
func waitOrCancel(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	t := time.NewTimer(d)
	defer t.Stop()

	select {
	case <-t.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
