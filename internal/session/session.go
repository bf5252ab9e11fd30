// Package session holds per-caller conversation state and the keyed
// store that serializes access to it.
package session

import (
	"time"

	"github.com/iliamunaev/coffee-sms/internal/cart"
	"github.com/iliamunaev/coffee-sms/internal/match"
	"github.com/iliamunaev/coffee-sms/internal/menu"
)

// Stage is the step of a caller's ordering flow.
type Stage int

const (
	StageMenu Stage = iota
	StageAwaitingModConfirm
	StagePayment
	StageAwaitingCard
	StageCompleted
)

func (s Stage) String() string {
	switch s {
	case StageMenu:
		return "MENU"
	case StageAwaitingModConfirm:
		return "AWAITING_MOD_CONFIRM"
	case StagePayment:
		return "PAYMENT"
	case StageAwaitingCard:
		return "AWAITING_CARD"
	case StageCompleted:
		return "COMPLETED"
	default:
		return "UNKNOWN"
	}
}

// PendingChoice is a matched drink waiting for a modifier decision.
// Chosen is what the caller named; Proposed is a remembered preference
// that is only applied on an explicit yes.
type PendingChoice struct {
	Item     match.Item
	Chosen   *menu.Modifier
	Proposed *menu.Modifier
}

// Offered is the modifier a "yes" would apply, if any.
func (p *PendingChoice) Offered() *menu.Modifier {
	if p.Chosen != nil {
		return p.Chosen
	}
	return p.Proposed
}

// Session is one caller's in-progress order.
type Session struct {
	CallerID     string
	Stage        Stage
	Cart         *cart.Cart
	Pending      *PendingChoice
	Queue        []match.Item
	CreatedAt    time.Time
	LastActivity time.Time
}

// New returns a fresh session in StageMenu with an empty cart.
func New(callerID string, now time.Time) *Session {
	return &Session{
		CallerID:     callerID,
		Stage:        StageMenu,
		Cart:         cart.New(),
		CreatedAt:    now,
		LastActivity: now,
	}
}

// PopQueue removes and returns the head of the pending queue.
func (s *Session) PopQueue() (match.Item, bool) {
	if len(s.Queue) == 0 {
		return match.Item{}, false
	}
	head := s.Queue[0]
	s.Queue = s.Queue[1:]
	if len(s.Queue) == 0 {
		s.Queue = nil
	}
	return head, true
}

// Clone returns a deep copy safe to inspect outside the caller lock.
func (s *Session) Clone() *Session {
	out := *s
	out.Cart = s.Cart.Clone()
	out.Queue = append([]match.Item(nil), s.Queue...)
	if s.Pending != nil {
		p := *s.Pending
		out.Pending = &p
	}
	return &out
}

// Customer is longer-lived memory about a caller. It survives session
// resets and expiry.
type Customer struct {
	Visits        int
	LastVisit     time.Time
	LastModifiers map[string]string // family -> modifier name
}

// Remember records a finalized order's modifiers.
func (c *Customer) Remember(lines []cart.Line, families map[string]string, at time.Time) {
	c.Visits++
	c.LastVisit = at
	if c.LastModifiers == nil {
		c.LastModifiers = make(map[string]string)
	}
	for _, l := range lines {
		for _, name := range l.Modifiers {
			if fam, ok := families[name]; ok {
				c.LastModifiers[fam] = name
			}
		}
	}
}
