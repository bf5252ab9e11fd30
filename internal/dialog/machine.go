// Package dialog is the ordering conversation: a per-caller state machine
// that turns one inbound text into a cart mutation, a stage transition and
// a reply.
package dialog

import (
	"context"
	"strings"
	"time"

	logging "github.com/op/go-logging"

	"github.com/iliamunaev/coffee-sms/internal/match"
	"github.com/iliamunaev/coffee-sms/internal/menu"
	"github.com/iliamunaev/coffee-sms/internal/order"
	"github.com/iliamunaev/coffee-sms/internal/payment"
	"github.com/iliamunaev/coffee-sms/internal/reply"
	"github.com/iliamunaev/coffee-sms/internal/service/tracker"
	"github.com/iliamunaev/coffee-sms/internal/session"
)

var log = logging.MustGetLogger("dialog")

// Classifier is the external yes/no fallback. It never decides anything
// the fixed word lists can.
type Classifier interface {
	Classify(ctx context.Context, question, answer string) (match.Answer, error)
}

// Config wires a Machine. Catalog, Store, Book and Renderer are required.
type Config struct {
	Catalog  *menu.Catalog
	Store    *session.Store
	Book     *order.Book
	Renderer *reply.Renderer

	// Gateway charges cards after validation. Nil accepts any valid card.
	Gateway payment.Gateway
	// Fulfiller runs after an order is recorded. Nil skips fulfillment.
	Fulfiller *order.Fulfiller
	// Classifier is consulted only for answers the word lists can't place.
	Classifier Classifier
	// Tracker counts dispatches in flight.
	Tracker *tracker.Tracker
	// PrepTime is added to the order time for the ready estimate.
	PrepTime time.Duration
}

// Machine is safe for concurrent use. Dispatches for one caller are
// serialized; different callers proceed independently.
type Machine struct {
	catalog    *menu.Catalog
	matcher    *match.Matcher
	store      *session.Store
	book       *order.Book
	renderer   *reply.Renderer
	gateway    payment.Gateway
	fulfiller  *order.Fulfiller
	classifier Classifier
	tr         *tracker.Tracker
	prep       time.Duration
	families   map[string]string
}

// New returns a Machine. It panics if a required collaborator is nil.
func New(cfg Config) *Machine {
	if cfg.Catalog == nil {
		panic("dialog.New: nil catalog")
	}
	if cfg.Store == nil {
		panic("dialog.New: nil session store")
	}
	if cfg.Book == nil {
		panic("dialog.New: nil order book")
	}
	if cfg.Renderer == nil {
		panic("dialog.New: nil renderer")
	}
	if cfg.Tracker == nil {
		cfg.Tracker = &tracker.Tracker{}
	}
	if cfg.PrepTime <= 0 {
		cfg.PrepTime = 15 * time.Minute
	}

	families := make(map[string]string)
	for _, mod := range cfg.Catalog.Modifiers() {
		families[mod.Name] = mod.Family
	}

	return &Machine{
		catalog:    cfg.Catalog,
		matcher:    match.New(cfg.Catalog),
		store:      cfg.Store,
		book:       cfg.Book,
		renderer:   cfg.Renderer,
		gateway:    cfg.Gateway,
		fulfiller:  cfg.Fulfiller,
		classifier: cfg.Classifier,
		tr:         cfg.Tracker,
		prep:       cfg.PrepTime,
		families:   families,
	}
}

// Start replaces any session for callerID with a fresh one and returns
// the menu.
func (m *Machine) Start(ctx context.Context, callerID string) string {
	defer m.tr.Track()()

	unlock := m.store.Lock(callerID)
	in := m.start(callerID)
	unlock()

	return m.renderer.Render(ctx, in)
}

// Dispatch handles one inbound text and returns the reply. It never fails:
// every problem becomes reply text.
func (m *Machine) Dispatch(ctx context.Context, callerID, text string) string {
	defer m.tr.Track()()

	unlock := m.store.Lock(callerID)
	in := m.handle(ctx, callerID, match.Normalize(text))
	unlock()

	return m.renderer.Render(ctx, in)
}

// Snapshot returns a copy of the caller's session.
func (m *Machine) Snapshot(callerID string) (*session.Session, bool) {
	unlock := m.store.Lock(callerID)
	defer unlock()

	sess, _ := m.store.Get(callerID)
	if sess == nil {
		return nil, false
	}
	return sess.Clone(), true
}

// Sessions is the number of stored sessions.
func (m *Machine) Sessions() int { return m.store.Len() }

func (m *Machine) start(callerID string) reply.Intent {
	m.store.Put(session.New(callerID, m.store.Now()))
	log.Infof("session started caller=%s", callerID)
	return reply.Intent{Kind: reply.Welcome, Items: m.catalog.Items()}
}

func (m *Machine) handle(ctx context.Context, callerID, text string) reply.Intent {
	if isStart(keyword(text)) {
		return m.start(callerID)
	}

	sess, expired := m.store.Get(callerID)

	if in, ok := m.command(sess, callerID, keyword(text)); ok {
		return in
	}

	if sess == nil {
		if expired {
			return reply.Intent{Kind: reply.SessionExpired}
		}
		return reply.Intent{Kind: reply.NeedStart}
	}

	sess.LastActivity = m.store.Now()
	prev := sess.Stage
	log.Debugf("dispatch caller=%s stage=%s", callerID, prev)

	var in reply.Intent
	switch sess.Stage {
	case session.StageMenu:
		in = m.onMenu(ctx, sess, text)
	case session.StageAwaitingModConfirm:
		in = m.onModifier(ctx, sess, text)
	case session.StagePayment:
		in = m.onPayment(ctx, sess, text)
	case session.StageAwaitingCard:
		in = m.onCard(ctx, sess, text)
	default:
		// Completed sessions are deleted when they complete.
		log.Errorf("caller=%s in unexpected stage %s, resetting", callerID, sess.Stage)
		return m.start(callerID)
	}

	if sess.Stage != prev {
		log.Infof("caller=%s stage %s -> %s", callerID, prev, sess.Stage)
	}
	if sess.Stage == session.StageCompleted {
		m.store.Delete(callerID)
	}
	return in
}

// command answers the stage-independent commands. Listing and status
// commands work without a session.
func (m *Machine) command(sess *session.Session, callerID, text string) (reply.Intent, bool) {
	switch text {
	case "help", "?":
		return reply.Intent{Kind: reply.Help}, true

	case "menu":
		return reply.Intent{Kind: reply.MenuListing, Title: "Here's our menu:", Items: m.catalog.Items()}, true

	case "hot", "cold", "food":
		cat := menu.Category(text)
		return reply.Intent{
			Kind:  reply.MenuListing,
			Title: "Here are our " + strings.ToLower(cat.Title()) + ":",
			Items: m.catalog.ByCategory(cat),
		}, true

	case "status":
		o, ok := m.book.Latest(callerID)
		if !ok {
			return reply.Intent{Kind: reply.NoOrders}, true
		}
		return reply.Intent{Kind: reply.OrderStatus, Order: &o}, true

	case "cart":
		if sess == nil {
			return reply.Intent{}, false
		}
		return reply.Intent{Kind: reply.CartSummary, Cart: sess.Cart.Clone()}, true
	}

	if term, ok := cutCommand(text, "find"); ok {
		return reply.Intent{
			Kind:  reply.MenuListing,
			Title: "Results for \"" + term + "\":",
			Items: m.catalog.Search(term),
		}, true
	}
	return reply.Intent{}, false
}
