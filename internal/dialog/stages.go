package dialog

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/iliamunaev/coffee-sms/internal/apperr"
	"github.com/iliamunaev/coffee-sms/internal/cart"
	"github.com/iliamunaev/coffee-sms/internal/match"
	"github.com/iliamunaev/coffee-sms/internal/menu"
	"github.com/iliamunaev/coffee-sms/internal/order"
	"github.com/iliamunaev/coffee-sms/internal/payment"
	"github.com/iliamunaev/coffee-sms/internal/reply"
	"github.com/iliamunaev/coffee-sms/internal/session"
)

func (m *Machine) onMenu(ctx context.Context, sess *session.Session, text string) reply.Intent {
	switch key := keyword(text); {
	case isCheckout(key):
		if sess.Cart.IsEmpty() {
			return reply.Intent{Kind: reply.CartEmpty}
		}
		if len(sess.Queue) > 0 || sess.Pending != nil {
			return reply.Intent{Kind: reply.PendingItems}
		}
		sess.Stage = session.StagePayment
		return reply.Intent{Kind: reply.AskPayment, Cart: sess.Cart.Clone()}

	case key == "clear":
		sess.Cart.Clear()
		return reply.Intent{Kind: reply.CartCleared}
	}

	if arg, ok := cutCommand(text, "remove"); ok {
		n, err := strconv.Atoi(arg)
		if err != nil {
			return reply.Intent{Kind: reply.RemoveUsage}
		}
		return m.remove(sess, n)
	}
	if keyword(text) == "remove" {
		return reply.Intent{Kind: reply.RemoveUsage}
	}

	matched := m.matcher.Match(text)
	if len(matched) == 0 {
		switch {
		case isGreeting(text):
			return reply.Intent{Kind: reply.Greeting}
		case isThanks(text):
			return reply.Intent{Kind: reply.Thanks}
		}
		return reply.Intent{Kind: reply.NotRecognized}
	}

	var (
		added    []cart.Line
		eligible []match.Item
	)
	for _, mi := range matched {
		if mi.NeedsModifierChoice() {
			eligible = append(eligible, mi)
			continue
		}
		added = append(added, sess.Cart.Add(mi.Item, nil, 1))
	}

	if len(eligible) == 0 {
		return reply.Intent{Kind: reply.ItemsAdded, Added: added, Cart: sess.Cart.Clone()}
	}

	sess.Pending = m.pendingFor(sess.CallerID, eligible[0])
	sess.Queue = eligible[1:]
	sess.Stage = session.StageAwaitingModConfirm
	return m.ask(sess, added)
}

func (m *Machine) remove(sess *session.Session, n int) reply.Intent {
	lines := sess.Cart.Lines()
	if !sess.Cart.Remove(n-1, 1) {
		return reply.Intent{Kind: reply.RemoveNotFound, Index: n}
	}
	removed := lines[n-1]
	return reply.Intent{Kind: reply.ItemRemoved, Removed: &removed, Cart: sess.Cart.Clone()}
}

// pendingFor builds the modifier question for mi. A modifier named in the
// same message is pre-selected; otherwise the caller's last choice is
// offered, never applied.
func (m *Machine) pendingFor(callerID string, mi match.Item) *session.PendingChoice {
	p := &session.PendingChoice{Item: mi}
	if len(mi.Modifiers) > 0 {
		mod := mi.Modifiers[0]
		p.Chosen = &mod
		return p
	}

	cust := m.store.Customer(callerID)
	for _, fam := range m.catalog.Families() {
		name, ok := cust.LastModifiers[fam]
		if !ok {
			continue
		}
		if mod, ok := m.catalog.Modifier(name); ok {
			p.Proposed = &mod
			return p
		}
	}
	return p
}

func (m *Machine) ask(sess *session.Session, added []cart.Line) reply.Intent {
	p := sess.Pending
	in := reply.Intent{
		Kind:    reply.AskModifier,
		Item:    p.Item.Item,
		Options: m.catalog.Modifiers(),
		Added:   added,
	}
	switch {
	case p.Chosen != nil:
		in.Kind = reply.ConfirmModifier
		in.Modifier = p.Chosen
	case p.Proposed != nil:
		in.Modifier = p.Proposed
		in.Proposed = true
	}
	return in
}

func (m *Machine) onModifier(ctx context.Context, sess *session.Session, text string) reply.Intent {
	p := sess.Pending

	if mod, ok := m.matcher.Modifier(text); ok {
		p.Chosen = &mod
		p.Proposed = nil
		return m.ask(sess, nil)
	}

	var line cart.Line
	switch m.classify(ctx, sess, text) {
	case match.Yes:
		line = sess.Cart.Add(p.Item.Item, applied(p), 1)
	case match.No:
		line = sess.Cart.Add(p.Item.Item, nil, 1)
	default:
		return reply.Intent{Kind: reply.Clarify, Item: p.Item.Item, Options: m.catalog.Modifiers()}
	}

	return m.advance(sess, []cart.Line{line})
}

// advance drains the pending queue until an item needs a question or the
// queue is empty.
func (m *Machine) advance(sess *session.Session, added []cart.Line) reply.Intent {
	for {
		next, ok := sess.PopQueue()
		if !ok {
			break
		}
		if next.NeedsModifierChoice() {
			sess.Pending = m.pendingFor(sess.CallerID, next)
			return m.ask(sess, added)
		}
		added = append(added, sess.Cart.Add(next.Item, nil, 1))
	}

	sess.Pending = nil
	sess.Stage = session.StageMenu
	return reply.Intent{Kind: reply.CartSummary, Added: added, Cart: sess.Cart.Clone()}
}

// applied is what a yes puts on the line: the offered modifier plus any
// other-family modifiers named with the item.
func applied(p *session.PendingChoice) []menu.Modifier {
	offered := p.Offered()
	if offered == nil {
		return p.Item.Modifiers
	}
	mods := []menu.Modifier{*offered}
	for _, mod := range p.Item.Modifiers {
		if mod.Family != offered.Family {
			mods = append(mods, mod)
		}
	}
	return mods
}

func (m *Machine) classify(ctx context.Context, sess *session.Session, text string) match.Answer {
	ans := match.Classify(text)
	if ans != match.Unknown || m.classifier == nil {
		return ans
	}

	p := sess.Pending
	question := fmt.Sprintf("Would you like milk in your %s?", p.Item.Item.Name)
	if mod := p.Offered(); mod != nil {
		question = fmt.Sprintf("Add %s to your %s for %s?", mod.Name, p.Item.Item.Name, mod.Surcharge)
	}

	got, err := m.classifier.Classify(ctx, question, text)
	if err != nil {
		log.Warningf("caller=%s yes/no classifier unavailable: %v", sess.CallerID, err)
		return match.Unknown
	}
	return got
}

func (m *Machine) onPayment(ctx context.Context, sess *session.Session, text string) reply.Intent {
	switch keyword(text) {
	case "cash":
		return m.finalize(ctx, sess, payment.MethodCash, "")
	case "card":
		sess.Stage = session.StageAwaitingCard
		return reply.Intent{Kind: reply.CardFormat}
	}
	return reply.Intent{Kind: reply.PaymentRePrompt, Cart: sess.Cart.Clone()}
}

func (m *Machine) onCard(ctx context.Context, sess *session.Session, text string) reply.Intent {
	card, err := payment.ParseCardCommand(text)
	if err == nil {
		err = card.Validate(m.store.Now())
	}
	if err != nil {
		var ce *payment.CardError
		if !errors.As(err, &ce) {
			ce = &payment.CardError{Field: "format", Message: "Invalid card format. Please use: " + payment.CardFormat}
		}
		log.Infof("caller=%s card rejected: %s", sess.CallerID, ce.Field)
		return reply.Intent{Kind: reply.CardError, Message: ce.Message}
	}

	if m.gateway != nil {
		if err := m.gateway.Charge(ctx, sess.Cart.Total(), card); err != nil {
			log.Warningf("caller=%s charge failed: %s", sess.CallerID, apperr.Kind(err))
			if errors.Is(err, apperr.ErrPaymentDeclined) {
				return reply.Intent{Kind: reply.PaymentDeclined}
			}
			return reply.Intent{Kind: reply.CardError, Message: "We couldn't reach the card processor. Please send your card details again."}
		}
	}

	return m.finalize(ctx, sess, payment.MethodCard, card.Last4())
}

// finalize records the order, remembers the caller's choices and runs
// fulfillment. The session is marked completed; handle discards it.
func (m *Machine) finalize(ctx context.Context, sess *session.Session, method payment.Method, last4 string) reply.Intent {
	now := m.store.Now()
	o := order.New(sess.CallerID, sess.Cart, method, now, m.prep)
	m.book.Append(o)

	m.store.Customer(sess.CallerID).Remember(o.Lines, m.families, now)

	sess.Stage = session.StageCompleted
	sess.Pending = nil
	sess.Queue = nil

	if m.fulfiller != nil {
		// The caller's cancellation must not abort the kitchen ticket.
		if _, err := m.fulfiller.Run(context.WithoutCancel(ctx), o); err != nil {
			log.Errorf("fulfillment for order %s: %v", o.ID, err)
		}
	}

	return reply.Intent{Kind: reply.OrderConfirmed, Order: &o, Last4: last4}
}

// keyword strips trailing punctuation from a one-word command.
func keyword(text string) string {
	return strings.TrimRight(text, "!.,")
}

func isStart(text string) bool {
	return text == "start" || text == "restart"
}

func isCheckout(text string) bool {
	switch text {
	case "done", "checkout", "check out", "pay":
		return true
	}
	return false
}

func isGreeting(text string) bool {
	switch strings.Trim(text, "!. ") {
	case "hi", "hello", "hey", "hiya", "good morning", "good afternoon", "good evening":
		return true
	}
	return false
}

func isThanks(text string) bool {
	switch strings.Trim(text, "!. ") {
	case "thanks", "thank you", "thx", "ty", "thanks a lot":
		return true
	}
	return false
}

// cutCommand splits "<word> <arg>" and returns the trimmed argument.
func cutCommand(text, word string) (string, bool) {
	rest, ok := strings.CutPrefix(text, word+" ")
	if !ok {
		return "", false
	}
	rest = strings.TrimSpace(rest)
	return rest, rest != ""
}
