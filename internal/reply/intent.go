// Package reply turns state machine outcomes into outbound text.
package reply

import (
	"github.com/iliamunaev/coffee-sms/internal/cart"
	"github.com/iliamunaev/coffee-sms/internal/menu"
	"github.com/iliamunaev/coffee-sms/internal/order"
)

// Kind is what a reply must communicate.
type Kind int

const (
	Welcome Kind = iota
	NeedStart
	SessionExpired
	Help
	MenuListing
	AskModifier
	ConfirmModifier
	ItemsAdded
	CartSummary
	NotRecognized
	Clarify
	CartEmpty
	PendingItems
	AskPayment
	PaymentRePrompt
	CardFormat
	CardError
	PaymentDeclined
	OrderConfirmed
	OrderStatus
	NoOrders
	CartCleared
	ItemRemoved
	RemoveNotFound
	RemoveUsage
	Greeting
	Thanks
)

var kindNames = [...]string{
	Welcome:         "welcome",
	NeedStart:       "need_start",
	SessionExpired:  "session_expired",
	Help:            "help",
	MenuListing:     "menu_listing",
	AskModifier:     "ask_modifier",
	ConfirmModifier: "confirm_modifier",
	ItemsAdded:      "items_added",
	CartSummary:     "cart_summary",
	NotRecognized:   "not_recognized",
	Clarify:         "clarify",
	CartEmpty:       "cart_empty",
	PendingItems:    "pending_items",
	AskPayment:      "ask_payment",
	PaymentRePrompt: "payment_reprompt",
	CardFormat:      "card_format",
	CardError:       "card_error",
	PaymentDeclined: "payment_declined",
	OrderConfirmed:  "order_confirmed",
	OrderStatus:     "order_status",
	NoOrders:        "no_orders",
	CartCleared:     "cart_cleared",
	ItemRemoved:     "item_removed",
	RemoveNotFound:  "remove_not_found",
	RemoveUsage:     "remove_usage",
	Greeting:        "greeting",
	Thanks:          "thanks",
}

func (k Kind) String() string {
	if k >= 0 && int(k) < len(kindNames) && kindNames[k] != "" {
		return kindNames[k]
	}
	return "unknown"
}

// Intent is structured data describing one reply. Only the fields the
// Kind needs are set.
type Intent struct {
	Kind Kind

	// Title and Items describe a menu listing.
	Title string
	Items []menu.Item

	// Item is the drink a modifier question is about. Modifier is the
	// choice being confirmed, Proposed marks it as a remembered preference
	// and Options are the modifiers on offer.
	Item     menu.Item
	Modifier *menu.Modifier
	Proposed bool
	Options  []menu.Modifier

	// Added are lines just put in the cart this turn; Removed is a line
	// just taken out.
	Added   []cart.Line
	Removed *cart.Line

	Cart  *cart.Cart
	Order *order.Order

	// Last4 identifies the charged card.
	Last4 string
	// Message is verbatim text such as a card validation error.
	Message string
	// Index is the 1-based cart line a REMOVE referred to.
	Index int
}
