package reply

import (
	"fmt"
	"strings"

	"github.com/iliamunaev/coffee-sms/internal/cart"
	"github.com/iliamunaev/coffee-sms/internal/menu"
	"github.com/iliamunaev/coffee-sms/internal/order"
	"github.com/iliamunaev/coffee-sms/internal/payment"
)

// Message is a rendered reply. Lead is conversational and may be reworded;
// Block (menus, summaries, receipts) is always sent verbatim.
type Message struct {
	Lead  string
	Block string
}

func (m Message) String() string {
	switch {
	case m.Block == "":
		return m.Lead
	case m.Lead == "":
		return m.Block
	default:
		return m.Lead + "\n\n" + m.Block
	}
}

const helpBlock = "Commands:\n" +
	"START - begin a new order\n" +
	"MENU - full menu (or HOT, COLD, FOOD)\n" +
	"FIND <word> - search the menu\n" +
	"CART - view your cart\n" +
	"REMOVE <n> - remove item n from your cart\n" +
	"CLEAR - empty your cart\n" +
	"DONE - check out\n" +
	"STATUS - check your latest order\n" +
	"HELP - show this message"

const orderHint = "Text an item name or number to order, or HELP for commands."

const readyLayout = "3:04 PM"

// Template renders in without any external help.
func Template(in Intent) Message {
	switch in.Kind {
	case Welcome:
		return Message{
			Lead:  "Welcome to our coffee shop! Here's our menu:",
			Block: menu.Listing(in.Items) + "\n\n" + orderHint,
		}

	case NeedStart:
		return Message{Lead: "Hi! Text START to begin a new order, or MENU to see what we serve."}

	case SessionExpired:
		return Message{Lead: "Your previous order timed out after a while without messages. Text START to begin a new order."}

	case Help:
		return Message{Lead: "Here's what I can do:", Block: helpBlock}

	case MenuListing:
		title := in.Title
		if title == "" {
			title = "Here's our menu:"
		}
		return Message{Lead: title, Block: menu.Listing(in.Items)}

	case AskModifier:
		return Message{Lead: addedPrefix(in.Added) + askModifier(in)}

	case ConfirmModifier:
		return Message{Lead: addedPrefix(in.Added) + confirmModifier(in)}

	case ItemsAdded:
		return Message{
			Lead:  "Added " + joinLines(in.Added) + " to your cart.",
			Block: summary(in.Cart) + "\n\nText DONE to check out or keep ordering.",
		}

	case CartSummary:
		lead := "Here's your cart."
		if len(in.Added) > 0 {
			lead = "Added " + joinLines(in.Added) + " to your cart."
		}
		return Message{
			Lead:  lead,
			Block: summary(in.Cart) + "\n\nText DONE to check out or keep ordering.",
		}

	case NotRecognized:
		return Message{Lead: "Sorry, I didn't recognize that. Text MENU to see all options."}

	case Clarify:
		lead := fmt.Sprintf("Please reply YES or NO for your %s", in.Item.Name)
		if len(in.Options) > 0 {
			lead += ", or name a milk: " + optionNames(in.Options)
		}
		return Message{Lead: lead + "."}

	case CartEmpty:
		return Message{Lead: "Your cart is empty. Add something from the menu first."}

	case PendingItems:
		return Message{Lead: "You still have items waiting for a choice. Please answer those first."}

	case AskPayment:
		return Message{
			Lead:  fmt.Sprintf("Your total is %s. How would you like to pay? Reply CASH or CARD.", total(in.Cart)),
			Block: summary(in.Cart),
		}

	case PaymentRePrompt:
		return Message{Lead: fmt.Sprintf("Please reply CASH or CARD to pay your %s.", total(in.Cart))}

	case CardFormat:
		return Message{Lead: "Please send your card details as: " + payment.CardFormat +
			"\nExample: CARD 1234567890123456 12/30 123"}

	case CardError:
		return Message{Lead: in.Message}

	case PaymentDeclined:
		return Message{Lead: "Sorry, your card was declined. Please try another card: " + payment.CardFormat}

	case OrderConfirmed:
		return orderConfirmed(in)

	case OrderStatus:
		o := in.Order
		block := o.Summary()
		if !o.Status.Terminal() && o.Status != order.Ready {
			block += "\nEstimated ready time: " + o.EstimatedReadyAt.Format(readyLayout)
		}
		return Message{Lead: fmt.Sprintf("Order #%s is %s.", o.ID, o.Status), Block: block}

	case NoOrders:
		return Message{Lead: "You don't have any orders yet. Text START to place one."}

	case CartCleared:
		return Message{Lead: "Your cart is now empty."}

	case ItemRemoved:
		return Message{
			Lead:  fmt.Sprintf("Removed 1x %s.", in.Removed.Label()),
			Block: summary(in.Cart),
		}

	case RemoveNotFound:
		return Message{Lead: fmt.Sprintf("There is no item %d in your cart. Text CART to see item numbers.", in.Index)}

	case RemoveUsage:
		return Message{Lead: "To remove something, text REMOVE and its number in your cart, e.g. REMOVE 1. Text CART to see item numbers."}

	case Greeting:
		return Message{Lead: "Hi there! What can I get you today? Text MENU to see options."}

	case Thanks:
		return Message{Lead: "You're welcome! Anything else? Text DONE when you're ready to check out."}
	}

	return Message{Lead: "Sorry, something went wrong. Text HELP for commands."}
}

func askModifier(in Intent) string {
	name := in.Item.Name
	if in.Proposed && in.Modifier != nil {
		return fmt.Sprintf("Would you like %s again in your %s (+%s)? Reply YES, NO for regular, or name another milk.",
			in.Modifier.Name, name, in.Modifier.Surcharge)
	}
	if len(in.Options) == 0 {
		return fmt.Sprintf("Any changes to your %s? Reply NO to keep it as is.", name)
	}
	return fmt.Sprintf("Would you like %s in your %s? Reply with a milk, or NO for regular.",
		menu.ModifierOptions(in.Options), name)
}

func confirmModifier(in Intent) string {
	if in.Modifier == nil {
		return askModifier(in)
	}
	return fmt.Sprintf("Add %s (+%s) to your %s? Reply YES to confirm or NO for regular.",
		in.Modifier.Name, in.Modifier.Surcharge, in.Item.Name)
}

func orderConfirmed(in Intent) Message {
	o := in.Order
	var lead string
	if o.Method == payment.MethodCard {
		lead = fmt.Sprintf("Payment received! %s charged to card ending %s. Your order number is #%s.", o.Total, in.Last4, o.ID)
	} else {
		lead = fmt.Sprintf("Perfect! Please pay %s when you pick up your order. Your order number is #%s.", o.Total, o.ID)
	}
	block := o.Summary() + "\nEstimated ready time: " + o.EstimatedReadyAt.Format(readyLayout) +
		"\nText STATUS to check on it."
	return Message{Lead: lead, Block: block}
}

func addedPrefix(lines []cart.Line) string {
	if len(lines) == 0 {
		return ""
	}
	return "Added " + joinLines(lines) + " to your cart. "
}

func joinLines(lines []cart.Line) string {
	parts := make([]string, len(lines))
	for i, l := range lines {
		parts[i] = fmt.Sprintf("%dx %s", l.Quantity, l.Label())
	}
	return strings.Join(parts, ", ")
}

func optionNames(mods []menu.Modifier) string {
	names := make([]string, len(mods))
	for i, m := range mods {
		names[i] = strings.TrimSuffix(m.Name, " milk")
	}
	return strings.Join(names, ", ")
}

func summary(c *cart.Cart) string {
	if c == nil {
		return cart.Summarize(nil, 0)
	}
	return c.Summary()
}

func total(c *cart.Cart) menu.Money {
	if c == nil {
		return 0
	}
	return c.Total()
}
