package reply

import (
	"context"
	"fmt"
	"regexp"
	"strings"

	logging "github.com/op/go-logging"
)

var log = logging.MustGetLogger("reply")

// Phraser rewords a reply. Implementations bound their own latency.
type Phraser interface {
	Phrase(ctx context.Context, prompt string) (string, error)
}

// maxLead keeps a reworded lead inside two SMS segments.
const maxLead = 300

// factPattern finds prices, order numbers and the upper-case command words
// a reworded lead must keep.
var factPattern = regexp.MustCompile(`\$\d+\.\d{2}|#[0-9A-Za-z]+|\b(?:START|MENU|CASH|CARD|DONE|YES|NO|HELP|STATUS|CART|REMOVE|CLEAR|FIND)\b`)

var phrasable = map[Kind]bool{
	Welcome:        true,
	AskModifier:    true,
	ItemsAdded:     true,
	CartSummary:    true,
	NotRecognized:  true,
	AskPayment:     true,
	OrderConfirmed: true,
	Greeting:       true,
	Thanks:         true,
}

// Renderer produces outbound text. With a nil Phraser it uses templates
// only.
type Renderer struct {
	phraser Phraser
}

// NewRenderer returns a Renderer. p may be nil.
func NewRenderer(p Phraser) *Renderer {
	return &Renderer{phraser: p}
}

// Render returns the text for in. Facts in the template lead (prices,
// order numbers, command words) survive any rewording: a reworded lead missing one is
// discarded. The block is always the template's.
func (r *Renderer) Render(ctx context.Context, in Intent) string {
	msg := Template(in)
	if r.phraser == nil || !phrasable[in.Kind] || msg.Lead == "" {
		return msg.String()
	}

	text, err := r.phraser.Phrase(ctx, Prompt(msg.Lead))
	if err != nil {
		return msg.String()
	}
	text = strings.TrimSpace(text)
	if !keepsFacts(msg.Lead, text) || len(text) > maxLead {
		log.Warningf("discarding reworded %s reply: facts or length not kept", in.Kind)
		return msg.String()
	}

	msg.Lead = text
	return msg.String()
}

// Prompt asks for a warmer wording of lead.
func Prompt(lead string) string {
	return fmt.Sprintf("You are a friendly barista texting a customer of a small coffee shop. "+
		"Rewrite the message below in one or two short, casual sentences. "+
		"Keep every price, order number and capitalized command word (like START, DONE, CASH, CARD, YES, NO) exactly as written. "+
		"Reply with the message only.\n\nMessage: %s", lead)
}

func keepsFacts(original, candidate string) bool {
	if candidate == "" {
		return false
	}
	for _, f := range factPattern.FindAllString(original, -1) {
		if !strings.Contains(candidate, f) {
			return false
		}
	}
	return true
}
