package menu

import (
	"fmt"
	"strings"
)

// Listing renders items grouped by category, each line carrying the
// order number customers can text.
func Listing(items []Item) string {
	if len(items) == 0 {
		return "No items found. Text MENU to see all options."
	}

	var b strings.Builder
	for _, cat := range Categories {
		first := true
		for _, it := range items {
			if it.Category != cat {
				continue
			}
			if first {
				if b.Len() > 0 {
					b.WriteString("\n")
				}
				b.WriteString(cat.Title() + ":\n")
				first = false
			}
			fmt.Fprintf(&b, "%d. %s (%s)\n   %s\n", it.ID, it.Name, it.Price, it.Description)
		}
	}
	return strings.TrimRight(b.String(), "\n")
}

// ModifierOptions renders a family's choices, e.g. "almond milk, oat milk or soy milk (+$0.75)".
func ModifierOptions(mods []Modifier) string {
	if len(mods) == 0 {
		return ""
	}
	names := make([]string, len(mods))
	same := true
	for i, m := range mods {
		names[i] = m.Name
		if m.Surcharge != mods[0].Surcharge {
			same = false
		}
	}
	if !same {
		for i, m := range mods {
			names[i] = fmt.Sprintf("%s (+%s)", m.Name, m.Surcharge)
		}
		return joinOr(names)
	}
	return fmt.Sprintf("%s (+%s)", joinOr(names), mods[0].Surcharge)
}

func joinOr(s []string) string {
	switch len(s) {
	case 0:
		return ""
	case 1:
		return s[0]
	default:
		return strings.Join(s[:len(s)-1], ", ") + " or " + s[len(s)-1]
	}
}
