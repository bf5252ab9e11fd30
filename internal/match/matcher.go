package match

import (
	"strconv"
	"strings"

	"github.com/iliamunaev/coffee-sms/internal/menu"
)

// Item is a menu item found in a message plus the modifiers the same
// message asked for.
type Item struct {
	Item      menu.Item
	Modifiers []menu.Modifier
	ByID      bool
}

// HasHint reports whether the message named a modifier for this item.
func (m Item) HasHint() bool { return len(m.Modifiers) > 0 }

// NeedsModifierChoice reports whether the item goes through the modifier
// confirmation step before landing in the cart.
func (m Item) NeedsModifierChoice() bool {
	return m.Item.Category.IsDrink() || m.HasHint()
}

// Matcher resolves free text against a catalog.
type Matcher struct {
	catalog *menu.Catalog
}

// New returns a Matcher for c.
func New(c *menu.Catalog) *Matcher {
	if c == nil {
		panic("match.New: nil catalog")
	}
	return &Matcher{catalog: c}
}

// Match returns the items referenced by text in catalog order (ascending id).
// A bare number equal to an item id selects that item; otherwise the item's
// full name must appear as whole words. Each item appears at most once.
//
// Items that have an iced sibling ("Latte" / "Iced Latte") are disambiguated
// by name: if the text says "iced" or "cold" only the iced variant matches by
// name, otherwise only the plain one does.
func (m *Matcher) Match(text string) []Item {
	tokens := Tokens(text)
	if len(tokens) == 0 {
		return nil
	}
	line := padded(tokens)
	iced := containsPhrase(line, "iced") || containsPhrase(line, "cold")

	ids := make(map[int]bool)
	for _, tok := range tokens {
		if n, err := strconv.Atoi(tok); err == nil {
			ids[n] = true
		}
	}

	var out []Item
	for _, it := range m.catalog.Items() {
		byID := ids[it.ID]
		if !byID && !m.nameMatches(line, it, iced) {
			continue
		}
		mi := Item{Item: it, ByID: byID}
		if it.Category.IsDrink() {
			mi.Modifiers = m.Modifiers(text)
		}
		out = append(out, mi)
	}
	return out
}

func (m *Matcher) nameMatches(line string, it menu.Item, iced bool) bool {
	name := strings.ToLower(it.Name)
	if iced && m.hasIcedVariant(name) {
		return false
	}
	if !iced && isIcedVariant(name) {
		return false
	}
	return containsPhrase(line, name)
}

func isIcedVariant(name string) bool {
	return strings.HasPrefix(name, "iced ")
}

func (m *Matcher) hasIcedVariant(name string) bool {
	if isIcedVariant(name) {
		return false
	}
	_, ok := m.catalog.ItemByName("iced " + name)
	return ok
}

// Modifiers returns the modifiers named in text, at most one per family.
// Within a family the keyword appearing earliest in the text wins.
func (m *Matcher) Modifiers(text string) []menu.Modifier {
	line := padded(Tokens(text))

	var out []menu.Modifier
	for _, family := range m.catalog.Families() {
		best, bestAt := menu.Modifier{}, -1
		for _, mod := range m.catalog.Family(family) {
			for _, kw := range mod.Keywords {
				at := phraseIndex(line, kw)
				if at >= 0 && (bestAt < 0 || at < bestAt) {
					best, bestAt = mod, at
				}
			}
		}
		if bestAt >= 0 {
			out = append(out, best)
		}
	}
	return out
}

// Modifier returns the first modifier named in text.
func (m *Matcher) Modifier(text string) (menu.Modifier, bool) {
	mods := m.Modifiers(text)
	if len(mods) == 0 {
		return menu.Modifier{}, false
	}
	return mods[0], true
}
