// Package cart implements a caller's shopping cart.
package cart

import (
	"fmt"
	"sort"
	"strings"

	"github.com/iliamunaev/coffee-sms/internal/menu"
)

// Line is one cart entry: an item, its modifiers and a quantity.
type Line struct {
	ItemID    int
	Name      string
	Modifiers []string
	UnitPrice menu.Money
	Quantity  int
}

// Subtotal is UnitPrice × Quantity.
func (l Line) Subtotal() menu.Money { return l.UnitPrice * menu.Money(l.Quantity) }

// Label is the display name, e.g. "Iced Latte with almond milk".
func (l Line) Label() string {
	if len(l.Modifiers) == 0 {
		return l.Name
	}
	return l.Name + " with " + strings.Join(l.Modifiers, ", ")
}

func (l Line) key() string {
	return fmt.Sprintf("%d|%s", l.ItemID, strings.Join(l.Modifiers, "|"))
}

// Cart is an ordered set of lines. The zero value is an empty cart.
// A Cart is not safe for concurrent use; the session store serializes access.
type Cart struct {
	lines []Line
	total menu.Money
}

// New returns an empty cart.
func New() *Cart { return &Cart{} }

// Add puts quantity units of item with mods into the cart, merging with an
// existing line that has the same item and modifier set. Only the first
// modifier of each family is kept. Non-positive quantities count as one.
func (c *Cart) Add(item menu.Item, mods []menu.Modifier, quantity int) Line {
	if quantity < 1 {
		quantity = 1
	}

	unit := item.Price
	families := make(map[string]bool, len(mods))
	names := make([]string, 0, len(mods))
	for _, m := range mods {
		if families[m.Family] {
			continue
		}
		families[m.Family] = true
		names = append(names, m.Name)
		unit += m.Surcharge
	}
	sort.Strings(names)

	nl := Line{
		ItemID:    item.ID,
		Name:      item.Name,
		Modifiers: names,
		UnitPrice: unit,
		Quantity:  quantity,
	}

	defer c.recompute()
	for i := range c.lines {
		if c.lines[i].key() == nl.key() {
			c.lines[i].Quantity += quantity
			return c.lines[i]
		}
	}
	c.lines = append(c.lines, nl)
	return nl
}

// Remove takes quantity units off the line at index (0-based), dropping the
// line when nothing is left. It reports false if there is no such line.
func (c *Cart) Remove(index, quantity int) bool {
	if index < 0 || index >= len(c.lines) {
		return false
	}
	if quantity < 1 {
		quantity = 1
	}
	if c.lines[index].Quantity <= quantity {
		c.lines = append(c.lines[:index], c.lines[index+1:]...)
	} else {
		c.lines[index].Quantity -= quantity
	}
	c.recompute()
	return true
}

// Clear empties the cart.
func (c *Cart) Clear() {
	c.lines = nil
	c.recompute()
}

// IsEmpty reports whether the cart has no lines.
func (c *Cart) IsEmpty() bool { return len(c.lines) == 0 }

// Len is the number of lines.
func (c *Cart) Len() int { return len(c.lines) }

// Count is the number of units across all lines.
func (c *Cart) Count() int {
	n := 0
	for _, l := range c.lines {
		n += l.Quantity
	}
	return n
}

// Total is the sum of line subtotals.
func (c *Cart) Total() menu.Money { return c.total }

// Lines returns a deep copy of the lines in insertion order.
func (c *Cart) Lines() []Line {
	out := make([]Line, len(c.lines))
	for i, l := range c.lines {
		l.Modifiers = append([]string(nil), l.Modifiers...)
		out[i] = l
	}
	return out
}

// Clone returns an independent copy of c.
func (c *Cart) Clone() *Cart {
	return &Cart{lines: c.Lines(), total: c.total}
}

func (c *Cart) recompute() {
	var t menu.Money
	for _, l := range c.lines {
		t += l.Subtotal()
	}
	c.total = t
}

// Summary lists the lines with subtotals and the grand total.
func (c *Cart) Summary() string {
	return Summarize(c.lines, c.total)
}

// Summarize renders lines the way Cart.Summary does. It is shared with
// order receipts.
func Summarize(lines []Line, total menu.Money) string {
	if len(lines) == 0 {
		return "Your cart is empty."
	}
	var b strings.Builder
	b.WriteString("Your Cart:\n")
	for i, l := range lines {
		fmt.Fprintf(&b, "%d. %dx %s (%s each) %s\n", i+1, l.Quantity, l.Label(), l.UnitPrice, l.Subtotal())
	}
	fmt.Fprintf(&b, "Total: %s", total)
	return b.String()
}
