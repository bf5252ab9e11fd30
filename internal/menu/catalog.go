// Package menu holds the shop's read-only catalog of items and modifiers.
package menu

import (
	"fmt"
	"sort"
	"strings"
)

// Category groups menu items.
type Category string

const (
	Hot  Category = "hot"
	Cold Category = "cold"
	Food Category = "food"
)

// IsDrink reports whether items in c are offered with modifiers.
func (c Category) IsDrink() bool { return c == Hot || c == Cold }

// Title is the section heading used in menu listings.
func (c Category) Title() string {
	switch c {
	case Hot:
		return "Hot Drinks"
	case Cold:
		return "Cold Drinks"
	case Food:
		return "Food"
	default:
		return strings.ToUpper(string(c))
	}
}

// Categories lists the known categories in display order.
var Categories = []Category{Hot, Cold, Food}

// Item is a sellable menu entry.
type Item struct {
	ID          int      `yaml:"id"`
	Name        string   `yaml:"name"`
	Price       Money    `yaml:"price"`
	Category    Category `yaml:"category"`
	Description string   `yaml:"description"`
}

// Modifier is an optional add-on for a drink. At most one modifier per
// Family applies to a cart line.
type Modifier struct {
	Name      string   `yaml:"name"`
	Family    string   `yaml:"family"`
	Surcharge Money    `yaml:"surcharge"`
	Keywords  []string `yaml:"keywords"`
}

// Catalog is immutable after construction and safe for concurrent use.
type Catalog struct {
	items     []Item
	byID      map[int]Item
	modifiers []Modifier
	byMod     map[string]Modifier
}

// NewCatalog validates items and modifiers and returns a catalog ordered by item id.
func NewCatalog(items []Item, modifiers []Modifier) (*Catalog, error) {
	c := &Catalog{
		items:     make([]Item, len(items)),
		byID:      make(map[int]Item, len(items)),
		modifiers: make([]Modifier, 0, len(modifiers)),
		byMod:     make(map[string]Modifier, len(modifiers)),
	}
	copy(c.items, items)
	sort.SliceStable(c.items, func(i, j int) bool { return c.items[i].ID < c.items[j].ID })

	names := make(map[string]int, len(items))
	for _, it := range c.items {
		if it.ID <= 0 {
			return nil, fmt.Errorf("item %q: id must be positive", it.Name)
		}
		if _, dup := c.byID[it.ID]; dup {
			return nil, fmt.Errorf("item %d: duplicate id", it.ID)
		}
		key := strings.ToLower(strings.TrimSpace(it.Name))
		if key == "" {
			return nil, fmt.Errorf("item %d: empty name", it.ID)
		}
		if other, dup := names[key]; dup {
			return nil, fmt.Errorf("item %d: name %q already used by item %d", it.ID, it.Name, other)
		}
		if it.Price < 0 {
			return nil, fmt.Errorf("item %d: negative price", it.ID)
		}
		switch it.Category {
		case Hot, Cold, Food:
		default:
			return nil, fmt.Errorf("item %d: unknown category %q", it.ID, it.Category)
		}
		names[key] = it.ID
		c.byID[it.ID] = it
	}

	for _, m := range modifiers {
		key := strings.ToLower(strings.TrimSpace(m.Name))
		if key == "" {
			return nil, fmt.Errorf("modifier with empty name")
		}
		if _, dup := c.byMod[key]; dup {
			return nil, fmt.Errorf("modifier %q: duplicate name", m.Name)
		}
		if m.Surcharge < 0 {
			return nil, fmt.Errorf("modifier %q: negative surcharge", m.Name)
		}
		if m.Family == "" {
			return nil, fmt.Errorf("modifier %q: missing family", m.Name)
		}
		m.Name = key
		m.Keywords = normalizeKeywords(key, m.Keywords)
		c.modifiers = append(c.modifiers, m)
		c.byMod[key] = m
	}

	return c, nil
}

// normalizeKeywords lower-cases keywords, always includes the full name,
// and orders them longest first so "almond milk" wins over "almond".
func normalizeKeywords(name string, kws []string) []string {
	seen := map[string]bool{name: true}
	out := []string{name}
	for _, k := range kws {
		k = strings.ToLower(strings.TrimSpace(k))
		if k == "" || seen[k] {
			continue
		}
		seen[k] = true
		out = append(out, k)
	}
	sort.SliceStable(out, func(i, j int) bool { return len(out[i]) > len(out[j]) })
	return out
}

// Items returns all items in ascending id order.
func (c *Catalog) Items() []Item {
	out := make([]Item, len(c.items))
	copy(out, c.items)
	return out
}

// Item looks up an item by id.
func (c *Catalog) Item(id int) (Item, bool) {
	it, ok := c.byID[id]
	return it, ok
}

// ItemByName looks up an item by case-insensitive name.
func (c *Catalog) ItemByName(name string) (Item, bool) {
	name = strings.ToLower(strings.TrimSpace(name))
	for _, it := range c.items {
		if strings.ToLower(it.Name) == name {
			return it, true
		}
	}
	return Item{}, false
}

// ByCategory returns the items of cat in id order.
func (c *Catalog) ByCategory(cat Category) []Item {
	var out []Item
	for _, it := range c.items {
		if it.Category == cat {
			out = append(out, it)
		}
	}
	return out
}

// Search returns items whose name, description or category contains term.
func (c *Catalog) Search(term string) []Item {
	term = strings.ToLower(strings.TrimSpace(term))
	if term == "" {
		return nil
	}
	var out []Item
	for _, it := range c.items {
		if strings.Contains(strings.ToLower(it.Name), term) ||
			strings.Contains(strings.ToLower(it.Description), term) ||
			strings.Contains(string(it.Category), term) {
			out = append(out, it)
		}
	}
	return out
}

// Modifiers returns all modifiers in configuration order.
func (c *Catalog) Modifiers() []Modifier {
	out := make([]Modifier, len(c.modifiers))
	copy(out, c.modifiers)
	return out
}

// Modifier looks up a modifier by its canonical (lower-case) name.
func (c *Catalog) Modifier(name string) (Modifier, bool) {
	m, ok := c.byMod[strings.ToLower(strings.TrimSpace(name))]
	return m, ok
}

// Family returns the modifiers belonging to family.
func (c *Catalog) Family(family string) []Modifier {
	var out []Modifier
	for _, m := range c.modifiers {
		if m.Family == family {
			out = append(out, m)
		}
	}
	return out
}

// Families lists modifier families in first-seen order.
func (c *Catalog) Families() []string {
	var out []string
	seen := map[string]bool{}
	for _, m := range c.modifiers {
		if !seen[m.Family] {
			seen[m.Family] = true
			out = append(out, m.Family)
		}
	}
	return out
}
