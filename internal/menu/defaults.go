package menu

// DefaultItems is the built-in menu used when no catalog file is configured.
var DefaultItems = []Item{
	{ID: 1, Name: "Espresso", Price: 350, Category: Hot, Description: "Strong, pure coffee shot"},
	{ID: 2, Name: "Latte", Price: 450, Category: Hot, Description: "Espresso with steamed milk"},
	{ID: 3, Name: "Cappuccino", Price: 450, Category: Hot, Description: "Equal parts espresso, steamed milk, and foam"},
	{ID: 4, Name: "Cold Brew", Price: 450, Category: Cold, Description: "12-hour steeped coffee"},
	{ID: 5, Name: "Iced Latte", Price: 450, Category: Cold, Description: "Espresso over ice with cold milk"},
	{ID: 6, Name: "Croissant", Price: 350, Category: Food, Description: "Butter croissant"},
	{ID: 7, Name: "Muffin", Price: 300, Category: Food, Description: "Blueberry muffin"},
}

// DefaultModifiers is the built-in milk family.
var DefaultModifiers = []Modifier{
	{Name: "almond milk", Family: "milk", Surcharge: 75, Keywords: []string{"almond"}},
	{Name: "oat milk", Family: "milk", Surcharge: 75, Keywords: []string{"oat", "oatmilk"}},
	{Name: "soy milk", Family: "milk", Surcharge: 75, Keywords: []string{"soy", "soya"}},
}

// Default returns the built-in catalog.
func Default() *Catalog {
	c, err := NewCatalog(DefaultItems, DefaultModifiers)
	if err != nil {
		panic("menu.Default: " + err.Error())
	}
	return c
}
