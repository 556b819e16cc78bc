package models

// FallbackThreshold is used for categories without an explicit default.
const FallbackThreshold = 5

// CatalogCategory is one category of the seed catalog with its default
// reorder threshold.
type CatalogCategory struct {
	Name      string   `yaml:"name"`
	Threshold int64    `yaml:"threshold"`
	Items     []string `yaml:"items"`
}

// Catalog is the seed inventory loaded on first run.
type Catalog struct {
	Categories []CatalogCategory `yaml:"categories"`
}

// DefaultThreshold returns the default threshold for a category, falling
// back to FallbackThreshold for unknown categories.
func (c Catalog) DefaultThreshold(category string) int64 {
	for _, cat := range c.Categories {
		if cat.Name == category {
			if cat.Threshold > 0 {
				return cat.Threshold
			}
			break
		}
	}
	return FallbackThreshold
}

// CategoryNames returns catalog categories in declaration order.
func (c Catalog) CategoryNames() []string {
	names := make([]string, 0, len(c.Categories))
	for _, cat := range c.Categories {
		names = append(names, cat.Name)
	}
	return names
}

// DefaultCatalog is the built-in seed used when no catalog file is
// configured. Categories and thresholds come from the truck's shopping
// checklist.
func DefaultCatalog() Catalog {
	return Catalog{Categories: []CatalogCategory{
		{Name: "Buns & Chips", Threshold: 10, Items: []string{"Chips", "Buns"}},
		{Name: "Veggies", Threshold: 5, Items: []string{"Lettuce", "Tomatoes", "Onions", "Pickles", "Beetroot"}},
		{Name: "Meats & Poultry", Threshold: 5, Items: []string{"Chicken", "Beef", "Wagyu", "Eggs"}},
		{Name: "Cheeses", Threshold: 3, Items: []string{"Block", "Shredded Cheese", "Butter"}},
		{Name: "Drinks", Threshold: 24, Items: []string{"Coke", "Coke Zero", "Solo", "Fanta", "Water"}},
		{Name: "Sauces & Condiments", Threshold: 6, Items: []string{"Ketchup", "Chilli", "Mustard", "Mayonnaise", "BBQ sauce", "Special Sauce"}},
		{Name: "Packaging & Delivery", Threshold: 20, Items: []string{"Burger boxes", "Uber bags", "Plastic Bags"}},
		{Name: "Cleaning Materials", Threshold: 10, Items: []string{"Dish soap", "Hand Soap", "Floor Cleaning Liquid", "Paper towels", "Silver Scrubbers", "Lemon Juice", "Gloves", "Sprays"}},
		{Name: "Stationery", Threshold: 10, Items: []string{"Order pads", "Pens", "Markers", "Receipt rolls", "Staplers"}},
		{Name: "Oils & Gas", Threshold: 5, Items: []string{"Cooking oil", "Gas", "Small Gas"}},
		{Name: "Salt & Spices", Threshold: 5, Items: []string{"Chicken Salt", "Normal Salt", "Tasting Salt", "Ground Pepper"}},
		{Name: "Others", Threshold: 5, Items: nil},
	}}
}
