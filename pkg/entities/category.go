package entities

// Category is a fixed topic tag offered at ticket creation. The list of
// categories is compile-time static; its order drives both the dropdown
// display order and the setup wizard traversal order.
type Category struct {
	// Name is the display name of the category. It is also the key used for
	// the category to role bindings in the guild configuration.
	Name string

	// Emoji is the emoji shown next to the category.
	Emoji string
}

// Categories is the static list of ticket categories.
var Categories = []Category{
	{Name: "Genel Destek", Emoji: "❓"},
	{Name: "Teknik Sorun", Emoji: "\U0001F527"},
	{Name: "Ödeme", Emoji: "\U0001F4B0"},
	{Name: "Diğer", Emoji: "\U0001F4DD"},
}

// FindCategory returns the category with the given name.
func FindCategory(name string) (Category, bool) {
	for _, c := range Categories {
		if c.Name == name {
			return c, true
		}
	}
	return Category{}, false
}
