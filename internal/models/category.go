package models

import (
	"encoding/json"
	"fmt"
	"strings"
)

// Category is a catalog category. The service returns either bare slugs or
// {slug, name, url} objects depending on its version; both decode here.
type Category struct {
	Slug string `json:"slug"`
	Name string `json:"name"`
	URL  string `json:"url,omitempty"`
}

// UnmarshalJSON accepts "mens-shirts" as well as {"slug": "mens-shirts", ...}
func (c *Category) UnmarshalJSON(data []byte) error {
	var slug string
	if err := json.Unmarshal(data, &slug); err == nil {
		*c = Category{Slug: slug}
		return nil
	}

	type plain Category
	var obj plain
	if err := json.Unmarshal(data, &obj); err != nil {
		return fmt.Errorf("category is neither a string nor an object: %w", err)
	}
	*c = Category(obj)
	return nil
}

// DisplayName returns Name, or the slug prettified ("mens-shirts" -> "Mens Shirts")
func (c Category) DisplayName() string {
	if c.Name != "" {
		return c.Name
	}
	return FormatCategoryName(c.Slug)
}

// FormatCategoryName turns a slug into title-cased words
func FormatCategoryName(slug string) string {
	words := strings.FieldsFunc(slug, func(r rune) bool {
		return r == '-' || r == '_' || r == ' '
	})
	for i, w := range words {
		words[i] = strings.ToUpper(w[:1]) + w[1:]
	}
	return strings.Join(words, " ")
}
