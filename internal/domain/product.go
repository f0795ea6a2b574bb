package domain

import "strings"

// Product represents a catalog entry shown to customers
type Product struct {
	ID              string `json:"id" db:"id"`
	Name            string `json:"name" db:"name"`
	Category        string `json:"category" db:"category"`
	Price           int64  `json:"price" db:"price"`
	Stock           int    `json:"stock" db:"stock"`
	Image           string `json:"image" db:"image"`
	ImageOutOfStock string `json:"image_hira" db:"image_out_of_stock"`
}

// InStock reports whether the product can be added to a cart
func (p *Product) InStock() bool {
	return p.Stock > 0
}

// DisplayImage returns the image reference matching the current stock level
func (p *Product) DisplayImage() string {
	if p.InStock() || p.ImageOutOfStock == "" {
		return p.Image
	}
	return p.ImageOutOfStock
}

// Category is a fixed menu entry. Label is both the button text and the
// catalog match key; Slug is used in inline action payloads.
type Category struct {
	Label string
	Slug  string
}

// Categories is the customer menu in display order
var Categories = []Category{
	{Label: "Ichimliklar", Slug: "ichimliklar"},
	{Label: "Fastfood", Slug: "fastfood"},
	{Label: "Shirinliklar", Slug: "shirinliklar"},
	{Label: "Milliy taomlar", Slug: "milliy_taomlar"},
}

// CategoryByLabel finds a menu category by its button text, ignoring case
func CategoryByLabel(label string) (Category, bool) {
	for _, c := range Categories {
		if strings.EqualFold(c.Label, strings.TrimSpace(label)) {
			return c, true
		}
	}
	return Category{}, false
}

// CategoryBySlug finds a menu category by its action payload slug
func CategoryBySlug(slug string) (Category, bool) {
	for _, c := range Categories {
		if c.Slug == slug {
			return c, true
		}
	}
	return Category{}, false
}
