package view

import (
	"greenearth/internal/catalog"

	"github.com/samber/lo"
)

const (
	UnavailableMessage = "This tree is unavailable right now."

	defaultDetailDescription = "No description available."
	defaultDetailCategory    = "—"
)

// DetailPanel is the product overlay. A closed panel is the zero value.
type DetailPanel struct {
	Open      bool
	Available bool
	Message   string

	ID          catalog.ID
	Name        string
	ImageURL    string
	Description string
	Category    string
	Price       string
	AddLabel    string
}

// Detail builds an open panel for product. A nil product means the lookup
// failed and the panel says so instead of showing substitute data.
func Detail(product *catalog.Product, money Money) DetailPanel {
	if product == nil {
		return DetailPanel{Open: true, Message: UnavailableMessage}
	}
	return DetailPanel{
		Open:        true,
		Available:   true,
		ID:          product.ID,
		Name:        lo.CoalesceOrEmpty(product.Name, DefaultProductName),
		ImageURL:    product.ImageURL,
		Description: lo.CoalesceOrEmpty(product.Description, defaultDetailDescription),
		Category:    lo.CoalesceOrEmpty(product.CategoryName, defaultDetailCategory),
		Price:       money.Format(product.Price),
		AddLabel:    AddToCartLabel,
	}
}

// Closed is the panel after the overlay is dismissed.
func Closed() DetailPanel {
	return DetailPanel{}
}
