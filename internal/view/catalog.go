package view

import (
	"greenearth/internal/catalog"
	"greenearth/internal/store"

	"github.com/samber/lo"
)

const (
	AllCategoriesLabel = "All Trees"
	EmptyMessage       = "No trees here yet — try another category"
	AddToCartLabel     = "Add to Cart"

	DefaultProductName     = "Tree"
	defaultProductCategory = "General"
	defaultProductImage    = "https://images.unsplash.com/photo-1501004318641-b39e6451bec6?q=80&w=1200&auto=format&fit=crop"
)

type CategoryItem struct {
	ID     catalog.ID
	Label  string
	All    bool
	Active bool
}

// CategoryBar is the "All Trees" entry followed by every loaded category.
type CategoryBar struct {
	Items []CategoryItem
}

type ProductCard struct {
	ID          catalog.ID
	Name        string
	ImageURL    string
	Description string
	Category    string
	Price       string
	AddLabel    string
}

type ProductGrid struct {
	Cards        []ProductCard
	Loading      bool
	Empty        bool
	EmptyMessage string
}

func Categories(snap store.Snapshot) CategoryBar {
	items := make([]CategoryItem, 0, len(snap.Categories)+1)
	items = append(items, CategoryItem{
		Label:  AllCategoriesLabel,
		All:    true,
		Active: snap.Selection.IsAll(),
	})
	for _, c := range snap.Categories {
		items = append(items, CategoryItem{
			ID:     c.ID,
			Label:  c.Name,
			Active: !snap.Selection.IsAll() && snap.Selection.CategoryID == c.ID,
		})
	}
	return CategoryBar{Items: items}
}

// Products builds the product grid. While a load is outstanding the grid
// carries no cards and is never marked empty.
func Products(snap store.Snapshot, money Money) ProductGrid {
	if snap.Loading {
		return ProductGrid{Loading: true}
	}
	if len(snap.Products) == 0 {
		return ProductGrid{Empty: true, EmptyMessage: EmptyMessage}
	}
	return ProductGrid{
		Cards: lo.Map(snap.Products, func(p catalog.Product, _ int) ProductCard {
			return productCard(p, money)
		}),
	}
}

func productCard(p catalog.Product, money Money) ProductCard {
	return ProductCard{
		ID:          p.ID,
		Name:        lo.CoalesceOrEmpty(p.Name, DefaultProductName),
		ImageURL:    lo.CoalesceOrEmpty(p.ImageURL, defaultProductImage),
		Description: p.Description,
		Category:    lo.CoalesceOrEmpty(p.CategoryName, defaultProductCategory),
		Price:       money.Format(p.Price),
		AddLabel:    AddToCartLabel,
	}
}
