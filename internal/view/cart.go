package view

import (
	"fmt"

	"greenearth/internal/catalog"
	"greenearth/internal/store"

	"github.com/samber/lo"
)

type CartRow struct {
	ProductID catalog.ID
	Name      string
	Quantity  int
	UnitPrice string
	LineTotal string
}

type CartView struct {
	Rows       []CartRow
	Total      string
	Count      int
	CountLabel string
}

// Cart builds the cart view from a copy of the cart lines. Total and count
// are derived from the lines passed in.
func Cart(lines []store.CartLine, money Money) CartView {
	rows := lo.Map(lines, func(l store.CartLine, _ int) CartRow {
		return CartRow{
			ProductID: l.ProductID,
			Name:      l.Name,
			Quantity:  l.Quantity,
			UnitPrice: money.Format(l.UnitPrice),
			LineTotal: money.Format(l.UnitPrice * float64(l.Quantity)),
		}
	})
	total := lo.SumBy(lines, func(l store.CartLine) float64 {
		return l.UnitPrice * float64(l.Quantity)
	})
	count := lo.SumBy(lines, func(l store.CartLine) int {
		return l.Quantity
	})

	view := CartView{
		Rows:  rows,
		Total: money.Format(total),
		Count: count,
	}
	if count > 0 {
		view.CountLabel = fmt.Sprintf("Items: %d", count)
	}
	return view
}
