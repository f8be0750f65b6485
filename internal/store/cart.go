package store

import (
	"math"
	"slices"
	"sync"

	"greenearth/internal/catalog"

	"github.com/samber/lo"
)

// CartLine is one product in the cart. Quantity is always at least 1.
type CartLine struct {
	ProductID catalog.ID
	Name      string
	UnitPrice float64
	Quantity  int
}

// Cart owns the cart lines. It holds at most one line per product and keeps
// lines in the order they were first added.
type Cart struct {
	mu    sync.Mutex
	lines []CartLine
}

func NewCart() *Cart {
	return &Cart{}
}

// AddItem adds one unit of a product, creating its line on first add.
func (c *Cart) AddItem(productID catalog.ID, name string, unitPrice float64) {
	if productID == "" {
		return
	}
	if math.IsNaN(unitPrice) || math.IsInf(unitPrice, 0) || unitPrice < 0 {
		unitPrice = 0
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if _, i, ok := c.find(productID); ok {
		c.lines[i].Quantity++
		return
	}
	c.lines = append(c.lines, CartLine{
		ProductID: productID,
		Name:      name,
		UnitPrice: unitPrice,
		Quantity:  1,
	})
}

// ChangeQuantity adjusts a line by delta and removes it once the quantity
// drops to zero or below. Unknown products are ignored.
func (c *Cart) ChangeQuantity(productID catalog.ID, delta int) {
	c.mu.Lock()
	defer c.mu.Unlock()

	_, i, ok := c.find(productID)
	if !ok {
		return
	}
	c.lines[i].Quantity += delta
	if c.lines[i].Quantity <= 0 {
		c.lines = slices.Delete(c.lines, i, i+1)
	}
}

// RemoveItem drops a product's line if present.
func (c *Cart) RemoveItem(productID catalog.ID) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if _, i, ok := c.find(productID); ok {
		c.lines = slices.Delete(c.lines, i, i+1)
	}
}

// Total is recomputed from the current lines on every call.
func (c *Cart) Total() float64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return lo.SumBy(c.lines, func(l CartLine) float64 {
		return l.UnitPrice * float64(l.Quantity)
	})
}

// Count is the number of units across all lines.
func (c *Cart) Count() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return lo.SumBy(c.lines, func(l CartLine) int {
		return l.Quantity
	})
}

// Lines returns a copy of the cart in insertion order.
func (c *Cart) Lines() []CartLine {
	c.mu.Lock()
	defer c.mu.Unlock()
	return slices.Clone(c.lines)
}

func (c *Cart) find(productID catalog.ID) (CartLine, int, bool) {
	return lo.FindIndexOf(c.lines, func(l CartLine) bool {
		return l.ProductID == productID
	})
}
