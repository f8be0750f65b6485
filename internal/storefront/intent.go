package storefront

import "greenearth/internal/catalog"

// Intent is a user action delivered to the storefront loop.
type Intent interface {
	intent()
}

type SelectCategory struct{ ID catalog.ID }

type SelectAll struct{}

type AddToCart struct{ ID catalog.ID }

type IncrementQuantity struct{ ID catalog.ID }

type DecrementQuantity struct{ ID catalog.ID }

type RemoveFromCart struct{ ID catalog.ID }

type OpenDetail struct{ ID catalog.ID }

type CloseDetail struct{}

func (SelectCategory) intent()    {}
func (SelectAll) intent()         {}
func (AddToCart) intent()         {}
func (IncrementQuantity) intent() {}
func (DecrementQuantity) intent() {}
func (RemoveFromCart) intent()    {}
func (OpenDetail) intent()        {}
func (CloseDetail) intent()       {}
