package render

import (
	"bytes"
	"strings"
	"testing"

	"greenearth/internal/catalog"
	"greenearth/internal/store"
	"greenearth/internal/view"
)

func newText(t *testing.T) (*Text, *bytes.Buffer) {
	t.Helper()
	var buf bytes.Buffer
	text, err := New(&buf)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	return text, &buf
}

func TestRenderCategories(t *testing.T) {
	text, buf := newText(t)

	text.RenderCategories(view.Categories(store.Snapshot{
		Categories: []catalog.Category{{ID: "1", Name: "Fruit Tree"}},
		Selection:  store.CategorySelection("1"),
	}))

	want := "== Categories ==\n  all  All Trees\n* cat 1  Fruit Tree\n"
	if !strings.HasPrefix(buf.String(), want) {
		t.Fatalf("got %q, want prefix %q", buf.String(), want)
	}
}

func TestRenderProducts(t *testing.T) {
	text, buf := newText(t)
	money := view.DefaultMoney()

	text.RenderProducts(view.Products(store.Snapshot{Loading: true}, money))
	if !strings.Contains(buf.String(), "Loading...") {
		t.Fatalf("expected loading state, got %q", buf.String())
	}

	buf.Reset()
	text.RenderProducts(view.Products(store.Snapshot{}, money))
	if !strings.Contains(buf.String(), view.EmptyMessage) {
		t.Fatalf("expected empty message, got %q", buf.String())
	}

	buf.Reset()
	text.RenderProducts(view.Products(store.Snapshot{Products: []catalog.Product{
		{ID: "1", Name: "Mango Tree", CategoryName: "Fruit Tree", Description: "Sweet", Price: 1000},
	}}, money))
	for _, want := range []string{"[1] Mango Tree (Fruit Tree) ৳1,000", "    Sweet"} {
		if !strings.Contains(buf.String(), want) {
			t.Fatalf("expected %q in %q", want, buf.String())
		}
	}
}

func TestRenderCart(t *testing.T) {
	text, buf := newText(t)
	money := view.DefaultMoney()

	text.RenderCart(view.Cart(nil, money))
	if got, want := buf.String(), "== Cart ==\n(empty)\nTotal: ৳0\n"; got != want {
		t.Fatalf("got %q want %q", got, want)
	}

	buf.Reset()
	text.RenderCart(view.Cart([]store.CartLine{{ProductID: "1", Name: "Mango Tree", UnitPrice: 500, Quantity: 2}}, money))
	want := "== Cart (Items: 2) ==\n[1] Mango Tree x2 @ ৳500 = ৳1,000\nTotal: ৳1,000\n"
	if got := buf.String(); got != want {
		t.Fatalf("got %q want %q", got, want)
	}
}

func TestRenderDetail(t *testing.T) {
	text, buf := newText(t)
	money := view.DefaultMoney()

	text.RenderDetail(view.Closed())
	if strings.TrimSpace(buf.String()) != "" {
		t.Fatalf("closed detail rendered %q", buf.String())
	}

	text.RenderDetail(view.Detail(nil, money))
	if !strings.Contains(buf.String(), view.UnavailableMessage) {
		t.Fatalf("expected unavailable message, got %q", buf.String())
	}

	buf.Reset()
	text.RenderDetail(view.Detail(&catalog.Product{ID: "4", Name: "Gulmohar", Price: 400}, money))
	for _, want := range []string{"== Gulmohar ==", "Category: —", "Price: ৳400", "No description available.", "Add to Cart: add 4"} {
		if !strings.Contains(buf.String(), want) {
			t.Fatalf("expected %q in %q", want, buf.String())
		}
	}
}
