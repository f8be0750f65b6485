// Package render is a plain-text presentation sink for terminals.
package render

import (
	"embed"
	"io"
	"log/slog"
	"sync"
	"text/template"

	"greenearth/internal/view"
)

//go:embed *.tmpl
var tmplFiles embed.FS

// Text writes each view-model to w using the embedded templates.
type Text struct {
	mu sync.Mutex
	w  io.Writer

	categories, products, cart, detail *template.Template
}

func New(w io.Writer) (*Text, error) {
	funcs := template.FuncMap{
		// the command a user types to pick this entry
		"command": func(item view.CategoryItem) string {
			if item.All {
				return "all"
			}
			return "cat " + item.ID.String()
		},
	}
	tmpls, err := template.New("all").Funcs(funcs).ParseFS(tmplFiles, "*.tmpl")
	if err != nil {
		return nil, err
	}
	return &Text{
		w:          w,
		categories: ensure(tmpls, "categories.tmpl"),
		products:   ensure(tmpls, "products.tmpl"),
		cart:       ensure(tmpls, "cart.tmpl"),
		detail:     ensure(tmpls, "detail.tmpl"),
	}, nil
}

func ensure(templates *template.Template, name string) *template.Template {
	tmpl := templates.Lookup(name)
	if tmpl == nil {
		panic("template " + name + " not found")
	}
	return tmpl
}

func (t *Text) RenderCategories(v view.CategoryBar) { t.execute(t.categories, v) }

func (t *Text) RenderProducts(v view.ProductGrid) { t.execute(t.products, v) }

func (t *Text) RenderCart(v view.CartView) { t.execute(t.cart, v) }

func (t *Text) RenderDetail(v view.DetailPanel) { t.execute(t.detail, v) }

func (t *Text) execute(tmpl *template.Template, data any) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if err := tmpl.Execute(t.w, data); err != nil {
		slog.Error("failed to render view", "template", tmpl.Name(), "error", err)
	}
}
