package store

import (
	"context"
	"log/slog"
	"maps"
	"slices"
	"sync"

	"greenearth/internal/catalog"

	"github.com/samber/lo"
	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/singleflight"
)

const allProductsKey = "all"

// Source is the subset of the catalog client the store reads from.
type Source interface {
	LoadCategories(ctx context.Context) []catalog.Category
	LoadAllProducts(ctx context.Context) []catalog.Product
	LoadProductsByCategory(ctx context.Context, id catalog.ID, known catalog.Known) []catalog.Product
}

// Selection is either "all products" (the zero value) or one category.
type Selection struct {
	CategoryID catalog.ID
}

func AllSelection() Selection { return Selection{} }

func CategorySelection(id catalog.ID) Selection { return Selection{CategoryID: id} }

func (s Selection) IsAll() bool { return s.CategoryID == "" }

// Snapshot is a consistent copy of the catalog state.
type Snapshot struct {
	Categories []catalog.Category
	Selection  Selection
	Products   []catalog.Product
	Loading    bool
	Seq        uint64
}

// Empty reports whether the current selection finished loading with nothing
// to show.
func (s Snapshot) Empty() bool {
	return !s.Loading && len(s.Products) == 0
}

// Catalog holds categories, the current selection and the products shown for
// it. Every selection bumps a sequence number; a fetch whose sequence is no
// longer current is discarded when it completes.
type Catalog struct {
	source Source
	flight singleflight.Group

	mu          sync.Mutex
	categories  []catalog.Category
	names       map[catalog.ID]string
	allProducts []catalog.Product
	allLoaded   bool
	selection   Selection
	products    []catalog.Product
	loading     bool
	seq         uint64
	cancel      context.CancelFunc
}

func NewCatalog(source Source) *Catalog {
	return &Catalog{
		source: source,
		names:  map[catalog.ID]string{},
	}
}

// Pending is a selection that has been recorded but whose products may still
// be loading. Begin* calls are cheap and take effect immediately, so callers
// that must preserve intent order call them inline and Wait elsewhere.
type Pending struct {
	catalog  *Catalog
	seq      uint64
	snapshot Snapshot
	load     func() []catalog.Product
	cancel   context.CancelFunc
}

// Snapshot is the state right after the selection was recorded.
func (p *Pending) Snapshot() Snapshot {
	return p.snapshot
}

// Wait finishes the load and applies it. The bool is false when a newer
// selection was recorded in the meantime; the result is then discarded and the
// returned snapshot reflects the newer selection.
func (p *Pending) Wait() (Snapshot, bool) {
	if p.load == nil {
		return p.snapshot, true
	}
	products := p.load()

	c := p.catalog
	c.mu.Lock()
	defer c.mu.Unlock()
	if p.cancel != nil {
		p.cancel()
	}
	if c.seq != p.seq {
		slog.Debug("discarding stale product listing", "selection", p.snapshot.Selection.CategoryID, "seq", p.seq, "current", c.seq)
		return c.snapshotLocked(), false
	}
	c.cancel = nil
	c.products = slices.Clone(products)
	c.loading = false
	return c.snapshotLocked(), true
}

// Initialize loads categories and the full product list in parallel and
// selects "all". Calling it again reloads both wholesale.
func (c *Catalog) Initialize(ctx context.Context) Snapshot {
	snap, _ := c.BeginInitialize(ctx).Wait()
	return snap
}

func (c *Catalog) BeginInitialize(ctx context.Context) *Pending {
	c.mu.Lock()
	defer c.mu.Unlock()
	seq := c.beginLocked(AllSelection())
	c.loading = true

	return &Pending{
		catalog:  c,
		seq:      seq,
		snapshot: c.snapshotLocked(),
		load: func() []catalog.Product {
			var all []catalog.Product
			g, gctx := errgroup.WithContext(ctx)
			g.Go(func() error {
				c.setCategories(c.source.LoadCategories(gctx))
				return nil
			})
			g.Go(func() error {
				all = c.loadAll(gctx)
				return nil
			})
			_ = g.Wait()
			return all
		},
	}
}

// SelectAll shows every product, reusing the cached full list when one has
// been loaded. The bool is false when a newer selection won the race.
func (c *Catalog) SelectAll(ctx context.Context) (Snapshot, bool) {
	return c.BeginAll(ctx).Wait()
}

func (c *Catalog) BeginAll(ctx context.Context) *Pending {
	c.mu.Lock()
	defer c.mu.Unlock()
	seq := c.beginLocked(AllSelection())

	if c.allLoaded {
		c.products = slices.Clone(c.allProducts)
		c.loading = false
		return &Pending{catalog: c, seq: seq, snapshot: c.snapshotLocked()}
	}

	c.loading = true
	return &Pending{
		catalog:  c,
		seq:      seq,
		snapshot: c.snapshotLocked(),
		load: func() []catalog.Product {
			return c.loadAll(ctx)
		},
	}
}

// SelectCategory shows one category's products. An id that is not among the
// loaded categories yields an empty listing without a fetch. Any fetch still
// running for an earlier selection is cancelled.
func (c *Catalog) SelectCategory(ctx context.Context, id catalog.ID) (Snapshot, bool) {
	return c.BeginCategory(ctx, id).Wait()
}

func (c *Catalog) BeginCategory(ctx context.Context, id catalog.ID) *Pending {
	c.mu.Lock()
	defer c.mu.Unlock()
	seq := c.beginLocked(CategorySelection(id))

	if _, ok := c.names[id]; !ok || id == "" {
		slog.DebugContext(ctx, "selected unknown category", "category_id", id)
		c.products = []catalog.Product{}
		c.loading = false
		return &Pending{catalog: c, seq: seq, snapshot: c.snapshotLocked()}
	}

	fetchCtx, cancel := context.WithCancel(ctx)
	c.cancel = cancel
	c.loading = true
	known := c.knownLocked()
	return &Pending{
		catalog:  c,
		seq:      seq,
		snapshot: c.snapshotLocked(),
		cancel:   cancel,
		load: func() []catalog.Product {
			return c.source.LoadProductsByCategory(fetchCtx, id, known)
		},
	}
}

// Snapshot returns the current state.
func (c *Catalog) Snapshot() Snapshot {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.snapshotLocked()
}

// Product looks an id up among the displayed products, then the full list.
func (c *Catalog) Product(id catalog.ID) (catalog.Product, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	match := func(p catalog.Product) bool { return p.ID == id }
	if p, ok := lo.Find(c.products, match); ok {
		return p, true
	}
	return lo.Find(c.allProducts, match)
}

// CategoryName implements catalog.Known.
func (c *Catalog) CategoryName(id catalog.ID) (string, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	name, ok := c.names[id]
	return name, ok
}

// AllProducts implements catalog.Known.
func (c *Catalog) AllProducts() []catalog.Product {
	c.mu.Lock()
	defer c.mu.Unlock()
	return slices.Clone(c.allProducts)
}

func (c *Catalog) beginLocked(sel Selection) uint64 {
	if c.cancel != nil {
		c.cancel()
		c.cancel = nil
	}
	c.seq++
	c.selection = sel
	return c.seq
}

func (c *Catalog) snapshotLocked() Snapshot {
	return Snapshot{
		Categories: slices.Clone(c.categories),
		Selection:  c.selection,
		Products:   slices.Clone(c.products),
		Loading:    c.loading,
		Seq:        c.seq,
	}
}

func (c *Catalog) knownLocked() catalog.Known {
	return knownCatalog{
		names:    maps.Clone(c.names),
		products: slices.Clone(c.allProducts),
	}
}

func (c *Catalog) setCategories(categories []catalog.Category) {
	names := lo.SliceToMap(categories, func(cat catalog.Category) (catalog.ID, string) {
		return cat.ID, cat.Name
	})
	c.mu.Lock()
	defer c.mu.Unlock()
	c.categories = slices.Clone(categories)
	c.names = names
}

// loadAll shares one in-flight full-list request between callers. The shared
// request is detached from any single caller's cancellation.
func (c *Catalog) loadAll(ctx context.Context) []catalog.Product {
	v, _, _ := c.flight.Do(allProductsKey, func() (any, error) {
		products := c.source.LoadAllProducts(context.WithoutCancel(ctx))
		c.mu.Lock()
		c.allProducts = slices.Clone(products)
		c.allLoaded = true
		c.mu.Unlock()
		return products, nil
	})
	products, _ := v.([]catalog.Product)
	return products
}

// knownCatalog is a point-in-time copy handed to the client for its
// category fallback, so the client never reads store state under a lock.
type knownCatalog struct {
	names    map[catalog.ID]string
	products []catalog.Product
}

func (k knownCatalog) CategoryName(id catalog.ID) (string, bool) {
	name, ok := k.names[id]
	return name, ok
}

func (k knownCatalog) AllProducts() []catalog.Product {
	return slices.Clone(k.products)
}
