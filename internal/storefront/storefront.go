// Package storefront runs the intent loop that keeps the catalog listing, the
// cart and the detail overlay in sync with what the renderer shows.
package storefront

import (
	"context"
	"errors"
	"log/slog"
	"sync"

	"greenearth/internal/catalog"
	"greenearth/internal/store"
	"greenearth/internal/view"

	"github.com/samber/lo"
)

var ErrStopped = errors.New("storefront is not running")

// Client is everything the storefront needs from the catalog provider.
type Client interface {
	store.Source
	LoadProductDetail(ctx context.Context, id catalog.ID) (*catalog.Product, error)
}

// Renderer is the presentation sink. All calls happen on the loop goroutine.
type Renderer interface {
	RenderCategories(view.CategoryBar)
	RenderProducts(view.ProductGrid)
	RenderCart(view.CartView)
	RenderDetail(view.DetailPanel)
}

type Storefront struct {
	client   Client
	catalog  *store.Catalog
	cart     *store.Cart
	renderer Renderer
	money    view.Money

	intents chan Intent
	events  chan func()
	idle    chan chan struct{}
	stopped chan struct{}
	wg      sync.WaitGroup

	// owned by the loop goroutine
	catalogSeq   uint64
	detailSeq    uint64
	detailOpen   bool
	detail       *catalog.Product
	detailCancel context.CancelFunc
	inflight     int
	idleWaiters  []chan struct{}
}

func New(client Client, renderer Renderer, money view.Money) *Storefront {
	return &Storefront{
		client:   client,
		catalog:  store.NewCatalog(client),
		cart:     store.NewCart(),
		renderer: renderer,
		money:    money,
		intents:  make(chan Intent),
		events:   make(chan func(), 16),
		idle:     make(chan chan struct{}),
		stopped:  make(chan struct{}),
	}
}

func (s *Storefront) Catalog() *store.Catalog { return s.catalog }

func (s *Storefront) Cart() *store.Cart { return s.cart }

// Dispatch hands an intent to the loop. It blocks until the loop accepts it.
func (s *Storefront) Dispatch(ctx context.Context, in Intent) error {
	select {
	case s.intents <- in:
		return nil
	case <-s.stopped:
		return ErrStopped
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Wait blocks until every fetch started so far has been applied and rendered.
func (s *Storefront) Wait(ctx context.Context) error {
	waiter := make(chan struct{})
	select {
	case s.idle <- waiter:
	case <-s.stopped:
		return ErrStopped
	case <-ctx.Done():
		return ctx.Err()
	}
	select {
	case <-waiter:
		return nil
	case <-s.stopped:
		return ErrStopped
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Run loads the catalog and processes intents until ctx is cancelled. Fetches
// run on their own goroutines and hand their results back to the loop, so cart
// intents are handled while a listing or detail is still loading.
func (s *Storefront) Run(ctx context.Context) error {
	ctx, cancel := context.WithCancel(ctx)
	defer func() {
		cancel()
		s.wg.Wait()
		close(s.stopped)
	}()

	s.renderCart()
	s.renderer.RenderDetail(view.Closed())
	s.beginListing(ctx, s.catalog.BeginInitialize(ctx), true)

	for {
		select {
		case <-ctx.Done():
			slog.InfoContext(ctx, "storefront stopped")
			return nil
		case in := <-s.intents:
			s.handle(ctx, in)
		case apply := <-s.events:
			apply()
			s.inflight--
			s.notifyIdle()
		case waiter := <-s.idle:
			s.idleWaiters = append(s.idleWaiters, waiter)
			s.notifyIdle()
		}
	}
}

func (s *Storefront) handle(ctx context.Context, in Intent) {
	switch in := in.(type) {
	case SelectAll:
		s.beginListing(ctx, s.catalog.BeginAll(ctx), false)
	case SelectCategory:
		s.beginListing(ctx, s.catalog.BeginCategory(ctx, in.ID), false)
	case AddToCart:
		s.addToCart(ctx, in.ID)
	case IncrementQuantity:
		s.cart.ChangeQuantity(in.ID, 1)
		s.renderCart()
	case DecrementQuantity:
		s.cart.ChangeQuantity(in.ID, -1)
		s.renderCart()
	case RemoveFromCart:
		s.cart.RemoveItem(in.ID)
		s.renderCart()
	case OpenDetail:
		s.openDetail(ctx, in.ID)
	case CloseDetail:
		s.closeDetail()
	default:
		slog.WarnContext(ctx, "ignoring unknown intent", "intent", in)
	}
}

// beginListing renders the recorded selection right away and finishes the
// load in the background. Only a result for the newest selection is rendered.
func (s *Storefront) beginListing(ctx context.Context, pending *store.Pending, initial bool) {
	snap := pending.Snapshot()
	s.catalogSeq = snap.Seq
	s.renderCatalog(snap)

	s.background(ctx, func() func() {
		result, applied := pending.Wait()
		return func() {
			if initial {
				// categories arrive with the initial load even if a later
				// selection replaced its product list
				s.renderer.RenderCategories(view.Categories(s.catalog.Snapshot()))
			}
			if !applied || result.Seq != s.catalogSeq {
				slog.DebugContext(ctx, "dropping superseded listing", "seq", result.Seq, "current", s.catalogSeq)
				return
			}
			s.renderCatalog(result)
		}
	})
}

func (s *Storefront) addToCart(ctx context.Context, id catalog.ID) {
	product, ok := s.catalog.Product(id)
	if !ok && s.detail != nil && s.detail.ID == id {
		product, ok = *s.detail, true
	}
	if !ok {
		slog.WarnContext(ctx, "ignoring add to cart for unknown product", "product_id", id)
		return
	}
	s.cart.AddItem(product.ID, lo.CoalesceOrEmpty(product.Name, view.DefaultProductName), product.Price)
	s.renderCart()
}

func (s *Storefront) openDetail(ctx context.Context, id catalog.ID) {
	s.resetDetail()
	s.detailOpen = true
	seq := s.detailSeq

	detailCtx, cancel := context.WithCancel(ctx)
	s.detailCancel = cancel

	s.background(ctx, func() func() {
		product, err := s.client.LoadProductDetail(detailCtx, id)
		return func() {
			if seq != s.detailSeq || !s.detailOpen {
				slog.DebugContext(ctx, "dropping superseded product detail", "product_id", id)
				return
			}
			if err != nil {
				product = nil
			}
			s.detail = product
			s.renderer.RenderDetail(view.Detail(product, s.money))
		}
	})
}

func (s *Storefront) closeDetail() {
	s.resetDetail()
	s.renderer.RenderDetail(view.Closed())
}

// resetDetail invalidates any outstanding detail load.
func (s *Storefront) resetDetail() {
	if s.detailCancel != nil {
		s.detailCancel()
		s.detailCancel = nil
	}
	s.detailSeq++
	s.detailOpen = false
	s.detail = nil
}

// background runs work off the loop. The func it returns is applied on the
// loop goroutine unless the storefront is shutting down.
func (s *Storefront) background(ctx context.Context, work func() func()) {
	s.inflight++
	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		apply := work()
		select {
		case s.events <- apply:
		case <-ctx.Done():
		}
	}()
}

func (s *Storefront) notifyIdle() {
	if s.inflight > 0 {
		return
	}
	for _, waiter := range s.idleWaiters {
		close(waiter)
	}
	s.idleWaiters = nil
}

func (s *Storefront) renderCatalog(snap store.Snapshot) {
	s.renderer.RenderCategories(view.Categories(snap))
	s.renderer.RenderProducts(view.Products(snap, s.money))
}

func (s *Storefront) renderCart() {
	s.renderer.RenderCart(view.Cart(s.cart.Lines(), s.money))
}
