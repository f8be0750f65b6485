package storefront

import (
	"context"
	"sync"
	"testing"
	"time"

	"greenearth/internal/catalog"
	"greenearth/internal/view"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeClient struct {
	mu      sync.Mutex
	gates   map[string]chan struct{}
	details map[catalog.ID]catalog.Product
}

func newFakeClient() *fakeClient {
	return &fakeClient{
		gates: map[string]chan struct{}{},
		details: map[catalog.ID]catalog.Product{
			"1":  {ID: "1", Name: "Mango Tree", CategoryName: "Fruit Tree", Price: 500},
			"77": {ID: "77", Name: "Lotus", CategoryName: "Aquatic Plant", Price: 250},
		},
	}
}

func (f *fakeClient) hold(key string) func() {
	gate := make(chan struct{})
	f.mu.Lock()
	f.gates[key] = gate
	f.mu.Unlock()
	return func() { close(gate) }
}

func (f *fakeClient) wait(key string) {
	f.mu.Lock()
	gate := f.gates[key]
	f.mu.Unlock()
	if gate != nil {
		<-gate
	}
}

func (f *fakeClient) LoadCategories(context.Context) []catalog.Category {
	f.wait("categories")
	return []catalog.Category{{ID: "1", Name: "Fruit Tree"}, {ID: "2", Name: "Flowering Tree"}}
}

func (f *fakeClient) LoadAllProducts(context.Context) []catalog.Product {
	f.wait("all")
	return []catalog.Product{
		{ID: "1", Name: "Mango Tree", CategoryName: "Fruit Tree", Price: 500},
		{ID: "4", Name: "Gulmohar", CategoryName: "Flowering Tree", Price: 400},
	}
}

func (f *fakeClient) LoadProductsByCategory(_ context.Context, id catalog.ID, _ catalog.Known) []catalog.Product {
	f.wait("category/" + id.String())
	switch id {
	case "1":
		return []catalog.Product{{ID: "1", Name: "Mango Tree", CategoryName: "Fruit Tree", Price: 500}}
	case "2":
		return []catalog.Product{{ID: "4", Name: "Gulmohar", CategoryName: "Flowering Tree", Price: 400}}
	}
	return []catalog.Product{}
}

func (f *fakeClient) LoadProductDetail(_ context.Context, id catalog.ID) (*catalog.Product, error) {
	f.wait("detail/" + id.String())
	p, ok := f.details[id]
	if !ok {
		return nil, catalog.ErrProductUnavailable
	}
	return &p, nil
}

type recorder struct {
	mu         sync.Mutex
	categories view.CategoryBar
	products   []view.ProductGrid
	cart       view.CartView
	cartCalls  int
	details    []view.DetailPanel
}

func (r *recorder) RenderCategories(v view.CategoryBar) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.categories = v
}

func (r *recorder) RenderProducts(v view.ProductGrid) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.products = append(r.products, v)
}

func (r *recorder) RenderCart(v view.CartView) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.cart = v
	r.cartCalls++
}

func (r *recorder) RenderDetail(v view.DetailPanel) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.details = append(r.details, v)
}

func (r *recorder) lastProducts() view.ProductGrid {
	r.mu.Lock()
	defer r.mu.Unlock()
	if len(r.products) == 0 {
		return view.ProductGrid{}
	}
	return r.products[len(r.products)-1]
}

func (r *recorder) lastDetail() view.DetailPanel {
	r.mu.Lock()
	defer r.mu.Unlock()
	if len(r.details) == 0 {
		return view.DetailPanel{}
	}
	return r.details[len(r.details)-1]
}

func (r *recorder) cartView() view.CartView {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.cart
}

func (r *recorder) categoryBar() view.CategoryBar {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.categories
}

func cardIDs(grid view.ProductGrid) []catalog.ID {
	ids := []catalog.ID{}
	for _, c := range grid.Cards {
		ids = append(ids, c.ID)
	}
	return ids
}

const (
	waitFor = 2 * time.Second
	tick    = 5 * time.Millisecond
)

func start(t *testing.T, client *fakeClient) (*Storefront, *recorder) {
	t.Helper()
	rec := &recorder{}
	sf := New(client, rec, view.DefaultMoney())

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- sf.Run(ctx) }()
	t.Cleanup(func() {
		cancel()
		select {
		case err := <-done:
			assert.NoError(t, err)
		case <-time.After(waitFor):
			t.Error("storefront did not stop")
		}
	})
	return sf, rec
}

func dispatch(t *testing.T, sf *Storefront, in Intent) {
	t.Helper()
	require.NoError(t, sf.Dispatch(t.Context(), in))
}

func waitForProducts(t *testing.T, rec *recorder, want ...catalog.ID) {
	t.Helper()
	require.Eventually(t, func() bool {
		grid := rec.lastProducts()
		return !grid.Loading && assert.ObjectsAreEqual(want, cardIDs(grid))
	}, waitFor, tick, "products never became %v", want)
}

func TestStartupRendersCatalogAndEmptyCart(t *testing.T) {
	_, rec := start(t, newFakeClient())

	waitForProducts(t, rec, "1", "4")

	bar := rec.categoryBar()
	require.Len(t, bar.Items, 3)
	assert.Equal(t, view.AllCategoriesLabel, bar.Items[0].Label)
	assert.True(t, bar.Items[0].Active)

	cart := rec.cartView()
	assert.Empty(t, cart.Rows)
	assert.Equal(t, "৳0", cart.Total)
}

func TestCartScenario(t *testing.T) {
	sf, rec := start(t, newFakeClient())
	waitForProducts(t, rec, "1", "4")

	dispatch(t, sf, AddToCart{ID: "1"})
	dispatch(t, sf, AddToCart{ID: "1"})
	require.Eventually(t, func() bool { return rec.cartView().Count == 2 }, waitFor, tick)

	cart := rec.cartView()
	require.Len(t, cart.Rows, 1)
	assert.Equal(t, 2, cart.Rows[0].Quantity)
	assert.Equal(t, "৳1,000", cart.Total)
	assert.Equal(t, "Items: 2", cart.CountLabel)

	dispatch(t, sf, DecrementQuantity{ID: "1"})
	dispatch(t, sf, DecrementQuantity{ID: "1"})
	require.Eventually(t, func() bool { return rec.cartView().Count == 0 }, waitFor, tick)
	assert.Equal(t, "৳0", rec.cartView().Total)
	assert.Empty(t, sf.Cart().Lines())
}

func TestCartIntentsWhileListingLoads(t *testing.T) {
	client := newFakeClient()
	sf, rec := start(t, client)
	waitForProducts(t, rec, "1", "4")

	release := client.hold("category/2")
	dispatch(t, sf, SelectCategory{ID: "2"})
	require.Eventually(t, func() bool { return rec.lastProducts().Loading }, waitFor, tick)

	dispatch(t, sf, AddToCart{ID: "4"})
	dispatch(t, sf, IncrementQuantity{ID: "4"})
	require.Eventually(t, func() bool { return rec.cartView().Count == 2 }, waitFor, tick)
	assert.True(t, rec.lastProducts().Loading)

	release()
	waitForProducts(t, rec, "4")
	assert.Equal(t, "৳800", rec.cartView().Total)
}

func TestLastSelectionWins(t *testing.T) {
	client := newFakeClient()
	sf, rec := start(t, client)
	waitForProducts(t, rec, "1", "4")

	release := client.hold("category/1")
	dispatch(t, sf, SelectCategory{ID: "1"})
	dispatch(t, sf, SelectCategory{ID: "2"})
	waitForProducts(t, rec, "4")

	release()
	time.Sleep(50 * time.Millisecond)

	assert.Equal(t, []catalog.ID{"4"}, cardIDs(rec.lastProducts()))
	bar := rec.categoryBar()
	assert.True(t, bar.Items[2].Active)
	assert.False(t, bar.Items[1].Active)
}

func TestUnknownCategoryShowsEmptyState(t *testing.T) {
	sf, rec := start(t, newFakeClient())
	waitForProducts(t, rec, "1", "4")

	dispatch(t, sf, SelectCategory{ID: "99"})
	require.Eventually(t, func() bool { return rec.lastProducts().Empty }, waitFor, tick)
	assert.Equal(t, view.EmptyMessage, rec.lastProducts().EmptyMessage)

	dispatch(t, sf, SelectAll{})
	waitForProducts(t, rec, "1", "4")
}

func TestDetailOverlay(t *testing.T) {
	sf, rec := start(t, newFakeClient())
	waitForProducts(t, rec, "1", "4")

	dispatch(t, sf, OpenDetail{ID: "1"})
	require.Eventually(t, func() bool { return rec.lastDetail().Available }, waitFor, tick)
	assert.Equal(t, "Mango Tree", rec.lastDetail().Name)
	assert.Equal(t, "৳500", rec.lastDetail().Price)

	dispatch(t, sf, OpenDetail{ID: "404"})
	require.Eventually(t, func() bool {
		d := rec.lastDetail()
		return d.Open && !d.Available
	}, waitFor, tick)
	assert.Equal(t, view.UnavailableMessage, rec.lastDetail().Message)

	dispatch(t, sf, CloseDetail{})
	require.Eventually(t, func() bool { return !rec.lastDetail().Open }, waitFor, tick)
}

func TestCloseBeatsSlowDetail(t *testing.T) {
	client := newFakeClient()
	sf, rec := start(t, client)
	waitForProducts(t, rec, "1", "4")

	release := client.hold("detail/1")
	dispatch(t, sf, OpenDetail{ID: "1"})
	dispatch(t, sf, CloseDetail{})
	release()

	time.Sleep(50 * time.Millisecond)
	assert.False(t, rec.lastDetail().Open)
}

func TestAddFromDetailAndUnknownAdd(t *testing.T) {
	sf, rec := start(t, newFakeClient())
	waitForProducts(t, rec, "1", "4")

	dispatch(t, sf, AddToCart{ID: "77"})
	dispatch(t, sf, OpenDetail{ID: "77"})
	require.Eventually(t, func() bool { return rec.lastDetail().Available }, waitFor, tick)

	dispatch(t, sf, AddToCart{ID: "77"})
	require.Eventually(t, func() bool { return rec.cartView().Count == 1 }, waitFor, tick)

	cart := rec.cartView()
	require.Len(t, cart.Rows, 1)
	assert.Equal(t, "Lotus", cart.Rows[0].Name)
	assert.Equal(t, "৳250", cart.Total)
}

func TestDispatchAfterStop(t *testing.T) {
	rec := &recorder{}
	sf := New(newFakeClient(), rec, view.DefaultMoney())

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- sf.Run(ctx) }()
	waitForProducts(t, rec, "1", "4")
	cancel()
	require.NoError(t, <-done)

	assert.ErrorIs(t, sf.Dispatch(t.Context(), SelectAll{}), ErrStopped)
}

func TestWaitReturnsAfterOutstandingFetchesRender(t *testing.T) {
	client := newFakeClient()
	sf, rec := start(t, client)
	waitForProducts(t, rec, "1", "4")

	release := client.hold("category/2")
	dispatch(t, sf, SelectCategory{ID: "2"})

	done := make(chan error, 1)
	go func() { done <- sf.Wait(t.Context()) }()

	select {
	case err := <-done:
		t.Fatalf("Wait returned before the listing loaded: %v", err)
	case <-time.After(30 * time.Millisecond):
	}

	release()
	select {
	case err := <-done:
		require.NoError(t, err)
	case <-time.After(waitFor):
		t.Fatal("Wait never returned")
	}
	assert.Equal(t, []catalog.ID{"4"}, cardIDs(rec.lastProducts()))
	assert.NoError(t, sf.Wait(t.Context()), "an idle storefront returns at once")
}
