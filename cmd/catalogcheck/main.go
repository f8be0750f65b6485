package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"slices"
	"strings"

	"greenearth/internal/catalog"
	"greenearth/internal/config"

	"github.com/samber/lo"
)

// catalogcheck verifies that the provider still serves detail pages for a set
// of product ids, and reports how many products each category lists.
func main() {
	var apiURL string
	var idsCSV string
	var listCategories bool

	defaultIDs := lo.Map(catalog.FallbackProducts(), func(p catalog.Product, _ int) string { return p.ID.String() })
	flag.StringVar(&apiURL, "api", "", "Catalog API base URL (overrides CATALOG_BASE_URL)")
	flag.StringVar(&idsCSV, "ids", strings.Join(defaultIDs, ","), "Comma-separated product ids to check")
	flag.BoolVar(&listCategories, "categories", false, "Also report product counts per category")
	flag.Parse()

	ids := parseIDList(idsCSV)
	if len(ids) == 0 {
		log.Fatalf("no product ids provided")
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}
	if apiURL != "" {
		cfg.Catalog.BaseURL = strings.TrimRight(apiURL, "/")
	}

	// no snapshot cache: this checks the live provider
	client, err := catalog.NewClient(cfg.Catalog, nil)
	if err != nil {
		log.Fatalf("failed to create catalog client: %v", err)
	}

	ctx := context.Background()
	if listCategories {
		reportCategories(ctx, client, os.Stdout)
	}

	missing := checkDetails(ctx, client, ids, os.Stdout)
	if len(missing) > 0 {
		fmt.Printf("missing products: %s\n", strings.Join(lo.Map(missing, func(id catalog.ID, _ int) string { return id.String() }), ", "))
		os.Exit(1)
	}
	fmt.Printf("all %d products available\n", len(ids))
}

func parseIDList(csv string) []catalog.ID {
	parts := strings.Split(csv, ",")
	ids := make([]catalog.ID, 0, len(parts))
	for _, part := range parts {
		id := catalog.ID(strings.TrimSpace(part))
		if id == "" || slices.Contains(ids, id) {
			continue
		}
		ids = append(ids, id)
	}
	return ids
}

type detailLoader interface {
	LoadProductDetail(ctx context.Context, id catalog.ID) (*catalog.Product, error)
}

func checkDetails(ctx context.Context, client detailLoader, ids []catalog.ID, w io.Writer) []catalog.ID {
	missing := make([]catalog.ID, 0)
	for _, id := range ids {
		product, err := client.LoadProductDetail(ctx, id)
		if err != nil {
			fmt.Fprintf(w, "❌ %s -> %v\n", id, err)
			missing = append(missing, id)
			continue
		}
		fmt.Fprintf(w, "✅ %s -> %s\n", id, product.Name)
	}
	slices.Sort(missing)
	return missing
}

type listingLoader interface {
	LoadCategories(ctx context.Context) []catalog.Category
	LoadProductsByCategory(ctx context.Context, id catalog.ID, known catalog.Known) []catalog.Product
}

func reportCategories(ctx context.Context, client listingLoader, w io.Writer) {
	categories := client.LoadCategories(ctx)
	if slices.Equal(categories, catalog.FallbackCategories()) {
		// the client substitutes these when the provider is unreachable
		fmt.Fprintln(w, "⚠️ provider unavailable, counts below come from fallback data")
	}
	for _, c := range categories {
		products := client.LoadProductsByCategory(ctx, c.ID, nil)
		fmt.Fprintf(w, "%-4s %-20s %d products\n", c.ID, c.Name, len(products))
	}
}
