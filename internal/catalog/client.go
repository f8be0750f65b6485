package catalog

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"

	"greenearth/internal/cache"
	"greenearth/internal/config"

	"github.com/google/uuid"
	"github.com/hashicorp/go-retryablehttp"
	"github.com/samber/lo"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

const (
	tracerName      = "greenearth/catalog"
	maxResponseSize = 2 << 20
	snapshotPrefix  = "catalog"
)

var errMalformedBody = errors.New("response was not valid JSON")

// Client reads the remote catalog. List loads always produce a usable list;
// detail loads report absence instead of substituting data.
type Client struct {
	baseURL    string
	httpClient *http.Client
	snapshots  cache.Cache
	tracer     trace.Tracer
}

// NewClient builds a catalog client. snapshots may be nil, in which case a
// failed list load goes straight to the fallback data.
func NewClient(cfg config.CatalogConfig, snapshots cache.Cache) (*Client, error) {
	baseURL := strings.TrimRight(strings.TrimSpace(cfg.BaseURL), "/")
	if baseURL == "" {
		return nil, errors.New("catalog base URL is required")
	}
	parsed, err := url.Parse(baseURL)
	if err != nil {
		return nil, fmt.Errorf("parse catalog base URL: %w", err)
	}
	if parsed.Scheme == "" || parsed.Host == "" {
		return nil, fmt.Errorf("catalog base URL %q must be absolute", baseURL)
	}

	httpClient := cfg.HTTPClient
	if httpClient == nil {
		retryClient := retryablehttp.NewClient()
		retryClient.RetryMax = cfg.RetryMax
		retryClient.Logger = slog.Default()
		if cfg.Timeout > 0 {
			retryClient.HTTPClient.Timeout = cfg.Timeout
		}
		httpClient = retryClient.StandardClient()
	}

	return &Client{
		baseURL:    baseURL,
		httpClient: httpClient,
		snapshots:  snapshots,
		tracer:     otel.Tracer(tracerName),
	}, nil
}

// LoadCategories returns the provider's categories, or the last good snapshot,
// or the fallback list.
func (c *Client) LoadCategories(ctx context.Context) []Category {
	categories, err := loadList(ctx, c, "categories", "/categories", ParseCategories)
	if err != nil {
		slog.WarnContext(ctx, "using fallback categories", "error", err)
		return FallbackCategories()
	}
	return categories
}

// LoadAllProducts returns every product, with the same fallback discipline as
// LoadCategories.
func (c *Client) LoadAllProducts(ctx context.Context) []Product {
	products, err := loadList(ctx, c, "products", "/plants", ParseProducts)
	if err != nil {
		slog.WarnContext(ctx, "using fallback products", "error", err)
		return FallbackProducts()
	}
	return products
}

// LoadProductsByCategory returns the provider's listing for one category. When
// the provider fails it filters known.AllProducts() by the category's name; an
// id that known cannot name yields an empty list.
func (c *Client) LoadProductsByCategory(ctx context.Context, id ID, known Known) []Product {
	if id == "" {
		return []Product{}
	}

	products, err := loadList(ctx, c, "category", "/category/"+url.PathEscape(id.String()), ParseProducts)
	if err == nil {
		return products
	}
	if ctx.Err() != nil {
		// superseded by a newer selection; nobody will read this result
		return []Product{}
	}

	var name string
	var ok bool
	if known != nil {
		name, ok = known.CategoryName(id)
	}
	if !ok {
		slog.WarnContext(ctx, "category listing failed and category is unknown", "category_id", id, "error", err)
		return []Product{}
	}

	slog.WarnContext(ctx, "deriving category listing from known products", "category_id", id, "category", name, "error", err)
	return lo.Filter(known.AllProducts(), func(p Product, _ int) bool {
		return p.CategoryName == name
	})
}

// LoadProductDetail fetches one product. Any failure, including an unknown id,
// is returned as an error matching ErrProductUnavailable.
func (c *Client) LoadProductDetail(ctx context.Context, id ID) (*Product, error) {
	if id == "" {
		return nil, ErrProductUnavailable
	}

	body, err := c.fetch(ctx, "detail", "/plant/"+url.PathEscape(id.String()))
	if err != nil {
		slog.WarnContext(ctx, "product detail unavailable", "product_id", id, "error", err)
		return nil, fmt.Errorf("%w: %w", ErrProductUnavailable, err)
	}

	product, err := ParseProduct(body)
	if err != nil {
		if errors.Is(err, ErrProductUnavailable) {
			return nil, err
		}
		return nil, fmt.Errorf("%w: %w", ErrProductUnavailable, err)
	}
	return product, nil
}

// loadList fetches and parses a list endpoint, recording the raw body as the
// last-known-good snapshot on success and replaying it on failure.
func loadList[T any](ctx context.Context, c *Client, operation, path string, parse func([]byte) (T, error)) (T, error) {
	key := snapshotKey(path)

	body, err := c.fetch(ctx, operation, path)
	if err == nil {
		value, parseErr := parse(body)
		if parseErr == nil {
			c.saveSnapshot(ctx, key, body)
			return value, nil
		}
		err = &FetchError{Operation: operation, Err: parseErr}
	}

	if value, ok := loadSnapshot(ctx, c.snapshots, key, parse); ok {
		slog.WarnContext(ctx, "serving last known catalog snapshot", "operation", operation, "error", err)
		return value, nil
	}

	var zero T
	return zero, err
}

func (c *Client) fetch(ctx context.Context, operation, path string) ([]byte, error) {
	ctx, span := c.tracer.Start(ctx, "catalog."+operation, trace.WithAttributes(
		attribute.String("catalog.path", path),
	))
	defer span.End()

	body, err := c.do(ctx, operation, path)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}
	return body, nil
}

func (c *Client) do(ctx context.Context, operation, path string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path, nil)
	if err != nil {
		return nil, &FetchError{Operation: operation, Err: fmt.Errorf("build request: %w", err)}
	}
	req.Header.Set("Accept", "application/json")
	correlationID := uuid.NewString()
	req.Header.Set("X-Correlation-ID", correlationID)

	slog.DebugContext(ctx, "requesting catalog", "operation", operation, "url", req.URL.String(), "correlation_id", correlationID)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, &FetchError{Operation: operation, Err: err}
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseSize))
	if err != nil {
		return nil, &FetchError{Operation: operation, StatusCode: resp.StatusCode, Err: fmt.Errorf("read response: %w", err)}
	}
	if resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusMultipleChoices {
		return nil, &FetchError{Operation: operation, StatusCode: resp.StatusCode, Err: errors.New(strings.TrimSpace(string(body)))}
	}
	if !json.Valid(body) {
		return nil, &FetchError{Operation: operation, StatusCode: resp.StatusCode, Err: errMalformedBody}
	}
	return body, nil
}

func (c *Client) saveSnapshot(ctx context.Context, key string, body []byte) {
	if c.snapshots == nil {
		return
	}
	if err := c.snapshots.Put(ctx, key, string(body)); err != nil {
		slog.WarnContext(ctx, "failed to store catalog snapshot", "key", key, "error", err)
	}
}

func loadSnapshot[T any](ctx context.Context, snapshots cache.Cache, key string, parse func([]byte) (T, error)) (T, bool) {
	var zero T
	if snapshots == nil {
		return zero, false
	}
	rc, err := snapshots.Get(ctx, key)
	if err != nil {
		if !errors.Is(err, cache.ErrNotFound) {
			slog.WarnContext(ctx, "failed to read catalog snapshot", "key", key, "error", err)
		}
		return zero, false
	}
	defer func() {
		_ = rc.Close()
	}()

	body, err := io.ReadAll(io.LimitReader(rc, maxResponseSize))
	if err != nil {
		slog.WarnContext(ctx, "failed to read catalog snapshot", "key", key, "error", err)
		return zero, false
	}
	value, err := parse(body)
	if err != nil {
		slog.WarnContext(ctx, "discarding unreadable catalog snapshot", "key", key, "error", err)
		return zero, false
	}
	return value, true
}

func snapshotKey(path string) string {
	return snapshotPrefix + path + ".json"
}
