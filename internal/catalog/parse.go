package catalog

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// Envelope keys in lookup order. The upstream API is inconsistent about which
// one it uses, so the first key present with a non-null value wins.
var (
	categoryKeys = []string{"categories", "data"}
	listKeys     = []string{"plants", "products", "data"}
	detailKeys   = []string{"plant", "product", "data"}
)

// ParseCategories decodes a category envelope. An envelope without any known
// key is a valid, empty result.
func ParseCategories(data []byte) ([]Category, error) {
	raw, err := pickEnvelope(data, categoryKeys)
	if err != nil {
		return nil, fmt.Errorf("unmarshal categories payload: %w", err)
	}
	categories := []Category{}
	if raw == nil {
		return categories, nil
	}
	if err := json.Unmarshal(raw, &categories); err != nil {
		return nil, fmt.Errorf("unmarshal categories payload: %w", err)
	}
	return categories, nil
}

// ParseProducts decodes a product list envelope from either the primary
// (plants/products) or alternate (data) shape.
func ParseProducts(data []byte) ([]Product, error) {
	raw, err := pickEnvelope(data, listKeys)
	if err != nil {
		return nil, fmt.Errorf("unmarshal products payload: %w", err)
	}
	products := []Product{}
	if raw == nil {
		return products, nil
	}
	if err := json.Unmarshal(raw, &products); err != nil {
		return nil, fmt.Errorf("unmarshal products payload: %w", err)
	}
	return products, nil
}

// ParseProduct decodes a single-product envelope. A missing or null product is
// reported as ErrProductUnavailable.
func ParseProduct(data []byte) (*Product, error) {
	raw, err := pickEnvelope(data, detailKeys)
	if err != nil {
		return nil, fmt.Errorf("unmarshal product payload: %w", err)
	}
	if raw == nil {
		return nil, ErrProductUnavailable
	}
	var product Product
	if err := json.Unmarshal(raw, &product); err != nil {
		return nil, fmt.Errorf("unmarshal product payload: %w", err)
	}
	if product.ID == "" && product.Name == "" {
		return nil, ErrProductUnavailable
	}
	return &product, nil
}

func pickEnvelope(data []byte, keys []string) (json.RawMessage, error) {
	var shape map[string]json.RawMessage
	if err := json.Unmarshal(data, &shape); err != nil {
		return nil, err
	}
	for _, key := range keys {
		value, ok := shape[key]
		if !ok {
			continue
		}
		value = bytes.TrimSpace(value)
		if len(value) == 0 || bytes.Equal(value, []byte("null")) {
			continue
		}
		return value, nil
	}
	return nil, nil
}
