package catalog

import (
	"bytes"
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"
)

// ID identifies a category or product. The provider sends ids as either JSON
// strings or numbers; both decode to the same canonical string.
type ID string

func (id ID) String() string { return string(id) }

func (id *ID) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		*id = ""
		return nil
	}
	if data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return fmt.Errorf("decode id: %w", err)
		}
		*id = ID(strings.TrimSpace(s))
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		return fmt.Errorf("decode id: %w", err)
	}
	*id = ID(n.String())
	return nil
}

type Category struct {
	ID   ID     `json:"id"`
	Name string `json:"name"`
}

func (c *Category) UnmarshalJSON(data []byte) error {
	var raw struct {
		ID           ID     `json:"id"`
		CategoryName string `json:"category_name"`
		Name         string `json:"name"`
		Category     string `json:"category"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	*c = Category{
		ID:   raw.ID,
		Name: firstNonEmpty(raw.CategoryName, raw.Name, raw.Category),
	}
	return nil
}

type Product struct {
	ID           ID      `json:"id"`
	Name         string  `json:"name"`
	ImageURL     string  `json:"image"`
	Description  string  `json:"description"`
	CategoryName string  `json:"category"`
	Price        float64 `json:"price"`
}

func (p *Product) UnmarshalJSON(data []byte) error {
	var raw struct {
		ID               ID              `json:"id"`
		PlantID          ID              `json:"plant_id"`
		PlantIDCamel     ID              `json:"plantId"`
		Name             string          `json:"name"`
		Title            string          `json:"title"`
		Image            string          `json:"image"`
		Img              string          `json:"img"`
		Description      string          `json:"description"`
		ShortDescription string          `json:"short_description"`
		Category         string          `json:"category"`
		CategoryName     string          `json:"category_name"`
		Price            json.RawMessage `json:"price"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	*p = Product{
		ID:           ID(firstNonEmpty(string(raw.ID), string(raw.PlantID), string(raw.PlantIDCamel))),
		Name:         firstNonEmpty(raw.Name, raw.Title),
		ImageURL:     firstNonEmpty(raw.Image, raw.Img),
		Description:  firstNonEmpty(raw.Description, raw.ShortDescription),
		CategoryName: firstNonEmpty(raw.Category, raw.CategoryName),
		Price:        parsePrice(raw.Price),
	}
	return nil
}

// Known exposes the catalog state a client needs to derive a category listing
// locally when the provider is unreachable.
type Known interface {
	CategoryName(id ID) (string, bool)
	AllProducts() []Product
}

// parsePrice accepts numbers and numeric strings. Anything else, including
// negative or non-finite values, is 0.
func parsePrice(raw json.RawMessage) float64 {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || bytes.Equal(raw, []byte("null")) {
		return 0
	}

	var f float64
	if err := json.Unmarshal(raw, &f); err != nil {
		var s string
		if err := json.Unmarshal(raw, &s); err != nil {
			return 0
		}
		f, err = strconv.ParseFloat(strings.TrimSpace(s), 64)
		if err != nil {
			return 0
		}
	}
	if math.IsNaN(f) || math.IsInf(f, 0) || f < 0 {
		return 0
	}
	return f
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v = strings.TrimSpace(v); v != "" {
			return v
		}
	}
	return ""
}
