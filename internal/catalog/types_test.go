package catalog

import (
	"encoding/json"
	"testing"
)

func TestIDAcceptsStringsAndNumbers(t *testing.T) {
	t.Parallel()

	cases := map[string]ID{
		`1`:       "1",
		`"1"`:     "1",
		`" 42 "`:  "42",
		`null`:    "",
		`1234567`: "1234567",
	}
	for input, want := range cases {
		var got ID
		if err := json.Unmarshal([]byte(input), &got); err != nil {
			t.Fatalf("unmarshal %s: %v", input, err)
		}
		if got != want {
			t.Fatalf("unmarshal %s: got %q want %q", input, got, want)
		}
	}

	var bad ID
	if err := json.Unmarshal([]byte(`{"id":1}`), &bad); err == nil {
		t.Fatal("expected error for object id")
	}
}

func TestCategoryNameAliases(t *testing.T) {
	t.Parallel()

	var categories []Category
	if err := json.Unmarshal([]byte(`[{"id":1,"category_name":"Fruit Tree"},{"id":2,"name":"Bamboo"},{"id":3,"category":"Climber"}]`), &categories); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	want := []string{"Fruit Tree", "Bamboo", "Climber"}
	for i, c := range categories {
		if c.Name != want[i] {
			t.Fatalf("category %d: got %q want %q", i, c.Name, want[i])
		}
	}
}

func TestParseCategoriesWithoutKnownKeyIsEmpty(t *testing.T) {
	t.Parallel()

	categories, err := ParseCategories([]byte(`{"status":true}`))
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if categories == nil || len(categories) != 0 {
		t.Fatalf("expected empty non-nil list, got %#v", categories)
	}

	if _, err := ParseCategories([]byte(`[]`)); err == nil {
		t.Fatal("expected error for bare array")
	}
}

func TestParseProductsPrefersPresentPrimaryKey(t *testing.T) {
	t.Parallel()

	products, err := ParseProducts([]byte(`{"plants":[],"data":[{"id":1,"name":"Mango Tree"}]}`))
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if len(products) != 0 {
		t.Fatalf("an empty plants list must win over data, got %#v", products)
	}

	products, err = ParseProducts([]byte(`{"plants":null,"data":[{"id":1,"name":"Mango Tree"}]}`))
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if len(products) != 1 || products[0].Name != "Mango Tree" {
		t.Fatalf("a null plants key falls through to data, got %#v", products)
	}
}

func TestFallbackReturnsCopies(t *testing.T) {
	t.Parallel()

	products := FallbackProducts()
	products[0].Name = "changed"
	if FallbackProducts()[0].Name == "changed" {
		t.Fatal("fallback products share backing storage with callers")
	}

	categories := FallbackCategories()
	categories[0].Name = "changed"
	if FallbackCategories()[0].Name == "changed" {
		t.Fatal("fallback categories share backing storage with callers")
	}
}

func TestFallbackProductsBelongToFallbackCategories(t *testing.T) {
	t.Parallel()

	names := make(map[string]bool)
	for _, c := range FallbackCategories() {
		names[c.Name] = true
	}
	for _, p := range FallbackProducts() {
		if !names[p.CategoryName] {
			t.Fatalf("fallback product %s has unknown category %q", p.ID, p.CategoryName)
		}
	}
}
