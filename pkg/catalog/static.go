// Package catalog holds the read-only product catalog shown by the storefront.
package catalog

import (
	_ "embed"
	"encoding/json"
	"fmt"
)

//go:embed products.json
var staticProducts []byte

// Static decodes the catalog compiled into the binary.
func Static() ([]Product, error) {
	var products []Product
	if err := json.Unmarshal(staticProducts, &products); err != nil {
		return nil, fmt.Errorf("decoding static catalog: %w", err)
	}
	for _, p := range products {
		if _, ok := ParseCategory(string(p.Category)); !ok {
			return nil, fmt.Errorf("product %s: unknown category %q", p.ID, p.Category)
		}
		if p.Discount < 0 || p.Discount > 100 {
			return nil, fmt.Errorf("product %s: discount %d out of range", p.ID, p.Discount)
		}
	}
	return products, nil
}

// MustStatic is Static for program initialization.
func MustStatic() []Product {
	products, err := Static()
	if err != nil {
		panic(err)
	}
	return products
}
