package catalog

import (
	"context"
	"errors"
	"sort"
	"strings"

	"github.com/shopspring/decimal"
)

// Category groups products by the section of the store they are listed in.
type Category string

const (
	Phone     Category = "phone"
	Tablet    Category = "tablet"
	Accessory Category = "accessory"
)

// Categories lists every category in display order.
var Categories = []Category{Phone, Tablet, Accessory}

// ParseCategory maps a category name or its route segment ("phones",
// "tablets", "accessories") to a Category.
func ParseCategory(s string) (Category, bool) {
	switch strings.ToLower(s) {
	case "phone", "phones":
		return Phone, true
	case "tablet", "tablets":
		return Tablet, true
	case "accessory", "accessories":
		return Accessory, true
	}
	return "", false
}

// Path returns the route segment for c.
func (c Category) Path() string {
	if c == Accessory {
		return "accessories"
	}
	return string(c) + "s"
}

// Product is an immutable catalog record. Price is in whole currency units
// and Discount is a percentage.
type Product struct {
	ID       string   `json:"id"`
	Category Category `json:"type"`
	Name     string   `json:"name"`
	Price    int      `json:"price"`
	Discount int      `json:"discount"`
	ImageURL string   `json:"imageUrl"`
	Age      int      `json:"age"`
	Snippet  string   `json:"snippet,omitempty"`
	Screen   string   `json:"screen,omitempty"`
	Capacity string   `json:"capacity,omitempty"`
	RAM      string   `json:"ram,omitempty"`
}

// RealPrice returns the unit price after discount.
func (p Product) RealPrice() decimal.Decimal {
	price := decimal.NewFromInt(int64(p.Price))
	if p.Discount <= 0 {
		return price
	}
	off := price.Mul(decimal.NewFromInt(int64(p.Discount))).Div(decimal.NewFromInt(100))
	return price.Sub(off)
}

// Sort orders product listings.
type Sort string

const (
	SortAge   Sort = "age"
	SortName  Sort = "name"
	SortPrice Sort = "price"
)

// ParseSort maps a query value to a Sort, defaulting to SortAge.
func ParseSort(s string) (Sort, bool) {
	switch Sort(strings.ToLower(s)) {
	case "", SortAge:
		return SortAge, true
	case SortName:
		return SortName, true
	case SortPrice:
		return SortPrice, true
	}
	return "", false
}

// Query selects a page of products. PerPage <= 0 returns everything.
type Query struct {
	Category Category
	Sort     Sort
	Page     int
	PerPage  int
}

// Repository defines read access to the catalog.
type Repository interface {
	Get(ctx context.Context, id string) (Product, error)
	List(ctx context.Context, q Query) (products []Product, total int, err error)
}

// ErrNotFound indicates the requested product does not exist.
var ErrNotFound = errors.New("product not found")

// SortProducts orders products in place. Ties are broken by id.
func SortProducts(products []Product, by Sort) {
	less := func(a, b Product) bool { return a.Age < b.Age }
	switch by {
	case SortName:
		less = func(a, b Product) bool { return a.Name < b.Name }
	case SortPrice:
		less = func(a, b Product) bool { return a.RealPrice().LessThan(b.RealPrice()) }
	}
	sort.SliceStable(products, func(i, j int) bool {
		if less(products[i], products[j]) {
			return true
		}
		if less(products[j], products[i]) {
			return false
		}
		return products[i].ID < products[j].ID
	})
}

// Paginate returns page q.Page (1-based) of products.
func Paginate(products []Product, q Query) []Product {
	if q.PerPage <= 0 {
		return products
	}
	page := q.Page
	if page < 1 {
		page = 1
	}
	start := (page - 1) * q.PerPage
	if start >= len(products) {
		return []Product{}
	}
	end := start + q.PerPage
	if end > len(products) {
		end = len(products)
	}
	return products[start:end]
}
