package api

import (
	"encoding/json"
	"fmt"
	"sort"

	"github.com/shopspring/decimal"

	"storefront/pkg/cart"
	"storefront/pkg/catalog"
	"storefront/pkg/shop"
)

// EmptyCartMessage is shown in place of the cart lines when there are none.
const EmptyCartMessage = "Products not found"

const homeSectionSize = 4

func money(d decimal.Decimal) json.Number {
	return json.Number(d.String())
}

type productView struct {
	catalog.Product
	RealPrice    json.Number `json:"realPrice"`
	InCart       bool        `json:"inCart"`
	InFavourites bool        `json:"inFavourites"`
}

func newProductView(p catalog.Product, sess *shop.Session) productView {
	return productView{
		Product:      p,
		RealPrice:    money(p.RealPrice()),
		InCart:       sess.Cart().Contains(p.ID),
		InFavourites: sess.Favourites().Contains(p.ID),
	}
}

func newProductViews(products []catalog.Product, sess *shop.Session) []productView {
	out := make([]productView, 0, len(products))
	for _, p := range products {
		out = append(out, newProductView(p, sess))
	}
	return out
}

type productListView struct {
	Category catalog.Category `json:"category"`
	Sort     catalog.Sort     `json:"sort"`
	Page     int              `json:"page"`
	PerPage  int              `json:"perPage"`
	Total    int              `json:"total"`
	Products []productView    `json:"products"`
}

type categoryView struct {
	Category catalog.Category `json:"category"`
	Path     string           `json:"path"`
	Count    int              `json:"count"`
}

type homeView struct {
	Categories      []categoryView `json:"categories"`
	HotPrices       []productView  `json:"hotPrices"`
	BrandNew        []productView  `json:"brandNew"`
	CartQuantity    int            `json:"cartQuantity"`
	FavouritesCount int            `json:"favouritesCount"`
}

func newHomeView(all []catalog.Product, sess *shop.Session) homeView {
	counts := make(map[catalog.Category]int)
	var hot []catalog.Product
	for _, p := range all {
		counts[p.Category]++
		if p.Discount > 0 {
			hot = append(hot, p)
		}
	}

	cats := make([]categoryView, 0, len(catalog.Categories))
	for _, c := range catalog.Categories {
		cats = append(cats, categoryView{Category: c, Path: "/" + c.Path(), Count: counts[c]})
	}

	saving := func(p catalog.Product) decimal.Decimal {
		return decimal.NewFromInt(int64(p.Price)).Sub(p.RealPrice())
	}
	sort.SliceStable(hot, func(i, j int) bool { return saving(hot[i]).GreaterThan(saving(hot[j])) })

	newest := append([]catalog.Product(nil), all...)
	catalog.SortProducts(newest, catalog.SortAge)

	return homeView{
		Categories:      cats,
		HotPrices:       newProductViews(head(hot, homeSectionSize), sess),
		BrandNew:        newProductViews(head(newest, homeSectionSize), sess),
		CartQuantity:    sess.Cart().Quantity(),
		FavouritesCount: sess.Favourites().Len(),
	}
}

func head(products []catalog.Product, n int) []catalog.Product {
	if len(products) > n {
		return products[:n]
	}
	return products
}

type cartLineView struct {
	Index        int             `json:"index"`
	Item         catalog.Product `json:"item"`
	Quantity     int             `json:"quantity"`
	RealPrice    json.Number     `json:"realPrice"`
	Cost         json.Number     `json:"cost"`
	Loading      bool            `json:"loading"`
	CanDecrement bool            `json:"canDecrement"`
	CanIncrement bool            `json:"canIncrement"`
}

type cartView struct {
	Items         []cartLineView `json:"items"`
	TotalCost     json.Number    `json:"totalCost"`
	TotalQuantity int            `json:"totalQuantity"`
	Label         string         `json:"label"`
	LoadingIndex  *int           `json:"loadingIndex"`
	Message       string         `json:"message,omitempty"`
}

func newCartView(sess *shop.Session) cartView {
	snap := sess.Cart().Snapshot()
	loading := make(map[int]bool, len(snap.Loading))
	for _, i := range snap.Loading {
		loading[i] = true
	}

	v := cartView{
		Items:         make([]cartLineView, 0, len(snap.Items)),
		TotalCost:     money(snap.Cost),
		TotalQuantity: snap.Quantity,
	}
	for i, it := range snap.Items {
		v.Items = append(v.Items, cartLineView{
			Index:        i,
			Item:         it.Item,
			Quantity:     it.Quantity,
			RealPrice:    money(it.Item.RealPrice()),
			Cost:         money(it.Cost()),
			Loading:      loading[i],
			CanDecrement: it.Quantity > cart.MinQuantity,
			CanIncrement: it.Quantity < cart.MaxQuantity,
		})
	}
	if i := snap.LoadingIndex; i >= 0 {
		v.LoadingIndex = &i
	}

	noun := "items"
	if v.TotalQuantity == 1 {
		noun = "item"
	}
	v.Label = fmt.Sprintf("Total for %d %s", v.TotalQuantity, noun)
	if len(snap.Items) == 0 {
		v.Message = EmptyCartMessage
	}
	return v
}

type removalView struct {
	Index     int    `json:"index"`
	ProductID string `json:"productId"`
	State     string `json:"state"`
}
