package api

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/cookiejar"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/trace/noop"

	"storefront/pkg/catalog"
	catalogmem "storefront/pkg/catalog/memory"
	"storefront/pkg/kvstore/memory"
	"storefront/pkg/logger"
	"storefront/pkg/order"
	ordermem "storefront/pkg/order/memory"
	"storefront/pkg/shop"
)

const removalDelay = 20 * time.Millisecond

var testProducts = []catalog.Product{
	{ID: "phone-100", Category: catalog.Phone, Name: "Phone 100", Price: 100, Age: 2},
	{ID: "phone-cheap", Category: catalog.Phone, Name: "Cheap Phone", Price: 50, Discount: 10, Age: 1},
	{ID: "tablet-200", Category: catalog.Tablet, Name: "Tablet 200", Price: 200, Discount: 50, Age: 0},
	{ID: "case", Category: catalog.Accessory, Name: "Case", Price: 10, Age: 5},
}

type client struct {
	t    *testing.T
	base string
	http *http.Client
}

func newClient(t *testing.T) *client {
	t.Helper()
	reg := shop.NewRegistry(memory.New(), shop.Options{RemovalDelay: removalDelay})
	t.Cleanup(reg.Close)
	srv := New(catalogmem.New(testProducts), ordermem.New(), reg, logger.NewNop(), noop.NewTracerProvider().Tracer("test"), Config{})
	ts := httptest.NewServer(srv)
	t.Cleanup(ts.Close)

	jar, err := cookiejar.New(nil)
	require.NoError(t, err)
	return &client{t: t, base: ts.URL, http: &http.Client{
		Jar: jar,
		CheckRedirect: func(*http.Request, []*http.Request) error {
			return http.ErrUseLastResponse
		},
	}}
}

func (c *client) do(method, path string, body any, out any) int {
	c.t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(c.t, json.NewEncoder(&buf).Encode(body))
	}
	req, err := http.NewRequest(method, c.base+path, &buf)
	require.NoError(c.t, err)
	resp, err := c.http.Do(req)
	require.NoError(c.t, err)
	defer resp.Body.Close()
	if out != nil && resp.StatusCode < 300 {
		require.NoError(c.t, json.NewDecoder(resp.Body).Decode(out))
	}
	return resp.StatusCode
}

func (c *client) cart() cartView {
	c.t.Helper()
	var v cartView
	require.Equal(c.t, http.StatusOK, c.do(http.MethodGet, "/cart", nil, &v))
	return v
}

func TestEmptyCart(t *testing.T) {
	c := newClient(t)
	v := c.cart()
	assert.Equal(t, json.Number("0"), v.TotalCost)
	assert.Equal(t, 0, v.TotalQuantity)
	assert.Equal(t, EmptyCartMessage, v.Message)
	assert.Empty(t, v.Items)
	assert.Nil(t, v.LoadingIndex)
}

func TestCartCost(t *testing.T) {
	c := newClient(t)
	require.Equal(t, http.StatusCreated, c.do(http.MethodPost, "/cart", productRequest{ProductID: "phone-100"}, nil))
	v := c.cart()
	assert.Equal(t, json.Number("100"), v.TotalCost)
	assert.Equal(t, "Total for 1 item", v.Label)
	assert.Empty(t, v.Message)

	c = newClient(t)
	require.Equal(t, http.StatusCreated, c.do(http.MethodPost, "/cart", productRequest{ProductID: "tablet-200"}, nil))
	require.Equal(t, http.StatusOK, c.do(http.MethodPut, "/cart/0", updateRequest{ProductID: "tablet-200", Quantity: 2}, nil))
	v = c.cart()
	assert.Equal(t, json.Number("200"), v.TotalCost)
	assert.Equal(t, 2, v.TotalQuantity)
	assert.Equal(t, "Total for 2 items", v.Label)
	assert.True(t, v.Items[0].CanDecrement)
	assert.True(t, v.Items[0].CanIncrement)
}

func TestCartUpdateValidation(t *testing.T) {
	c := newClient(t)
	require.Equal(t, http.StatusCreated, c.do(http.MethodPost, "/cart", productRequest{ProductID: "phone-100"}, nil))

	assert.Equal(t, http.StatusBadRequest, c.do(http.MethodPut, "/cart/0", updateRequest{ProductID: "phone-100", Quantity: 6}, nil))
	assert.Equal(t, http.StatusBadRequest, c.do(http.MethodPut, "/cart/0", updateRequest{ProductID: "case", Quantity: 2}, nil))
	assert.Equal(t, http.StatusNotFound, c.do(http.MethodPut, "/cart/3", updateRequest{ProductID: "phone-100", Quantity: 2}, nil))
	assert.Equal(t, http.StatusNotFound, c.do(http.MethodPost, "/cart", productRequest{ProductID: "nope"}, nil))
	assert.Equal(t, http.StatusNotFound, c.do(http.MethodDelete, "/cart/9", nil, nil))
	assert.Equal(t, 1, c.cart().TotalQuantity)
}

func TestDeferredRemoval(t *testing.T) {
	c := newClient(t)
	require.Equal(t, http.StatusCreated, c.do(http.MethodPost, "/cart", productRequest{ProductID: "phone-100"}, nil))
	require.Equal(t, http.StatusCreated, c.do(http.MethodPost, "/cart", productRequest{ProductID: "tablet-200"}, nil))

	var rm removalView
	require.Equal(t, http.StatusAccepted, c.do(http.MethodDelete, "/cart/0", nil, &rm))
	assert.Equal(t, "phone-100", rm.ProductID)
	assert.Equal(t, "pending", rm.State)

	v := c.cart()
	require.Len(t, v.Items, 2)
	assert.True(t, v.Items[0].Loading)
	require.NotNil(t, v.LoadingIndex)
	assert.Equal(t, 0, *v.LoadingIndex)

	require.Eventually(t, func() bool { return len(c.cart().Items) == 1 }, time.Second, 5*time.Millisecond)
	v = c.cart()
	assert.Equal(t, "tablet-200", v.Items[0].Item.ID)
	assert.Nil(t, v.LoadingIndex)
}

func TestCancelRemoval(t *testing.T) {
	c := newClient(t)
	require.Equal(t, http.StatusCreated, c.do(http.MethodPost, "/cart", productRequest{ProductID: "phone-100"}, nil))
	assert.Equal(t, http.StatusNotFound, c.do(http.MethodDelete, "/cart/0/removal", nil, nil))

	reg := shop.NewRegistry(memory.New(), shop.Options{RemovalDelay: time.Hour})
	t.Cleanup(reg.Close)
	srv := New(catalogmem.New(testProducts), ordermem.New(), reg, logger.NewNop(), noop.NewTracerProvider().Tracer("test"), Config{})
	ts := httptest.NewServer(srv)
	t.Cleanup(ts.Close)
	c.base = ts.URL

	require.Equal(t, http.StatusCreated, c.do(http.MethodPost, "/cart", productRequest{ProductID: "phone-100"}, nil))
	require.Equal(t, http.StatusAccepted, c.do(http.MethodDelete, "/cart/0", nil, nil))
	require.Equal(t, http.StatusNoContent, c.do(http.MethodDelete, "/cart/0/removal", nil, nil))
	v := c.cart()
	assert.Len(t, v.Items, 1)
	assert.False(t, v.Items[0].Loading)
}

func TestFavourites(t *testing.T) {
	c := newClient(t)
	require.Equal(t, http.StatusCreated, c.do(http.MethodPost, "/favourites", productRequest{ProductID: "case"}, nil))
	require.Equal(t, http.StatusCreated, c.do(http.MethodPost, "/favourites", productRequest{ProductID: "case"}, nil))

	var list []productView
	require.Equal(t, http.StatusOK, c.do(http.MethodGet, "/favourites", nil, &list))
	require.Len(t, list, 1)
	assert.True(t, list[0].InFavourites)

	var p productView
	require.Equal(t, http.StatusOK, c.do(http.MethodGet, "/accessories/case", nil, &p))
	assert.True(t, p.InFavourites)
	assert.False(t, p.InCart)

	require.Equal(t, http.StatusNoContent, c.do(http.MethodDelete, "/favourites/case", nil, nil))
	require.Equal(t, http.StatusOK, c.do(http.MethodGet, "/favourites", nil, &list))
	assert.Empty(t, list)
}

func TestProducts(t *testing.T) {
	c := newClient(t)
	require.Equal(t, http.StatusCreated, c.do(http.MethodPost, "/cart", productRequest{ProductID: "phone-cheap"}, nil))

	var list productListView
	require.Equal(t, http.StatusOK, c.do(http.MethodGet, "/phones?sort=price", nil, &list))
	assert.Equal(t, catalog.Phone, list.Category)
	assert.Equal(t, 2, list.Total)
	require.Len(t, list.Products, 2)
	assert.Equal(t, "phone-cheap", list.Products[0].ID)
	assert.Equal(t, json.Number("45"), list.Products[0].RealPrice)
	assert.True(t, list.Products[0].InCart)

	require.Equal(t, http.StatusOK, c.do(http.MethodGet, "/phones?perPage=1&page=2&sort=age", nil, &list))
	require.Len(t, list.Products, 1)
	assert.Equal(t, "phone-100", list.Products[0].ID)

	assert.Equal(t, http.StatusBadRequest, c.do(http.MethodGet, "/phones?sort=colour", nil, nil))
	assert.Equal(t, http.StatusNotFound, c.do(http.MethodGet, "/tablets/phone-100", nil, nil))
	assert.Equal(t, http.StatusNotFound, c.do(http.MethodGet, "/laptops", nil, nil))
}

func TestHome(t *testing.T) {
	c := newClient(t)
	require.Equal(t, http.StatusCreated, c.do(http.MethodPost, "/cart", productRequest{ProductID: "case"}, nil))

	var home homeView
	require.Equal(t, http.StatusOK, c.do(http.MethodGet, "/", nil, &home))
	require.Len(t, home.Categories, 3)
	assert.Equal(t, 2, home.Categories[0].Count)
	assert.Equal(t, "/accessories", home.Categories[2].Path)
	require.Len(t, home.HotPrices, 2)
	assert.Equal(t, "tablet-200", home.HotPrices[0].ID)
	assert.Equal(t, "tablet-200", home.BrandNew[0].ID)
	assert.Equal(t, 1, home.CartQuantity)

	assert.Equal(t, http.StatusMovedPermanently, c.do(http.MethodGet, "/home", nil, nil))
}

func TestCheckout(t *testing.T) {
	c := newClient(t)
	assert.Equal(t, http.StatusConflict, c.do(http.MethodPost, "/cart/checkout", nil, nil))

	require.Equal(t, http.StatusCreated, c.do(http.MethodPost, "/cart", productRequest{ProductID: "phone-100"}, nil))
	require.Equal(t, http.StatusCreated, c.do(http.MethodPost, "/cart", productRequest{ProductID: "tablet-200"}, nil))

	var o order.Order
	require.Equal(t, http.StatusCreated, c.do(http.MethodPost, "/cart/checkout", nil, &o))
	assert.Equal(t, 2, o.Quantity)
	assert.Equal(t, "200", o.Total.String())
	assert.Equal(t, EmptyCartMessage, c.cart().Message)

	var orders []order.Order
	require.Equal(t, http.StatusOK, c.do(http.MethodGet, "/orders", nil, &orders))
	require.Len(t, orders, 1)

	var got order.Order
	require.Equal(t, http.StatusOK, c.do(http.MethodGet, "/orders/"+o.ID, nil, &got))
	assert.Equal(t, o.ID, got.ID)

	other := newClient(t)
	other.base = c.base
	assert.Equal(t, http.StatusNotFound, other.do(http.MethodGet, "/orders/"+o.ID, nil, nil))
}

func TestSessionsAreIsolated(t *testing.T) {
	a := newClient(t)
	require.Equal(t, http.StatusCreated, a.do(http.MethodPost, "/cart", productRequest{ProductID: "case"}, nil))

	b := newClient(t)
	b.base = a.base
	assert.Equal(t, EmptyCartMessage, b.cart().Message)
	assert.Equal(t, 1, a.cart().TotalQuantity)
}

func TestNotFound(t *testing.T) {
	c := newClient(t)
	req, err := http.NewRequest(http.MethodGet, c.base+"/no/such/page", nil)
	require.NoError(t, err)
	resp, err := c.http.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()
	var buf bytes.Buffer
	buf.ReadFrom(resp.Body)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	assert.Contains(t, buf.String(), "Page not found")
}
