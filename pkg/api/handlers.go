package api

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"

	"storefront/pkg/cart"
	"storefront/pkg/catalog"
	"storefront/pkg/order"
	"storefront/pkg/otel"
)

// productRequest identifies a catalog product.
type productRequest struct {
	ProductID string `json:"productId"`
}

// updateRequest sets the quantity of a cart line.
type updateRequest struct {
	ProductID string `json:"productId"`
	Quantity  int    `json:"quantity"`
}

// homeHandler renders the landing page summary.
// @Summary Home
// @Produce json
// @Success 200 {object} homeView
// @Router / [get]
func (s *Server) homeHandler(w http.ResponseWriter, r *http.Request) {
	ctx, span := otel.AddSpan(r.Context(), "homeHandler")
	defer span.End()

	all, _, err := s.catalog.List(ctx, catalog.Query{})
	if err != nil {
		s.fail(ctx, w, "list catalog", err)
		return
	}
	writeJSON(w, http.StatusOK, newHomeView(all, sessionFrom(ctx)))
}

// listProductsHandler lists one category.
// @Summary List products
// @Produce json
// @Param category path string true "phones, tablets or accessories"
// @Param sort query string false "age, name or price"
// @Param page query int false "1-based page"
// @Param perPage query int false "page size, 0 for all"
// @Success 200 {object} productListView
// @Router /{category} [get]
func (s *Server) listProductsHandler(w http.ResponseWriter, r *http.Request) {
	ctx, span := otel.AddSpan(r.Context(), "listProductsHandler")
	defer span.End()

	category, _ := catalog.ParseCategory(mux.Vars(r)["category"])
	q := catalog.Query{Category: category}

	var ok bool
	if q.Sort, ok = catalog.ParseSort(r.URL.Query().Get("sort")); !ok {
		http.Error(w, "invalid sort", http.StatusBadRequest)
		return
	}
	var err error
	if q.Page, err = queryInt(r, "page", 1); err != nil || q.Page < 1 {
		http.Error(w, "invalid page", http.StatusBadRequest)
		return
	}
	if q.PerPage, err = queryInt(r, "perPage", 0); err != nil || q.PerPage < 0 {
		http.Error(w, "invalid perPage", http.StatusBadRequest)
		return
	}

	products, total, err := s.catalog.List(ctx, q)
	if err != nil {
		s.fail(ctx, w, "list products", err)
		return
	}
	writeJSON(w, http.StatusOK, productListView{
		Category: category,
		Sort:     q.Sort,
		Page:     q.Page,
		PerPage:  q.PerPage,
		Total:    total,
		Products: newProductViews(products, sessionFrom(ctx)),
	})
}

// productDetailsHandler retrieves a product by ID.
// @Summary Product details
// @Produce json
// @Param category path string true "phones, tablets or accessories"
// @Param id path string true "Product ID"
// @Success 200 {object} productView
// @Router /{category}/{id} [get]
func (s *Server) productDetailsHandler(w http.ResponseWriter, r *http.Request) {
	ctx, span := otel.AddSpan(r.Context(), "productDetailsHandler")
	defer span.End()

	vars := mux.Vars(r)
	category, _ := catalog.ParseCategory(vars["category"])
	p, err := s.catalog.Get(ctx, vars["id"])
	if err == nil && p.Category != category {
		err = catalog.ErrNotFound
	}
	if err != nil {
		s.fail(ctx, w, "get product", err)
		return
	}
	writeJSON(w, http.StatusOK, newProductView(p, sessionFrom(ctx)))
}

// listFavouritesHandler lists the session's favourites.
// @Summary List favourites
// @Produce json
// @Success 200 {array} productView
// @Router /favourites [get]
func (s *Server) listFavouritesHandler(w http.ResponseWriter, r *http.Request) {
	ctx, span := otel.AddSpan(r.Context(), "listFavouritesHandler")
	defer span.End()

	sess := sessionFrom(ctx)
	writeJSON(w, http.StatusOK, newProductViews(sess.Favourites().List(), sess))
}

// addFavouriteHandler adds a product to the favourites.
// @Summary Add favourite
// @Accept json
// @Produce json
// @Param product body productRequest true "Product"
// @Success 201 {object} productView
// @Router /favourites [post]
func (s *Server) addFavouriteHandler(w http.ResponseWriter, r *http.Request) {
	ctx, span := otel.AddSpan(r.Context(), "addFavouriteHandler")
	defer span.End()

	var req productRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.ProductID == "" {
		http.Error(w, "invalid product", http.StatusBadRequest)
		return
	}
	p, err := s.catalog.Get(ctx, req.ProductID)
	if err != nil {
		s.fail(ctx, w, "get product", err)
		return
	}
	sess := sessionFrom(ctx)
	if err := sess.Favourites().Add(ctx, p); err != nil {
		s.fail(ctx, w, "add favourite", err)
		return
	}
	writeJSON(w, http.StatusCreated, newProductView(p, sess))
}

// removeFavouriteHandler removes a product from the favourites.
// @Summary Remove favourite
// @Param id path string true "Product ID"
// @Success 204
// @Router /favourites/{id} [delete]
func (s *Server) removeFavouriteHandler(w http.ResponseWriter, r *http.Request) {
	ctx, span := otel.AddSpan(r.Context(), "removeFavouriteHandler")
	defer span.End()

	if err := sessionFrom(ctx).Favourites().Remove(ctx, mux.Vars(r)["id"]); err != nil {
		s.fail(ctx, w, "remove favourite", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// getCartHandler renders the cart.
// @Summary Get cart
// @Produce json
// @Success 200 {object} cartView
// @Router /cart [get]
func (s *Server) getCartHandler(w http.ResponseWriter, r *http.Request) {
	ctx, span := otel.AddSpan(r.Context(), "getCartHandler")
	defer span.End()

	writeJSON(w, http.StatusOK, newCartView(sessionFrom(ctx)))
}

// addToCartHandler adds one of a product to the cart.
// @Summary Add to cart
// @Accept json
// @Produce json
// @Param product body productRequest true "Product"
// @Success 201 {object} cartView
// @Router /cart [post]
func (s *Server) addToCartHandler(w http.ResponseWriter, r *http.Request) {
	ctx, span := otel.AddSpan(r.Context(), "addToCartHandler")
	defer span.End()

	var req productRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.ProductID == "" {
		http.Error(w, "invalid product", http.StatusBadRequest)
		return
	}
	p, err := s.catalog.Get(ctx, req.ProductID)
	if err != nil {
		s.fail(ctx, w, "get product", err)
		return
	}
	sess := sessionFrom(ctx)
	if err := sess.Cart().Add(ctx, p); err != nil {
		s.fail(ctx, w, "add to cart", err)
		return
	}
	writeJSON(w, http.StatusCreated, newCartView(sess))
}

// updateCartHandler sets the quantity of a cart line.
// @Summary Update cart line
// @Accept json
// @Produce json
// @Param index path int true "Line index"
// @Param line body updateRequest true "Quantity"
// @Success 200 {object} cartView
// @Router /cart/{index} [put]
func (s *Server) updateCartHandler(w http.ResponseWriter, r *http.Request) {
	ctx, span := otel.AddSpan(r.Context(), "updateCartHandler")
	defer span.End()

	index, _ := strconv.Atoi(mux.Vars(r)["index"])
	var req updateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.ProductID == "" {
		http.Error(w, "invalid line", http.StatusBadRequest)
		return
	}
	p, err := s.catalog.Get(ctx, req.ProductID)
	if err != nil {
		s.fail(ctx, w, "get product", err)
		return
	}
	sess := sessionFrom(ctx)
	if err := sess.Cart().Update(ctx, index, req.Quantity, cart.LineItem{Item: p}); err != nil {
		s.fail(ctx, w, "update cart", err)
		return
	}
	writeJSON(w, http.StatusOK, newCartView(sess))
}

// removeFromCartHandler schedules removal of a cart line.
// @Summary Remove cart line
// @Description The line is shown as loading and removed after a short delay.
// @Produce json
// @Param index path int true "Line index"
// @Success 202 {object} removalView
// @Router /cart/{index} [delete]
func (s *Server) removeFromCartHandler(w http.ResponseWriter, r *http.Request) {
	ctx, span := otel.AddSpan(r.Context(), "removeFromCartHandler")
	defer span.End()

	index, _ := strconv.Atoi(mux.Vars(r)["index"])
	rm, err := sessionFrom(ctx).Cart().Remove(ctx, index)
	if err != nil {
		s.fail(ctx, w, "remove from cart", err)
		return
	}
	writeJSON(w, http.StatusAccepted, removalView{Index: index, ProductID: rm.ProductID(), State: rm.State().String()})
}

// cancelRemovalHandler cancels a pending removal.
// @Summary Cancel cart line removal
// @Param index path int true "Line index"
// @Success 204
// @Failure 404
// @Router /cart/{index}/removal [delete]
func (s *Server) cancelRemovalHandler(w http.ResponseWriter, r *http.Request) {
	ctx, span := otel.AddSpan(r.Context(), "cancelRemovalHandler")
	defer span.End()

	index, _ := strconv.Atoi(mux.Vars(r)["index"])
	if !sessionFrom(ctx).Cart().Cancel(index) {
		http.Error(w, "no pending removal", http.StatusNotFound)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// checkoutHandler turns the cart into an order.
// @Summary Checkout
// @Produce json
// @Success 201 {object} order.Order
// @Failure 409
// @Router /cart/checkout [post]
func (s *Server) checkoutHandler(w http.ResponseWriter, r *http.Request) {
	ctx, span := otel.AddSpan(r.Context(), "checkoutHandler")
	defer span.End()

	o, err := sessionFrom(ctx).Checkout(ctx, s.orders)
	if err != nil {
		s.fail(ctx, w, "checkout", err)
		return
	}
	s.log.Info(ctx, "order created", "order", o.ID, "total", o.Total.String())
	writeJSON(w, http.StatusCreated, o)
}

// listOrdersHandler lists the session's orders.
// @Summary List orders
// @Produce json
// @Success 200 {array} order.Order
// @Router /orders [get]
func (s *Server) listOrdersHandler(w http.ResponseWriter, r *http.Request) {
	ctx, span := otel.AddSpan(r.Context(), "listOrdersHandler")
	defer span.End()

	orders, err := s.orders.List(ctx, sessionFrom(ctx).ID())
	if err != nil {
		s.fail(ctx, w, "list orders", err)
		return
	}
	writeJSON(w, http.StatusOK, orders)
}

// getOrderHandler retrieves one of the session's orders.
// @Summary Get order
// @Produce json
// @Param id path string true "Order ID"
// @Success 200 {object} order.Order
// @Router /orders/{id} [get]
func (s *Server) getOrderHandler(w http.ResponseWriter, r *http.Request) {
	ctx, span := otel.AddSpan(r.Context(), "getOrderHandler")
	defer span.End()

	o, err := s.orders.Get(ctx, mux.Vars(r)["id"])
	if err == nil && o.SessionID != sessionFrom(ctx).ID() {
		err = order.ErrNotFound
	}
	if err != nil {
		s.fail(ctx, w, "get order", err)
		return
	}
	writeJSON(w, http.StatusOK, o)
}

func queryInt(r *http.Request, key string, def int) (int, error) {
	v := r.URL.Query().Get(key)
	if v == "" {
		return def, nil
	}
	return strconv.Atoi(v)
}
