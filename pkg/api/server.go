// Package api exposes the storefront views over HTTP. Each request is bound
// to a browsing session by cookie; the session's cart and favourites are
// shared by every route.
package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/google/uuid"
	"github.com/gorilla/mux"
	httpSwagger "github.com/swaggo/http-swagger"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"storefront/pkg/cart"
	"storefront/pkg/catalog"
	"storefront/pkg/logger"
	"storefront/pkg/order"
	"storefront/pkg/otel"
	"storefront/pkg/shop"
)

// Config controls the session cookie.
type Config struct {
	CookieName   string
	SecureCookie bool
}

// Server routes storefront requests.
type Server struct {
	catalog  catalog.Repository
	orders   order.Repository
	sessions *shop.Registry
	log      *logger.Logger
	tracer   trace.Tracer
	cfg      Config
	router   *mux.Router
}

// New builds a Server and its routes.
func New(cat catalog.Repository, orders order.Repository, sessions *shop.Registry, log *logger.Logger, tracer trace.Tracer, cfg Config) *Server {
	if cfg.CookieName == "" {
		cfg.CookieName = "session_id"
	}
	s := &Server{
		catalog:  cat,
		orders:   orders,
		sessions: sessions,
		log:      log,
		tracer:   tracer,
		cfg:      cfg,
	}
	s.routes()
	return s
}

func (s *Server) routes() {
	r := mux.NewRouter()
	r.Use(s.traceMiddleware, s.sessionMiddleware)

	r.HandleFunc("/", s.homeHandler).Methods(http.MethodGet)
	r.Handle("/home", http.RedirectHandler("/", http.StatusMovedPermanently))

	r.HandleFunc("/favourites", s.listFavouritesHandler).Methods(http.MethodGet)
	r.HandleFunc("/favourites", s.addFavouriteHandler).Methods(http.MethodPost)
	r.HandleFunc("/favourites/{id}", s.removeFavouriteHandler).Methods(http.MethodDelete)

	c := r.PathPrefix("/cart").Subrouter()
	c.HandleFunc("", s.getCartHandler).Methods(http.MethodGet)
	c.HandleFunc("", s.addToCartHandler).Methods(http.MethodPost)
	c.HandleFunc("/checkout", s.checkoutHandler).Methods(http.MethodPost)
	c.HandleFunc("/{index:[0-9]+}", s.updateCartHandler).Methods(http.MethodPut)
	c.HandleFunc("/{index:[0-9]+}", s.removeFromCartHandler).Methods(http.MethodDelete)
	c.HandleFunc("/{index:[0-9]+}/removal", s.cancelRemovalHandler).Methods(http.MethodDelete)

	r.HandleFunc("/orders", s.listOrdersHandler).Methods(http.MethodGet)
	r.HandleFunc("/orders/{id}", s.getOrderHandler).Methods(http.MethodGet)

	r.PathPrefix("/swagger/").Handler(httpSwagger.WrapHandler)

	r.HandleFunc("/{category:phones|tablets|accessories}", s.listProductsHandler).Methods(http.MethodGet)
	r.HandleFunc("/{category:phones|tablets|accessories}/{id}", s.productDetailsHandler).Methods(http.MethodGet)

	r.NotFoundHandler = http.HandlerFunc(notFoundHandler)
	s.router = r
}

// ServeHTTP implements http.Handler.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

type sessionKey struct{}

func sessionFrom(ctx context.Context) *shop.Session {
	return ctx.Value(sessionKey{}).(*shop.Session)
}

// sessionMiddleware attaches the caller's session, issuing a new id when the
// cookie is missing or malformed.
func (s *Server) sessionMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var sid string
		if c, err := r.Cookie(s.cfg.CookieName); err == nil {
			if _, err := uuid.Parse(c.Value); err == nil {
				sid = c.Value
			}
		}
		if sid == "" {
			sid = uuid.NewString()
			http.SetCookie(w, &http.Cookie{
				Name:     s.cfg.CookieName,
				Value:    sid,
				Path:     "/",
				HttpOnly: true,
				Secure:   s.cfg.SecureCookie,
				SameSite: http.SameSiteLaxMode,
			})
		}
		trace.SpanFromContext(r.Context()).SetAttributes(attribute.String("session.id", sid))
		sess := s.sessions.Get(r.Context(), sid)
		ctx := context.WithValue(r.Context(), sessionKey{}, sess)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func (s *Server) traceMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ctx := otel.InjectTracing(r.Context(), s.tracer)
		ctx, span := otel.AddSpan(ctx, r.Method+" "+r.URL.Path)
		defer span.End()
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func notFoundHandler(w http.ResponseWriter, r *http.Request) {
	http.Error(w, "Page not found", http.StatusNotFound)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

// fail maps domain errors to HTTP statuses. Unexpected errors are logged.
func (s *Server) fail(ctx context.Context, w http.ResponseWriter, op string, err error) {
	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, catalog.ErrNotFound),
		errors.Is(err, order.ErrNotFound),
		errors.Is(err, cart.ErrIndexOutOfRange):
		status = http.StatusNotFound
	case errors.Is(err, cart.ErrQuantityOutOfRange),
		errors.Is(err, cart.ErrItemMismatch):
		status = http.StatusBadRequest
	case errors.Is(err, shop.ErrEmptyCart),
		errors.Is(err, shop.ErrRemovalPending):
		status = http.StatusConflict
	}
	if status == http.StatusInternalServerError {
		s.log.Error(ctx, op, "error", err)
		trace.SpanFromContext(ctx).RecordError(err)
	}
	http.Error(w, err.Error(), status)
}
