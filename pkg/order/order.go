// Package order records carts that have been checked out.
package order

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"storefront/pkg/cart"
)

// Line is a cart line frozen at checkout.
type Line struct {
	ProductID string          `json:"productId"`
	Name      string          `json:"name"`
	Quantity  int             `json:"quantity"`
	UnitPrice decimal.Decimal `json:"unitPrice"`
	Cost      decimal.Decimal `json:"cost"`
}

// Order represents a checked-out cart.
type Order struct {
	ID        string          `json:"id"`
	SessionID string          `json:"sessionId"`
	Lines     []Line          `json:"lines"`
	Quantity  int             `json:"quantity"`
	Total     decimal.Decimal `json:"total"`
	CreatedAt time.Time       `json:"createdAt"`
}

// Repository defines behavior for persisting orders.
type Repository interface {
	Create(ctx context.Context, o Order) error
	Get(ctx context.Context, id string) (Order, error)
	List(ctx context.Context, sessionID string) ([]Order, error)
}

// ErrNotFound indicates the requested order does not exist.
var ErrNotFound = errors.New("order not found")

// FromCart prices items into a new order with a fresh id.
func FromCart(sessionID string, items []cart.LineItem, now time.Time) Order {
	o := Order{
		ID:        uuid.NewString(),
		SessionID: sessionID,
		Lines:     make([]Line, 0, len(items)),
		Total:     decimal.Zero,
		CreatedAt: now.UTC(),
	}
	for _, it := range items {
		l := Line{
			ProductID: it.Item.ID,
			Name:      it.Item.Name,
			Quantity:  it.Quantity,
			UnitPrice: it.Item.RealPrice(),
			Cost:      it.Cost(),
		}
		o.Lines = append(o.Lines, l)
		o.Quantity += l.Quantity
		o.Total = o.Total.Add(l.Cost)
	}
	return o
}
