// Package postgres implements the order repository on PostgreSQL.
package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	"storefront/pkg/order"
)

// Schema creates the orders table.
const Schema = `CREATE TABLE IF NOT EXISTS orders (
	id TEXT PRIMARY KEY,
	session_id TEXT NOT NULL,
	lines JSONB NOT NULL,
	quantity INT NOT NULL,
	total NUMERIC(12,2) NOT NULL,
	created_at TIMESTAMPTZ NOT NULL
)`

// Repository persists orders in PostgreSQL.
type Repository struct {
	db *sql.DB
}

// New creates a PostgreSQL repository.
func New(db *sql.DB) *Repository {
	return &Repository{db: db}
}

// Migrate creates the orders table if needed.
func (r *Repository) Migrate(ctx context.Context) error {
	_, err := r.db.ExecContext(ctx, Schema)
	return err
}

// Create inserts a new order.
func (r *Repository) Create(ctx context.Context, o order.Order) error {
	lines, err := json.Marshal(o.Lines)
	if err != nil {
		return fmt.Errorf("encoding lines: %w", err)
	}
	_, err = r.db.ExecContext(ctx,
		"INSERT INTO orders (id,session_id,lines,quantity,total,created_at) VALUES ($1,$2,$3,$4,$5,$6)",
		o.ID, o.SessionID, lines, o.Quantity, o.Total, o.CreatedAt)
	return err
}

// Get retrieves an order by ID.
func (r *Repository) Get(ctx context.Context, id string) (order.Order, error) {
	row := r.db.QueryRowContext(ctx,
		"SELECT id,session_id,lines,quantity,total,created_at FROM orders WHERE id=$1", id)
	o, err := scan(row)
	if err == sql.ErrNoRows {
		return order.Order{}, order.ErrNotFound
	}
	return o, err
}

// List fetches a session's orders, oldest first.
func (r *Repository) List(ctx context.Context, sessionID string) ([]order.Order, error) {
	rows, err := r.db.QueryContext(ctx,
		"SELECT id,session_id,lines,quantity,total,created_at FROM orders WHERE session_id=$1 ORDER BY created_at, id", sessionID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	orders := []order.Order{}
	for rows.Next() {
		o, err := scan(rows)
		if err != nil {
			return nil, err
		}
		orders = append(orders, o)
	}
	return orders, rows.Err()
}

type scanner interface {
	Scan(dest ...any) error
}

func scan(s scanner) (order.Order, error) {
	var (
		o     order.Order
		lines []byte
	)
	if err := s.Scan(&o.ID, &o.SessionID, &lines, &o.Quantity, &o.Total, &o.CreatedAt); err != nil {
		return order.Order{}, err
	}
	if err := json.Unmarshal(lines, &o.Lines); err != nil {
		return order.Order{}, fmt.Errorf("decoding lines of %s: %w", o.ID, err)
	}
	return o, nil
}
