// Package postgres implements the catalog repository on PostgreSQL.
package postgres

import (
	"context"
	"database/sql"
	"fmt"

	"storefront/pkg/catalog"
)

// Schema creates the products table.
const Schema = `CREATE TABLE IF NOT EXISTS products (
	id TEXT PRIMARY KEY,
	category TEXT NOT NULL,
	name TEXT NOT NULL,
	price INT NOT NULL,
	discount INT NOT NULL DEFAULT 0,
	image_url TEXT NOT NULL,
	age INT NOT NULL DEFAULT 0,
	snippet TEXT NOT NULL DEFAULT '',
	screen TEXT NOT NULL DEFAULT '',
	capacity TEXT NOT NULL DEFAULT '',
	ram TEXT NOT NULL DEFAULT ''
)`

const columns = "id,category,name,price,discount,image_url,age,snippet,screen,capacity,ram"

var orderBy = map[catalog.Sort]string{
	catalog.SortAge:   "age",
	catalog.SortName:  "name",
	catalog.SortPrice: "price*(100-discount)",
}

// Repository reads the catalog from PostgreSQL.
type Repository struct {
	db *sql.DB
}

// New creates a PostgreSQL repository.
func New(db *sql.DB) *Repository {
	return &Repository{db: db}
}

// Migrate creates the products table if needed.
func (r *Repository) Migrate(ctx context.Context) error {
	_, err := r.db.ExecContext(ctx, Schema)
	return err
}

// Seed upserts products in a single transaction.
func (r *Repository) Seed(ctx context.Context, products []catalog.Product) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareContext(ctx, `INSERT INTO products (`+columns+`)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11)
		ON CONFLICT (id) DO UPDATE SET category=$2, name=$3, price=$4, discount=$5,
		image_url=$6, age=$7, snippet=$8, screen=$9, capacity=$10, ram=$11`)
	if err != nil {
		return err
	}
	defer stmt.Close()

	for _, p := range products {
		if _, err := stmt.ExecContext(ctx, p.ID, string(p.Category), p.Name, p.Price, p.Discount,
			p.ImageURL, p.Age, p.Snippet, p.Screen, p.Capacity, p.RAM); err != nil {
			return fmt.Errorf("seeding %s: %w", p.ID, err)
		}
	}
	return tx.Commit()
}

// Get retrieves a product by ID.
func (r *Repository) Get(ctx context.Context, id string) (catalog.Product, error) {
	row := r.db.QueryRowContext(ctx, "SELECT "+columns+" FROM products WHERE id=$1", id)
	p, err := scan(row)
	if err == sql.ErrNoRows {
		return catalog.Product{}, catalog.ErrNotFound
	}
	return p, err
}

// List fetches a sorted page of products and the unpaged total.
func (r *Repository) List(ctx context.Context, q catalog.Query) ([]catalog.Product, int, error) {
	var total int
	if err := r.db.QueryRowContext(ctx,
		"SELECT COUNT(*) FROM products WHERE ($1='' OR category=$1)", string(q.Category)).Scan(&total); err != nil {
		return nil, 0, err
	}

	order, ok := orderBy[q.Sort]
	if !ok {
		order = orderBy[catalog.SortAge]
	}
	query := "SELECT " + columns + " FROM products WHERE ($1='' OR category=$1) ORDER BY " + order + ", id"
	args := []any{string(q.Category)}
	if q.PerPage > 0 {
		page := q.Page
		if page < 1 {
			page = 1
		}
		query += " LIMIT $2 OFFSET $3"
		args = append(args, q.PerPage, (page-1)*q.PerPage)
	}

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()
	products := []catalog.Product{}
	for rows.Next() {
		p, err := scan(rows)
		if err != nil {
			return nil, 0, err
		}
		products = append(products, p)
	}
	return products, total, rows.Err()
}

type scanner interface {
	Scan(dest ...any) error
}

func scan(s scanner) (catalog.Product, error) {
	var (
		p        catalog.Product
		category string
	)
	err := s.Scan(&p.ID, &category, &p.Name, &p.Price, &p.Discount, &p.ImageURL,
		&p.Age, &p.Snippet, &p.Screen, &p.Capacity, &p.RAM)
	p.Category = catalog.Category(category)
	return p, err
}
