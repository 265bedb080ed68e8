package postgres

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/Houeta/price-sentinel/internal/models"
)

// UpsertProduct inserts a catalog entry keyed by URL, or refreshes the name
// of the existing row. The boolean result reports whether a new product was
// created. Rerunning with an unchanged catalog never duplicates rows.
func (r *Repository) UpsertProduct(ctx context.Context, name, url string) (models.Product, bool, error) {
	const opn = "repository.postgres.UpsertProduct"

	// xmax = 0 only holds for freshly inserted tuples.
	query := `
		INSERT INTO products (name, url) VALUES ($1, $2)
		ON CONFLICT (url) DO UPDATE SET name = EXCLUDED.name
		RETURNING id, name, url, price, created_at, updated_at, (xmax = 0) AS inserted`

	var (
		product  models.Product
		price    sql.NullFloat64
		inserted bool
	)
	err := r.db.QueryRowContext(ctx, query, name, url).Scan(
		&product.ID, &product.Name, &product.URL, &price,
		&product.CreatedAt, &product.UpdatedAt, &inserted,
	)
	if err != nil {
		return models.Product{}, false, fmt.Errorf("%s: failed to upsert product %s: %w", opn, url, err)
	}

	if price.Valid {
		product.Price = &price.Float64
	}

	return product, inserted, nil
}

// ListProducts returns every tracked product ordered by name.
func (r *Repository) ListProducts(ctx context.Context) ([]models.Product, error) {
	const opn = "repository.postgres.ListProducts"

	rows, err := r.db.QueryContext(ctx,
		"SELECT id, name, url, price, created_at, updated_at FROM products ORDER BY name")
	if err != nil {
		return nil, fmt.Errorf("%s: failed to get products: %w", opn, err)
	}
	defer rows.Close()

	var products []models.Product
	for rows.Next() {
		var (
			product models.Product
			price   sql.NullFloat64
		)
		if err = rows.Scan(&product.ID, &product.Name, &product.URL, &price,
			&product.CreatedAt, &product.UpdatedAt); err != nil {
			return nil, fmt.Errorf("%s: failed to scan product: %w", opn, err)
		}
		if price.Valid {
			product.Price = &price.Float64
		}
		products = append(products, product)
	}

	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("%s: rows iteration error: %w", opn, err)
	}

	return products, nil
}
