package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/Houeta/price-sentinel/internal/models"
	"github.com/Houeta/price-sentinel/internal/repository"
)

// LatestPrice returns the price of the most recent history entry for the
// product. The boolean result is false when the product has no history yet.
func (r *Repository) LatestPrice(ctx context.Context, productID int64) (float64, bool, error) {
	const opn = "repository.postgres.LatestPrice"

	var price float64
	err := r.db.QueryRowContext(ctx,
		`SELECT price FROM price_history
		 WHERE product_id = $1
		 ORDER BY scraped_at DESC, id DESC
		 LIMIT 1`, productID).Scan(&price)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return 0, false, nil
		}
		return 0, false, fmt.Errorf("%s: failed to get latest price for product %d: %w", opn, productID, err)
	}

	return price, true, nil
}

// RecordPrice appends a price_history entry and refreshes the cached
// products.price in one transaction, so the cached value can never drift
// from the newest history row.
func (r *Repository) RecordPrice(ctx context.Context, productID int64, price float64, scrapedAt time.Time) error {
	const opn = "repository.postgres.RecordPrice"

	tx, err := r.db.BeginTx(ctx, nil) //nolint:varnamelen // tx its a default naming for transaction
	if err != nil {
		return fmt.Errorf("%s: failed to begin transaction: %w", opn, err)
	}
	defer tx.Rollback() //nolint:errcheck // rollback after commit only returns sql.ErrTxDone

	_, err = tx.ExecContext(ctx,
		"INSERT INTO price_history (product_id, price, scraped_at) VALUES ($1, $2, $3)",
		productID, price, scrapedAt)
	if err != nil {
		return fmt.Errorf("%s: failed to insert history entry: %w", opn, err)
	}

	_, err = tx.ExecContext(ctx, "UPDATE products SET price = $1 WHERE id = $2", price, productID)
	if err != nil {
		return fmt.Errorf("%s: failed to update cached price: %w", opn, err)
	}

	if err = tx.Commit(); err != nil {
		return fmt.Errorf("%s: failed to commit transaction: %w", opn, err)
	}

	return nil
}

// ItemSummaries builds the dashboard projection: for every product that has
// at least one observation, the latest price against the previous one.
// Products without history are omitted. Ordered by product name. The Store
// field is left for the caller to fill in.
func (r *Repository) ItemSummaries(ctx context.Context) ([]models.ItemSummary, error) {
	const opn = "repository.postgres.ItemSummaries"

	// rn = 1 is the latest observation, rn = 2 the previous one.
	rows, err := r.db.QueryContext(ctx, `
		SELECT p.id, p.name, h.price, h.scraped_at, h.rn
		FROM products p
		JOIN (
			SELECT product_id, price, scraped_at,
			       ROW_NUMBER() OVER (PARTITION BY product_id ORDER BY scraped_at DESC, id DESC) AS rn
			FROM price_history
		) h ON h.product_id = p.id
		WHERE h.rn <= 2
		ORDER BY p.name, p.id, h.rn`)
	if err != nil {
		return nil, fmt.Errorf("%s: failed to query summaries: %w", opn, err)
	}
	defer rows.Close()

	var summaries []models.ItemSummary
	for rows.Next() {
		var (
			id        int64
			name      string
			price     float64
			scrapedAt time.Time
			rank      int
		)
		if err = rows.Scan(&id, &name, &price, &scrapedAt, &rank); err != nil {
			return nil, fmt.Errorf("%s: failed to scan summary row: %w", opn, err)
		}

		if rank == 1 {
			summaries = append(summaries, models.ItemSummary{
				ID:           id,
				Name:         name,
				CurrentPrice: price,
				Direction:    models.DirectionNew,
				LastUpdated:  scrapedAt,
			})
			continue
		}

		// rn = 2 always follows its product's rn = 1 row.
		last := &summaries[len(summaries)-1]
		previous := price
		last.PreviousPrice = &previous
		last.PriceChange = last.CurrentPrice - previous
		last.Direction = compareDirection(last.CurrentPrice, previous)
		if previous != 0 {
			pct := last.PriceChange / previous * 100
			last.PercentChange = &pct
		}
	}

	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("%s: rows iteration error: %w", opn, err)
	}

	return summaries, nil
}

// ProductHistory returns the full chronological history of one product, or
// repository.ErrProductNotFound when the id does not exist.
func (r *Repository) ProductHistory(ctx context.Context, productID int64) (*models.ProductHistory, error) {
	const opn = "repository.postgres.ProductHistory"

	history := &models.ProductHistory{}
	err := r.db.QueryRowContext(ctx,
		"SELECT id, name FROM products WHERE id = $1", productID).
		Scan(&history.ID, &history.Name)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, repository.ErrProductNotFound
		}
		return nil, fmt.Errorf("%s: failed to get product %d: %w", opn, productID, err)
	}

	rows, err := r.db.QueryContext(ctx,
		`SELECT price, scraped_at FROM price_history
		 WHERE product_id = $1
		 ORDER BY scraped_at ASC, id ASC`, productID)
	if err != nil {
		return nil, fmt.Errorf("%s: failed to get history for product %d: %w", opn, productID, err)
	}
	defer rows.Close()

	for rows.Next() {
		var point models.PricePoint
		if err = rows.Scan(&point.Price, &point.ScrapedAt); err != nil {
			return nil, fmt.Errorf("%s: failed to scan history entry: %w", opn, err)
		}
		history.History = append(history.History, point)
	}

	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("%s: rows iteration error: %w", opn, err)
	}

	return history, nil
}

// compareDirection classifies the latest observation against the previous
// one without applying the notification threshold.
func compareDirection(current, previous float64) models.Direction {
	switch {
	case current > previous:
		return models.DirectionUp
	case current < previous:
		return models.DirectionDown
	default:
		return models.DirectionUnchanged
	}
}
