package models

import "time"

// Product is a tracked catalog item. Identity is the URL (unique); Price is
// the cached value of the most recent history entry, nil before the first
// successful scrape.
type Product struct {
	ID        int64
	Name      string
	URL       string
	Price     *float64
	CreatedAt time.Time
	UpdatedAt time.Time
}

// CatalogEntry is one (name, url) row from the external catalog sheet.
type CatalogEntry struct {
	Name string
	URL  string
}

// PricePoint is a single immutable price observation.
type PricePoint struct {
	Price     float64   `json:"price"`
	ScrapedAt time.Time `json:"scraped_at"`
}

// ProductHistory is the full chronological history of one product.
type ProductHistory struct {
	ID      int64        `json:"id"`
	Name    string       `json:"product_name"`
	Store   string       `json:"store"`
	History []PricePoint `json:"history"`
}

// ItemSummary is the dashboard projection of a product: its latest
// observation against the previous one. PreviousPrice and PercentChange are
// nil when there is no usable previous observation.
type ItemSummary struct {
	ID            int64     `json:"id"`
	Name          string    `json:"product_name"`
	Store         string    `json:"store"`
	CurrentPrice  float64   `json:"current_price"`
	PreviousPrice *float64  `json:"previous_price"`
	PriceChange   float64   `json:"price_change"`
	PercentChange *float64  `json:"percent_change"`
	Direction     Direction `json:"direction"`
	LastUpdated   time.Time `json:"last_updated"`
}
