package models

// Direction classifies a price observation against the previous one.
type Direction string

const (
	DirectionNew       Direction = "new"
	DirectionUp        Direction = "up"
	DirectionDown      Direction = "down"
	DirectionUnchanged Direction = "unchanged"
)

// PriceChange describes one notification-worthy event for a product.
type PriceChange struct {
	Product   Product
	OldPrice  *float64 // nil on first observation
	NewPrice  float64
	Pct       float64 // |new-old|/old, 0 for first observations
	Direction Direction
}

// RunSummary accumulates counters over one monitoring run.
type RunSummary struct {
	Synced  int // catalog rows upserted
	Skipped int // catalog rows that failed to upsert
	Added   int // products created by this sync
	Checked int // products with a recorded price this run
	Changed int // products that triggered a notification
	Failed  int // products skipped due to scrape or store errors
}
