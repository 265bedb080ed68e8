package monitor

import (
	"context"
	"fmt"
	"log/slog"
	"math"
	"time"

	"github.com/Houeta/price-sentinel/internal/metrics"
	"github.com/Houeta/price-sentinel/internal/models"
)

// Catalog provides the external list of tracked products.
type Catalog interface {
	Entries(ctx context.Context) ([]models.CatalogEntry, error)
}

// Repository is the persistent store the monitor reads and writes.
type Repository interface {
	UpsertProduct(ctx context.Context, name, url string) (models.Product, bool, error)
	ListProducts(ctx context.Context) ([]models.Product, error)
	LatestPrice(ctx context.Context, productID int64) (float64, bool, error)
	RecordPrice(ctx context.Context, productID int64, price float64, scrapedAt time.Time) error
}

// PriceFetcher extracts the current price from a product page.
type PriceFetcher interface {
	FetchPrice(ctx context.Context, url string) (float64, error)
}

// Notifier delivers best-effort alerts for notable events.
type Notifier interface {
	NotifyNewProduct(ctx context.Context, product models.Product, price float64) error
	NotifyPriceChange(ctx context.Context, change models.PriceChange) error
}

// Monitor is an orchestrator that performs one full monitoring run:
// catalog sync, then a price check of every tracked product.
type Monitor struct {
	log      *slog.Logger
	catalog  Catalog
	repo     Repository
	fetcher  PriceFetcher
	notifier Notifier
	minPct   float64
	now      func() time.Time
}

// NewMonitor creates a new Monitor instance.
func NewMonitor(
	log *slog.Logger,
	catalog Catalog,
	repo Repository,
	fetcher PriceFetcher,
	notifier Notifier,
	minPct float64,
) *Monitor {
	return &Monitor{
		log:      log,
		catalog:  catalog,
		repo:     repo,
		fetcher:  fetcher,
		notifier: notifier,
		minPct:   minPct,
		now:      time.Now,
	}
}

// Run executes the full pipeline. Only catalog- or store-level failures
// return an error; per-product failures are isolated and counted in the
// summary.
func (m *Monitor) Run(ctx context.Context) (*models.RunSummary, error) {
	const opn = "monitor.Run"
	log := m.log.With("op", opn)

	summary := &models.RunSummary{}

	if err := m.syncCatalog(ctx, summary); err != nil {
		return nil, fmt.Errorf("%s: catalog sync failed: %w", opn, err)
	}

	if err := m.checkPrices(ctx, summary); err != nil {
		return nil, fmt.Errorf("%s: price check failed: %w", opn, err)
	}

	log.InfoContext(ctx, "Monitoring run complete",
		"synced", summary.Synced,
		"skipped", summary.Skipped,
		"added", summary.Added,
		"checked", summary.Checked,
		"changed", summary.Changed,
		"failed", summary.Failed,
	)

	return summary, nil
}

// syncCatalog upserts every catalog row into the store. An unreachable
// catalog is fatal; a single row failing to upsert is not.
func (m *Monitor) syncCatalog(ctx context.Context, summary *models.RunSummary) error {
	const opn = "monitor.syncCatalog"
	log := m.log.With("op", opn)

	entries, err := m.catalog.Entries(ctx)
	if err != nil {
		return fmt.Errorf("failed to fetch catalog: %w", err)
	}
	log.InfoContext(ctx, "Fetched catalog", "entries", len(entries))

	for _, entry := range entries {
		product, created, err := m.repo.UpsertProduct(ctx, entry.Name, entry.URL)
		if err != nil {
			log.ErrorContext(ctx, "Failed to upsert product",
				"name", entry.Name, "url", entry.URL, "error", err)
			summary.Skipped++
			continue
		}

		summary.Synced++
		if created {
			summary.Added++
			log.InfoContext(ctx, "Added new product", "name", product.Name, "url", product.URL)
		}
	}

	log.InfoContext(ctx, "Sync complete", "synced", summary.Synced, "skipped", summary.Skipped)

	return nil
}

// checkPrices scrapes every tracked product. Errors for one product never
// prevent processing of the others.
func (m *Monitor) checkPrices(ctx context.Context, summary *models.RunSummary) error {
	const opn = "monitor.checkPrices"
	log := m.log.With("op", opn)

	products, err := m.repo.ListProducts(ctx)
	if err != nil {
		return fmt.Errorf("failed to list products: %w", err)
	}

	if len(products) == 0 {
		log.WarnContext(ctx, "No products found in database")
		return nil
	}

	log.InfoContext(ctx, "Checking prices", "count", len(products))

	for _, product := range products {
		if err = ctx.Err(); err != nil {
			return fmt.Errorf("run cancelled: %w", err)
		}
		m.checkProduct(ctx, product, summary)
	}

	return nil
}

// checkProduct runs the scrape → compare → persist → notify chain for one
// product.
func (m *Monitor) checkProduct(ctx context.Context, product models.Product, summary *models.RunSummary) {
	const opn = "monitor.checkProduct"
	log := m.log.With("op", opn, "name", product.Name, "url", product.URL)

	// 1. Scrape the current price; a failure skips only this product.
	price, err := m.fetcher.FetchPrice(ctx, product.URL)
	if err != nil {
		log.WarnContext(ctx, "Could not fetch price", "error", err)
		metrics.ScrapeErrorsTotal.Inc()
		summary.Failed++
		return
	}

	// 2. Previous price comes from the history log, not the cached column.
	previous, hasPrevious, err := m.repo.LatestPrice(ctx, product.ID)
	if err != nil {
		log.ErrorContext(ctx, "Could not get latest price", "error", err)
		summary.Failed++
		return
	}

	// 3. Record the observation before deciding whether to alert. Every
	// successful scrape is logged, changed or not.
	if err = m.repo.RecordPrice(ctx, product.ID, price, m.now()); err != nil {
		log.ErrorContext(ctx, "Could not save price", "error", err)
		summary.Failed++
		return
	}
	summary.Checked++
	metrics.ScrapesTotal.Inc()

	// 4. Classify against the previous observation.
	var prevPtr *float64
	if hasPrevious {
		prevPtr = &previous
	}
	direction, pct := Classify(prevPtr, price, m.minPct)

	// 5. Alert on notable events only.
	switch direction {
	case models.DirectionNew:
		log.InfoContext(ctx, "Initial price recorded", "price", price)
		m.notify(ctx, log, func() error {
			return m.notifier.NotifyNewProduct(ctx, product, price)
		})
	case models.DirectionUp, models.DirectionDown:
		summary.Changed++
		metrics.PriceChangesTotal.Inc()
		log.InfoContext(ctx, "Price changed",
			"old", previous, "new", price, "pct", pct, "direction", direction)
		m.notify(ctx, log, func() error {
			return m.notifier.NotifyPriceChange(ctx, models.PriceChange{
				Product:   product,
				OldPrice:  prevPtr,
				NewPrice:  price,
				Pct:       pct,
				Direction: direction,
			})
		})
	case models.DirectionUnchanged:
		log.DebugContext(ctx, "No significant price change", "price", price)
	}
}

// notify delivers one alert best-effort: a failure is logged and never
// aborts the run.
func (m *Monitor) notify(ctx context.Context, log *slog.Logger, send func() error) {
	if err := send(); err != nil {
		log.ErrorContext(ctx, "Failed to send notification", "error", err)
		metrics.NotificationErrors.Inc()
		return
	}
	metrics.NotificationsSent.Inc()
}

// Classify compares a new observation against the previous one. A nil or
// zero previous price counts as a first observation: zero means the last
// run recorded an unusable value, so the next real price starts over
// instead of dividing by it.
func Classify(previous *float64, price, minPct float64) (models.Direction, float64) {
	if previous == nil || *previous == 0 {
		return models.DirectionNew, 0
	}

	pct := math.Abs(price-*previous) / *previous
	if pct >= minPct {
		if price > *previous {
			return models.DirectionUp, pct
		}
		return models.DirectionDown, pct
	}

	return models.DirectionUnchanged, pct
}
