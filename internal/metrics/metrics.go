package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// ScrapesTotal counts successfully scraped product prices.
	ScrapesTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "sentinel_scrapes_total",
		Help: "The total number of successful price scrapes",
	})

	// ScrapeErrorsTotal counts products skipped because of a scrape failure.
	ScrapeErrorsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "sentinel_scrape_errors_total",
		Help: "The total number of failed price scrapes",
	})

	// PriceChangesTotal counts observations classified as up or down.
	PriceChangesTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "sentinel_price_changes_total",
		Help: "The total number of notable price changes",
	})

	// NotificationsSent counts delivered Telegram alerts.
	NotificationsSent = promauto.NewCounter(prometheus.CounterOpts{
		Name: "sentinel_notifications_sent_total",
		Help: "The total number of Telegram alerts sent",
	})

	// NotificationErrors counts Telegram alerts that failed to send.
	NotificationErrors = promauto.NewCounter(prometheus.CounterOpts{
		Name: "sentinel_notification_errors_total",
		Help: "The total number of Telegram alerts that failed to send",
	})
)
