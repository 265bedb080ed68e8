package scraper

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
)

// ErrPriceNotFound is returned when the page was fetched but no price could
// be located in it.
var ErrPriceNotFound = errors.New("price not found on page")

// priceSelectors are tried in order against the product page. The store
// renders prices in several layouts; the RM regex below is the fallback.
var priceSelectors = []string{
	"span[class*='price']",
	"div[class*='price']",
	".price",
	"[data-price]",
	"span:contains('RM')",
	"div:contains('RM')",
}

var (
	ringgitPattern = regexp.MustCompile(`(?i)RM\s*(\d+\.?\d*)|\b(\d+\.?\d*)\s*RM`)
	numberPattern  = regexp.MustCompile(`\d+\.?\d*`)
)

const retryBackoff = 2 * time.Second

// Scraper fetches product pages and extracts the current price.
type Scraper struct {
	log     *slog.Logger
	client  *http.Client
	backoff time.Duration
}

func NewScraper(log *slog.Logger, timeout time.Duration) *Scraper {
	return &Scraper{log: log, client: &http.Client{Timeout: timeout}, backoff: retryBackoff}
}

// FetchPrice downloads the product page and returns its current price. A
// transport failure is retried once after a short backoff; any remaining
// failure is an error for the caller to log and skip.
func (s *Scraper) FetchPrice(ctx context.Context, pageURL string) (float64, error) {
	body, err := s.getPage(ctx, pageURL)
	if err != nil {
		s.log.WarnContext(ctx, "Fetch failed, retrying once", "url", pageURL, "error", err)

		select {
		case <-ctx.Done():
			return 0, fmt.Errorf("fetch cancelled for %s: %w", pageURL, ctx.Err())
		case <-time.After(s.backoff):
		}

		body, err = s.getPage(ctx, pageURL)
		if err != nil {
			return 0, fmt.Errorf("failed to fetch page %s: %w", pageURL, err)
		}
	}

	price, err := s.extractPrice(ctx, body)
	if err != nil {
		return 0, fmt.Errorf("failed to extract price from %s: %w", pageURL, err)
	}

	s.log.InfoContext(ctx, "Found price", "url", pageURL, "price", price)

	return price, nil
}

func (s *Scraper) getPage(ctx context.Context, pageURL string) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, pageURL, nil)
	if err != nil {
		return "", fmt.Errorf("failed to create new request %s: %w", pageURL, err)
	}

	req.Header.Add("User-Agent", "Mozilla/5.0 (compatible; GoHttpClient/1.0)")

	res, err := s.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("failed to request %s: %w", pageURL, err)
	}
	defer res.Body.Close()

	if res.StatusCode != http.StatusOK {
		return "", fmt.Errorf("status code error: [%d] %s", res.StatusCode, res.Status)
	}

	body, err := io.ReadAll(res.Body)
	if err != nil {
		return "", fmt.Errorf("failed to read response body: %w", err)
	}

	return string(body), nil
}

// extractPrice walks the selector list first and falls back to scanning the
// raw HTML for a Ringgit amount.
func (s *Scraper) extractPrice(ctx context.Context, html string) (float64, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return 0, fmt.Errorf("data cannot be parsed as HTML: %w", err)
	}

	var priceText string
	for _, selector := range priceSelectors {
		selection := doc.Find(selector)
		if selection.Length() > 0 {
			priceText = strings.TrimSpace(selection.First().Text())
			s.log.DebugContext(ctx, "Matched price selector", "selector", selector, "text", priceText)
			break
		}
	}

	if priceText == "" {
		if match := ringgitPattern.FindStringSubmatch(html); match != nil {
			priceText = match[1]
			if priceText == "" {
				priceText = match[2]
			}
		}
	}

	if priceText == "" {
		return 0, ErrPriceNotFound
	}

	return parsePrice(priceText)
}

// parsePrice extracts the first numeric value from a text fragment like
// "RM 10.50" or "10,500.00".
func parsePrice(text string) (float64, error) {
	number := numberPattern.FindString(strings.ReplaceAll(text, ",", ""))
	if number == "" {
		return 0, fmt.Errorf("%w: no number in %q", ErrPriceNotFound, text)
	}

	price, err := strconv.ParseFloat(number, 64)
	if err != nil {
		return 0, fmt.Errorf("could not parse price %q: %w", text, err)
	}

	return price, nil
}
