package catalog

import (
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"

	"github.com/Houeta/price-sentinel/internal/models"
)

// Client fetches the tracked-product catalog from a published spreadsheet
// via its CSV export URL.
type Client struct {
	log     *slog.Logger
	client  *http.Client
	destURL string
}

func NewClient(log *slog.Logger, destinationURL string) *Client {
	return &Client{log: log, destURL: destinationURL, client: http.DefaultClient}
}

// Entries downloads and parses the catalog. Rows with a missing name or URL
// are logged and skipped; a fetch failure is fatal for the caller.
func (c *Client) Entries(ctx context.Context) ([]models.CatalogEntry, error) {
	resp, err := c.getCSVResponse(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to get csv response: %w", err)
	}
	defer resp.Body.Close()

	return c.parseCSVResponse(ctx, resp.Body)
}

func (c *Client) getCSVResponse(ctx context.Context) (*http.Response, error) {
	reqURL, err := url.Parse(c.destURL)
	if err != nil {
		return nil, fmt.Errorf("failed to parse catalog URL %s: %w", c.destURL, err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL.String(), nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create new request %s: %w", reqURL.String(), err)
	}

	req.Header.Add("User-Agent", "Mozilla/5.0 (compatible; GoHttpClient/1.0)")

	c.log.DebugContext(ctx, "Send request", "method", req.Method, "URL", req.URL)

	res, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to request %s: %w", c.destURL, err)
	}

	if res.StatusCode != http.StatusOK {
		res.Body.Close()
		return nil, fmt.Errorf("status code error: [%d] %s", res.StatusCode, res.Status)
	}

	c.log.InfoContext(ctx, "Successfully received catalog response", "status code", res.StatusCode)

	return res, nil
}

// parseCSVResponse reads the export row by row. The header names the "item"
// and "URL" columns (case-insensitive); their order is not fixed.
func (c *Client) parseCSVResponse(ctx context.Context, inp io.Reader) ([]models.CatalogEntry, error) {
	reader := csv.NewReader(inp)
	reader.FieldsPerRecord = -1

	header, err := reader.Read()
	if err != nil {
		return nil, fmt.Errorf("failed to read catalog header: %w", err)
	}

	nameIdx, urlIdx := -1, -1
	for idx, column := range header {
		switch strings.ToLower(strings.TrimSpace(column)) {
		case "item", "name":
			nameIdx = idx
		case "url":
			urlIdx = idx
		}
	}
	if nameIdx < 0 || urlIdx < 0 {
		return nil, fmt.Errorf("catalog header is missing item/URL columns: %v", header)
	}

	var entries []models.CatalogEntry
	for rowNum := 2; ; rowNum++ {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to read catalog row %d: %w", rowNum, err)
		}

		entry := models.CatalogEntry{}
		if nameIdx < len(record) {
			entry.Name = strings.TrimSpace(record[nameIdx])
		}
		if urlIdx < len(record) {
			entry.URL = strings.TrimSpace(record[urlIdx])
		}

		if entry.URL == "" || entry.Name == "" {
			c.log.WarnContext(ctx, "Skipping catalog row with missing fields",
				"row", rowNum, "name", entry.Name, "url", entry.URL)
			continue
		}

		entries = append(entries, entry)
	}

	return entries, nil
}
