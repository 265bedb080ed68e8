package scraper

import (
	"errors"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// mockRoundTripper — its a mock for http.RoundTripper.
type mockRoundTripper struct {
	responses []*http.Response
	errs      []error
	calls     int
}

func (m *mockRoundTripper) RoundTrip(_ *http.Request) (*http.Response, error) {
	idx := m.calls
	if idx >= len(m.responses) {
		idx = len(m.responses) - 1
	}
	m.calls++
	return m.responses[idx], m.errs[idx]
}

func htmlResponse(status int, body string) *http.Response {
	return &http.Response{
		StatusCode: status,
		Status:     http.StatusText(status),
		Body:       io.NopCloser(strings.NewReader(body)),
	}
}

// =============================================================================
// Tests for price extraction
// =============================================================================

func TestExtractPrice(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	s := &Scraper{log: logger, client: http.DefaultClient}
	ctx := t.Context()

	testCases := []struct {
		name        string
		inputHTML   string
		expected    float64
		expectError bool
	}{
		{
			name:      "price in a span with price class",
			inputHTML: `<html><body><span class="product-price">RM 10.50</span></body></html>`,
			expected:  10.50,
		},
		{
			name:      "price in a div with price class",
			inputHTML: `<html><body><div class="price">RM8.90</div></body></html>`,
			expected:  8.90,
		},
		{
			name:      "regex fallback on raw html",
			inputHTML: `<html><body><p>Special offer only RM 15.20 today</p></body></html>`,
			expected:  15.20,
		},
		{
			name:      "trailing currency format",
			inputHTML: `<html><body><p>12.00 RM</p></body></html>`,
			expected:  12.00,
		},
		{
			name:      "thousands separator",
			inputHTML: `<html><body><span class="price">RM 1,250.00</span></body></html>`,
			expected:  1250.00,
		},
		{
			name:        "no price anywhere",
			inputHTML:   `<html><body><p>Out of stock</p></body></html>`,
			expectError: true,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			price, err := s.extractPrice(ctx, tc.inputHTML)

			if tc.expectError {
				require.ErrorIs(t, err, ErrPriceNotFound)
				return
			}

			require.NoError(t, err)
			assert.InDelta(t, tc.expected, price, 1e-9)
		})
	}
}

func TestParsePrice(t *testing.T) {
	testCases := []struct {
		name        string
		input       string
		expected    float64
		expectError bool
	}{
		{"plain number", "10.50", 10.50, false},
		{"currency prefix", "RM 10.50", 10.50, false},
		{"comma separated", "1,099.90", 1099.90, false},
		{"integer price", "7", 7, false},
		{"no digits", "sold out", 0, true},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			price, err := parsePrice(tc.input)

			if tc.expectError {
				require.Error(t, err)
				return
			}

			require.NoError(t, err)
			assert.InDelta(t, tc.expected, price, 1e-9)
		})
	}
}

// =============================================================================
// Tests for network logic
// =============================================================================

func TestFetchPrice(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	ctx := t.Context()
	pageHTML := `<html><body><span class="price">RM 10.50</span></body></html>`

	testCases := []struct {
		name          string
		transport     *mockRoundTripper
		expected      float64
		expectedCalls int
		expectError   bool
	}{
		{
			name: "success on first attempt",
			transport: &mockRoundTripper{
				responses: []*http.Response{htmlResponse(http.StatusOK, pageHTML)},
				errs:      []error{nil},
			},
			expected:      10.50,
			expectedCalls: 1,
		},
		{
			name: "transport failure recovered by retry",
			transport: &mockRoundTripper{
				responses: []*http.Response{nil, htmlResponse(http.StatusOK, pageHTML)},
				errs:      []error{errors.New("connection reset"), nil},
			},
			expected:      10.50,
			expectedCalls: 2,
		},
		{
			name: "persistent failure after retry",
			transport: &mockRoundTripper{
				responses: []*http.Response{nil, nil},
				errs:      []error{errors.New("connection reset"), errors.New("connection reset")},
			},
			expectedCalls: 2,
			expectError:   true,
		},
		{
			name: "server error status",
			transport: &mockRoundTripper{
				responses: []*http.Response{
					htmlResponse(http.StatusServiceUnavailable, ""),
					htmlResponse(http.StatusServiceUnavailable, ""),
				},
				errs: []error{nil, nil},
			},
			expectedCalls: 2,
			expectError:   true,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			s := NewScraper(logger, 5*time.Second)
			s.client = &http.Client{Transport: tc.transport}
			s.backoff = 0

			price, err := s.FetchPrice(ctx, "http://test.com/product")

			assert.Equal(t, tc.expectedCalls, tc.transport.calls)

			if tc.expectError {
				require.Error(t, err)
				return
			}

			require.NoError(t, err)
			assert.InDelta(t, tc.expected, price, 1e-9)
		})
	}
}
