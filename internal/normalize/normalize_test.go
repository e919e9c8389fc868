// internal/normalize/normalize_test.go
package normalize

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/relaystation/backend/internal/feed"
	"github.com/relaystation/backend/internal/models"
)

func TestStableID(t *testing.T) {
	tests := []struct {
		name     string
		item     feed.RawItem
		index    int
		expected string
	}{
		{
			name:     "amazon dp url",
			item:     feed.RawItem{URL: "https://www.amazon.com/dp/B07XYZ1234?tag=deals"},
			expected: "amazon-B07XYZ1234",
		},
		{
			name:     "amazon gp product url",
			item:     feed.RawItem{URL: "https://www.amazon.com/gp/product/B0ABCDEF12"},
			expected: "amazon-B0ABCDEF12",
		},
		{
			name:     "lowercase asin is uppercased",
			item:     feed.RawItem{URL: "https://www.amazon.com/dp/b07xyz1234"},
			expected: "amazon-B07XYZ1234",
		},
		{
			name: "asin wins over slickdeals",
			item: feed.RawItem{
				URL:           "https://www.amazon.com/dp/B07XYZ1234",
				SlickdealsURL: "https://slickdeals.net/f/16123456-great-deal",
			},
			expected: "amazon-B07XYZ1234",
		},
		{
			name:     "slickdeals thread id",
			item:     feed.RawItem{SlickdealsURL: "https://slickdeals.net/f/16123456-great-deal"},
			expected: "slickdeals-16123456",
		},
		{
			name:     "title and price slug",
			item:     feed.RawItem{Title: "USB-C Cable 6ft", Price: "$8.99"},
			expected: "deal-usbccable6ft-899",
		},
		{
			name: "long slug is truncated",
			item: feed.RawItem{
				Title: "Super Ultra Mega Extremely Long Product Title That Never Ends At All",
				Price: "$1,299.99",
			},
			expected: "deal-superultramegaextremelylongproducttitlet-1299",
		},
		{
			name:     "positional fallback when nothing usable",
			item:     feed.RawItem{},
			index:    7,
			expected: "deal-fallback-7",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := StableID(tt.item, tt.index)
			assert.Equal(t, tt.expected, got)
			assert.LessOrEqual(t, len(got), 50)
		})
	}
}

func TestExtractASIN(t *testing.T) {
	assert.Equal(t, "B07XYZ1234", ExtractASIN("https://www.amazon.com/dp/B07XYZ1234"))
	assert.Equal(t, "B07XYZ1234", ExtractASIN("https://www.amazon.com/gp/product/B07XYZ1234/ref=xyz"))
	assert.Equal(t, "", ExtractASIN("https://www.amazon.com/b?node=123"))
	assert.Equal(t, "", ExtractASIN("https://example.com/dp/short"))
	assert.Equal(t, "", ExtractASIN(""))
}

func TestParsePrice(t *testing.T) {
	tests := []struct {
		input    string
		expected float64
	}{
		{"$8.99", 8.99},
		{"8.99", 8.99},
		{"$1,299.00", 1299.00},
		{"USD 42", 42},
		{"free", 0},
		{"", 0},
		{"$", 0},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.expected, ParsePrice(tt.input), "input %q", tt.input)
	}
}

func TestNormalizeItemPriceValidation(t *testing.T) {
	n := New(nil)
	now := time.Now()

	t.Run("rejects missing price", func(t *testing.T) {
		_, ok := n.NormalizeItem(feed.RawItem{Title: "No price"}, 0, now)
		assert.False(t, ok)
	})

	t.Run("rejects absurd price", func(t *testing.T) {
		_, ok := n.NormalizeItem(feed.RawItem{Title: "Yacht", Price: "250000"}, 0, now)
		assert.False(t, ok)
	})

	t.Run("repairs swapped prices", func(t *testing.T) {
		deal, ok := n.NormalizeItem(feed.RawItem{
			Title:         "Swapped",
			URL:           "https://www.amazon.com/dp/B000000001",
			Price:         "$19.99",
			OriginalPrice: "$8.99",
		}, 0, now)
		require.True(t, ok)
		assert.Equal(t, 8.99, deal.Price)
		require.NotNil(t, deal.OriginalPrice)
		assert.Equal(t, 19.99, *deal.OriginalPrice)
	})

	t.Run("drops original price not above sale price", func(t *testing.T) {
		deal, ok := n.NormalizeItem(feed.RawItem{
			Title:         "Same price",
			URL:           "https://www.amazon.com/dp/B000000002",
			Price:         "$8.99",
			OriginalPrice: "$8.99",
		}, 0, now)
		require.True(t, ok)
		assert.Nil(t, deal.OriginalPrice)
		assert.Nil(t, deal.Discount)
	})

	t.Run("drops absurd original price", func(t *testing.T) {
		deal, ok := n.NormalizeItem(feed.RawItem{
			Title:         "Bad original",
			URL:           "https://www.amazon.com/dp/B000000003",
			Price:         "$8.99",
			OriginalPrice: "$999999",
		}, 0, now)
		require.True(t, ok)
		assert.Nil(t, deal.OriginalPrice)
	})
}

func TestNormalizeItemFullExample(t *testing.T) {
	n := New(nil)
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

	rating := 4.7
	deal, ok := n.NormalizeItem(feed.RawItem{
		Title:         "Anker USB-C Cable 6ft Nylon Braided",
		Description:   "Fast charging cable",
		Price:         "$8.99",
		OriginalPrice: "$19.99",
		URL:           "https://www.amazon.com/dp/B07XYZ1234",
		ImageURL:      "https://m.media-amazon.com/images/I/71abc.jpg",
		Brand:         "Anker",
		Rating:        &rating,
	}, 0, now)

	require.True(t, ok)
	assert.Equal(t, "amazon-B07XYZ1234", deal.ID)
	assert.Equal(t, 8.99, deal.Price)
	require.NotNil(t, deal.OriginalPrice)
	assert.Equal(t, 19.99, *deal.OriginalPrice)
	require.NotNil(t, deal.Discount)
	assert.Equal(t, 55, *deal.Discount)
	assert.Equal(t, "Electronics", deal.Category)
	assert.Equal(t, "https://m.media-amazon.com/images/I/71abc.jpg", deal.ImageURL)
	assert.True(t, deal.InStock)
	assert.Equal(t, now, deal.FetchedAt)
	require.NotNil(t, deal.Brand)
	assert.Equal(t, "Anker", *deal.Brand)
}

func TestNormalizeItemImageFallback(t *testing.T) {
	n := New(nil)
	now := time.Now()

	t.Run("image alias field", func(t *testing.T) {
		deal, ok := n.NormalizeItem(feed.RawItem{
			Title: "Alias image",
			URL:   "https://www.amazon.com/dp/B000000004",
			Price: "9.99",
			Image: "https://m.media-amazon.com/images/I/81xyz.jpg",
		}, 0, now)
		require.True(t, ok)
		assert.Equal(t, "https://m.media-amazon.com/images/I/81xyz.jpg", deal.ImageURL)
	})

	t.Run("placeholder when no image", func(t *testing.T) {
		deal, ok := n.NormalizeItem(feed.RawItem{
			Title: "No image",
			URL:   "https://www.amazon.com/dp/B000000005",
			Price: "9.99",
		}, 0, now)
		require.True(t, ok)
		assert.Equal(t, PlaceholderImage, deal.ImageURL)
	})

	t.Run("non-http image is ignored", func(t *testing.T) {
		deal, ok := n.NormalizeItem(feed.RawItem{
			Title:    "Relative image",
			URL:      "https://www.amazon.com/dp/B000000006",
			Price:    "9.99",
			ImageURL: "/images/product.jpg",
		}, 0, now)
		require.True(t, ok)
		assert.Equal(t, PlaceholderImage, deal.ImageURL)
	})
}

func TestInferCategory(t *testing.T) {
	n := New(nil)

	tests := []struct {
		title    string
		expected string
	}{
		{"Anker USB-C Cable 6ft", "Electronics"},
		{"Instant Pot Pressure Cooker", "Home & Kitchen"},
		{"Silk Summer Dress", "Fashion"},
		{"LEGO Star Wars Set", "Toys & Games"},
		{"Mystery Gadget 3000", "Other"},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.expected, n.InferCategory(tt.title), "title %q", tt.title)
	}
}

func TestDiscountRounding(t *testing.T) {
	n := New(nil)
	now := time.Now()

	// 55.027... rounds to 55
	deal, ok := n.NormalizeItem(feed.RawItem{
		Title:         "Rounding",
		URL:           "https://www.amazon.com/dp/B000000007",
		Price:         "8.99",
		OriginalPrice: "19.99",
	}, 0, now)
	require.True(t, ok)
	require.NotNil(t, deal.Discount)
	assert.Equal(t, 55, *deal.Discount)

	// Exactly one third off rounds from 33.33 to 33
	deal, ok = n.NormalizeItem(feed.RawItem{
		Title:         "Third off",
		URL:           "https://www.amazon.com/dp/B000000008",
		Price:         "20.00",
		OriginalPrice: "30.00",
	}, 0, now)
	require.True(t, ok)
	require.NotNil(t, deal.Discount)
	assert.Equal(t, 33, *deal.Discount)
}

func TestDeduplicate(t *testing.T) {
	deals := []models.Deal{
		{ID: "amazon-B07XYZ1234", Title: "first"},
		{ID: "amazon-B0OTHER999", Title: "other"},
		{ID: "amazon-B07XYZ1234", Title: "second"},
	}

	out := Deduplicate(deals)
	require.Len(t, out, 2)
	assert.Equal(t, "first", out[0].Title)
	assert.Equal(t, "amazon-B0OTHER999", out[1].ID)
}

func TestNormalizeBatchSkipsInvalid(t *testing.T) {
	n := New(nil)
	now := time.Now()

	items := []feed.RawItem{
		{Title: "Good", URL: "https://www.amazon.com/dp/B000000009", Price: "9.99"},
		{Title: "No price at all"},
		{Title: "Also good", URL: "https://www.amazon.com/dp/B000000010", Price: "4.99"},
	}

	deals := n.NormalizeBatch(items, now)
	require.Len(t, deals, 2)
	assert.Equal(t, "amazon-B000000009", deals[0].ID)
	assert.Equal(t, "amazon-B000000010", deals[1].ID)
}

func TestParseTimestamp(t *testing.T) {
	assert.Nil(t, parseTimestamp(""))
	assert.Nil(t, parseTimestamp("not a date"))

	ts := parseTimestamp("2026-03-01T12:00:00Z")
	require.NotNil(t, ts)
	assert.Equal(t, 2026, ts.Year())

	ts = parseTimestamp("2026-03-01")
	require.NotNil(t, ts)
	assert.Equal(t, time.March, ts.Month())
}
