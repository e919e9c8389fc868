// internal/scrape/extract_test.go
package scrape

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestIsPlaceholderURL(t *testing.T) {
	placeholders := []string{
		"/placeholder.svg",
		"https://example.com/placeholder.svg",
		"https://via.placeholder.com/300",
		"https://cdn.example.com/No+Image.png",
		"https://cdn.example.com/no-image.jpg",
		"https://cdn.example.com/NOIMAGE.gif",
	}
	for _, u := range placeholders {
		assert.True(t, IsPlaceholderURL(u), u)
	}

	real := []string{
		"https://m.media-amazon.com/images/I/71abc.jpg",
		"https://images-na.ssl-images-amazon.com/images/P/B07XYZ1234.jpg",
		"",
	}
	for _, u := range real {
		assert.False(t, IsPlaceholderURL(u), u)
	}
}

func TestExtractImageCandidate(t *testing.T) {
	tests := []struct {
		name     string
		html     string
		expected string
	}{
		{
			name:     "og image meta",
			html:     `<html><head><meta property="og:image" content="https://m.media-amazon.com/images/I/71og.jpg"/></head></html>`,
			expected: "https://m.media-amazon.com/images/I/71og.jpg",
		},
		{
			name:     "og image wins over landing image",
			html:     `<html><head><meta property="og:image" content="https://m.media-amazon.com/images/I/71og.jpg"/></head><body><img id="landingImage" src="https://m.media-amazon.com/images/I/71landing.jpg"/></body></html>`,
			expected: "https://m.media-amazon.com/images/I/71og.jpg",
		},
		{
			name:     "landing image src",
			html:     `<html><body><img id="landingImage" src="https://m.media-amazon.com/images/I/71landing.jpg"/></body></html>`,
			expected: "https://m.media-amazon.com/images/I/71landing.jpg",
		},
		{
			name:     "product image class",
			html:     `<html><body><img class="product-image" src="https://m.media-amazon.com/images/I/71prod.jpg"/></body></html>`,
			expected: "https://m.media-amazon.com/images/I/71prod.jpg",
		},
		{
			name:     "nested product image",
			html:     `<html><body><div class="product-image"><img src="https://m.media-amazon.com/images/I/71nested.jpg"/></div></body></html>`,
			expected: "https://m.media-amazon.com/images/I/71nested.jpg",
		},
		{
			name:     "data-old-hires",
			html:     `<html><body><img data-old-hires="https://m.media-amazon.com/images/I/71hires.jpg" src="/small.jpg"/></body></html>`,
			expected: "https://m.media-amazon.com/images/I/71hires.jpg",
		},
		{
			name:     "dynamic image json",
			html:     `<html><body><img data-a-dynamic-image='{"https://m.media-amazon.com/images/I/71dyn.jpg":[500,500]}' src="/small.jpg"/></body></html>`,
			expected: "https://m.media-amazon.com/images/I/71dyn.jpg",
		},
		{
			name:     "placeholder og image is skipped",
			html:     `<html><head><meta property="og:image" content="https://via.placeholder.com/300"/></head><body><img id="landingImage" src="https://m.media-amazon.com/images/I/71landing.jpg"/></body></html>`,
			expected: "https://m.media-amazon.com/images/I/71landing.jpg",
		},
		{
			name:     "relative src is skipped",
			html:     `<html><body><img id="landingImage" src="/images/I/71rel.jpg"/></body></html>`,
			expected: "",
		},
		{
			name:     "nothing usable",
			html:     `<html><body><p>hello</p></body></html>`,
			expected: "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, ExtractImageCandidate(tt.html))
		})
	}
}

func TestExtractImageCandidateUnescapesEntities(t *testing.T) {
	html := `<html><head><meta property="og:image" content="https://m.media-amazon.com/images/I/71x.jpg?a=1&amp;b=2"/></head></html>`
	assert.Equal(t, "https://m.media-amazon.com/images/I/71x.jpg?a=1&b=2", ExtractImageCandidate(html))
}

func TestExtractProxyImage(t *testing.T) {
	tests := []struct {
		name     string
		html     string
		expected string
	}{
		{
			name:     "largeImage json",
			html:     `var data = {"largeImage":"https://m.media-amazon.com/images/I/71large.jpg"};`,
			expected: "https://m.media-amazon.com/images/I/71large.jpg",
		},
		{
			name:     "hiRes json",
			html:     `"hiRes":"https://m.media-amazon.com/images/I/71hires._SY450_.jpg"`,
			expected: "https://m.media-amazon.com/images/I/71hires._AC_SL1500_.jpg",
		},
		{
			name:     "data-old-hires attribute",
			html:     `<img data-old-hires="https://m.media-amazon.com/images/I/71old.jpg">`,
			expected: "https://m.media-amazon.com/images/I/71old.jpg",
		},
		{
			name:     "landing image src",
			html:     `<img id="landingImage" class="a-dynamic-image" src="https://m.media-amazon.com/images/I/71land._SX522_.jpg">`,
			expected: "https://m.media-amazon.com/images/I/71land._AC_SL1500_.jpg",
		},
		{
			name:     "escaped json url",
			html:     `"hiRes":"https:\/\/m.media-amazon.com\/images\/I\/71esc.jpg?v=1&w=2"`,
			expected: "https://m.media-amazon.com/images/I/71esc.jpg?v=1&w=2",
		},
		{
			name:     "bare cdn url fallback",
			html:     `<div>see https://m.media-amazon.com/images/I/71bare.jpg for details</div>`,
			expected: "https://m.media-amazon.com/images/I/71bare.jpg",
		},
		{
			name:     "no image",
			html:     `<html><body>nothing here</body></html>`,
			expected: "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, ExtractProxyImage(tt.html))
		})
	}
}

func TestUnescapeImageURL(t *testing.T) {
	assert.Equal(t,
		"https://m.media-amazon.com/images/I/1.jpg?a=1&b=2",
		UnescapeImageURL(`https:\/\/m.media-amazon.com\/images\/I\/1.jpg?a=1&b=2`))
	assert.Equal(t,
		"https://x.com/i.jpg?k=v",
		UnescapeImageURL(`https://x.com/i.jpg?k=v`))
	assert.Equal(t,
		"https://x.com/i.jpg?a=1&b=2",
		UnescapeImageURL("https://x.com/i.jpg?a=1&amp;b=2"))
}

func TestUpgradeResolution(t *testing.T) {
	tests := []struct {
		input    string
		expected string
	}{
		{
			"https://m.media-amazon.com/images/I/71x._SY450_.jpg",
			"https://m.media-amazon.com/images/I/71x._AC_SL1500_.jpg",
		},
		{
			"https://m.media-amazon.com/images/I/71x._AC_UL320_.jpg",
			"https://m.media-amazon.com/images/I/71x._AC_SL1500_.jpg",
		},
		{
			"https://m.media-amazon.com/images/I/71x.jpg",
			"https://m.media-amazon.com/images/I/71x.jpg",
		},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.expected, UpgradeResolution(tt.input), tt.input)
	}
}
