// internal/scrape/extract.go
package scrape

import (
	"encoding/json"
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// placeholderPatterns mark image URLs that stand in for a missing product
// image. Matching is case-insensitive substring.
var placeholderPatterns = []string{
	"placeholder.svg",
	"via.placeholder.com",
	"no+image",
	"no-image",
	"noimage",
}

// IsPlaceholderURL reports whether the URL is a known placeholder pattern
// rather than a real product image.
func IsPlaceholderURL(rawURL string) bool {
	lower := strings.ToLower(rawURL)
	for _, pattern := range placeholderPatterns {
		if strings.Contains(lower, pattern) {
			return true
		}
	}
	return false
}

// ExtractImageCandidate scans product page HTML for an image URL, trying the
// selectors in priority order: og:image meta, #landingImage src, a
// product-image class src, data-old-hires, then the data-a-dynamic-image
// JSON blob. Returns "" when nothing usable is found. The pattern list is
// deliberately isolated here so it can be extended without touching callers.
func ExtractImageCandidate(html string) string {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return ""
	}

	candidates := []func() string{
		func() string {
			v, _ := doc.Find(`meta[property="og:image"]`).First().Attr("content")
			return v
		},
		func() string {
			v, _ := doc.Find("#landingImage").First().Attr("src")
			return v
		},
		func() string {
			v, _ := doc.Find("img.product-image").First().Attr("src")
			if v == "" {
				v, _ = doc.Find(".product-image img").First().Attr("src")
			}
			return v
		},
		func() string {
			v, _ := doc.Find("img[data-old-hires]").First().Attr("data-old-hires")
			return v
		},
		func() string {
			v, _ := doc.Find("img[data-a-dynamic-image]").First().Attr("data-a-dynamic-image")
			return firstDynamicImageURL(v)
		},
	}

	for _, extract := range candidates {
		candidate := strings.TrimSpace(extract())
		candidate = strings.ReplaceAll(candidate, "&amp;", "&")
		if strings.HasPrefix(candidate, "http") && !IsPlaceholderURL(candidate) {
			return candidate
		}
	}

	return ""
}

// firstDynamicImageURL decodes a data-a-dynamic-image attribute, a JSON map
// of image URL to [width, height], and returns the first URL key.
func firstDynamicImageURL(attr string) string {
	if attr == "" {
		return ""
	}
	var images map[string][]float64
	if err := json.Unmarshal([]byte(attr), &images); err != nil {
		return ""
	}
	for u := range images {
		if strings.HasPrefix(u, "http") {
			return u
		}
	}
	return ""
}

// proxyImagePatterns are tried in priority order against a raw product page
// when the proxy needs an image URL. They target the embedded image JSON
// blobs and attributes Amazon pages carry; capture group 1 is the URL.
var proxyImagePatterns = []*regexp.Regexp{
	regexp.MustCompile(`"largeImage"\s*:\s*"(https:[^"]+)"`),
	regexp.MustCompile(`"hiRes"\s*:\s*"(https:[^"]+)"`),
	regexp.MustCompile(`data-old-hires="([^"]+)"`),
	regexp.MustCompile(`data-a-dynamic-image="\{&quot;(https:[^&]+)&quot;`),
	regexp.MustCompile(`id="landingImage"[^>]*\ssrc="([^"]+)"`),
	regexp.MustCompile(`"mainUrl"\s*:\s*"(https:[^"]+)"`),
	regexp.MustCompile(`"mainImageUrl"\s*:\s*"(https:[^"]+)"`),
	regexp.MustCompile(`<img[^>]+src="(https://m\.media-amazon\.com/images/I/[^"]+)"`),
	regexp.MustCompile(`(https://m\.media-amazon\.com/images/I/[A-Za-z0-9%+._-]+\.(?:jpg|jpeg|png|webp))`),
}

var resolutionSuffixRegex = regexp.MustCompile(`\._[A-Za-z0-9_,]+_\.`)

// ExtractProxyImage runs the proxy's regex chain over raw page HTML and
// returns an unescaped, resolution-upgraded image URL, or "".
func ExtractProxyImage(html string) string {
	for _, pattern := range proxyImagePatterns {
		m := pattern.FindStringSubmatch(html)
		if m == nil {
			continue
		}
		candidate := UnescapeImageURL(m[1])
		if strings.HasPrefix(candidate, "http") && !IsPlaceholderURL(candidate) {
			return UpgradeResolution(candidate)
		}
	}
	return ""
}

// UnescapeImageURL undoes the unicode and backslash escaping found in the
// embedded page JSON.
func UnescapeImageURL(s string) string {
	s = strings.ReplaceAll(s, "\\u0026", "&")
	s = strings.ReplaceAll(s, "\\u003d", "=")
	s = strings.ReplaceAll(s, "\\/", "/")
	s = strings.ReplaceAll(s, "&amp;", "&")
	return s
}

// UpgradeResolution rewrites the Amazon image size suffix to the large
// _AC_SL1500_ variant. URLs without a size suffix are returned unchanged.
func UpgradeResolution(imageURL string) string {
	return resolutionSuffixRegex.ReplaceAllString(imageURL, "._AC_SL1500_.")
}
