// internal/normalize/normalize.go
package normalize

import (
	"math"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/relaystation/backend/internal/feed"
	"github.com/relaystation/backend/internal/models"
)

const (
	// PlaceholderImage stands in when the feed carries no usable image URL.
	PlaceholderImage = "/placeholder.svg"

	maxPrice      = 100000
	maxSlugLen    = 40
	maxStableID   = 50
	fallbackIDFmt = "deal-fallback-"
)

var (
	asinRegex       = regexp.MustCompile(`(?:/dp/|/gp/product/)([A-Za-z0-9]{10})`)
	slickdealsRegex = regexp.MustCompile(`/f/(\d+)`)
	nonPriceRegex   = regexp.MustCompile(`[^0-9.]`)
	nonAlnumRegex   = regexp.MustCompile(`[^a-z0-9]`)
	digitsOnlyRegex = regexp.MustCompile(`[^0-9]`)
)

// timestampLayouts are tried in order when parsing the feed's posted time.
var timestampLayouts = []string{
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"2006-01-02",
}

// Normalizer turns raw feed items into canonical deal records.
type Normalizer struct {
	rules []CategoryEntry
}

// New builds a Normalizer over the given category rules. Empty rules fall
// back to the built-in table.
func New(rules []CategoryEntry) *Normalizer {
	if len(rules) == 0 {
		rules = DefaultCategoryTable()
	}
	return &Normalizer{rules: rules}
}

// NormalizeBatch normalizes every raw item, dropping those that fail price
// validation, and stamps fetched_at with now.
func (n *Normalizer) NormalizeBatch(items []feed.RawItem, now time.Time) []models.Deal {
	deals := make([]models.Deal, 0, len(items))
	for i, item := range items {
		deal, ok := n.NormalizeItem(item, i, now)
		if !ok {
			logrus.WithFields(logrus.Fields{
				"index": i,
				"title": item.Title,
			}).Info("Skipping feed item with invalid price")
			continue
		}
		deals = append(deals, *deal)
	}
	return deals
}

// NormalizeItem normalizes a single raw item at position index. The second
// return value is false when the item must be excluded from the batch.
func (n *Normalizer) NormalizeItem(item feed.RawItem, index int, now time.Time) (*models.Deal, bool) {
	price := ParsePrice(string(item.Price))
	originalPrice := ParsePrice(string(item.OriginalPrice))

	// The feed sometimes transposes sale and list price; swap before
	// validating so a repairable pair is not rejected.
	if originalPrice > 0 && price > originalPrice {
		price, originalPrice = originalPrice, price
	}

	if price <= 0 || price > maxPrice {
		return nil, false
	}

	var originalPtr *float64
	if originalPrice > price && originalPrice <= maxPrice {
		originalPtr = &originalPrice
	}

	deal := models.Deal{
		ID:            StableID(item, index),
		Title:         strings.TrimSpace(item.Title),
		Description:   strings.TrimSpace(item.Description),
		Price:         price,
		OriginalPrice: originalPtr,
		Discount:      discountPercent(price, originalPtr),
		ImageURL:      selectImageURL(item),
		ProductURL:    item.URL,
		Category:      n.InferCategory(item.Title),
		InStock:       true,
		PostedAt:      parseTimestamp(item.Timestamp),
		FetchedAt:     now,
	}

	if strings.HasPrefix(deal.ID, fallbackIDFmt) {
		logrus.WithFields(logrus.Fields{
			"id":    deal.ID,
			"title": item.Title,
		}).Warn("Feed item has no stable identifier; positional fallback ID is unstable across runs")
	}

	if item.Brand != "" {
		brand := item.Brand
		deal.Brand = &brand
	}
	if item.Rating != nil && *item.Rating > 0 {
		deal.Rating = item.Rating
	}
	if rc := reviewCount(item); rc != nil {
		deal.ReviewCount = rc
	}
	if item.InStock != nil {
		deal.InStock = *item.InStock
	}
	if item.CouponCode != "" {
		coupon := item.CouponCode
		deal.CouponCode = &coupon
	}

	return &deal, true
}

// StableID derives a deterministic deal ID. Priority: Amazon ASIN, then
// Slickdeals thread ID, then a title+price slug, then a positional fallback
// that guarantees a non-empty ID but is not stable across runs.
func StableID(item feed.RawItem, index int) string {
	if asin := ExtractASIN(item.URL); asin != "" {
		return "amazon-" + asin
	}

	if m := slickdealsRegex.FindStringSubmatch(item.SlickdealsURL); m != nil {
		return "slickdeals-" + m[1]
	}

	slug := nonAlnumRegex.ReplaceAllString(strings.ToLower(item.Title), "")
	if len(slug) > maxSlugLen {
		slug = slug[:maxSlugLen]
	}
	digits := digitsOnlyRegex.ReplaceAllString(string(item.Price), "")
	if slug != "" && digits != "" {
		id := "deal-" + slug + "-" + digits
		if len(id) > maxStableID {
			id = id[:maxStableID]
		}
		return id
	}

	return fallbackIDFmt + strconv.Itoa(index)
}

// ExtractASIN pulls a 10-character ASIN out of /dp/ or /gp/product/ URL
// segments. Returns "" when none is present.
func ExtractASIN(rawURL string) string {
	if m := asinRegex.FindStringSubmatch(rawURL); m != nil {
		return strings.ToUpper(m[1])
	}
	return ""
}

// ParsePrice strips currency symbols and separators from a price string and
// coerces it to a float. Absent or unparsable values come back as 0.
func ParsePrice(s string) float64 {
	cleaned := nonPriceRegex.ReplaceAllString(s, "")
	if cleaned == "" {
		return 0
	}
	price, err := strconv.ParseFloat(cleaned, 64)
	if err != nil {
		return 0
	}
	return price
}

// InferCategory matches the title against the rule keyword lists,
// case-insensitively. First matching category wins; default "Other".
func (n *Normalizer) InferCategory(title string) string {
	lower := strings.ToLower(title)
	for _, rule := range n.rules {
		for _, keyword := range rule.Keywords {
			if strings.Contains(lower, keyword) {
				return rule.Category
			}
		}
	}
	return "Other"
}

// Deduplicate keeps the first deal per stable ID within a batch so the bulk
// upsert never sees the same primary key twice.
func Deduplicate(deals []models.Deal) []models.Deal {
	seen := make(map[string]struct{}, len(deals))
	out := make([]models.Deal, 0, len(deals))
	for _, deal := range deals {
		if _, dup := seen[deal.ID]; dup {
			logrus.WithField("id", deal.ID).Info("Dropping duplicate deal within sync batch")
			continue
		}
		seen[deal.ID] = struct{}{}
		out = append(out, deal)
	}
	return out
}

func discountPercent(price float64, originalPrice *float64) *int {
	if originalPrice == nil || *originalPrice <= 0 || price <= 0 {
		return nil
	}
	d := int(math.Round((*originalPrice - price) / *originalPrice * 100))
	if d < 0 {
		return nil
	}
	if d > 100 {
		d = 100
	}
	return &d
}

func selectImageURL(item feed.RawItem) string {
	for _, candidate := range []string{item.ImageURL, item.Image} {
		if strings.HasPrefix(candidate, "http") {
			return candidate
		}
	}
	return PlaceholderImage
}

func reviewCount(item feed.RawItem) *int {
	for _, v := range []*feed.FlexInt{item.ReviewCount, item.Reviews} {
		if v != nil && int(*v) > 0 {
			n := int(*v)
			return &n
		}
	}
	return nil
}

func parseTimestamp(s string) *time.Time {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	for _, layout := range timestampLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return &t
		}
	}
	return nil
}
