// internal/feed/client.go
package feed

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/relaystation/backend/internal/config"
)

// Client fetches the upstream deal feed. Any non-2xx response or malformed
// payload is fatal for the sync run: transformation happens before the single
// bulk upsert, so failing here guarantees no partial commit.
type Client struct {
	httpClient *http.Client
	cfg        config.FeedConfig
}

// Feed is the decoded upstream payload.
type Feed struct {
	Count    int       `json:"count"`
	Products []RawItem `json:"products"`
}

// RawItem is one heterogeneous feed entry. The feed is inconsistent about
// field names and types (prices arrive as "$8.99" strings or bare numbers,
// images under image_url or image, review counts under reviewCount or
// reviews), so the alternatives are decoded side by side and resolved by the
// normalizer.
type RawItem struct {
	Title         string     `json:"title"`
	Description   string     `json:"description"`
	Price         FlexString `json:"price"`
	OriginalPrice FlexString `json:"original_price"`
	URL           string     `json:"url"`
	SlickdealsURL string     `json:"slickdeals_url"`
	ImageURL      string     `json:"image_url"`
	Image         string     `json:"image"`
	Brand         string     `json:"brand"`
	Rating        *float64   `json:"rating"`
	ReviewCount   *FlexInt   `json:"reviewCount"`
	Reviews       *FlexInt   `json:"reviews"`
	InStock       *bool      `json:"in_stock"`
	CouponCode    string     `json:"coupon_code"`
	Timestamp     string     `json:"timestamp"`
}

// FlexString decodes a JSON string or number into a string.
type FlexString string

func (f *FlexString) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || string(data) == "null" {
		*f = ""
		return nil
	}
	if data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*f = FlexString(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		return err
	}
	*f = FlexString(n.String())
	return nil
}

// FlexInt decodes a JSON number or numeric string into an int.
type FlexInt int

func (f *FlexInt) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || string(data) == "null" {
		*f = 0
		return nil
	}
	if data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		var n float64
		if _, err := fmt.Sscanf(s, "%f", &n); err != nil {
			*f = 0
			return nil
		}
		*f = FlexInt(int(n))
		return nil
	}
	var n float64
	if err := json.Unmarshal(data, &n); err != nil {
		return err
	}
	*f = FlexInt(int(n))
	return nil
}

func NewClient(cfg config.FeedConfig) *Client {
	return &Client{
		httpClient: &http.Client{
			Timeout: time.Duration(cfg.TimeoutSeconds) * time.Second,
		},
		cfg: cfg,
	}
}

// FetchFeed retrieves and decodes the deal feed.
func (c *Client) FetchFeed(ctx context.Context) (*Feed, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.cfg.URL, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to build feed request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch deal feed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, fmt.Errorf("deal feed returned status %d", resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read feed body: %w", err)
	}

	// Decode the envelope first so a payload where products is missing or not
	// an array fails loudly instead of silently syncing zero deals.
	var envelope struct {
		Count    int             `json:"count"`
		Products json.RawMessage `json:"products"`
	}
	if err := json.Unmarshal(body, &envelope); err != nil {
		return nil, fmt.Errorf("failed to decode feed payload: %w", err)
	}

	trimmed := bytes.TrimSpace(envelope.Products)
	if len(trimmed) == 0 || trimmed[0] != '[' {
		return nil, fmt.Errorf("malformed feed: products is not an array")
	}

	var products []RawItem
	if err := json.Unmarshal(trimmed, &products); err != nil {
		return nil, fmt.Errorf("failed to decode feed products: %w", err)
	}

	return &Feed{Count: envelope.Count, Products: products}, nil
}
