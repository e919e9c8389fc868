// internal/feed/client_test.go
package feed

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/relaystation/backend/internal/config"
)

func newTestClient(url string) *Client {
	return NewClient(config.FeedConfig{URL: url, TimeoutSeconds: 5})
}

func TestFetchFeedSuccess(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodGet, r.Method)
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{
			"count": 2,
			"products": [
				{"title": "Cable", "price": "$8.99", "original_price": 19.99, "url": "https://www.amazon.com/dp/B07XYZ1234"},
				{"title": "Pot", "price": 34.5, "reviewCount": "1,024"}
			]
		}`))
	}))
	defer server.Close()

	feed, err := newTestClient(server.URL).FetchFeed(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 2, feed.Count)
	require.Len(t, feed.Products, 2)
	assert.Equal(t, "Cable", feed.Products[0].Title)
	assert.Equal(t, FlexString("$8.99"), feed.Products[0].Price)
	assert.Equal(t, FlexString("19.99"), feed.Products[0].OriginalPrice)
	assert.Equal(t, FlexString("34.5"), feed.Products[1].Price)
}

func TestFetchFeedServerError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer server.Close()

	_, err := newTestClient(server.URL).FetchFeed(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "502")
}

func TestFetchFeedMalformedProducts(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{"products is an object", `{"count": 1, "products": {"title": "x"}}`},
		{"products is a string", `{"count": 1, "products": "oops"}`},
		{"products missing", `{"count": 0}`},
		{"not json at all", `<html>error</html>`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.Write([]byte(tt.body))
			}))
			defer server.Close()

			_, err := newTestClient(server.URL).FetchFeed(context.Background())
			assert.Error(t, err)
		})
	}
}

func TestFetchFeedEmptyProducts(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"count": 0, "products": []}`))
	}))
	defer server.Close()

	feed, err := newTestClient(server.URL).FetchFeed(context.Background())
	require.NoError(t, err)
	assert.Empty(t, feed.Products)
}

func TestFetchFeedUnreachable(t *testing.T) {
	_, err := newTestClient("http://127.0.0.1:1/feed").FetchFeed(context.Background())
	assert.Error(t, err)
}

func TestFlexStringUnmarshal(t *testing.T) {
	var item struct {
		Price FlexString `json:"price"`
	}

	require.NoError(t, json.Unmarshal([]byte(`{"price": "$8.99"}`), &item))
	assert.Equal(t, FlexString("$8.99"), item.Price)

	require.NoError(t, json.Unmarshal([]byte(`{"price": 8.99}`), &item))
	assert.Equal(t, FlexString("8.99"), item.Price)

	require.NoError(t, json.Unmarshal([]byte(`{"price": null}`), &item))
	assert.Equal(t, FlexString(""), item.Price)
}

func TestFlexIntUnmarshal(t *testing.T) {
	var item struct {
		Reviews FlexInt `json:"reviews"`
	}

	require.NoError(t, json.Unmarshal([]byte(`{"reviews": 1024}`), &item))
	assert.Equal(t, FlexInt(1024), item.Reviews)

	require.NoError(t, json.Unmarshal([]byte(`{"reviews": "512"}`), &item))
	assert.Equal(t, FlexInt(512), item.Reviews)

	require.NoError(t, json.Unmarshal([]byte(`{"reviews": 4.0}`), &item))
	assert.Equal(t, FlexInt(4), item.Reviews)

	require.NoError(t, json.Unmarshal([]byte(`{"reviews": "n/a"}`), &item))
	assert.Equal(t, FlexInt(0), item.Reviews)
}
