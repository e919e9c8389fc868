// internal/services/proxy_service.go
package services

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/relaystation/backend/internal/config"
	"github.com/relaystation/backend/internal/scrape"
)

const (
	imageCacheControl       = "public, max-age=86400"
	placeholderCacheControl = "public, max-age=300"
)

// placeholderSVG renders in any <img> tag when extraction or the upstream
// fetch fails; the proxy answers 200 with it rather than erroring so client
// images always display something.
const placeholderSVG = `<svg xmlns="http://www.w3.org/2000/svg" width="400" height="400" viewBox="0 0 400 400">
  <rect width="400" height="400" fill="#f3f4f6"/>
  <text x="200" y="190" font-family="sans-serif" font-size="20" fill="#9ca3af" text-anchor="middle">Image</text>
  <text x="200" y="220" font-family="sans-serif" font-size="20" fill="#9ca3af" text-anchor="middle">unavailable</text>
</svg>`

// ProxyService fetches a product page through the SSRF allow-list, extracts
// the best product image URL, and relays the image bytes.
type ProxyService struct {
	cfg        config.ProxyConfig
	httpClient *http.Client
}

// ProxyImage is a relayed image (or the generated placeholder) ready to
// stream to the client.
type ProxyImage struct {
	ContentType   string
	CacheControl  string
	ContentLength int64
	Body          io.Reader
	closer        io.Closer
}

// Close releases the upstream response body, when there is one.
func (p *ProxyImage) Close() {
	if p.closer != nil {
		p.closer.Close()
	}
}

func NewProxyService(cfg *config.Config) *ProxyService {
	return &ProxyService{
		cfg: cfg.Proxy,
		httpClient: &http.Client{
			Timeout: time.Duration(cfg.Proxy.FetchTimeoutSeconds) * time.Second,
		},
	}
}

// FetchProductImage resolves and relays the product image behind target. It
// never returns an error: every failure path degrades to the placeholder.
// The caller must Close the returned image.
func (s *ProxyService) FetchProductImage(ctx context.Context, target *url.URL) *ProxyImage {
	html, err := s.fetchPage(ctx, target.String())
	if err != nil {
		logrus.WithError(err).WithField("url", target.String()).Debug("Proxy page fetch failed")
		return s.placeholder()
	}

	imageURL := scrape.ExtractProxyImage(html)
	if imageURL == "" {
		logrus.WithField("url", target.String()).Debug("No image found on product page")
		return s.placeholder()
	}

	image, err := s.fetchImage(ctx, imageURL)
	if err != nil {
		logrus.WithError(err).WithField("image_url", imageURL).Debug("Proxy image fetch failed")
		return s.placeholder()
	}
	return image
}

func (s *ProxyService) fetchPage(ctx context.Context, pageURL string) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, pageURL, nil)
	if err != nil {
		return "", err
	}
	req.Header.Set("User-Agent", s.cfg.UserAgent)
	req.Header.Set("Accept", "text/html,application/xhtml+xml")
	req.Header.Set("Accept-Language", "en-US,en;q=0.9")

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return "", fmt.Errorf("product page returned status %d", resp.StatusCode)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, 4<<20))
	if err != nil {
		return "", err
	}
	return string(body), nil
}

func (s *ProxyService) fetchImage(ctx context.Context, imageURL string) (*ProxyImage, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, imageURL, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("User-Agent", s.cfg.UserAgent)

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return nil, err
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		resp.Body.Close()
		return nil, fmt.Errorf("image fetch returned status %d", resp.StatusCode)
	}

	contentType := resp.Header.Get("Content-Type")
	if contentType == "" {
		contentType = "image/jpeg"
	}

	return &ProxyImage{
		ContentType:   contentType,
		CacheControl:  imageCacheControl,
		ContentLength: resp.ContentLength,
		Body:          resp.Body,
		closer:        resp.Body,
	}, nil
}

func (s *ProxyService) placeholder() *ProxyImage {
	return &ProxyImage{
		ContentType:   "image/svg+xml",
		CacheControl:  placeholderCacheControl,
		ContentLength: int64(len(placeholderSVG)),
		Body:          strings.NewReader(placeholderSVG),
	}
}
