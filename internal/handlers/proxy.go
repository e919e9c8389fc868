// internal/handlers/proxy.go
package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/relaystation/backend/internal/config"
	"github.com/relaystation/backend/internal/services"
	"github.com/relaystation/backend/internal/ssrf"
)

// ProxyHandler relays product images through the SSRF allow-list for client
// <img> fallbacks. Validation failures answer in plain text; everything past
// validation answers 200 with either the image or a placeholder SVG.
type ProxyHandler struct {
	proxyService *services.ProxyService
	cfg          config.ProxyConfig
}

func NewProxyHandler(proxyService *services.ProxyService, cfg *config.Config) *ProxyHandler {
	return &ProxyHandler{
		proxyService: proxyService,
		cfg:          cfg.Proxy,
	}
}

// GET /image-proxy?url=...
func (h *ProxyHandler) ProxyImage(c *gin.Context) {
	raw := c.Query("url")
	if raw == "" {
		c.String(http.StatusBadRequest, "Missing url parameter")
		return
	}

	target, err := ssrf.ValidateTarget(raw, h.cfg.MaxURLLength)
	if err != nil {
		if errors.Is(err, ssrf.ErrForbiddenTarget) {
			c.String(http.StatusForbidden, "Target host is not allowed")
			return
		}
		c.String(http.StatusBadRequest, "Invalid url parameter")
		return
	}

	image := h.proxyService.FetchProductImage(c.Request.Context(), target)
	defer image.Close()

	c.Header("Cache-Control", image.CacheControl)
	c.DataFromReader(http.StatusOK, image.ContentLength, image.ContentType, image.Body, nil)
}
