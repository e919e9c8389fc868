// internal/handlers/deal.go
package handlers

import (
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/relaystation/backend/internal/services"
	"github.com/relaystation/backend/internal/utils"
)

type DealHandler struct {
	dealService *services.DealService
}

func NewDealHandler(dealService *services.DealService) *DealHandler {
	return &DealHandler{dealService: dealService}
}

// GET /deals
func (h *DealHandler) GetDeals(c *gin.Context) {
	params := services.DealSearchParams{
		PaginationParams: utils.GetPaginationParams(c),
	}

	if inStockStr := c.Query("in_stock"); inStockStr != "" {
		if inStock, err := strconv.ParseBool(inStockStr); err == nil {
			params.InStock = &inStock
		}
	}

	if imageReadyStr := c.Query("image_ready"); imageReadyStr != "" {
		if imageReady, err := strconv.ParseBool(imageReadyStr); err == nil {
			params.ImageReady = &imageReady
		}
	}

	if minDiscountStr := c.Query("min_discount"); minDiscountStr != "" {
		if minDiscount, err := strconv.Atoi(minDiscountStr); err == nil {
			params.MinDiscount = &minDiscount
		}
	}

	deals, total, err := h.dealService.SearchDeals(params)
	if err != nil {
		utils.InternalErrorResponse(c, err.Error())
		return
	}

	result := utils.CreatePaginationResult(deals, total, params.PaginationParams)
	utils.PaginatedResponse(c, result)
}

// GET /deals/:id
func (h *DealHandler) GetDeal(c *gin.Context) {
	deal, err := h.dealService.GetDeal(c.Param("id"))
	if err != nil {
		if strings.Contains(err.Error(), "not found") {
			utils.NotFoundResponse(c, "Deal not found")
			return
		}
		utils.InternalErrorResponse(c, err.Error())
		return
	}

	utils.SuccessResponse(c, gin.H{
		"deal": deal,
	})
}

// GET /deals/:id/price-history
func (h *DealHandler) GetPriceHistory(c *gin.Context) {
	history, err := h.dealService.GetPriceHistory(c.Param("id"))
	if err != nil {
		if strings.Contains(err.Error(), "not found") {
			utils.NotFoundResponse(c, "Deal not found")
			return
		}
		utils.InternalErrorResponse(c, err.Error())
		return
	}

	utils.SuccessResponse(c, gin.H{
		"price_history": history,
	})
}
