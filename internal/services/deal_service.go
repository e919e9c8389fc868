// internal/services/deal_service.go
package services

import (
	"errors"
	"fmt"
	"strings"

	"gorm.io/gorm"

	"github.com/relaystation/backend/internal/models"
	"github.com/relaystation/backend/internal/utils"
)

// DealService is the read surface the dashboard consumes. All writes to the
// deals table go through the sync pipeline and the verifier.
type DealService struct {
	db *gorm.DB
}

type DealSearchParams struct {
	utils.PaginationParams
	InStock     *bool `json:"in_stock,omitempty"`
	ImageReady  *bool `json:"image_ready,omitempty"`
	MinDiscount *int  `json:"min_discount,omitempty"`
}

func NewDealService(db *gorm.DB) *DealService {
	return &DealService{db: db}
}

func (s *DealService) SearchDeals(params DealSearchParams) ([]models.Deal, int64, error) {
	query := s.db.Model(&models.Deal{})

	if params.Category != "" {
		query = query.Where("category = ?", params.Category)
	}

	if params.Search != "" {
		searchTerm := "%" + strings.ToLower(params.Search) + "%"
		query = query.Where("LOWER(title) LIKE ? OR LOWER(description) LIKE ?", searchTerm, searchTerm)
	}

	if params.InStock != nil {
		query = query.Where("in_stock = ?", *params.InStock)
	}

	if params.ImageReady != nil {
		query = query.Where("image_ready = ?", *params.ImageReady)
	}

	if params.MinDiscount != nil {
		query = query.Where("discount >= ?", *params.MinDiscount)
	}

	// Get total count
	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to count deals: %w", err)
	}

	// Apply sorting
	allowedSortFields := []string{"fetched_at", "posted_at", "price", "discount", "title"}
	if params.Sort == "" || params.Sort == "created_at" {
		params.Sort = "fetched_at"
	}
	query = utils.ApplySort(query, params.PaginationParams, allowedSortFields)

	// Apply pagination
	query = utils.ApplyPagination(query, params.PaginationParams)

	var deals []models.Deal
	if err := query.Find(&deals).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to fetch deals: %w", err)
	}

	return deals, total, nil
}

func (s *DealService) GetDeal(id string) (*models.Deal, error) {
	var deal models.Deal
	if err := s.db.First(&deal, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errors.New("deal not found")
		}
		return nil, fmt.Errorf("database error: %w", err)
	}
	return &deal, nil
}

func (s *DealService) GetPriceHistory(dealID string) ([]models.DealPriceHistory, error) {
	var deal models.Deal
	if err := s.db.Select("id").First(&deal, "id = ?", dealID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errors.New("deal not found")
		}
		return nil, fmt.Errorf("database error: %w", err)
	}

	var history []models.DealPriceHistory
	if err := s.db.Where("deal_id = ?", dealID).
		Order("created_at ASC").Find(&history).Error; err != nil {
		return nil, fmt.Errorf("failed to fetch price history: %w", err)
	}
	return history, nil
}
