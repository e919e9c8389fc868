// internal/services/tracking_service.go
package services

import (
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/relaystation/backend/internal/models"
	"github.com/relaystation/backend/internal/utils"
)

// TrackingService records click and share events and aggregates them for the
// analytics views.
type TrackingService struct {
	db *gorm.DB
}

type TrackClickRequest struct {
	DealID    string     `json:"deal_id" validate:"required,max=64"`
	ProjectID *uuid.UUID `json:"project_id,omitempty"`
	Referrer  string     `json:"referrer,omitempty" validate:"omitempty,max=2048"`
}

type TrackShareRequest struct {
	DealID    string     `json:"deal_id" validate:"required,max=64"`
	ProjectID *uuid.UUID `json:"project_id,omitempty"`
	Platform  string     `json:"platform" validate:"required,oneof=twitter facebook line link"`
}

// DealStats is one aggregated row of the stats response.
type DealStats struct {
	DealID string `json:"deal_id"`
	Clicks int64  `json:"clicks"`
	Shares int64  `json:"shares"`
}

func NewTrackingService(db *gorm.DB) *TrackingService {
	return &TrackingService{db: db}
}

func (s *TrackingService) RecordClick(req *TrackClickRequest, ipAddress, userAgent string) error {
	if err := utils.ValidateStruct(req); err != nil {
		return fmt.Errorf("validation failed: %w", err)
	}

	event := models.ClickEvent{
		DealID:    req.DealID,
		ProjectID: req.ProjectID,
		Referrer:  req.Referrer,
		IPAddress: ipAddress,
		UserAgent: userAgent,
	}
	if err := s.db.Create(&event).Error; err != nil {
		return fmt.Errorf("failed to record click: %w", err)
	}
	return nil
}

func (s *TrackingService) RecordShare(req *TrackShareRequest) error {
	if err := utils.ValidateStruct(req); err != nil {
		return fmt.Errorf("validation failed: %w", err)
	}

	event := models.ShareEvent{
		DealID:    req.DealID,
		ProjectID: req.ProjectID,
		Platform:  models.SharePlatform(req.Platform),
	}
	if err := s.db.Create(&event).Error; err != nil {
		return fmt.Errorf("failed to record share: %w", err)
	}
	return nil
}

// GetStats aggregates click and share counts per deal, optionally scoped to
// one project.
func (s *TrackingService) GetStats(projectID *uuid.UUID, limit int) ([]DealStats, error) {
	if limit <= 0 || limit > 200 {
		limit = 50
	}

	clickQuery := s.db.Model(&models.ClickEvent{}).
		Select("deal_id, COUNT(*) AS clicks").
		Group("deal_id")
	if projectID != nil {
		clickQuery = clickQuery.Where("project_id = ?", *projectID)
	}

	var clicks []struct {
		DealID string
		Clicks int64
	}
	if err := clickQuery.Order("clicks DESC").Limit(limit).Scan(&clicks).Error; err != nil {
		return nil, fmt.Errorf("failed to aggregate clicks: %w", err)
	}

	shareQuery := s.db.Model(&models.ShareEvent{}).
		Select("deal_id, COUNT(*) AS shares").
		Group("deal_id")
	if projectID != nil {
		shareQuery = shareQuery.Where("project_id = ?", *projectID)
	}

	var shares []struct {
		DealID string
		Shares int64
	}
	if err := shareQuery.Scan(&shares).Error; err != nil {
		return nil, fmt.Errorf("failed to aggregate shares: %w", err)
	}

	shareByDeal := make(map[string]int64, len(shares))
	for _, row := range shares {
		shareByDeal[row.DealID] = row.Shares
	}

	stats := make([]DealStats, 0, len(clicks))
	seen := make(map[string]struct{}, len(clicks))
	for _, row := range clicks {
		stats = append(stats, DealStats{DealID: row.DealID, Clicks: row.Clicks, Shares: shareByDeal[row.DealID]})
		seen[row.DealID] = struct{}{}
	}
	for _, row := range shares {
		if _, ok := seen[row.DealID]; !ok {
			stats = append(stats, DealStats{DealID: row.DealID, Shares: row.Shares})
		}
	}

	return stats, nil
}
