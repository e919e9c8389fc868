// internal/services/admin_service.go
package services

import (
	"fmt"

	"gorm.io/gorm"

	"github.com/relaystation/backend/internal/models"
)

// AdminService exposes the operational read views: category rules and cron
// job health.
type AdminService struct {
	db *gorm.DB
}

func NewAdminService(db *gorm.DB) *AdminService {
	return &AdminService{db: db}
}

func (s *AdminService) ListCategoryRules() ([]models.CategoryRule, error) {
	var rules []models.CategoryRule
	if err := s.db.Order("priority ASC").Find(&rules).Error; err != nil {
		return nil, fmt.Errorf("failed to fetch category rules: %w", err)
	}
	return rules, nil
}

func (s *AdminService) GetCronHealth() ([]models.CronJobHealth, error) {
	var jobs []models.CronJobHealth
	if err := s.db.Order("job_name ASC").Find(&jobs).Error; err != nil {
		return nil, fmt.Errorf("failed to fetch cron health: %w", err)
	}
	return jobs, nil
}
