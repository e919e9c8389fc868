// internal/handlers/admin.go
package handlers

import (
	"github.com/gin-gonic/gin"

	"github.com/relaystation/backend/internal/services"
	"github.com/relaystation/backend/internal/utils"
)

type AdminHandler struct {
	adminService *services.AdminService
}

func NewAdminHandler(adminService *services.AdminService) *AdminHandler {
	return &AdminHandler{adminService: adminService}
}

// GET /admin/category-rules
func (h *AdminHandler) GetCategoryRules(c *gin.Context) {
	rules, err := h.adminService.ListCategoryRules()
	if err != nil {
		utils.InternalErrorResponse(c, err.Error())
		return
	}

	utils.SuccessResponse(c, gin.H{
		"category_rules": rules,
	})
}

// GET /admin/cron-health
func (h *AdminHandler) GetCronHealth(c *gin.Context) {
	jobs, err := h.adminService.GetCronHealth()
	if err != nil {
		utils.InternalErrorResponse(c, err.Error())
		return
	}

	utils.SuccessResponse(c, gin.H{
		"jobs": jobs,
	})
}
