// internal/handlers/tracking.go
package handlers

import (
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/relaystation/backend/internal/services"
	"github.com/relaystation/backend/internal/utils"
)

type TrackingHandler struct {
	trackingService *services.TrackingService
}

func NewTrackingHandler(trackingService *services.TrackingService) *TrackingHandler {
	return &TrackingHandler{trackingService: trackingService}
}

// POST /track/click
func (h *TrackingHandler) TrackClick(c *gin.Context) {
	var req services.TrackClickRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.BadRequestResponse(c, "Invalid request body", err.Error())
		return
	}

	if err := h.trackingService.RecordClick(&req, c.ClientIP(), c.Request.UserAgent()); err != nil {
		if strings.Contains(err.Error(), "validation") {
			utils.BadRequestResponse(c, err.Error(), nil)
			return
		}
		utils.InternalErrorResponse(c, err.Error())
		return
	}

	utils.CreatedResponse(c, gin.H{
		"message": "Click recorded",
	})
}

// POST /track/share
func (h *TrackingHandler) TrackShare(c *gin.Context) {
	var req services.TrackShareRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.BadRequestResponse(c, "Invalid request body", err.Error())
		return
	}

	if err := h.trackingService.RecordShare(&req); err != nil {
		if strings.Contains(err.Error(), "validation") {
			utils.BadRequestResponse(c, err.Error(), nil)
			return
		}
		utils.InternalErrorResponse(c, err.Error())
		return
	}

	utils.CreatedResponse(c, gin.H{
		"message": "Share recorded",
	})
}

// GET /track/stats
func (h *TrackingHandler) GetStats(c *gin.Context) {
	var projectID *uuid.UUID
	if projectIDStr := c.Query("project_id"); projectIDStr != "" {
		if parsed, err := uuid.Parse(projectIDStr); err == nil {
			projectID = &parsed
		} else {
			utils.BadRequestResponse(c, "Invalid project ID", nil)
			return
		}
	}

	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "50"))

	stats, err := h.trackingService.GetStats(projectID, limit)
	if err != nil {
		utils.InternalErrorResponse(c, err.Error())
		return
	}

	utils.SuccessResponse(c, gin.H{
		"stats": stats,
	})
}
