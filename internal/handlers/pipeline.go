// internal/handlers/pipeline.go
package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/relaystation/backend/internal/config"
	"github.com/relaystation/backend/internal/services"
	"github.com/relaystation/backend/internal/utils"
)

// PipelineHandler exposes the sync and image-verification triggers invoked
// by cron and the admin dashboard.
type PipelineHandler struct {
	syncService   *services.SyncService
	verifyService *services.VerifyService
	verifierCfg   config.VerifierConfig
}

func NewPipelineHandler(syncService *services.SyncService, verifyService *services.VerifyService, cfg *config.Config) *PipelineHandler {
	return &PipelineHandler{
		syncService:   syncService,
		verifyService: verifyService,
		verifierCfg:   cfg.Verifier,
	}
}

// POST /sync-deals
func (h *PipelineHandler) SyncDeals(c *gin.Context) {
	result, err := h.syncService.SyncDeals(c.Request.Context())
	if err != nil {
		utils.InternalErrorResponse(c, err.Error())
		return
	}

	utils.SuccessResponse(c, gin.H{
		"message": "Deals synced successfully",
		"count":   result.Synced,
		"details": result,
	})
}

// POST /verify-deal-images
func (h *PipelineHandler) VerifyDealImages(c *gin.Context) {
	var params services.VerifyParams
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&params); err != nil {
			utils.BadRequestResponse(c, "Invalid request body", err.Error())
			return
		}
	}

	if validationErrors := utils.GetValidationErrors(utils.ValidateStruct(&params)); len(validationErrors) > 0 {
		utils.ValidationErrorResponse(c, validationErrors)
		return
	}

	// Dashboard-triggered runs get the larger manual batch unless the caller
	// sized the batch explicitly.
	if params.BatchSize == 0 && c.GetString("sync_caller") == "admin" {
		params.BatchSize = h.verifierCfg.ManualBatchSize
	}

	outcome, err := h.verifyService.VerifyBatch(c.Request.Context(), params)
	if err != nil {
		utils.InternalErrorResponse(c, err.Error())
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message":    outcome.Message,
		"processed":  outcome.Processed,
		"verified":   outcome.Verified,
		"need_retry": outcome.NeedRetry,
		"results":    outcome.Results,
	})
}

// POST /admin/deals/:id/retry-image
func (h *PipelineHandler) RetryDealImage(c *gin.Context) {
	dealID := c.Param("id")
	if dealID == "" {
		utils.BadRequestResponse(c, "Missing deal ID", nil)
		return
	}

	outcome, err := h.verifyService.ResetAndVerify(c.Request.Context(), dealID)
	if err != nil {
		if err.Error() == "deal not found" {
			utils.NotFoundResponse(c, "Deal not found")
			return
		}
		utils.InternalErrorResponse(c, err.Error())
		return
	}

	utils.SuccessResponse(c, outcome)
}
