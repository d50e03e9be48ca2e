package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sharadkumardubey/billify-trip-generator/internal/models"
)

// RegisterBusiness handles POST /api/v1/business
func (h *Handlers) RegisterBusiness(c *gin.Context) {
	var req models.CreateBusinessRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}

	profile, err := h.businessService.Register(c.Request.Context(), session(c), &req)
	if err != nil {
		handleError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"business":  profile,
		"next_step": models.NextStepCreateInvoice,
	})
}

// GetBusiness handles GET /api/v1/business
func (h *Handlers) GetBusiness(c *gin.Context) {
	profile, err := h.businessService.Get(c.Request.Context(), session(c))
	if err != nil {
		handleError(c, err)
		return
	}

	c.JSON(http.StatusOK, profile)
}
