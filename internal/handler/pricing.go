package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"carshare/internal/service"
)

// PricingHandler serves price previews.
type PricingHandler struct {
	pricingService *service.PricingService
}

// NewPricingHandler creates a new PricingHandler.
func NewPricingHandler(pricingService *service.PricingService) *PricingHandler {
	return &PricingHandler{pricingService: pricingService}
}

// Quote handles POST /v1/pricing/quote
func (h *PricingHandler) Quote(c *gin.Context) {
	var req RentalRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, err)
		return
	}

	breakdown, err := h.pricingService.Quote(c.Request.Context(), service.QuoteRequest{
		VehicleID:     req.VehicleID,
		DurationHours: req.Hours,
		DistanceKm:    req.DistanceKm,
	})
	if err != nil {
		respondError(c, err)
		return
	}

	respondJSON(c, http.StatusOK, toBreakdownResponse(*breakdown))
}
