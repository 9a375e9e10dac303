package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"carshare/internal/domain"
	"carshare/internal/middleware"
	"carshare/internal/service"
)

// VehicleHandler handles administrative vehicle requests.
type VehicleHandler struct {
	vehicleService *service.VehicleService
}

// NewVehicleHandler creates a new VehicleHandler.
func NewVehicleHandler(vehicleService *service.VehicleService) *VehicleHandler {
	return &VehicleHandler{vehicleService: vehicleService}
}

// UpdateRateCard handles PUT /v1/admin/vehicles/:id/rate-card
func (h *VehicleHandler) UpdateRateCard(c *gin.Context) {
	var body RateCardBody
	if err := c.ShouldBindJSON(&body); err != nil {
		respondBadRequest(c, err)
		return
	}

	caller, _ := middleware.CallerFromContext(c)
	rc := domain.RateCard{
		DailyRate:     body.DailyRate,
		HourlyRate:    body.HourlyRate,
		PerKmRate:     body.PerKmRate,
		DepositAmount: body.DepositAmount,
	}

	if err := h.vehicleService.UpdateRateCard(c.Request.Context(), caller, c.Param("id"), rc); err != nil {
		respondError(c, err)
		return
	}

	respondJSON(c, http.StatusOK, body)
}
