package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"carshare/internal/service"
)

// PaymentHandler handles HTTP requests for payments.
type PaymentHandler struct {
	paymentService *service.PaymentService
}

// NewPaymentHandler creates a new PaymentHandler.
func NewPaymentHandler(paymentService *service.PaymentService) *PaymentHandler {
	return &PaymentHandler{paymentService: paymentService}
}

// PaymentIntentResponse is the HTTP response for a created payment intent.
type PaymentIntentResponse struct {
	PaymentIntentID string            `json:"payment_intent_id"`
	ClientSecret    string            `json:"client_secret"`
	Amount          int64             `json:"amount"`
	Currency        string            `json:"currency"`
	Breakdown       BreakdownResponse `json:"breakdown"`
}

// CreateIntent handles POST /v1/payments/intent
func (h *PaymentHandler) CreateIntent(c *gin.Context) {
	var req RentalRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, err)
		return
	}

	result, err := h.paymentService.CreateIntent(c.Request.Context(), service.CreateIntentRequest{
		VehicleID:     req.VehicleID,
		DurationHours: req.Hours,
		DistanceKm:    req.DistanceKm,
	})
	if err != nil {
		respondError(c, err)
		return
	}

	respondJSON(c, http.StatusCreated, PaymentIntentResponse{
		PaymentIntentID: result.IntentID,
		ClientSecret:    result.ClientSecret,
		Amount:          result.Amount,
		Currency:        result.Currency,
		Breakdown:       toBreakdownResponse(result.Breakdown),
	})
}
