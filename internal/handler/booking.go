package handler

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/samber/lo"

	"carshare/internal/domain"
	"carshare/internal/middleware"
	"carshare/internal/service"
)

// BookingHandler handles HTTP requests for bookings.
type BookingHandler struct {
	bookingService *service.BookingService
}

// NewBookingHandler creates a new BookingHandler.
func NewBookingHandler(bookingService *service.BookingService) *BookingHandler {
	return &BookingHandler{bookingService: bookingService}
}

// ConfirmBookingRequest is the HTTP request body for confirming a booking.
type ConfirmBookingRequest struct {
	PaymentIntentID string `json:"payment_intent_id" binding:"required"`
	RentalRequest
	StartAt     *time.Time `json:"start_at"`
	PickupPoint string     `json:"pickup_point"`
}

// ListBookingsQuery is the query string of GET /v1/bookings.
type ListBookingsQuery struct {
	UserID string `form:"user_id"`
	Status string `form:"status"`
	Limit  uint64 `form:"limit"`
	Offset uint64 `form:"offset"`
}

// Confirm handles POST /v1/bookings/confirm
func (h *BookingHandler) Confirm(c *gin.Context) {
	var req ConfirmBookingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, err)
		return
	}

	caller, _ := middleware.CallerFromContext(c)

	confirm := service.ConfirmBookingRequest{
		PaymentIntentID: req.PaymentIntentID,
		VehicleID:       req.VehicleID,
		DurationHours:   req.Hours,
		DistanceKm:      req.DistanceKm,
		PickupPoint:     req.PickupPoint,
	}
	if req.StartAt != nil {
		confirm.StartAt = req.StartAt.UTC()
	}

	booking, err := h.bookingService.ConfirmBooking(c.Request.Context(), caller, confirm)
	if err != nil {
		respondError(c, err)
		return
	}

	respondJSON(c, http.StatusOK, toBookingResponse(booking))
}

// GetBooking handles GET /v1/bookings/:id
func (h *BookingHandler) GetBooking(c *gin.Context) {
	caller, _ := middleware.CallerFromContext(c)

	booking, err := h.bookingService.GetBooking(c.Request.Context(), caller, c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}

	respondJSON(c, http.StatusOK, toBookingResponse(booking))
}

// List handles GET /v1/bookings
func (h *BookingHandler) List(c *gin.Context) {
	var q ListBookingsQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		respondBadRequest(c, err)
		return
	}

	caller, _ := middleware.CallerFromContext(c)

	bookings, err := h.bookingService.ListBookings(c.Request.Context(), caller, service.ListBookingsRequest{
		UserID: q.UserID,
		Status: domain.BookingStatus(q.Status),
		Limit:  q.Limit,
		Offset: q.Offset,
	})
	if err != nil {
		respondError(c, err)
		return
	}

	respondJSON(c, http.StatusOK, lo.Map(bookings, func(b *domain.Booking, _ int) BookingResponse {
		return toBookingResponse(b)
	}))
}
