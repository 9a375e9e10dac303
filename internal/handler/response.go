package handler

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"

	"carshare/internal/repository"
	"carshare/internal/service"
)

// ErrorResponse represents an error response. Code is a service.Kind and
// Retryable tells the client whether repeating the same call can succeed.
type ErrorResponse struct {
	Error     string `json:"error"`
	Code      string `json:"code"`
	Retryable bool   `json:"retryable"`
}

// respondError sends an error response with the appropriate HTTP status code.
func respondError(c *gin.Context, err error) {
	code := mapErrorToHTTPStatus(err)
	_ = c.Error(err)

	kind := service.KindOf(err)
	if kind == "" {
		if code == http.StatusNotFound {
			c.JSON(code, ErrorResponse{Error: "not found", Code: "NOT_FOUND"})
			return
		}
		c.JSON(code, ErrorResponse{Error: "internal server error", Code: "INTERNAL"})
		return
	}

	c.JSON(code, ErrorResponse{
		Error:     err.Error(),
		Code:      string(kind),
		Retryable: service.IsRetryable(err),
	})
}

// respondBadRequest reports a malformed request body or query.
func respondBadRequest(c *gin.Context, err error) {
	respondError(c, fmt.Errorf("%w: %v", service.ErrInvalidInput, err))
}

// respondJSON sends a JSON response with the given status code.
func respondJSON(c *gin.Context, code int, data any) {
	c.JSON(code, data)
}

// mapErrorToHTTPStatus maps service/repository errors to HTTP status codes.
func mapErrorToHTTPStatus(err error) int {
	switch service.KindOf(err) {
	case service.KindInvalidInput:
		return http.StatusBadRequest
	case service.KindUnauthenticated:
		return http.StatusUnauthorized
	case service.KindForbidden, service.KindProfileNotFound:
		return http.StatusForbidden
	case service.KindVehicleNotFound, service.KindBookingNotFound:
		return http.StatusNotFound
	case service.KindPaymentNotSucceeded:
		return http.StatusPaymentRequired
	case service.KindPaymentMismatch:
		return http.StatusConflict
	case service.KindPaymentGatewayUnavailable, service.KindPersistenceFailed:
		return http.StatusServiceUnavailable
	}

	if errors.Is(err, repository.ErrNotFound) {
		return http.StatusNotFound
	}
	return http.StatusInternalServerError
}
