package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"carshare/internal/middleware"
	"carshare/internal/service"
)

// UserHandler handles HTTP requests about the caller.
type UserHandler struct{}

// NewUserHandler creates a new UserHandler.
func NewUserHandler() *UserHandler {
	return &UserHandler{}
}

// MeResponse is the HTTP response for the resolved caller.
type MeResponse struct {
	UserID     string  `json:"user_id"`
	Role       string  `json:"role"`
	IsVerified bool    `json:"is_verified"`
	Email      *string `json:"email,omitempty"`
}

// Me handles GET /v1/me
func (h *UserHandler) Me(c *gin.Context) {
	caller, ok := middleware.CallerFromContext(c)
	if !ok {
		respondError(c, service.ErrUnauthenticated)
		return
	}

	c.JSON(http.StatusOK, MeResponse{
		UserID:     caller.UserID,
		Role:       string(caller.Role),
		IsVerified: caller.IsVerified,
		Email:      caller.Email,
	})
}
