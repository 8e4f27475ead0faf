package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// HealthResponse is the fixed liveness payload.
type HealthResponse struct {
	Status  string `json:"status" example:"healthy"`
	Message string `json:"message" example:"Server is running"`
}

// Health godoc
// @ID          health
// @Summary     Liveness probe
// @Tags        Health
// @Produce     json
// @Success     200  {object} handlers.HealthResponse
// @Router      /health [get]
func Health(c *gin.Context) {
	ok(c, http.StatusOK, HealthResponse{Status: "healthy", Message: "Server is running"})
}
