package api

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
)

const healthMessage = "TríTuệMarket API is running"

type HealthResponse struct {
	Status    string `json:"status"`
	Message   string `json:"message"`
	Timestamp string `json:"timestamp"`
}

// Health godoc
// @Summary Liveness check
// @Tags health
// @Produce json
// @Success 200 {object} HealthResponse
// @Router /health [get]
func Health(c *gin.Context) {
	c.JSON(http.StatusOK, HealthResponse{
		Status:    "ok",
		Message:   healthMessage,
		Timestamp: time.Now().UTC().Format("2006-01-02T15:04:05.000Z"),
	})
}
