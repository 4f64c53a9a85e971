package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/qtota/offer-service/internal/database"
)

// HealthResponse represents the health check response
type HealthResponse struct {
	Status   string `json:"status"`
	Database string `json:"database"`
	Snapshot string `json:"snapshot"`
}

// HealthCheck handles the health check endpoint
func HealthCheck(c *gin.Context) {
	response := HealthResponse{
		Status: "ok",
	}
	healthy := true

	// Check database connection
	if database.Pool() != nil {
		if err := database.Status(c.Request.Context()); err != nil {
			response.Database = "disconnected"
			healthy = false
		} else {
			response.Database = "connected"
		}
	} else {
		response.Database = "not configured"
	}

	// Check the snapshot cache
	if snapshotCache != nil {
		if snapshotCache.IsHealthy() {
			response.Snapshot = "ready"
		} else {
			response.Snapshot = "unavailable"
			healthy = false
		}
	} else {
		response.Snapshot = "not configured"
	}

	if !healthy {
		response.Status = "degraded"
		c.JSON(http.StatusServiceUnavailable, response)
		return
	}
	c.JSON(http.StatusOK, response)
}
