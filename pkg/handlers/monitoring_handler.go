package handlers

import (
	"net/http"

	"ekp-forecast-api/pkg/services"

	"github.com/gin-gonic/gin"
)

// MonitoringHandler обслуживает дашборд журнала запросов.
type MonitoringHandler struct {
	service *services.MonitoringService
}

// NewMonitoringHandler создаёт новый MonitoringHandler.
func NewMonitoringHandler(service *services.MonitoringService) *MonitoringHandler {
	return &MonitoringHandler{service: service}
}

// GetLogs возвращает статистику запросов за period=1h|24h|7d (по умолчанию 24h).
func (h *MonitoringHandler) GetLogs(c *gin.Context) {
	hours := 24
	switch c.DefaultQuery("period", "24h") {
	case "1h":
		hours = 1
	case "7d":
		hours = 24 * 7
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    h.service.GetDashboardData(hours),
	})
}
