package handlers

import (
	"net/http"
	"sync/atomic"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"
)

// maintenanceMode показывает, находится ли сервер в режиме обслуживания.
// Общий для проверки здоровья и админских эндпоинтов.
var maintenanceMode atomic.Bool

// AdminHandler обрабатывает операции администратора. Доступ защищён проверкой
// API-ключа на группе маршрутов admin.
type AdminHandler struct{}

// NewAdminHandler создаёт новый AdminHandler.
func NewAdminHandler() *AdminHandler {
	return &AdminHandler{}
}

// StartMaintenance включает режим обслуживания.
func (h *AdminHandler) StartMaintenance(c *gin.Context) {
	maintenanceMode.Store(true)
	log.Warn().Str("client_ip", c.ClientIP()).Msg("maintenance mode started")
	c.JSON(http.StatusOK, gin.H{"success": true, "message": "Режим обслуживания включен"})
}

// StopMaintenance выключает режим обслуживания.
func (h *AdminHandler) StopMaintenance(c *gin.Context) {
	maintenanceMode.Store(false)
	log.Info().Str("client_ip", c.ClientIP()).Msg("maintenance mode stopped")
	c.JSON(http.StatusOK, gin.H{"success": true, "message": "Режим обслуживания выключен"})
}

// GetHealthStatus возвращает текущее состояние сервера.
func (h *AdminHandler) GetHealthStatus(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"success": true, "data": gin.H{"maintenance": maintenanceMode.Load()}})
}

// HealthCheck отвечает на запросы внешних проверок (например, балансировщика).
func HealthCheck(c *gin.Context) {
	if maintenanceMode.Load() {
		c.JSON(http.StatusServiceUnavailable, gin.H{"status": "unavailable", "message": "Сервис на обслуживании"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}
