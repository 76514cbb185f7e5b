package handlers

import (
	"net/http"
	"time"

	config "ekp-forecast-api/configs"
	"ekp-forecast-api/pkg/services"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"
)

// APIKeyMiddleware требует совпадения X-API-KEY с apiKey. Пустой ключ отключает проверку.
func APIKeyMiddleware(apiKey string) gin.HandlerFunc {
	return func(c *gin.Context) {
		if apiKey == "" {
			c.Next()
			return
		}
		if c.GetHeader("X-API-KEY") != apiKey {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"success": false, "error": "Unauthorized"})
			return
		}
		c.Next()
	}
}

func corsMiddleware(origins []string) gin.HandlerFunc {
	corsConfig := cors.DefaultConfig()
	corsConfig.AllowHeaders = append(corsConfig.AllowHeaders, "X-API-KEY")
	allowAll := len(origins) == 0
	for _, origin := range origins {
		if origin == "*" {
			allowAll = true
		}
	}
	if allowAll {
		corsConfig.AllowAllOrigins = true
	} else {
		corsConfig.AllowOrigins = origins
	}
	return cors.New(corsConfig)
}

// NewRouter инициализирует сервисы, middleware и маршруты.
func NewRouter(cfg *config.Config, settings *config.ForecastSettings) *gin.Engine {
	if settings == nil {
		settings = config.DefaultForecastSettings()
	}

	var forecastOpts []services.ForecastOption
	if settings.NoiseSeed != 0 {
		forecastOpts = append(forecastOpts, services.WithSeed(settings.NoiseSeed))
	}
	forecastService := services.NewForecastService(forecastOpts...)

	loc, err := time.LoadLocation(cfg.Timezone)
	if err != nil {
		log.Warn().Err(err).Str("timezone", cfg.Timezone).Msg("unknown timezone, using UTC")
		loc = time.UTC
	}
	monitoringService := services.NewMonitoringService(loc, "/api/v1/monitoring", "/api/v1/admin", "/health")

	forecastHandler := NewForecastHandler(forecastService, services.NewImportService(), settings, cfg.MaxUploadMB)
	monitoringHandler := NewMonitoringHandler(monitoringService)
	adminHandler := NewAdminHandler()

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(monitoringService.Middleware())
	r.Use(corsMiddleware(cfg.CORSAllowOrigins))

	r.GET("/health", HealthCheck)

	v1 := r.Group("/api/v1")
	v1.Use(APIKeyMiddleware(cfg.APIKey))
	{
		forecast := v1.Group("/forecast")
		{
			forecast.POST("/predict", forecastHandler.Predict)
			forecast.POST("/confidence", forecastHandler.Confidence)
			forecast.POST("/events", forecastHandler.ForecastEvents)
			forecast.POST("/import", forecastHandler.ImportFile)
			forecast.GET("/settings", forecastHandler.GetSettings)
		}

		monitoring := v1.Group("/monitoring")
		{
			monitoring.GET("/logs", monitoringHandler.GetLogs)
		}

		admin := v1.Group("/admin")
		{
			admin.GET("/health-status", adminHandler.GetHealthStatus)
			admin.POST("/maintenance/start", adminHandler.StartMaintenance)
			admin.POST("/maintenance/stop", adminHandler.StopMaintenance)
		}
	}

	return r
}
