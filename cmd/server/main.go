package main

import (
	"os"

	config "ekp-forecast-api/configs"
	"ekp-forecast-api/pkg/handlers"
	"ekp-forecast-api/pkg/logging"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"github.com/rs/zerolog/log"
)

func main() {
	envErr := godotenv.Load()

	cfg := config.LoadConfig()
	if err := logging.Setup(cfg.LogLevel, cfg.LogFormat, os.Stdout); err != nil {
		log.Fatal().Err(err).Msg("configure logger")
	}
	if envErr != nil {
		log.Warn().Err(envErr).Msg(".env file not found or could not be loaded")
	}
	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}

	settings, err := config.LoadForecastSettings(cfg.ForecastSettingsPath)
	if err != nil {
		log.Fatal().Err(err).Msg("load forecast settings")
	}

	r := handlers.NewRouter(cfg, settings)

	log.Info().
		Str("port", cfg.Port).
		Str("environment", cfg.Environment).
		Int("default_horizon_months", settings.DefaultHorizonMonths).
		Msg("starting forecast API")
	if err := r.Run(":" + cfg.Port); err != nil {
		log.Fatal().Err(err).Msg("server stopped")
	}
}
