package handler

import (
	"net/http"
	"os"
	"sync"

	config "ekp-forecast-api/configs"
	"ekp-forecast-api/pkg/handlers"
	"ekp-forecast-api/pkg/logging"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"
)

var (
	app  *gin.Engine
	once sync.Once
)

// setupApp инициализирует роутер один раз на экземпляр serverless-функции.
// Конфигурация приходит из переменных окружения платформы, поэтому .env здесь не читается.
func setupApp() *gin.Engine {
	once.Do(func() {
		cfg := config.LoadConfig()
		if err := logging.Setup(cfg.LogLevel, "json", os.Stdout); err != nil {
			log.Warn().Err(err).Msg("logger setup failed, using defaults")
		}
		gin.SetMode(gin.ReleaseMode)

		settings, err := config.LoadForecastSettings(cfg.ForecastSettingsPath)
		if err != nil {
			log.Error().Err(err).Msg("forecast settings rejected, using defaults")
			settings = config.DefaultForecastSettings()
		}

		app = handlers.NewRouter(cfg, settings)
		log.Info().Str("environment", cfg.Environment).Msg("serverless app initialized")
	})
	return app
}

// Handler является точкой входа serverless-функции для всех запросов.
func Handler(w http.ResponseWriter, r *http.Request) {
	setupApp().ServeHTTP(w, r)
}
