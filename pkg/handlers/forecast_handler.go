package handlers

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	config "ekp-forecast-api/configs"
	"ekp-forecast-api/pkg/models"
	"ekp-forecast-api/pkg/services"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"
)

// ForecastHandler обрабатывает эндпоинты прогноза мероприятий.
type ForecastHandler struct {
	forecastService *services.ForecastService
	importService   *services.ImportService
	settings        *config.ForecastSettings
	maxUploadBytes  int64
}

// NewForecastHandler создаёт новый ForecastHandler.
func NewForecastHandler(
	forecastService *services.ForecastService,
	importService *services.ImportService,
	settings *config.ForecastSettings,
	maxUploadMB int,
) *ForecastHandler {
	if settings == nil {
		settings = config.DefaultForecastSettings()
	}
	return &ForecastHandler{
		forecastService: forecastService,
		importService:   importService,
		settings:        settings,
		maxUploadBytes:  int64(maxUploadMB) << 20,
	}
}

// resolveHorizon подставляет горизонт по умолчанию и проверяет допустимый диапазон.
func (h *ForecastHandler) resolveHorizon(requested *int) (int, error) {
	if requested == nil {
		return h.settings.DefaultHorizonMonths, nil
	}
	if *requested < 0 || *requested > h.settings.MaxHorizonMonths {
		return 0, fmt.Errorf("horizon_months должен быть в диапазоне от 0 до %d", h.settings.MaxHorizonMonths)
	}
	return *requested, nil
}

func (h *ForecastHandler) forecast(history models.Series, horizon int) models.ForecastResult {
	return models.ForecastResult{
		Predictions:   h.forecastService.PredictFutureValues(history, horizon),
		Confidence:    h.forecastService.ConfidenceScore(history),
		HorizonMonths: horizon,
	}
}

func badRequest(c *gin.Context, message string) {
	c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": message})
}

// Predict строит прогноз по помесячному ряду.
func (h *ForecastHandler) Predict(c *gin.Context) {
	var request models.ForecastRequest
	if err := c.ShouldBindJSON(&request); err != nil {
		badRequest(c, "Не удалось разобрать запрос: "+err.Error())
		return
	}

	horizon, err := h.resolveHorizon(request.HorizonMonths)
	if err != nil {
		badRequest(c, err.Error())
		return
	}

	result := h.forecast(request.History, horizon)
	log.Debug().
		Int("history_points", len(request.History)).
		Int("predictions", len(result.Predictions)).
		Float64("confidence", result.Confidence).
		Msg("forecast computed")

	c.JSON(http.StatusOK, gin.H{"success": true, "data": result})
}

// Confidence оценивает достоверность ряда без построения прогноза.
func (h *ForecastHandler) Confidence(c *gin.Context) {
	var request models.ConfidenceRequest
	if err := c.ShouldBindJSON(&request); err != nil {
		badRequest(c, "Не удалось разобрать запрос: "+err.Error())
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data": gin.H{
			"confidence": h.forecastService.ConfidenceScore(request.History),
		},
	})
}

// ForecastEvents агрегирует мероприятия по месяцам и строит прогноз.
func (h *ForecastHandler) ForecastEvents(c *gin.Context) {
	var request models.EventsForecastRequest
	if err := c.ShouldBindJSON(&request); err != nil {
		badRequest(c, "Не удалось разобрать запрос: "+err.Error())
		return
	}

	horizon, err := h.resolveHorizon(request.HorizonMonths)
	if err != nil {
		badRequest(c, err.Error())
		return
	}

	filter := services.AggregationFilter{Federation: request.Federation}
	if request.From != "" {
		from, err := time.Parse("2006-01-02", request.From)
		if err != nil {
			badRequest(c, "Некорректная дата from: "+request.From)
			return
		}
		filter.From = &from
	}
	if request.To != "" {
		to, err := time.Parse("2006-01-02", request.To)
		if err != nil {
			badRequest(c, "Некорректная дата to: "+request.To)
			return
		}
		filter.To = &to
	}
	if filter.From != nil && filter.To != nil && filter.From.After(*filter.To) {
		badRequest(c, "Дата from должна быть не позже даты to")
		return
	}

	history := services.AggregateMonthly(request.Events, filter)
	result := h.forecast(history, horizon)
	result.History = history
	result.Trend = services.MonthlyTrend(history)

	c.JSON(http.StatusOK, gin.H{"success": true, "data": result})
}

// ImportFile строит прогноз по загруженной выгрузке CSV или XLSX.
func (h *ForecastHandler) ImportFile(c *gin.Context) {
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, h.maxUploadBytes)

	fileHeader, err := c.FormFile("file")
	if err != nil {
		badRequest(c, "Не удалось получить файл.")
		return
	}

	var requested *int
	if raw := c.PostForm("horizon_months"); raw != "" {
		v, err := strconv.Atoi(raw)
		if err != nil {
			badRequest(c, "horizon_months должен быть целым числом")
			return
		}
		requested = &v
	}
	horizon, err := h.resolveHorizon(requested)
	if err != nil {
		badRequest(c, err.Error())
		return
	}

	file, err := fileHeader.Open()
	if err != nil {
		log.Error().Err(err).Str("file", fileHeader.Filename).Msg("open upload")
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "error": "Не удалось открыть файл."})
		return
	}
	defer file.Close()

	history, err := h.importService.ParseSeriesFile(fileHeader.Filename, file)
	if err != nil {
		log.Warn().Err(err).Str("file", fileHeader.Filename).Msg("import rejected")
		badRequest(c, importErrorMessage(err))
		return
	}

	result := h.forecast(history, horizon)
	result.History = history

	c.JSON(http.StatusOK, gin.H{"success": true, "data": result})
}

func importErrorMessage(err error) string {
	switch {
	case errors.Is(err, services.ErrUnsupportedFormat):
		return "Неподдерживаемый формат файла. Загрузите .xlsx или .csv."
	case errors.Is(err, services.ErrMissingColumns):
		return "В файле не найден столбец с датой."
	case errors.Is(err, services.ErrEmptyFile):
		return "Файл должен содержать заголовок и хотя бы одну строку с данными."
	default:
		return "Не удалось прочитать файл: " + err.Error()
	}
}

// GetSettings возвращает настройки горизонта и константы движка прогноза.
func (h *ForecastHandler) GetSettings(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data": gin.H{
			"default_horizon_months": h.settings.DefaultHorizonMonths,
			"max_horizon_months":     h.settings.MaxHorizonMonths,
			"min_history_points":     services.MinHistoryPoints,
			"baseline_per_month":     services.BaselineEventsPerMonth,
			"prediction_decay":       services.PredictionRecencyDecay,
			"confidence_decay":       services.ConfidenceRecencyDecay,
			"accepted_formats":       []string{".csv", ".xlsx"},
		},
	})
}
