package models

// TimePoint описывает наблюдаемое или прогнозное число мероприятий за месяц.
// Date имеет вид "YYYY-MM" или "YYYY-MM-DD".
type TimePoint struct {
	Date  string `json:"date" binding:"required"`
	Value int    `json:"value" binding:"gte=0"`
}

// Series хранит упорядоченный список помесячных точек. Пропущенные месяцы просто отсутствуют.
type Series []TimePoint

// Values возвращает значения точек в порядке ряда.
func (s Series) Values() []int {
	out := make([]int, len(s))
	for i, p := range s {
		out[i] = p.Value
	}
	return out
}

// RegressionResult содержит результат взвешенной оценки тренда.
// Seasonality равна nil при недостаточной истории, иначе содержит
// 12 множителей (с января) со средним 1.0.
type RegressionResult struct {
	Slope         float64   `json:"slope"`
	Intercept     float64   `json:"intercept"`
	Seasonality   []float64 `json:"seasonality,omitempty"`
	TrendStrength float64   `json:"trend_strength"`
}

// TrendPoint содержит число за месяц и изменение относительно предыдущей записи.
type TrendPoint struct {
	Date  string `json:"date"`
	Value int    `json:"value"`
	Trend int    `json:"trend"`
}

// EventRecord содержит поля мероприятия календаря, нужные для аналитики.
type EventRecord struct {
	ID             string `json:"id"`
	Title          string `json:"title,omitempty"`
	StartDate      string `json:"start_date" binding:"required"`
	EndDate        string `json:"end_date,omitempty"`
	HostFederation string `json:"host_federation,omitempty"`
	Status         string `json:"status,omitempty"`
}

// ForecastRequest описывает тело запроса POST /forecast/predict.
type ForecastRequest struct {
	History       Series `json:"history" binding:"required,dive"`
	HorizonMonths *int   `json:"horizon_months,omitempty"`
}

// ConfidenceRequest описывает тело запроса POST /forecast/confidence.
type ConfidenceRequest struct {
	History Series `json:"history" binding:"required,dive"`
}

// EventsForecastRequest описывает тело запроса POST /forecast/events.
// From и To задают включительные границы даты начала мероприятия (YYYY-MM-DD).
type EventsForecastRequest struct {
	Events        []EventRecord `json:"events" binding:"required,dive"`
	Federation    string        `json:"federation,omitempty"`
	From          string        `json:"from,omitempty"`
	To            string        `json:"to,omitempty"`
	HorizonMonths *int          `json:"horizon_months,omitempty"`
}

// ForecastResult возвращается всеми эндпоинтами прогноза.
type ForecastResult struct {
	History       Series       `json:"history,omitempty"`
	Trend         []TrendPoint `json:"trend,omitempty"`
	Predictions   Series       `json:"predictions"`
	Confidence    float64      `json:"confidence"`
	HorizonMonths int          `json:"horizon_months"`
}
