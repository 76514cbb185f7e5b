package services

import (
	"math"
	"math/rand"
	"sync"
	"time"

	"ekp-forecast-api/pkg/models"

	"gonum.org/v1/gonum/stat"
)

const (
	// MinHistoryPoints задаёт минимальную длину истории для прогноза.
	MinHistoryPoints = 3
	// DefaultHorizonMonths задаёт число месяцев прогноза, если горизонт не указан.
	DefaultHorizonMonths = 3

	// BaselineEventsPerMonth задаёт фиксированную базу прогноза. Она не выводится
	// из истории; дашборды откалиброваны под неё.
	BaselineEventsPerMonth = 4.0

	// PredictionRecencyDecay и ConfidenceRecencyDecay различаются: прогноз
	// сильнее опирается на последние месяцы, чем оценка достоверности.
	PredictionRecencyDecay = 0.15
	ConfidenceRecencyDecay = 0.05

	smoothingWindow     = 3
	recentMonthsWindow  = 6
	trendInfluence      = 0.2
	seasonalInfluence   = 0.3
	noiseScale          = 0.5
	lowerBoundFactor    = 0.7
	upperBoundFactor    = 1.5
	minConfidence       = 0.1
	maxConfidence       = 1.0
	seasonalPenalty     = 0.9
	minVariability      = 0.5
	quantityPointsScale = 6.0
	stabilityPoints     = 12.0
)

// RandomSource выдаёт равномерные значения в [0, 1). *rand.Rand ему удовлетворяет.
type RandomSource interface {
	Float64() float64
}

// Clock возвращает текущее время.
type Clock func() time.Time

// lockedSource делает *rand.Rand безопасным для конкурентных обработчиков.
type lockedSource struct {
	mu sync.Mutex
	r  *rand.Rand
}

func (s *lockedSource) Float64() float64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.r.Float64()
}

func newLockedSource(seed int64) *lockedSource {
	return &lockedSource{r: rand.New(rand.NewSource(seed))}
}

// ForecastService прогнозирует число мероприятий по месяцам и оценивает прогноз.
// Состояния между вызовами нет; каждый вызов работает с копией входных данных.
type ForecastService struct {
	random RandomSource
	now    Clock
}

// ForecastOption настраивает ForecastService.
type ForecastOption func(*ForecastService)

// WithRandomSource подменяет генератор шума.
func WithRandomSource(r RandomSource) ForecastOption {
	return func(s *ForecastService) {
		if r != nil {
			s.random = r
		}
	}
}

// WithSeed использует детерминированный генератор с начальным значением seed.
func WithSeed(seed int64) ForecastOption {
	return func(s *ForecastService) {
		s.random = newLockedSource(seed)
	}
}

// WithClock подменяет time.Now как источник текущего момента.
func WithClock(clock Clock) ForecastOption {
	return func(s *ForecastService) {
		if clock != nil {
			s.now = clock
		}
	}
}

// NewForecastService создаёт ForecastService с генератором, инициализированным временем.
func NewForecastService(opts ...ForecastOption) *ForecastService {
	s := &ForecastService{
		random: newLockedSource(time.Now().UnixNano()),
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// PredictFutureValues прогнозирует число мероприятий на horizonMonths календарных
// месяцев, начиная со следующего за текущим. Месяцы, уже присутствующие в истории,
// пропускаются, поэтому результат может быть короче горизонта. Если пригодных
// точек меньше трёх, возвращается пустой ряд.
func (s *ForecastService) PredictFutureValues(history models.Series, horizonMonths int) models.Series {
	sorted := sortedValid(history)
	if len(sorted) < MinHistoryPoints {
		return models.Series{}
	}

	recent := sorted[max(0, len(sorted)-recentMonthsWindow):]
	stdDev := populationStdDev(toFloats(recent.Values()))

	cleaned := RemoveOutliers(sorted)
	smoothed := MovingAverage(cleaned, smoothingWindow)
	regression := WeightedRegression(smoothed, PredictionRecencyDecay)
	if regression == nil {
		return models.Series{}
	}
	// сезонность считается по очищенным значениям, а не по сглаженным
	seasonality := DetectSeasonality(cleaned)

	known := make(map[int]struct{}, len(sorted))
	for _, p := range sorted {
		if ord, ok := MonthOrdinal(p.Date); ok {
			known[ord] = struct{}{}
		}
	}

	lower := roundHalfUp(BaselineEventsPerMonth * lowerBoundFactor)
	upper := roundHalfUp(BaselineEventsPerMonth * upperBoundFactor)

	now := s.now()
	start := ordinalOf(time.Date(now.Year(), now.Month()+1, 1, 0, 0, 0, 0, now.Location()))

	predictions := models.Series{}
	for k := 0; k < horizonMonths; k++ {
		ord := start + k
		if _, exists := known[ord]; exists {
			continue
		}

		value := BaselineEventsPerMonth + regression.Slope*float64(k)*trendInfluence
		if seasonality != nil {
			value *= 1 + (seasonality[ord%12]-1)*seasonalInfluence
		}
		value += (s.random.Float64() - 0.5) * stdDev * noiseScale

		value = math.Max(lower, math.Min(upper, roundHalfUp(value)))
		if math.IsNaN(value) {
			value = BaselineEventsPerMonth
		}

		predictions = append(predictions, models.TimePoint{
			Date:  formatOrdinal(ord),
			Value: int(value),
		})
	}
	return predictions
}

// ConfidenceScore оценивает достоверность прогноза по истории в диапазоне [0.1, 1].
// Если пригодных точек меньше трёх, возвращает 0.
func (s *ForecastService) ConfidenceScore(history models.Series) float64 {
	sorted := sortedValid(history)
	if len(sorted) < MinHistoryPoints {
		return 0
	}

	cleaned := RemoveOutliers(sorted)
	regression := WeightedRegression(cleaned, ConfidenceRecencyDecay)
	if regression == nil {
		return 0
	}

	n := len(cleaned)
	xs := ordinals(cleaned)
	ys := toFloats(cleaned.Values())
	yMean := stat.Mean(ys, nil)
	weights := recencyWeights(n, ConfidenceRecencyDecay)

	var ssRes, ssTot float64
	for i := 0; i < n; i++ {
		predicted := regression.Slope*xs[i] + regression.Intercept
		ssRes += weights[i] * (ys[i] - predicted) * (ys[i] - predicted)
		ssTot += weights[i] * (ys[i] - yMean) * (ys[i] - yMean)
	}
	rSquared := weightedRSquared(ssRes, ssTot)

	divisor := yMean
	if divisor == 0 {
		divisor = 1
	}
	dataQuantityFactor := math.Min(1, math.Sqrt(float64(n)/quantityPointsScale))
	variabilityFactor := math.Max(minVariability, 1-math.Abs(regression.Slope)/divisor)
	seasonalityFactor := 1.0
	if regression.Seasonality != nil {
		seasonalityFactor = seasonalPenalty
	}
	stabilityFactor := math.Min(1, float64(n)/stabilityPoints)

	confidence := (rSquared*0.4 +
		dataQuantityFactor*0.3 +
		variabilityFactor*0.2 +
		seasonalityFactor*0.1) * stabilityFactor

	if math.IsNaN(confidence) {
		return minConfidence
	}
	return math.Max(minConfidence, math.Min(maxConfidence, confidence))
}

// weightedRSquared возвращает 1 - ssRes/ssTot. У постоянного ряда нет дисперсии:
// точная подгонка даёт 1, любая другая 0.
func weightedRSquared(ssRes, ssTot float64) float64 {
	const eps = 1e-12
	if ssTot <= eps {
		if ssRes <= eps {
			return 1
		}
		return 0
	}
	return 1 - ssRes/ssTot
}

var defaultForecastService = NewForecastService()

// PredictFutureValues строит прогноз сервисом пакета по умолчанию.
func PredictFutureValues(history models.Series, horizonMonths int) models.Series {
	return defaultForecastService.PredictFutureValues(history, horizonMonths)
}

// GetConfidenceScore оценивает историю сервисом пакета по умолчанию.
func GetConfidenceScore(history models.Series) float64 {
	return defaultForecastService.ConfidenceScore(history)
}
