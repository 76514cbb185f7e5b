package services

import (
	"math"
	"sort"

	"ekp-forecast-api/pkg/models"

	"gonum.org/v1/gonum/stat"
)

const (
	outlierIQRMultiplier = 1.5
	recentTrendWindow    = 6
	minSeasonalityPoints = 12
	maxTrendStrength     = 2.0
)

// RemoveOutliers отбрасывает точки вне [Q1 - 1.5*IQR, Q3 + 1.5*IQR].
// Квартили берутся по индексу floor(n*q) в отсортированном массиве без
// интерполяции, чтобы результат совпадал с дашбордом на данных с повторами.
func RemoveOutliers(series models.Series) models.Series {
	n := len(series)
	if n == 0 {
		return models.Series{}
	}

	sorted := series.Values()
	sort.Ints(sorted)
	q1 := float64(sorted[int(math.Floor(float64(n)*0.25))])
	q3 := float64(sorted[int(math.Floor(float64(n)*0.75))])
	iqr := q3 - q1
	lower := q1 - outlierIQRMultiplier*iqr
	upper := q3 + outlierIQRMultiplier*iqr

	out := make(models.Series, 0, n)
	for _, p := range series {
		v := float64(p.Value)
		if v >= lower && v <= upper {
			out = append(out, p)
		}
	}
	return out
}

// MovingAverage применяет скользящее среднее по предыдущим точкам. Длина результата
// равна длине входа; первые точки усредняются по укороченному окну.
func MovingAverage(series models.Series, window int) models.Series {
	if window < 1 {
		window = 1
	}
	out := make(models.Series, len(series))
	for i := range series {
		start := i - window + 1
		if start < 0 {
			start = 0
		}
		sum := 0
		for _, p := range series[start : i+1] {
			sum += p.Value
		}
		out[i] = models.TimePoint{
			Date:  series[i].Date,
			Value: int(roundHalfUp(float64(sum) / float64(i+1-start))),
		}
	}
	return out
}

// recencyWeights возвращает exp((i-(n-1))*decay), нормированные к сумме 1.
func recencyWeights(n int, decay float64) []float64 {
	weights := make([]float64, n)
	var sum float64
	for i := 0; i < n; i++ {
		weights[i] = math.Exp(float64(i-(n-1)) * decay)
		sum += weights[i]
	}
	for i := range weights {
		weights[i] /= sum
	}
	return weights
}

// WeightedRegression строит регрессию значения по номеру месяца с экспоненциальными
// весами свежести. Для менее чем двух точек возвращает nil.
func WeightedRegression(series models.Series, decay float64) *models.RegressionResult {
	n := len(series)
	if n < 2 {
		return nil
	}

	xs := ordinals(series)
	ys := toFloats(series.Values())
	weights := recencyWeights(n, decay)

	// stat считает веса частотами и делит на их сумму минус один
	for i := range weights {
		weights[i] *= float64(n)
	}

	// все точки в одном месяце: тренда нет
	var slope, intercept float64
	if sameValue(xs) {
		intercept = stat.Mean(ys, weights)
	} else {
		intercept, slope = stat.LinearRegression(xs, ys, weights, false)
	}

	recentSlope := slope
	if n >= recentTrendWindow {
		recentSlope = recentTrend(ys[n-recentTrendWindow:])
	}

	return &models.RegressionResult{
		Slope:         slope,
		Intercept:     intercept,
		Seasonality:   DetectSeasonality(series),
		TrendStrength: trendStrength(recentSlope, slope),
	}
}

func sameValue(xs []float64) bool {
	for _, x := range xs[1:] {
		if x != xs[0] {
			return false
		}
	}
	return true
}

// recentTrend возвращает невзвешенный МНК-наклон ys по позициям 0..len-1.
func recentTrend(ys []float64) float64 {
	if len(ys) < 2 {
		return 0
	}
	xs := make([]float64, len(ys))
	for i := range xs {
		xs[i] = float64(i)
	}
	_, slope := stat.LinearRegression(xs, ys, nil, false)
	return slope
}

// trendStrength равна |recent/overall| с ограничением 2. При нулевом общем наклоне
// и ненулевом недавнем возвращается предел; 0/0 даёт 0.
func trendStrength(recentSlope, slope float64) float64 {
	if slope == 0 {
		if recentSlope == 0 {
			return 0
		}
		return maxTrendStrength
	}
	return math.Min(math.Abs(recentSlope/slope), maxTrendStrength)
}

// DetectSeasonality возвращает 12 множителей по календарным месяцам со средним 1.0
// или nil, если точек меньше 12. Месяцам без наблюдений назначается среднее 1.
func DetectSeasonality(series models.Series) []float64 {
	if len(series) < minSeasonalityPoints {
		return nil
	}

	var sums, counts [12]float64
	for _, p := range series {
		t, ok := ParseSeriesDate(p.Date)
		if !ok {
			continue
		}
		m := int(t.Month()) - 1
		sums[m] += float64(p.Value)
		counts[m]++
	}

	raw := make([]float64, 12)
	var total float64
	for m := 0; m < 12; m++ {
		if counts[m] > 0 {
			raw[m] = sums[m] / counts[m]
		} else {
			raw[m] = 1
		}
		total += raw[m]
	}

	avg := total / 12
	factors := make([]float64, 12)
	for m := range factors {
		if avg == 0 {
			factors[m] = 1
			continue
		}
		factors[m] = raw[m] / avg
	}
	return factors
}

// roundHalfUp округляет .5 в сторону плюс бесконечности.
func roundHalfUp(x float64) float64 {
	return math.Floor(x + 0.5)
}

func toFloats(values []int) []float64 {
	out := make([]float64, len(values))
	for i, v := range values {
		out[i] = float64(v)
	}
	return out
}

// populationStdDev возвращает стандартное отклонение генеральной совокупности,
// 0 для менее чем двух значений.
func populationStdDev(values []float64) float64 {
	if len(values) < 2 {
		return 0
	}
	_, std := stat.PopMeanStdDev(values, nil)
	return std
}
