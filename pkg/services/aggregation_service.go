package services

import (
	"sort"
	"strings"
	"time"

	"ekp-forecast-api/pkg/models"
)

// AggregationFilter ограничивает набор учитываемых мероприятий. Нулевое значение
// отключает условие. From и To задают включительные границы по календарному дню
// начала мероприятия; используются только год, месяц и день.
type AggregationFilter struct {
	Federation string
	From       *time.Time
	To         *time.Time
}

// Matches сообщает, проходит ли мероприятие с началом start через фильтр.
// Начало сравнивается по собственному календарному дню: метка 31-го числа
// в 23:30 со смещением остаётся 31-м числом.
func (f AggregationFilter) Matches(event models.EventRecord, start time.Time) bool {
	if f.Federation != "" && !strings.EqualFold(event.HostFederation, f.Federation) {
		return false
	}
	day := calendarDay(start)
	if f.From != nil && day.Before(calendarDay(*f.From)) {
		return false
	}
	if f.To != nil && day.After(calendarDay(*f.To)) {
		return false
	}
	return true
}

func calendarDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

// AggregateMonthly считает мероприятия по месяцу начала в порядке возрастания.
// Мероприятия с нераспознанной датой начала пропускаются.
func AggregateMonthly(events []models.EventRecord, filter AggregationFilter) models.Series {
	counts := make(map[int]int)
	for _, event := range events {
		start, ok := ParseSeriesDate(event.StartDate)
		if !ok {
			continue
		}
		if !filter.Matches(event, start) {
			continue
		}
		counts[ordinalOf(start)]++
	}
	return seriesFromCounts(counts)
}

// MonthlyTrend дополняет каждый месяц изменением относительно предыдущей записи.
func MonthlyTrend(series models.Series) []models.TrendPoint {
	sorted := sortedValid(series)
	trend := make([]models.TrendPoint, len(sorted))
	for i, p := range sorted {
		delta := 0
		if i > 0 {
			delta = p.Value - sorted[i-1].Value
		}
		trend[i] = models.TrendPoint{Date: p.Date, Value: p.Value, Trend: delta}
	}
	return trend
}

func seriesFromCounts(counts map[int]int) models.Series {
	keys := make([]int, 0, len(counts))
	for ord := range counts {
		keys = append(keys, ord)
	}
	sort.Ints(keys)

	series := make(models.Series, len(keys))
	for i, ord := range keys {
		series[i] = models.TimePoint{Date: formatOrdinal(ord), Value: counts[ord]}
	}
	return series
}
