package services

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"ekp-forecast-api/pkg/models"
)

// seriesDateLayouts перечисляет допустимые форматы даты TimePoint, частые первыми.
var seriesDateLayouts = []string{
	"2006-01",
	"2006-01-02",
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
}

// ParseSeriesDate разбирает дату TimePoint. Календарная дата берётся как записана,
// без перевода часового пояса.
func ParseSeriesDate(date string) (time.Time, bool) {
	date = strings.TrimSpace(date)
	for _, layout := range seriesDateLayouts {
		if t, err := time.Parse(layout, date); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

// MonthOrdinal переводит дату в year*12 + номер месяца с нуля.
func MonthOrdinal(date string) (int, bool) {
	t, ok := ParseSeriesDate(date)
	if !ok {
		return 0, false
	}
	return ordinalOf(t), true
}

func ordinalOf(t time.Time) int {
	return t.Year()*12 + int(t.Month()) - 1
}

// formatOrdinal выводит номер месяца в виде YYYY-MM.
func formatOrdinal(ordinal int) string {
	return fmt.Sprintf("%04d-%02d", ordinal/12, ordinal%12+1)
}

// sortedValid возвращает отсортированную копию точек с распознанной датой.
// Срез вызывающего не переупорядочивается.
func sortedValid(history models.Series) models.Series {
	type dated struct {
		point models.TimePoint
		at    time.Time
	}
	items := make([]dated, 0, len(history))
	for _, p := range history {
		t, ok := ParseSeriesDate(p.Date)
		if !ok {
			continue
		}
		items = append(items, dated{point: p, at: t})
	}
	sort.SliceStable(items, func(i, j int) bool {
		return items[i].at.Before(items[j].at)
	})

	out := make(models.Series, len(items))
	for i, it := range items {
		out[i] = it.point
	}
	return out
}

// ordinals возвращает номера месяцев уже проверенного ряда.
func ordinals(series models.Series) []float64 {
	xs := make([]float64, len(series))
	for i, p := range series {
		ord, _ := MonthOrdinal(p.Date)
		xs[i] = float64(ord)
	}
	return xs
}
