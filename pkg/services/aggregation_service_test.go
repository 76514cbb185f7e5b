package services

import (
	"testing"
	"time"

	"ekp-forecast-api/pkg/models"

	"github.com/stretchr/testify/assert"
)

func sampleEvents() []models.EventRecord {
	return []models.EventRecord{
		{ID: "1", StartDate: "2024-01-10", HostFederation: "fed-sambo"},
		{ID: "2", StartDate: "2024-01-25", HostFederation: "fed-chess"},
		{ID: "3", StartDate: "2024-03-02T09:00:00Z", HostFederation: "fed-sambo"},
		{ID: "4", StartDate: "2024-02-14", HostFederation: "fed-sambo"},
		{ID: "5", StartDate: "not a date", HostFederation: "fed-sambo"},
		{ID: "6", StartDate: "2023-12-31", HostFederation: "fed-chess"},
	}
}

func TestAggregateMonthly(t *testing.T) {
	series := AggregateMonthly(sampleEvents(), AggregationFilter{})

	assert.Equal(t, models.Series{
		{Date: "2023-12", Value: 1},
		{Date: "2024-01", Value: 2},
		{Date: "2024-02", Value: 1},
		{Date: "2024-03", Value: 1},
	}, series)
}

func TestAggregateMonthlyByFederation(t *testing.T) {
	series := AggregateMonthly(sampleEvents(), AggregationFilter{Federation: "FED-SAMBO"})

	assert.Equal(t, []int{1, 1, 1}, series.Values())
	assert.Equal(t, "2024-01", series[0].Date)
}

func TestAggregateMonthlyDateRange(t *testing.T) {
	from := time.Date(2024, 1, 15, 0, 0, 0, 0, time.UTC)
	to := time.Date(2024, 2, 14, 0, 0, 0, 0, time.UTC)

	series := AggregateMonthly(sampleEvents(), AggregationFilter{From: &from, To: &to})

	assert.Equal(t, models.Series{
		{Date: "2024-01", Value: 1},
		{Date: "2024-02", Value: 1},
	}, series, "bounds are inclusive")
}

func TestAggregateMonthlyComparesLocalCalendarDays(t *testing.T) {
	events := []models.EventRecord{
		{ID: "1", StartDate: "2024-03-31T23:30:00+03:00"},
		{ID: "2", StartDate: "2024-03-30T00:15:00+03:00"},
		{ID: "3", StartDate: "2024-03-29T23:59:59-05:00"},
	}
	from := time.Date(2024, 3, 30, 0, 0, 0, 0, time.UTC)
	to := time.Date(2024, 3, 30, 0, 0, 0, 0, time.UTC)

	series := AggregateMonthly(events, AggregationFilter{From: &from, To: &to})

	// только мероприятие 2 начинается 30 марта в своём смещении
	assert.Equal(t, models.Series{{Date: "2024-03", Value: 1}}, series)
}

func TestAggregationFilterIgnoresBoundClock(t *testing.T) {
	moscow := time.FixedZone("MSK", 3*60*60)
	to := time.Date(2024, 3, 31, 23, 59, 0, 0, moscow)
	filter := AggregationFilter{To: &to}

	assert.True(t, filter.Matches(models.EventRecord{}, time.Date(2024, 3, 31, 23, 59, 59, 0, time.UTC)))
	assert.False(t, filter.Matches(models.EventRecord{}, time.Date(2024, 4, 1, 0, 0, 0, 0, moscow)))
}

func TestAggregateMonthlyEmpty(t *testing.T) {
	assert.Empty(t, AggregateMonthly(nil, AggregationFilter{}))
}

func TestMonthlyTrend(t *testing.T) {
	trend := MonthlyTrend(models.Series{
		{Date: "2024-02", Value: 5},
		{Date: "2024-01", Value: 3},
		{Date: "2024-04", Value: 2},
	})

	assert.Equal(t, []models.TrendPoint{
		{Date: "2024-01", Value: 3, Trend: 0},
		{Date: "2024-02", Value: 5, Trend: 2},
		{Date: "2024-04", Value: 2, Trend: -3},
	}, trend)
}
