package main

import (
	"bytes"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"ekp-forecast-api/pkg/models"
	"ekp-forecast-api/pkg/services"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeCSV(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "events.csv")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
	return path
}

func TestParseOptions(t *testing.T) {
	opts, err := parseOptions([]string{"-file", "events.csv", "-horizon", "6", "-seed", "9", "-now", "2024-06"})
	require.NoError(t, err)
	assert.Equal(t, "events.csv", opts.file)
	assert.Equal(t, 6, opts.horizon)
	assert.Equal(t, int64(9), opts.seed)
	assert.Equal(t, time.Date(2024, time.June, 1, 0, 0, 0, 0, time.UTC), opts.now)
	assert.Len(t, opts.forecastOptions(), 2)

	opts, err = parseOptions([]string{"-file", "events.csv"})
	require.NoError(t, err)
	assert.Equal(t, services.DefaultHorizonMonths, opts.horizon)
	assert.True(t, opts.now.IsZero())
	assert.Empty(t, opts.forecastOptions())
}

func TestParseOptionsErrors(t *testing.T) {
	_, err := parseOptions(nil)
	assert.True(t, errors.Is(err, errUsage))

	_, err = parseOptions([]string{"-file", "events.csv", "-horizon", "-1"})
	assert.Error(t, err)

	_, err = parseOptions([]string{"-file", "events.csv", "-now", "июнь"})
	assert.Error(t, err)
}

func TestRunPrintsForecast(t *testing.T) {
	path := writeCSV(t, "date,value\n2024-01,5\n2024-02,6\n2024-03,4\n")

	var out bytes.Buffer
	require.NoError(t, run([]string{"-file", path, "-horizon", "2", "-seed", "1", "-now", "2024-06"}, &out))

	var result models.ForecastResult
	require.NoError(t, json.Unmarshal(out.Bytes(), &result))
	assert.Len(t, result.History, 3)
	assert.Equal(t, 2, result.HorizonMonths)
	require.Len(t, result.Predictions, 2)
	assert.Equal(t, "2024-07", result.Predictions[0].Date)
	assert.Equal(t, "2024-08", result.Predictions[1].Date)
	for _, p := range result.Predictions {
		assert.True(t, p.Value >= 3 && p.Value <= 6, "value %d out of range", p.Value)
	}
	assert.GreaterOrEqual(t, result.Confidence, 0.1)
}

func TestRunReportsInputErrors(t *testing.T) {
	var out bytes.Buffer

	err := run([]string{"-file", filepath.Join(t.TempDir(), "absent.csv")}, &out)
	assert.Error(t, err)

	err = run([]string{"-file", writeCSV(t, "title\nКубок\n")}, &out)
	assert.True(t, errors.Is(err, services.ErrMissingColumns))
	assert.Zero(t, out.Len())
}
