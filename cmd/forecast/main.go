// Команда forecast печатает прогноз мероприятий по выгрузке CSV или XLSX.
//
//	forecast -file events.xlsx -horizon 6
package main

import (
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"time"

	"ekp-forecast-api/pkg/logging"
	"ekp-forecast-api/pkg/models"
	"ekp-forecast-api/pkg/services"

	"github.com/rs/zerolog/log"
)

var errUsage = errors.New("usage")

func main() {
	if err := logging.Setup("warn", "console", os.Stderr); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}

	err := run(os.Args[1:], os.Stdout)
	switch {
	case err == nil:
	case errors.Is(err, errUsage), errors.Is(err, flag.ErrHelp):
		os.Exit(2)
	default:
		log.Fatal().Err(err).Msg("forecast failed")
	}
}

type options struct {
	file    string
	horizon int
	seed    int64
	now     time.Time
}

func parseOptions(args []string) (*options, error) {
	fs := flag.NewFlagSet("forecast", flag.ContinueOnError)
	file := fs.String("file", "", "path to a .csv or .xlsx file (required)")
	horizon := fs.Int("horizon", services.DefaultHorizonMonths, "months to forecast")
	seed := fs.Int64("seed", 0, "noise seed; 0 seeds from the clock")
	month := fs.String("now", "", "treat this month (YYYY-MM) as the current one")
	if err := fs.Parse(args); err != nil {
		return nil, err
	}

	if *file == "" {
		fs.Usage()
		return nil, fmt.Errorf("%w: -file is required", errUsage)
	}
	if *horizon < 0 {
		return nil, fmt.Errorf("horizon must not be negative, got %d", *horizon)
	}

	opts := &options{file: *file, horizon: *horizon, seed: *seed}
	if *month != "" {
		now, err := time.Parse("2006-01", *month)
		if err != nil {
			return nil, fmt.Errorf("invalid -now month %q: %w", *month, err)
		}
		opts.now = now
	}
	return opts, nil
}

func (o *options) forecastOptions() []services.ForecastOption {
	var opts []services.ForecastOption
	if o.seed != 0 {
		opts = append(opts, services.WithSeed(o.seed))
	}
	if !o.now.IsZero() {
		now := o.now
		opts = append(opts, services.WithClock(func() time.Time { return now }))
	}
	return opts
}

func run(args []string, stdout io.Writer) error {
	opts, err := parseOptions(args)
	if err != nil {
		return err
	}

	f, err := os.Open(opts.file)
	if err != nil {
		return fmt.Errorf("open input: %w", err)
	}
	defer f.Close()

	history, err := services.NewImportService().ParseSeriesFile(opts.file, f)
	if err != nil {
		return fmt.Errorf("import %s: %w", opts.file, err)
	}

	forecaster := services.NewForecastService(opts.forecastOptions()...)
	result := models.ForecastResult{
		History:       history,
		Predictions:   forecaster.PredictFutureValues(history, opts.horizon),
		Confidence:    forecaster.ConfidenceScore(history),
		HorizonMonths: opts.horizon,
	}

	enc := json.NewEncoder(stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(result)
}
