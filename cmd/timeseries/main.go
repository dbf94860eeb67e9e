// Command timeseries downloads every (metric, ticker) series that is not
// yet on disk, using the lists saved by tickers and metricdirs.
package main

import (
	"context"
	"errors"
	"flag"
	"log/slog"
	"os"

	"github.com/rickgao/messari-data/internal/app"
	"github.com/rickgao/messari-data/internal/config"
	"github.com/rickgao/messari-data/internal/pipeline"
)

func main() {
	configPath := flag.String("config", "configs/messari.yaml", "path to config file (empty uses defaults)")
	envPath := flag.String("env", ".env", "optional .env file")
	start := flag.String("start", "", "override fetch.start (YYYY-MM-DD)")
	end := flag.String("end", "", "override fetch.end (YYYY-MM-DD)")
	keepGoing := flag.Bool("continue", false, "keep going after a failed series")
	flag.Parse()

	opts := app.Options{
		Name:       "timeseries",
		ConfigPath: *configPath,
		EnvPath:    *envPath,
		Override: func(cfg *config.Config) {
			if *start != "" {
				cfg.Fetch.Start = *start
			}
			if *end != "" {
				cfg.Fetch.End = *end
			}
			if *keepGoing {
				cfg.Fetch.ContinueOnError = true
			}
		},
	}

	os.Exit(app.Run(opts, func(ctx context.Context, a *app.App) error {
		result, err := a.Runner.FetchTimeseries(ctx)
		err = report(a.Logger, result, err)

		failures, ferr := a.Runner.Failures(ctx)
		if ferr != nil {
			return errors.Join(err, ferr)
		}
		for _, e := range failures {
			a.Logger.Warn("series outstanding",
				"metric", e.MetricID,
				"ticker", e.AssetKey,
				"run_id", e.RunID,
				"error", e.Error,
			)
		}
		return err
	}))
}

// report logs the per-metric outcome and returns the run error joined with
// any metrics that were skipped entirely, so those end in a non-zero exit.
func report(logger *slog.Logger, result *pipeline.FetchResult, err error) error {
	if result == nil {
		return err
	}

	for _, m := range result.Metrics {
		switch {
		case m.Missing:
			logger.Warn("metric skipped, directory missing", "metric", m.MetricID)
		case m.Invalid:
			logger.Warn("metric skipped, invalid name", "metric", m.MetricID)
		default:
			logger.Info("metric result",
				"metric", m.MetricID,
				"fetched", m.Fetched,
				"skipped", m.Skipped,
				"failed", m.Failed,
			)
		}
	}

	fetched, skipped, failed := result.Totals()
	logger.Info("fetch totals",
		"run_id", result.RunID,
		"fetched", fetched,
		"skipped", skipped,
		"failed", failed,
	)

	return errors.Join(err, result.Err())
}
