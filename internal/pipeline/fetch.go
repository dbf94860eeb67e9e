package pipeline

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/rickgao/messari-data/internal/api"
	"github.com/rickgao/messari-data/internal/layout"
	"github.com/rickgao/messari-data/internal/manifest"
	"github.com/rickgao/messari-data/internal/model"
	"github.com/rickgao/messari-data/internal/writer"
)

// ErrMetricDirMissing reports metrics whose output directory does not exist,
// usually because provisioning has not run.
var ErrMetricDirMissing = errors.New("metric directory missing, run metricdirs first")

// MetricResult summarizes one metric of a fetch run.
type MetricResult struct {
	MetricID string
	Missing  bool // Directory absent; no request was made
	Invalid  bool // Name unusable as a directory; no request was made
	Fetched  int
	Skipped  int // Output file already present
	Failed   int
}

// FetchResult summarizes a fetch run.
type FetchResult struct {
	RunID   uuid.UUID
	Window  model.Window
	Metrics []MetricResult
}

// MissingMetrics returns the metrics skipped for lack of a directory.
func (r *FetchResult) MissingMetrics() []string {
	var out []string
	for _, m := range r.Metrics {
		if m.Missing {
			out = append(out, m.MetricID)
		}
	}
	return out
}

// Totals sums the per-metric counters.
func (r *FetchResult) Totals() (fetched, skipped, failed int) {
	for _, m := range r.Metrics {
		fetched += m.Fetched
		skipped += m.Skipped
		failed += m.Failed
	}
	return fetched, skipped, failed
}

// Err reports metrics that were not fetched at all: ErrMetricDirMissing for
// missing directories and layout.ErrInvalidName for unusable names.
func (r *FetchResult) Err() error {
	var errs []error
	if missing := r.MissingMetrics(); len(missing) > 0 {
		errs = append(errs, fmt.Errorf("%w: %s", ErrMetricDirMissing, strings.Join(missing, ", ")))
	}
	for _, m := range r.Metrics {
		if m.Invalid {
			errs = append(errs, fmt.Errorf("%w: metric %q", layout.ErrInvalidName, m.MetricID))
		}
	}
	return errors.Join(errs...)
}

// FetchTimeseries loads the persisted ticker and metric lists and fetches
// every series not yet on disk.
func (r *Runner) FetchTimeseries(ctx context.Context) (*FetchResult, error) {
	tickers, err := r.lists.LoadTickers()
	if err != nil {
		return nil, fmt.Errorf("load ticker list: %w", err)
	}
	metrics, err := r.lists.LoadMetrics()
	if err != nil {
		return nil, fmt.Errorf("load metric list: %w", err)
	}
	return r.Fetch(ctx, tickers, metrics)
}

// Fetch downloads the series for every (metric, ticker) pair whose output
// file does not exist yet, writing each as CSV.
//
// A metric whose directory is missing is reported in the result and no
// request is made for it. Tickers that are not a plain file name (such as
// "../x" or "A/B") are counted as failed without a request and do not end
// the run. A failed request or write is recorded in the
// manifest and ends the run unless ContinueOnError is set. The partial
// result is returned alongside any error.
func (r *Runner) Fetch(ctx context.Context, tickers, metrics []string) (*FetchResult, error) {
	result := &FetchResult{
		RunID:   uuid.New(),
		Window:  r.window(),
		Metrics: make([]MetricResult, 0, len(metrics)),
	}
	query := api.WindowQuery(result.Window)
	start := time.Now()

	r.logger.Info("fetch run started",
		"run_id", result.RunID,
		"metrics", len(metrics),
		"tickers", len(tickers),
		"start", result.Window.Start,
		"end", result.Window.End,
		"interval", result.Window.Interval,
	)

	for _, metric := range metrics {
		mr := MetricResult{MetricID: metric}

		if err := layout.CheckName(metric); err != nil {
			mr.Invalid = true
			result.Metrics = append(result.Metrics, mr)
			r.logger.Error("metric name unusable as a directory, skipping metric",
				"metric", metric,
				"error", err,
			)
			continue
		}

		ok, err := r.layout.HasMetricDir(metric)
		if err != nil {
			return result, err
		}
		if !ok {
			mr.Missing = true
			result.Metrics = append(result.Metrics, mr)
			r.logger.Warn("metric directory missing, skipping metric",
				"metric", metric,
				"dir", r.layout.MetricDir(metric),
			)
			continue
		}

		for _, ticker := range tickers {
			if err := ctx.Err(); err != nil {
				result.Metrics = append(result.Metrics, mr)
				return result, err
			}

			if err := layout.CheckName(ticker); err != nil {
				mr.Failed++
				r.logger.Warn("ticker unusable as a file name, skipping",
					"metric", metric,
					"ticker", ticker,
				)
				if recErr := r.record(ctx, result.RunID, metric, ticker, 0, err); recErr != nil {
					result.Metrics = append(result.Metrics, mr)
					return result, recErr
				}
				continue
			}

			exists, err := r.layout.HasAssetFile(metric, ticker)
			if err != nil {
				result.Metrics = append(result.Metrics, mr)
				return result, err
			}
			if exists {
				mr.Skipped++
				continue
			}

			if prev, ok, err := r.manifest.Lookup(ctx, metric, ticker); err != nil {
				result.Metrics = append(result.Metrics, mr)
				return result, err
			} else if ok && prev.Status == manifest.StatusFailed {
				r.logger.Info("retrying previously failed series",
					"metric", metric,
					"ticker", ticker,
					"previous_run", prev.RunID,
					"previous_error", prev.Error,
				)
			}

			rows, err := r.fetchOne(ctx, ticker, metric, query)
			if recErr := r.record(ctx, result.RunID, metric, ticker, rows, err); recErr != nil {
				result.Metrics = append(result.Metrics, mr)
				return result, recErr
			}
			if err != nil {
				mr.Failed++
				r.logger.Error("fetch failed",
					"metric", metric,
					"ticker", ticker,
					"error", err,
				)
				if !r.cfg.Fetch.ContinueOnError {
					result.Metrics = append(result.Metrics, mr)
					return result, err
				}
				continue
			}

			mr.Fetched++
			r.logger.Debug("series written",
				"metric", metric,
				"ticker", ticker,
				"rows", rows,
			)
		}

		result.Metrics = append(result.Metrics, mr)
		r.logger.Info("metric complete",
			"metric", metric,
			"fetched", mr.Fetched,
			"skipped", mr.Skipped,
			"failed", mr.Failed,
		)
	}

	fetched, skipped, failed := result.Totals()
	r.logger.Info("fetch run complete",
		"run_id", result.RunID,
		"fetched", fetched,
		"skipped", skipped,
		"failed", failed,
		"missing_metrics", len(result.MissingMetrics()),
		"duration", time.Since(start),
	)

	return result, nil
}

// fetchOne downloads and writes one series, returning its row count.
func (r *Runner) fetchOne(ctx context.Context, ticker, metric string, query url.Values) (int, error) {
	resp, err := r.client.GetAssetTimeseries(ctx, ticker, metric, query)
	if err != nil {
		return 0, err
	}
	return writer.WriteCSV(r.layout.AssetFile(metric, ticker), resp.ToRecord(ticker, metric))
}

// record writes the outcome of one pair to the manifest.
func (r *Runner) record(ctx context.Context, runID uuid.UUID, metric, ticker string, rows int, fetchErr error) error {
	e := manifest.Entry{
		RunID:     runID,
		MetricID:  metric,
		AssetKey:  ticker,
		Status:    manifest.StatusComplete,
		Rows:      rows,
		Path:      r.layout.AssetFile(metric, ticker),
		UpdatedAt: r.now().UTC(),
	}
	if fetchErr != nil {
		e.Status = manifest.StatusFailed
		e.Rows = 0
		e.Path = ""
		e.Error = fetchErr.Error()
	}
	return r.manifest.Record(ctx, e)
}

// window returns the request window, ending today unless End is set.
func (r *Runner) window() model.Window {
	w := model.DailyWindow(r.cfg.Fetch.Start, r.now())
	if r.cfg.Fetch.End != "" {
		w.End = r.cfg.Fetch.End
	}
	if r.cfg.Fetch.Interval != "" {
		w.Interval = r.cfg.Fetch.Interval
	}
	return w
}

// Failures returns the manifest entries still marked failed, in manifest
// order. They are retried by the next fetch.
func (r *Runner) Failures(ctx context.Context) ([]manifest.Entry, error) {
	entries, err := r.manifest.Entries(ctx)
	if err != nil {
		return nil, fmt.Errorf("read manifest: %w", err)
	}
	var failed []manifest.Entry
	for _, e := range entries {
		if e.Status == manifest.StatusFailed {
			failed = append(failed, e)
		}
	}
	return failed, nil
}
