package pipeline

import (
	"context"
	"log/slog"
	"net/url"
	"time"

	"github.com/rickgao/messari-data/internal/api"
	"github.com/rickgao/messari-data/internal/layout"
	"github.com/rickgao/messari-data/internal/manifest"
	"github.com/rickgao/messari-data/internal/state"
)

// AssetLister pages through the asset list.
type AssetLister interface {
	GetAllAssets(ctx context.Context, opts api.AssetsOptions) (*api.AssetsResponse, error)
}

// TimeseriesFetcher fetches one asset metric series.
type TimeseriesFetcher interface {
	GetAssetTimeseries(ctx context.Context, assetKey, metricID string, extra url.Values) (*api.TimeSeriesResponse, error)
}

// Client is the subset of *api.Client the pipeline uses.
type Client interface {
	AssetLister
	TimeseriesFetcher
}

// DiscoveryConfig controls ticker discovery.
type DiscoveryConfig struct {
	Pages    int      // Pages requested, starting at 1
	PageSize int      // 0 omits the limit parameter
	Fields   string   // Field selection, normally "symbol"
	Exclude  []string // Symbols never added to the list
}

// FetchConfig controls the time-series stage.
type FetchConfig struct {
	Start           string
	End             string // Empty means the day the run starts
	Interval        string
	ContinueOnError bool
}

// Config holds pipeline configuration.
type Config struct {
	Discovery DiscoveryConfig
	Metrics   []string
	Fetch     FetchConfig
}

// DefaultConfig mirrors the collector defaults: the top 200 assets by
// symbol and the daily price series since 2021.
func DefaultConfig() Config {
	return Config{
		Discovery: DiscoveryConfig{
			Pages:    10,
			PageSize: 20,
			Fields:   "symbol",
		},
		Metrics: []string{"price"},
		Fetch: FetchConfig{
			Start:    "2021-01-01",
			Interval: "1d",
		},
	}
}

// Runner executes pipeline stages against one output tree.
type Runner struct {
	cfg      Config
	client   Client
	layout   *layout.Layout
	lists    state.Store
	manifest manifest.Store
	logger   *slog.Logger

	now func() time.Time
}

// New creates a Runner. A nil manifest records nothing.
func New(cfg Config, client Client, out *layout.Layout, lists state.Store, m manifest.Store, logger *slog.Logger) *Runner {
	if logger == nil {
		logger = slog.Default()
	}
	if m == nil {
		m = manifest.Nop{}
	}
	return &Runner{
		cfg:      cfg,
		client:   client,
		layout:   out,
		lists:    lists,
		manifest: m,
		logger:   logger,
		now:      time.Now,
	}
}
