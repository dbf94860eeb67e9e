package pipeline

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rickgao/messari-data/internal/api"
	"github.com/rickgao/messari-data/internal/layout"
	"github.com/rickgao/messari-data/internal/manifest"
	"github.com/rickgao/messari-data/internal/state"
)

// fakeMessari serves canned asset pages and time series.
type fakeMessari struct {
	t      *testing.T
	pages  map[int][]string // page -> symbols
	failOn map[string]int   // ticker -> status code

	requests   atomic.Int32
	mu         sync.Mutex
	assetQuery []string
	seriesHits []string
}

func (f *fakeMessari) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	f.requests.Add(1)

	switch {
	case r.URL.Path == "/api/v2/assets":
		f.mu.Lock()
		f.assetQuery = append(f.assetQuery, r.URL.RawQuery)
		f.mu.Unlock()

		var page int
		fmt.Sscanf(r.URL.Query().Get("page"), "%d", &page)
		data := make([]api.APIAsset, 0)
		for _, s := range f.pages[page] {
			data = append(data, api.APIAsset{Symbol: s})
		}
		json.NewEncoder(w).Encode(api.AssetsResponse{Data: data})

	case strings.HasSuffix(r.URL.Path, "/time-series"):
		// /api/v1/assets/{ticker}/metrics/{metric}/time-series
		parts := strings.Split(r.URL.Path, "/")
		ticker, metric := parts[4], parts[6]

		f.mu.Lock()
		f.seriesHits = append(f.seriesHits, metric+"/"+ticker)
		f.mu.Unlock()

		if code, ok := f.failOn[ticker]; ok {
			w.WriteHeader(code)
			return
		}

		q := r.URL.Query()
		if q.Get("start") == "" || q.Get("end") == "" || q.Get("interval") == "" {
			f.t.Errorf("time-series query missing window: %q", r.URL.RawQuery)
		}

		fmt.Fprintf(w, `{"status":{"elapsed":1},"data":{"symbol":%q,"parameters":{"asset_key":%q,"columns":["timestamp","%s"]},"values":[[1609459200000,29374.15],[1609545600000,32127.27]]}}`,
			ticker, ticker, metric)

	default:
		f.t.Errorf("unexpected request: %s", r.URL.String())
		w.WriteHeader(http.StatusNotFound)
	}
}

type fixture struct {
	fake   *fakeMessari
	server *httptest.Server
	layout *layout.Layout
	lists  state.Store
	store  *manifest.FileStore
	runner *Runner
}

func newFixture(t *testing.T, cfg Config) *fixture {
	t.Helper()

	fake := &fakeMessari{t: t, pages: map[int][]string{}, failOn: map[string]int{}}
	server := httptest.NewServer(fake)
	t.Cleanup(server.Close)

	dir := t.TempDir()
	out := layout.New(filepath.Join(dir, "time_series"))
	lists := state.Store{
		TickerPath: filepath.Join(dir, "ticker_list.yaml"),
		MetricPath: filepath.Join(dir, "metric_id_list.yaml"),
	}
	store, err := manifest.OpenFile(filepath.Join(dir, "manifest.yaml"))
	require.NoError(t, err)

	client := api.NewClient(server.URL, "", api.WithTimeout(5*time.Second))
	runner := New(cfg, client, out, lists, store, nil)
	runner.now = func() time.Time { return time.Date(2021, 3, 15, 8, 0, 0, 0, time.UTC) }

	return &fixture{fake: fake, server: server, layout: out, lists: lists, store: store, runner: runner}
}

func TestDiscover_TwoPagesWithExclusions(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Discovery.Pages = 2
	cfg.Discovery.Exclude = []string{"BADX", "NULL"}

	f := newFixture(t, cfg)
	f.fake.pages[1] = []string{"BTC", "ETH", "BADX", "USDT"}
	f.fake.pages[2] = []string{"SOL", "NULL", "ADA"}

	tickers, err := f.runner.DiscoverTickers(context.Background())
	require.NoError(t, err)

	// 4 + 3 assets, 2 excluded
	assert.Equal(t, []string{"BTC", "ETH", "USDT", "SOL", "ADA"}, tickers)
	assert.Len(t, tickers, 4+3-2)
	for _, excluded := range cfg.Discovery.Exclude {
		assert.NotContains(t, tickers, excluded)
	}

	saved, err := f.lists.LoadTickers()
	require.NoError(t, err)
	assert.Equal(t, tickers, saved)
}

func TestDiscover_RequestsEveryPageWithFieldSelection(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Discovery.Pages = 3
	cfg.Discovery.PageSize = 2

	f := newFixture(t, cfg)
	f.fake.pages[1] = []string{"BTC", "ETH"}
	f.fake.pages[2] = nil // short page does not stop discovery
	f.fake.pages[3] = []string{"ETH", "DOT"}

	tickers, err := Discover(context.Background(), f.runner.client, cfg.Discovery)
	require.NoError(t, err)

	// No dedup across pages.
	assert.Equal(t, []string{"BTC", "ETH", "ETH", "DOT"}, tickers)
	require.Len(t, f.fake.assetQuery, 3)
	for i, raw := range f.fake.assetQuery {
		assert.Contains(t, raw, "fields=symbol")
		assert.Contains(t, raw, fmt.Sprintf("page=%d", i+1))
		assert.Contains(t, raw, "limit=2")
	}
}

func TestDiscover_SkipsEmptySymbols(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Discovery.Pages = 1

	f := newFixture(t, cfg)
	f.fake.pages[1] = []string{"BTC", "", "ETH"}

	tickers, err := Discover(context.Background(), f.runner.client, cfg.Discovery)
	require.NoError(t, err)
	assert.Equal(t, []string{"BTC", "ETH"}, tickers)
}

func TestDiscover_ErrorAborts(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer server.Close()

	client := api.NewClient(server.URL, "")
	_, err := Discover(context.Background(), client, DiscoveryConfig{Pages: 2, Fields: "symbol"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "discover page 1")
}

func TestProvisionDirs(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Metrics = []string{"price", "txn.cnt"}

	f := newFixture(t, cfg)

	created, err := f.runner.ProvisionDirs()
	require.NoError(t, err)
	assert.Len(t, created, 2)

	metrics, err := f.lists.LoadMetrics()
	require.NoError(t, err)
	assert.Equal(t, cfg.Metrics, metrics)

	created, err = f.runner.ProvisionDirs()
	require.NoError(t, err)
	assert.Empty(t, created)
	assert.Zero(t, f.fake.requests.Load())
}

func TestFetch_WritesHeaderAndRows(t *testing.T) {
	f := newFixture(t, DefaultConfig())
	_, err := f.runner.ProvisionDirs()
	require.NoError(t, err)

	result, err := f.runner.Fetch(context.Background(), []string{"BTC"}, []string{"price"})
	require.NoError(t, err)
	require.NoError(t, result.Err())

	data, err := os.ReadFile(f.layout.AssetFile("price", "BTC"))
	require.NoError(t, err)

	lines := strings.Split(strings.TrimSuffix(string(data), "\n"), "\n")
	assert.Equal(t, []string{
		"timestamp,price",
		"1609459200000,29374.15",
		"1609545600000,32127.27",
	}, lines)

	assert.Equal(t, "2021-01-01", result.Window.Start)
	assert.Equal(t, "2021-03-15", result.Window.End)
	assert.Equal(t, "1d", result.Window.Interval)

	e, ok, err := f.store.Lookup(context.Background(), "price", "BTC")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, manifest.StatusComplete, e.Status)
	assert.Equal(t, 2, e.Rows)
	assert.Equal(t, result.RunID, e.RunID)
}

func TestFetch_ExistingFileIsNotRefetched(t *testing.T) {
	f := newFixture(t, DefaultConfig())
	_, err := f.runner.ProvisionDirs()
	require.NoError(t, err)

	path := f.layout.AssetFile("price", "BTC")
	require.NoError(t, os.WriteFile(path, []byte("timestamp,price\n1,2\n"), 0644))

	result, err := f.runner.Fetch(context.Background(), []string{"BTC", "ETH"}, []string{"price"})
	require.NoError(t, err)

	require.Len(t, result.Metrics, 1)
	assert.Equal(t, 1, result.Metrics[0].Skipped)
	assert.Equal(t, 1, result.Metrics[0].Fetched)
	assert.Equal(t, []string{"price/ETH"}, f.fake.seriesHits)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "timestamp,price\n1,2\n", string(data))

	// A second run fetches nothing.
	before := f.fake.requests.Load()
	result, err = f.runner.Fetch(context.Background(), []string{"BTC", "ETH"}, []string{"price"})
	require.NoError(t, err)
	assert.Equal(t, before, f.fake.requests.Load())
	_, skipped, _ := result.Totals()
	assert.Equal(t, 2, skipped)
}

func TestFetch_MissingMetricDirMakesNoRequests(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Metrics = []string{"price"}
	f := newFixture(t, cfg)
	_, err := f.runner.ProvisionDirs()
	require.NoError(t, err)

	result, err := f.runner.Fetch(context.Background(), []string{"BTC", "ETH"}, []string{"mcap.out", "price"})
	require.NoError(t, err)

	require.Len(t, result.Metrics, 2)
	assert.True(t, result.Metrics[0].Missing)
	assert.Zero(t, result.Metrics[0].Fetched)
	assert.False(t, result.Metrics[1].Missing)
	assert.Equal(t, 2, result.Metrics[1].Fetched)

	assert.Equal(t, []string{"mcap.out"}, result.MissingMetrics())
	assert.ErrorIs(t, result.Err(), ErrMetricDirMissing)
	assert.Contains(t, result.Err().Error(), "mcap.out")
	for _, hit := range f.fake.seriesHits {
		assert.False(t, strings.HasPrefix(hit, "mcap.out/"), hit)
	}
}

func TestFetch_NoRootMakesNoRequests(t *testing.T) {
	f := newFixture(t, DefaultConfig())

	result, err := f.runner.Fetch(context.Background(), []string{"BTC"}, []string{"price"})
	require.NoError(t, err)
	assert.Equal(t, []string{"price"}, result.MissingMetrics())
	assert.Zero(t, f.fake.requests.Load())
}

func TestFetch_FailureAbortsAndIsRecorded(t *testing.T) {
	f := newFixture(t, DefaultConfig())
	_, err := f.runner.ProvisionDirs()
	require.NoError(t, err)
	f.fake.failOn["ETH"] = http.StatusInternalServerError

	result, err := f.runner.Fetch(context.Background(), []string{"BTC", "ETH", "SOL"}, []string{"price"})
	require.Error(t, err)
	require.NotNil(t, result)

	assert.Equal(t, []string{"price/BTC", "price/ETH"}, f.fake.seriesHits)
	fetched, _, failed := result.Totals()
	assert.Equal(t, 1, fetched)
	assert.Equal(t, 1, failed)

	ok, err := f.layout.HasAssetFile("price", "ETH")
	require.NoError(t, err)
	assert.False(t, ok)

	e, found, err := f.store.Lookup(context.Background(), "price", "ETH")
	require.NoError(t, err)
	require.True(t, found)
	assert.Equal(t, manifest.StatusFailed, e.Status)
	assert.Contains(t, e.Error, "500")
}

func TestFetch_ContinueOnError(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Fetch.ContinueOnError = true
	f := newFixture(t, cfg)
	_, err := f.runner.ProvisionDirs()
	require.NoError(t, err)
	f.fake.failOn["ETH"] = http.StatusNotFound

	result, err := f.runner.Fetch(context.Background(), []string{"BTC", "ETH", "SOL"}, []string{"price"})
	require.NoError(t, err)

	fetched, _, failed := result.Totals()
	assert.Equal(t, 2, fetched)
	assert.Equal(t, 1, failed)

	// The failed pair is retried on the next run once the API recovers.
	delete(f.fake.failOn, "ETH")
	result, err = f.runner.Fetch(context.Background(), []string{"BTC", "ETH", "SOL"}, []string{"price"})
	require.NoError(t, err)
	fetched, skipped, _ := result.Totals()
	assert.Equal(t, 1, fetched)
	assert.Equal(t, 2, skipped)

	e, _, err := f.store.Lookup(context.Background(), "price", "ETH")
	require.NoError(t, err)
	assert.Equal(t, manifest.StatusComplete, e.Status)
}

func TestFetch_CanceledContext(t *testing.T) {
	f := newFixture(t, DefaultConfig())
	_, err := f.runner.ProvisionDirs()
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err = f.runner.Fetch(ctx, []string{"BTC"}, []string{"price"})
	assert.ErrorIs(t, err, context.Canceled)
	assert.Zero(t, f.fake.requests.Load())
}

func TestFetch_ExplicitWindow(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Fetch.Start = "2020-06-01"
	cfg.Fetch.End = "2020-12-31"
	cfg.Fetch.Interval = "1w"
	f := newFixture(t, cfg)

	w := f.runner.window()
	assert.Equal(t, "2020-06-01", w.Start)
	assert.Equal(t, "2020-12-31", w.End)
	assert.Equal(t, "1w", w.Interval)
}

func TestFetchTimeseries_UsesPersistedLists(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Discovery.Pages = 1
	f := newFixture(t, cfg)
	f.fake.pages[1] = []string{"BTC", "ETH"}

	_, err := f.runner.FetchTimeseries(context.Background())
	assert.ErrorIs(t, err, state.ErrNotFound)

	_, err = f.runner.DiscoverTickers(context.Background())
	require.NoError(t, err)
	_, err = f.runner.ProvisionDirs()
	require.NoError(t, err)

	result, err := f.runner.FetchTimeseries(context.Background())
	require.NoError(t, err)
	fetched, _, _ := result.Totals()
	assert.Equal(t, 2, fetched)
}

func TestFetch_RejectsEscapingNames(t *testing.T) {
	cfg := DefaultConfig()
	f := newFixture(t, cfg)
	_, err := f.runner.ProvisionDirs()
	require.NoError(t, err)

	result, err := f.runner.Fetch(context.Background(), []string{"../escaped", "A/B", "BTC"}, []string{"price", "../up"})
	require.NoError(t, err)

	// Only the well-formed pair reaches the API.
	assert.Equal(t, []string{"price/BTC"}, f.fake.seriesHits)
	assert.NoFileExists(t, filepath.Join(f.layout.Root(), "escaped.csv"))
	assert.FileExists(t, f.layout.AssetFile("price", "BTC"))

	require.Len(t, result.Metrics, 2)
	assert.Equal(t, 1, result.Metrics[0].Fetched)
	assert.Equal(t, 2, result.Metrics[0].Failed)
	assert.True(t, result.Metrics[1].Invalid)
	assert.ErrorIs(t, result.Err(), layout.ErrInvalidName)

	failures, err := f.runner.Failures(context.Background())
	require.NoError(t, err)
	require.Len(t, failures, 2)
	for _, e := range failures {
		assert.Contains(t, []string{"../escaped", "A/B"}, e.AssetKey)
		assert.Empty(t, e.Path)
	}
}

func TestFailures(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Fetch.ContinueOnError = true
	f := newFixture(t, cfg)
	_, err := f.runner.ProvisionDirs()
	require.NoError(t, err)
	f.fake.failOn["ETH"] = http.StatusBadGateway

	_, err = f.runner.Fetch(context.Background(), []string{"BTC", "ETH"}, []string{"price"})
	require.NoError(t, err)

	failures, err := f.runner.Failures(context.Background())
	require.NoError(t, err)
	require.Len(t, failures, 1)
	assert.Equal(t, "ETH", failures[0].AssetKey)
	assert.Equal(t, manifest.StatusFailed, failures[0].Status)

	// Nop manifest has nothing to report.
	r := New(cfg, f.runner.client, f.layout, f.lists, nil, nil)
	failures, err = r.Failures(context.Background())
	require.NoError(t, err)
	assert.Empty(t, failures)
}
