package api

import (
	"encoding/json"
	"net/url"
)

// Status is the status block present on every Messari response.
type Status struct {
	Elapsed      int    `json:"elapsed"`
	Timestamp    string `json:"timestamp"`
	ErrorCode    int    `json:"error_code,omitempty"`
	ErrorMessage string `json:"error_message,omitempty"`
}

// AssetsResponse from GET /api/v2/assets
type AssetsResponse struct {
	Status Status     `json:"status"`
	Data   []APIAsset `json:"data"`
}

// AssetResponse from GET /api/v1/assets/{assetKey}
type AssetResponse struct {
	Status Status   `json:"status"`
	Data   APIAsset `json:"data"`
}

// APIAsset represents an asset from the Messari API. Metrics and Profile are
// only populated when requested and are kept raw since their shape depends
// on the field selection.
type APIAsset struct {
	ID      string          `json:"id"`
	Symbol  string          `json:"symbol"`
	Name    string          `json:"name"`
	Slug    string          `json:"slug"`
	Metrics json.RawMessage `json:"metrics,omitempty"`
	Profile json.RawMessage `json:"profile,omitempty"`
}

// AssetProfileResponse from GET /api/v2/assets/{assetKey}/profile
type AssetProfileResponse struct {
	Status Status          `json:"status"`
	Data   APIAssetProfile `json:"data"`
}

// APIAssetProfile holds qualitative information for an asset.
type APIAssetProfile struct {
	ID      string          `json:"id"`
	Symbol  string          `json:"symbol"`
	Name    string          `json:"name"`
	Slug    string          `json:"slug"`
	Profile json.RawMessage `json:"profile,omitempty"`
}

// AssetMetricsResponse from GET /api/v1/assets/{assetKey}/metrics
type AssetMetricsResponse struct {
	Status Status          `json:"status"`
	Data   APIAssetMetrics `json:"data"`
}

// APIAssetMetrics holds quantitative information for an asset.
type APIAssetMetrics struct {
	ID         string          `json:"id"`
	Symbol     string          `json:"symbol"`
	Name       string          `json:"name"`
	Slug       string          `json:"slug"`
	MarketData *APIMarketData  `json:"market_data,omitempty"`
	Marketcap  json.RawMessage `json:"marketcap,omitempty"`
	Supply     json.RawMessage `json:"supply,omitempty"`
}

// MarketDataResponse from GET /api/v1/assets/{assetKey}/metrics/market-data
type MarketDataResponse struct {
	Status Status `json:"status"`
	Data   struct {
		ID         string        `json:"id"`
		Symbol     string        `json:"symbol"`
		Name       string        `json:"name"`
		Slug       string        `json:"slug"`
		MarketData APIMarketData `json:"market_data"`
	} `json:"data"`
}

// APIMarketData is the latest market data for an asset.
type APIMarketData struct {
	PriceUSD                *float64 `json:"price_usd"`
	PriceBTC                *float64 `json:"price_btc"`
	PriceETH                *float64 `json:"price_eth"`
	VolumeLast24Hours       *float64 `json:"volume_last_24_hours"`
	RealVolumeLast24Hours   *float64 `json:"real_volume_last_24_hours"`
	PercentChangeUSDLast24h *float64 `json:"percent_change_usd_last_24_hours"`
	LastTradeAt             string   `json:"last_trade_at"`
}

// MetricIDsResponse from GET /api/v1/assets/metrics
type MetricIDsResponse struct {
	Status Status `json:"status"`
	Data   struct {
		Metrics []APIMetricID `json:"metrics"`
	} `json:"data"`
}

// APIMetricID describes one supported time-series metric.
type APIMetricID struct {
	MetricID     string            `json:"metric_id"`
	Name         string            `json:"name"`
	Description  string            `json:"description"`
	ValuesSchema map[string]string `json:"values_schema"`
	MinInterval  string            `json:"minimum_interval,omitempty"`
}

// TimeSeriesResponse from GET /api/v1/{assets|markets}/{key}/metrics/{metricID}/time-series
type TimeSeriesResponse struct {
	Status Status        `json:"status"`
	Data   APITimeSeries `json:"data"`
}

// APITimeSeries is a historical series. Values are kept as raw JSON cells so
// they can be written out exactly as returned.
type APITimeSeries struct {
	ID         string               `json:"id"`
	Symbol     string               `json:"symbol"`
	Name       string               `json:"name"`
	Slug       string               `json:"slug"`
	Parameters TimeSeriesParameters `json:"parameters"`
	Schema     json.RawMessage      `json:"schema,omitempty"`
	Values     [][]json.RawMessage  `json:"values"`
}

// TimeSeriesParameters echoes the request window and names the value columns.
type TimeSeriesParameters struct {
	AssetKey        string   `json:"asset_key"`
	AssetID         string   `json:"asset_id"`
	MarketKey       string   `json:"market_key,omitempty"`
	Start           string   `json:"start"`
	End             string   `json:"end"`
	Interval        string   `json:"interval"`
	Order           string   `json:"order"`
	Format          string   `json:"format"`
	TimestampFormat string   `json:"timestamp_format"`
	Columns         []string `json:"columns"`
}

// MarketsResponse from GET /api/v1/markets
type MarketsResponse struct {
	Status Status      `json:"status"`
	Data   []APIMarket `json:"data"`
}

// APIMarket is an exchange/pair supported by the real-time market data feed.
type APIMarket struct {
	ID               string   `json:"id"`
	ExchangeID       string   `json:"exchange_id"`
	ExchangeName     string   `json:"exchange_name"`
	ExchangeSlug     string   `json:"exchange_slug"`
	BaseAssetID      string   `json:"base_asset_id"`
	BaseAssetSymbol  string   `json:"base_asset_symbol"`
	QuoteAssetID     string   `json:"quote_asset_id"`
	QuoteAssetSymbol string   `json:"quote_asset_symbol"`
	Pair             string   `json:"pair"`
	Class            string   `json:"class"`
	PriceUSD         *float64 `json:"price_usd"`
	VolumeLast24Hour *float64 `json:"volume_last_24_hours"`
	LastTradeAt      string   `json:"last_trade_at"`
}

// NewsResponse from GET /api/v1/news and GET /api/v1/news/{assetKey}
type NewsResponse struct {
	Status Status    `json:"status"`
	Data   []APINews `json:"data"`
}

// APINews is a single news or research item.
type APINews struct {
	ID             string        `json:"id"`
	Title          string        `json:"title"`
	Content        string        `json:"content"`
	URL            string        `json:"url"`
	PublishedAt    string        `json:"published_at"`
	ReferenceTitle string        `json:"reference_title"`
	Tags           []string      `json:"tags"`
	Author         APINewsAuthor `json:"author"`
}

// APINewsAuthor names the author of a news item.
type APINewsAuthor struct {
	Name string `json:"name"`
}

// AssetsOptions configures a GetAllAssets request.
type AssetsOptions struct {
	Page         int
	Limit        int
	Fields       string
	WithMetrics  bool
	WithProfiles bool

	// Extra is merged into the query string verbatim.
	Extra url.Values
}
