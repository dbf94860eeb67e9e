package api

import (
	"context"
	"fmt"
	"net/url"
	"strconv"
)

// GetAllAssets fetches one page of the asset list, optionally with metrics
// and profiles attached.
func (c *Client) GetAllAssets(ctx context.Context, opts AssetsOptions) (*AssetsResponse, error) {
	query := fieldsQuery(opts.Fields)

	if opts.Page > 0 {
		query.Set("page", strconv.Itoa(opts.Page))
	}
	if opts.Limit > 0 {
		query.Set("limit", strconv.Itoa(opts.Limit))
	}
	if opts.WithMetrics {
		query.Set("with-metrics", "")
	}
	if opts.WithProfiles {
		query.Set("with-profiles", "")
	}
	mergeQuery(query, opts.Extra)

	var resp AssetsResponse
	if err := c.get(ctx, "/api/v2/assets", query, &resp); err != nil {
		return nil, fmt.Errorf("get assets page %d: %w", opts.Page, err)
	}

	return &resp, nil
}

// GetAsset fetches basic metadata for an asset. assetKey may be an ID,
// slug or (non-unique) symbol.
func (c *Client) GetAsset(ctx context.Context, assetKey, fields string) (*AssetResponse, error) {
	var resp AssetResponse
	if err := c.get(ctx, "/api/v1/assets/"+url.PathEscape(assetKey), fieldsQuery(fields), &resp); err != nil {
		return nil, fmt.Errorf("get asset %s: %w", assetKey, err)
	}
	return &resp, nil
}

// GetAssetProfile fetches qualitative information for an asset.
func (c *Client) GetAssetProfile(ctx context.Context, assetKey, fields string) (*AssetProfileResponse, error) {
	path := "/api/v2/assets/" + url.PathEscape(assetKey) + "/profile"

	var resp AssetProfileResponse
	if err := c.get(ctx, path, fieldsQuery(fields), &resp); err != nil {
		return nil, fmt.Errorf("get asset profile %s: %w", assetKey, err)
	}
	return &resp, nil
}

// GetAssetMetrics fetches quantitative information for an asset.
func (c *Client) GetAssetMetrics(ctx context.Context, assetKey, fields string) (*AssetMetricsResponse, error) {
	path := "/api/v1/assets/" + url.PathEscape(assetKey) + "/metrics"

	var resp AssetMetricsResponse
	if err := c.get(ctx, path, fieldsQuery(fields), &resp); err != nil {
		return nil, fmt.Errorf("get asset metrics %s: %w", assetKey, err)
	}
	return &resp, nil
}

// GetAssetMarketData fetches the latest market data for an asset. The same
// data is part of GetAssetMetrics; this endpoint is lighter.
func (c *Client) GetAssetMarketData(ctx context.Context, assetKey, fields string) (*MarketDataResponse, error) {
	path := "/api/v1/assets/" + url.PathEscape(assetKey) + "/metrics/market-data"

	var resp MarketDataResponse
	if err := c.get(ctx, path, fieldsQuery(fields), &resp); err != nil {
		return nil, fmt.Errorf("get asset market data %s: %w", assetKey, err)
	}
	return &resp, nil
}

// ListAssetTimeseriesMetricIDs lists every metric ID usable with
// GetAssetTimeseries.
func (c *Client) ListAssetTimeseriesMetricIDs(ctx context.Context) (*MetricIDsResponse, error) {
	var resp MetricIDsResponse
	if err := c.get(ctx, "/api/v1/assets/metrics", nil, &resp); err != nil {
		return nil, fmt.Errorf("list asset metric ids: %w", err)
	}
	return &resp, nil
}

// GetAssetTimeseries fetches historical data for one asset metric. extra is
// merged into the query verbatim, which is how callers pass the window
// (start, end, before, after) and interval; values are validated remotely.
func (c *Client) GetAssetTimeseries(ctx context.Context, assetKey, metricID string, extra url.Values) (*TimeSeriesResponse, error) {
	path := "/api/v1/assets/" + url.PathEscape(assetKey) + "/metrics/" + url.PathEscape(metricID) + "/time-series"

	query := url.Values{}
	mergeQuery(query, extra)

	var resp TimeSeriesResponse
	if err := c.get(ctx, path, query, &resp); err != nil {
		return nil, fmt.Errorf("get asset timeseries %s/%s: %w", assetKey, metricID, err)
	}
	return &resp, nil
}
