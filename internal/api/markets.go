package api

import (
	"context"
	"fmt"
	"net/url"
)

// GetAllMarkets fetches every exchange/pair supported by the real-time
// market data feed.
func (c *Client) GetAllMarkets(ctx context.Context, fields string) (*MarketsResponse, error) {
	var resp MarketsResponse
	if err := c.get(ctx, "/api/v1/markets", fieldsQuery(fields), &resp); err != nil {
		return nil, fmt.Errorf("get markets: %w", err)
	}
	return &resp, nil
}

// GetMarketTimeseries fetches historical data for one market metric. extra
// is merged into the query verbatim.
func (c *Client) GetMarketTimeseries(ctx context.Context, marketKey, metricID string, extra url.Values) (*TimeSeriesResponse, error) {
	path := "/api/v1/markets/" + url.PathEscape(marketKey) + "/metrics/" + url.PathEscape(metricID) + "/time-series"

	query := url.Values{}
	mergeQuery(query, extra)

	var resp TimeSeriesResponse
	if err := c.get(ctx, path, query, &resp); err != nil {
		return nil, fmt.Errorf("get market timeseries %s/%s: %w", marketKey, metricID, err)
	}
	return &resp, nil
}
