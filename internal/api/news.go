package api

import (
	"context"
	"fmt"
	"net/url"
	"strconv"
)

// GetAllNews fetches a page of news and research across all assets. Pages
// start at 1; page 0 omits the parameter. An empty Data slice means the
// last page has been passed.
func (c *Client) GetAllNews(ctx context.Context, page int, fields string) (*NewsResponse, error) {
	query := fieldsQuery(fields)
	if page > 0 {
		query.Set("page", strconv.Itoa(page))
	}

	var resp NewsResponse
	if err := c.get(ctx, "/api/v1/news", query, &resp); err != nil {
		return nil, fmt.Errorf("get news page %d: %w", page, err)
	}
	return &resp, nil
}

// GetNewsForAsset fetches a page of news for one asset.
func (c *Client) GetNewsForAsset(ctx context.Context, assetKey string, page int, fields string) (*NewsResponse, error) {
	query := fieldsQuery(fields)
	if page > 0 {
		query.Set("page", strconv.Itoa(page))
	}

	var resp NewsResponse
	if err := c.get(ctx, "/api/v1/news/"+url.PathEscape(assetKey), query, &resp); err != nil {
		return nil, fmt.Errorf("get news for %s page %d: %w", assetKey, page, err)
	}
	return &resp, nil
}
