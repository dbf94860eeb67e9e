package pipeline

import (
	"context"
	"fmt"
	"time"

	"github.com/rickgao/messari-data/internal/api"
)

// DiscoverTickers requests pages 1..Pages of the asset list and collects
// each asset's symbol in order, skipping excluded and empty symbols. The
// list is persisted before it is returned.
//
// Symbols are not deduplicated across pages and a short or empty page does
// not end discovery early.
func (r *Runner) DiscoverTickers(ctx context.Context) ([]string, error) {
	start := time.Now()

	tickers, err := Discover(ctx, r.client, r.cfg.Discovery)
	if err != nil {
		return nil, err
	}

	if err := r.lists.SaveTickers(tickers); err != nil {
		return nil, fmt.Errorf("save ticker list: %w", err)
	}

	r.logger.Info("ticker list saved",
		"path", r.lists.TickerPath,
		"count", len(tickers),
		"pages", r.cfg.Discovery.Pages,
		"duration", time.Since(start),
	)
	return tickers, nil
}

// Discover builds a ticker list without persisting it.
func Discover(ctx context.Context, lister AssetLister, cfg DiscoveryConfig) ([]string, error) {
	excluded := make(map[string]struct{}, len(cfg.Exclude))
	for _, s := range cfg.Exclude {
		excluded[s] = struct{}{}
	}

	tickers := make([]string, 0, cfg.Pages*max(cfg.PageSize, 1))

	for page := 1; page <= cfg.Pages; page++ {
		resp, err := lister.GetAllAssets(ctx, api.AssetsOptions{
			Page:   page,
			Limit:  cfg.PageSize,
			Fields: cfg.Fields,
		})
		if err != nil {
			return nil, fmt.Errorf("discover page %d: %w", page, err)
		}

		for _, asset := range resp.Data {
			if asset.Symbol == "" {
				continue
			}
			if _, skip := excluded[asset.Symbol]; skip {
				continue
			}
			tickers = append(tickers, asset.Symbol)
		}
	}

	return tickers, nil
}
