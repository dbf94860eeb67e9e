// Command apitest checks connectivity and credentials against the Messari
// API: it lists the available time-series metric IDs and fetches one asset
// profile.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/rickgao/messari-data/internal/app"
)

func main() {
	configPath := flag.String("config", "configs/messari.yaml", "path to config file (empty uses defaults)")
	envPath := flag.String("env", ".env", "optional .env file")
	asset := flag.String("asset", "btc", "asset key for the profile check")
	listAll := flag.Bool("list", false, "print every metric ID")
	flag.Parse()

	opts := app.Options{Name: "apitest", ConfigPath: *configPath, EnvPath: *envPath}

	os.Exit(app.Run(opts, func(ctx context.Context, a *app.App) error {
		ids, err := a.Client.ListAssetTimeseriesMetricIDs(ctx)
		if err != nil {
			return err
		}
		a.Logger.Info("time-series metrics available", "count", len(ids.Data.Metrics))
		if *listAll {
			for _, m := range ids.Data.Metrics {
				fmt.Printf("%s\t%s\n", m.MetricID, m.Name)
			}
		}

		profile, err := a.Client.GetAssetProfile(ctx, *asset, "id,symbol,name")
		if err != nil {
			return err
		}
		a.Logger.Info("asset profile fetched",
			"asset", *asset,
			"id", profile.Data.ID,
			"symbol", profile.Data.Symbol,
			"name", profile.Data.Name,
			"authenticated", a.Client.Authenticated(),
		)
		return nil
	}))
}
