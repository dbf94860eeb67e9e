// Command tickers pages through the Messari asset list and saves the
// symbols as the ticker list used by timeseries.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/rickgao/messari-data/internal/app"
	"github.com/rickgao/messari-data/internal/config"
)

func main() {
	configPath := flag.String("config", "configs/messari.yaml", "path to config file (empty uses defaults)")
	envPath := flag.String("env", ".env", "optional .env file")
	pages := flag.Int("pages", 0, "override discovery.pages")
	flag.Parse()

	opts := app.Options{
		Name:       "tickers",
		ConfigPath: *configPath,
		EnvPath:    *envPath,
		Override: func(cfg *config.Config) {
			if *pages > 0 {
				cfg.Discovery.Pages = *pages
			}
		},
	}

	os.Exit(app.Run(opts, func(ctx context.Context, a *app.App) error {
		tickers, err := a.Runner.DiscoverTickers(ctx)
		if err != nil {
			return err
		}
		fmt.Println(len(tickers))
		return nil
	}))
}
