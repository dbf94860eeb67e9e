// Command metricdirs saves the configured metric list and creates one
// output directory per metric.
package main

import (
	"context"
	"flag"
	"os"
	"strings"

	"github.com/rickgao/messari-data/internal/app"
	"github.com/rickgao/messari-data/internal/config"
)

func main() {
	configPath := flag.String("config", "configs/messari.yaml", "path to config file (empty uses defaults)")
	envPath := flag.String("env", ".env", "optional .env file")
	metrics := flag.String("metrics", "", "comma-separated metric IDs, overrides metrics.ids")
	flag.Parse()

	opts := app.Options{
		Name:       "metricdirs",
		ConfigPath: *configPath,
		EnvPath:    *envPath,
		Override: func(cfg *config.Config) {
			if *metrics != "" {
				cfg.Metrics.IDs = strings.Split(*metrics, ",")
			}
		},
	}

	os.Exit(app.Run(opts, func(_ context.Context, a *app.App) error {
		created, err := a.Runner.ProvisionDirs()
		for _, dir := range created {
			a.Logger.Info("created metric directory", "dir", dir)
		}
		return err
	}))
}
