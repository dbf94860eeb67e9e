package config

import (
	"path/filepath"
	"time"
)

// Default values for optional configuration fields.
const (
	DefaultBaseURL         = "https://data.messari.io"
	DefaultAPITimeout      = 10 * time.Second
	DefaultSecretsPath     = "secrets.yaml"
	DefaultSecretsField    = "messari_api_key"
	DefaultDiscoveryPages  = 10
	DefaultPageSize        = 20
	DefaultDiscoveryFields = "symbol"
	DefaultMetricID        = "price"
	DefaultFetchStart      = "2021-01-01"
	DefaultFetchInterval   = "1d"
	DefaultStorageRoot     = "time_series"
	DefaultTickerList      = "ticker_list.yaml"
	DefaultMetricList      = "metric_id_list.yaml"
	DefaultManifestBackend = "file"
	DefaultManifestFile    = "manifest.yaml"
	DefaultDBPort          = 5432
	DefaultDBSSLMode       = "prefer"
	DefaultMaxConns        = 4
	DefaultMinConns        = 1
	DefaultLogLevel        = "info"
	DefaultLogFormat       = "text"
	DefaultLogOutput       = "stdout"
	DefaultLogMaxSize      = 100
	DefaultLogMaxBackups   = 3
	DefaultLogMaxAge       = 28
)

// Manifest backends.
const (
	ManifestFile     = "file"
	ManifestPostgres = "postgres"
	ManifestNone     = "none"
)

func (c *Config) applyDefaults() {
	// API defaults
	if c.API.BaseURL == "" {
		c.API.BaseURL = DefaultBaseURL
	}
	if c.API.Timeout == 0 {
		c.API.Timeout = DefaultAPITimeout
	}

	// Secrets defaults
	if c.Secrets.Path == "" {
		c.Secrets.Path = DefaultSecretsPath
	}
	if c.Secrets.Field == "" {
		c.Secrets.Field = DefaultSecretsField
	}

	// Discovery defaults
	if c.Discovery.Pages == 0 {
		c.Discovery.Pages = DefaultDiscoveryPages
	}
	if c.Discovery.PageSize == 0 {
		c.Discovery.PageSize = DefaultPageSize
	}
	if c.Discovery.Fields == "" {
		c.Discovery.Fields = DefaultDiscoveryFields
	}

	// Metrics defaults
	if len(c.Metrics.IDs) == 0 {
		c.Metrics.IDs = []string{DefaultMetricID}
	}

	// Fetch defaults
	if c.Fetch.Start == "" {
		c.Fetch.Start = DefaultFetchStart
	}
	if c.Fetch.Interval == "" {
		c.Fetch.Interval = DefaultFetchInterval
	}

	// Storage defaults
	if c.Storage.Root == "" {
		c.Storage.Root = DefaultStorageRoot
	}
	if c.Storage.TickerList == "" {
		c.Storage.TickerList = DefaultTickerList
	}
	if c.Storage.MetricList == "" {
		c.Storage.MetricList = DefaultMetricList
	}

	// Manifest defaults
	if c.Manifest.Backend == "" {
		c.Manifest.Backend = DefaultManifestBackend
	}
	if c.Manifest.Path == "" {
		c.Manifest.Path = filepath.Join(c.Storage.Root, DefaultManifestFile)
	}

	applyDBDefaults(&c.Database)

	// Logging defaults
	if c.Logging.Level == "" {
		c.Logging.Level = DefaultLogLevel
	}
	if c.Logging.Format == "" {
		c.Logging.Format = DefaultLogFormat
	}
	if c.Logging.Output == "" {
		c.Logging.Output = DefaultLogOutput
	}
	if c.Logging.MaxSize == 0 {
		c.Logging.MaxSize = DefaultLogMaxSize
	}
	if c.Logging.MaxBackups == 0 {
		c.Logging.MaxBackups = DefaultLogMaxBackups
	}
	if c.Logging.MaxAge == 0 {
		c.Logging.MaxAge = DefaultLogMaxAge
	}
}

func applyDBDefaults(db *DBConfig) {
	if db.Port == 0 {
		db.Port = DefaultDBPort
	}
	if db.SSLMode == "" {
		db.SSLMode = DefaultDBSSLMode
	}
	if db.MaxConns == 0 {
		db.MaxConns = DefaultMaxConns
	}
	if db.MinConns == 0 {
		db.MinConns = DefaultMinConns
	}
}
