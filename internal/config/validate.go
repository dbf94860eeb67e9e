package config

import (
	"errors"
	"fmt"
)

// Validate checks that all required fields are set and values are valid.
// Request parameters such as the interval are left for the API to reject.
func (c *Config) Validate() error {
	if c.API.BaseURL == "" {
		return errors.New("api.base_url is required")
	}
	if c.API.MaxRetries < 0 {
		return errors.New("api.max_retries must be >= 0")
	}

	if c.Discovery.Pages < 1 {
		return errors.New("discovery.pages must be >= 1")
	}
	if c.Discovery.PageSize < 0 {
		return errors.New("discovery.page_size must be >= 0")
	}

	if len(c.Metrics.IDs) == 0 {
		return errors.New("metrics.ids must not be empty")
	}
	for i, id := range c.Metrics.IDs {
		if id == "" {
			return fmt.Errorf("metrics.ids[%d] is empty", i)
		}
	}

	if c.Storage.Root == "" {
		return errors.New("storage.root is required")
	}
	if c.Storage.TickerList == "" {
		return errors.New("storage.ticker_list is required")
	}
	if c.Storage.MetricList == "" {
		return errors.New("storage.metric_list is required")
	}

	switch c.Manifest.Backend {
	case ManifestFile:
		if c.Manifest.Path == "" {
			return errors.New("manifest.path is required for the file backend")
		}
	case ManifestPostgres:
		if err := c.Database.validate("database"); err != nil {
			return err
		}
	case ManifestNone:
	default:
		return fmt.Errorf("manifest.backend must be one of file, postgres, none, got %q", c.Manifest.Backend)
	}

	if c.Logging.Output == "file" && c.Logging.FilePath == "" {
		return errors.New("logging.file_path is required when logging.output is file")
	}

	return nil
}

func (db *DBConfig) validate(prefix string) error {
	if db.Host == "" {
		return fmt.Errorf("%s.host is required", prefix)
	}
	if db.Name == "" {
		return fmt.Errorf("%s.name is required", prefix)
	}
	if db.User == "" {
		return fmt.Errorf("%s.user is required", prefix)
	}
	if db.Password == "" {
		return fmt.Errorf("%s.password is required", prefix)
	}
	if db.MaxConns < 1 {
		return fmt.Errorf("%s.max_conns must be >= 1", prefix)
	}
	if db.MinConns < 0 {
		return fmt.Errorf("%s.min_conns must be >= 0", prefix)
	}
	if db.MinConns > db.MaxConns {
		return fmt.Errorf("%s.min_conns (%d) cannot exceed max_conns (%d)", prefix, db.MinConns, db.MaxConns)
	}
	return nil
}
