package config

import "time"

// Config is the root configuration shared by every collector command.
type Config struct {
	API       APIConfig       `yaml:"api"`
	Secrets   SecretsConfig   `yaml:"secrets"`
	Discovery DiscoveryConfig `yaml:"discovery"`
	Metrics   MetricsConfig   `yaml:"metrics"`
	Fetch     FetchConfig     `yaml:"fetch"`
	Storage   StorageConfig   `yaml:"storage"`
	Manifest  ManifestConfig  `yaml:"manifest"`
	Database  DBConfig        `yaml:"database"`
	Logging   LoggingConfig   `yaml:"logging"`
}

// APIConfig holds Messari API settings.
type APIConfig struct {
	BaseURL    string        `yaml:"base_url"`
	APIKey     string        `yaml:"api_key"` // Overrides the secrets file when set
	Timeout    time.Duration `yaml:"timeout"`
	MaxRetries int           `yaml:"max_retries"` // 0 disables retries
}

// SecretsConfig points at the YAML key/value file holding the API key.
type SecretsConfig struct {
	Path  string `yaml:"path"`
	Field string `yaml:"field"`
}

// DiscoveryConfig drives ticker discovery.
type DiscoveryConfig struct {
	Pages    int      `yaml:"pages"`
	PageSize int      `yaml:"page_size"` // Assets per page, defaults to 20
	Fields   string   `yaml:"fields"`
	Exclude  []string `yaml:"exclude"` // Symbols known to carry bad data
}

// MetricsConfig lists the time-series metrics to collect.
type MetricsConfig struct {
	IDs []string `yaml:"ids"`
}

// FetchConfig sets the time-series request window.
type FetchConfig struct {
	Start           string `yaml:"start"`
	End             string `yaml:"end"` // Empty means today
	Interval        string `yaml:"interval"`
	ContinueOnError bool   `yaml:"continue_on_error"`
}

// StorageConfig locates the output tree and persisted lists.
type StorageConfig struct {
	Root       string `yaml:"root"`
	TickerList string `yaml:"ticker_list"`
	MetricList string `yaml:"metric_list"`
}

// ManifestConfig selects where completed fetches are recorded.
type ManifestConfig struct {
	Backend string `yaml:"backend"` // file, postgres or none
	Path    string `yaml:"path"`    // For the file backend
}

// DBConfig holds a single database connection.
type DBConfig struct {
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	Name     string `yaml:"name"`
	User     string `yaml:"user"`
	Password string `yaml:"password"`
	SSLMode  string `yaml:"ssl_mode"`
	MaxConns int    `yaml:"max_conns"`
	MinConns int    `yaml:"min_conns"`
}

// LoggingConfig configures structured logging.
type LoggingConfig struct {
	Level      string `yaml:"level"`       // debug, info, warn, error
	Format     string `yaml:"format"`      // text, json
	Output     string `yaml:"output"`      // stdout, stderr, file
	FilePath   string `yaml:"file_path"`   // Required for output=file
	MaxSize    int    `yaml:"max_size"`    // MB before rotation
	MaxBackups int    `yaml:"max_backups"` // Rotated files to keep
	MaxAge     int    `yaml:"max_age"`     // Days to keep rotated files
	Compress   bool   `yaml:"compress"`
}
