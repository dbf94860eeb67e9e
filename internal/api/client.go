package api

import (
	"log/slog"
	"net/http"
	"time"
)

// DefaultBaseURL is the public Messari data API host.
const DefaultBaseURL = "https://data.messari.io"

// DefaultRetryBackoff is the base delay between retries when enabled.
const DefaultRetryBackoff = time.Second

// APIKeyHeader carries the API key on every request when one is set.
const APIKeyHeader = "x-messari-api-key"

// Client provides access to the Messari REST API.
type Client struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client
	logger     *slog.Logger

	maxRetries   int
	retryBackoff time.Duration
}

// ClientOption configures a Client.
type ClientOption func(*Client)

// NewClient creates a new REST API client. An empty apiKey sends
// unauthenticated requests.
func NewClient(baseURL, apiKey string, opts ...ClientOption) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}

	c := &Client{
		baseURL: baseURL,
		apiKey:  apiKey,
		httpClient: &http.Client{
			Timeout: 10 * time.Second,
		},
		logger:       slog.Default(),
		maxRetries:   0,
		retryBackoff: DefaultRetryBackoff,
	}

	for _, opt := range opts {
		opt(c)
	}

	if c.apiKey != "" {
		c.logger.Debug("messari client initialized", "authenticated", true)
	} else {
		c.logger.Debug("messari client initialized without api key", "authenticated", false)
	}

	return c
}

// WithTimeout sets the HTTP client timeout.
func WithTimeout(d time.Duration) ClientOption {
	return func(c *Client) {
		c.httpClient.Timeout = d
	}
}

// WithRetries sets the retry configuration. The default is no retries:
// a failed request is returned to the caller as-is. A non-positive backoff
// uses DefaultRetryBackoff.
func WithRetries(max int, backoff time.Duration) ClientOption {
	return func(c *Client) {
		if backoff <= 0 {
			backoff = DefaultRetryBackoff
		}
		c.maxRetries = max
		c.retryBackoff = backoff
	}
}

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) ClientOption {
	return func(c *Client) {
		c.logger = logger
	}
}

// WithHTTPClient sets a custom HTTP client.
func WithHTTPClient(hc *http.Client) ClientOption {
	return func(c *Client) {
		c.httpClient = hc
	}
}

// Authenticated reports whether requests carry an API key.
func (c *Client) Authenticated() bool {
	return c.apiKey != ""
}
