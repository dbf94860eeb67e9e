package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"math/rand/v2"
	"net/http"
	"net/url"
	"sort"
	"strings"
	"time"

	"github.com/rickgao/messari-data/internal/version"
)

// APIError represents an error from the Messari API.
type APIError struct {
	StatusCode int
	Message    string
	Body       []byte
}

func (e *APIError) Error() string {
	return fmt.Sprintf("messari api error %d: %s", e.StatusCode, e.Message)
}

// IsRetryable returns true if the error should trigger a retry.
func (e *APIError) IsRetryable() bool {
	return e.StatusCode >= 500 || e.StatusCode == 429
}

// errorEnvelope is the error shape Messari returns alongside 4xx/5xx codes.
type errorEnvelope struct {
	Status Status `json:"status"`
}

// newAPIError builds an APIError, preferring the message from the response body.
func newAPIError(statusCode int, body []byte) *APIError {
	msg := http.StatusText(statusCode)
	var env errorEnvelope
	if err := json.Unmarshal(body, &env); err == nil && env.Status.ErrorMessage != "" {
		msg = env.Status.ErrorMessage
	}
	return &APIError{
		StatusCode: statusCode,
		Message:    msg,
		Body:       body,
	}
}

// doRequest performs an HTTP request with the given method and path.
func (c *Client) doRequest(ctx context.Context, method, path string, query url.Values, body []byte) ([]byte, error) {
	if !strings.HasPrefix(path, "/") {
		path = "/" + path
	}
	fullURL := c.baseURL + path
	if len(query) > 0 {
		fullURL += "?" + encodeQuery(query)
	}

	var reqBody io.Reader
	if body != nil {
		reqBody = bytes.NewReader(body)
	}

	req, err := http.NewRequestWithContext(ctx, method, fullURL, reqBody)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}

	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", version.UserAgent())
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.apiKey != "" {
		req.Header.Set(APIKeyHeader, c.apiKey)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("do request: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}

	if resp.StatusCode >= 400 {
		return nil, newAPIError(resp.StatusCode, respBody)
	}

	return respBody, nil
}

// doWithRetry performs a request, retrying retryable failures with
// exponential backoff when retries are enabled.
func (c *Client) doWithRetry(ctx context.Context, method, path string, query url.Values, body []byte) ([]byte, error) {
	var lastErr error
	backoff := c.retryBackoff

	for attempt := 0; attempt <= c.maxRetries; attempt++ {
		if attempt > 0 {
			// backoff * (0.5 to 1.5)
			jitter := backoff/2 + time.Duration(rand.Int64N(int64(backoff)))
			c.logger.Debug("retrying request",
				"attempt", attempt,
				"backoff", jitter,
				"path", path,
			)

			select {
			case <-ctx.Done():
				return nil, ctx.Err()
			case <-time.After(jitter):
			}

			backoff *= 2
		}

		respBody, err := c.doRequest(ctx, method, path, query, body)
		if err == nil {
			return respBody, nil
		}

		lastErr = err

		var apiErr *APIError
		if !errors.As(err, &apiErr) || !apiErr.IsRetryable() {
			return nil, err
		}
	}

	if c.maxRetries == 0 {
		return nil, lastErr
	}
	return nil, fmt.Errorf("max retries exceeded: %w", lastErr)
}

// Send issues a request and returns the decoded JSON body. params are
// encoded into the query string as given; a non-nil body is sent as JSON.
// Messari only serves GET endpoints, so resource methods never set a body.
func (c *Client) Send(ctx context.Context, method, path string, params url.Values, body any) (map[string]any, error) {
	var payload []byte
	if body != nil {
		var err error
		payload, err = json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("marshal request body: %w", err)
		}
	}

	c.logger.Debug("sending request", "method", method, "path", path, "params", params.Encode())

	respBody, err := c.doWithRetry(ctx, method, path, params, payload)
	if err != nil {
		return nil, err
	}

	var result map[string]any
	if err := json.Unmarshal(respBody, &result); err != nil {
		return nil, fmt.Errorf("unmarshal response: %w", err)
	}

	return result, nil
}

// get performs a GET request and decodes the body into result.
func (c *Client) get(ctx context.Context, path string, query url.Values, result any) error {
	c.logger.Debug("sending request", "method", http.MethodGet, "path", path, "params", query.Encode())

	body, err := c.doWithRetry(ctx, http.MethodGet, path, query, nil)
	if err != nil {
		return err
	}

	if err := json.Unmarshal(body, result); err != nil {
		return fmt.Errorf("unmarshal response: %w", err)
	}

	return nil
}

// fieldsQuery returns a query carrying the field selection, if any.
func fieldsQuery(fields string) url.Values {
	query := url.Values{}
	if fields != "" {
		query.Set("fields", fields)
	}
	return query
}

// encodeQuery is url.Values.Encode, except that a key whose only value is
// empty is sent as a bare flag ("with-metrics" rather than "with-metrics=").
func encodeQuery(query url.Values) string {
	keys := make([]string, 0, len(query))
	for k := range query {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	var buf strings.Builder
	for _, k := range keys {
		values := query[k]
		if len(values) == 1 && values[0] == "" {
			if buf.Len() > 0 {
				buf.WriteByte('&')
			}
			buf.WriteString(url.QueryEscape(k))
			continue
		}
		for _, v := range values {
			if buf.Len() > 0 {
				buf.WriteByte('&')
			}
			buf.WriteString(url.QueryEscape(k))
			buf.WriteByte('=')
			buf.WriteString(url.QueryEscape(v))
		}
	}
	return buf.String()
}

// mergeQuery copies every value of extra into query verbatim.
func mergeQuery(query, extra url.Values) {
	for key, values := range extra {
		for _, v := range values {
			query.Add(key, v)
		}
	}
}
