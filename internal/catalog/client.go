// Package catalog is a client for the Kampita music catalog API. It exposes a
// raw Call primitive plus typed helpers for songs, albums, artists, playlists
// and search, and maps catalog songs onto playable tracks.
package catalog

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/hxnx/kampita/internal/metrics"
	log "github.com/sirupsen/logrus"
)

// Params are query parameters. Nil values are omitted from the request.
type Params map[string]any

type Client struct {
	baseURL string
	http    *http.Client
	logger  *log.Entry
}

type Option func(*Client)

func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		c.http = hc
	}
}

func WithLogger(logger *log.Entry) Option {
	return func(c *Client) {
		c.logger = logger
	}
}

// New builds a client for baseURL. A zero timeout means 15 seconds.
func New(baseURL string, timeout time.Duration, opts ...Option) *Client {
	if timeout <= 0 {
		timeout = 15 * time.Second
	}

	c := &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    &http.Client{Timeout: timeout},
		logger:  log.WithField("component", "catalog"),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

func (c *Client) BaseURL() string {
	return c.baseURL
}

// URL renders the request URL for endpoint and params.
func (c *Client) URL(endpoint string, params Params) string {
	u := c.baseURL + "/" + strings.TrimLeft(endpoint, "/")

	values := url.Values{}
	for key, value := range params {
		if value == nil {
			continue
		}
		values.Add(key, formatParam(value))
	}
	if len(values) == 0 {
		return u
	}
	return u + "?" + values.Encode()
}

// Call performs a GET against endpoint and returns the decoded JSON body.
func (c *Client) Call(ctx context.Context, endpoint string, params Params) (any, error) {
	target := c.URL(endpoint, params)
	route := routeOf(endpoint)
	start := time.Now()

	data, status, err := c.do(ctx, target)
	metrics.CatalogLatency.WithLabelValues(route).Observe(time.Since(start).Seconds())
	metrics.CatalogRequests.WithLabelValues(route, status).Inc()

	if err != nil {
		c.logger.WithFields(log.Fields{"endpoint": route, "status": status}).WithError(err).Debug("catalog request failed")
		return nil, err
	}
	return data, nil
}

func (c *Client) do(ctx context.Context, target string) (any, string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
	if err != nil {
		return nil, "error", &TransportError{URL: target, Err: err}
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, "error", &TransportError{URL: target, Err: err}
	}
	defer resp.Body.Close()

	status := strconv.Itoa(resp.StatusCode)
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, status, &RequestFailedError{StatusCode: resp.StatusCode, URL: target}
	}

	var data any
	if err := json.NewDecoder(resp.Body).Decode(&data); err != nil {
		return nil, status, &TransportError{URL: target, Err: fmt.Errorf("decoding response: %w", err)}
	}
	return data, status, nil
}

func formatParam(value any) string {
	switch v := value.(type) {
	case string:
		return v
	case bool:
		return strconv.FormatBool(v)
	case int:
		return strconv.Itoa(v)
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64)
	case fmt.Stringer:
		return v.String()
	default:
		return fmt.Sprint(v)
	}
}

// routeOf collapses identifiers in endpoint so metrics keep a bounded label
// set. "songs/123/lyrics" becomes "songs/:id/lyrics".
func routeOf(endpoint string) string {
	parts := strings.Split(strings.Trim(endpoint, "/"), "/")
	if len(parts) < 2 || parts[0] == "search" {
		return strings.Join(parts, "/")
	}
	parts[1] = ":id"
	return strings.Join(parts, "/")
}
