// Package client provides the synchronous transport adapter used by the
// scraper: a single GET with a fixed per-request timeout, error
// classification, and request metrics.
package client

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// Prometheus metrics for transport operations.
var (
	requestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "cmc_requests_total",
		Help: "Total fetches by host and status",
	}, []string{"host", "status"})

	requestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "cmc_request_duration_seconds",
		Help:    "Fetch duration in seconds by host",
		Buckets: []float64{0.1, 0.5, 1, 2, 5, 10, 15},
	}, []string{"host"})

	errorsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "cmc_errors_total",
		Help: "Total fetch errors by class",
	}, []string{"class"})
)

// DefaultTimeout is the per-request timeout applied when none is configured.
const DefaultTimeout = 15 * time.Second

// DefaultConnectorLimit caps simultaneous connections and bounds the
// default worker-count estimate in the multiget engine.
const DefaultConnectorLimit = 100

// Client performs single GET requests against the scraped site.
type Client struct {
	httpClient *http.Client
	config     Config
	logger     zerolog.Logger
}

// Config holds the transport configuration.
type Config struct {
	// User-Agent header sent with every request.
	UserAgent string

	// Timeout applied per individual fetch attempt.
	Timeout time.Duration

	// ConnectorLimit is the maximum number of simultaneous connections.
	ConnectorLimit int
}

// DefaultConfig returns a safe default configuration.
func DefaultConfig() Config {
	return Config{
		UserAgent:      "coinmarket-client/0.1.0",
		Timeout:        DefaultTimeout,
		ConnectorLimit: DefaultConnectorLimit,
	}
}

// New creates a new transport client.
func New(cfg Config) (*Client, error) {
	if cfg.UserAgent == "" {
		return nil, fmt.Errorf("user-agent is required")
	}

	if cfg.Timeout <= 0 {
		cfg.Timeout = DefaultTimeout
	}

	if cfg.ConnectorLimit <= 0 {
		cfg.ConnectorLimit = DefaultConnectorLimit
	}

	logger := log.With().Str("component", "transport").Logger()

	return &Client{
		httpClient: &http.Client{
			Transport: &http.Transport{
				MaxConnsPerHost:     cfg.ConnectorLimit,
				MaxIdleConnsPerHost: cfg.ConnectorLimit,
			},
		},
		config: cfg,
		logger: logger,
	}, nil
}

// Fetch performs a single GET and returns the raw response body.
// A request exceeding the configured timeout fails with an error
// satisfying IsTimeout; other transport and status failures return a
// *FetchError with the matching class.
func (c *Client) Fetch(ctx context.Context, url string) (string, error) {
	start := time.Now()

	reqCtx, cancel := context.WithTimeout(ctx, c.config.Timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(reqCtx, http.MethodGet, url, nil)
	if err != nil {
		return "", fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("User-Agent", c.config.UserAgent)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		class := classifyError(err)
		errorsTotal.WithLabelValues(string(class)).Inc()
		requestsTotal.WithLabelValues(req.URL.Host, string(class)).Inc()
		c.logger.Debug().Err(err).Str("url", url).Str("class", string(class)).Msg("Fetch failed")
		if class == ErrorClassTimeout {
			err = fmt.Errorf("%w after %s: %v", ErrTimeout, c.config.Timeout, err)
		}
		return "", &FetchError{URL: url, Class: class, Err: err}
	}
	defer resp.Body.Close()

	requestDuration.WithLabelValues(req.URL.Host).Observe(time.Since(start).Seconds())
	requestsTotal.WithLabelValues(req.URL.Host, fmt.Sprintf("%d", resp.StatusCode)).Inc()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		errorsTotal.WithLabelValues(string(ErrorClassStatus)).Inc()
		c.logger.Debug().
			Str("url", url).
			Int("status", resp.StatusCode).
			Msg("Fetch returned error status")
		return "", &FetchError{URL: url, Class: ErrorClassStatus, StatusCode: resp.StatusCode}
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		class := classifyError(err)
		errorsTotal.WithLabelValues(string(class)).Inc()
		if class == ErrorClassTimeout {
			err = fmt.Errorf("%w reading body: %v", ErrTimeout, err)
		}
		return "", &FetchError{URL: url, Class: class, Err: err}
	}

	return string(body), nil
}

// Timeout returns the configured per-request timeout.
func (c *Client) Timeout() time.Duration {
	return c.config.Timeout
}

// ConnectorLimit returns the configured connection cap.
func (c *Client) ConnectorLimit() int {
	return c.config.ConnectorLimit
}

// SetHTTPClient sets a custom HTTP client (for testing).
func (c *Client) SetHTTPClient(client *http.Client) {
	c.httpClient = client
}
