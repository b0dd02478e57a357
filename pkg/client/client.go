// Package client provides the outbound HTTP GET capability used to query
// remote bank sources, with error classification and metrics.
package client

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/Sternrassler/bankbridge/pkg/bank"
)

// Prometheus metrics for upstream requests.
var (
	upstreamRequestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "bankbridge_upstream_requests_total",
		Help: "Total upstream requests by host and status",
	}, []string{"host", "status"})

	upstreamRequestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "bankbridge_upstream_request_duration_seconds",
		Help:    "Upstream request duration in seconds by host",
		Buckets: []float64{0.05, 0.1, 0.5, 1, 2, 5, 10},
	}, []string{"host"})

	upstreamErrorsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "bankbridge_upstream_errors_total",
		Help: "Total upstream errors by class",
	}, []string{"class"})
)

// Client sends GET requests to remote bank sources.
type Client struct {
	resty  *resty.Client
	config Config
	logger zerolog.Logger
}

// Config holds the client configuration.
type Config struct {
	// User-Agent header sent with every request
	UserAgent string

	// Upper bound for a single request, including reading the body.
	// Zero leaves the bound to the caller's context.
	Timeout time.Duration
}

// DefaultConfig returns a safe default configuration.
func DefaultConfig(userAgent string) Config {
	return Config{
		UserAgent: userAgent,
		Timeout:   10 * time.Second,
	}
}

// New creates a new client.
func New(cfg Config) (*Client, error) {
	if cfg.UserAgent == "" {
		return nil, fmt.Errorf("%w: user-agent is required", ErrInvalidConfig)
	}
	if cfg.Timeout < 0 {
		return nil, fmt.Errorf("%w: timeout must be >= 0 (got %s)", ErrInvalidConfig, cfg.Timeout)
	}

	r := resty.New().
		SetTimeout(cfg.Timeout).
		SetHeader("User-Agent", cfg.UserAgent).
		SetHeader("Accept", "application/json")

	return &Client{
		resty:  r,
		config: cfg,
		logger: log.With().Str("component", "upstream-client").Logger(),
	}, nil
}

// Get sends a GET to address and returns the status and body. Any HTTP
// response, whatever its status, is returned without error. Only transport
// failures (refused, DNS, timeout, cancelled context) produce an error,
// always an *UpstreamError with class network.
func (c *Client) Get(ctx context.Context, address string) (int, []byte, error) {
	host := hostOf(address)

	startTime := time.Now()
	defer func() {
		upstreamRequestDuration.WithLabelValues(host).Observe(time.Since(startTime).Seconds())
	}()

	c.logger.Debug().Str("address", address).Msg("Executing upstream request")

	resp, err := c.resty.R().SetContext(ctx).Get(address)
	if err != nil {
		upstreamErrorsTotal.WithLabelValues(string(ErrorClassNetwork)).Inc()
		upstreamRequestsTotal.WithLabelValues(host, "network_error").Inc()
		return 0, nil, &UpstreamError{
			Address:    address,
			ErrorClass: ErrorClassNetwork,
			Err:        err,
		}
	}

	status := resp.StatusCode()
	upstreamRequestsTotal.WithLabelValues(host, strconv.Itoa(status)).Inc()
	if class := ClassifyStatus(status); class != "" {
		upstreamErrorsTotal.WithLabelValues(string(class)).Inc()
		c.logger.Debug().
			Str("address", address).
			Int("status", status).
			Str("error_class", string(class)).
			Msg("Upstream returned non-200 status")
	}

	return status, resp.Body(), nil
}

// HTTPClient returns the underlying *http.Client (for testing).
func (c *Client) HTTPClient() *http.Client {
	return c.resty.GetClient()
}

// DecodeRecord parses a remote body into a validated bank record.
func DecodeRecord(body []byte) (bank.Record, error) {
	var r bank.Record
	if err := json.Unmarshal(body, &r); err != nil {
		return bank.Record{}, fmt.Errorf("%w: %v", ErrDecode, err)
	}
	if err := r.Validate(); err != nil {
		return bank.Record{}, fmt.Errorf("%w: %w", ErrDecode, err)
	}
	return r, nil
}

func hostOf(address string) string {
	u, err := url.Parse(address)
	if err != nil || u.Host == "" {
		return "invalid"
	}
	return u.Host
}
