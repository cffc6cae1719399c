package transport

import (
	"fmt"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/hashicorp/go-retryablehttp"
	"golang.org/x/time/rate"

	"github.com/labelboard/backend/internal/infrastructure/logging"
	"github.com/labelboard/backend/internal/infrastructure/monitoring"
	"github.com/labelboard/backend/internal/infrastructure/resilience"
)

// Config defines the outbound client settings
type Config struct {
	BaseURL      string
	Token        string
	Timeout      time.Duration
	RetryMax     int
	RetryWaitMin time.Duration
	RetryWaitMax time.Duration
	// RequestsPerSecond caps outbound call rate; zero means unlimited.
	RequestsPerSecond float64
}

// DefaultConfig returns production-ready client settings
func DefaultConfig(baseURL string) Config {
	return Config{
		BaseURL:      baseURL,
		Timeout:      30 * time.Second,
		RetryMax:     3,
		RetryWaitMin: 1 * time.Second,
		RetryWaitMax: 15 * time.Second,
	}
}

// Client is the annotation API client
type Client struct {
	resty   *resty.Client
	limiter *rate.Limiter
	breaker *resilience.Breaker
	logger  *logging.Logger
	metrics *monitoring.Metrics
}

// New creates a client with retries, rate limiting, and a circuit breaker
func New(cfg Config) *Client {
	retryClient := retryablehttp.NewClient()
	retryClient.RetryMax = cfg.RetryMax
	retryClient.RetryWaitMin = cfg.RetryWaitMin
	retryClient.RetryWaitMax = cfg.RetryWaitMax
	retryClient.Logger = nil

	restyClient := resty.New().
		SetBaseURL(cfg.BaseURL).
		SetTimeout(cfg.Timeout).
		SetHeader("User-Agent", "labelboard-backend/1.0").
		SetTransport(retryClient.HTTPClient.Transport)
	if cfg.Token != "" {
		restyClient.SetAuthToken(cfg.Token)
	}

	limiter := rate.NewLimiter(rate.Inf, 0)
	if cfg.RequestsPerSecond > 0 {
		limiter = rate.NewLimiter(rate.Limit(cfg.RequestsPerSecond), int(cfg.RequestsPerSecond)+1)
	}

	breaker := resilience.New("annotation-api", resilience.Settings{
		MaxProbes: 3,
		Cooldown:  30 * time.Second,
		TripAfter: func(counts resilience.Counts) bool {
			return counts.ConsecutiveFailures >= 5
		},
	})

	return &Client{
		resty:   restyClient,
		limiter: limiter,
		breaker: breaker,
		logger:  logging.NewNop(),
	}
}

// WithLogger attaches a logger
func (c *Client) WithLogger(logger *logging.Logger) *Client {
	c.logger = logger
	return c
}

// WithMetrics attaches remote-call metrics
func (c *Client) WithMetrics(metrics *monitoring.Metrics) *Client {
	c.metrics = metrics
	return c
}

// BreakerState returns the circuit breaker's current position
func (c *Client) BreakerState() resilience.State {
	return c.breaker.State()
}

// execute runs one HTTP exchange under the breaker. Only transport-level
// faults count as breaker failures; a response the server produced, with
// any status, proves the remote is reachable.
func (c *Client) execute(fn func() (*resty.Response, error)) (*resty.Response, error) {
	var resp *resty.Response
	err := c.breaker.Execute(func() error {
		var callErr error
		resp, callErr = fn()
		return callErr
	})
	if err == resilience.ErrOpen || err == resilience.ErrTooManyProbes {
		return nil, fmt.Errorf("annotation API unavailable: %w", err)
	}
	if err != nil {
		return nil, err
	}
	return resp, nil
}
