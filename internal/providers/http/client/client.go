package client

import (
	"context"
	"fmt"
	"net/http/cookiejar"
	"sync"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/hashicorp/go-retryablehttp"
	"golang.org/x/net/publicsuffix"
	"golang.org/x/time/rate"

	"github.com/GriffinCanCode/webshell/backend/internal/infrastructure/monitoring"
	"github.com/GriffinCanCode/webshell/backend/internal/infrastructure/resilience"
)

const breakerName = "origin"

// Config configures a Client. Zero values get defaults.
type Config struct {
	Timeout      time.Duration
	RetryCount   int
	RetryWaitMin time.Duration
	RetryWaitMax time.Duration
	UserAgent    string
	// RateLimit is requests per second; zero or less is unlimited.
	RateLimit float64
	// MaxRedirects bounds followed redirects; the final hop is reported as
	// a redirect loop error once exceeded.
	MaxRedirects int
	Metrics      *monitoring.Metrics
}

// DefaultConfig returns the settings used when a field is left zero.
func DefaultConfig() Config {
	return Config{
		Timeout:      30 * time.Second,
		RetryCount:   2,
		RetryWaitMin: 500 * time.Millisecond,
		RetryWaitMax: 5 * time.Second,
		UserAgent:    "WebShell/1.0",
		MaxRedirects: 10,
	}
}

// Client wraps resty with rate limiting and circuit breaker protection
type Client struct {
	Resty   *resty.Client
	Limiter *rate.Limiter
	Breaker *resilience.Breaker
	Mu      sync.RWMutex
}

// New creates a client
func New(cfg Config) *Client {
	defaults := DefaultConfig()
	if cfg.Timeout <= 0 {
		cfg.Timeout = defaults.Timeout
	}
	if cfg.RetryCount < 0 {
		cfg.RetryCount = 0
	}
	if cfg.RetryWaitMin <= 0 {
		cfg.RetryWaitMin = defaults.RetryWaitMin
	}
	if cfg.RetryWaitMax <= 0 {
		cfg.RetryWaitMax = defaults.RetryWaitMax
	}
	if cfg.UserAgent == "" {
		cfg.UserAgent = defaults.UserAgent
	}
	if cfg.MaxRedirects <= 0 {
		cfg.MaxRedirects = defaults.MaxRedirects
	}

	retryClient := retryablehttp.NewClient()
	retryClient.Logger = nil

	// publicsuffix keeps cookies from being set on shared suffixes like co.uk
	jar, _ := cookiejar.New(&cookiejar.Options{PublicSuffixList: publicsuffix.List})

	restyClient := resty.New().
		SetTimeout(cfg.Timeout).
		SetRetryCount(cfg.RetryCount).
		SetRetryWaitTime(cfg.RetryWaitMin).
		SetRetryMaxWaitTime(cfg.RetryWaitMax).
		SetHeader("User-Agent", cfg.UserAgent).
		SetRedirectPolicy(resty.FlexibleRedirectPolicy(cfg.MaxRedirects)).
		SetCookieJar(jar)
	restyClient.SetTransport(retryClient.HTTPClient.Transport)

	metrics := cfg.Metrics
	breaker := resilience.New(breakerName, resilience.Settings{
		HalfOpenRequests: 3,
		Window:           time.Minute,
		Cooldown:         15 * time.Second,
		ReadyToTrip: func(counts resilience.Counts) bool {
			return counts.ConsecutiveFailures >= 5 ||
				(counts.Requests >= 20 && float64(counts.TotalFailures)/float64(counts.Requests) > 0.6)
		},
		OnStateChange: func(name string, _, to resilience.State) {
			metrics.SetBreakerState(name, int(to))
		},
	})

	c := &Client{
		Resty:   restyClient,
		Breaker: breaker,
	}
	c.SetRateLimit(cfg.RateLimit)
	return c
}

// SetHeader adds a default header
func (c *Client) SetHeader(key, value string) {
	c.Mu.Lock()
	defer c.Mu.Unlock()
	c.Resty.SetHeader(key, value)
}

// SetRateLimit configures rate limiting (requests per second)
func (c *Client) SetRateLimit(rps float64) {
	c.Mu.Lock()
	defer c.Mu.Unlock()
	if rps <= 0 {
		c.Limiter = rate.NewLimiter(rate.Inf, 0)
		return
	}
	burst := int(rps)
	if burst < 1 {
		burst = 1
	}
	c.Limiter = rate.NewLimiter(rate.Limit(rps), burst)
}

// Request creates a request bound to ctx after the breaker and limiter admit it
func (c *Client) Request(ctx context.Context) (*resty.Request, error) {
	if c.Breaker.State() == resilience.StateOpen {
		return nil, resilience.ErrCircuitOpen
	}

	c.Mu.RLock()
	limiter := c.Limiter
	c.Mu.RUnlock()
	if err := limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("rate limit error: %w", err)
	}

	c.Mu.RLock()
	defer c.Mu.RUnlock()
	return c.Resty.R().SetContext(ctx), nil
}

// ExecuteWithBreaker runs an HTTP operation through the circuit breaker.
// Server errors count as failures; the response is still returned.
func (c *Client) ExecuteWithBreaker(fn func() (*resty.Response, error)) (*resty.Response, error) {
	var served *resty.Response
	resp, err := resilience.Do(c.Breaker, func() (*resty.Response, error) {
		resp, err := fn()
		if err != nil {
			return nil, err
		}
		if resp != nil && resp.StatusCode() >= 500 {
			served = resp
			return nil, fmt.Errorf("origin returned %d", resp.StatusCode())
		}
		return resp, nil
	})
	if served != nil {
		return served, nil
	}
	if err != nil {
		return nil, err
	}
	return resp, nil
}

// BreakerState returns the current circuit breaker state
func (c *Client) BreakerState() resilience.State {
	return c.Breaker.State()
}
