// Package redirect resolves an ambiguous failed visit by fetching the
// location once and reporting where the request ended up.
//
// A web view cannot see a blocked cross-origin redirect; it only sees a
// failure without a status code. The Handler repeats the GET outside the
// sandbox and compares origins of the requested and final URLs.
package redirect

import (
	"context"
	"fmt"
	"net/url"
	"strings"

	"github.com/go-resty/resty/v2"
	"go.uber.org/zap"

	"github.com/GriffinCanCode/webshell/backend/internal/infrastructure/monitoring"
	"github.com/GriffinCanCode/webshell/backend/internal/providers/http/client"
)

// Kind classifies a probe outcome.
type Kind int

const (
	NoRedirect Kind = iota
	SameOriginRedirect
	CrossOriginRedirect
	Error
)

func (k Kind) String() string {
	switch k {
	case NoRedirect:
		return "no_redirect"
	case SameOriginRedirect:
		return "same_origin_redirect"
	case CrossOriginRedirect:
		return "cross_origin_redirect"
	default:
		return "error"
	}
}

// Result is the outcome of a probe. Location is the final URL when the
// request completed.
type Result struct {
	Kind     Kind
	Location string
	Err      error
}

// Handler issues probe requests.
type Handler struct {
	client  *client.Client
	logger  *zap.Logger
	metrics *monitoring.Metrics
}

// NewHandler creates a handler using c for requests.
func NewHandler(c *client.Client, logger *zap.Logger, metrics *monitoring.Metrics) *Handler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Handler{client: c, logger: logger, metrics: metrics}
}

// Fetch requests location and reports whether it redirected, and where.
func (h *Handler) Fetch(ctx context.Context, location string) Result {
	result := h.fetch(ctx, location)
	h.metrics.RecordRedirectProbe(result.Kind.String())
	h.logger.Debug("Redirect probe finished",
		zap.String("location", location),
		zap.String("result", result.Kind.String()),
		zap.String("final", result.Location),
		zap.Error(result.Err))
	return result
}

func (h *Handler) fetch(ctx context.Context, location string) Result {
	requested, err := url.Parse(location)
	if err != nil {
		return Result{Kind: Error, Err: fmt.Errorf("invalid location: %w", err)}
	}

	req, err := h.client.Request(ctx)
	if err != nil {
		return Result{Kind: Error, Err: err}
	}
	// One fetch only: a retry would turn a single probe into several GETs.
	req.AddRetryCondition(func(*resty.Response, error) bool { return false })
	resp, err := h.client.ExecuteWithBreaker(func() (*resty.Response, error) {
		return req.Get(location)
	})
	if err != nil {
		return Result{Kind: Error, Err: err}
	}
	if resp.IsError() {
		return Result{Kind: Error, Err: fmt.Errorf("probe returned %d", resp.StatusCode())}
	}

	final := requested
	if resp.RawResponse != nil && resp.RawResponse.Request != nil && resp.RawResponse.Request.URL != nil {
		final = resp.RawResponse.Request.URL
	}

	switch {
	case final.String() == requested.String():
		return Result{Kind: NoRedirect, Location: final.String()}
	case SameOrigin(requested, final):
		return Result{Kind: SameOriginRedirect, Location: final.String()}
	default:
		return Result{Kind: CrossOriginRedirect, Location: final.String()}
	}
}

// SameOrigin compares scheme, host and effective port.
func SameOrigin(a, b *url.URL) bool {
	return strings.EqualFold(a.Scheme, b.Scheme) &&
		strings.EqualFold(a.Hostname(), b.Hostname()) &&
		effectivePort(a) == effectivePort(b)
}

func effectivePort(u *url.URL) string {
	if port := u.Port(); port != "" {
		return port
	}
	switch strings.ToLower(u.Scheme) {
	case "https":
		return "443"
	case "http":
		return "80"
	}
	return ""
}
