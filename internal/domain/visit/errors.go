package visit

import (
	"context"
	"crypto/tls"
	"errors"
	"fmt"
	"net"
	"net/http"
	"net/url"
	"strings"
)

// Error is implemented by every failure reported to a screen.
type Error interface {
	error
	Description() string
}

// LoadErrorKind distinguishes why the engine's navigation library is unusable.
type LoadErrorKind int

const (
	LoadNotPresent LoadErrorKind = iota
	LoadNotReady
)

// LoadError reports that the page loaded but the navigation library did not.
type LoadError struct {
	Kind LoadErrorKind
}

var (
	// ErrNotPresent is reported when no navigation library executed on the page.
	ErrNotPresent = &LoadError{Kind: LoadNotPresent}
	// ErrNotReady is reported when the library loaded but refused to start.
	ErrNotReady = &LoadError{Kind: LoadNotReady}
)

func (e *LoadError) Description() string {
	if e.Kind == LoadNotReady {
		return "Turbo Not Ready"
	}
	return "Turbo Not Present"
}

func (e *LoadError) Error() string {
	return "load error: " + e.Description()
}

// HTTPFamily groups status codes.
type HTTPFamily int

const (
	FamilyUnknown HTTPFamily = iota
	FamilyClient
	FamilyServer
)

func (f HTTPFamily) String() string {
	switch f {
	case FamilyClient:
		return "client"
	case FamilyServer:
		return "server"
	default:
		return "unknown"
	}
}

// HTTPError is a failed visit request with an HTTP status.
type HTTPError struct {
	StatusCode int
	Reason     string
	Family     HTTPFamily
}

// HTTPErrorFrom classifies a status code.
func HTTPErrorFrom(statusCode int) *HTTPError {
	e := &HTTPError{StatusCode: statusCode, Reason: http.StatusText(statusCode)}

	switch {
	case statusCode >= 400 && statusCode <= 499:
		e.Family = FamilyClient
		if e.Reason == "" {
			e.Reason = "Other Client Error"
		}
	case statusCode >= 500 && statusCode <= 599:
		e.Family = FamilyServer
		if e.Reason == "" {
			e.Reason = "Other Server Error"
		}
	default:
		e.Family = FamilyUnknown
		e.Reason = "Unknown Error"
	}
	return e
}

func (e *HTTPError) Description() string {
	return e.Reason
}

func (e *HTTPError) Error() string {
	return fmt.Sprintf("http %s error %d: %s", e.Family, e.StatusCode, e.Reason)
}

// WebError is a transport failure below HTTP. Codes follow the embedded
// engine's own numbering.
type WebError struct {
	Code   int
	Reason string
}

var (
	WebErrorUnknown            = &WebError{Code: -1, Reason: "Unknown"}
	WebErrorHostLookup         = &WebError{Code: -2, Reason: "Host Lookup"}
	WebErrorAuthentication     = &WebError{Code: -4, Reason: "Authentication"}
	WebErrorConnect            = &WebError{Code: -6, Reason: "Connect"}
	WebErrorIO                 = &WebError{Code: -7, Reason: "IO"}
	WebErrorTimeout            = &WebError{Code: -8, Reason: "Timeout"}
	WebErrorRedirectLoop       = &WebError{Code: -9, Reason: "Redirect Loop"}
	WebErrorUnsupportedScheme  = &WebError{Code: -10, Reason: "Unsupported Scheme"}
	WebErrorFailedSSLHandshake = &WebError{Code: -11, Reason: "Failed SSL Handshake"}
	WebErrorBadURL             = &WebError{Code: -12, Reason: "Bad URL"}
)

var webErrorsByCode = map[int]*WebError{
	WebErrorUnknown.Code:            WebErrorUnknown,
	WebErrorHostLookup.Code:         WebErrorHostLookup,
	WebErrorAuthentication.Code:     WebErrorAuthentication,
	WebErrorConnect.Code:            WebErrorConnect,
	WebErrorIO.Code:                 WebErrorIO,
	WebErrorTimeout.Code:            WebErrorTimeout,
	WebErrorRedirectLoop.Code:       WebErrorRedirectLoop,
	WebErrorUnsupportedScheme.Code:  WebErrorUnsupportedScheme,
	WebErrorFailedSSLHandshake.Code: WebErrorFailedSSLHandshake,
	WebErrorBadURL.Code:             WebErrorBadURL,
}

// WebErrorForCode returns the known error for an engine error code, or a new
// WebError carrying description.
func WebErrorForCode(code int, description string) *WebError {
	if known, ok := webErrorsByCode[code]; ok {
		return known
	}
	if description == "" {
		description = WebErrorUnknown.Reason
	}
	return &WebError{Code: code, Reason: description}
}

// WebErrorFrom classifies a Go transport error.
func WebErrorFrom(err error) *WebError {
	if err == nil {
		return WebErrorUnknown
	}

	var dnsErr *net.DNSError
	if errors.As(err, &dnsErr) {
		return WebErrorHostLookup
	}

	var certErr *tls.CertificateVerificationError
	if errors.As(err, &certErr) {
		return WebErrorFailedSSLHandshake
	}

	if errors.Is(err, context.DeadlineExceeded) {
		return WebErrorTimeout
	}

	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return WebErrorTimeout
	}

	var opErr *net.OpError
	if errors.As(err, &opErr) && opErr.Op == "dial" {
		return WebErrorConnect
	}

	msg := err.Error()
	switch {
	case strings.Contains(msg, "stopped after"):
		return WebErrorRedirectLoop
	case strings.Contains(msg, "unsupported protocol scheme"):
		return WebErrorUnsupportedScheme
	}

	var urlErr *url.Error
	if errors.As(err, &urlErr) && urlErr.Op == "parse" {
		return WebErrorBadURL
	}

	return WebErrorUnknown
}

func (e *WebError) Description() string {
	return e.Reason
}

func (e *WebError) Error() string {
	return fmt.Sprintf("web error %d: %s", e.Code, e.Reason)
}

// ConfigurationError reports an illegal navigation setup. It is never
// recovered from; it goes straight back to the integrator.
type ConfigurationError struct {
	Message string
}

func (e *ConfigurationError) Description() string {
	return e.Message
}

func (e *ConfigurationError) Error() string {
	return "configuration error: " + e.Message
}

// StaleContentError wraps a failure that happened while a cached snapshot of
// the page is available. The screen decides whether stale content is enough.
type StaleContentError struct {
	Err error
}

func (e *StaleContentError) Description() string {
	var inner Error
	if errors.As(e.Err, &inner) {
		return inner.Description()
	}
	return e.Err.Error()
}

func (e *StaleContentError) Error() string {
	return "stale content available: " + e.Err.Error()
}

func (e *StaleContentError) Unwrap() error {
	return e.Err
}

// Failure wraps err as a StaleContentError when a cached snapshot exists.
func Failure(hasCachedSnapshot bool, err error) error {
	if hasCachedSnapshot {
		return &StaleContentError{Err: err}
	}
	return err
}

// Kind returns a short, stable label for metrics and logs.
func Kind(err error) string {
	var (
		loadErr   *LoadError
		httpErr   *HTTPError
		webErr    *WebError
		configErr *ConfigurationError
	)
	switch {
	case errors.As(err, &loadErr):
		if loadErr.Kind == LoadNotReady {
			return "load_not_ready"
		}
		return "load_not_present"
	case errors.As(err, &httpErr):
		return "http_" + httpErr.Family.String()
	case errors.As(err, &webErr):
		return "web"
	case errors.As(err, &configErr):
		return "configuration"
	default:
		return "unknown"
	}
}
