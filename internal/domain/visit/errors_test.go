package visit

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/url"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHTTPErrorFrom(t *testing.T) {
	tests := []struct {
		code   int
		family HTTPFamily
		reason string
	}{
		{400, FamilyClient, "Bad Request"},
		{401, FamilyClient, "Unauthorized"},
		{404, FamilyClient, "Not Found"},
		{422, FamilyClient, "Unprocessable Entity"},
		{499, FamilyClient, "Other Client Error"},
		{500, FamilyServer, "Internal Server Error"},
		{503, FamilyServer, "Service Unavailable"},
		{599, FamilyServer, "Other Server Error"},
		{0, FamilyUnknown, "Unknown Error"},
		{302, FamilyUnknown, "Unknown Error"},
	}

	for _, tt := range tests {
		t.Run(fmt.Sprint(tt.code), func(t *testing.T) {
			err := HTTPErrorFrom(tt.code)
			assert.Equal(t, tt.code, err.StatusCode)
			assert.Equal(t, tt.family, err.Family)
			assert.Equal(t, tt.reason, err.Description())
		})
	}
}

func TestWebErrorFrom(t *testing.T) {
	dnsErr := &url.Error{Op: "Get", URL: "https://nowhere.invalid", Err: &net.DNSError{Err: "no such host", Name: "nowhere.invalid"}}
	dialErr := &url.Error{Op: "Get", URL: "http://127.0.0.1:1", Err: &net.OpError{Op: "dial", Net: "tcp", Err: errors.New("connection refused")}}

	assert.Same(t, WebErrorHostLookup, WebErrorFrom(dnsErr))
	assert.Same(t, WebErrorConnect, WebErrorFrom(dialErr))
	assert.Same(t, WebErrorTimeout, WebErrorFrom(fmt.Errorf("probe: %w", context.DeadlineExceeded)))
	assert.Same(t, WebErrorRedirectLoop, WebErrorFrom(errors.New(`Get "/loop": stopped after 10 redirects`)))
	assert.Same(t, WebErrorBadURL, WebErrorFrom(&url.Error{Op: "parse", URL: "::", Err: errors.New("missing protocol scheme")}))
	assert.Same(t, WebErrorUnknown, WebErrorFrom(errors.New("boom")))
	assert.Same(t, WebErrorUnknown, WebErrorFrom(nil))
}

func TestWebErrorForCode(t *testing.T) {
	assert.Same(t, WebErrorTimeout, WebErrorForCode(-8, "ignored"))

	custom := WebErrorForCode(-99, "Something odd")
	assert.Equal(t, -99, custom.Code)
	assert.Equal(t, "Something odd", custom.Description())

	assert.Equal(t, "Unknown", WebErrorForCode(-98, "").Description())
}

func TestFailureWrapsStaleContent(t *testing.T) {
	plain := Failure(false, HTTPErrorFrom(500))
	var stale *StaleContentError
	assert.False(t, errors.As(plain, &stale))

	wrapped := Failure(true, HTTPErrorFrom(500))
	require.True(t, errors.As(wrapped, &stale))

	var httpErr *HTTPError
	require.True(t, errors.As(wrapped, &httpErr))
	assert.Equal(t, 500, httpErr.StatusCode)
	assert.Equal(t, "Internal Server Error", stale.Description())
}

func TestLoadErrors(t *testing.T) {
	assert.True(t, errors.Is(fmt.Errorf("boot: %w", ErrNotReady), ErrNotReady))
	assert.Equal(t, "Turbo Not Present", ErrNotPresent.Description())
	assert.Equal(t, "Turbo Not Ready", ErrNotReady.Description())
}

func TestKind(t *testing.T) {
	assert.Equal(t, "load_not_present", Kind(ErrNotPresent))
	assert.Equal(t, "load_not_ready", Kind(ErrNotReady))
	assert.Equal(t, "http_client", Kind(HTTPErrorFrom(404)))
	assert.Equal(t, "http_server", Kind(Failure(true, HTTPErrorFrom(502))))
	assert.Equal(t, "web", Kind(WebErrorUnknown))
	assert.Equal(t, "configuration", Kind(&ConfigurationError{Message: "nope"}))
	assert.Equal(t, "unknown", Kind(errors.New("other")))
}
