// Package client is the shell's outbound HTTP client for the web origin.
//
// Built on go-resty/resty over a go-retryablehttp pooled transport, it adds
// a cookie jar shared by every request, a token bucket rate limiter, and a
// circuit breaker from the resilience package. The redirect prober and the
// remote path configuration loader both use it.
//
// Example Usage:
//
//	c := client.New(client.Config{Timeout: 10 * time.Second})
//	req, err := c.Request(ctx)
//	resp, err := c.ExecuteWithBreaker(func() (*resty.Response, error) {
//		return req.Get(url)
//	})
package client
