package api

import (
	"net/http"
	"time"

	"github.com/dmitrijs2005/useraccounts/internal/logging"
	"golang.org/x/time/rate"
)

// Doer sends an HTTP request. *http.Client satisfies it.
type Doer interface {
	Do(req *http.Request) (*http.Response, error)
}

type Option func(*Client)

// WithHTTPClient replaces the transport.
func WithHTTPClient(d Doer) Option {
	return func(c *Client) { c.http = d }
}

// WithTimeout bounds every call, including reading the response body.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) { c.timeout = d }
}

func WithLogger(l logging.Logger) Option {
	return func(c *Client) { c.log = l }
}

// WithAuthScheme sets the Authorization scheme. An empty scheme sends the
// bare token.
func WithAuthScheme(scheme string) Option {
	return func(c *Client) { c.scheme = scheme }
}

// WithRateLimit throttles outgoing calls to r per second with the given
// burst. A non-positive r disables throttling.
func WithRateLimit(r rate.Limit, burst int) Option {
	return func(c *Client) {
		if r <= 0 {
			c.limiter = nil
			return
		}
		if burst < 1 {
			burst = 1
		}
		c.limiter = rate.NewLimiter(r, burst)
	}
}

func WithUserAgent(ua string) Option {
	return func(c *Client) { c.userAgent = ua }
}
