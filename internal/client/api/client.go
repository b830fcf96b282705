package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/dmitrijs2005/useraccounts/internal/common"
	"github.com/dmitrijs2005/useraccounts/internal/logging"
	"github.com/elnormous/contenttype"
	"github.com/google/uuid"
	"golang.org/x/time/rate"
)

// maxErrorBody caps how much of a non-2xx body ends up in a message.
const maxErrorBody = 64 << 10

var jsonMediaType = contenttype.NewMediaType("application/json")

// TokenSource supplies the current session token; "" means none.
type TokenSource interface {
	Token() string
}

type Client struct {
	baseURL   *url.URL
	tokens    TokenSource
	http      Doer
	log       logging.Logger
	scheme    string
	userAgent string
	timeout   time.Duration
	limiter   *rate.Limiter
}

// New returns a Client for the service rooted at baseURL, which must be an
// absolute http or https URL. tokens may be nil for a client that never
// authenticates.
func New(baseURL string, tokens TokenSource, opts ...Option) (*Client, error) {
	u, err := url.Parse(baseURL)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidBaseURL, err)
	}
	if (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return nil, fmt.Errorf("%w: %q", ErrInvalidBaseURL, baseURL)
	}
	if !strings.HasSuffix(u.Path, "/") {
		u.Path += "/"
	}

	c := &Client{
		baseURL:   u,
		tokens:    tokens,
		http:      &http.Client{},
		log:       logging.Nop(),
		scheme:    "Bearer",
		userAgent: "useraccounts-client",
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// BaseURL returns the service root the client was built with.
func (c *Client) BaseURL() string {
	return c.baseURL.String()
}

func (c *Client) resolve(path string) (*url.URL, error) {
	ref, err := url.Parse(strings.TrimLeft(path, "/"))
	if err != nil {
		return nil, err
	}
	if ref.IsAbs() || ref.Host != "" {
		return nil, fmt.Errorf("path %q must be relative to the base url", path)
	}
	u := c.baseURL.ResolveReference(ref)
	if !strings.HasPrefix(u.Path, c.baseURL.Path) {
		return nil, fmt.Errorf("path %q escapes the base url", path)
	}
	return u, nil
}

func hasBody(method string) bool {
	switch method {
	case http.MethodGet, http.MethodHead, http.MethodDelete, http.MethodOptions:
		return false
	}
	return true
}

func (c *Client) newRequest(ctx context.Context, method, path string, body any, requestID string) (*http.Request, error) {
	target, err := c.resolve(path)
	if err != nil {
		return nil, err
	}

	var reader io.Reader
	if body != nil && hasBody(method) {
		b, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("encode body: %w", err)
		}
		reader = bytes.NewReader(b)
	}

	req, err := http.NewRequestWithContext(ctx, method, target.String(), reader)
	if err != nil {
		return nil, err
	}
	if reader != nil {
		req.Header.Set("Content-Type", jsonMediaType.String())
	}
	req.Header.Set("Accept", jsonMediaType.String())
	req.Header.Set("User-Agent", c.userAgent)
	req.Header.Set(common.RequestIDHeaderName, requestID)

	if c.tokens != nil {
		if tok := c.tokens.Token(); tok != "" {
			if c.scheme != "" {
				tok = c.scheme + " " + tok
			}
			req.Header.Set(common.AuthorizationHeaderName, tok)
		}
	}
	return req, nil
}

// Do performs one call. body, when non-nil, is sent as JSON for methods
// that carry a body. out, when non-nil, receives the decoded 2xx response;
// an empty response leaves it untouched. Any returned error is a
// *RequestError.
func (c *Client) Do(ctx context.Context, method, path string, body, out any) error {
	requestID := uuid.NewString()
	log := c.log.With("method", method, "path", path, "request_id", requestID)

	if c.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.timeout)
		defer cancel()
	}

	req, err := c.newRequest(ctx, method, path, body, requestID)
	if err != nil {
		return requestError(err)
	}

	if c.limiter != nil {
		if err := c.limiter.Wait(ctx); err != nil {
			log.Warn(ctx, "request throttled", "error", err)
			return transportError(err)
		}
	}

	start := time.Now()
	resp, err := c.http.Do(req)
	if err != nil {
		log.Warn(ctx, "request failed", "error", err)
		return transportError(err)
	}
	defer resp.Body.Close()

	log.Debug(ctx, "response received", "status", resp.StatusCode, "elapsed", time.Since(start))

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		text, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		return httpError(resp.StatusCode, string(text))
	}

	return decode(resp, out)
}

func decode(resp *http.Response, out any) error {
	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return parseError(resp.StatusCode, fmt.Errorf("read body: %w", err))
	}
	if resp.StatusCode == http.StatusNoContent || len(bytes.TrimSpace(data)) == 0 {
		return nil
	}

	if ct := resp.Header.Get("Content-Type"); ct != "" && !isJSON(ct) {
		return parseError(resp.StatusCode, fmt.Errorf("unexpected content type %q", ct))
	}

	if out == nil {
		if !json.Valid(data) {
			return parseError(resp.StatusCode, fmt.Errorf("invalid JSON body"))
		}
		return nil
	}
	if err := json.Unmarshal(data, out); err != nil {
		return parseError(resp.StatusCode, err)
	}
	return nil
}

func isJSON(contentType string) bool {
	mt := contenttype.NewMediaType(contentType)
	if mt.Type == "" {
		return false
	}
	return mt.Matches(jsonMediaType) || (mt.Type == "application" && strings.HasSuffix(mt.Subtype, "+json"))
}
