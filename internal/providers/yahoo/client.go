// Package yahoo is the upstream transport for Yahoo Finance JSON endpoints.
package yahoo

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/http/cookiejar"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog/log"
	"golang.org/x/time/rate"
)

const (
	// DefaultBaseURL serves the quote, quoteSummary, screener and trending endpoints.
	DefaultBaseURL = "https://query2.finance.yahoo.com"

	// DefaultCookieURL is hit once to obtain the session cookie the crumb is bound to.
	DefaultCookieURL = "https://fc.yahoo.com"

	DefaultTimeout   = 20 * time.Second
	DefaultRateLimit = 4.0
	DefaultUserAgent = "Mozilla/5.0 (Macintosh; Intel Mac OS X 10_15_7) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/123.0 Safari/537.36"
)

// Client talks to Yahoo Finance. Cookies are kept per host for the lifetime of
// the client and every request carries browser-like headers.
type Client struct {
	baseURL    string
	cookieURL  string
	userAgent  string
	httpClient *http.Client
	limiter    *rate.Limiter

	mu    sync.Mutex
	crumb string
}

// ClientOption configures the Client.
type ClientOption func(*Client)

// WithBaseURL sets a custom API base URL.
func WithBaseURL(baseURL string) ClientOption {
	return func(c *Client) {
		c.baseURL = strings.TrimRight(baseURL, "/")
	}
}

// WithCookieURL sets the URL used to bootstrap the session cookie.
func WithCookieURL(cookieURL string) ClientOption {
	return func(c *Client) {
		c.cookieURL = cookieURL
	}
}

// WithHTTPClient sets a custom HTTP client. Its transport is wrapped with the
// header-injecting transport and a cookie jar is added if missing.
func WithHTTPClient(httpClient *http.Client) ClientOption {
	return func(c *Client) {
		c.httpClient = httpClient
	}
}

// WithRateLimit caps requests per second with burst 1. Zero or negative
// disables the ceiling.
func WithRateLimit(requestsPerSecond float64) ClientOption {
	return func(c *Client) {
		if requestsPerSecond <= 0 {
			c.limiter = rate.NewLimiter(rate.Inf, 1)
			return
		}
		c.limiter = rate.NewLimiter(rate.Limit(requestsPerSecond), 1)
	}
}

// WithUserAgent overrides the User-Agent header.
func WithUserAgent(ua string) ClientOption {
	return func(c *Client) {
		c.userAgent = ua
	}
}

// NewClient creates a Yahoo Finance client.
func NewClient(opts ...ClientOption) *Client {
	c := &Client{
		baseURL:    DefaultBaseURL,
		cookieURL:  DefaultCookieURL,
		userAgent:  DefaultUserAgent,
		httpClient: &http.Client{Timeout: DefaultTimeout},
		limiter:    rate.NewLimiter(rate.Limit(DefaultRateLimit), 1),
	}
	for _, opt := range opts {
		opt(c)
	}

	base := c.httpClient.Transport
	if base == nil {
		base = http.DefaultTransport
	}
	c.httpClient.Transport = &headerTransport{base: base, userAgent: c.userAgent}
	if c.httpClient.Jar == nil {
		jar, _ := cookiejar.New(nil)
		c.httpClient.Jar = jar
	}
	return c
}

// headerTransport adds default headers without overriding caller-set ones.
type headerTransport struct {
	base      http.RoundTripper
	userAgent string
}

func (t *headerTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	req = req.Clone(req.Context())
	if req.Header.Get("User-Agent") == "" {
		req.Header.Set("User-Agent", t.userAgent)
	}
	if req.Header.Get("Accept") == "" {
		req.Header.Set("Accept", "application/json, text/plain, */*")
	}
	return t.base.RoundTrip(req)
}

// get performs a crumb-authenticated GET and decodes the JSON body into result.
// A 401 refreshes the crumb once.
func (c *Client) get(ctx context.Context, path string, params url.Values, result interface{}) error {
	body, err := c.getRaw(ctx, path, params)
	var apiErr *APIError
	if errors.As(err, &apiErr) && apiErr.StatusCode == http.StatusUnauthorized {
		c.resetCrumb()
		body, err = c.getRaw(ctx, path, params)
	}
	if err != nil {
		return err
	}
	if err := json.Unmarshal(body, result); err != nil {
		return fmt.Errorf("failed to decode %s response: %w", path, err)
	}
	return nil
}

func (c *Client) getRaw(ctx context.Context, path string, params url.Values) ([]byte, error) {
	crumb, err := c.ensureCrumb(ctx)
	if err != nil {
		return nil, err
	}
	if params == nil {
		params = url.Values{}
	}
	params.Set("crumb", crumb)

	return c.do(ctx, c.baseURL+path+"?"+params.Encode(), path)
}

// do waits on the limiter, issues the request and returns the body of a 2xx
// JSON response. Anything else becomes a MarkupError or APIError.
func (c *Client) do(ctx context.Context, reqURL, endpoint string) ([]byte, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("rate limit wait failed: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	log.Debug().Str("endpoint", endpoint).Msg("Yahoo request")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to execute request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response body: %w", err)
	}

	if looksLikeMarkup(resp.Header.Get("Content-Type"), body) {
		return nil, newMarkupError(resp.StatusCode, endpoint, body)
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, newAPIError(resp.StatusCode, endpoint, body)
	}
	return body, nil
}

func (c *Client) ensureCrumb(ctx context.Context) (string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.crumb != "" {
		return c.crumb, nil
	}

	// The cookie endpoint answers 404 but still sets the session cookie.
	if req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.cookieURL, nil); err == nil {
		if resp, err := c.httpClient.Do(req); err == nil {
			_, _ = io.Copy(io.Discard, resp.Body)
			resp.Body.Close()
		} else {
			log.Debug().Err(err).Msg("Cookie bootstrap failed")
		}
	}

	body, err := c.do(ctx, c.baseURL+"/v1/test/getcrumb", "/v1/test/getcrumb")
	if err != nil {
		return "", fmt.Errorf("failed to obtain crumb: %w", err)
	}
	crumb := string(bytes.TrimSpace(body))
	if crumb == "" {
		return "", fmt.Errorf("failed to obtain crumb: empty response")
	}
	c.crumb = crumb
	return crumb, nil
}

func (c *Client) resetCrumb() {
	c.mu.Lock()
	c.crumb = ""
	c.mu.Unlock()
}
