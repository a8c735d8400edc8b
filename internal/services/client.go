// Catalog API client
package services

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/kino/internal/shared"
	"golang.org/x/oauth2"
	"golang.org/x/time/rate"
)

// RequestIDHeader carries a per-request identifier for correlating client and server logs.
const RequestIDHeader = "X-Request-ID"

// ClientOpts configures a [Client].
type ClientOpts struct {
	BaseURL    string
	HTTPClient *http.Client
	Session    shared.Session
	RateLimit  float64 // requests per second, 0 disables pacing
	Logger     *log.Logger
}

// Client wraps every catalog endpoint in a typed operation.
//
// A Client is immutable and safe for concurrent use. Authentication is fixed at
// construction; use [Client.WithSession] after login or logout.
type Client struct {
	baseURL string
	base    *http.Client
	http    *http.Client
	session shared.Session
	limiter *rate.Limiter
	logger  *log.Logger
}

// NewClient builds a client. The base URL defaults to [shared.DefaultBaseURL]
// and the HTTP client to [http.DefaultClient].
func NewClient(opts ClientOpts) *Client {
	baseURL := strings.TrimRight(opts.BaseURL, "/")
	if baseURL == "" {
		baseURL = shared.DefaultBaseURL
	}

	base := opts.HTTPClient
	if base == nil {
		base = http.DefaultClient
	}

	logger := opts.Logger
	if logger == nil {
		logger = shared.NewLogger(io.Discard)
	}

	var limiter *rate.Limiter
	if opts.RateLimit > 0 {
		burst := max(int(opts.RateLimit), 1)
		limiter = rate.NewLimiter(rate.Limit(opts.RateLimit), burst)
	}

	c := &Client{
		baseURL: baseURL,
		base:    base,
		limiter: limiter,
		logger:  logger,
	}
	c.session = opts.Session
	c.http = authorizedClient(base, opts.Session)
	return c
}

// authorizedClient layers an [oauth2.Transport] over base when the session has a token.
func authorizedClient(base *http.Client, s shared.Session) *http.Client {
	if !s.Authenticated() {
		return base
	}

	transport := base.Transport
	if transport == nil {
		transport = http.DefaultTransport
	}

	return &http.Client{
		Transport: &oauth2.Transport{
			Source: oauth2.StaticTokenSource(s.Token()),
			Base:   transport,
		},
		CheckRedirect: base.CheckRedirect,
		Jar:           base.Jar,
		Timeout:       base.Timeout,
	}
}

// WithSession returns a copy of the client bound to s.
func (c *Client) WithSession(s shared.Session) *Client {
	clone := *c
	clone.session = s
	clone.http = authorizedClient(c.base, s)
	return &clone
}

// Session returns the session the client was built with.
func (c *Client) Session() shared.Session { return c.session }

// BaseURL returns the API root every path is resolved against.
func (c *Client) BaseURL() string { return c.baseURL }

// endpoint joins the base URL, path and query.
func (c *Client) endpoint(path string, query url.Values) string {
	if !strings.HasPrefix(path, "/") {
		path = "/" + path
	}
	u := c.baseURL + path
	if len(query) > 0 {
		u += "?" + query.Encode()
	}
	return u
}

// doRequest performs a JSON request. A nil result discards the response body.
func (c *Client) doRequest(ctx context.Context, method, path string, query url.Values, body, result any) error {
	resp, err := c.send(ctx, method, path, query, body)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return newAPIError(method, path, resp)
	}

	if result == nil || resp.StatusCode == http.StatusNoContent {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil
	}

	if err := json.NewDecoder(resp.Body).Decode(result); err != nil {
		return fmt.Errorf("%w: failed to decode %s %s response: %v", shared.ErrAPIRequest, method, path, err)
	}
	return nil
}

// send issues the request and returns the raw response; transport failures become status 0 [APIError]s.
func (c *Client) send(ctx context.Context, method, path string, query url.Values, body any) (*http.Response, error) {
	if c.limiter != nil {
		if err := c.limiter.Wait(ctx); err != nil {
			return nil, networkError(method, path, err)
		}
	}

	var reader io.Reader
	if body != nil {
		switch b := body.(type) {
		case []byte:
			reader = bytes.NewReader(b)
		case json.RawMessage:
			reader = bytes.NewReader(b)
		default:
			data, err := json.Marshal(body)
			if err != nil {
				return nil, fmt.Errorf("%w: failed to encode request body: %v", shared.ErrInvalidInput, err)
			}
			reader = bytes.NewReader(data)
		}
	}

	req, err := http.NewRequestWithContext(ctx, method, c.endpoint(path, query), reader)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	requestID := shared.GenerateID()
	req.Header.Set("Accept", "application/json")
	req.Header.Set(RequestIDHeader, requestID)
	if reader != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	c.logger.Debug("api request", "method", method, "path", path, "request_id", requestID, "authenticated", c.session.Authenticated())

	resp, err := c.http.Do(req)
	if err != nil {
		c.logger.Debug("api request failed", "method", method, "path", path, "request_id", requestID, "error", err)
		return nil, networkError(method, path, err)
	}

	c.logger.Debug("api response", "method", method, "path", path, "request_id", requestID, "status", resp.StatusCode)
	return resp, nil
}
