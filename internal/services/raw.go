// Raw requests for debugging the catalog API
package services

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
)

// RawResponse is an undecoded API response.
type RawResponse struct {
	StatusCode int
	Headers    http.Header
	Body       []byte
	IsJSON     bool
	JSONData   any
}

// Raw performs method on path with an optional JSON body and returns the
// response whatever its status. Only transport failures are errors.
func (c *Client) Raw(ctx context.Context, method, path string, body []byte) (*RawResponse, error) {
	var payload any
	if len(body) > 0 {
		if !json.Valid(body) {
			return nil, fmt.Errorf("request body is not valid JSON")
		}
		payload = body
	}

	resp, err := c.send(ctx, method, path, nil, payload)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}

	raw := &RawResponse{
		StatusCode: resp.StatusCode,
		Headers:    resp.Header,
		Body:       data,
	}

	var jsonData any
	if err := json.Unmarshal(data, &jsonData); err == nil {
		raw.IsJSON = true
		raw.JSONData = jsonData
	}

	return raw, nil
}

// Get is Raw with GET.
func (c *Client) Get(ctx context.Context, path string) (*RawResponse, error) {
	return c.Raw(ctx, http.MethodGet, path, nil)
}

// Post is Raw with POST.
func (c *Client) Post(ctx context.Context, path string, data []byte) (*RawResponse, error) {
	return c.Raw(ctx, http.MethodPost, path, data)
}
