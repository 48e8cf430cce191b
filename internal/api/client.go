// Package api wraps the who-read-whom backend REST API. One service per
// entity maps CRUD operations onto HTTP verbs and paths; non-2xx responses
// are normalized into *Error values carrying the server's message.
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

	"github.com/smirnoffmg/who-read-whom/internal/logging"
)

// Error is an API-reported failure: the backend answered with a non-2xx
// status and (usually) a JSON body holding an error string.
type Error struct {
	StatusCode int
	Message    string
}

func (e *Error) Error() string {
	return e.Message
}

// Client issues JSON requests against the backend base URL.
type Client struct {
	baseURL string
	http    *http.Client
}

// NewClient creates a client for the given base URL, e.g.
// "http://localhost:8080/api/v1". The timeout bounds every request.
func NewClient(baseURL string, timeout time.Duration) *Client {
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http: &http.Client{
			Timeout: timeout,
		},
	}
}

// errorBody is the JSON shape the backend uses for failures.
type errorBody struct {
	Error string `json:"error"`
}

// do issues a single JSON request. A non-nil in is marshaled as the request
// body; a non-nil out receives the decoded 2xx response body.
func (c *Client) do(ctx context.Context, method, path string, query url.Values, in, out any) error {
	u := c.baseURL + path
	if len(query) > 0 {
		u += "?" + query.Encode()
	}

	var body io.Reader
	if in != nil {
		data, err := json.Marshal(in)
		if err != nil {
			return fmt.Errorf("failed to marshal request: %w", err)
		}
		body = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, u, body)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	logging.Get(logging.CategoryAPI).Debugw("request", "method", method, "url", u)

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return c.apiError(resp)
	}

	if out != nil {
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			return fmt.Errorf("failed to decode response: %w", err)
		}
	}
	return nil
}

// apiError extracts the server's error message; when the body is not the
// expected JSON shape, the HTTP status text stands in.
func (c *Client) apiError(resp *http.Response) error {
	message := http.StatusText(resp.StatusCode)

	data, err := io.ReadAll(resp.Body)
	if err == nil {
		var eb errorBody
		if json.Unmarshal(data, &eb) == nil && eb.Error != "" {
			message = eb.Error
		}
	}

	logging.Get(logging.CategoryAPI).Warnw("api error", "status", resp.StatusCode, "message", message)
	return &Error{StatusCode: resp.StatusCode, Message: message}
}

// listQuery builds the shared limit/offset/search query parameters.
func listQuery(limit, offset int, search string) url.Values {
	q := url.Values{}
	q.Set("limit", fmt.Sprintf("%d", limit))
	q.Set("offset", fmt.Sprintf("%d", offset))
	if search != "" {
		q.Set("search", search)
	}
	return q
}
