// shared/api/client.go
package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log"
	"net"
	"net/http"
	"strings"
	"time"
)

// HTTPError is a custom error type for HTTP responses with non-OK status codes.
type HTTPError struct {
	StatusCode int
	Message    string
	Category   ErrorCategory
	URL        string
	Method     string
}

func (e *HTTPError) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("HTTP error %d %s from %s %s: %s", e.StatusCode, http.StatusText(e.StatusCode), e.Method, e.URL, e.Message)
	}
	return fmt.Sprintf("HTTP error %d %s from %s %s", e.StatusCode, http.StatusText(e.StatusCode), e.Method, e.URL)
}

// Client-side sentinels. Use errors.Is for checking.
var (
	ErrNotFound      = errors.New("resource not found")
	ErrConflict      = errors.New("resource conflict")
	ErrBadRequest    = errors.New("bad request")
	ErrValidation    = errors.New("validation failed")
	ErrUnauthorized  = errors.New("unauthorized")
	ErrForbidden     = errors.New("forbidden")
	ErrUnavailable   = errors.New("service unavailable")
	ErrInternalError = errors.New("internal server error")
)

// NewDefaultHTTPClient returns an http.Client with a total request timeout
// and pooled keep-alive connections.
func NewDefaultHTTPClient(timeout time.Duration) *http.Client {
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &http.Client{
		Timeout: timeout,
		Transport: &http.Transport{
			Proxy: http.ProxyFromEnvironment,
			DialContext: (&net.Dialer{
				Timeout:   5 * time.Second,
				KeepAlive: 30 * time.Second,
			}).DialContext,
			MaxIdleConns:          100,
			IdleConnTimeout:       90 * time.Second,
			TLSHandshakeTimeout:   5 * time.Second,
			ExpectContinueTimeout: 1 * time.Second,
		},
	}
}

// Client is a JSON HTTP client for the services in this repo.
type Client struct {
	httpClient *http.Client
	baseURL    string
	adminToken string
}

// NewClient creates a new API Client. A non-empty adminToken is sent on every
// request in the X-Admin-Token header.
func NewClient(baseURL, adminToken string, httpClient *http.Client) *Client {
	if httpClient == nil {
		log.Println("WARN: NewClient called with nil httpClient, using defaults")
		httpClient = NewDefaultHTTPClient(0)
	}
	return &Client{
		httpClient: httpClient,
		baseURL:    strings.TrimRight(baseURL, "/"),
		adminToken: adminToken,
	}
}

// doRequest is a helper for common request logic
func (c *Client) doRequest(ctx context.Context, method, path string, body interface{}, result interface{}) error {
	url := fmt.Sprintf("%s%s", c.baseURL, path)

	var reqBody io.Reader
	if body != nil {
		jsonData, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("failed to marshal request body for %s %s: %w", method, url, err)
		}
		reqBody = bytes.NewBuffer(jsonData)
	}

	req, err := http.NewRequestWithContext(ctx, method, url, reqBody)
	if err != nil {
		return fmt.Errorf("failed to create %s request for %s: %w", method, url, err)
	}
	req.Header.Set("Content-Type", "application/json")
	if c.adminToken != "" {
		req.Header.Set(AdminTokenHeader, c.adminToken)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		// Differentiate between context cancellation and other network errors
		if errors.Is(ctx.Err(), context.Canceled) {
			return fmt.Errorf("%s request to %s cancelled: %w", method, url, ctx.Err())
		}
		if errors.Is(ctx.Err(), context.DeadlineExceeded) {
			return fmt.Errorf("%s request to %s timed out: %w", method, url, ctx.Err())
		}
		return fmt.Errorf("failed to send %s request to %s: %w", method, url, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		httpErr := &HTTPError{StatusCode: resp.StatusCode, URL: url, Method: method}
		bodyBytes, readErr := io.ReadAll(io.LimitReader(resp.Body, 64<<10))
		if readErr == nil && len(bodyBytes) > 0 {
			var errorResponse JSONErrorResponse
			if jsonErr := json.Unmarshal(bodyBytes, &errorResponse); jsonErr == nil && errorResponse.Message != "" {
				httpErr.Message = errorResponse.Message
				httpErr.Category = errorResponse.Category
			} else if len(bodyBytes) < 500 {
				httpErr.Message = string(bodyBytes)
			}
		}
		return wrapHTTPError(httpErr)
	}

	if result != nil {
		if resp.StatusCode == http.StatusNoContent {
			return nil
		}
		if err := json.NewDecoder(resp.Body).Decode(result); err != nil {
			return fmt.Errorf("failed to decode %s response from %s: %w", method, url, err)
		}
	}
	return nil
}

// wrapHTTPError maps status codes to the client sentinels while keeping the
// *HTTPError reachable through errors.As.
func wrapHTTPError(httpErr *HTTPError) error {
	var sentinel error
	switch httpErr.StatusCode {
	case http.StatusNotFound:
		sentinel = ErrNotFound
	case http.StatusConflict:
		sentinel = ErrConflict
	case http.StatusBadRequest:
		sentinel = ErrBadRequest
	case http.StatusUnprocessableEntity:
		sentinel = ErrValidation
	case http.StatusUnauthorized:
		sentinel = ErrUnauthorized
	case http.StatusForbidden:
		sentinel = ErrForbidden
	case http.StatusServiceUnavailable:
		sentinel = ErrUnavailable
	case http.StatusInternalServerError, http.StatusBadGateway, http.StatusGatewayTimeout:
		sentinel = ErrInternalError
	default:
		return httpErr
	}
	return fmt.Errorf("%w: %w", sentinel, httpErr)
}

func (c *Client) Get(ctx context.Context, path string, result interface{}) error {
	return c.doRequest(ctx, http.MethodGet, path, nil, result)
}

func (c *Client) Post(ctx context.Context, path string, body interface{}, result interface{}) error {
	return c.doRequest(ctx, http.MethodPost, path, body, result)
}
