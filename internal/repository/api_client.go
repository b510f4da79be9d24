package repository

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"go.uber.org/zap"

	appErrors "github.com/noah-isme/circleed-client/pkg/errors"
	"github.com/noah-isme/circleed-client/pkg/middleware/requestid"
)

// TokenSource supplies the bearer token attached to backend calls.
type TokenSource interface {
	AccessToken(ctx context.Context) (string, error)
}

// RequestObserver records backend call timings. Status is 0 when the call
// never produced a response.
type RequestObserver interface {
	ObserveAPIRequest(method, route string, status int, duration time.Duration)
}

// APIClient performs JSON calls against the CircleEd REST backend.
type APIClient struct {
	baseURL  string
	client   *http.Client
	tokens   TokenSource
	observer RequestObserver
	logger   *zap.Logger
}

// APIClientOption customises an APIClient.
type APIClientOption func(*APIClient)

// WithHTTPClient replaces the underlying HTTP client.
func WithHTTPClient(client *http.Client) APIClientOption {
	return func(c *APIClient) {
		if client != nil {
			c.client = client
		}
	}
}

// WithTokenSource attaches bearer tokens from src.
func WithTokenSource(src TokenSource) APIClientOption {
	return func(c *APIClient) { c.tokens = src }
}

// WithRequestObserver reports call metrics to obs.
func WithRequestObserver(obs RequestObserver) APIClientOption {
	return func(c *APIClient) { c.observer = obs }
}

// NewAPIClient constructs a client rooted at baseURL (e.g. http://host/api/v1).
func NewAPIClient(baseURL string, timeout time.Duration, logger *zap.Logger, opts ...APIClientOption) *APIClient {
	if logger == nil {
		logger = zap.NewNop()
	}
	c := &APIClient{
		baseURL: strings.TrimRight(baseURL, "/"),
		client:  &http.Client{Timeout: timeout},
		logger:  logger,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// BaseURL returns the backend root the client talks to.
func (c *APIClient) BaseURL() string {
	return c.baseURL
}

// Get issues a GET request and decodes the response into dest.
func (c *APIClient) Get(ctx context.Context, path string, query url.Values, dest interface{}) error {
	return c.Do(ctx, http.MethodGet, path, query, nil, dest)
}

// Post issues a POST request with an optional JSON body.
func (c *APIClient) Post(ctx context.Context, path string, body, dest interface{}) error {
	return c.Do(ctx, http.MethodPost, path, nil, body, dest)
}

// Put issues a PUT request with a JSON body.
func (c *APIClient) Put(ctx context.Context, path string, body, dest interface{}) error {
	return c.Do(ctx, http.MethodPut, path, nil, body, dest)
}

// Delete issues a DELETE request.
func (c *APIClient) Delete(ctx context.Context, path string, dest interface{}) error {
	return c.Do(ctx, http.MethodDelete, path, nil, nil, dest)
}

// Do performs a request. Non-2xx responses become *errors.Error carrying the
// backend status and its "detail" message; network failures are wrapped as
// TRANSPORT_ERROR. Nothing is retried.
func (c *APIClient) Do(ctx context.Context, method, path string, query url.Values, body, dest interface{}) error {
	endpoint := c.baseURL + path
	if len(query) > 0 {
		endpoint += "?" + query.Encode()
	}

	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("marshal %s %s body: %w", method, path, err)
		}
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, endpoint, reader)
	if err != nil {
		return fmt.Errorf("build %s %s request: %w", method, path, err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	reqID := requestid.NewID()
	req.Header.Set(requestid.Header, reqID)

	if token := c.accessToken(ctx); token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	route := routeLabel(path)
	start := time.Now()
	resp, err := c.client.Do(req)
	duration := time.Since(start)
	if err != nil {
		c.observe(method, route, 0, duration)
		c.logger.Warn("backend request failed",
			zap.String("method", method),
			zap.String("route", route),
			zap.String("request_id", reqID),
			zap.Duration("latency", duration),
			zap.Error(err),
		)
		return appErrors.Wrap(err, appErrors.ErrTransport.Code, appErrors.ErrTransport.Status, appErrors.ErrTransport.Message)
	}
	defer resp.Body.Close()

	c.observe(method, route, resp.StatusCode, duration)
	c.logger.Debug("backend request",
		zap.String("method", method),
		zap.String("route", route),
		zap.Int("status", resp.StatusCode),
		zap.String("request_id", reqID),
		zap.Duration("latency", duration),
	)

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return appErrors.Wrap(err, appErrors.ErrTransport.Code, appErrors.ErrTransport.Status, "read backend response")
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return appErrors.FromResponse(resp.StatusCode, raw)
	}

	if dest == nil || len(bytes.TrimSpace(raw)) == 0 {
		return nil
	}
	if err := json.Unmarshal(raw, dest); err != nil {
		return appErrors.Wrap(err, appErrors.ErrAPI.Code, appErrors.ErrAPI.Status, fmt.Sprintf("decode %s %s response", method, route))
	}
	return nil
}

func (c *APIClient) accessToken(ctx context.Context) string {
	if c.tokens == nil {
		return ""
	}
	token, err := c.tokens.AccessToken(ctx)
	if err != nil {
		if !errors.Is(err, appErrors.ErrStoreMiss) {
			c.logger.Warn("read access token", zap.Error(err))
		}
		return ""
	}
	return token
}

func (c *APIClient) observe(method, route string, status int, duration time.Duration) {
	if c.observer != nil {
		c.observer.ObserveAPIRequest(method, route, status, duration)
	}
}

// routeLabel collapses numeric path segments so metrics stay low-cardinality.
func routeLabel(path string) string {
	segments := strings.Split(path, "/")
	for i, segment := range segments {
		if segment != "" && strings.Trim(segment, "0123456789") == "" {
			segments[i] = ":id"
		}
	}
	return strings.Join(segments, "/")
}
