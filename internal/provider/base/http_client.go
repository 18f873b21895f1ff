package base

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"payrelay/internal/metrics"
	"payrelay/internal/provider"

	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
)

const maxResponseBody = 1 << 20

// HTTPClient provides common HTTP functionality for upstream clients
type HTTPClient struct {
	client  *http.Client
	baseURL string
	name    string // upstream name for logging and metrics
	metrics *metrics.Metrics
}

type Option func(*HTTPClient)

// WithoutRedirects returns 3xx responses to the caller instead of following
// them. PayU answers order creation with 302 and a JSON body.
func WithoutRedirects() Option {
	return func(c *HTTPClient) {
		c.client.CheckRedirect = func(*http.Request, []*http.Request) error {
			return http.ErrUseLastResponse
		}
	}
}

func WithMetrics(m *metrics.Metrics) Option {
	return func(c *HTTPClient) { c.metrics = m }
}

// NewHTTPClient creates a new HTTP client with default settings
func NewHTTPClient(name, baseURL string, timeout time.Duration, opts ...Option) *HTTPClient {
	if timeout == 0 {
		timeout = 5 * time.Second
	}

	c := &HTTPClient{
		client: &http.Client{
			Timeout:   timeout,
			Transport: otelhttp.NewTransport(http.DefaultTransport),
		},
		baseURL: baseURL,
		name:    name,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// PostJSON makes a POST request with JSON payload
func (c *HTTPClient) PostJSON(ctx context.Context, op, endpoint string, payload any, headers map[string]string) (*HTTPResponse, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal JSON payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+endpoint, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	return c.do(op, req, headers)
}

// PostQuery makes a body-less POST with the given query parameters.
func (c *HTTPClient) PostQuery(ctx context.Context, op, endpoint string, query url.Values, headers map[string]string) (*HTTPResponse, error) {
	u := c.baseURL + endpoint
	if len(query) > 0 {
		u += "?" + query.Encode()
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, u, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	return c.do(op, req, headers)
}

func (c *HTTPClient) do(op string, req *http.Request, headers map[string]string) (*HTTPResponse, error) {
	req.Header.Set("User-Agent", "payrelay/"+c.name)
	req.Header.Set("Accept", "application/json")
	req.Header.Set("X-Request-Id", requestID(req.Context()))
	for key, value := range headers {
		req.Header.Set(key, value)
	}

	logger := log.Ctx(req.Context()).With().
		Str("upstream", c.name).
		Str("op", op).
		Str("method", req.Method).
		Str("path", req.URL.Path). // never the query: it may carry credentials
		Logger()
	logger.Debug().Msg("making HTTP request")

	start := time.Now()
	resp, err := c.client.Do(req)
	if err != nil {
		err = redact(err)
		c.metrics.ObserveUpstream(c.name, op, "error", time.Since(start))
		logger.Error().Err(err).Dur("duration", time.Since(start)).Msg("HTTP request failed")
		return nil, provider.TransportError(err)
	}

	out, err := c.handleResponse(resp)
	if err != nil {
		c.metrics.ObserveUpstream(c.name, op, "error", time.Since(start))
		return nil, err
	}
	c.metrics.ObserveUpstream(c.name, op, outcome(out.StatusCode), time.Since(start))

	logger.Debug().
		Int("status_code", out.StatusCode).
		Int("body_length", len(out.Body)).
		Dur("duration", time.Since(start)).
		Msg("received HTTP response")
	return out, nil
}

// handleResponse processes the HTTP response
func (c *HTTPClient) handleResponse(resp *http.Response) (*HTTPResponse, error) {
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBody))
	if err != nil {
		return nil, provider.TransportError(fmt.Errorf("failed to read response body: %w", err))
	}

	return &HTTPResponse{
		StatusCode: resp.StatusCode,
		Headers:    resp.Header,
		Body:       body,
	}, nil
}

func requestID(ctx context.Context) string {
	if id := chimw.GetReqID(ctx); id != "" {
		return id
	}
	return uuid.NewString()
}

// redact strips the query string from URLs embedded in transport errors.
func redact(err error) error {
	var ue *url.Error
	if errors.As(err, &ue) {
		if u, perr := url.Parse(ue.URL); perr == nil {
			u.RawQuery = ""
			ue.URL = u.String()
		}
	}
	return err
}

func outcome(status int) string {
	switch {
	case status >= 200 && status < 400:
		return "ok"
	case status >= 400 && status < 500:
		return "client_error"
	default:
		return "server_error"
	}
}

// HTTPResponse represents an HTTP response
type HTTPResponse struct {
	StatusCode int
	Headers    http.Header
	Body       []byte
}

// IsSuccess checks if the response indicates success (2xx status code)
func (r *HTTPResponse) IsSuccess() bool {
	return r.StatusCode >= 200 && r.StatusCode < 300
}

// Decode unmarshals the response body into the provided struct
func (r *HTTPResponse) Decode(v any) error {
	return json.Unmarshal(r.Body, v)
}

// String returns the response body as a string
func (r *HTTPResponse) String() string {
	return string(r.Body)
}
