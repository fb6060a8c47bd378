// Package webapi talks to the XP tracker web app over HTTP.
package webapi

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.uber.org/zap"
	"golang.org/x/time/rate"
)

const (
	maxBodyBytes = 1 << 20
	tracerName   = "github.com/ppiankov/xpbridge/internal/webapi"
)

// Options configures a Client
type Options struct {
	BaseURL    string
	Token      string
	UserAgent  string
	Timeout    time.Duration
	RateLimit  float64
	RateBurst  int
	HTTPProxy  string
	HTTPSProxy string
	Logger     *zap.Logger
}

// Client issues timeout-bounded, authenticated requests against the web app
type Client struct {
	baseURL    string
	token      string
	userAgent  string
	timeout    time.Duration
	httpClient *http.Client
	limiter    *rate.Limiter
	logger     *zap.Logger
}

// Response is a fully read HTTP response
type Response struct {
	StatusCode int
	Body       []byte
	Latency    time.Duration
}

// OK reports a 2xx status
func (r *Response) OK() bool {
	return r.StatusCode >= 200 && r.StatusCode < 300
}

// NewClient creates a new Client with the given options
func NewClient(opts Options) *Client {
	if opts.Timeout <= 0 {
		opts.Timeout = 10 * time.Second
	}
	if opts.RateLimit <= 0 {
		opts.RateLimit = 10
	}
	if opts.Logger == nil {
		opts.Logger = zap.NewNop()
	}

	return &Client{
		baseURL:   strings.TrimRight(opts.BaseURL, "/"),
		token:     opts.Token,
		userAgent: opts.UserAgent,
		timeout:   opts.Timeout,
		httpClient: &http.Client{
			Transport: &http.Transport{
				Proxy: newProxyFunc(opts.HTTPProxy, opts.HTTPSProxy),
			},
			CheckRedirect: func(req *http.Request, via []*http.Request) error {
				if len(via) >= 3 {
					return fmt.Errorf("stopped after 3 redirects")
				}
				return nil
			},
		},
		limiter: newRateLimiter(opts.RateLimit, opts.RateBurst),
		logger:  opts.Logger,
	}
}

// BaseURL returns the normalized base URL
func (c *Client) BaseURL() string {
	return c.baseURL
}

// Do sends a request and reads the whole body. Any status code is returned
// as a Response; only failures to obtain a response are errors.
func (c *Client) Do(ctx context.Context, method, path string, body interface{}) (*Response, error) {
	ctx, span := otel.Tracer(tracerName).Start(ctx, "webapi.request")
	defer span.End()
	span.SetAttributes(
		attribute.String("http.request.method", method),
		attribute.String("url.path", path),
	)

	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	if err := c.limiter.Wait(ctx); err != nil {
		span.SetStatus(codes.Error, "rate limit wait")
		return nil, &TransportError{Method: method, Path: path, Err: fmt.Errorf("rate limit: %w", err)}
	}

	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("marshal body: %w", err)
		}
		reader = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}

	req.Header.Set("Accept", "application/json")
	req.Header.Set("X-Request-Id", uuid.NewString())
	if c.userAgent != "" {
		req.Header.Set("User-Agent", c.userAgent)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "transport")
		return nil, &TransportError{Method: method, Path: path, Err: err}
	}
	defer func() { _ = resp.Body.Close() }()

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "read body")
		return nil, &TransportError{Method: method, Path: path, Err: fmt.Errorf("read body: %w", err)}
	}

	latency := time.Since(start)
	span.SetAttributes(attribute.Int("http.response.status_code", resp.StatusCode))
	c.logger.Debug("webapi_request",
		zap.String("method", method),
		zap.String("path", path),
		zap.Int("status", resp.StatusCode),
		zap.Duration("latency", latency),
	)

	return &Response{
		StatusCode: resp.StatusCode,
		Body:       data,
		Latency:    latency,
	}, nil
}

// GetJSON issues a GET and decodes a 2xx JSON body into out
func (c *Client) GetJSON(ctx context.Context, path string, out interface{}) error {
	resp, err := c.Do(ctx, http.MethodGet, path, nil)
	if err != nil {
		return err
	}

	if !resp.OK() {
		return &StatusError{Method: http.MethodGet, Path: path, Status: resp.StatusCode, Body: snippet(resp.Body)}
	}

	if err := json.Unmarshal(resp.Body, out); err != nil {
		return &SchemaError{Path: path, Err: err}
	}

	return nil
}

func snippet(body []byte) string {
	const max = 200
	s := strings.TrimSpace(string(body))
	if len(s) > max {
		return s[:max] + "..."
	}
	return s
}
