// Package fetch performs HTTP calls bounded by a per-attempt timeout and
// retried with a linear backoff.
package fetch

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"codex-ledger/internal/metrics"

	"github.com/cenkalti/backoff/v4"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.opentelemetry.io/otel/trace/noop"
)

const (
	DefaultTimeout    = 5 * time.Second
	DefaultMaxRetries = 2
	DefaultBaseDelay  = time.Second
)

// Response is a fully read HTTP response. The body is consumed inside the
// attempt so the attempt's timeout can be released before returning.
type Response struct {
	StatusCode int
	Header     http.Header
	Body       []byte
}

// OK reports a 2xx status.
func (r *Response) OK() bool {
	return r.StatusCode >= 200 && r.StatusCode < 300
}

// RetryError is returned once every attempt has failed.
type RetryError struct {
	URL      string
	Attempts int
	Err      error
}

func (e *RetryError) Error() string {
	return fmt.Sprintf("fetch %s failed after %d attempts: %v", e.URL, e.Attempts, e.Err)
}

func (e *RetryError) Unwrap() error { return e.Err }

// RequestOption modifies an outgoing request.
type RequestOption func(*http.Request)

// Option configures a Client.
type Option func(*Client)

// NotifyFunc observes a failed attempt (1-based) and the wait before the next one.
type NotifyFunc func(attempt int, err error, wait time.Duration)

type Client struct {
	client     *http.Client
	timeout    time.Duration
	maxRetries int
	baseDelay  time.Duration
	tracer     trace.Tracer
	notify     NotifyFunc
}

func New(opts ...Option) *Client {
	c := &Client{
		client:     &http.Client{},
		timeout:    DefaultTimeout,
		maxRetries: DefaultMaxRetries,
		baseDelay:  DefaultBaseDelay,
		tracer:     noop.NewTracerProvider().Tracer("fetch"),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.client = hc }
}

// WithTimeout bounds each individual attempt.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) {
		if d > 0 {
			c.timeout = d
		}
	}
}

// WithMaxRetries sets how many retries follow the first attempt.
func WithMaxRetries(n int) Option {
	return func(c *Client) {
		if n >= 0 {
			c.maxRetries = n
		}
	}
}

// WithBaseDelay sets the unit of the linear backoff (wait = base * attempt).
func WithBaseDelay(d time.Duration) Option {
	return func(c *Client) {
		if d > 0 {
			c.baseDelay = d
		}
	}
}

func WithTracer(tracer trace.Tracer) Option {
	return func(c *Client) {
		if tracer != nil {
			c.tracer = tracer
		}
	}
}

func WithNotify(fn NotifyFunc) Option {
	return func(c *Client) { c.notify = fn }
}

func WithHeader(key, value string) RequestOption {
	return func(req *http.Request) { req.Header.Set(key, value) }
}

func WithBearerToken(token string) RequestOption {
	return func(req *http.Request) { req.Header.Set("Authorization", "Bearer "+token) }
}

// MaxRetries reports the configured retry budget.
func (c *Client) MaxRetries() int { return c.maxRetries }

// Get performs a resilient GET.
func (c *Client) Get(ctx context.Context, rawURL string, opts ...RequestOption) (*Response, error) {
	return c.Do(ctx, http.MethodGet, rawURL, nil, opts...)
}

// Do runs up to MaxRetries+1 attempts. Transport errors and attempt
// timeouts are retried; any HTTP status is returned to the caller as is.
func (c *Client) Do(ctx context.Context, method, rawURL string, body []byte, opts ...RequestOption) (*Response, error) {
	ctx, span := c.tracer.Start(ctx, "fetch.do")
	defer span.End()

	host := hostOf(rawURL)
	span.SetAttributes(
		attribute.String("http.method", method),
		attribute.String("http.host", host),
	)

	attempts := 0
	operation := func() (*Response, error) {
		attempts++
		resp, err := c.attempt(ctx, method, rawURL, body, opts)
		switch {
		case err == nil:
			metrics.UpstreamAttempts.WithLabelValues(host, "ok").Inc()
			return resp, nil
		case ctx.Err() != nil:
			// The caller gave up; no point waiting for another attempt.
			metrics.UpstreamAttempts.WithLabelValues(host, "canceled").Inc()
			return nil, backoff.Permanent(err)
		case errors.Is(err, context.DeadlineExceeded):
			metrics.UpstreamAttempts.WithLabelValues(host, "timeout").Inc()
		default:
			metrics.UpstreamAttempts.WithLabelValues(host, "error").Inc()
		}
		return nil, err
	}

	var b backoff.BackOff = &linearBackOff{base: c.baseDelay}
	b = backoff.WithContext(backoff.WithMaxRetries(b, uint64(c.maxRetries)), ctx)

	notify := func(err error, wait time.Duration) {
		if c.notify != nil {
			c.notify(attempts, err, wait)
		}
	}

	resp, err := backoff.RetryNotifyWithData(operation, b, notify)
	span.SetAttributes(attribute.Int("fetch.attempts", attempts))
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, &RetryError{URL: rawURL, Attempts: attempts, Err: err}
	}
	span.SetAttributes(attribute.Int("http.status_code", resp.StatusCode))
	return resp, nil
}

func (c *Client) attempt(ctx context.Context, method, rawURL string, body []byte, opts []RequestOption) (*Response, error) {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	var reader io.Reader
	if body != nil {
		reader = bytes.NewReader(body)
	}
	req, err := http.NewRequestWithContext(ctx, method, rawURL, reader)
	if err != nil {
		return nil, backoff.Permanent(err)
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	for _, opt := range opts {
		opt(req)
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}
	return &Response{StatusCode: resp.StatusCode, Header: resp.Header, Body: data}, nil
}

// linearBackOff waits base, 2*base, 3*base, ... between attempts.
type linearBackOff struct {
	base time.Duration
	n    int
}

func (b *linearBackOff) NextBackOff() time.Duration {
	b.n++
	return b.base * time.Duration(b.n)
}

func (b *linearBackOff) Reset() { b.n = 0 }

func hostOf(rawURL string) string {
	u, err := url.Parse(rawURL)
	if err != nil || u.Host == "" {
		return "unknown"
	}
	return u.Host
}
