package transport

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/sony/gobreaker/v2"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"go.uber.org/zap"
)

const (
	// SuccessMarker is the substring the endpoint puts in its body when the
	// order was stored.
	SuccessMarker = "Success"

	DefaultTimeout = 15 * time.Second

	maxResponseBytes = 64 << 10
)

// Result is the endpoint's answer to an accepted order.
type Result struct {
	Status int
	Body   string
}

type Config struct {
	Endpoint string
	Timeout  time.Duration
	Breaker  BreakerConfig
}

// Client posts order payloads to the intake endpoint. Every call issues at
// most one request; nothing is retried.
type Client struct {
	endpoint   string
	timeout    time.Duration
	httpClient *http.Client
	breaker    *gobreaker.CircuitBreaker[Result]
	logger     *zap.Logger
}

type Option func(*Client)

// WithHTTPClient replaces the instrumented default client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.httpClient = hc }
}

func WithLogger(l *zap.Logger) Option {
	return func(c *Client) { c.logger = l }
}

func NewClient(cfg Config, opts ...Option) (*Client, error) {
	if cfg.Endpoint == "" {
		return nil, ErrNoEndpoint
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = DefaultTimeout
	}

	c := &Client{
		endpoint: cfg.Endpoint,
		timeout:  cfg.Timeout,
		logger:   zap.NewNop(),
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.httpClient == nil {
		c.httpClient = &http.Client{
			Transport:     otelhttp.NewTransport(http.DefaultTransport),
			Timeout:       cfg.Timeout,
			CheckRedirect: dropReferer,
		}
	}
	if cfg.Breaker.Enabled {
		c.breaker = newBreaker(cfg.Breaker, c.logger)
	}
	return c, nil
}

// dropReferer keeps redirected requests free of a Referer header.
func dropReferer(req *http.Request, via []*http.Request) error {
	if len(via) >= 10 {
		return errors.New("stopped after 10 redirects")
	}
	req.Header.Del("Referer")
	return nil
}

// Available reports whether a Submit call would reach the endpoint. It is
// false only while the breaker is open.
func (c *Client) Available() bool {
	return c.breaker == nil || c.breaker.State() != gobreaker.StateOpen
}

// Submit sends payload and reports success only for a 2xx response whose
// body contains SuccessMarker.
func (c *Client) Submit(ctx context.Context, payload []byte) (Result, error) {
	if len(payload) == 0 {
		return Result{}, ErrEmptyBody
	}

	if c.breaker == nil {
		return c.send(ctx, payload)
	}

	res, err := c.breaker.Execute(func() (Result, error) {
		return c.send(ctx, payload)
	})
	if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
		return Result{}, fmt.Errorf("%w: %v", ErrBreakerOpen, err)
	}
	return res, err
}

func (c *Client) send(ctx context.Context, payload []byte) (Result, error) {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(payload))
	if err != nil {
		return Result{}, fmt.Errorf("build order request: %w", err)
	}
	req.Header.Set("Content-Type", "text/plain")
	req.Header.Set("Cache-Control", "no-store")
	req.Header.Set("Pragma", "no-cache")

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.logger.Warn("order request failed", zap.Error(err), zap.Duration("elapsed", time.Since(start)))
		return Result{}, err
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return Result{}, fmt.Errorf("read order response: %w", err)
	}
	body := string(raw)

	c.logger.Info("order endpoint answered",
		zap.Int("status", resp.StatusCode),
		zap.Int("payload_bytes", len(payload)),
		zap.Duration("elapsed", time.Since(start)),
	)

	ok := resp.StatusCode >= 200 && resp.StatusCode < 300
	if !ok || !strings.Contains(body, SuccessMarker) {
		return Result{}, &DeliveryError{Status: resp.StatusCode, Body: body}
	}
	return Result{Status: resp.StatusCode, Body: body}, nil
}
