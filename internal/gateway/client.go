// Package gateway talks to the catalog REST backend. It implements catalog.Gateway.
package gateway

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/abgdnv/catalog/internal/catalog"
	"github.com/abgdnv/catalog/pkg/config"
	"github.com/sony/gobreaker/v2"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
)

const (
	productsPath = "productos"
	storesPath   = "tiendas"

	// maxErrorBody bounds how much of a failed response is kept in RemoteError.Body.
	maxErrorBody = 64 << 10
)

var _ catalog.Gateway = (*Client)(nil)

// Client is a catalog backend client. Every call goes through one circuit breaker.
type Client struct {
	base     *url.URL
	http     *http.Client
	breaker  *gobreaker.CircuitBreaker[[]byte]
	logger   *slog.Logger
	products *Resource[catalog.Product]
	stores   *Resource[catalog.Store]
}

// Option customizes a Client.
type Option func(*Client)

// WithHTTPClient replaces the default instrumented client. The gateway timeout is not applied to it.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.http = hc }
}

// New creates a Client for the backend at cfg.BaseURL.
func New(cfg config.GatewayConfig, logger *slog.Logger, opts ...Option) (*Client, error) {
	base, err := url.Parse(strings.TrimSuffix(cfg.BaseURL, "/"))
	if err != nil {
		return nil, fmt.Errorf("invalid gateway base URL: %w", err)
	}
	if base.Path == "" {
		base.Path = "/"
	}
	c := &Client{
		base: base,
		http: &http.Client{
			Transport: otelhttp.NewTransport(http.DefaultTransport),
			Timeout:   cfg.Timeout,
		},
		logger: logger.With("component", "gateway"),
	}
	for _, opt := range opts {
		opt(c)
	}
	c.breaker = newCircuitBreaker[[]byte](cfg.CircuitBreaker, c.logger)
	c.products = NewResource[catalog.Product](c, productsPath)
	c.stores = NewResource[catalog.Store](c, storesPath)
	return c, nil
}

func (c *Client) Products() catalog.EntityGateway[catalog.Product] { return c.products }

func (c *Client) Stores() catalog.EntityGateway[catalog.Store] { return c.stores }

// CreateAssociation calls POST /productos/{productId}/tiendas/{storeId}.
func (c *Client) CreateAssociation(ctx context.Context, productID, storeID catalog.ID) error {
	_, err := c.do(ctx, http.MethodPost, nil, productsPath, string(productID), storesPath, string(storeID))
	return err
}

// DeleteAssociation calls DELETE /productos/{productId}/tiendas/{storeId}.
func (c *Client) DeleteAssociation(ctx context.Context, productID, storeID catalog.ID) error {
	_, err := c.do(ctx, http.MethodDelete, nil, productsPath, string(productID), storesPath, string(storeID))
	return err
}

// State reports the circuit breaker state.
func (c *Client) State() gobreaker.State { return c.breaker.State() }

// do sends one request and returns the raw body of a 2xx response.
// Any other outcome is a *catalog.RemoteError.
func (c *Client) do(ctx context.Context, method string, body any, segments ...string) ([]byte, error) {
	escaped := make([]string, len(segments))
	for i, s := range segments {
		escaped[i] = url.PathEscape(s)
	}
	target := c.base.JoinPath(escaped...)
	op := method + " " + target.Path

	var payload []byte
	if body != nil {
		var err error
		if payload, err = json.Marshal(body); err != nil {
			return nil, &catalog.RemoteError{Op: op, Err: fmt.Errorf("encode request: %w", err)}
		}
	}

	start := time.Now()
	data, err := c.breaker.Execute(func() ([]byte, error) {
		return c.roundTrip(ctx, method, target.String(), op, payload)
	})
	if err != nil {
		if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
			err = &catalog.RemoteError{Op: op, Err: err}
		}
		c.logger.WarnContext(ctx, "request failed", "op", op, "error", err, "duration", time.Since(start))
		return nil, err
	}
	c.logger.DebugContext(ctx, "request completed", "op", op, "duration", time.Since(start))
	return data, nil
}

func (c *Client) roundTrip(ctx context.Context, method, target, op string, payload []byte) ([]byte, error) {
	var reader io.Reader
	if payload != nil {
		reader = bytes.NewReader(payload)
	}
	req, err := http.NewRequestWithContext(ctx, method, target, reader)
	if err != nil {
		return nil, &catalog.RemoteError{Op: op, Err: err}
	}
	req.Header.Set("Accept", "application/json")
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, &catalog.RemoteError{Op: op, Err: err}
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		detail, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		return nil, &catalog.RemoteError{Op: op, Status: resp.StatusCode, Body: strings.TrimSpace(string(detail))}
	}
	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &catalog.RemoteError{Op: op, Status: resp.StatusCode, Err: fmt.Errorf("read response: %w", err)}
	}
	return data, nil
}
