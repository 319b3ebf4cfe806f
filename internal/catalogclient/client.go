package catalogclient

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/url"
	"strings"
	"time"

	"go.uber.org/zap"

	"ProductDesk/internal/product"
	"ProductDesk/pkg/kit"
)

const (
	DefaultBaseURL        = "https://fakestores.vercel.app/api"
	DefaultConnectTimeout = 10 * time.Second
	DefaultReadTimeout    = 10 * time.Second

	maxBodyBytes = 8 << 20
)

type Config struct {
	BaseURL        string
	ConnectTimeout time.Duration
	ReadTimeout    time.Duration
	Token          string
}

type Client struct {
	BaseURL string
	Token   string
	Client  *http.Client
	Log     *zap.Logger
	Metrics *kit.ClientMetrics
}

func New(cfg Config) *Client {
	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultBaseURL
	}
	if cfg.ConnectTimeout <= 0 {
		cfg.ConnectTimeout = DefaultConnectTimeout
	}
	if cfg.ReadTimeout <= 0 {
		cfg.ReadTimeout = DefaultReadTimeout
	}

	baseURL := cfg.BaseURL
	if u, err := url.Parse(baseURL); err == nil && u.Scheme != "" && u.Host != "" {
		baseURL = strings.TrimRight(baseURL, "/")
	}

	dialer := &net.Dialer{Timeout: cfg.ConnectTimeout}
	return &Client{
		BaseURL: baseURL,
		Token:   cfg.Token,
		Client: &http.Client{
			Timeout: cfg.ConnectTimeout + cfg.ReadTimeout,
			Transport: &http.Transport{
				Proxy:                 http.ProxyFromEnvironment,
				DialContext:           dialer.DialContext,
				TLSHandshakeTimeout:   cfg.ConnectTimeout,
				ResponseHeaderTimeout: cfg.ReadTimeout,
				MaxIdleConns:          10,
				IdleConnTimeout:       30 * time.Second,
			},
		},
		Log: zap.NewNop(),
	}
}

func (c *Client) productsURL() string { return c.BaseURL + "/products" }

func (c *Client) productURL(id string) string {
	return c.productsURL() + "/" + url.PathEscape(id)
}

// FetchAll returns every product in the catalog. Array elements that are not
// product objects are skipped.
func (c *Client) FetchAll(ctx context.Context) ([]product.Product, error) {
	const op = "fetch"

	body, err := c.do(ctx, op, http.MethodGet, c.productsURL(), nil, http.StatusOK)
	if err != nil {
		return nil, err
	}

	var items []json.RawMessage
	if err := json.Unmarshal(body, &items); err != nil {
		return nil, c.fail(&Error{Op: op, Reason: ReasonParse, Err: err})
	}
	// null decodes into a nil slice without error
	if items == nil {
		return nil, c.fail(&Error{Op: op, Reason: ReasonParse, Err: errNotArray})
	}

	out := make([]product.Product, 0, len(items))
	for i, raw := range items {
		p, err := product.Parse(raw)
		if err != nil {
			c.logger().Warn("skipping malformed product", zap.Int("index", i), zap.Error(err))
			continue
		}
		out = append(out, p)
	}
	return out, nil
}

func (c *Client) Create(ctx context.Context, p *product.Product) error {
	if p == nil {
		return &product.ValidationError{Msg: "product required"}
	}
	body, err := json.Marshal(p)
	if err != nil {
		return &Error{Op: "create", Reason: ReasonRequest, Err: err}
	}
	_, err = c.do(ctx, "create", http.MethodPost, c.productsURL(), body, http.StatusOK, http.StatusCreated)
	return err
}

func (c *Client) Update(ctx context.Context, p *product.Product) error {
	if err := requireID(p); err != nil {
		return err
	}
	body, err := json.Marshal(p)
	if err != nil {
		return &Error{Op: "update", Reason: ReasonRequest, Err: err}
	}
	_, err = c.do(ctx, "update", http.MethodPut, c.productURL(p.ID), body, http.StatusOK)
	return err
}

func (c *Client) Delete(ctx context.Context, p *product.Product) error {
	if err := requireID(p); err != nil {
		return err
	}
	_, err := c.do(ctx, "delete", http.MethodDelete, c.productURL(p.ID), nil, http.StatusOK, http.StatusNoContent)
	return err
}

func requireID(p *product.Product) error {
	if p == nil {
		return &product.ValidationError{Msg: "product required"}
	}
	if strings.TrimSpace(p.ID) == "" {
		return &product.ValidationError{Field: "id", Msg: "id required"}
	}
	return nil
}

// do sends one request and returns the response body when the status is one
// of ok.
func (c *Client) do(ctx context.Context, op, method, target string, body []byte, ok ...int) ([]byte, error) {
	start := time.Now()

	var r io.Reader
	if body != nil {
		r = bytes.NewReader(body)
	}
	req, err := http.NewRequestWithContext(ctx, method, target, r)
	if err != nil {
		return nil, c.fail(&Error{Op: op, Reason: ReasonRequest, Err: err})
	}
	if method != http.MethodDelete {
		req.Header.Set("Accept", "application/json")
		req.Header.Set("Content-Type", "application/json")
	}
	if c.Token != "" {
		req.Header.Set("Authorization", "Bearer "+c.Token)
	}

	resp, err := c.Client.Do(req)
	if err != nil {
		c.Metrics.Observe(op, "error", time.Since(start))
		return nil, c.fail(transportError(op, err))
	}
	defer resp.Body.Close()

	if !statusIn(resp.StatusCode, ok) {
		_, _ = io.Copy(io.Discard, resp.Body)
		c.Metrics.Observe(op, "status", time.Since(start))
		return nil, c.fail(&Error{
			Op:     op,
			Reason: ReasonStatus,
			Status: resp.StatusCode,
			Err:    fmt.Errorf("%s %s", method, target),
		})
	}

	raw, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		c.Metrics.Observe(op, "error", time.Since(start))
		return nil, c.fail(transportError(op, err))
	}

	c.Metrics.Observe(op, "ok", time.Since(start))
	return raw, nil
}

func (c *Client) fail(e *Error) *Error {
	c.logger().Warn("catalog request failed",
		zap.String("op", e.Op),
		zap.String("reason", string(e.Reason)),
		zap.Int("status", e.Status),
		zap.Error(e.Err),
	)
	return e
}

func (c *Client) logger() *zap.Logger {
	if c.Log == nil {
		return zap.NewNop()
	}
	return c.Log
}

func statusIn(code int, ok []int) bool {
	for _, s := range ok {
		if code == s {
			return true
		}
	}
	return false
}
