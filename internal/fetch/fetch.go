// Package fetch loads remote vector source data over HTTP.
package fetch

import (
	"context"
	"fmt"
	"time"

	"github.com/go-resty/resty/v2"
)

// Config configures the HTTP client. Credentials are attached to every
// request so authenticated GeoJSON endpoints can be read.
type Config struct {
	BaseURL  string
	Timeout  time.Duration
	Headers  map[string]string
	Username string
	Password string
}

// Client fetches source bodies. It implements olmap.Loader.
type Client struct {
	http *resty.Client
}

// New creates a client.
func New(cfg Config) *Client {
	c := resty.New()
	if cfg.BaseURL != "" {
		c.SetBaseURL(cfg.BaseURL)
	}
	if cfg.Timeout > 0 {
		c.SetTimeout(cfg.Timeout)
	} else {
		c.SetTimeout(30 * time.Second)
	}
	if len(cfg.Headers) > 0 {
		c.SetHeaders(cfg.Headers)
	}
	if cfg.Username != "" {
		c.SetBasicAuth(cfg.Username, cfg.Password)
	}
	c.SetHeader("Accept", "application/geo+json, application/json")
	return &Client{http: c}
}

// Load GETs url and returns the body. Non-2xx responses are errors.
func (c *Client) Load(ctx context.Context, url string) ([]byte, error) {
	resp, err := c.http.R().SetContext(ctx).Get(url)
	if err != nil {
		return nil, fmt.Errorf("fetching %s: %w", url, err)
	}
	if resp.IsError() {
		return nil, fmt.Errorf("fetching %s: %s", url, resp.Status())
	}
	return resp.Body(), nil
}
