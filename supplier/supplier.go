package supplier

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"net/url"
	"strings"
	"time"

	"github.com/baxtbl4b/app-goroshina/cache"
	"github.com/baxtbl4b/app-goroshina/config"
	"github.com/baxtbl4b/app-goroshina/fitment"
	"github.com/valyala/fasthttp"
	"golang.org/x/sync/singleflight"
)

// Model is a vehicle model as listed by the vendor
type Model struct {
	Slug      string `json:"slug"`
	Name      string `json:"name"`
	BrandSlug string `json:"brand_slug,omitempty"`
	BrandName string `json:"brand_name,omitempty"`
}

// StatusError is returned for unexpected vendor HTTP statuses
type StatusError struct {
	URL        string
	StatusCode int
	Body       string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("vendor returned %d for %s: %s", e.StatusCode, e.URL, e.Body)
}

type envelope[T any] struct {
	Data []T `json:"data"`
}

// Client talks to the vehicle fitment API. Identical concurrent requests
// share one round trip and successful responses are cached.
type Client struct {
	baseURL string
	apiKey  string
	timeout time.Duration
	http    *fasthttp.Client
	group   singleflight.Group

	fitments *cache.Cache[[]fitment.Record]
	models   *cache.Cache[[]Model]
}

type Option func(*Client)

// WithHTTPClient replaces the underlying fasthttp client
func WithHTTPClient(hc *fasthttp.Client) Option {
	return func(c *Client) {
		c.http = hc
	}
}

func WithTimeout(d time.Duration) Option {
	return func(c *Client) {
		c.timeout = d
	}
}

// NewClient creates a vendor client for baseURL
func NewClient(baseURL, apiKey string, opts ...Option) (*Client, error) {
	fitments, err := cache.New("Vendor Fitment Cache", config.VendorCacheTTL, func(records []fitment.Record) int64 {
		return int64(64 + len(records)*512)
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create fitment cache: %w", err)
	}

	models, err := cache.New("Vendor Model Cache", config.VendorCacheTTL, func(models []Model) int64 {
		return int64(64 + len(models)*80)
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create model cache: %w", err)
	}

	c := &Client{
		baseURL:  strings.TrimRight(baseURL, "/"),
		apiKey:   apiKey,
		timeout:  config.VendorTimeout,
		http:     &fasthttp.Client{Name: "goroshina-fitment"},
		fitments: fitments,
		models:   models,
	}
	for _, opt := range opts {
		opt(c)
	}

	log.Printf("[supplier] Client initialized for %s", c.baseURL)
	return c, nil
}

// Fitment returns the per-trim fitment records for a vehicle. A vehicle
// the vendor does not know yields an empty list, not an error.
func (c *Client) Fitment(ctx context.Context, brand, model, year string) ([]fitment.Record, error) {
	key := fmt.Sprintf("fitment:%s:%s:%s", brand, model, year)
	if records, ok := c.fitments.Get(key); ok {
		return records, nil
	}

	v, err, _ := c.group.Do(key, func() (any, error) {
		u := fmt.Sprintf("%s/fitment/%s/%s/%s", c.baseURL,
			url.PathEscape(brand), url.PathEscape(model), url.PathEscape(year))

		var env envelope[fitment.Record]
		found, err := c.getJSON(ctx, u, &env)
		if err != nil {
			return nil, fmt.Errorf("fetch fitment %s/%s/%s: %w", brand, model, year, err)
		}
		records := env.Data
		if !found || records == nil {
			records = []fitment.Record{}
		}

		c.fitments.Set(key, records)
		return records, nil
	})
	if err != nil {
		return nil, err
	}
	return v.([]fitment.Record), nil
}

// Models lists the models of a brand
func (c *Client) Models(ctx context.Context, brand string) ([]Model, error) {
	u := fmt.Sprintf("%s/brands/%s/models", c.baseURL, url.PathEscape(brand))
	return c.modelList(ctx, "models:"+brand, u)
}

// Search finds models matching free text
func (c *Client) Search(ctx context.Context, query string) ([]Model, error) {
	query = strings.TrimSpace(query)
	if len(query) < config.SearchMinLength {
		return []Model{}, nil
	}
	u := fmt.Sprintf("%s/search?q=%s", c.baseURL, url.QueryEscape(query))
	return c.modelList(ctx, "search:"+strings.ToLower(query), u)
}

func (c *Client) modelList(ctx context.Context, key, u string) ([]Model, error) {
	if models, ok := c.models.Get(key); ok {
		return models, nil
	}

	v, err, _ := c.group.Do(key, func() (any, error) {
		var env envelope[Model]
		if _, err := c.getJSON(ctx, u, &env); err != nil {
			return nil, fmt.Errorf("fetch %s: %w", key, err)
		}
		models := env.Data
		if models == nil {
			models = []Model{}
		}
		c.models.Set(key, models)
		return models, nil
	})
	if err != nil {
		return nil, err
	}
	return v.([]Model), nil
}

// getJSON issues a GET and decodes the body into out. It reports false
// without error on 404.
func (c *Client) getJSON(ctx context.Context, u string, out any) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, err
	}

	req := fasthttp.AcquireRequest()
	resp := fasthttp.AcquireResponse()
	defer fasthttp.ReleaseRequest(req)
	defer fasthttp.ReleaseResponse(resp)

	req.SetRequestURI(u)
	req.Header.SetMethod(fasthttp.MethodGet)
	req.Header.Set(fasthttp.HeaderAccept, "application/json")
	if c.apiKey != "" {
		req.Header.Set(fasthttp.HeaderAuthorization, "Bearer "+c.apiKey)
	}

	var err error
	if deadline, ok := ctx.Deadline(); ok {
		err = c.http.DoDeadline(req, resp, deadline)
	} else {
		err = c.http.DoTimeout(req, resp, c.timeout)
	}
	if err != nil {
		return false, err
	}

	switch status := resp.StatusCode(); {
	case status == fasthttp.StatusNotFound:
		return false, nil
	case status < 200 || status >= 300:
		body := resp.Body()
		if len(body) > 200 {
			body = body[:200]
		}
		return false, &StatusError{URL: u, StatusCode: status, Body: string(body)}
	}

	if err := json.Unmarshal(resp.Body(), out); err != nil {
		return false, fmt.Errorf("decode response: %w", err)
	}
	return true, nil
}

// CacheStats returns statistics of the response caches
func (c *Client) CacheStats() []map[string]any {
	return []map[string]any{c.fitments.Stats(), c.models.Stats()}
}

// ClearCache drops all cached responses
func (c *Client) ClearCache() {
	c.fitments.Clear()
	c.models.Clear()
	log.Printf("[supplier] Cache cleared")
}
