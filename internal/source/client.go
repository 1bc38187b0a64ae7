package source

import (
	"context"
	"fmt"
	"strings"
	"time"

	xhttp "DealPull/pkg/http"

	"golang.org/x/time/rate"
)

// Client is the outbound client shared by all fetchers. A token bucket
// paces requests so a burst of aggregation traffic cannot hammer the
// upstream sites.
type Client struct {
	http      *xhttp.Client
	limiter   *rate.Limiter
	userAgent string
}

// ClientConfig holds outbound client settings.
type ClientConfig struct {
	Timeout   time.Duration
	MaxRPS    float64
	Burst     int
	UserAgent string
}

func NewClient(cfg ClientConfig) *Client {
	if cfg.Timeout <= 0 {
		cfg.Timeout = 30 * time.Second
	}
	if cfg.MaxRPS <= 0 {
		cfg.MaxRPS = 4
	}
	if cfg.Burst <= 0 {
		cfg.Burst = int(cfg.MaxRPS)
	}
	if cfg.UserAgent == "" {
		cfg.UserAgent = "DealPull/1.0"
	}

	return &Client{
		http:      xhttp.NewClient(xhttp.WithTimeout(cfg.Timeout)),
		limiter:   rate.NewLimiter(rate.Limit(cfg.MaxRPS), cfg.Burst),
		userAgent: cfg.UserAgent,
	}
}

// GetBytes fetches url with query params and returns the raw body.
func (c *Client) GetBytes(ctx context.Context, url string, query map[string][]string) ([]byte, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("pacing wait: %w", err)
	}

	var body []byte
	err := c.http.SendAndParse(ctx, &xhttp.RequestOptions{
		Method:      xhttp.MethodGet,
		URL:         url,
		QueryParams: query,
		Headers:     map[string]string{"User-Agent": c.userAgent},
	}, &body)
	if err != nil {
		return nil, err
	}
	return body, nil
}

// GetJSON fetches url with query params and decodes the JSON body.
func (c *Client) GetJSON(ctx context.Context, url string, query map[string][]string, dest interface{}) error {
	if err := c.limiter.Wait(ctx); err != nil {
		return fmt.Errorf("pacing wait: %w", err)
	}

	return c.http.SendAndParse(ctx, &xhttp.RequestOptions{
		Method:      xhttp.MethodGet,
		URL:         url,
		QueryParams: query,
		Headers:     map[string]string{"User-Agent": c.userAgent, "Accept": "application/json"},
	}, dest)
}

// NormalizePrice trims a scraped price fragment down to a displayable
// value, or PriceUnknown when nothing usable was found.
func NormalizePrice(s string) string {
	s = strings.TrimSpace(s)
	if s == "" {
		return "N/A"
	}
	return s
}
