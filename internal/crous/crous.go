package crous

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"restou/internal/config"
)

// ErrUpstreamFetch is returned when the restaurant page cannot be retrieved.
var ErrUpstreamFetch = errors.New("upstream menu page unavailable")

// maxPageSize bounds how much of the upstream body is read.
const maxPageSize = 8 << 20

// Client fetches the restaurant page published by the CROUS.
type Client interface {
	FetchMenuPage(ctx context.Context) (string, error)
}

// crousClient is the concrete implementation of the CROUS client.
type crousClient struct {
	httpClient *http.Client
	url        string
}

// NewClient creates a new CROUS client from the application config.
func NewClient(cfg *config.Config) Client {
	timeout := cfg.HTTPTimeout
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &crousClient{
		httpClient: &http.Client{Timeout: timeout},
		url:        cfg.MenuSourceURL,
	}
}

// FetchMenuPage downloads the restaurant page HTML.
func (c *crousClient) FetchMenuPage(ctx context.Context) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.url, nil)
	if err != nil {
		return "", fmt.Errorf("%w: failed to create request: %w", ErrUpstreamFetch, err)
	}
	req.Header.Set("User-Agent", "Mozilla/5.0 (compatible; restou-menu-scraper/1.0)")
	req.Header.Set("Accept-Language", "fr-FR,fr;q=0.9")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("%w: failed to execute request: %w", ErrUpstreamFetch, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return "", fmt.Errorf("%w: status %d", ErrUpstreamFetch, resp.StatusCode)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxPageSize+1))
	if err != nil {
		return "", fmt.Errorf("%w: failed to read body: %w", ErrUpstreamFetch, err)
	}
	if len(body) > maxPageSize {
		return "", fmt.Errorf("%w: page exceeds %d bytes", ErrUpstreamFetch, maxPageSize)
	}
	return string(body), nil
}
