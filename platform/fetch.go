// Package platform defines the capabilities the font pipeline borrows from its
// host: remote fetching, key-value caching, filesystem operations and the
// stylesheet queue. Each capability is a small interface with a default
// implementation so the core packages stay testable in isolation.
package platform

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"time"
)

// DesktopUserAgent is sent with every remote request. Font services sniff the
// user agent to decide which formats to serve, so we present a current desktop
// browser to receive woff2 instead of legacy truetype.
const DesktopUserAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36"

// Fetcher retrieves the body of a remote resource.
type Fetcher interface {
	Fetch(ctx context.Context, url string) ([]byte, error)
}

// HTTPFetcher is the default Fetcher over net/http.
type HTTPFetcher struct {
	Client    *http.Client
	UserAgent string
}

// NewHTTPFetcher creates a fetcher with a sane default timeout and the fixed
// desktop user agent.
func NewHTTPFetcher() *HTTPFetcher {
	return &HTTPFetcher{
		Client:    &http.Client{Timeout: 30 * time.Second},
		UserAgent: DesktopUserAgent,
	}
}

// Fetch retrieves url and returns the response body. Any status outside 2xx is
// an error.
func (f *HTTPFetcher) Fetch(ctx context.Context, url string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("unable to build request for '%s': %w", url, err)
	}
	ua := f.UserAgent
	if ua == "" {
		ua = DesktopUserAgent
	}
	req.Header.Set("User-Agent", ua)

	client := f.Client
	if client == nil {
		client = http.DefaultClient
	}
	resp, err := client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("unable to fetch '%s': %w", url, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, fmt.Errorf("unable to fetch '%s': unexpected status %s", url, resp.Status)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("unable to read body of '%s': %w", url, err)
	}
	return body, nil
}

// FetcherFunc adapts a function to the Fetcher interface.
type FetcherFunc func(ctx context.Context, url string) ([]byte, error)

// Fetch implements Fetcher.
func (fn FetcherFunc) Fetch(ctx context.Context, url string) ([]byte, error) {
	return fn(ctx, url)
}
