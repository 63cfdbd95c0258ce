package extract

import (
	"context"
	"fmt"
	"net"
	"net/http"
	"time"
)

const websiteUserAgent = "Answerly-Bot/1.0 (+https://answerly.example.com/bot)"

// fetchClient wraps an HTTP client with settings tuned for fetching
// third-party pages.
type fetchClient struct {
	httpClient *http.Client
	userAgent  string
}

func newFetchClient() *fetchClient {
	transport := &http.Transport{
		MaxIdleConns:        100,
		MaxIdleConnsPerHost: 20, // default is 2, far too low for fan-out fetches
		MaxConnsPerHost:     50,
		IdleConnTimeout:     90 * time.Second,
		TLSHandshakeTimeout: 10 * time.Second,
		DialContext: (&net.Dialer{
			Timeout:   30 * time.Second,
			KeepAlive: 30 * time.Second,
		}).DialContext,
	}

	return &fetchClient{
		httpClient: &http.Client{
			Transport: transport,
			Timeout:   60 * time.Second,
			CheckRedirect: func(req *http.Request, via []*http.Request) error {
				if len(via) >= 10 {
					return fmt.Errorf("too many redirects (max 10)")
				}
				return nil
			},
		},
		userAgent: websiteUserAgent,
	}
}

// Get performs an HTTP GET request with browser-like headers.
func (c *fetchClient) Get(ctx context.Context, url string) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, "GET", url, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set("User-Agent", c.userAgent)
	req.Header.Set("Accept", "text/html,application/xhtml+xml,application/xml;q=0.9,*/*;q=0.8")
	req.Header.Set("Accept-Language", "en-US,en;q=0.9")

	return c.httpClient.Do(req)
}
