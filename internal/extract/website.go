package extract

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"log"
	"net/url"
	"strings"
	"time"

	"github.com/markusmobius/go-trafilatura"
)

const (
	defaultMaxBodySize = 10 * 1024 * 1024 // 10MB
	defaultGlobalRate  = 10.0             // requests per second
	defaultPerUserRate = 5.0              // requests per second
)

// WebsiteExtractor fetches a web page and reduces it to its readable text.
// Fetches respect robots.txt and are rate limited globally, per domain and
// per user. The per-user content cache lives in the session layer; this
// type only fetches.
type WebsiteExtractor struct {
	client  *fetchClient
	limiter *fetchLimiter
	robots  *robotsChecker
}

// NewWebsiteExtractor creates a website extractor.
func NewWebsiteExtractor() *WebsiteExtractor {
	return &WebsiteExtractor{
		client:  newFetchClient(),
		limiter: newFetchLimiter(defaultGlobalRate, defaultPerUserRate),
		robots:  newRobotsChecker(websiteUserAgent),
	}
}

// Extract fetches urlStr and returns the page's main text content.
func (e *WebsiteExtractor) Extract(ctx context.Context, urlStr, username string) (string, error) {
	startTime := time.Now()

	if err := validateWebsiteURL(urlStr); err != nil {
		return "", err
	}

	parsedURL, err := url.Parse(urlStr)
	if err != nil {
		return "", fmt.Errorf("invalid URL: %w", err)
	}

	allowed, crawlDelay, err := e.robots.CanFetch(ctx, urlStr)
	if err != nil {
		log.Printf("⚠️  [WEBSITE] Failed to check robots.txt for %s: %v", urlStr, err)
		crawlDelay = 1 * time.Second
	}
	if !allowed {
		return "", fmt.Errorf("access blocked by robots.txt for: %s", urlStr)
	}

	if err := e.limiter.Wait(ctx, username, parsedURL.Host, crawlDelay); err != nil {
		return "", fmt.Errorf("rate limit error: %w", err)
	}

	resp, err := e.client.Get(ctx, urlStr)
	if err != nil {
		log.Printf("❌ [WEBSITE] Failed to fetch %s: %v", urlStr, err)
		return "", fmt.Errorf("failed to fetch URL: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != 200 {
		return "", fmt.Errorf("HTTP error %d: %s", resp.StatusCode, resp.Status)
	}

	contentType := strings.ToLower(resp.Header.Get("Content-Type"))
	if !isSupportedContentType(contentType) {
		return "", fmt.Errorf("unsupported content type: %s", contentType)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, defaultMaxBodySize))
	if err != nil {
		return "", fmt.Errorf("failed to read response: %w", err)
	}

	result, err := trafilatura.Extract(bytes.NewReader(body), trafilatura.Options{
		OriginalURL: parsedURL,
	})
	if err != nil {
		return "", fmt.Errorf("failed to extract content: %w", err)
	}
	if result == nil || result.ContentText == "" {
		return "", fmt.Errorf("no content extracted from page")
	}

	log.Printf("✅ [WEBSITE] Fetched %s (latency: %dms, length: %d chars)",
		urlStr, time.Since(startTime).Milliseconds(), len(result.ContentText))

	return result.ContentText, nil
}

// validateWebsiteURL checks if the URL is safe to fetch (SSRF protection).
func validateWebsiteURL(urlStr string) error {
	parsedURL, err := url.Parse(urlStr)
	if err != nil {
		return fmt.Errorf("invalid URL format: %w", err)
	}

	if parsedURL.Scheme != "http" && parsedURL.Scheme != "https" {
		return fmt.Errorf("only HTTP/HTTPS URLs are supported, got: %s", parsedURL.Scheme)
	}

	hostname := strings.ToLower(parsedURL.Hostname())

	if hostname == "localhost" || hostname == "127.0.0.1" || hostname == "::1" {
		return fmt.Errorf("localhost URLs are not allowed")
	}

	privateRanges := []string{
		"192.168.", "10.", "172.16.", "172.17.", "172.18.", "172.19.",
		"172.20.", "172.21.", "172.22.", "172.23.", "172.24.", "172.25.",
		"172.26.", "172.27.", "172.28.", "172.29.", "172.30.", "172.31.",
		"169.254.", // link-local
		"fd",       // IPv6 private
	}
	for _, prefix := range privateRanges {
		if strings.HasPrefix(hostname, prefix) {
			return fmt.Errorf("private IP addresses are not allowed")
		}
	}

	return nil
}

func isSupportedContentType(contentType string) bool {
	supported := []string{
		"text/html",
		"text/plain",
		"application/xhtml+xml",
	}
	for _, ct := range supported {
		if strings.Contains(contentType, ct) {
			return true
		}
	}
	return false
}
