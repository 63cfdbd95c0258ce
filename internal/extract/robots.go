package extract

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	cache "github.com/patrickmn/go-cache"
	"github.com/temoto/robotstxt"
)

// robotsChecker handles robots.txt fetching and compliance checking.
type robotsChecker struct {
	cache     *cache.Cache
	userAgent string
	client    *http.Client
}

func newRobotsChecker(userAgent string) *robotsChecker {
	return &robotsChecker{
		cache:     cache.New(24*time.Hour, 1*time.Hour), // robots.txt rarely changes
		userAgent: userAgent,
		client: &http.Client{
			Timeout: 10 * time.Second,
		},
	}
}

// CanFetch checks whether urlStr may be fetched according to robots.txt.
// Returns (allowed, crawlDelay, error). Missing or unparsable robots.txt
// allows fetching with a default delay.
func (rc *robotsChecker) CanFetch(ctx context.Context, urlStr string) (bool, time.Duration, error) {
	parsedURL, err := url.Parse(urlStr)
	if err != nil {
		return false, 0, fmt.Errorf("invalid URL: %w", err)
	}

	domain := parsedURL.Scheme + "://" + parsedURL.Host

	if cached, found := rc.cache.Get(domain); found {
		robotsData := cached.(*robotstxt.RobotsData)
		group := robotsData.FindGroup(rc.userAgent)
		return group.Test(parsedURL.Path), rc.crawlDelay(group), nil
	}

	req, err := http.NewRequestWithContext(ctx, "GET", domain+"/robots.txt", nil)
	if err != nil {
		return false, 0, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("User-Agent", rc.userAgent)

	resp, err := rc.client.Do(req)
	if err != nil {
		return true, 1 * time.Second, nil
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return true, 1 * time.Second, nil
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, 1*1024*1024))
	if err != nil {
		return true, 1 * time.Second, nil
	}

	robotsData, err := robotstxt.FromBytes(body)
	if err != nil {
		return true, 1 * time.Second, nil
	}

	rc.cache.Set(domain, robotsData, cache.DefaultExpiration)

	group := robotsData.FindGroup(rc.userAgent)
	return group.Test(parsedURL.Path), rc.crawlDelay(group), nil
}

func (rc *robotsChecker) crawlDelay(group *robotstxt.Group) time.Duration {
	if group.CrawlDelay > 0 {
		delay := group.CrawlDelay
		if delay > 10*time.Second {
			delay = 10 * time.Second
		}
		return delay
	}
	return 1 * time.Second
}
