package extract

import (
	"context"
	"sync"
	"time"

	"golang.org/x/time/rate"
)

// fetchLimiter applies three tiers of outbound rate limiting: one global
// limit for the process, one per target domain, one per requesting user.
type fetchLimiter struct {
	global     *rate.Limiter
	perDomain  sync.Map // map[string]*rate.Limiter
	perUser    sync.Map // map[string]*rate.Limiter
	perUserCap float64
}

func newFetchLimiter(globalRate, perUserRate float64) *fetchLimiter {
	return &fetchLimiter{
		global:     rate.NewLimiter(rate.Limit(globalRate), int(globalRate*2)),
		perUserCap: perUserRate,
	}
}

// Wait blocks until all three tiers allow one request, honoring the
// robots.txt crawl delay for the domain tier.
func (fl *fetchLimiter) Wait(ctx context.Context, username, domain string, crawlDelay time.Duration) error {
	if err := fl.global.Wait(ctx); err != nil {
		return err
	}
	if err := fl.domainLimiter(domain, crawlDelay).Wait(ctx); err != nil {
		return err
	}
	return fl.userLimiter(username).Wait(ctx)
}

func (fl *fetchLimiter) domainLimiter(domain string, crawlDelay time.Duration) *rate.Limiter {
	if limiter, ok := fl.perDomain.Load(domain); ok {
		return limiter.(*rate.Limiter)
	}

	if crawlDelay <= 0 {
		crawlDelay = 500 * time.Millisecond
	}
	requestsPerSecond := 1.0 / crawlDelay.Seconds()
	if requestsPerSecond > 5.0 {
		requestsPerSecond = 5.0
	}
	if requestsPerSecond < 0.2 {
		requestsPerSecond = 0.2 // at least one request per 5 seconds
	}

	newLimiter := rate.NewLimiter(rate.Limit(requestsPerSecond), 1)
	actual, _ := fl.perDomain.LoadOrStore(domain, newLimiter)
	return actual.(*rate.Limiter)
}

func (fl *fetchLimiter) userLimiter(username string) *rate.Limiter {
	if limiter, ok := fl.perUser.Load(username); ok {
		return limiter.(*rate.Limiter)
	}

	newLimiter := rate.NewLimiter(rate.Limit(fl.perUserCap), int(fl.perUserCap*2))
	actual, _ := fl.perUser.LoadOrStore(username, newLimiter)
	return actual.(*rate.Limiter)
}
