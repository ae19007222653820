package connect

import (
	"context"
	"net/http"
	"strconv"
	"strings"
	"sync"
	"time"
)

// Default platform limits: 100 requests per 15 minutes and 1000 per day.
const (
	defaultShortLimit  = 100
	defaultShortWindow = 15 * time.Minute
	defaultDailyLimit  = 1000
	defaultMinInterval = 150 * time.Millisecond
)

// RateLimiter keeps requests within a short window limit and a daily limit
type RateLimiter struct {
	mu sync.Mutex

	shortLimit    int
	shortWindow   time.Duration
	shortUsage    int
	shortResetsAt time.Time

	dailyLimit    int
	dailyUsage    int
	dailyResetsAt time.Time

	// Minimum interval between requests
	minInterval time.Duration
	lastRequest time.Time

	now func() time.Time
}

// NewRateLimiter creates a rate limiter with the platform's default limits
func NewRateLimiter() *RateLimiter {
	return newRateLimiter(defaultShortLimit, defaultShortWindow, defaultDailyLimit, defaultMinInterval, time.Now)
}

func newRateLimiter(shortLimit int, shortWindow time.Duration, dailyLimit int, minInterval time.Duration, now func() time.Time) *RateLimiter {
	t := now()
	return &RateLimiter{
		shortLimit:    shortLimit,
		shortWindow:   shortWindow,
		shortResetsAt: t.Add(shortWindow),
		dailyLimit:    dailyLimit,
		dailyResetsAt: nextDay(t),
		minInterval:   minInterval,
		now:           now,
	}
}

// Wait blocks until a request can be made without exceeding rate limits
func (r *RateLimiter) Wait(ctx context.Context) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.resetExpired()

	if r.shortUsage >= r.shortLimit {
		if err := r.sleep(ctx, r.shortResetsAt.Sub(r.now())); err != nil {
			return err
		}
		r.shortUsage = 0
		r.shortResetsAt = r.now().Add(r.shortWindow)
	}

	if r.dailyUsage >= r.dailyLimit {
		if err := r.sleep(ctx, r.dailyResetsAt.Sub(r.now())); err != nil {
			return err
		}
		r.dailyUsage = 0
		r.dailyResetsAt = nextDay(r.now())
	}

	if elapsed := r.now().Sub(r.lastRequest); elapsed < r.minInterval {
		if err := r.sleep(ctx, r.minInterval-elapsed); err != nil {
			return err
		}
	}

	r.shortUsage++
	r.dailyUsage++
	r.lastRequest = r.now()

	return nil
}

// sleep releases the lock while waiting. Must be called with r.mu held.
func (r *RateLimiter) sleep(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return nil
	}
	r.mu.Unlock()
	defer r.mu.Lock()

	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-timer.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (r *RateLimiter) resetExpired() {
	now := r.now()
	if now.After(r.shortResetsAt) {
		r.shortUsage = 0
		r.shortResetsAt = now.Add(r.shortWindow)
	}
	if now.After(r.dailyResetsAt) {
		r.dailyUsage = 0
		r.dailyResetsAt = nextDay(now)
	}
}

// UpdateFromHeaders syncs usage with the server's view.
// The platform returns X-RateLimit-Limit: "100,1000" and X-RateLimit-Usage: "34,512".
func (r *RateLimiter) UpdateFromHeaders(h http.Header) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if short, daily, ok := parsePair(h.Get("X-RateLimit-Usage")); ok {
		r.shortUsage = short
		r.dailyUsage = daily
	}
	if short, daily, ok := parsePair(h.Get("X-RateLimit-Limit")); ok {
		r.shortLimit = short
		r.dailyLimit = daily
	}
}

// Status returns current rate limit status
func (r *RateLimiter) Status() (shortRemaining, dailyRemaining int) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.shortLimit - r.shortUsage, r.dailyLimit - r.dailyUsage
}

func parsePair(v string) (int, int, bool) {
	parts := strings.Split(v, ",")
	if len(parts) < 2 {
		return 0, 0, false
	}
	a, err := strconv.Atoi(strings.TrimSpace(parts[0]))
	if err != nil {
		return 0, 0, false
	}
	b, err := strconv.Atoi(strings.TrimSpace(parts[1]))
	if err != nil {
		return 0, 0, false
	}
	return a, b, true
}

func nextDay(t time.Time) time.Time {
	return t.Truncate(24 * time.Hour).Add(24 * time.Hour)
}
