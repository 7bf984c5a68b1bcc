// Package retrylimit paces outbound platform calls and retries the ones the
// remote side rejected for being overloaded.
//
// Example usage:
//
//	lim := retrylimit.NewAdaptiveLimiter(5)
//	err := retrylimit.Do(ctx, lim, retrylimit.DefaultPolicy(), func() error {
//	    return session.GuildBanCreate(guildID, userID, 0)
//	})
package retrylimit

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/rs/zerolog/log"
	"golang.org/x/time/rate"
)

// =============================================================================
// Limiter
// =============================================================================

// AdaptiveLimiter is a token bucket whose rate halves whenever the remote
// side throttles us and creeps back up once calls succeed again.
type AdaptiveLimiter struct {
	mu        sync.Mutex
	limiter   *rate.Limiter
	minLimit  rate.Limit
	maxLimit  rate.Limit
	lastError time.Time
}

// NewAdaptiveLimiter starts at perSecond, which is also the ceiling. A
// non-positive rate disables pacing.
func NewAdaptiveLimiter(perSecond float64) *AdaptiveLimiter {
	if perSecond <= 0 {
		return &AdaptiveLimiter{limiter: rate.NewLimiter(rate.Inf, 1), minLimit: rate.Inf, maxLimit: rate.Inf}
	}
	limit := rate.Limit(perSecond)
	return &AdaptiveLimiter{
		limiter:  rate.NewLimiter(limit, max(1, int(perSecond))),
		minLimit: min(1, limit),
		maxLimit: limit,
	}
}

// Wait blocks until a call may proceed or ctx is done.
func (a *AdaptiveLimiter) Wait(ctx context.Context) error {
	return a.limiter.Wait(ctx)
}

// Success nudges the rate up, unless we were throttled in the last 10 seconds.
func (a *AdaptiveLimiter) Success() {
	a.mu.Lock()
	defer a.mu.Unlock()
	if time.Since(a.lastError) > 10*time.Second {
		a.setLimitLocked(a.limiter.Limit() + 1)
	}
}

// Throttled halves the rate.
func (a *AdaptiveLimiter) Throttled() {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.lastError = time.Now()
	a.setLimitLocked(a.limiter.Limit() / 2)
}

// Limit reports the current calls per second.
func (a *AdaptiveLimiter) Limit() float64 {
	a.mu.Lock()
	defer a.mu.Unlock()
	return float64(a.limiter.Limit())
}

func (a *AdaptiveLimiter) setLimitLocked(limit rate.Limit) {
	if a.maxLimit == rate.Inf {
		return
	}
	limit = min(max(limit, a.minLimit), a.maxLimit)
	if limit != a.limiter.Limit() {
		a.limiter.SetLimit(limit)
		a.limiter.SetBurst(max(1, int(limit)))
	}
}

// =============================================================================
// Errors
// =============================================================================

// HTTPError is implemented by errors that carry the remote status code.
type HTTPError interface {
	error
	StatusCode() int
}

// Temporary reports whether err is a 429 or a 5xx and worth another try.
func Temporary(err error) bool {
	var httpErr HTTPError
	if !errors.As(err, &httpErr) {
		return false
	}
	code := httpErr.StatusCode()
	return code == http.StatusTooManyRequests || (code >= 500 && code < 600)
}

// =============================================================================
// Retry
// =============================================================================

type Policy struct {
	Attempts     int
	InitialDelay time.Duration
	MaxDelay     time.Duration
}

func DefaultPolicy() Policy {
	return Policy{
		Attempts:     3,
		InitialDelay: 500 * time.Millisecond,
		MaxDelay:     5 * time.Second,
	}
}

// Do runs fn after waiting on lim. Temporary failures throttle lim and are
// retried with exponential backoff; any other error is returned at once.
func Do(ctx context.Context, lim *AdaptiveLimiter, p Policy, fn func() error) error {
	if p.Attempts < 1 {
		p.Attempts = 1
	}
	delay := p.InitialDelay

	var err error
	for attempt := 1; attempt <= p.Attempts; attempt++ {
		if err := lim.Wait(ctx); err != nil {
			return err
		}

		err = fn()
		if err == nil {
			lim.Success()
			return nil
		}
		if !Temporary(err) {
			return err
		}

		lim.Throttled()
		if attempt == p.Attempts {
			break
		}
		log.Warn().Err(err).Int("attempt", attempt).Dur("backoff", delay).Float64("rps", lim.Limit()).Msg("remote call throttled, retrying")

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(delay):
		}
		delay = min(delay*2, p.MaxDelay)
	}
	return fmt.Errorf("gave up after %d attempts: %w", p.Attempts, err)
}
