// Package ratelimit implements a sliding-window-log rate limiter with an
// in-memory store and a Redis store for deployments with several replicas.
package ratelimit

import (
	"context"
	"time"
)

// Decision is the outcome of one Allow call.
type Decision struct {
	Allowed   bool
	Remaining int
	// RetryAfter is set when Allowed is false: the time until the oldest
	// hit in the window expires.
	RetryAfter time.Duration
}

// Store records hits per key and decides whether a new hit fits in the
// window. Implementations must make the check-and-record step atomic per key.
type Store interface {
	Take(ctx context.Context, key string, now time.Time, window time.Duration, max int) (Decision, error)
}

// Limiter applies one limit (max hits per window) to a named group of routes.
type Limiter struct {
	name    string
	window  time.Duration
	max     int
	message string
	store   Store
	now     func() time.Time
}

func New(name string, max int, window time.Duration, message string, store Store) *Limiter {
	return &Limiter{
		name:    name,
		window:  window,
		max:     max,
		message: message,
		store:   store,
		now:     time.Now,
	}
}

func (l *Limiter) Name() string    { return l.name }
func (l *Limiter) Message() string { return l.message }

// Allow records a hit for key within this limiter's group.
func (l *Limiter) Allow(ctx context.Context, key string) (Decision, error) {
	return l.store.Take(ctx, l.name+":"+key, l.now(), l.window, l.max)
}

// retryAfter is the wait until oldest leaves the window, never below one
// second so clients get a usable Retry-After.
func retryAfter(oldest, now time.Time, window time.Duration) time.Duration {
	d := oldest.Add(window).Sub(now)
	if d < time.Second {
		return time.Second
	}
	return d
}
