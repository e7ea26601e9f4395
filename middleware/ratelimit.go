// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package middleware

import (
	"net/http"
	"sync"
	"time"

	"golang.org/x/time/rate"
)

// KeyedLimiter keeps one token bucket per key (client IP, email address).
type KeyedLimiter struct {
	name  string
	limit rate.Limit
	burst int
	idle  time.Duration

	mu       sync.Mutex
	limiters map[string]*keyedEntry
	sweptAt  time.Time
}

type keyedEntry struct {
	limiter *rate.Limiter
	seen    time.Time
}

// NewKeyedLimiter allows burst events per key, refilling one every interval.
func NewKeyedLimiter(name string, interval time.Duration, burst int) *KeyedLimiter {
	return &KeyedLimiter{
		name:     name,
		limit:    rate.Every(interval),
		burst:    burst,
		idle:     interval * time.Duration(burst+1),
		limiters: make(map[string]*keyedEntry),
	}
}

// Allow reports whether an event for key may happen now.
func (l *KeyedLimiter) Allow(key string) bool {
	return l.AllowAt(key, time.Now())
}

// AllowAt is Allow with an explicit clock.
func (l *KeyedLimiter) AllowAt(key string, now time.Time) bool {
	l.mu.Lock()
	defer l.mu.Unlock()

	if now.Sub(l.sweptAt) > l.idle {
		for k, e := range l.limiters {
			if now.Sub(e.seen) > l.idle {
				delete(l.limiters, k)
			}
		}
		l.sweptAt = now
	}

	e, ok := l.limiters[key]
	if !ok {
		e = &keyedEntry{limiter: rate.NewLimiter(l.limit, l.burst)}
		l.limiters[key] = e
	}
	e.seen = now

	if !e.limiter.AllowN(now, 1) {
		RateLimited.WithLabelValues(l.name).Inc()
		return false
	}
	return true
}

// Len returns the number of tracked keys.
func (l *KeyedLimiter) Len() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.limiters)
}

// LimitByIP rejects requests once the client IP, as resolved by ips,
// exceeds l.
func LimitByIP(l *KeyedLimiter, ips *ClientIPs, next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if !l.Allow(ips.Resolve(r)) {
			ErrorResponse(w, http.StatusTooManyRequests, "Too many requests, please try again later")
			return
		}
		next(w, r)
	}
}
