// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestKeyedLimiter_PerKeyBuckets(t *testing.T) {
	l := NewKeyedLimiter("test", time.Minute, 2)
	now := time.Now()

	assert.True(t, l.AllowAt("a@example.com", now))
	assert.True(t, l.AllowAt("a@example.com", now))
	assert.False(t, l.AllowAt("a@example.com", now), "third request inside the window is rejected")

	assert.True(t, l.AllowAt("b@example.com", now), "other keys have their own bucket")

	assert.True(t, l.AllowAt("a@example.com", now.Add(time.Minute)), "one token refills per interval")
}

func TestKeyedLimiter_SweepsIdleKeys(t *testing.T) {
	l := NewKeyedLimiter("test", time.Second, 1)
	now := time.Now()

	l.AllowAt("a", now)
	l.AllowAt("b", now)
	assert.Equal(t, 2, l.Len())

	l.AllowAt("c", now.Add(time.Minute))
	assert.Equal(t, 1, l.Len())
}

func TestLimitByIP(t *testing.T) {
	l := NewKeyedLimiter("test", time.Hour, 1)
	handler := LimitByIP(l, nil, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	})

	first := httptest.NewRecorder()
	handler(first, httptest.NewRequest("POST", "/api/auth/signin", nil))
	assert.Equal(t, http.StatusNoContent, first.Code)

	forged := httptest.NewRequest("POST", "/api/auth/signin", nil)
	forged.Header.Set("X-Forwarded-For", "198.51.100.1")
	second := httptest.NewRecorder()
	handler(second, forged)
	assert.Equal(t, http.StatusTooManyRequests, second.Code)

	other := httptest.NewRequest("POST", "/api/auth/signin", nil)
	other.RemoteAddr = "203.0.113.9:4000"
	third := httptest.NewRecorder()
	handler(third, other)
	assert.Equal(t, http.StatusNoContent, third.Code)
}
