// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package middleware

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// httpRequests counts handled requests.
	// Labels: route (ServeMux pattern), method, status
	httpRequests = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "forum",
		Subsystem: "http",
		Name:      "requests_total",
		Help:      "Total HTTP requests by route, method and status",
	}, []string{"route", "method", "status"})

	httpDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "forum",
		Subsystem: "http",
		Name:      "request_duration_seconds",
		Help:      "HTTP request latency in seconds",
		Buckets:   []float64{0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5},
	}, []string{"route", "method"})

	// VotesTotal counts vote toggles.
	// Labels: target (topic, reply), outcome (created, removed, switched)
	VotesTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "forum",
		Name:      "votes_total",
		Help:      "Vote toggles by target and outcome",
	}, []string{"target", "outcome"})

	// SignInsTotal counts sign-in attempts.
	// Labels: method (password, otp), result (success, failure)
	SignInsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "forum",
		Name:      "signins_total",
		Help:      "Sign-in attempts by method and result",
	}, []string{"method", "result"})

	// OTPSentTotal counts verification emails sent.
	// Labels: type (signup, signin)
	OTPSentTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "forum",
		Name:      "otp_sent_total",
		Help:      "Verification codes emailed by purpose",
	}, []string{"type"})

	// RateLimited counts requests rejected by a KeyedLimiter.
	RateLimited = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "forum",
		Name:      "rate_limited_total",
		Help:      "Requests rejected by rate limiting",
	}, []string{"limiter"})
)
