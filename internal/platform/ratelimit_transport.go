// Copyright (c) 2025 Archmagece
// SPDX-License-Identifier: MIT

package platform

import (
	"net/http"

	"github.com/archmagece/gitgrip/pkg/ratelimit"
)

// rateLimitedTransport wraps an http.RoundTripper, blocking on the
// adapter's Limiter before every request and refreshing it from the
// response headers afterward.
type rateLimitedTransport struct {
	base    http.RoundTripper
	limiter *ratelimit.Limiter
}

// NewRateLimitedTransport wraps base (http.DefaultTransport if nil)
// with limit-aware throttling. Adapters share one of these per
// platform client so concurrent fan-out requests stay under the
// platform's published rate limit.
func NewRateLimitedTransport(base http.RoundTripper, limiter *ratelimit.Limiter) http.RoundTripper {
	if base == nil {
		base = http.DefaultTransport
	}
	return &rateLimitedTransport{base: base, limiter: limiter}
}

func (t *rateLimitedTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	if err := t.limiter.Wait(req.Context()); err != nil {
		return nil, err
	}
	resp, err := t.base.RoundTrip(req)
	if err == nil {
		t.limiter.UpdateFromHeaders(resp)
	}
	return resp, err
}
