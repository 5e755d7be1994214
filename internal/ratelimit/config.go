// Package ratelimit is a fixed-window request limiter keyed by client.
package ratelimit

import "time"

// Limit allows MaxRequests per Window for each key. Zero values mean no
// limit.
type Limit struct {
	MaxRequests int           `yaml:"max_requests"`
	Window      time.Duration `yaml:"window"`
}

// Enabled reports whether the limit is configured.
func (l Limit) Enabled() bool {
	return l.MaxRequests > 0 && l.Window > 0
}
