// Package ratelimit provides fixed-window counting for account actions
// such as registration and two-factor verification. Each limited action
// owns its own Limiter; windows are keyed by caller identity (IP or
// account id) and reset as wall-clock time crosses the window boundary.
package ratelimit

import "time"

// Limiter answers whether an action keyed by identity may proceed.
type Limiter interface {
	// Allow records an attempt for key and reports whether it is within
	// the window's budget. Denied attempts do not consume budget: once a
	// window is saturated, further calls within it are idempotent denies.
	Allow(key string) bool
}

// Config describes one action's budget.
type Config struct {
	// Max is the number of attempts allowed per window. Zero or negative
	// denies everything.
	Max int
	// Window is the fixed window length.
	Window time.Duration
}
