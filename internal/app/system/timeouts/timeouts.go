// Package timeouts holds the per-handler deadlines used around calls to the
// remote contacts services and the audit store.
//
// Tiers:
//   - Ping: health checks
//   - Short: one remote read, such as loading a contact for a confirm page
//   - Medium: one page worth of work, a list plus its role fan-out or a
//     write followed by a re-read
//   - Long: walking every page of the contacts service for an export, or
//     scanning the audit trail
//
// Values start at their defaults and may be overridden from the environment
// (CONTACTHUB_TIMEOUT_PING and so on) or raised to cover the API client's
// own per-request timeout with Cover.
package timeouts

import (
	"context"
	"fmt"
	"os"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"
)

// Tier names a class of operation.
type Tier int

const (
	TierPing Tier = iota
	TierShort
	TierMedium
	TierLong
	numTiers
)

func (t Tier) String() string {
	switch t {
	case TierPing:
		return "ping"
	case TierShort:
		return "short"
	case TierMedium:
		return "medium"
	case TierLong:
		return "long"
	}
	return fmt.Sprintf("tier(%d)", int(t))
}

// Default timeout values.
const (
	DefaultPing   = 2 * time.Second
	DefaultShort  = 5 * time.Second
	DefaultMedium = 20 * time.Second
	DefaultLong   = 2 * time.Minute
)

// EnvPrefix is prepended to the upper-cased tier name to form the override
// variable, e.g. CONTACTHUB_TIMEOUT_MEDIUM.
const EnvPrefix = "CONTACTHUB_TIMEOUT_"

var defaults = [numTiers]time.Duration{
	TierPing:   DefaultPing,
	TierShort:  DefaultShort,
	TierMedium: DefaultMedium,
	TierLong:   DefaultLong,
}

var (
	mu     sync.RWMutex
	values = defaults
)

// Get returns the current value of tier t.
func Get(t Tier) time.Duration {
	mu.RLock()
	defer mu.RUnlock()
	return values[t]
}

func Ping() time.Duration   { return Get(TierPing) }
func Short() time.Duration  { return Get(TierShort) }
func Medium() time.Duration { return Get(TierMedium) }
func Long() time.Duration   { return Get(TierLong) }

// Set overrides tier t. Non-positive values are ignored.
func Set(t Tier, d time.Duration) {
	if d <= 0 || t < 0 || t >= numTiers {
		return
	}
	mu.Lock()
	values[t] = d
	mu.Unlock()
}

// Reset restores all timeouts to their default values.
func Reset() {
	mu.Lock()
	values = defaults
	mu.Unlock()
}

// Current returns every tier's value keyed by name, for startup logging.
func Current() map[string]time.Duration {
	mu.RLock()
	defer mu.RUnlock()
	out := make(map[string]time.Duration, numTiers)
	for t := Tier(0); t < numTiers; t++ {
		out[t.String()] = values[t]
	}
	return out
}

// ConfigureFromEnv applies CONTACTHUB_TIMEOUT_<TIER> overrides such as
// "500ms" or "2m". Unset, unparsable and non-positive values are skipped.
// It returns how many tiers were changed.
func ConfigureFromEnv() int {
	return configure(os.Getenv)
}

func configure(getenv func(string) string) int {
	n := 0
	for t := Tier(0); t < numTiers; t++ {
		v := getenv(EnvPrefix + strings.ToUpper(t.String()))
		if v == "" {
			continue
		}
		d, err := time.ParseDuration(v)
		if err != nil || d <= 0 {
			continue
		}
		Set(t, d)
		n++
	}
	return n
}

// Cover raises the Short, Medium and Long tiers so each allows at least one
// remote request of length perRequest, twice over for Medium and Long where
// a page makes dependent calls. Ping is left alone.
func Cover(perRequest time.Duration) {
	if perRequest <= 0 {
		return
	}
	mu.Lock()
	defer mu.Unlock()
	raise := func(t Tier, min time.Duration) {
		if values[t] < min {
			values[t] = min
		}
	}
	raise(TierShort, perRequest)
	raise(TierMedium, 2*perRequest)
	raise(TierLong, 2*perRequest)
}

// WithTimeout creates a context with timeout and returns a cancel function that
// logs a warning if the context was canceled due to deadline exceeded.
//
// Example:
//
//	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Long(), h.Log, "contacts export")
//	defer cancel()
func WithTimeout(parent context.Context, timeout time.Duration, log *zap.Logger, operation string) (context.Context, context.CancelFunc) {
	ctx, cancel := context.WithTimeout(parent, timeout)
	return ctx, func() {
		if ctx.Err() == context.DeadlineExceeded && log != nil {
			log.Warn("operation timed out",
				zap.String("operation", operation),
				zap.Duration("timeout", timeout),
			)
		}
		cancel()
	}
}
