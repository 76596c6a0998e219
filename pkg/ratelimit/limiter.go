package ratelimit

import (
	"net/http"
	"strconv"
	"sync"
	"time"
)

// Window is the length of the API's fixed rate-limit window
const Window = 15 * time.Minute

// Guard decides whether a pre-emptive cooldown is due before the next call
type Guard struct {
	// Threshold is the minimum number of remaining calls required to proceed
	Threshold int
	// Cooldown is how long to wait once the threshold is crossed
	Cooldown time.Duration
}

// DefaultGuard returns the guard used by the crawler
func DefaultGuard() Guard {
	return Guard{Threshold: 5, Cooldown: Window}
}

// ShouldCooldown reports whether remaining is below the threshold
func (g Guard) ShouldCooldown(remaining int) bool {
	return remaining < g.Threshold
}

// Quota is the call budget of one endpoint in the current window
type Quota struct {
	Limit     int
	Remaining int
	Reset     time.Time
}

// Expired reports whether the window the quota describes has ended
func (q Quota) Expired(now time.Time) bool {
	return !q.Reset.After(now)
}

// ParseReset parses a unix timestamp reset value.
// Falls back to one window from now if missing or invalid.
func ParseReset(v string) time.Time {
	if ts, err := strconv.ParseInt(v, 10, 64); err == nil {
		return time.Unix(ts, 0)
	}
	return time.Now().Add(Window)
}

// QuotaFromHeaders reads the x-rate-limit-* response headers. The second
// return value is false when the response carries no remaining count.
func QuotaFromHeaders(h http.Header) (Quota, bool) {
	remaining, err := strconv.Atoi(h.Get("x-rate-limit-remaining"))
	if err != nil {
		return Quota{}, false
	}

	limit, _ := strconv.Atoi(h.Get("x-rate-limit-limit"))

	return Quota{
		Limit:     limit,
		Remaining: remaining,
		Reset:     ParseReset(h.Get("x-rate-limit-reset")),
	}, true
}

// Tracker remembers the last known quota per endpoint key
type Tracker struct {
	mu     sync.Mutex
	quotas map[string]Quota
	now    func() time.Time
}

// NewTracker creates an empty tracker
func NewTracker() *Tracker {
	return &Tracker{
		quotas: make(map[string]Quota),
		now:    time.Now,
	}
}

// Update records the quota for key
func (t *Tracker) Update(key string, q Quota) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.quotas[key] = q
}

// Get returns the quota for key if one is known and its window is still open
func (t *Tracker) Get(key string) (Quota, bool) {
	t.mu.Lock()
	defer t.mu.Unlock()

	q, ok := t.quotas[key]
	if !ok || q.Expired(t.now()) {
		return Quota{}, false
	}
	return q, true
}

