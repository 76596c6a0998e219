// Package ratelimit models the API's per-endpoint call quota.
//
// The platform grants each endpoint a fixed number of calls per 15 minute
// window and reports the budget in two places: the rate_limit_status
// endpoint and the x-rate-limit-limit, x-rate-limit-remaining and
// x-rate-limit-reset response headers.
//
// Types:
//   - Quota holds the limit, remaining count and reset time of one endpoint
//   - Tracker caches the last quota seen per endpoint until its window ends
//   - Guard decides when the crawler must cool down before the next call
//
// Usage:
//
//	guard := ratelimit.DefaultGuard() // threshold 5, cooldown 15m
//
//	if guard.ShouldCooldown(remaining) {
//		retry.Wait(ctx, guard.Cooldown)
//	}
package ratelimit
