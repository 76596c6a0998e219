// Package twitter provides a client for the Twitter REST API v1.1.
//
// This package includes:
//   - An HTTP client signed with OAuth 1.0a user context or an app-only
//     bearer token
//   - max_id pagination over statuses/user_timeline and search/tweets
//   - Per-endpoint quota tracking fed by rate_limit_status and the
//     x-rate-limit-* response headers
//   - Typed errors from pkg/errors; HTTP 429 and API code 88 are rate_limit
//
// Example usage:
//
//	client, err := twitter.NewClient(&cfg.Twitter, logger.GetLogger())
//	if err != nil {
//		return err
//	}
//
//	page, err := client.UserTimeline(ctx, "jack", "")
//	for !page.Done && err == nil {
//		handle(page.Tweets)
//		page, err = client.UserTimeline(ctx, "jack", page.NextMaxID)
//	}
//
// Each Tweet keeps the complete object returned by the API in Tweet.Raw.
package twitter
