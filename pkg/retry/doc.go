// Package retry provides backoff and retry logic for API calls.
//
// Rate-limit failures are retried after a ConstantBackoff cooldown, since
// the platform resets quotas on a fixed window. Other failures are returned
// to the caller on the first attempt unless a custom RetryIf says otherwise.
//
// Basic usage:
//
//	page, err := retry.DoWithResult(func() (twitter.Page, error) {
//		return client.UserTimeline(ctx, "jack", maxID)
//	}, &retry.Config{
//		MaxAttempts: 0, // retry until success or a non-retryable error
//		Backoff:     &retry.ConstantBackoff{Delay: 15 * time.Minute},
//		RetryIf:     errors.IsRateLimit,
//		OnRetry: func(attempt int, err error, delay time.Duration) {
//			logger.LogRateLimit(log, "/statuses/user_timeline", "rate_limit_error", delay)
//		},
//		Context: ctx,
//	})
//
// Config.Sleep can be replaced so tests observe waits without sleeping.
package retry
