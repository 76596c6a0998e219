package paginator

import (
	"context"
	"errors"
	"fmt"
	"time"

	errs "tweetcrawl/pkg/errors"
	"tweetcrawl/pkg/logger"
	"tweetcrawl/pkg/ratelimit"
	"tweetcrawl/pkg/retry"
	"tweetcrawl/pkg/twitter"
)

// ErrNoParams is returned when a request carries no screen names or query
var ErrNoParams = errors.New("at least one crawl parameter is required")

// Options configures a Collector
type Options struct {
	// Guard sets the quota threshold and cooldown; zero means DefaultGuard
	Guard ratelimit.Guard
	// Sleep waits out cooldowns; defaults to retry.Wait
	Sleep retry.SleepFunc
	// OnPage is called after each page with its size
	OnPage func(mode Mode, target string, page, items int)
	// OnCooldown is called before each wait
	OnCooldown func(endpoint twitter.Endpoint, reason string, d time.Duration)
	Logger     logger.Logger
}

// Collector pages through the API for a Request
type Collector struct {
	fetcher Fetcher
	guard   ratelimit.Guard
	sleep   retry.SleepFunc
	onPage  func(Mode, string, int, int)
	onWait  func(twitter.Endpoint, string, time.Duration)
	logger  logger.Logger
}

// New creates a Collector reading from fetcher
func New(fetcher Fetcher, opts Options) *Collector {
	guard := opts.Guard
	if guard == (ratelimit.Guard{}) {
		guard = ratelimit.DefaultGuard()
	}
	if guard.Cooldown <= 0 {
		guard.Cooldown = ratelimit.Window
	}

	sleep := opts.Sleep
	if sleep == nil {
		sleep = retry.Wait
	}

	log := opts.Logger
	if log == nil {
		log = logger.GetLogger()
	}

	return &Collector{
		fetcher: fetcher,
		guard:   guard,
		sleep:   sleep,
		onPage:  opts.OnPage,
		onWait:  opts.OnCooldown,
		logger:  log,
	}
}

// Collect returns every tweet for req in page-then-item order, concatenated
// across targets in input order. Rate-limit failures are waited out and the
// same page is requested again. Any other failure stops the run; the tweets
// collected up to that point are returned alongside the error.
func (c *Collector) Collect(ctx context.Context, req Request) ([]twitter.Tweet, error) {
	if req.Mode == ModeStreaming {
		c.logger.Warn("Streaming collection is not supported, returning no tweets")
		return []twitter.Tweet{}, nil
	}

	strat, ok := strategies[req.Mode]
	if !ok {
		return nil, fmt.Errorf("unsupported crawl type %s", req.Mode)
	}
	if len(req.Params) == 0 {
		return nil, ErrNoParams
	}

	all := []twitter.Tweet{}
	for _, target := range strat.targets(req.Params) {
		tweets, err := c.collectTarget(ctx, req.Mode, strat, target)
		all = append(all, tweets...)
		if err != nil {
			return all, err
		}
	}

	return all, nil
}

// collectTarget pages through one screen name or query until exhaustion
func (c *Collector) collectTarget(ctx context.Context, mode Mode, strat strategy, target string) ([]twitter.Tweet, error) {
	start := time.Now()
	tweets := []twitter.Tweet{}
	maxID := ""

	for pageNum := 1; ; pageNum++ {
		if err := c.waitForQuota(ctx, strat.endpoint); err != nil {
			return tweets, fmt.Errorf("%s %q page %d: %w", mode, target, pageNum, err)
		}

		page, err := c.fetchPage(ctx, strat, target, maxID)
		if err != nil {
			return tweets, fmt.Errorf("%s %q page %d: %w", mode, target, pageNum, err)
		}

		tweets = append(tweets, page.Tweets...)
		logger.LogPage(c.logger, mode.String(), target, pageNum, len(page.Tweets), len(tweets))
		if c.onPage != nil {
			c.onPage(mode, target, pageNum, len(page.Tweets))
		}

		if page.Done || page.NextMaxID == "" {
			logger.LogCollection(c.logger, mode.String(), target, pageNum, len(tweets), time.Since(start))
			return tweets, nil
		}
		maxID = page.NextMaxID
	}
}

// waitForQuota cools down once when the endpoint's remaining calls are
// below the guard threshold. A rate-limited quota read counts as zero left.
func (c *Collector) waitForQuota(ctx context.Context, endpoint twitter.Endpoint) error {
	remaining, err := c.fetcher.RemainingCalls(ctx, endpoint)
	if err != nil {
		if !errs.IsRateLimit(err) {
			return fmt.Errorf("reading quota: %w", err)
		}
		remaining = 0
	}

	if !c.guard.ShouldCooldown(remaining) {
		return nil
	}

	c.logger.WithField("remaining", remaining).Info("Quota below threshold")
	c.cooldown(endpoint, "quota_guard", c.guard.Cooldown)
	return c.sleep(ctx, c.guard.Cooldown)
}

// fetchPage requests one page, retrying the same request after a cooldown
// for as long as the API reports a rate-limit failure
func (c *Collector) fetchPage(ctx context.Context, strat strategy, target, maxID string) (twitter.Page, error) {
	return retry.DoWithResult(func() (twitter.Page, error) {
		return strat.fetch(c.fetcher, ctx, target, maxID)
	}, &retry.Config{
		MaxAttempts: 0,
		Backoff:     &retry.ConstantBackoff{Delay: c.guard.Cooldown},
		RetryIf:     errs.IsRateLimit,
		OnRetry: func(attempt int, err error, delay time.Duration) {
			c.cooldown(strat.endpoint, "rate_limit_error", delay)
		},
		Sleep:   c.sleep,
		Context: ctx,
	})
}

func (c *Collector) cooldown(endpoint twitter.Endpoint, reason string, d time.Duration) {
	logger.LogRateLimit(c.logger, endpoint.Path, reason, d)
	if c.onWait != nil {
		c.onWait(endpoint, reason, d)
	}
}
