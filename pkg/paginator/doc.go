// Package paginator drives the API client page by page for a crawl request.
//
// The Collector checks the endpoint's remaining quota before every page and
// cools down once when it is below the guard threshold. A rate-limit failure
// on the page itself is waited out and the same page is requested again,
// without limit. All other failures end the run.
//
// Usage:
//
//	c := paginator.New(client, paginator.Options{Logger: log})
//	tweets, err := c.Collect(ctx, paginator.Request{
//		Mode:   paginator.ModeTimeline,
//		Params: []string{"jack", "biz"},
//	})
//
// Waits honour ctx, and Options.Sleep can be replaced in tests.
package paginator
