package paginator

import (
	"context"
	"fmt"
	"strings"

	"tweetcrawl/pkg/twitter"
)

// Mode selects what a collection request fetches
type Mode int

const (
	// ModeTimeline fetches the timelines of one or more screen names
	ModeTimeline Mode = iota + 1
	// ModeSearch fetches the results of one search query
	ModeSearch
	// ModeStreaming is recognised but not supported
	ModeStreaming
)

// String returns the mode's flag value
func (m Mode) String() string {
	switch m {
	case ModeTimeline:
		return "timeline"
	case ModeSearch:
		return "search"
	case ModeStreaming:
		return "streaming"
	default:
		return fmt.Sprintf("mode(%d)", int(m))
	}
}

// ParseMode converts a flag value into a Mode. "query" is accepted as an
// alias for search.
func ParseMode(s string) (Mode, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "timeline":
		return ModeTimeline, nil
	case "search", "query":
		return ModeSearch, nil
	case "streaming":
		return ModeStreaming, nil
	default:
		return 0, fmt.Errorf("unknown crawl type %q (expected timeline, search or streaming)", s)
	}
}

// Request describes one collection run
type Request struct {
	Mode   Mode
	Params []string
}

// Fetcher is the API surface the collector pages through
type Fetcher interface {
	UserTimeline(ctx context.Context, screenName, maxID string) (twitter.Page, error)
	Search(ctx context.Context, query, maxID string) (twitter.Page, error)
	RemainingCalls(ctx context.Context, endpoint twitter.Endpoint) (int, error)
}

type fetchFunc func(f Fetcher, ctx context.Context, param, maxID string) (twitter.Page, error)

// strategy binds a mode to its quota key, page call and target list
type strategy struct {
	endpoint twitter.Endpoint
	fetch    fetchFunc
	targets  func(params []string) []string
}

var strategies = map[Mode]strategy{
	ModeTimeline: {
		endpoint: twitter.EndpointUserTimeline,
		fetch:    Fetcher.UserTimeline,
		targets:  func(params []string) []string { return params },
	},
	ModeSearch: {
		endpoint: twitter.EndpointSearch,
		fetch:    Fetcher.Search,
		targets: func(params []string) []string {
			return []string{strings.Join(params, " ")}
		},
	},
}
