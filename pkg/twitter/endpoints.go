package twitter

import (
	"net/url"
	"strings"
)

const (
	// DefaultBaseURL is the base URL of the REST API v1.1
	DefaultBaseURL = "https://api.twitter.com/1.1"

	// DefaultPageSize is the number of tweets requested per page
	DefaultPageSize = 200

	// MaxTimelineCount is the largest count accepted by user_timeline
	MaxTimelineCount = 200

	// MaxSearchCount is the largest count accepted by search/tweets
	MaxSearchCount = 100
)

// Endpoint identifies an API resource and the quota bucket it draws from
type Endpoint struct {
	// Family is the resource family in rate_limit_status, e.g. "statuses"
	Family string
	// Path is the resource path, e.g. "/statuses/user_timeline"
	Path string
}

var (
	EndpointUserTimeline    = Endpoint{Family: "statuses", Path: "/statuses/user_timeline"}
	EndpointSearch          = Endpoint{Family: "search", Path: "/search/tweets"}
	EndpointRateLimitStatus = Endpoint{Family: "application", Path: "/application/rate_limit_status"}
)

// String returns the endpoint path
func (e Endpoint) String() string {
	return e.Path
}

// endpointURL builds the request URL for e under baseURL
func endpointURL(baseURL string, e Endpoint, params url.Values) string {
	u := strings.TrimRight(baseURL, "/") + e.Path + ".json"
	if len(params) > 0 {
		u += "?" + params.Encode()
	}
	return u
}

// clampCount keeps a page size within (0, max]
func clampCount(count, max int) int {
	if count <= 0 || count > max {
		return max
	}
	return count
}

// IsValidScreenName checks a screen name against the platform rules:
// 1 to 15 letters, digits or underscores
func IsValidScreenName(name string) bool {
	if name == "" || len(name) > 15 {
		return false
	}

	for _, char := range name {
		if !((char >= 'a' && char <= 'z') ||
			(char >= 'A' && char <= 'Z') ||
			(char >= '0' && char <= '9') ||
			char == '_') {
			return false
		}
	}

	return true
}

// SanitizeScreenName strips a leading @ and trailing slashes or spaces
func SanitizeScreenName(name string) string {
	name = strings.TrimSpace(name)
	name = strings.TrimPrefix(name, "@")
	return strings.TrimRight(name, "/ ")
}
