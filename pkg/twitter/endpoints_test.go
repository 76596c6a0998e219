package twitter

import (
	"net/url"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestEndpointURL(t *testing.T) {
	params := url.Values{}
	params.Set("screen_name", "jack")

	got := endpointURL("https://api.twitter.com/1.1/", EndpointUserTimeline, params)
	assert.Equal(t, "https://api.twitter.com/1.1/statuses/user_timeline.json?screen_name=jack", got)

	got = endpointURL("http://localhost", EndpointSearch, nil)
	assert.Equal(t, "http://localhost/search/tweets.json", got)
}

func TestClampCount(t *testing.T) {
	assert.Equal(t, 200, clampCount(0, MaxTimelineCount))
	assert.Equal(t, 50, clampCount(50, MaxTimelineCount))
	assert.Equal(t, 100, clampCount(200, MaxSearchCount))
}

func TestScreenNames(t *testing.T) {
	tests := []struct {
		input string
		clean string
		valid bool
	}{
		{"jack", "jack", true},
		{"@jack", "jack", true},
		{"jack/ ", "jack", true},
		{"Go_Lang_123", "Go_Lang_123", true},
		{"", "", false},
		{"a.b", "a.b", false},
		{"sixteencharacter", "sixteencharacter", false},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			clean := SanitizeScreenName(tt.input)
			assert.Equal(t, tt.clean, clean)
			assert.Equal(t, tt.valid, IsValidScreenName(clean))
		})
	}
}

func TestNewPage(t *testing.T) {
	page := newPage(nil)
	assert.True(t, page.Done)

	page = newPage([]Tweet{{ID: 50, IDStr: "50"}, {ID: 40, IDStr: "40"}})
	assert.False(t, page.Done)
	assert.Equal(t, "39", page.NextMaxID)

	// IDStr wins over the float-rounded numeric form
	page = newPage([]Tweet{{ID: 1050118621198921700, IDStr: "1050118621198921728"}})
	assert.Equal(t, "1050118621198921727", page.NextMaxID)
}
