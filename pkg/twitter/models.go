package twitter

import (
	"bytes"
	stdjson "encoding/json"
	"strconv"

	jsoniter "github.com/json-iterator/go"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// User is the author of a tweet
type User struct {
	ID         int64  `json:"id"`
	IDStr      string `json:"id_str"`
	ScreenName string `json:"screen_name"`
	Name       string `json:"name"`
}

// Tweet is a single status. Raw holds the complete object exactly as the
// API returned it, compacted; the typed fields are decoded from it.
type Tweet struct {
	ID        int64  `json:"id"`
	IDStr     string `json:"id_str"`
	Text      string `json:"text"`
	FullText  string `json:"full_text"`
	CreatedAt string `json:"created_at"`
	User      User   `json:"user"`

	Raw stdjson.RawMessage `json:"-"`
}

type tweetFields Tweet

// UnmarshalJSON decodes the typed fields and keeps the full object in Raw
func (t *Tweet) UnmarshalJSON(data []byte) error {
	var fields tweetFields
	if err := json.Unmarshal(data, &fields); err != nil {
		return err
	}

	var compact bytes.Buffer
	if err := stdjson.Compact(&compact, data); err != nil {
		return err
	}

	*t = Tweet(fields)
	t.Raw = compact.Bytes()
	return nil
}

// MarshalJSON returns Raw when present so no field the API sent is lost
func (t Tweet) MarshalJSON() ([]byte, error) {
	if len(t.Raw) > 0 {
		return t.Raw, nil
	}
	return json.Marshal(tweetFields(t))
}

// Body returns the untruncated text when the API provided it
func (t Tweet) Body() string {
	if t.FullText != "" {
		return t.FullText
	}
	return t.Text
}

// numericID returns the tweet ID, preferring the exact string form
func (t Tweet) numericID() (int64, bool) {
	if t.IDStr != "" {
		if id, err := strconv.ParseInt(t.IDStr, 10, 64); err == nil {
			return id, true
		}
	}
	return t.ID, t.ID > 0
}

// Page is one response of a paginated endpoint
type Page struct {
	Tweets []Tweet
	// NextMaxID is the max_id cursor for the following page
	NextMaxID string
	// Done is set once the endpoint has no more results
	Done bool
}

// newPage derives the cursor from tweets: the next request asks for IDs
// strictly below the smallest one seen. An empty page ends pagination.
func newPage(tweets []Tweet) Page {
	if len(tweets) == 0 {
		return Page{Done: true}
	}

	var min int64
	for _, tw := range tweets {
		id, ok := tw.numericID()
		if !ok {
			continue
		}
		if min == 0 || id < min {
			min = id
		}
	}

	if min <= 1 {
		return Page{Tweets: tweets, Done: true}
	}

	return Page{Tweets: tweets, NextMaxID: strconv.FormatInt(min-1, 10)}
}

// searchResponse is the envelope of search/tweets
type searchResponse struct {
	Statuses []Tweet `json:"statuses"`
}

// apiErrors is the error envelope shared by all v1.1 endpoints
type apiErrors struct {
	Errors []struct {
		Code    int    `json:"code"`
		Message string `json:"message"`
	} `json:"errors"`
}

// rateLimitStatus is the response of application/rate_limit_status
type rateLimitStatus struct {
	Resources map[string]map[string]struct {
		Limit     int   `json:"limit"`
		Remaining int   `json:"remaining"`
		Reset     int64 `json:"reset"`
	} `json:"resources"`
}
