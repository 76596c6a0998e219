// Package twittertest provides an in-process fake of the REST API v1.1
// endpoints used by the crawler.
package twittertest

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sort"
	"strconv"
	"strings"
	"sync"
	"time"
)

const (
	timelinePath  = "/statuses/user_timeline"
	searchPath    = "/search/tweets"
	rateLimitPath = "/application/rate_limit_status"
)

// Server simulates timeline, search and rate_limit_status endpoints
type Server struct {
	server *httptest.Server

	mu        sync.Mutex
	timelines map[string][]map[string]interface{}
	searches  map[string][]map[string]interface{}
	remaining map[string]int
	failures  map[string][]int
	requests  map[string][]*http.Request
	reset     time.Time
}

// NewServer starts a fake API server. Close it when done.
func NewServer() *Server {
	s := &Server{
		timelines: make(map[string][]map[string]interface{}),
		searches:  make(map[string][]map[string]interface{}),
		remaining: make(map[string]int),
		failures:  make(map[string][]int),
		requests:  make(map[string][]*http.Request),
		reset:     time.Now().Add(15 * time.Minute),
	}

	mux := http.NewServeMux()
	mux.HandleFunc(timelinePath+".json", s.handleTimeline)
	mux.HandleFunc(searchPath+".json", s.handleSearch)
	mux.HandleFunc(rateLimitPath+".json", s.handleRateLimitStatus)

	s.server = httptest.NewServer(mux)
	return s
}

// URL returns the base URL to use as the client's BaseURL
func (s *Server) URL() string {
	return s.server.URL
}

// Close shuts down the server
func (s *Server) Close() {
	s.server.Close()
}

// Tweet builds a minimal tweet object
func Tweet(id int64, text, screenName string) map[string]interface{} {
	return map[string]interface{}{
		"id":         id,
		"id_str":     strconv.FormatInt(id, 10),
		"full_text":  text,
		"created_at": "Wed Oct 10 20:19:24 +0000 2018",
		"user": map[string]interface{}{
			"id":          int64(1000),
			"id_str":      "1000",
			"screen_name": screenName,
		},
	}
}

// AddTimeline registers tweets for screenName
func (s *Server) AddTimeline(screenName string, tweets ...map[string]interface{}) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.timelines[strings.ToLower(screenName)] = sortNewestFirst(append(s.timelines[strings.ToLower(screenName)], tweets...))
}

// AddSearch registers tweets matched by query
func (s *Server) AddSearch(query string, tweets ...map[string]interface{}) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.searches[query] = sortNewestFirst(append(s.searches[query], tweets...))
}

// SetRemaining fixes the remaining quota reported for an endpoint path
// such as "/statuses/user_timeline"
func (s *Server) SetRemaining(path string, remaining int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.remaining[path] = remaining
}

// FailNext makes the next requests to path fail with the given statuses,
// one status per request
func (s *Server) FailNext(path string, statuses ...int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.failures[path] = append(s.failures[path], statuses...)
}

// Requests returns the requests received for path
func (s *Server) Requests(path string) []*http.Request {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]*http.Request(nil), s.requests[path]...)
}

// RequestCount returns the number of requests received for path
func (s *Server) RequestCount(path string) int {
	return len(s.Requests(path))
}

func (s *Server) handleTimeline(w http.ResponseWriter, r *http.Request) {
	if !s.begin(w, r, timelinePath) {
		return
	}

	s.mu.Lock()
	tweets, ok := s.timelines[strings.ToLower(r.URL.Query().Get("screen_name"))]
	s.mu.Unlock()

	if !ok {
		writeAPIError(w, http.StatusNotFound, 34, "Sorry, that page does not exist.")
		return
	}

	writeJSON(w, page(tweets, r))
}

func (s *Server) handleSearch(w http.ResponseWriter, r *http.Request) {
	if !s.begin(w, r, searchPath) {
		return
	}

	s.mu.Lock()
	tweets := s.searches[r.URL.Query().Get("q")]
	s.mu.Unlock()

	writeJSON(w, map[string]interface{}{
		"statuses":        page(tweets, r),
		"search_metadata": map[string]interface{}{"query": r.URL.Query().Get("q")},
	})
}

func (s *Server) handleRateLimitStatus(w http.ResponseWriter, r *http.Request) {
	if !s.begin(w, r, rateLimitPath) {
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	resources := map[string]map[string]interface{}{
		"statuses": {timelinePath: s.quotaLocked(timelinePath)},
		"search":   {searchPath: s.quotaLocked(searchPath)},
	}
	writeJSON(w, map[string]interface{}{"resources": resources})
}

// begin records r, writes the quota headers and serves any queued failure.
// It returns false when the response has already been written.
func (s *Server) begin(w http.ResponseWriter, r *http.Request, path string) bool {
	s.mu.Lock()
	s.requests[path] = append(s.requests[path], r)

	var status int
	if queue := s.failures[path]; len(queue) > 0 {
		status, s.failures[path] = queue[0], queue[1:]
	}

	q := s.quotaLocked(path)
	s.mu.Unlock()

	if path != rateLimitPath {
		w.Header().Set("x-rate-limit-limit", fmt.Sprint(q["limit"]))
		w.Header().Set("x-rate-limit-remaining", fmt.Sprint(q["remaining"]))
		w.Header().Set("x-rate-limit-reset", fmt.Sprint(q["reset"]))
	}

	switch {
	case status == 0:
		return true
	case status == http.StatusTooManyRequests:
		writeAPIError(w, status, 88, "Rate limit exceeded")
	case status == http.StatusUnauthorized:
		writeAPIError(w, status, 32, "Could not authenticate you.")
	default:
		writeAPIError(w, status, 131, "Internal error")
	}
	return false
}

func (s *Server) quotaLocked(path string) map[string]interface{} {
	remaining, ok := s.remaining[path]
	if !ok {
		remaining = 180
	}
	return map[string]interface{}{
		"limit":     180,
		"remaining": remaining,
		"reset":     s.reset.Unix(),
	}
}

// page applies max_id and count to tweets sorted newest first
func page(tweets []map[string]interface{}, r *http.Request) []map[string]interface{} {
	out := []map[string]interface{}{}

	maxID, hasMax := int64(0), false
	if v := r.URL.Query().Get("max_id"); v != "" {
		if id, err := strconv.ParseInt(v, 10, 64); err == nil {
			maxID, hasMax = id, true
		}
	}

	count, err := strconv.Atoi(r.URL.Query().Get("count"))
	if err != nil || count <= 0 {
		count = 20
	}

	for _, tw := range tweets {
		if hasMax && idOf(tw) > maxID {
			continue
		}
		out = append(out, tw)
		if len(out) == count {
			break
		}
	}
	return out
}

func idOf(tweet map[string]interface{}) int64 {
	switch v := tweet["id"].(type) {
	case int64:
		return v
	case int:
		return int64(v)
	case float64:
		return int64(v)
	default:
		return 0
	}
}

func sortNewestFirst(tweets []map[string]interface{}) []map[string]interface{} {
	sort.SliceStable(tweets, func(i, j int) bool { return idOf(tweets[i]) > idOf(tweets[j]) })
	return tweets
}

func writeJSON(w http.ResponseWriter, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(v)
}

func writeAPIError(w http.ResponseWriter, status, code int, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(map[string]interface{}{
		"errors": []map[string]interface{}{{"code": code, "message": message}},
	})
}
