package twitter

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/dghubble/oauth1"
	"tweetcrawl/pkg/config"
	errs "tweetcrawl/pkg/errors"
	"tweetcrawl/pkg/logger"
	"tweetcrawl/pkg/ratelimit"
)

// Client is an authenticated REST API v1.1 client
type Client struct {
	httpClient *http.Client
	headers    map[string]string
	baseURL    string
	pageSize   int
	quotas     *ratelimit.Tracker
	logger     logger.Logger
}

// NewClient creates a client from cfg. Requests are signed with OAuth 1.0a
// when user-context credentials are complete; otherwise the bearer token is
// used for app-only auth.
func NewClient(cfg *config.TwitterConfig, log logger.Logger) (*Client, error) {
	if log == nil {
		log = logger.GetLogger()
	}

	httpClient, err := newHTTPClient(cfg)
	if err != nil {
		return nil, err
	}

	baseURL := cfg.BaseURL
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}

	pageSize := cfg.PageSize
	if pageSize <= 0 {
		pageSize = DefaultPageSize
	}

	return &Client{
		httpClient: httpClient,
		headers: map[string]string{
			"User-Agent": "tweetcrawl/1.0",
			"Accept":     "application/json",
		},
		baseURL:  baseURL,
		pageSize: pageSize,
		quotas:   ratelimit.NewTracker(),
		logger:   log,
	}, nil
}

func newHTTPClient(cfg *config.TwitterConfig) (*http.Client, error) {
	hasUserContext := cfg.ConsumerKey != "" && cfg.ConsumerSecret != "" &&
		cfg.AccessToken != "" && cfg.AccessSecret != ""

	switch {
	case hasUserContext:
		oauthConfig := oauth1.NewConfig(cfg.ConsumerKey, cfg.ConsumerSecret)
		token := oauth1.NewToken(cfg.AccessToken, cfg.AccessSecret)
		client := oauthConfig.Client(context.Background(), token)
		client.Timeout = cfg.Timeout
		return client, nil
	case cfg.BearerToken != "":
		return &http.Client{
			Timeout: cfg.Timeout,
			Transport: &bearerTransport{
				token: cfg.BearerToken,
				base:  http.DefaultTransport,
			},
		}, nil
	default:
		return nil, errs.New(errs.ErrorTypeAuth, 0,
			"no API credentials: set consumer key/secret and access token/secret, or a bearer token")
	}
}

// bearerTransport adds an app-only Authorization header
type bearerTransport struct {
	token string
	base  http.RoundTripper
}

func (t *bearerTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	r := req.Clone(req.Context())
	r.Header.Set("Authorization", "Bearer "+t.token)
	return t.base.RoundTrip(r)
}

// doRequest performs an HTTP request with the configured headers
func (c *Client) doRequest(req *http.Request) (*http.Response, error) {
	for key, value := range c.headers {
		req.Header.Set(key, value)
	}

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	duration := time.Since(start)

	if err != nil {
		if ctxErr := req.Context().Err(); ctxErr != nil {
			return nil, ctxErr
		}
		c.logger.ErrorWithFields("HTTP request failed", map[string]interface{}{
			"method":   req.Method,
			"url":      redactURL(req.URL),
			"error":    err.Error(),
			"duration": duration,
		})
		return nil, errs.New(errs.ErrorTypeNetwork, 0, "network error: %v", err)
	}

	logger.LogRequest(c.logger, req.Method, redactURL(req.URL), resp.StatusCode, duration)

	return resp, nil
}

// getJSON performs a GET request against e and decodes the JSON response
func (c *Client) getJSON(ctx context.Context, e Endpoint, params url.Values, target interface{}) error {
	reqURL := endpointURL(c.baseURL, e, params)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return errs.New(errs.ErrorTypeUnknown, 0, "failed to create request: %v", err)
	}

	resp, err := c.doRequest(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return errs.New(errs.ErrorTypeNetwork, resp.StatusCode, "failed to read response body: %v", err)
	}

	c.recordQuota(e, resp)

	if err := c.checkResponseStatus(resp, body); err != nil {
		return err
	}

	if err := json.Unmarshal(body, target); err != nil {
		bodyPreview := string(body)
		if len(bodyPreview) > 200 {
			bodyPreview = bodyPreview[:200] + "..."
		}

		c.logger.ErrorWithFields("failed to parse JSON response", map[string]interface{}{
			"endpoint":     e.Path,
			"status":       resp.StatusCode,
			"error":        err.Error(),
			"body_preview": bodyPreview,
		})
		return errs.New(errs.ErrorTypeParsing, resp.StatusCode, "failed to parse JSON: %v", err)
	}

	return nil
}

// recordQuota stores the quota reported in the response headers
func (c *Client) recordQuota(e Endpoint, resp *http.Response) {
	q, ok := ratelimit.QuotaFromHeaders(resp.Header)
	if !ok {
		if resp.StatusCode != http.StatusTooManyRequests {
			return
		}
		q = ratelimit.Quota{Reset: ratelimit.ParseReset(resp.Header.Get("x-rate-limit-reset"))}
	}
	c.quotas.Update(e.Path, q)
}

// checkResponseStatus maps HTTP status codes and API error codes to typed errors
func (c *Client) checkResponseStatus(resp *http.Response, body []byte) error {
	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		return nil
	}

	code, message := firstAPIError(body)
	fields := map[string]interface{}{
		"status":   resp.StatusCode,
		"url":      redactURL(resp.Request.URL),
		"api_code": code,
	}

	switch {
	case resp.StatusCode == http.StatusTooManyRequests || code == 88:
		c.logger.WarnWithFields("rate limit exceeded", fields)
		return errs.New(errs.ErrorTypeRateLimit, resp.StatusCode, "rate limit exceeded%s", detail(message))
	case resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden:
		c.logger.WarnWithFields("authentication error", fields)
		return errs.New(errs.ErrorTypeAuth, resp.StatusCode, "not authorized%s", detail(message))
	case resp.StatusCode == http.StatusNotFound || code == 34:
		c.logger.WarnWithFields("resource not found", fields)
		return errs.New(errs.ErrorTypeNotFound, resp.StatusCode, "resource not found%s", detail(message))
	case resp.StatusCode >= 500:
		c.logger.ErrorWithFields("server error", fields)
		return errs.New(errs.ErrorTypeServerError, resp.StatusCode, "server error%s", detail(message))
	default:
		c.logger.ErrorWithFields("unexpected API error", fields)
		return errs.New(errs.ErrorTypeUnknown, resp.StatusCode, "unexpected status code: %d%s", resp.StatusCode, detail(message))
	}
}

func firstAPIError(body []byte) (int, string) {
	var envelope apiErrors
	if err := json.Unmarshal(body, &envelope); err != nil || len(envelope.Errors) == 0 {
		return 0, ""
	}
	return envelope.Errors[0].Code, envelope.Errors[0].Message
}

func detail(message string) string {
	if message == "" {
		return ""
	}
	return ": " + message
}

// redactURL drops the query string, which may carry search terms
func redactURL(u *url.URL) string {
	if u == nil {
		return ""
	}
	clean := *u
	clean.RawQuery = ""
	return clean.String()
}

// UserTimeline fetches one page of screenName's timeline. An empty maxID
// requests the newest page.
func (c *Client) UserTimeline(ctx context.Context, screenName, maxID string) (Page, error) {
	screenName = SanitizeScreenName(screenName)
	if !IsValidScreenName(screenName) {
		return Page{}, errs.New(errs.ErrorTypeNotFound, 0, "invalid screen name %q", screenName)
	}

	params := url.Values{}
	params.Set("screen_name", screenName)
	params.Set("count", fmt.Sprint(clampCount(c.pageSize, MaxTimelineCount)))
	params.Set("tweet_mode", "extended")
	params.Set("include_rts", "true")
	if maxID != "" {
		params.Set("max_id", maxID)
	}

	var tweets []Tweet
	if err := c.getJSON(ctx, EndpointUserTimeline, params, &tweets); err != nil {
		return Page{}, fmt.Errorf("timeline of %s: %w", screenName, err)
	}

	return newPage(tweets), nil
}

// Search fetches one page of search results for query
func (c *Client) Search(ctx context.Context, query, maxID string) (Page, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return Page{}, errs.New(errs.ErrorTypeUnknown, 0, "empty search query")
	}

	params := url.Values{}
	params.Set("q", query)
	params.Set("count", fmt.Sprint(clampCount(c.pageSize, MaxSearchCount)))
	params.Set("tweet_mode", "extended")
	if maxID != "" {
		params.Set("max_id", maxID)
	}

	var response searchResponse
	if err := c.getJSON(ctx, EndpointSearch, params, &response); err != nil {
		return Page{}, fmt.Errorf("search %q: %w", query, err)
	}

	return newPage(response.Statuses), nil
}

// RemainingCalls returns the calls left on e before its window resets. The
// last quota seen in response headers is used while its window is open;
// otherwise rate_limit_status is queried.
func (c *Client) RemainingCalls(ctx context.Context, e Endpoint) (int, error) {
	if q, ok := c.quotas.Get(e.Path); ok {
		return q.Remaining, nil
	}

	if err := c.refreshQuotas(ctx); err != nil {
		return 0, err
	}

	q, ok := c.quotas.Get(e.Path)
	if !ok {
		return 0, errs.New(errs.ErrorTypeNotFound, 0, "no rate limit status for %s", e.Path)
	}
	return q.Remaining, nil
}

// refreshQuotas loads every quota relevant to crawling from rate_limit_status
func (c *Client) refreshQuotas(ctx context.Context) error {
	params := url.Values{}
	params.Set("resources", strings.Join([]string{EndpointUserTimeline.Family, EndpointSearch.Family}, ","))

	var status rateLimitStatus
	if err := c.getJSON(ctx, EndpointRateLimitStatus, params, &status); err != nil {
		return fmt.Errorf("rate limit status: %w", err)
	}

	for _, resources := range status.Resources {
		for path, r := range resources {
			c.quotas.Update(path, ratelimit.Quota{
				Limit:     r.Limit,
				Remaining: r.Remaining,
				Reset:     time.Unix(r.Reset, 0),
			})
		}
	}

	c.logger.DebugWithFields("rate limit status refreshed", map[string]interface{}{
		"families": len(status.Resources),
	})

	return nil
}
