package ui

import (
	"fmt"
	"time"
)

// StatusTracker keeps track of crawl progress
type StatusTracker struct {
	Pages     int
	Tweets    int
	Cooldowns int
	Waited    time.Duration
	StartTime time.Time
	now       func() time.Time
}

// NewStatusTracker creates a new status tracker
func NewStatusTracker() *StatusTracker {
	return &StatusTracker{StartTime: time.Now(), now: time.Now}
}

// AddPage records one fetched page of n tweets
func (st *StatusTracker) AddPage(n int) {
	st.Pages++
	st.Tweets += n
}

// AddCooldown records one rate-limit wait
func (st *StatusTracker) AddCooldown(d time.Duration) {
	st.Cooldowns++
	st.Waited += d
}

// GetElapsedTime returns the elapsed time since tracking started
func (st *StatusTracker) GetElapsedTime() time.Duration {
	return st.now().Sub(st.StartTime)
}

// GetRate returns the average number of tweets per minute
func (st *StatusTracker) GetRate() float64 {
	elapsed := st.GetElapsedTime().Minutes()
	if elapsed <= 0 {
		return 0
	}
	return float64(st.Tweets) / elapsed
}

// Summary returns a one-line description of the crawl so far
func (st *StatusTracker) Summary() string {
	s := fmt.Sprintf("%d tweets in %d pages, %s elapsed",
		st.Tweets, st.Pages, st.GetElapsedTime().Round(time.Second))
	if rate := st.GetRate(); rate > 0 {
		s += fmt.Sprintf(", %.0f tweets/min", rate)
	}
	if st.Cooldowns > 0 {
		s += fmt.Sprintf(", %d cooldowns (%s waiting)", st.Cooldowns, st.Waited.Round(time.Second))
	}
	return s
}

// CooldownNotice describes a wait of d starting now
func CooldownNotice(endpoint, reason string, d time.Duration, now time.Time) string {
	return fmt.Sprintf("Rate limit on %s (%s): waiting %s, resuming at %s",
		endpoint, reason, d.Round(time.Second), now.Add(d).Format("15:04:05"))
}
