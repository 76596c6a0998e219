package ui

import (
	"bytes"
	"os"
	"strings"
	"testing"
	"time"
)

func captureOutput(t *testing.T) *bytes.Buffer {
	t.Helper()
	var buf bytes.Buffer
	SetOutput(&buf)
	t.Cleanup(func() {
		SetOutput(os.Stderr)
		SetQuietMode(false)
	})
	return &buf
}

func TestPrintToOutput(t *testing.T) {
	buf := captureOutput(t)

	PrintInfo("Mode", "timeline")
	PrintWarning("Streaming is not supported")
	PrintError("Crawl failed", "boom")
	PrintSuccess("Done")

	got := buf.String()
	for _, want := range []string{"Mode: timeline\n", "Streaming is not supported\n", "Crawl failed: boom\n", "Done\n"} {
		if !strings.Contains(got, want) {
			t.Errorf("Expected %q in output %q", want, got)
		}
	}
	if strings.Contains(got, "\033[") {
		t.Error("Expected no color codes for a non-terminal writer")
	}
}

func TestQuietMode(t *testing.T) {
	buf := captureOutput(t)
	SetQuietMode(true)

	if !IsQuietMode() {
		t.Fatal("Expected quiet mode on")
	}

	PrintInfo("Mode", "search")
	PrintHighlight("hidden")
	PrintError("still shown")

	if got := buf.String(); got != "still shown\n" {
		t.Errorf("Expected only the error in quiet mode, got %q", got)
	}
}

func TestStatusTracker(t *testing.T) {
	start := time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)
	st := NewStatusTracker()
	st.StartTime = start
	st.now = func() time.Time { return start.Add(2 * time.Minute) }

	st.AddPage(200)
	st.AddPage(100)
	st.AddCooldown(15 * time.Minute)

	if st.GetRate() != 150 {
		t.Errorf("Expected 150 tweets/min, got %v", st.GetRate())
	}

	want := "300 tweets in 2 pages, 2m0s elapsed, 150 tweets/min, 1 cooldowns (15m0s waiting)"
	if got := st.Summary(); got != want {
		t.Errorf("Summary() = %q, want %q", got, want)
	}
}

func TestCooldownNotice(t *testing.T) {
	now := time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)
	got := CooldownNotice("/search/tweets", "quota_guard", 15*time.Minute, now)
	want := "Rate limit on /search/tweets (quota_guard): waiting 15m0s, resuming at 12:15:00"
	if got != want {
		t.Errorf("CooldownNotice() = %q, want %q", got, want)
	}
}
