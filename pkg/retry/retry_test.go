package retry

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	errs "tweetcrawl/pkg/errors"
)

// recordSleep returns a SleepFunc that records delays instead of sleeping
func recordSleep(delays *[]time.Duration) SleepFunc {
	return func(ctx context.Context, d time.Duration) error {
		*delays = append(*delays, d)
		return ctx.Err()
	}
}

func TestConstantBackoff(t *testing.T) {
	backoff := &ConstantBackoff{Delay: 15 * time.Minute}

	for attempt := 1; attempt <= 3; attempt++ {
		if delay := backoff.NextDelay(attempt); delay != 15*time.Minute {
			t.Errorf("Attempt %d: expected 15m, got %v", attempt, delay)
		}
	}
}

func TestDoSuccess(t *testing.T) {
	attempts := 0
	err := Do(func() error {
		attempts++
		return nil
	}, &Config{MaxAttempts: 3})

	if err != nil {
		t.Errorf("Expected no error, got %v", err)
	}
	if attempts != 1 {
		t.Errorf("Expected 1 attempt, got %d", attempts)
	}
}

func TestDoRetriesTransientErrors(t *testing.T) {
	var delays []time.Duration
	attempts := 0

	err := Do(func() error {
		attempts++
		if attempts < 3 {
			return errs.New(errs.ErrorTypeServerError, 503, "unavailable")
		}
		return nil
	}, &Config{
		MaxAttempts: 5,
		Backoff:     &ConstantBackoff{Delay: time.Second},
		RetryIf:     func(err error) bool { return errs.TypeOf(err) == errs.ErrorTypeServerError },
		Sleep:       recordSleep(&delays),
	})

	if err != nil {
		t.Errorf("Expected success after retry, got %v", err)
	}
	if attempts != 3 {
		t.Errorf("Expected 3 attempts, got %d", attempts)
	}
	if len(delays) != 2 {
		t.Errorf("Expected 2 waits, got %d", len(delays))
	}
}

func TestDoMaxAttemptsExceeded(t *testing.T) {
	var delays []time.Duration
	attempts := 0
	apiErr := errs.New(errs.ErrorTypeNetwork, 0, "connection reset")

	err := Do(func() error {
		attempts++
		return apiErr
	}, &Config{
		MaxAttempts: 3,
		Backoff:     &ConstantBackoff{Delay: time.Second},
		RetryIf:     func(error) bool { return true },
		Sleep:       recordSleep(&delays),
	})

	if err == nil {
		t.Fatal("Expected error after max attempts")
	}
	if !errors.Is(err, apiErr) {
		t.Errorf("Expected wrapped api error, got %v", err)
	}
	if attempts != 3 {
		t.Errorf("Expected 3 attempts, got %d", attempts)
	}
	if len(delays) != 2 {
		t.Errorf("Expected no wait after the final attempt, got %d waits", len(delays))
	}
}

func TestDoNonRetryableError(t *testing.T) {
	for _, apiErr := range []error{
		errs.New(errs.ErrorTypeAuth, 401, "unauthorized"),
		errs.New(errs.ErrorTypeNetwork, 0, "connection reset"),
	} {
		attempts := 0
		err := Do(func() error {
			attempts++
			return apiErr
		}, &Config{Sleep: recordSleep(new([]time.Duration))})

		if !errors.Is(err, apiErr) {
			t.Errorf("Expected %v, got %v", apiErr, err)
		}
		if attempts != 1 {
			t.Errorf("Expected 1 attempt for non-retryable error, got %d", attempts)
		}
	}
}

func TestDoUnlimitedRateLimitRetry(t *testing.T) {
	var delays []time.Duration
	attempts := 0
	var retried []int

	err := Do(func() error {
		attempts++
		if attempts <= 4 {
			return errs.New(errs.ErrorTypeRateLimit, 429, "too many requests")
		}
		return nil
	}, &Config{
		MaxAttempts: 0,
		Backoff:     &ConstantBackoff{Delay: 15 * time.Minute},
		RetryIf:     errs.IsRateLimit,
		OnRetry:     func(attempt int, err error, delay time.Duration) { retried = append(retried, attempt) },
		Sleep:       recordSleep(&delays),
	})

	if err != nil {
		t.Fatalf("Expected success, got %v", err)
	}
	if attempts != 5 {
		t.Errorf("Expected 5 attempts, got %d", attempts)
	}
	if len(delays) != 4 {
		t.Fatalf("Expected 4 waits, got %d", len(delays))
	}
	for _, d := range delays {
		if d != 15*time.Minute {
			t.Errorf("Expected 15m wait, got %v", d)
		}
	}
	if len(retried) != 4 || retried[0] != 1 {
		t.Errorf("Unexpected OnRetry calls: %v", retried)
	}
}

func TestDoContextCancellation(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	attempts := 0

	err := Do(func() error {
		attempts++
		cancel()
		return errs.New(errs.ErrorTypeRateLimit, 429, "too many requests")
	}, &Config{
		Backoff: &ConstantBackoff{Delay: time.Hour},
		RetryIf: errs.IsRateLimit,
		Context: ctx,
	})

	if !errors.Is(err, context.Canceled) {
		t.Errorf("Expected context.Canceled, got %v", err)
	}
	if attempts != 1 {
		t.Errorf("Expected 1 attempt, got %d", attempts)
	}
}

func TestDoWithResult(t *testing.T) {
	attempts := 0
	result, err := DoWithResult(func() (string, error) {
		attempts++
		if attempts < 2 {
			return "", errs.New(errs.ErrorTypeRateLimit, 429, "too many requests")
		}
		return "ok", nil
	}, &Config{Sleep: recordSleep(new([]time.Duration))})

	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if result != "ok" {
		t.Errorf("Expected ok, got %q", result)
	}
}

func TestDefaultRetryIf(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want bool
	}{
		{"nil", nil, false},
		{"network", errs.New(errs.ErrorTypeNetwork, 0, "x"), false},
		{"server", errs.New(errs.ErrorTypeServerError, 500, "x"), false},
		{"rate limit", errs.New(errs.ErrorTypeRateLimit, 429, "x"), true},
		{"wrapped rate limit", fmt.Errorf("page 2: %w", errs.New(errs.ErrorTypeRateLimit, 88, "x")), true},
		{"auth", errs.New(errs.ErrorTypeAuth, 401, "x"), false},
		{"canceled", context.Canceled, false},
		{"plain", errors.New("x"), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := DefaultRetryIf(tt.err); got != tt.want {
				t.Errorf("DefaultRetryIf() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()
	if cfg.MaxAttempts != 0 {
		t.Errorf("Expected unlimited attempts, got %d", cfg.MaxAttempts)
	}
	if d := cfg.Backoff.NextDelay(1); d != 15*time.Minute {
		t.Errorf("Expected 15m cooldown, got %v", d)
	}
}

func TestWait(t *testing.T) {
	if err := Wait(context.Background(), time.Millisecond); err != nil {
		t.Errorf("Expected no error, got %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if err := Wait(ctx, time.Hour); !errors.Is(err, context.Canceled) {
		t.Errorf("Expected context.Canceled, got %v", err)
	}
}
