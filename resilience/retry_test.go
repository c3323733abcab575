package resilience

import (
	"context"
	stderrors "errors"
	"fmt"
	"testing"
	"time"

	"github.com/kbukum/httpaccess/errors"
)

func fastRetry(attempts int) RetryConfig {
	return RetryConfig{MaxAttempts: attempts, InitialBackoff: time.Millisecond, MaxBackoff: 5 * time.Millisecond}
}

func TestRetry_SucceedsOnFirstAttempt(t *testing.T) {
	calls := 0
	got, err := Retry(context.Background(), DefaultRetryConfig(), func() (int, error) {
		calls++
		return 200, nil
	})
	if err != nil || got != 200 || calls != 1 {
		t.Errorf("got %d, %v after %d calls", got, err, calls)
	}
}

func TestRetry_RetriesTransientErrors(t *testing.T) {
	calls := 0
	got, err := Retry(context.Background(), fastRetry(3), func() (string, error) {
		calls++
		if calls < 3 {
			return "", errors.ConnectionFailed("proxy:3128", nil)
		}
		return "ok", nil
	})
	if err != nil || got != "ok" {
		t.Fatalf("got %q, %v", got, err)
	}
	if calls != 3 {
		t.Errorf("expected 3 calls, got %d", calls)
	}
}

func TestRetry_StopsOnPermanentError(t *testing.T) {
	calls := 0
	_, err := Retry(context.Background(), fastRetry(5), func() (int, error) {
		calls++
		return 0, errors.ProxyAuthRequired("proxy:3128")
	})
	if !errors.HasCode(err, errors.ErrCodeProxyAuthRequired) {
		t.Errorf("unexpected error %v", err)
	}
	if calls != 1 {
		t.Errorf("expected a single attempt, got %d", calls)
	}
}

func TestRetry_ReturnsLastErrorWhenExhausted(t *testing.T) {
	calls := 0
	var retries []int
	cfg := fastRetry(3)
	cfg.RetryIf = func(error) bool { return true }
	cfg.OnRetry = func(attempt int, err error, backoff time.Duration) { retries = append(retries, attempt) }

	_, err := Retry(context.Background(), cfg, func() (int, error) {
		calls++
		return 0, fmt.Errorf("attempt %d", calls)
	})
	if err == nil || err.Error() != "attempt 3" {
		t.Errorf("expected last error, got %v", err)
	}
	if len(retries) != 2 || retries[0] != 1 || retries[1] != 2 {
		t.Errorf("unexpected OnRetry attempts %v", retries)
	}
}

func TestRetry_RespectsContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cfg := RetryConfig{MaxAttempts: 5, InitialBackoff: time.Second, RetryIf: func(error) bool { return true }}

	calls := 0
	_, err := Retry(ctx, cfg, func() (int, error) {
		calls++
		cancel()
		return 0, stderrors.New("fail")
	})
	if !stderrors.Is(err, context.Canceled) {
		t.Errorf("expected context.Canceled, got %v", err)
	}
	if calls != 1 {
		t.Errorf("expected 1 call, got %d", calls)
	}
}

type timeoutErr struct{}

func (timeoutErr) Error() string   { return "i/o timeout" }
func (timeoutErr) Timeout() bool   { return true }
func (timeoutErr) Temporary() bool { return true }

func TestIsTransient(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want bool
	}{
		{"nil", nil, false},
		{"canceled", context.Canceled, false},
		{"plain", stderrors.New("nope"), false},
		{"timeout app error", errors.Timeout("dial", nil), true},
		{"config app error", errors.InvalidConfig("k", "v", "bad"), false},
		{"net timeout", fmt.Errorf("dial: %w", timeoutErr{}), true},
		{"bulkhead full", ErrBulkheadFull, true},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if got := IsTransient(tc.err); got != tc.want {
				t.Errorf("IsTransient(%v) = %v, want %v", tc.err, got, tc.want)
			}
		})
	}
}

func TestBackoffIsCapped(t *testing.T) {
	cfg := RetryConfig{InitialBackoff: 100 * time.Millisecond, MaxBackoff: 300 * time.Millisecond, BackoffFactor: 2}.withDefaults()
	want := []time.Duration{100 * time.Millisecond, 200 * time.Millisecond, 300 * time.Millisecond, 300 * time.Millisecond}
	for i, w := range want {
		if got := cfg.backoff(i + 1); got != w {
			t.Errorf("backoff(%d) = %v, want %v", i+1, got, w)
		}
	}
}
