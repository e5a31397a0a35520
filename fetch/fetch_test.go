package fetch

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"testing"
	"time"
)

type fakeNetError struct{ timeout bool }

func (e fakeNetError) Error() string   { return "dial tcp 127.0.0.1:80: connection refused" }
func (e fakeNetError) Timeout() bool   { return e.timeout }
func (e fakeNetError) Temporary() bool { return true }

func TestBackoffGrowth(t *testing.T) {
	orig := jitterFloat
	jitterFloat = func() float64 { return 0.5 }
	defer func() { jitterFloat = orig }()

	p := Policy{
		BaseDelay:  100 * time.Millisecond,
		MaxDelay:   time.Second,
		Multiplier: 2,
		Jitter:     0.2,
	}

	tests := []struct {
		attempt int
		want    time.Duration
	}{
		{1, 100 * time.Millisecond},
		{2, 200 * time.Millisecond},
		{3, 400 * time.Millisecond},
		{4, 800 * time.Millisecond},
		{5, time.Second},
		{9, time.Second},
		{0, 100 * time.Millisecond},
	}

	for _, tt := range tests {
		if got := p.Backoff(tt.attempt); got != tt.want {
			t.Errorf("Backoff(%d) = %v, want %v", tt.attempt, got, tt.want)
		}
	}
}

func TestBackoffJitterBounds(t *testing.T) {
	orig := jitterFloat
	defer func() { jitterFloat = orig }()

	p := Policy{
		BaseDelay:  100 * time.Millisecond,
		MaxDelay:   time.Second,
		Multiplier: 2,
		Jitter:     0.2,
	}

	jitterFloat = func() float64 { return 0 }
	if got := p.Backoff(1); got != 80*time.Millisecond {
		t.Errorf("Backoff at low jitter = %v, want 80ms", got)
	}

	jitterFloat = func() float64 { return 1 }
	if got := p.Backoff(1); got != 120*time.Millisecond {
		t.Errorf("Backoff at high jitter = %v, want 120ms", got)
	}
}

func TestClassify(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want Class
	}{
		{"nil", nil, ClassFatal},
		{"canceled", context.Canceled, ClassCanceled},
		{"deadline", context.DeadlineExceeded, ClassCanceled},
		{"wrapped cancel", fmt.Errorf("run: %w", context.Canceled), ClassCanceled},
		{"status 503", &StatusError{StatusCode: 503}, ClassTransient},
		{"status 429", &StatusError{StatusCode: 429}, ClassTransient},
		{"status 408", &StatusError{StatusCode: 408}, ClassTransient},
		{"status 404", &StatusError{StatusCode: 404}, ClassFatal},
		{"status 401", &StatusError{StatusCode: 401}, ClassFatal},
		{"wrapped status", fmt.Errorf("artifact: %w", &StatusError{StatusCode: 502}), ClassTransient},
		{"net error", fakeNetError{}, ClassTransient},
		{"net timeout", fakeNetError{timeout: true}, ClassTransient},
		{"truncated body", io.ErrUnexpectedEOF, ClassTransient},
		{"plain error", errors.New("unreadable payload"), ClassFatal},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Classify(tt.err); got != tt.want {
				t.Errorf("Classify() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestClassString(t *testing.T) {
	if ClassTransient.String() != "transient" || ClassFatal.String() != "fatal" || ClassCanceled.String() != "canceled" {
		t.Error("Class names do not match their constants")
	}
}

func TestDoFirstAttemptSucceeds(t *testing.T) {
	calls := 0
	err := Do(context.Background(), DefaultPolicy(), func(ctx context.Context) error {
		calls++
		return nil
	})
	if err != nil {
		t.Errorf("Do() error = %v", err)
	}
	if calls != 1 {
		t.Errorf("Expected 1 call, got %d", calls)
	}
}

func TestDoRetriesTransient(t *testing.T) {
	p := Policy{MaxAttempts: 4, BaseDelay: time.Millisecond, MaxDelay: 5 * time.Millisecond, Multiplier: 2}

	calls := 0
	err := Do(context.Background(), p, func(ctx context.Context) error {
		calls++
		if calls < 3 {
			return fakeNetError{}
		}
		return nil
	})
	if err != nil {
		t.Errorf("Do() error = %v", err)
	}
	if calls != 3 {
		t.Errorf("Expected 3 calls, got %d", calls)
	}
}

func TestDoStopsOnFatal(t *testing.T) {
	p := Policy{MaxAttempts: 5, BaseDelay: time.Millisecond, Multiplier: 2}

	calls := 0
	fatal := errors.New("malformed capture payload")
	err := Do(context.Background(), p, func(ctx context.Context) error {
		calls++
		return fatal
	})
	if !errors.Is(err, fatal) {
		t.Errorf("Do() error = %v, want %v", err, fatal)
	}
	if calls != 1 {
		t.Errorf("Expected 1 call, got %d", calls)
	}
}

func TestDoExhaustsAttempts(t *testing.T) {
	p := Policy{MaxAttempts: 3, BaseDelay: time.Millisecond, MaxDelay: 5 * time.Millisecond, Multiplier: 2}

	calls := 0
	err := Do(context.Background(), p, func(ctx context.Context) error {
		calls++
		return fakeNetError{timeout: true}
	})
	if err == nil {
		t.Fatal("Expected error after exhausting attempts")
	}
	if calls != 3 {
		t.Errorf("Expected 3 calls, got %d", calls)
	}

	var ne net.Error
	if !errors.As(err, &ne) {
		t.Errorf("Expected wrapped net.Error, got %v", err)
	}
}

func TestDoCanceledBeforeStart(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	calls := 0
	err := Do(ctx, DefaultPolicy(), func(ctx context.Context) error {
		calls++
		return nil
	})
	if !errors.Is(err, context.Canceled) {
		t.Errorf("Do() error = %v, want context.Canceled", err)
	}
	if calls != 0 {
		t.Errorf("Expected 0 calls, got %d", calls)
	}
}

func TestDoCanceledDuringBackoff(t *testing.T) {
	p := Policy{MaxAttempts: 3, BaseDelay: 5 * time.Second, MaxDelay: 10 * time.Second, Multiplier: 2}

	ctx, cancel := context.WithCancel(context.Background())
	time.AfterFunc(50*time.Millisecond, cancel)

	start := time.Now()
	err := Do(ctx, p, func(ctx context.Context) error {
		return fakeNetError{}
	})
	if !errors.Is(err, context.Canceled) {
		t.Errorf("Do() error = %v, want context.Canceled", err)
	}
	if elapsed := time.Since(start); elapsed > 2*time.Second {
		t.Errorf("Cancel took %v, backoff sleep was not interrupted", elapsed)
	}
}

func TestDoZeroPolicy(t *testing.T) {
	calls := 0
	err := Do(context.Background(), Policy{}, func(ctx context.Context) error {
		calls++
		return fakeNetError{}
	})
	if err == nil {
		t.Fatal("Expected error from single failed attempt")
	}
	if calls != 1 {
		t.Errorf("Expected 1 call, got %d", calls)
	}
}

func TestRetryAfterHint(t *testing.T) {
	se := &StatusError{StatusCode: 429, RetryAfter: 5 * time.Second}

	if got := retryAfterHint(se); got != 5*time.Second {
		t.Errorf("retryAfterHint() = %v, want 5s", got)
	}
	if got := retryAfterHint(fmt.Errorf("artifact: %w", se)); got != 5*time.Second {
		t.Errorf("retryAfterHint(wrapped) = %v, want 5s", got)
	}
	if got := retryAfterHint(errors.New("other")); got != 0 {
		t.Errorf("retryAfterHint(plain) = %v, want 0", got)
	}
}
