package retry

import (
	"context"
	"errors"
	"testing"
	"time"
)

func fastConfig(retries int) *Config {
	return &Config{
		MaxRetries:      retries,
		InitialInterval: time.Millisecond,
		MaxInterval:     5 * time.Millisecond,
		Multiplier:      2.0,
	}
}

func TestNew_FillsDefaults(t *testing.T) {
	r := New(&Config{JitterFactor: 3})

	if r.config.InitialInterval != 200*time.Millisecond {
		t.Errorf("InitialInterval = %v, want 200ms", r.config.InitialInterval)
	}
	if r.config.Multiplier != 2.0 {
		t.Errorf("Multiplier = %v, want 2", r.config.Multiplier)
	}
	if r.config.JitterFactor != 1 {
		t.Errorf("JitterFactor = %v, want clamped to 1", r.config.JitterFactor)
	}
}

func TestRetrier_Do_SucceedsAfterFailures(t *testing.T) {
	attempts := 0
	res := New(fastConfig(3)).Do(context.Background(), func(ctx context.Context) error {
		attempts++
		if attempts < 3 {
			return errors.New("transient")
		}
		return nil
	})

	if res.Err != nil {
		t.Fatalf("unexpected error: %v", res.Err)
	}
	if res.Attempts != 3 {
		t.Errorf("Attempts = %d, want 3", res.Attempts)
	}
}

func TestRetrier_Do_MaxRetriesExceeded(t *testing.T) {
	boom := errors.New("boom")
	res := New(fastConfig(2)).Do(context.Background(), func(ctx context.Context) error {
		return boom
	})

	if !errors.Is(res.Err, ErrMaxRetriesExceeded) {
		t.Errorf("Err = %v, want ErrMaxRetriesExceeded", res.Err)
	}
	if !errors.Is(res.LastError, boom) {
		t.Errorf("LastError = %v, want boom", res.LastError)
	}
	if res.Attempts != 3 {
		t.Errorf("Attempts = %d, want 3", res.Attempts)
	}
}

func TestRetrier_Do_PermanentStops(t *testing.T) {
	bad := errors.New("bad payload")
	attempts := 0
	res := New(fastConfig(5)).Do(context.Background(), func(ctx context.Context) error {
		attempts++
		return Permanent(bad)
	})

	if !errors.Is(res.Err, bad) {
		t.Errorf("Err = %v, want bad payload", res.Err)
	}
	if attempts != 1 {
		t.Errorf("attempts = %d, want 1", attempts)
	}
}

func TestRetrier_Do_ContextCanceled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	res := New(fastConfig(3)).Do(ctx, func(ctx context.Context) error { return nil })
	if !errors.Is(res.Err, ErrContextCanceled) {
		t.Errorf("Err = %v, want ErrContextCanceled", res.Err)
	}
}

func TestRetrier_DoWithCallback(t *testing.T) {
	var calls []int
	New(fastConfig(2)).DoWithCallback(context.Background(), func(ctx context.Context) error {
		return errors.New("fail")
	}, func(attempt int, err error, wait time.Duration) {
		calls = append(calls, attempt)
	})

	if len(calls) != 2 || calls[0] != 1 || calls[1] != 2 {
		t.Errorf("callback attempts = %v, want [1 2]", calls)
	}
}

func TestInterval_ExponentialAndCapped(t *testing.T) {
	r := New(&Config{
		InitialInterval: 10 * time.Millisecond,
		MaxInterval:     35 * time.Millisecond,
		Multiplier:      2,
	})

	want := []time.Duration{10 * time.Millisecond, 20 * time.Millisecond, 35 * time.Millisecond}
	for i, w := range want {
		if got := r.interval(i); got != w {
			t.Errorf("interval(%d) = %v, want %v", i, got, w)
		}
	}
}
