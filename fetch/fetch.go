// Package fetch retrieves capture artifacts over HTTP with bounded,
// context-aware retries. All fetching happens before reconciliation
// starts; pipeline stages never touch the network.
package fetch

import (
	"context"
	"errors"
	"fmt"
	"io"
	"math"
	"math/rand"
	"net"
	"time"
)

// Class partitions errors by how the retry loop should treat them.
type Class int

const (
	// ClassFatal errors will not improve on another attempt.
	ClassFatal Class = iota
	// ClassTransient errors are worth another attempt.
	ClassTransient
	// ClassCanceled errors mean a context ended the attempt.
	ClassCanceled
)

// String returns the class name for logs.
func (c Class) String() string {
	switch c {
	case ClassTransient:
		return "transient"
	case ClassCanceled:
		return "canceled"
	default:
		return "fatal"
	}
}

// Policy bounds the retry loop.
type Policy struct {
	// MaxAttempts is the total number of tries including the first.
	MaxAttempts int

	// BaseDelay is the wait after the first failed attempt.
	BaseDelay time.Duration

	// MaxDelay caps the wait between attempts, hints included.
	MaxDelay time.Duration

	// Multiplier grows the wait after each failure.
	Multiplier float64

	// Jitter is the fraction of the wait randomized away, in [0, 1].
	Jitter float64
}

// DefaultPolicy returns the policy used for artifact hosts.
func DefaultPolicy() Policy {
	return Policy{
		MaxAttempts: 3,
		BaseDelay:   500 * time.Millisecond,
		MaxDelay:    15 * time.Second,
		Multiplier:  2.0,
		Jitter:      0.2,
	}
}

var jitterFloat = rand.Float64

// Backoff returns the wait before the next try after the given failed
// attempt. Attempts count from 1, so Backoff(1) is BaseDelay before
// jitter.
func (p Policy) Backoff(attempt int) time.Duration {
	if attempt < 1 {
		attempt = 1
	}
	mult := p.Multiplier
	if mult < 1 {
		mult = 1
	}

	d := float64(p.BaseDelay) * math.Pow(mult, float64(attempt-1))
	if p.MaxDelay > 0 && d > float64(p.MaxDelay) {
		d = float64(p.MaxDelay)
	}

	j := p.Jitter
	if j < 0 {
		j = 0
	}
	if j > 1 {
		j = 1
	}
	if j > 0 {
		d *= 1 + j*(2*jitterFloat()-1)
	}

	if p.MaxDelay > 0 && d > float64(p.MaxDelay) {
		d = float64(p.MaxDelay)
	}
	if d < 0 {
		d = 0
	}
	return time.Duration(d)
}

// Classify buckets err for the retry loop. It relies on sentinel and
// typed errors only, never on message text.
func Classify(err error) Class {
	if err == nil {
		return ClassFatal
	}
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return ClassCanceled
	}

	var se *StatusError
	if errors.As(err, &se) {
		if se.Transient() {
			return ClassTransient
		}
		return ClassFatal
	}

	if errors.Is(err, io.ErrUnexpectedEOF) {
		return ClassTransient
	}

	var ne net.Error
	if errors.As(err, &ne) {
		return ClassTransient
	}

	return ClassFatal
}

// Do runs fn under the policy. It returns nil on the first success,
// the attempt error as soon as it classifies fatal or the run context
// ends, and the last error wrapped once attempts are exhausted.
func Do(ctx context.Context, p Policy, fn func(ctx context.Context) error) error {
	attempts := p.MaxAttempts
	if attempts < 1 {
		attempts = 1
	}

	var err error
	for attempt := 1; attempt <= attempts; attempt++ {
		if cerr := ctx.Err(); cerr != nil {
			return cerr
		}

		err = fn(ctx)
		if err == nil {
			return nil
		}
		if ctx.Err() != nil {
			return err
		}
		if Classify(err) == ClassFatal {
			return err
		}
		// A canceled class with the run context still live means the
		// attempt's own deadline fired; the next attempt gets a fresh
		// window.

		if attempt == attempts {
			break
		}

		delay := p.Backoff(attempt)
		if hint := retryAfterHint(err); hint > delay {
			delay = hint
			if p.MaxDelay > 0 && delay > p.MaxDelay {
				delay = p.MaxDelay
			}
		}
		if serr := sleepCtx(ctx, delay); serr != nil {
			return serr
		}
	}

	return fmt.Errorf("fetch: giving up after %d attempts: %w", attempts, err)
}

// retryAfterHint returns the wait an upstream asked for, or zero.
func retryAfterHint(err error) time.Duration {
	var se *StatusError
	if errors.As(err, &se) {
		return se.RetryAfter
	}
	return 0
}

func sleepCtx(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return nil
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
