package retry

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math/rand/v2"
	"time"
)

// ErrExhausted is wrapped into the error returned once MaxAttempts is used up.
var ErrExhausted = errors.New("retry attempts exhausted")

// Sleeper pauses for d or until ctx is done.
type Sleeper func(ctx context.Context, d time.Duration) error

// Policy describes how a failing remote call is retried.
type Policy struct {
	// MaxAttempts counts the first call; zero or less retries forever.
	MaxAttempts int
	// Backoff is the fixed cooldown between attempts.
	Backoff time.Duration
	// Jitter adds a random extra wait in [0, Jitter).
	Jitter time.Duration
	// Exponential doubles the cooldown after every failed attempt, up to
	// MaxBackoff when that is set.
	Exponential bool
	MaxBackoff  time.Duration
	// Sleep defaults to Sleep when nil.
	Sleep Sleeper
}

// Unbounded retries forever with a fixed cooldown.
func Unbounded(backoff time.Duration) Policy {
	return Policy{Backoff: backoff}
}

// Once makes one retry after backoff before giving up.
func Once(backoff time.Duration) Policy {
	return Policy{MaxAttempts: 2, Backoff: backoff}
}

// Do runs fn until it succeeds, the policy gives up or ctx is canceled.
func (p Policy) Do(ctx context.Context, log *slog.Logger, name string, fn func(ctx context.Context) error) error {
	for attempt := 1; ; attempt++ {
		err := fn(ctx)
		if err == nil {
			return nil
		}
		if ctxErr := ctx.Err(); ctxErr != nil {
			return ctxErr
		}
		if p.MaxAttempts > 0 && attempt >= p.MaxAttempts {
			return fmt.Errorf("%s: %w after %d attempts: %w", name, ErrExhausted, attempt, err)
		}

		wait := p.wait(attempt)
		if log != nil {
			log.Warn(name+" failed, retrying",
				slog.Any("err", err),
				slog.Int("attempt", attempt),
				slog.Int("max_attempts", p.MaxAttempts),
				slog.Duration("retry_in", wait),
			)
		}
		if err := p.sleeper()(ctx, wait); err != nil {
			return err
		}
	}
}

// Pause sleeps with the policy's sleeper; callers use it for fixed pacing.
func (p Policy) Pause(ctx context.Context, d time.Duration) error {
	return p.sleeper()(ctx, d)
}

func (p Policy) wait(attempt int) time.Duration {
	wait := p.Backoff
	if p.Exponential {
		for i := 1; i < attempt; i++ {
			wait *= 2
			if p.MaxBackoff > 0 && wait >= p.MaxBackoff {
				wait = p.MaxBackoff
				break
			}
		}
	}
	if p.Jitter > 0 {
		wait += time.Duration(rand.Int64N(int64(p.Jitter)))
	}
	return wait
}

func (p Policy) sleeper() Sleeper {
	if p.Sleep != nil {
		return p.Sleep
	}
	return Sleep
}

// Sleep is the default Sleeper.
func Sleep(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	select {
	case <-time.After(d):
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// NoSleep records requested waits without blocking. Tests use it.
type NoSleep struct {
	Waits []time.Duration
}

// Sleep implements Sleeper.
func (n *NoSleep) Sleep(ctx context.Context, d time.Duration) error {
	n.Waits = append(n.Waits, d)
	return ctx.Err()
}
