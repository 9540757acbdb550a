package retry

import (
	"context"
	"math"
	"time"

	"github.com/mizuchi-dev/cellar/runtime/urandom"
)

type Retry struct {
	options Options
	attempt int
}

type Options struct {
	BackoffMultiplier  float64
	BackoffMinDuration time.Duration
	BackoffMaxDuration time.Duration // 0 means uncapped
}

var defaultOptions = Options{
	BackoffMultiplier:  1.3,
	BackoffMinDuration: 10 * time.Millisecond,
	BackoffMaxDuration: 30 * time.Second,
}

func Begin() *Retry {
	return BeginWithOptions(defaultOptions)
}

func BeginWithOptions(opts Options) *Retry {
	return &Retry{options: opts}
}

// Continue sleeps a jittered backoff for the current attempt and reports
// whether ctx is still live. The first call does not sleep.
func (r *Retry) Continue(ctx context.Context) bool {
	if r.attempt != 0 {
		randomized(ctx, backoffDelay(r.attempt, r.options))
	}
	r.attempt++

	return ctx.Err() == nil
}

func (r *Retry) Reset() {
	r.attempt = 0
}

func backoffDelay(i int, opts Options) time.Duration {
	mult := math.Pow(opts.BackoffMultiplier, float64(i))
	d := time.Duration(float64(opts.BackoffMinDuration) * mult)
	if opts.BackoffMaxDuration > 0 && d > opts.BackoffMaxDuration {
		d = opts.BackoffMaxDuration
	}
	return d
}

func randomized(ctx context.Context, d time.Duration) {
	const jitter = 0.4
	mult := 1 - jitter*urandom.Float64() // up to 40% early
	sleep(ctx, time.Duration(float64(d)*mult))
}

func sleep(ctx context.Context, d time.Duration) {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return
	case <-t.C:
	}
}
