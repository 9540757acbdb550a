package cellar

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/mizuchi-dev/cellar/internal/cond"
	"github.com/mizuchi-dev/cellar/internal/errgroup"
	"github.com/mizuchi-dev/cellar/runtime/retry"
)

// Binding ties a cell to a source key. The cell itself has no locking, so
// the binding owns it and serializes every store and read.
type Binding[T any] struct {
	src      Source
	key      string
	decode   func([]byte) (T, error)
	wrappers []func(func() (T, error)) func() (T, error)

	mu      sync.Mutex
	changed *cond.Cond
	gen     int64
	cell    *Cell[T]
}

// Bind attaches cell to key in src. decode turns a fetched payload into a
// value of the cell's type. The binding becomes the cell's sole owner;
// bypassing it breaks the serialization the cell requires.
func Bind[T any](cell *Cell[T], src Source, key string, decode func([]byte) (T, error)) *Binding[T] {
	b := &Binding[T]{src: src, key: key, decode: decode, cell: cell}
	b.changed = cond.NewCond(&b.mu)
	return b
}

// Wrap installs a decorator applied to every computation the binding feeds
// to its cell. Decorators compose in installation order, the first one
// innermost; tracing and journal observation plug in here.
func (b *Binding[T]) Wrap(w func(func() (T, error)) func() (T, error)) *Binding[T] {
	b.wrappers = append(b.wrappers, w)
	return b
}

// Refresh fetches the key once and stores the outcome in the cell. A fetch
// or decode failure lands in the cell, sticky until the next successful
// refresh, and is also returned.
func (b *Binding[T]) Refresh(ctx context.Context) error {
	data, err := b.src.Fetch(ctx, b.key)
	if err != nil {
		return b.store(func() (T, error) {
			var zero T
			return zero, err
		})
	}
	return b.apply(data)
}

func (b *Binding[T]) apply(data []byte) error {
	return b.store(func() (T, error) {
		return b.decode(data)
	})
}

func (b *Binding[T]) store(compute func() (T, error)) error {
	for _, w := range b.wrappers {
		compute = w(compute)
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	b.cell.Set(compute)
	b.gen++
	b.changed.Broadcast()
	return b.cell.Result().Err()
}

// Get returns the bound cell's current outcome.
func (b *Binding[T]) Get() (T, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.cell.Get()
}

// Generation returns the number of stores performed so far.
func (b *Binding[T]) Generation() int64 {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.gen
}

// Await blocks until the binding's generation exceeds gen or ctx is done.
func (b *Binding[T]) Await(ctx context.Context, gen int64) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	for b.gen <= gen {
		if err := b.changed.Wait(ctx); err != nil {
			return err
		}
	}
	return nil
}

// Key returns the source key the binding refreshes from.
func (b *Binding[T]) Key() string {
	return b.key
}

// Refresher keeps a set of bindings fresh: bindings on watch-capable
// sources are streamed, the rest are polled on a fixed interval. Failed
// watches are re-established with jittered backoff.
type Refresher struct {
	Logger   *slog.Logger
	Interval time.Duration // poll interval for non-watch sources
	Limit    int           // max concurrent refresh loops, 0 means unbounded
}

type refreshable interface {
	Refresh(ctx context.Context) error
	run(ctx context.Context, r *Refresher) error
}

// Run drives all bindings until ctx is done.
func (r *Refresher) Run(ctx context.Context, bindings ...refreshable) error {
	g, ctx := errgroup.WithContext(ctx)
	if r.Limit > 0 {
		g.SetLimit(r.Limit)
	}
	for _, b := range bindings {
		b := b
		g.Go(func() error {
			return b.run(ctx, r)
		})
	}
	return g.Wait()
}

func (r *Refresher) logger() *slog.Logger {
	if r.Logger != nil {
		return r.Logger
	}
	return slog.Default()
}

func (r *Refresher) interval() time.Duration {
	if r.Interval > 0 {
		return r.Interval
	}
	return time.Minute
}

func (b *Binding[T]) run(ctx context.Context, r *Refresher) error {
	if ws, ok := b.src.(WatchSource); ok {
		return b.runWatch(ctx, r, ws)
	}
	return b.runPoll(ctx, r)
}

func (b *Binding[T]) runWatch(ctx context.Context, r *Refresher, ws WatchSource) error {
	for rt := retry.Begin(); rt.Continue(ctx); {
		ch, err := ws.Watch(ctx, b.key)
		if err != nil {
			r.logger().Error("watch failed", "scheme", b.src.Scheme(), "key", b.key, "err", err)
			continue
		}
		if err := b.Refresh(ctx); err != nil {
			r.logger().Warn("refresh failed", "scheme", b.src.Scheme(), "key", b.key, "err", err)
		}
	recv:
		for {
			select {
			case u, ok := <-ch:
				if !ok {
					break recv
				}
				_ = b.apply(u.Data)
				rt.Reset()
			case <-ctx.Done():
				return ctx.Err()
			}
		}
	}
	return ctx.Err()
}

func (b *Binding[T]) runPoll(ctx context.Context, r *Refresher) error {
	t := time.NewTicker(r.interval())
	defer t.Stop()
	for {
		if err := b.Refresh(ctx); err != nil && ctx.Err() == nil {
			r.logger().Warn("refresh failed", "scheme", b.src.Scheme(), "key", b.key, "err", err)
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-t.C:
		}
	}
}
