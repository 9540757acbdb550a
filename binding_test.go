package cellar

import (
	"context"
	"strconv"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeSource is an in-memory WatchSource for tests.
type fakeSource struct {
	mu      sync.Mutex
	data    map[string][]byte
	watches []chan Update
}

func newFakeSource() *fakeSource {
	return &fakeSource{data: map[string][]byte{}}
}

func (s *fakeSource) put(key string, data []byte) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.data[key] = data
	for _, ch := range s.watches {
		ch <- Update{Key: key, Data: data}
	}
}

func (s *fakeSource) Fetch(ctx context.Context, key string) ([]byte, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	data, ok := s.data[key]
	if !ok {
		return nil, &notFoundError{key: key}
	}
	return data, nil
}

func (s *fakeSource) Watch(ctx context.Context, key string) (<-chan Update, error) {
	ch := make(chan Update, 16)
	s.mu.Lock()
	s.watches = append(s.watches, ch)
	s.mu.Unlock()
	return ch, nil
}

func (s *fakeSource) Scheme() string { return "fake" }

func decodeNum(data []byte) (int, error) {
	return strconv.Atoi(string(data))
}

func TestBindingRefresh(t *testing.T) {
	src := newFakeSource()
	src.put("k", []byte("11"))

	b := Bind(NewCell(0), src, "k", decodeNum)
	require.NoError(t, b.Refresh(context.Background()))

	v, err := b.Get()
	require.NoError(t, err)
	assert.Equal(t, 11, v)
	assert.Equal(t, int64(1), b.Generation())
	assert.Equal(t, "k", b.Key())
}

func TestBindingRefreshFailureIsSticky(t *testing.T) {
	src := newFakeSource()
	b := Bind(NewCell(5), src, "missing", decodeNum)

	require.Error(t, b.Refresh(context.Background()))

	// The failure replaced the initial value and stays on re-read.
	for i := 0; i < 2; i++ {
		_, err := b.Get()
		assert.Error(t, err)
	}

	// A later successful refresh recovers.
	src.put("missing", []byte("7"))
	require.NoError(t, b.Refresh(context.Background()))
	v, err := b.Get()
	require.NoError(t, err)
	assert.Equal(t, 7, v)
}

func TestBindingDecodeFailure(t *testing.T) {
	src := newFakeSource()
	src.put("k", []byte("not a number"))

	b := Bind(NewCell(0), src, "k", decodeNum)
	require.Error(t, b.Refresh(context.Background()))
	_, err := b.Get()
	assert.Error(t, err)
}

func TestBindingWrappersCompose(t *testing.T) {
	src := newFakeSource()
	src.put("k", []byte("1"))

	var order []string
	mark := func(name string) func(func() (int, error)) func() (int, error) {
		return func(compute func() (int, error)) func() (int, error) {
			return func() (int, error) {
				order = append(order, name)
				return compute()
			}
		}
	}

	b := Bind(NewCell(0), src, "k", decodeNum).Wrap(mark("inner")).Wrap(mark("outer"))
	require.NoError(t, b.Refresh(context.Background()))

	// Last installed wrapper runs first.
	assert.Equal(t, []string{"outer", "inner"}, order)
}

func TestBindingAwait(t *testing.T) {
	src := newFakeSource()
	src.put("k", []byte("1"))
	b := Bind(NewCell(0), src, "k", decodeNum)

	done := make(chan error, 1)
	go func() {
		done <- b.Await(context.Background(), 0)
	}()

	require.NoError(t, b.Refresh(context.Background()))

	select {
	case err := <-done:
		require.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("Await did not wake up")
	}

	// Await on a context that ends before any store returns its error.
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()
	assert.Error(t, b.Await(ctx, b.Generation()))
}

func TestRefresherWatch(t *testing.T) {
	src := newFakeSource()
	src.put("k", []byte("1"))
	b := Bind(NewCell(0), src, "k", decodeNum)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	done := make(chan error, 1)
	r := &Refresher{}
	go func() {
		done <- r.Run(ctx, b)
	}()

	// Initial refresh lands first.
	require.NoError(t, b.Await(ctx, 0))
	v, err := b.Get()
	require.NoError(t, err)
	assert.Equal(t, 1, v)

	// A watched update flows into the cell.
	gen := b.Generation()
	src.put("k", []byte("2"))
	require.NoError(t, b.Await(ctx, gen))
	v, err = b.Get()
	require.NoError(t, err)
	assert.Equal(t, 2, v)

	cancel()
	select {
	case <-done:
	case <-time.After(5 * time.Second):
		t.Fatal("Run did not stop on cancel")
	}
}
