package etcd

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.etcd.io/etcd/api/v3/mvccpb"
	clientv3 "go.etcd.io/etcd/client/v3"
)

// fakeKV serves canned responses and counts Get calls.
type fakeKV struct {
	data map[string][]byte
	gets int
	wch  chan clientv3.WatchResponse
}

func (f *fakeKV) Get(ctx context.Context, key string, opts ...clientv3.OpOption) (*clientv3.GetResponse, error) {
	f.gets++
	resp := &clientv3.GetResponse{}
	if v, ok := f.data[key]; ok {
		resp.Kvs = []*mvccpb.KeyValue{{Key: []byte(key), Value: v}}
	}
	return resp, nil
}

func (f *fakeKV) Watch(ctx context.Context, key string, opts ...clientv3.OpOption) clientv3.WatchChan {
	return f.wch
}

func TestFetch(t *testing.T) {
	cli := &fakeKV{data: map[string][]byte{"/demo/limit": []byte("42")}}
	src := newSource(cli, Config{})

	data, err := src.Fetch(context.Background(), "/demo/limit")
	require.NoError(t, err)
	assert.Equal(t, []byte("42"), data)

	_, err = src.Fetch(context.Background(), "/demo/missing")
	assert.Error(t, err)

	assert.Equal(t, "etcd", src.Scheme())
}

func TestFetchMemoization(t *testing.T) {
	cli := &fakeKV{data: map[string][]byte{"k": []byte("1")}}
	src := newSource(cli, Config{CacheTTL: time.Minute})

	for i := 0; i < 3; i++ {
		data, err := src.Fetch(context.Background(), "k")
		require.NoError(t, err)
		assert.Equal(t, []byte("1"), data)
	}

	// Only the first fetch reached etcd.
	assert.Equal(t, 1, cli.gets)
}

func TestFetchNoCache(t *testing.T) {
	cli := &fakeKV{data: map[string][]byte{"k": []byte("1")}}
	src := newSource(cli, Config{})

	for i := 0; i < 3; i++ {
		_, err := src.Fetch(context.Background(), "k")
		require.NoError(t, err)
	}

	assert.Equal(t, 3, cli.gets)
}

func TestWatch(t *testing.T) {
	wch := make(chan clientv3.WatchResponse, 1)
	cli := &fakeKV{wch: wch}
	src := newSource(cli, Config{})

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	ch, err := src.Watch(ctx, "k")
	require.NoError(t, err)

	wch <- clientv3.WatchResponse{Events: []*clientv3.Event{
		{Type: clientv3.EventTypePut, Kv: &mvccpb.KeyValue{Key: []byte("k"), Value: []byte("2")}},
		{Type: clientv3.EventTypeDelete, Kv: &mvccpb.KeyValue{Key: []byte("k")}},
	}}
	close(wch)

	// Only the put comes through; the stream then closes.
	u, ok := <-ch
	require.True(t, ok)
	assert.Equal(t, "k", u.Key)
	assert.Equal(t, []byte("2"), u.Data)

	_, ok = <-ch
	assert.False(t, ok)
}

func TestParseConfig(t *testing.T) {
	sections := map[string]string{
		"source/etcd": "endpoints = [\"127.0.0.1:2379\"]\ncache_ttl = \"5s\"\nfetch_timeout = \"2s\"\n",
	}

	cfg, err := ParseConfig(sections)
	require.NoError(t, err)
	assert.Equal(t, []string{"127.0.0.1:2379"}, cfg.Endpoints)
	assert.Equal(t, 5*time.Second, cfg.CacheTTL)
	assert.Equal(t, 2*time.Second, cfg.FetchTimeout)

	// Missing section parses to the zero config.
	cfg, err = ParseConfig(map[string]string{})
	require.NoError(t, err)
	assert.Empty(t, cfg.Endpoints)

	// Bad duration fails.
	_, err = ParseConfig(map[string]string{"etcd": "cache_ttl = \"soon\"\n"})
	assert.Error(t, err)
}
