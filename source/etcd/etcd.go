// Package etcd feeds cells from an etcd cluster: Fetch reads the current
// value of a key, Watch streams key changes as binding updates.
package etcd

import (
	"context"
	"io"
	"time"

	"github.com/patrickmn/go-cache"
	"github.com/zeebo/errs"
	clientv3 "go.etcd.io/etcd/client/v3"

	cellar "github.com/mizuchi-dev/cellar"
	"github.com/mizuchi-dev/cellar/internal/unsafex"
	"github.com/mizuchi-dev/cellar/runtime"
	"github.com/mizuchi-dev/cellar/runtime/metrics"
)

const etcdScheme = "etcd"

var (
	fetchCount  = metrics.NewCounter("cellar_etcd_fetch_count")
	fetchErrors = metrics.NewCounter("cellar_etcd_fetch_errors")
)

type Config struct {
	Endpoints    []string
	DialTimeout  time.Duration
	FetchTimeout time.Duration
	// CacheTTL memoizes fetches for the given duration to damp refresh
	// storms. 0 disables the cache.
	CacheTTL time.Duration
}

// ParseConfig reads the [source/etcd] section of a parsed deployment
// config.
func ParseConfig(sections map[string]string) (Config, error) {
	type rawConfig struct {
		Endpoints    []string `toml:"endpoints"`
		DialTimeout  string   `toml:"dial_timeout"`
		FetchTimeout string   `toml:"fetch_timeout"`
		CacheTTL     string   `toml:"cache_ttl"`
	}

	parsed := &rawConfig{}
	if err := runtime.ParseConfigSection("source/etcd", "etcd", sections, parsed); err != nil {
		return Config{}, err
	}

	cfg := Config{Endpoints: parsed.Endpoints}
	for _, d := range []struct {
		raw string
		dst *time.Duration
	}{
		{parsed.DialTimeout, &cfg.DialTimeout},
		{parsed.FetchTimeout, &cfg.FetchTimeout},
		{parsed.CacheTTL, &cfg.CacheTTL},
	} {
		if d.raw == "" {
			continue
		}
		v, err := time.ParseDuration(d.raw)
		if err != nil {
			return Config{}, errs.New("section %q: %w", "source/etcd", err)
		}
		*d.dst = v
	}

	return cfg, nil
}

// kv is the slice of the etcd client the source uses. Tests substitute a
// fake.
type kv interface {
	Get(ctx context.Context, key string, opts ...clientv3.OpOption) (*clientv3.GetResponse, error)
	Watch(ctx context.Context, key string, opts ...clientv3.OpOption) clientv3.WatchChan
}

type Source struct {
	cli          kv
	closer       io.Closer
	fetchTimeout time.Duration
	cache        *cache.Cache // nil when memoization is off
}

var _ cellar.WatchSource = (*Source)(nil)

func New(cfg Config) (*Source, error) {
	cli, err := clientv3.New(clientv3.Config{
		Endpoints:   cfg.Endpoints,
		DialTimeout: cfg.DialTimeout,
	})
	if err != nil {
		return nil, errs.Wrap(err)
	}

	s := newSource(cli, cfg)
	s.closer = cli
	return s, nil
}

func newSource(cli kv, cfg Config) *Source {
	s := &Source{cli: cli, fetchTimeout: cfg.FetchTimeout}
	if s.fetchTimeout <= 0 {
		s.fetchTimeout = 3 * time.Second
	}
	if cfg.CacheTTL > 0 {
		s.cache = cache.New(cfg.CacheTTL, cfg.CacheTTL)
	}
	return s
}

func (s *Source) Fetch(ctx context.Context, key string) ([]byte, error) {
	if s.cache != nil {
		if v, ok := s.cache.Get(key); ok {
			return v.([]byte), nil
		}
	}

	fetchCount.Inc()
	ctx, cancel := context.WithTimeout(ctx, s.fetchTimeout)
	getResponse, err := s.cli.Get(ctx, key)
	cancel()
	if err != nil {
		fetchErrors.Inc()
		return nil, errs.Wrap(err)
	}
	if len(getResponse.Kvs) == 0 {
		fetchErrors.Inc()
		return nil, errs.New("etcd: key %q not found", key)
	}

	data := getResponse.Kvs[0].Value
	if s.cache != nil {
		s.cache.Set(key, data, cache.DefaultExpiration)
	}

	return data, nil
}

func (s *Source) Watch(ctx context.Context, key string) (<-chan cellar.Update, error) {
	wch := s.cli.Watch(ctx, key)
	ch := make(chan cellar.Update)

	go func() {
		defer close(ch)
		for resp := range wch {
			if err := resp.Err(); err != nil {
				return
			}
			for _, ev := range resp.Events {
				if ev.Type != clientv3.EventTypePut {
					continue
				}
				evKey := unsafex.BytesToString(ev.Kv.Key)
				if s.cache != nil {
					s.cache.Set(evKey, ev.Kv.Value, cache.DefaultExpiration)
				}
				select {
				case ch <- cellar.Update{Key: evKey, Data: ev.Kv.Value}:
				case <-ctx.Done():
					return
				}
			}
		}
	}()

	return ch, nil
}

func (s *Source) Scheme() string {
	return etcdScheme
}

func (s *Source) Close() error {
	if s.closer == nil {
		return nil
	}
	return s.closer.Close()
}
