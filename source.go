package cellar

import "context"

// Source supplies encoded cell payloads by key.
type Source interface {
	Fetch(ctx context.Context, key string) ([]byte, error)
	Scheme() string
}

// Update carries a new payload for a watched key.
type Update struct {
	Key  string
	Data []byte
}

// WatchSource is a Source that can additionally stream payload changes.
// The update channel is closed when ctx is done or the watch fails.
type WatchSource interface {
	Source
	Watch(ctx context.Context, key string) (<-chan Update, error)
}
