// Package valuestore keeps small pieces of per-item state between check
// cycles, such as the previous temperature reading used for trend
// computation.
package valuestore

import "context"

// Store is a key/value store of opaque, usually JSON encoded, blobs.
type Store interface {
	Get(ctx context.Context, key string) ([]byte, bool, error)
	Set(ctx context.Context, key string, data []byte) error
}

// Prefixed scopes every key of s below prefix, so several devices can share
// one backing store.
func Prefixed(s Store, prefix string) Store {
	if prefix == "" {
		return s
	}
	return &prefixed{inner: s, prefix: prefix + "/"}
}

type prefixed struct {
	inner  Store
	prefix string
}

func (p *prefixed) Get(ctx context.Context, key string) ([]byte, bool, error) {
	return p.inner.Get(ctx, p.prefix+key)
}

func (p *prefixed) Set(ctx context.Context, key string, data []byte) error {
	return p.inner.Set(ctx, p.prefix+key, data)
}
