// Package storage defines the key-value store the session and user records live in.
package storage

import "context"

// Store is a string key-value store. Get reports ok=false for a missing key.
// Implementations must be safe for concurrent use.
type Store interface {
	Get(ctx context.Context, key string) (string, bool, error)
	Set(ctx context.Context, key, value string) error
	Remove(ctx context.Context, key string) error
}

type prefixed struct {
	s      Store
	prefix string
}

// WithPrefix scopes s to keys starting with prefix.
func WithPrefix(s Store, prefix string) Store {
	return &prefixed{
		s:      s,
		prefix: prefix,
	}
}

func (p *prefixed) Get(ctx context.Context, key string) (string, bool, error) {
	return p.s.Get(ctx, p.prefix+key)
}

func (p *prefixed) Set(ctx context.Context, key, value string) error {
	return p.s.Set(ctx, p.prefix+key, value)
}

func (p *prefixed) Remove(ctx context.Context, key string) error {
	return p.s.Remove(ctx, p.prefix+key)
}
