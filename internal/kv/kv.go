// Package kv is a small JSON key-value store used for client-local
// settings, invoice drafts and revoked session ids.
package kv

import (
	"context"
	"time"
)

// Store persists JSON-serialised values by string key. A zero ttl keeps the
// value until it is overwritten or deleted. Writes are last-write-wins.
type Store interface {
	// Get decodes the value stored at key into dest. It reports false when
	// the key is absent or expired.
	Get(ctx context.Context, key string, dest any) (bool, error)
	Set(ctx context.Context, key string, value any, ttl time.Duration) error
	Delete(ctx context.Context, key string) error
}

// Key joins key segments with ':' the way the redis keys are laid out.
func Key(parts ...string) string {
	n := 0
	for _, p := range parts {
		n += len(p) + 1
	}

	b := make([]byte, 0, n)

	for i, p := range parts {
		if i > 0 {
			b = append(b, ':')
		}

		b = append(b, p...)
	}

	return string(b)
}
