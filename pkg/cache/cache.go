// Package cache memoizes form compilation. Entries are keyed by the stable
// definition hash plus the compiler locale, so any change to a definition
// yields a new key and stale entries are never served.
package cache

import (
	"context"
	"errors"
	"time"
)

// Store is a byte-oriented cache backend.
type Store interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
	Delete(ctx context.Context, key string) error
	Clear(ctx context.Context) error
}

// Config holds settings shared by the stores.
type Config struct {
	// DefaultTTL applies when Set receives a zero ttl. Zero means no expiry.
	DefaultTTL time.Duration
	// Prefix is prepended to every key.
	Prefix string
}

// DefaultConfig returns the default store configuration.
func DefaultConfig() Config {
	return Config{
		DefaultTTL: 10 * time.Minute,
		Prefix:     "formdef:",
	}
}

// ErrMiss is returned by Get when the key is absent or expired.
var ErrMiss = errors.New("cache: miss")

// IsMiss reports whether err is a cache miss.
func IsMiss(err error) bool {
	return errors.Is(err, ErrMiss)
}
