package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"sync/atomic"
	"time"

	"go.uber.org/zap"

	"github.com/goliatone/go-formdef/pkg/compiler"
	"github.com/goliatone/go-formdef/pkg/model"
)

// FormCompiler is the compile step being memoized. *compiler.Compiler
// satisfies it. Fingerprint must change whenever the compiler's settings
// would change its output.
type FormCompiler interface {
	Compile(def model.FormDefinition) (*model.CompiledForm, error)
	Fingerprint() string
}

// Option configures a Compiler.
type Option func(*Compiler)

// WithTTL sets the lifetime of stored entries. Zero defers to the store.
func WithTTL(ttl time.Duration) Option {
	return func(c *Compiler) {
		c.ttl = ttl
	}
}

// WithLogger attaches a logger for store failures.
func WithLogger(logger *zap.Logger) Option {
	return func(c *Compiler) {
		if logger != nil {
			c.logger = logger
		}
	}
}

// Stats counts lookups.
type Stats struct {
	Hits   int64
	Misses int64
}

// Compiler memoizes compilation in a Store. Store failures degrade to a
// plain compile; compile errors are never stored.
type Compiler struct {
	inner  FormCompiler
	store  Store
	ttl    time.Duration
	logger *zap.Logger

	hits   atomic.Int64
	misses atomic.Int64
}

// New wraps inner with store. A nil inner uses compiler.New().
func New(inner FormCompiler, store Store, opts ...Option) *Compiler {
	if inner == nil {
		inner = compiler.New()
	}
	c := &Compiler{inner: inner, store: store, logger: zap.NewNop()}
	for _, opt := range opts {
		if opt != nil {
			opt(c)
		}
	}
	return c
}

// Key is the cache key for a definition compiled by a compiler with the
// given fingerprint.
func Key(def model.FormDefinition, fingerprint string) (string, error) {
	hash, err := compiler.Hash(def)
	if err != nil {
		return "", err
	}
	if fingerprint == "" {
		fingerprint = "_"
	}
	return "compiled:" + hash + ":" + fingerprint, nil
}

// Compile returns the memoized compiled form for def.
func (c *Compiler) Compile(ctx context.Context, def model.FormDefinition) (*model.CompiledForm, error) {
	if c.store == nil {
		return c.inner.Compile(def)
	}
	key, err := Key(def, c.inner.Fingerprint())
	if err != nil {
		return nil, err
	}

	if raw, err := c.store.Get(ctx, key); err == nil {
		var form model.CompiledForm
		if err := json.Unmarshal(raw, &form); err == nil {
			c.hits.Add(1)
			return &form, nil
		}
		c.logger.Warn("discarding undecodable cache entry", zap.String("key", key))
	} else if !IsMiss(err) {
		c.logger.Warn("cache lookup failed", zap.String("key", key), zap.Error(err))
	}
	c.misses.Add(1)

	form, err := c.inner.Compile(def)
	if err != nil {
		return nil, err
	}

	raw, err := json.Marshal(form)
	if err != nil {
		return nil, fmt.Errorf("cache: encode compiled form: %w", err)
	}
	if err := c.store.Set(ctx, key, raw, c.ttl); err != nil {
		c.logger.Warn("cache store failed", zap.String("key", key), zap.Error(err))
	}
	return form, nil
}

// Invalidate drops the entry for def.
func (c *Compiler) Invalidate(ctx context.Context, def model.FormDefinition) error {
	if c.store == nil {
		return nil
	}
	key, err := Key(def, c.inner.Fingerprint())
	if err != nil {
		return err
	}
	return c.store.Delete(ctx, key)
}

// Stats returns the lookup counters.
func (c *Compiler) Stats() Stats {
	return Stats{Hits: c.hits.Load(), Misses: c.misses.Load()}
}
