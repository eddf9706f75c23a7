// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package cache memoizes lookup results (DOI resolutions and search hits)
// so repeated citations across uploads do not hit external providers.
// Backends: in-process memory, a SQLite file, or Redis.
package cache

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"strings"
	"time"

	"github.com/pdiddy/refcheck/pkg/types"
)

// Cache is a byte-value store with per-entry expiry.
type Cache interface {
	// Get returns the value and true on a live hit.
	Get(ctx context.Context, key string) ([]byte, bool, error)

	// Set stores value for ttl. A zero ttl never expires.
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error

	Close() error
}

// New builds the cache selected by cfg.Backend.
func New(cfg types.CacheConfig) (Cache, error) {
	switch cfg.Backend {
	case types.CacheNone:
		return Nop{}, nil
	case types.CacheMemory, "":
		return NewMemory(cfg.MaxEntries, cfg.TTL), nil
	case types.CacheSQLite:
		return NewSQLite(cfg.Path)
	case types.CacheRedis:
		return NewRedis(context.Background(), cfg)
	default:
		return nil, fmt.Errorf("unknown cache backend %q", cfg.Backend)
	}
}

// Key derives a stable cache key from a namespace and its parts. Parts are
// normalized for case and surrounding space before hashing.
func Key(namespace string, parts ...string) string {
	h := sha256.New()
	for _, p := range parts {
		h.Write([]byte(strings.ToLower(strings.TrimSpace(p))))
		h.Write([]byte{0})
	}
	return namespace + ":" + hex.EncodeToString(h.Sum(nil))[:32]
}

// Nop never stores anything.
type Nop struct{}

func (Nop) Get(context.Context, string) ([]byte, bool, error) { return nil, false, nil }

func (Nop) Set(context.Context, string, []byte, time.Duration) error { return nil }

func (Nop) Close() error { return nil }
