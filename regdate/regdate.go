// Package regdate resolves account registration dates through an
// embedder-supplied loader, caching answers for the life of a broadcast.
package regdate

import (
	"context"
	"fmt"
	"time"

	lru "github.com/hashicorp/golang-lru/v2"
)

// DefaultCacheSize bounds the per-broadcast cache when no explicit size is
// configured.
const DefaultCacheSize = 4096

// Loader looks up when an account was registered. ok reports whether the
// source knows the account; returning ok=false with a nil error resolves the
// author to the checker's fallback date. Implementations must be safe for
// concurrent use when shared between checkers.
type Loader interface {
	Load(ctx context.Context, author string) (date time.Time, ok bool, err error)
}

// LookupError wraps a loader failure for one author. Failed lookups are not
// cached, so the same author is retried on the next call.
type LookupError struct {
	Author string
	Err    error
}

func (e *LookupError) Error() string {
	return fmt.Sprintf("registration date lookup for %s: %v", e.Author, e.Err)
}

func (e *LookupError) Unwrap() error { return e.Err }

// Checker fronts a Loader with an LRU cache and a fallback date for accounts
// the source does not know. One Checker belongs to one detector instance.
type Checker struct {
	loader   Loader
	fallback time.Time
	cache    *lru.Cache[string, time.Time]
}

func NewChecker(loader Loader, fallback time.Time, cacheSize int) (*Checker, error) {
	if cacheSize <= 0 {
		cacheSize = DefaultCacheSize
	}
	cache, err := lru.New[string, time.Time](cacheSize)
	if err != nil {
		return nil, err
	}
	return &Checker{loader: loader, fallback: fallback, cache: cache}, nil
}

// Get returns the registration date for author. An unknown answer is
// resolved to the fallback date and cached as if it were real; a loader
// failure is returned as a LookupError without touching the cache.
func (c *Checker) Get(ctx context.Context, author string) (time.Time, error) {
	if date, ok := c.cache.Get(author); ok {
		return date, nil
	}

	date, known, err := c.loader.Load(ctx, author)
	if err != nil {
		return time.Time{}, &LookupError{Author: author, Err: err}
	}
	if !known {
		date = c.fallback
	}
	c.cache.Add(author, date)
	return date, nil
}

// SetFallback replaces the date used for future unknown lookups. Entries
// already resolved through the old fallback keep their cached value.
func (c *Checker) SetFallback(date time.Time) {
	c.fallback = date
}
