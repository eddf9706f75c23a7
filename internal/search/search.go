// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package search looks up a single citation in bibliographic indexes and
// returns the top candidate from each. Backends are tried in a fixed order
// by the verification engine; this package only performs the lookups.
package search

import (
	"context"
	"encoding/json"
	"strings"
	"time"

	"github.com/pdiddy/refcheck/internal/cache"
	"github.com/pdiddy/refcheck/internal/httputil"
	"github.com/pdiddy/refcheck/pkg/types"
)

// Score weights committed when a backend's candidate matches.
const (
	CrossRefWeight        = 95
	SemanticScholarWeight = 90
	OpenAlexWeight        = 90
)

// Backend looks up the best match for a citation in one index.
type Backend interface {
	// Name is the display label used in the verified source string,
	// e.g. "CrossRef".
	Name() string

	// Weight is the verification score a credible match earns.
	Weight() float64

	// Lookup returns the top candidate, or nil when the index has none.
	Lookup(ctx context.Context, q Query) (*Candidate, error)
}

// Query holds the parsed fields a lookup is built from.
type Query struct {
	Title   string
	Authors []string
}

// IsEmpty reports whether the query has no title to search for.
func (q Query) IsEmpty() bool {
	return strings.TrimSpace(q.Title) == ""
}

// AuthorText joins authors with spaces.
func (q Query) AuthorText() string {
	return strings.Join(q.Authors, " ")
}

// FreeText is "<authors> <title>", the combined form used by the
// free-text indexes.
func (q Query) FreeText() string {
	return q.AuthorText() + " " + q.Title
}

// Candidate is the top record an index returned.
type Candidate struct {
	Title   string   `json:"title"`
	Venue   string   `json:"venue"`
	DOI     string   `json:"doi"`
	URL     string   `json:"url"`
	Authors []string `json:"authors,omitempty"`
	Year    int      `json:"year,omitempty"`
}

// NewBackends returns CrossRef, Semantic Scholar, and OpenAlex in lookup
// order, each with its own rate-limited client.
func NewBackends(cfg types.LookupConfig) []Backend {
	return []Backend{
		&CrossRefBackend{Client: httputil.NewClientFromConfig(cfg), Mailto: cfg.CrossRefMailto},
		&SemanticScholarBackend{Client: httputil.NewClientFromConfig(cfg), APIKey: cfg.SemanticScholarAPIKey},
		&OpenAlexBackend{Client: httputil.NewClientFromConfig(cfg), Email: cfg.OpenAlexEmail},
	}
}

// cachedBackend memoizes a Backend's answers, including "no candidate".
// Errors are never cached.
type cachedBackend struct {
	Backend
	cache cache.Cache
	ttl   time.Duration
}

// Cached wraps b so repeated queries are served from c.
func Cached(b Backend, c cache.Cache, ttl time.Duration) Backend {
	if c == nil {
		return b
	}
	return &cachedBackend{Backend: b, cache: c, ttl: ttl}
}

func (c *cachedBackend) Lookup(ctx context.Context, q Query) (*Candidate, error) {
	key := cache.Key("search:"+c.Name(), q.Title, q.AuthorText())
	if data, ok, _ := c.cache.Get(ctx, key); ok {
		var cand *Candidate
		if json.Unmarshal(data, &cand) == nil {
			return cand, nil
		}
	}

	cand, err := c.Backend.Lookup(ctx, q)
	if err != nil {
		return nil, err
	}
	if data, err := json.Marshal(cand); err == nil {
		c.cache.Set(ctx, key, data, c.ttl)
	}
	return cand, nil
}
