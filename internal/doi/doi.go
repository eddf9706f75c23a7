// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package doi finds DOIs in citation text and confirms them against the
// doi.org resolver.
package doi

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"regexp"
	"strings"
	"time"

	"github.com/pdiddy/refcheck/internal/cache"
	"github.com/pdiddy/refcheck/internal/httputil"
)

// resolverBase is the DOI resolver root. Declared as a var so tests can
// substitute an httptest server.
var resolverBase = "https://doi.org/"

// doiPattern matches a DOI anywhere in free text: "10.1145/1234567.1234568".
var doiPattern = regexp.MustCompile(`(?i)10\.\d{4,9}/[-._;()/:A-Z0-9]+`)

// ErrUnresolved is returned when the resolver does not answer 200.
var ErrUnresolved = errors.New("doi did not resolve")

// Find returns the first DOI in text.
func Find(text string) (string, bool) {
	m := doiPattern.FindString(text)
	return m, m != ""
}

// Resolution is a confirmed DOI and the landing page it redirected to.
type Resolution struct {
	DOI string `json:"doi"`
	URL string `json:"url"`
}

// Resolver confirms DOIs with a HEAD request that follows redirects.
type Resolver struct {
	client *httputil.Client
	cache  cache.Cache
	ttl    time.Duration
}

// NewResolver returns a Resolver. A nil cache disables memoization.
func NewResolver(client *httputil.Client, c cache.Cache, ttl time.Duration) *Resolver {
	if c == nil {
		c = cache.Nop{}
	}
	return &Resolver{client: client, cache: c, ttl: ttl}
}

// cachedResult is the memoized outcome of one resolution. Only definite
// answers are stored; network errors and 5xx are retried next time.
type cachedResult struct {
	Status int    `json:"status"`
	URL    string `json:"url"`
}

// Resolve confirms doi. It returns ErrUnresolved (wrapped with the status)
// when the resolver answers anything but 200, and the transport error when
// the request fails.
func (r *Resolver) Resolve(ctx context.Context, doi string) (Resolution, error) {
	key := cache.Key("doi", doi)
	if data, ok, _ := r.cache.Get(ctx, key); ok {
		var cr cachedResult
		if json.Unmarshal(data, &cr) == nil {
			return toResolution(doi, cr)
		}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodHead, resolverBase+doi, nil)
	if err != nil {
		return Resolution{}, fmt.Errorf("building DOI request: %w", err)
	}

	resp, err := r.client.Do(ctx, req)
	if err != nil {
		return Resolution{}, fmt.Errorf("resolving %s: %w", doi, err)
	}
	io.Copy(io.Discard, resp.Body)
	resp.Body.Close()

	cr := cachedResult{Status: resp.StatusCode}
	if resp.Request != nil && resp.Request.URL != nil {
		cr.URL = resp.Request.URL.String()
	}
	if cr.Status == http.StatusOK || (cr.Status >= 400 && cr.Status < 500 && cr.Status != http.StatusTooManyRequests) {
		if data, err := json.Marshal(cr); err == nil {
			r.cache.Set(ctx, key, data, r.ttl)
		}
	}
	return toResolution(doi, cr)
}

func toResolution(doi string, cr cachedResult) (Resolution, error) {
	if cr.Status != http.StatusOK {
		return Resolution{}, fmt.Errorf("%w: %s returned HTTP %d", ErrUnresolved, doi, cr.Status)
	}
	return Resolution{DOI: doi, URL: cr.URL}, nil
}

// Normalize strips resolver prefixes ("https://doi.org/", "doi:") from a
// DOI as returned by search providers.
func Normalize(s string) string {
	s = strings.TrimSpace(s)
	for _, prefix := range []string{"https://doi.org/", "http://doi.org/", "https://dx.doi.org/", "http://dx.doi.org/", "doi:"} {
		if len(s) >= len(prefix) && strings.EqualFold(s[:len(prefix)], prefix) {
			return s[len(prefix):]
		}
	}
	return s
}
