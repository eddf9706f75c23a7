// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package search

import (
	"context"
	"fmt"
	"net/url"
	"strings"

	"github.com/pdiddy/refcheck/internal/httputil"
)

// crossRefAPIBase is the CrossRef works endpoint. Declared as a var so
// tests can substitute an httptest server.
var crossRefAPIBase = "https://api.crossref.org/works"

// CrossRefBackend queries the CrossRef bibliographic index.
type CrossRefBackend struct {
	Client *httputil.Client
	// Mailto is sent as the mailto parameter for polite pool access.
	Mailto string
}

// Name returns the display label.
func (b *CrossRefBackend) Name() string { return "CrossRef" }

// Weight returns the score a match earns.
func (b *CrossRefBackend) Weight() float64 { return CrossRefWeight }

// Lookup searches by bibliographic title and author and returns the top item.
func (b *CrossRefBackend) Lookup(ctx context.Context, q Query) (*Candidate, error) {
	if q.IsEmpty() {
		return nil, fmt.Errorf("empty CrossRef query")
	}

	params := url.Values{
		"query.bibliographic": {q.Title},
		"rows":                {"1"},
	}
	if len(q.Authors) > 0 {
		params.Set("query.author", q.AuthorText())
	}
	if b.Mailto != "" {
		params.Set("mailto", b.Mailto)
	}

	var cr crossRefResponse
	if err := b.Client.GetJSON(ctx, crossRefAPIBase+"?"+params.Encode(), nil, &cr); err != nil {
		return nil, fmt.Errorf("CrossRef API request: %w", err)
	}
	if len(cr.Message.Items) == 0 {
		return nil, nil
	}

	item := cr.Message.Items[0]
	c := &Candidate{
		Venue: strings.Join(item.ContainerTitle, ", "),
		DOI:   item.DOI,
		URL:   item.URL,
	}
	if len(item.Title) > 0 {
		c.Title = item.Title[0]
	}
	for _, a := range item.Author {
		name := strings.TrimSpace(a.Given + " " + a.Family)
		if name == "" {
			name = a.Name
		}
		if name != "" {
			c.Authors = append(c.Authors, name)
		}
	}
	if len(item.Issued.DateParts) > 0 && len(item.Issued.DateParts[0]) > 0 {
		c.Year = item.Issued.DateParts[0][0]
	}
	return c, nil
}

// CrossRef API JSON structures.
type crossRefResponse struct {
	Status  string          `json:"status"`
	Message crossRefMessage `json:"message"`
}

type crossRefMessage struct {
	TotalResults int            `json:"total-results"`
	Items        []crossRefItem `json:"items"`
}

type crossRefItem struct {
	DOI            string           `json:"DOI"`
	URL            string           `json:"URL"`
	Title          []string         `json:"title"`
	ContainerTitle []string         `json:"container-title"`
	Author         []crossRefAuthor `json:"author"`
	Issued         crossRefDate     `json:"issued"`
}

type crossRefAuthor struct {
	Given  string `json:"given"`
	Family string `json:"family"`
	Name   string `json:"name"`
}

type crossRefDate struct {
	DateParts [][]int `json:"date-parts"`
}
