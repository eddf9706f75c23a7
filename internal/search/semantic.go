// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package search

import (
	"context"
	"fmt"
	"net/http"
	"net/url"

	"github.com/pdiddy/refcheck/internal/httputil"
)

// semanticAPIBase is the Semantic Scholar paper search endpoint. Declared
// as a var so tests can substitute an httptest server.
var semanticAPIBase = "https://api.semanticscholar.org/graph/v1/paper/search"

const semanticFields = "title,authors,year,venue,publicationVenue,externalIds"

// SemanticScholarBackend queries the Semantic Scholar academic graph.
type SemanticScholarBackend struct {
	Client *httputil.Client
	APIKey string
}

// Name returns the display label.
func (b *SemanticScholarBackend) Name() string { return "Semantic Scholar" }

// Weight returns the score a match earns.
func (b *SemanticScholarBackend) Weight() float64 { return SemanticScholarWeight }

// Lookup searches "<authors> <title>" and returns the top paper.
func (b *SemanticScholarBackend) Lookup(ctx context.Context, q Query) (*Candidate, error) {
	if q.IsEmpty() {
		return nil, fmt.Errorf("empty Semantic Scholar query")
	}

	params := url.Values{
		"query":  {q.FreeText()},
		"limit":  {"1"},
		"fields": {semanticFields},
	}

	header := http.Header{}
	if b.APIKey != "" {
		header.Set("x-api-key", b.APIKey)
	}

	var sr semanticResponse
	if err := b.Client.GetJSON(ctx, semanticAPIBase+"?"+params.Encode(), header, &sr); err != nil {
		return nil, fmt.Errorf("Semantic Scholar API request: %w", err)
	}
	if len(sr.Data) == 0 {
		return nil, nil
	}

	paper := sr.Data[0]
	c := &Candidate{
		Title: paper.Title,
		Venue: paper.Venue,
		DOI:   paper.ExternalIDs.DOI,
		Year:  paper.Year,
	}
	if c.Venue == "" && paper.PublicationVenue != nil {
		c.Venue = paper.PublicationVenue.Name
	}
	if paper.PaperID != "" {
		c.URL = "https://www.semanticscholar.org/paper/" + paper.PaperID
	}
	for _, a := range paper.Authors {
		c.Authors = append(c.Authors, a.Name)
	}
	return c, nil
}

// Semantic Scholar API JSON structures.
type semanticResponse struct {
	Total  int             `json:"total"`
	Offset int             `json:"offset"`
	Data   []semanticPaper `json:"data"`
}

type semanticPaper struct {
	PaperID          string              `json:"paperId"`
	Title            string              `json:"title"`
	Year             int                 `json:"year"`
	Venue            string              `json:"venue"`
	PublicationVenue *semanticVenue      `json:"publicationVenue"`
	Authors          []semanticAuthor    `json:"authors"`
	ExternalIDs      semanticExternalIDs `json:"externalIds"`
}

type semanticVenue struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

type semanticAuthor struct {
	AuthorID string `json:"authorId"`
	Name     string `json:"name"`
}

type semanticExternalIDs struct {
	DOI      string `json:"DOI"`
	ArXiv    string `json:"ArXiv"`
	CorpusID int    `json:"CorpusId"`
}
