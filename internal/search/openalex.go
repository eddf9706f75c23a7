// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package search

import (
	"context"
	"fmt"
	"net/url"

	"github.com/pdiddy/refcheck/internal/doi"
	"github.com/pdiddy/refcheck/internal/httputil"
)

// openAlexSearchBase is the OpenAlex Works search endpoint. Declared as a
// var so tests can substitute an httptest server.
var openAlexSearchBase = "https://api.openalex.org/works"

// OpenAlexBackend queries the OpenAlex index.
type OpenAlexBackend struct {
	Client *httputil.Client
	// Email is sent as mailto parameter for polite pool access.
	Email string
}

// Name returns the display label.
func (b *OpenAlexBackend) Name() string { return "OpenAlex" }

// Weight returns the score a match earns.
func (b *OpenAlexBackend) Weight() float64 { return OpenAlexWeight }

// Lookup searches "<authors> <title>" and returns the top work.
func (b *OpenAlexBackend) Lookup(ctx context.Context, q Query) (*Candidate, error) {
	if q.IsEmpty() {
		return nil, fmt.Errorf("empty OpenAlex query")
	}

	params := url.Values{
		"search":   {q.FreeText()},
		"per_page": {"1"},
	}
	if b.Email != "" {
		params.Set("mailto", b.Email)
	}

	var oar openAlexResponse
	if err := b.Client.GetJSON(ctx, openAlexSearchBase+"?"+params.Encode(), nil, &oar); err != nil {
		return nil, fmt.Errorf("OpenAlex API request: %w", err)
	}
	if len(oar.Results) == 0 {
		return nil, nil
	}

	work := oar.Results[0]
	c := &Candidate{
		Title: work.Title,
		DOI:   doi.Normalize(work.DOI),
		Year:  work.PublicationYear,
	}
	// primary_location replaced host_venue; older payloads still carry the latter.
	switch {
	case work.PrimaryLocation != nil && work.PrimaryLocation.Source != nil:
		c.Venue = work.PrimaryLocation.Source.DisplayName
		c.URL = work.PrimaryLocation.LandingPageURL
	case work.HostVenue != nil:
		c.Venue = work.HostVenue.DisplayName
	}
	if c.URL == "" {
		c.URL = work.ID
	}
	for _, authorship := range work.Authorships {
		if authorship.Author.DisplayName != "" {
			c.Authors = append(c.Authors, authorship.Author.DisplayName)
		}
	}
	return c, nil
}

// OpenAlex API JSON structures.
type openAlexResponse struct {
	Meta    openAlexMeta   `json:"meta"`
	Results []openAlexWork `json:"results"`
}

type openAlexMeta struct {
	Count   int `json:"count"`
	PerPage int `json:"per_page"`
	Page    int `json:"page"`
}

type openAlexWork struct {
	ID              string               `json:"id"`
	Title           string               `json:"title"`
	DOI             string               `json:"doi"`
	PublicationYear int                  `json:"publication_year"`
	Authorships     []openAlexAuthorship `json:"authorships"`
	PrimaryLocation *openAlexLocation    `json:"primary_location"`
	HostVenue       *openAlexSource      `json:"host_venue"`
}

type openAlexLocation struct {
	LandingPageURL string          `json:"landing_page_url"`
	Source         *openAlexSource `json:"source"`
}

type openAlexSource struct {
	ID          string `json:"id"`
	DisplayName string `json:"display_name"`
}

type openAlexAuthorship struct {
	Author openAlexAuthor `json:"author"`
}

type openAlexAuthor struct {
	ID          string `json:"id"`
	DisplayName string `json:"display_name"`
}
