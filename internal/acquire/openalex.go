// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package acquire

import (
	"context"
	"fmt"
	"net/url"
)

// openAlexAPIBase is the OpenAlex works endpoint. Declared as a var so tests
// can substitute an httptest server.
var openAlexAPIBase = "https://api.openalex.org/works/"

// openAlexWork captures the fields we need from an OpenAlex work record.
type openAlexWork struct {
	BestOALocation *openAlexLocation `json:"best_oa_location"`
}

type openAlexLocation struct {
	PDFURL     string `json:"pdf_url"`
	LandingURL string `json:"landing_page_url"`
}

// resolveOpenAlex asks OpenAlex for the open-access PDF of a DOI. It
// returns an empty string when the work has no open-access PDF.
func (f *Fetcher) resolveOpenAlex(ctx context.Context, doi string) (string, error) {
	apiURL := openAlexAPIBase + "doi:" + doi
	if f.Email != "" {
		apiURL += "?mailto=" + url.QueryEscape(f.Email)
	}

	var work openAlexWork
	if err := f.Client.GetJSON(ctx, apiURL, nil, &work); err != nil {
		return "", fmt.Errorf("OpenAlex API request: %w", err)
	}
	if work.BestOALocation == nil {
		return "", nil
	}
	return work.BestOALocation.PDFURL, nil
}
