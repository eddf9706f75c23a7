// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package acquire loads the document a verification run reads. A paper is
// named by a local path, an arXiv ID, a DOI, or a PDF URL; remote papers
// are downloaded into memory.
package acquire

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"

	"github.com/charmbracelet/log"

	"github.com/pdiddy/refcheck/internal/httputil"
	"github.com/pdiddy/refcheck/internal/logging"
	"github.com/pdiddy/refcheck/pkg/types"
)

// ErrTooLarge is returned when a paper exceeds the fetcher's size limit.
var ErrTooLarge = errors.New("paper exceeds size limit")

// Paper is a fetched document.
type Paper struct {
	Identifier string
	Type       IdentifierType
	// URL is where the PDF was downloaded from; empty for local files.
	URL  string
	Data []byte
}

// Fetcher resolves identifiers and reads or downloads the PDF.
type Fetcher struct {
	Client *httputil.Client
	// Email is sent to OpenAlex as mailto for polite pool access.
	Email string
	// MaxBytes caps the document size; zero means unlimited.
	MaxBytes int64
	Logger   *log.Logger
}

// NewFetcher builds a Fetcher from lookup settings.
func NewFetcher(cfg types.LookupConfig, maxBytes int64, logger *log.Logger) *Fetcher {
	return &Fetcher{
		Client:   httputil.NewClientFromConfig(cfg),
		Email:    cfg.OpenAlexEmail,
		MaxBytes: maxBytes,
		Logger:   logger,
	}
}

// Fetch returns the document named by identifier. For DOIs the open-access
// PDF listed by OpenAlex is preferred over the doi.org landing redirect.
func (f *Fetcher) Fetch(ctx context.Context, identifier string) (Paper, error) {
	logger := logging.OrDiscard(f.Logger)
	idType, normalized := Classify(identifier)
	p := Paper{Identifier: normalized, Type: idType}

	if idType == TypeFile {
		data, err := f.readFile(normalized)
		if err != nil {
			return p, err
		}
		p.Data = data
		return p, nil
	}

	p.URL = PDFURL(idType, normalized)
	if idType == TypeDOI {
		oaURL, err := f.resolveOpenAlex(ctx, normalized)
		switch {
		case err != nil:
			logger.Warn("open-access lookup failed", "doi", normalized, "err", err)
		case oaURL != "":
			p.URL = oaURL
		}
	}

	logger.Info("downloading", "type", idType, "url", p.URL)
	data, err := f.download(ctx, p.URL)
	if err != nil {
		return p, fmt.Errorf("downloading %s: %w", normalized, err)
	}
	p.Data = data
	return p, nil
}

func (f *Fetcher) readFile(path string) ([]byte, error) {
	if f.MaxBytes > 0 {
		info, err := os.Stat(path)
		if err != nil {
			return nil, fmt.Errorf("reading %s: %w", path, err)
		}
		if info.Size() > f.MaxBytes {
			return nil, fmt.Errorf("%s: %w (%d bytes)", path, ErrTooLarge, info.Size())
		}
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", path, err)
	}
	return data, nil
}

// download fetches url and returns the body. It requests a PDF via the
// Accept header; the HTTP client follows redirects.
func (f *Fetcher) download(ctx context.Context, url string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Accept", "application/pdf")

	resp, err := f.Client.Do(ctx, req)
	if err != nil {
		return nil, fmt.Errorf("HTTP request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, &httputil.StatusError{URL: url, Code: resp.StatusCode}
	}

	body := io.Reader(resp.Body)
	if f.MaxBytes > 0 {
		body = io.LimitReader(resp.Body, f.MaxBytes+1)
	}
	data, err := io.ReadAll(body)
	if err != nil {
		return nil, fmt.Errorf("reading body: %w", err)
	}
	if f.MaxBytes > 0 && int64(len(data)) > f.MaxBytes {
		return nil, ErrTooLarge
	}
	return data, nil
}
