// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package document turns uploaded PDF bytes into page text. The native
// extractor reads the PDF in process; the markitdown extractor pipes it
// through a conversion container.
package document

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/pdiddy/refcheck/internal/container"
	"github.com/pdiddy/refcheck/pkg/types"
)

// ErrRead reports a document that could not be read. It aborts the run.
var ErrRead = errors.New("failed to read document")

// Document is the extracted text of one upload, one entry per page.
type Document struct {
	Pages []string
}

// FirstPage returns the first page's text, or "" for an empty document.
func (d Document) FirstPage() string {
	if len(d.Pages) == 0 {
		return ""
	}
	return d.Pages[0]
}

// FullText joins all pages with newlines.
func (d Document) FullText() string {
	return strings.Join(d.Pages, "\n")
}

// Extractor reads document bytes into text.
type Extractor interface {
	Extract(ctx context.Context, data []byte) (Document, error)
}

// New returns the extractor selected by cfg. The markitdown backend needs
// a working container runtime with the image present.
func New(ctx context.Context, cfg types.DocumentConfig) (Extractor, error) {
	switch cfg.Backend {
	case types.ExtractorNative, "":
		return PDFExtractor{}, nil
	case types.ExtractorMarkitdown:
		rt, err := container.DetectRuntime(ctx)
		if err != nil {
			return nil, err
		}
		return NewMarkitdownExtractor(ctx, rt, cfg.MarkitdownImage)
	default:
		return nil, fmt.Errorf("unknown document backend %q", cfg.Backend)
	}
}
