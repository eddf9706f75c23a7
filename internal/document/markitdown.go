// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package document

import (
	"bytes"
	"context"
	"fmt"
	"strings"

	"github.com/pdiddy/refcheck/internal/container"
)

// MarkitdownExtractor converts PDFs by piping them through the markitdown
// container image. Markitdown separates pages with form feeds when it
// keeps them; otherwise the whole output is one page.
type MarkitdownExtractor struct {
	runtime container.Runtime
	image   string
}

// NewMarkitdownExtractor checks that image exists in rt.
func NewMarkitdownExtractor(ctx context.Context, rt container.Runtime, image string) (*MarkitdownExtractor, error) {
	if err := rt.ImageExists(ctx, image); err != nil {
		return nil, fmt.Errorf("markitdown image not available in %s: %w", rt.Name(), err)
	}
	return &MarkitdownExtractor{runtime: rt, image: image}, nil
}

// Extract runs the container over data.
func (m *MarkitdownExtractor) Extract(ctx context.Context, data []byte) (Document, error) {
	var out bytes.Buffer
	if err := m.runtime.Run(ctx, m.image, bytes.NewReader(data), &out); err != nil {
		if ctx.Err() != nil {
			return Document{}, ctx.Err()
		}
		return Document{}, fmt.Errorf("%w: %v", ErrRead, err)
	}
	if strings.TrimSpace(out.String()) == "" {
		return Document{}, fmt.Errorf("%w: markitdown produced empty output", ErrRead)
	}
	return Document{Pages: strings.Split(out.String(), "\f")}, nil
}
