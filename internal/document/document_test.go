// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package document

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pdiddy/refcheck/pkg/types"
)

// buildPDF writes a minimal PDF with one Helvetica text line per entry
// of each page.
func buildPDF(pages ...[]string) []byte {
	var buf bytes.Buffer
	var offsets []int
	obj := func(body string) {
		offsets = append(offsets, buf.Len())
		fmt.Fprintf(&buf, "%d 0 obj\n%s\nendobj\n", len(offsets), body)
	}

	buf.WriteString("%PDF-1.4\n")
	kids := make([]string, len(pages))
	for i := range pages {
		kids[i] = fmt.Sprintf("%d 0 R", 4+2*i)
	}
	obj("<< /Type /Catalog /Pages 2 0 R >>")
	obj(fmt.Sprintf("<< /Type /Pages /Kids [%s] /Count %d >>", strings.Join(kids, " "), len(pages)))
	obj("<< /Type /Font /Subtype /Type1 /BaseFont /Helvetica /Encoding /WinAnsiEncoding >>")

	esc := strings.NewReplacer(`\`, `\\`, `(`, `\(`, `)`, `\)`)
	for i, lines := range pages {
		var content strings.Builder
		y := 720
		for _, line := range lines {
			fmt.Fprintf(&content, "BT /F1 12 Tf 72 %d Td (%s) Tj ET\n", y, esc.Replace(line))
			y -= 14
		}
		obj(fmt.Sprintf("<< /Type /Page /Parent 2 0 R /MediaBox [0 0 612 792] /Resources << /Font << /F1 3 0 R >> >> /Contents %d 0 R >>", 5+2*i))
		obj(fmt.Sprintf("<< /Length %d >>\nstream\n%sendstream", content.Len(), content.String()))
	}

	xref := buf.Len()
	fmt.Fprintf(&buf, "xref\n0 %d\n0000000000 65535 f \n", len(offsets)+1)
	for _, off := range offsets {
		fmt.Fprintf(&buf, "%010d 00000 n \n", off)
	}
	fmt.Fprintf(&buf, "trailer\n<< /Size %d /Root 1 0 R >>\nstartxref\n%d\n%%%%EOF\n", len(offsets)+1, xref)
	return buf.Bytes()
}

// --- Document ---

func TestDocument(t *testing.T) {
	assert.Equal(t, "", Document{}.FirstPage())
	assert.Equal(t, "", Document{}.FullText())

	d := Document{Pages: []string{"one", "two"}}
	assert.Equal(t, "one", d.FirstPage())
	assert.Equal(t, "one\ntwo", d.FullText())
}

// --- PDFExtractor ---

func TestPDFExtractor(t *testing.T) {
	data := buildPDF(
		[]string{"A Study of Things", "Jane Doe, Example University"},
		[]string{"References", "[1] A. Author, Title One (2020)."},
	)

	doc, err := PDFExtractor{}.Extract(context.Background(), data)
	require.NoError(t, err)
	require.Len(t, doc.Pages, 2)
	assert.Contains(t, doc.FirstPage(), "A Study of Things")
	assert.Contains(t, doc.FirstPage(), "Jane Doe, Example University")
	assert.Contains(t, doc.Pages[1], "[1] A. Author, Title One (2020).")
	assert.Contains(t, doc.FullText(), "References")
}

func TestPDFExtractor_NotAPDF(t *testing.T) {
	tests := []struct {
		name string
		data []byte
	}{
		{name: "empty", data: nil},
		{name: "text", data: []byte("this is plainly not a pdf document at all, just some words")},
		{name: "truncated", data: buildPDF([]string{"x"})[:60]},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := PDFExtractor{}.Extract(context.Background(), tt.data)
			assert.ErrorIs(t, err, ErrRead)
		})
	}
}

func TestPDFExtractor_Cancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := PDFExtractor{}.Extract(ctx, buildPDF([]string{"x"}))
	assert.ErrorIs(t, err, context.Canceled)
}

// --- MarkitdownExtractor ---

type fakeRuntime struct {
	missing bool
	output  string
	err     error
	image   string
}

func (f *fakeRuntime) Name() string                   { return "docker" }
func (f *fakeRuntime) Available(context.Context) bool { return true }
func (f *fakeRuntime) ImageExists(_ context.Context, image string) error {
	if f.missing {
		return errors.New("no such image: " + image)
	}
	return nil
}
func (f *fakeRuntime) Run(_ context.Context, image string, stdin io.Reader, stdout io.Writer) error {
	f.image = image
	io.Copy(io.Discard, stdin)
	if f.err != nil {
		return f.err
	}
	_, err := io.WriteString(stdout, f.output)
	return err
}

func TestMarkitdownExtractor(t *testing.T) {
	rt := &fakeRuntime{output: "# Title\nfirst page\fReferences\n[1] x"}
	m, err := NewMarkitdownExtractor(context.Background(), rt, "markitdown:test")
	require.NoError(t, err)

	doc, err := m.Extract(context.Background(), []byte("%PDF"))
	require.NoError(t, err)
	assert.Equal(t, "markitdown:test", rt.image)
	assert.Equal(t, []string{"# Title\nfirst page", "References\n[1] x"}, doc.Pages)
}

func TestMarkitdownExtractor_Errors(t *testing.T) {
	_, err := NewMarkitdownExtractor(context.Background(), &fakeRuntime{missing: true}, "markitdown:latest")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "markitdown image not available in docker")

	m, err := NewMarkitdownExtractor(context.Background(), &fakeRuntime{output: "  \n"}, "markitdown:latest")
	require.NoError(t, err)
	_, err = m.Extract(context.Background(), nil)
	assert.ErrorIs(t, err, ErrRead)

	m, err = NewMarkitdownExtractor(context.Background(), &fakeRuntime{err: errors.New("exit status 1")}, "markitdown:latest")
	require.NoError(t, err)
	_, err = m.Extract(context.Background(), nil)
	assert.ErrorIs(t, err, ErrRead)
}

// --- New ---

func TestNew(t *testing.T) {
	ex, err := New(context.Background(), types.DocumentConfig{Backend: types.ExtractorNative})
	require.NoError(t, err)
	assert.IsType(t, PDFExtractor{}, ex)

	_, err = New(context.Background(), types.DocumentConfig{Backend: "ocr"})
	assert.Error(t, err)
}
