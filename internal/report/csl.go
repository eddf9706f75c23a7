// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package report

import (
	"fmt"
	"io"
	"strings"

	"go.yaml.in/yaml/v3"

	"github.com/pdiddy/refcheck/pkg/types"
)

// CSLItem represents a bibliographic entry in CSL (Citation Style Language)
// format, consumable by Pandoc and reference managers. Note carries the
// verification outcome.
type CSLItem struct {
	ID             string    `yaml:"id"`
	Type           string    `yaml:"type"`
	Title          string    `yaml:"title"`
	Author         []CSLName `yaml:"author,omitempty"`
	ContainerTitle string    `yaml:"container-title,omitempty"`
	Issued         *CSLDate  `yaml:"issued,omitempty"`
	DOI            string    `yaml:"DOI,omitempty"`
	URL            string    `yaml:"URL,omitempty"`
	Note           string    `yaml:"note,omitempty"`
}

// CSLName represents a person's name in CSL format.
type CSLName struct {
	Family  string `yaml:"family,omitempty"`
	Given   string `yaml:"given,omitempty"`
	Literal string `yaml:"literal,omitempty"`
}

// CSLDate represents a date in CSL format using date-parts.
type CSLDate struct {
	DateParts [][]int `yaml:"date-parts"`
}

// WriteCSL writes references as a CSL-YAML list to w. References that
// failed to parse have no usable title and are skipped.
func WriteCSL(refs []types.Reference, w io.Writer) error {
	items := make([]CSLItem, 0, len(refs))
	for i, ref := range refs {
		if ref.HasParseError() || !ref.HasTitle() {
			continue
		}
		items = append(items, toCSLItem(i+1, ref))
	}
	enc := yaml.NewEncoder(w)
	defer enc.Close()
	return enc.Encode(items)
}

func toCSLItem(n int, ref types.Reference) CSLItem {
	item := CSLItem{
		ID:    fmt.Sprintf("ref-%d", n),
		Type:  cslType(ref),
		Title: ref.TitleText(),
		Note:  fmt.Sprintf("%s (score %.0f)", ref.Status, ref.VerificationScore),
	}
	for _, a := range ref.Authors {
		if name := parseAuthorName(a); name != (CSLName{}) {
			item.Author = append(item.Author, name)
		}
	}
	if ref.Year != nil {
		item.Issued = &CSLDate{DateParts: [][]int{{*ref.Year}}}
	}
	if ref.VerifiedDOI != nil && strings.HasPrefix(*ref.VerifiedDOI, "10.") {
		item.DOI = *ref.VerifiedDOI
	}
	if ref.SourceURL != nil {
		item.URL = *ref.SourceURL
	}

	// Once verified, Source names the verifier; the venue follows "Provider: ".
	source := ref.SourceText()
	if ref.Status.IsVerified() {
		if _, venue, ok := strings.Cut(source, ": "); ok {
			source = venue
		} else {
			source = ""
		}
	}
	item.ContainerTitle = strings.TrimSpace(source)
	return item
}

// cslType guesses the CSL item type from the citation text.
func cslType(ref types.Reference) string {
	text := strings.ToLower(ref.RawText + " " + ref.SourceText())
	switch {
	case strings.Contains(text, "arxiv"):
		return "article"
	case strings.Contains(text, "proceedings"), strings.Contains(text, "conference"):
		return "paper-conference"
	default:
		return "article-journal"
	}
}

// parseAuthorName splits a full name string into CSL family/given parts.
// "Family, Given" is honoured; otherwise the last space separates given
// from family. Single-token names use the literal field.
func parseAuthorName(name string) CSLName {
	name = strings.TrimSpace(name)
	if name == "" {
		return CSLName{}
	}
	if family, given, ok := strings.Cut(name, ", "); ok {
		return CSLName{Family: strings.TrimSpace(family), Given: strings.TrimSpace(given)}
	}
	idx := strings.LastIndex(name, " ")
	if idx < 0 {
		return CSLName{Literal: name}
	}
	return CSLName{
		Given:  name[:idx],
		Family: name[idx+1:],
	}
}
