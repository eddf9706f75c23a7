// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package acquire

import (
	"net/url"
	"regexp"
	"strings"
)

// IdentifierType classifies a paper identifier.
type IdentifierType int

const (
	TypeFile IdentifierType = iota
	TypeArxiv
	TypeDOI
	TypeURL
)

func (t IdentifierType) String() string {
	switch t {
	case TypeArxiv:
		return "arxiv"
	case TypeDOI:
		return "doi"
	case TypeURL:
		return "url"
	default:
		return "file"
	}
}

// Base URLs for identifier resolution. Declared as vars so tests can
// substitute httptest servers.
var (
	arxivPDFBase = "https://arxiv.org/pdf/"
	doiBase      = "https://doi.org/"
)

// arxivPattern matches arXiv IDs: "2301.07041", "arXiv:2301.07041", "2301.07041v2".
var arxivPattern = regexp.MustCompile(`^(?i:arXiv:)?(\d{4}\.\d{4,5}(?:v\d+)?)$`)

// doiPattern matches bare or prefixed DOIs: "10.1145/1234567.1234568",
// "doi:10.1145/1234567.1234568".
var doiPattern = regexp.MustCompile(`^(?i:doi:)?(10\.\d{4,9}/\S+)$`)

// Classify determines the identifier type and returns the normalized form.
// Anything that is not an arXiv ID, a DOI, or an http(s) URL is a file path.
func Classify(identifier string) (IdentifierType, string) {
	identifier = strings.TrimSpace(identifier)

	if m := arxivPattern.FindStringSubmatch(identifier); m != nil {
		return TypeArxiv, m[1]
	}
	if m := doiPattern.FindStringSubmatch(identifier); m != nil {
		return TypeDOI, m[1]
	}
	if u, err := url.Parse(identifier); err == nil && (u.Scheme == "http" || u.Scheme == "https") && u.Host != "" {
		return TypeURL, identifier
	}
	return TypeFile, identifier
}

// PDFURL returns the download URL for a remote identifier. For DOIs this is
// the doi.org resolver; the HTTP client follows the redirect. Files have no
// URL.
func PDFURL(idType IdentifierType, normalized string) string {
	switch idType {
	case TypeArxiv:
		return arxivPDFBase + normalized
	case TypeDOI:
		return doiBase + normalized
	case TypeURL:
		return normalized
	default:
		return ""
	}
}
