// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package types defines shared data structures for the refcheck pipeline:
// the Reference record that flows through parsing and verification, the
// running Summary, paper-level metadata, stream events, and configuration.
package types

import (
	"encoding/json"
	"fmt"
	"strings"
)

// StatusKind is the coarse verification outcome of a Reference.
type StatusKind string

const (
	StatusUnprocessed StatusKind = "Unprocessed"
	StatusVerified    StatusKind = "Verified"
	StatusFormatError StatusKind = "Format Error"
	StatusNotFound    StatusKind = "Not Found"
)

// FailureReason explains why a reference could not be verified. The set is
// closed; free-text classifications are mapped onto it by ParseFailureReason.
type FailureReason string

const (
	ReasonIncorrectFormat       FailureReason = "Incorrect Format"
	ReasonIncompleteInformation FailureReason = "Incomplete Information"
	ReasonAmbiguousTitle        FailureReason = "Ambiguous Title"
	ReasonNonAcademicSource     FailureReason = "Non-Academic Source"
	ReasonPotentialFabrication  FailureReason = "Potential Fabrication"
	ReasonNotFound              FailureReason = "Not Found"
)

// FailureReasons lists every reason label. ReasonNotFound is last so that
// ParseFailureReason prefers the more specific labels.
var FailureReasons = []FailureReason{
	ReasonIncorrectFormat,
	ReasonIncompleteInformation,
	ReasonAmbiguousTitle,
	ReasonNonAcademicSource,
	ReasonPotentialFabrication,
	ReasonNotFound,
}

// ParseFailureReason maps free text (usually an oracle reply) onto the
// closed reason set by case-insensitive containment. Text matching no label
// yields ReasonNotFound.
func ParseFailureReason(text string) FailureReason {
	lower := strings.ToLower(text)
	for _, r := range FailureReasons {
		if strings.Contains(lower, strings.ToLower(string(r))) {
			return r
		}
	}
	return ReasonNotFound
}

// Status is the verification state of a Reference. Reason is only
// meaningful when Kind is StatusNotFound.
type Status struct {
	Kind   StatusKind
	Reason FailureReason
}

// Unprocessed is the initial status of every Reference.
func Unprocessed() Status { return Status{Kind: StatusUnprocessed} }

// Verified marks a reference confirmed by some verification stage.
func Verified() Status { return Status{Kind: StatusVerified} }

// FormatError marks a reference whose citation could not be parsed.
func FormatError() Status { return Status{Kind: StatusFormatError} }

// NotFound marks a reference no stage could confirm, with the reason.
func NotFound(reason FailureReason) Status {
	if reason == "" {
		reason = ReasonNotFound
	}
	return Status{Kind: StatusNotFound, Reason: reason}
}

// IsVerified reports whether the status is Verified.
func (s Status) IsVerified() bool { return s.Kind == StatusVerified }

// IsFormatError reports whether the status is FormatError.
func (s Status) IsFormatError() bool { return s.Kind == StatusFormatError }

// String returns the wire label. NotFound statuses render as their reason
// so callers see e.g. "Potential Fabrication" rather than "Not Found".
func (s Status) String() string {
	switch s.Kind {
	case StatusNotFound:
		if s.Reason == "" {
			return string(ReasonNotFound)
		}
		return string(s.Reason)
	case "":
		return string(StatusUnprocessed)
	default:
		return string(s.Kind)
	}
}

// ParseStatus is the inverse of Status.String.
func ParseStatus(label string) (Status, error) {
	switch StatusKind(label) {
	case StatusUnprocessed, "":
		return Unprocessed(), nil
	case StatusVerified:
		return Verified(), nil
	case StatusFormatError:
		return FormatError(), nil
	}
	for _, r := range FailureReasons {
		if string(r) == label {
			return NotFound(r), nil
		}
	}
	return Status{}, fmt.Errorf("unknown status %q", label)
}

// MarshalJSON encodes the status as its wire label.
func (s Status) MarshalJSON() ([]byte, error) {
	return json.Marshal(s.String())
}

// UnmarshalJSON decodes a wire label.
func (s *Status) UnmarshalJSON(data []byte) error {
	var label string
	if err := json.Unmarshal(data, &label); err != nil {
		return err
	}
	parsed, err := ParseStatus(label)
	if err != nil {
		return err
	}
	*s = parsed
	return nil
}

// MarshalYAML encodes the status as its wire label.
func (s Status) MarshalYAML() (any, error) {
	return s.String(), nil
}

// Reference is one citation under analysis. It is created from raw text,
// enriched by parsing and rescue, annotated by format analysis, and
// mutated once by verification.
type Reference struct {
	// RawText is the citation as it appears in the document.
	RawText string `json:"raw_text" yaml:"raw_text"`

	// Status is the verification outcome.
	Status Status `json:"status" yaml:"status"`

	// Authors lists the cited work's authors in citation order.
	Authors []string `json:"authors" yaml:"authors"`

	// Year is the publication year.
	Year *int `json:"year" yaml:"year"`

	// Title is the cited work's title. For parse failures it carries the
	// parse error message instead (see ParseErrorPrefix).
	Title *string `json:"title" yaml:"title"`

	// Source is the venue as parsed, or the verifying source once verified.
	Source *string `json:"source" yaml:"source"`

	// VerifiedDOI is the DOI confirmed by verification, or "N/A".
	VerifiedDOI *string `json:"verified_doi" yaml:"verified_doi"`

	// VerificationScore is the confidence in [0,100].
	VerificationScore float64 `json:"verification_score" yaml:"verification_score"`

	// FormatSuggestion is advisory text about missing or abbreviated fields.
	FormatSuggestion *string `json:"format_suggestion" yaml:"format_suggestion"`

	// FailureReason is the oracle's raw classification text for references
	// that could not be verified.
	FailureReason *string `json:"failure_reason" yaml:"failure_reason"`

	// SourceURL is the landing page the verifying source resolved to.
	SourceURL *string `json:"source_url" yaml:"source_url"`
}

// ParseErrorPrefix starts the Title of every reference whose citation could
// not be parsed. Verification recognizes it and skips all lookups.
const ParseErrorPrefix = "Error parsing with AI"

// NewReference returns an unprocessed Reference holding only raw text.
func NewReference(raw string) Reference {
	return Reference{RawText: raw, Status: Unprocessed()}
}

// HasTitle reports whether a non-empty title is set.
func (r Reference) HasTitle() bool {
	return r.Title != nil && strings.TrimSpace(*r.Title) != ""
}

// TitleText returns the title or "" when unset.
func (r Reference) TitleText() string {
	if r.Title == nil {
		return ""
	}
	return *r.Title
}

// SourceText returns the source or "" when unset.
func (r Reference) SourceText() string {
	if r.Source == nil {
		return ""
	}
	return *r.Source
}

// HasParseError reports whether the title carries the parse-error sentinel.
func (r Reference) HasParseError() bool {
	return strings.Contains(r.TitleText(), ParseErrorPrefix)
}

// Summary holds running counts over one batch. At every point
// Verified+NotFound+FormatError <= Total, with equality at batch end.
type Summary struct {
	Total       int `json:"total_references" yaml:"total_references"`
	Verified    int `json:"verified_count" yaml:"verified_count"`
	NotFound    int `json:"not_found_count" yaml:"not_found_count"`
	FormatError int `json:"format_error_count" yaml:"format_error_count"`
}

// Record counts one verified reference by its final status.
func (s *Summary) Record(status Status) {
	switch status.Kind {
	case StatusVerified:
		s.Verified++
	case StatusFormatError:
		s.FormatError++
	default:
		s.NotFound++
	}
}

// Processed returns the number of references counted so far.
func (s Summary) Processed() int {
	return s.Verified + s.NotFound + s.FormatError
}

// PaperMetadata describes the uploaded paper itself.
type PaperMetadata struct {
	Title       *string  `json:"title" yaml:"title"`
	Authors     []string `json:"authors" yaml:"authors"`
	Year        *int     `json:"year" yaml:"year"`
	Affiliation *string  `json:"affiliation" yaml:"affiliation"`
}

// IsEmpty reports whether no field is set.
func (m PaperMetadata) IsEmpty() bool {
	return m.Title == nil && len(m.Authors) == 0 && m.Year == nil && m.Affiliation == nil
}

// StringPtr returns a pointer to s.
func StringPtr(s string) *string { return &s }

// IntPtr returns a pointer to n.
func IntPtr(n int) *int { return &n }
