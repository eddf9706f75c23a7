// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package extract

import (
	"regexp"
	"strings"
)

// ReferenceKeywords are the headings that open a references section,
// matched case-insensitively at line start.
var ReferenceKeywords = []string{
	"references",
	"bibliography",
	"works cited",
	"literature cited",
	"參考文獻",
}

var keywordPatterns = compileKeywordPatterns(ReferenceKeywords)

func compileKeywordPatterns(keywords []string) []*regexp.Regexp {
	patterns := make([]*regexp.Regexp, len(keywords))
	for i, kw := range keywords {
		patterns[i] = regexp.MustCompile(`(?im)^\s*` + regexp.QuoteMeta(kw))
	}
	return patterns
}

// FindReferencesSection returns the text from the last line-start
// occurrence of any reference keyword to the end of the document. The
// last occurrence wins so a "References" mention in the table of contents
// or body does not cut the section short. It returns "" when no keyword
// appears.
func FindReferencesSection(text string) string {
	last := -1
	for _, re := range keywordPatterns {
		matches := re.FindAllStringIndex(text, -1)
		if len(matches) == 0 {
			continue
		}
		if pos := matches[len(matches)-1][0]; pos > last {
			last = pos
		}
	}
	if last < 0 {
		return ""
	}
	return text[last:]
}

// markerRe matches a numbered-list marker, "[12]" or "12.", at line start.
var markerRe = regexp.MustCompile(`(?m)^\s*(\[\d+\]|\d+\.)`)

// SplitCitations splits a references section into raw citation strings.
//
// When any line starts with a numbered marker, each marker is joined with
// the text up to the next marker, newlines become spaces, and the result is
// trimmed. Text before the first marker (the heading) is dropped. Without
// markers every non-empty line after the first (the heading) is one
// citation.
func SplitCitations(section string) []string {
	if section == "" {
		return nil
	}

	matches := markerRe.FindAllStringSubmatchIndex(section, -1)
	if len(matches) == 0 {
		lines := strings.Split(strings.TrimSpace(section), "\n")
		var out []string
		for _, line := range lines[1:] {
			if line = strings.TrimSpace(line); line != "" {
				out = append(out, line)
			}
		}
		return out
	}

	out := make([]string, 0, len(matches))
	for i, m := range matches {
		end := len(section)
		if i+1 < len(matches) {
			end = matches[i+1][0]
		}
		marker := section[m[2]:m[3]]
		body := section[m[1]:end]
		citation := strings.TrimSpace(marker + body)
		out = append(out, strings.ReplaceAll(citation, "\n", " "))
	}
	return out
}
