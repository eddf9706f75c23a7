// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package extract

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

// --- FindReferencesSection ---

func TestFindReferencesSection(t *testing.T) {
	tests := []struct {
		name string
		text string
		want string
	}{
		{
			name: "no keyword",
			text: "Introduction\nSome body text.\nConclusion\n",
			want: "",
		},
		{
			name: "single heading",
			text: "Body\nReferences\n[1] A. Author, Title.\n",
			want: "References\n[1] A. Author, Title.\n",
		},
		{
			name: "last occurrence wins",
			text: "Contents\nReferences ... 12\nBody mentions\nREFERENCES\n[1] X.\n",
			want: "REFERENCES\n[1] X.\n",
		},
		{
			name: "keyword mid-line is ignored",
			text: "see the references below\nBibliography\n1. Y.\n",
			want: "Bibliography\n1. Y.\n",
		},
		{
			name: "highest offset across keywords",
			text: "Works Cited\nold\nLiterature Cited\n1. Z.\n",
			want: "Literature Cited\n1. Z.\n",
		},
		{
			name: "localized heading",
			text: "正文\n參考文獻\n[1] 作者. 標題.\n",
			want: "參考文獻\n[1] 作者. 標題.\n",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := FindReferencesSection(tt.text)
			// Leading blank lines may be absorbed by the line-start match.
			assert.Equal(t, tt.want, trimLeadingNewlines(got))
		})
	}
}

func trimLeadingNewlines(s string) string {
	for len(s) > 0 && (s[0] == '\n' || s[0] == ' ') {
		s = s[1:]
	}
	return s
}

// --- SplitCitations ---

func TestSplitCitations(t *testing.T) {
	tests := []struct {
		name    string
		section string
		want    []string
	}{
		{
			name:    "empty",
			section: "",
			want:    nil,
		},
		{
			name:    "bracketed markers",
			section: "References\n[1] A. Author, \"Title One,\" 2020.\n[2] B. Author, \"Title Two,\" 2021.",
			want: []string{
				`[1] A. Author, "Title One," 2020.`,
				`[2] B. Author, "Title Two," 2021.`,
			},
		},
		{
			name:    "dotted markers with wrapped lines",
			section: "Bibliography\n1. Smith, J. A study of\nthings. Nature, 2019.\n2. Doe, A. Another.\n",
			want: []string{
				"1. Smith, J. A study of things. Nature, 2019.",
				"2. Doe, A. Another.",
			},
		},
		{
			name:    "indented markers",
			section: "References\n   [10] First.\n  [11] Second.",
			want:    []string{"[10] First.", "[11] Second."},
		},
		{
			name:    "no markers falls back to lines after heading",
			section: "References\nSmith J (2020) Title A.\n\nDoe A (2021) Title B.\n",
			want:    []string{"Smith J (2020) Title A.", "Doe A (2021) Title B."},
		},
		{
			name:    "heading only",
			section: "References\n",
			want:    nil,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := SplitCitations(tt.section)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestSplitCitations_CountMatchesMarkers(t *testing.T) {
	section := FindReferencesSection("Body text.\nReferences\n[1] One.\n[2] Two.\n[3] Three.\n")
	got := SplitCitations(section)
	if len(got) != 3 {
		t.Fatalf("got %d citations, want 3: %v", len(got), got)
	}
	for i, want := range []string{"[1] One.", "[2] Two.", "[3] Three."} {
		if got[i] != want {
			t.Errorf("citation[%d] = %q, want %q", i, got[i], want)
		}
	}
}
