// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package report

import (
	"fmt"
	"io"
	"strconv"
	"strings"
)

// FormatText writes r as a human-readable table.
func FormatText(r Report, w io.Writer) {
	if m := r.Metadata; m != nil {
		if m.Title != nil {
			fmt.Fprintf(w, "Paper:   %s\n", *m.Title)
		}
		if len(m.Authors) > 0 {
			fmt.Fprintf(w, "Authors: %s\n", strings.Join(m.Authors, ", "))
		}
		if m.Year != nil {
			fmt.Fprintf(w, "Year:    %d\n", *m.Year)
		}
		fmt.Fprintln(w)
	}

	if len(r.References) == 0 {
		fmt.Fprintln(w, "No references found.")
		return
	}

	fmt.Fprintf(w, "%-4s  %-50s  %-20s  %-4s  %-22s  %-5s  %s\n",
		"#", "Title", "Authors", "Year", "Status", "Score", "Source")
	fmt.Fprintln(w, strings.Repeat("-", 130))

	for i, ref := range r.References {
		year := ""
		if ref.Year != nil {
			year = strconv.Itoa(*ref.Year)
		}
		fmt.Fprintf(w, "%-4d  %-50s  %-20s  %-4s  %-22s  %-5.0f  %s\n",
			i+1, truncate(ref.TitleText(), 50), formatAuthors(ref.Authors), year,
			ref.Status.String(), ref.VerificationScore, ref.SourceText())
	}

	s := r.Summary
	fmt.Fprintf(w, "\n%d references: %d verified, %d not found, %d format errors\n",
		s.Total, s.Verified, s.NotFound, s.FormatError)
}

func formatAuthors(authors []string) string {
	switch len(authors) {
	case 0:
		return ""
	case 1:
		return truncate(authors[0], 20)
	default:
		return truncate(authors[0], 14) + " et al."
	}
}

func truncate(s string, max int) string {
	r := []rune(s)
	if len(r) <= max {
		return s
	}
	return string(r[:max-3]) + "..."
}
