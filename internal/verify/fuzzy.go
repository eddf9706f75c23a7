// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package verify

import (
	"math"
	"sort"
	"strings"
	"unicode"
)

// TokenSetRatio scores how alike two titles are on a 0-100 scale,
// ignoring case, punctuation, word order, and words present in only one
// of them when the rest agree. Scores take the best of three comparisons
// between the shared tokens and each side's full token set.
func TokenSetRatio(a, b string) int {
	pa, pb := normalize(a), normalize(b)
	if pa == "" || pb == "" {
		return 0
	}

	ta, tb := tokenSet(pa), tokenSet(pb)
	var common, onlyA, onlyB []string
	for tok := range ta {
		if tb[tok] {
			common = append(common, tok)
		} else {
			onlyA = append(onlyA, tok)
		}
	}
	for tok := range tb {
		if !ta[tok] {
			onlyB = append(onlyB, tok)
		}
	}
	sort.Strings(common)
	sort.Strings(onlyA)
	sort.Strings(onlyB)

	sect := strings.Join(common, " ")
	combinedA := strings.TrimSpace(sect + " " + strings.Join(onlyA, " "))
	combinedB := strings.TrimSpace(sect + " " + strings.Join(onlyB, " "))

	return max(ratio(sect, combinedA), ratio(sect, combinedB), ratio(combinedA, combinedB))
}

// ratio is the insert/delete similarity of a and b scaled to 0-100:
// twice the longest common subsequence over the combined length, with
// halves rounded to even.
func ratio(a, b string) int {
	ra, rb := []rune(a), []rune(b)
	if len(ra) == 0 || len(rb) == 0 {
		return 0
	}
	lcs := lcsLen(ra, rb)
	return int(math.RoundToEven(100 * float64(2*lcs) / float64(len(ra)+len(rb))))
}

func lcsLen(a, b []rune) int {
	prev := make([]int, len(b)+1)
	cur := make([]int, len(b)+1)
	for i := 1; i <= len(a); i++ {
		for j := 1; j <= len(b); j++ {
			switch {
			case a[i-1] == b[j-1]:
				cur[j] = prev[j-1] + 1
			case prev[j] >= cur[j-1]:
				cur[j] = prev[j]
			default:
				cur[j] = cur[j-1]
			}
		}
		prev, cur = cur, prev
	}
	return prev[len(b)]
}

// normalize lowercases s and turns every non-alphanumeric rune into a space.
func normalize(s string) string {
	mapped := strings.Map(func(r rune) rune {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			return unicode.ToLower(r)
		}
		return ' '
	}, s)
	return strings.TrimSpace(mapped)
}

func tokenSet(s string) map[string]bool {
	set := make(map[string]bool)
	for _, f := range strings.Fields(s) {
		set[f] = true
	}
	return set
}
