package app

import (
	"regexp"
	"strings"
	"unicode"

	"golang.org/x/text/unicode/norm"
)

var (
	featRegex       = regexp.MustCompile(`(?i)\((?:feat\.?|ft\.?|featuring)[^)]*\)`)
	whitespaceRegex = regexp.MustCompile(`\s+`)
)

// cleanText folds a title, artist or query for comparison: accents removed,
// "(feat. X)" credits dropped, whitespace collapsed, lowercased.
func cleanText(s string) string {
	s = featRegex.ReplaceAllString(s, "")
	s = norm.NFKD.String(s)

	var b strings.Builder
	for _, r := range s {
		if !unicode.IsMark(r) {
			b.WriteRune(r)
		}
	}

	s = whitespaceRegex.ReplaceAllString(b.String(), " ")
	return strings.ToLower(strings.TrimSpace(s))
}

// relevance scores how well a catalog candidate answers a free-text query.
// Substring containment in either direction earns 0.5 (title) and 0.3
// (artist); similarity to the title, the artist and "title artist" adds
// 0.4, 0.2 and 0.3 of the respective ratios. The sum is capped at 1.
func relevance(query, title, artist string) float64 {
	q := cleanText(query)
	t := cleanText(title)
	a := cleanText(artist)

	score := 0.0
	if contains(q, t) {
		score += 0.5
	}
	if contains(q, a) {
		score += 0.3
	}
	score += similarity(q, t)*0.4 + similarity(q, a)*0.2 + similarity(q, t+" "+a)*0.3

	if score > 1 {
		return 1
	}
	return score
}

// contains reports whether either string contains the other.
func contains(a, b string) bool {
	if a == "" || b == "" {
		return a == b
	}
	return strings.Contains(a, b) || strings.Contains(b, a)
}

// similarity is 2*LCS/(len(a)+len(b)) over runes, in [0,1].
func similarity(a, b string) float64 {
	if a == b {
		return 1
	}
	ra, rb := []rune(a), []rune(b)
	if len(ra) == 0 || len(rb) == 0 {
		return 0
	}
	return 2 * float64(longestCommonSubsequence(ra, rb)) / float64(len(ra)+len(rb))
}

func longestCommonSubsequence(a, b []rune) int {
	prev := make([]int, len(b)+1)
	curr := make([]int, len(b)+1)
	for i := 1; i <= len(a); i++ {
		for j := 1; j <= len(b); j++ {
			if a[i-1] == b[j-1] {
				curr[j] = prev[j-1] + 1
			} else {
				curr[j] = max(prev[j], curr[j-1])
			}
		}
		prev, curr = curr, prev
	}
	return prev[len(b)]
}

// primaryArtist returns the first credited artist of a joined artist string.
func primaryArtist(artist string) string {
	first, _, _ := strings.Cut(artist, ", ")
	return first
}
