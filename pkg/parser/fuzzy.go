package parser

import (
	"regexp"
	"strings"
)

// FuzzyThreshold is the minimum similarity score for a keyword match.
const FuzzyThreshold = 80

var tokenPattern = regexp.MustCompile(`[\p{L}\p{N}_]+`)

// Similarity returns a normalized similarity score between 0 and 100.
// The score is the indel ratio 2*LCS/(len(a)+len(b)) scaled to 100:
// identical strings score 100, strings sharing no rune score 0.
func Similarity(a, b string) float64 {
	ra, rb := []rune(a), []rune(b)
	total := len(ra) + len(rb)
	if total == 0 {
		return 100
	}
	lcs := longestCommonSubsequence(ra, rb)
	return 200 * float64(lcs) / float64(total)
}

// longestCommonSubsequence uses a single rolling row of the DP table.
func longestCommonSubsequence(a, b []rune) int {
	if len(a) < len(b) {
		a, b = b, a
	}
	row := make([]int, len(b)+1)
	for i := 1; i <= len(a); i++ {
		diag := 0
		for j := 1; j <= len(b); j++ {
			up := row[j]
			if a[i-1] == b[j-1] {
				row[j] = diag + 1
			} else if row[j-1] > row[j] {
				row[j] = row[j-1]
			}
			diag = up
		}
	}
	return row[len(b)]
}

// tokenize splits text into lowercase word tokens.
func tokenize(text string) []string {
	return tokenPattern.FindAllString(strings.ToLower(text), -1)
}

// FuzzyContains reports whether any word of text scores at least
// FuzzyThreshold against any of keywords.
func FuzzyContains(text string, keywords []string) bool {
	for _, token := range tokenize(text) {
		for _, kw := range keywords {
			if Similarity(token, kw) >= FuzzyThreshold {
				return true
			}
		}
	}
	return false
}

// FuzzyExtract returns the keyword with the highest score against any word
// of text. Ties keep the first pair scanned (tokens in order, then keywords
// in order). The boolean is false when the best score is below FuzzyThreshold.
func FuzzyExtract(text string, keywords []string) (string, bool) {
	best, bestScore := "", 0.0
	for _, token := range tokenize(text) {
		for _, kw := range keywords {
			if score := Similarity(token, kw); score > bestScore {
				best, bestScore = kw, score
			}
		}
	}
	if bestScore < FuzzyThreshold {
		return "", false
	}
	return best, true
}
