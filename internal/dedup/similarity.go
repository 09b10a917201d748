package dedup

import (
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// Leading articles dropped during title normalization.
var articleWords = map[string]bool{
	"a":   true,
	"an":  true,
	"the": true,
}

// diacriticFolder strips combining marks so that accented and plain
// spellings of the same title compare equal.
var diacriticFolder = transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)

// NormalizeTitle canonicalizes a title for comparison: lower-case, fold
// diacritics, strip punctuation, collapse whitespace, drop articles.
func NormalizeTitle(title string) string {
	return strings.Join(normalizeTokens(title), " ")
}

func normalizeTokens(title string) []string {
	lowered := strings.ToLower(title)
	if folded, _, err := transform.String(diacriticFolder, lowered); err == nil {
		lowered = folded
	}

	var b strings.Builder
	b.Grow(len(lowered))
	for _, r := range lowered {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			b.WriteRune(r)
		} else {
			b.WriteRune(' ')
		}
	}

	var tokens []string
	for _, w := range strings.Fields(b.String()) {
		if articleWords[w] {
			continue
		}
		tokens = append(tokens, w)
	}
	return tokens
}

// TitleSimilarity scores two titles in [0,1]. The score is the total
// length of greedily-matched contiguous token blocks divided by the
// longer token sequence, so more shared contiguous text scores higher
// and only near-identical titles approach 1.
func TitleSimilarity(a, b string) float64 {
	ta := normalizeTokens(a)
	tb := normalizeTokens(b)
	if len(ta) == 0 || len(tb) == 0 {
		return 0
	}

	matched := matchingBlockLen(ta, tb)
	longer := len(ta)
	if len(tb) > longer {
		longer = len(tb)
	}
	return float64(matched) / float64(longer)
}

// matchingBlockLen sums the lengths of matching contiguous blocks found
// by recursing around the longest common block, difflib style.
func matchingBlockLen(a, b []string) int {
	ai, bi, size := longestCommonBlock(a, b)
	if size == 0 {
		return 0
	}
	return size +
		matchingBlockLen(a[:ai], b[:bi]) +
		matchingBlockLen(a[ai+size:], b[bi+size:])
}

// longestCommonBlock finds the longest run of equal tokens shared by a
// and b, returning its start offsets and length.
func longestCommonBlock(a, b []string) (ai, bi, size int) {
	prev := make([]int, len(b)+1)
	cur := make([]int, len(b)+1)
	for i := 1; i <= len(a); i++ {
		for j := 1; j <= len(b); j++ {
			if a[i-1] == b[j-1] {
				cur[j] = prev[j-1] + 1
				if cur[j] > size {
					size = cur[j]
					ai = i - size
					bi = j - size
				}
			} else {
				cur[j] = 0
			}
		}
		prev, cur = cur, prev
	}
	return ai, bi, size
}
