package catalog

import "strings"

// maxSuggestDistance bounds how far a suggested term may be from the typed one.
const maxSuggestDistance = 2

// Suggest replaces every query term that is not a known name term with the
// closest known term. Ties go to the more frequent term, then alphabetically.
func (c *BleveCatalog) Suggest(query string) (string, bool, error) {
	dict, err := c.nameTerms()
	if err != nil {
		return "", false, err
	}
	corrected, changed := correct(tokenize(query), dict)
	return corrected, changed, nil
}

func correct(terms []string, dict map[string]int) (string, bool) {
	out := make([]string, 0, len(terms))
	changed := false
	for _, term := range terms {
		if _, ok := dict[term]; ok {
			out = append(out, term)
			continue
		}
		best, bestDist, bestFreq := "", maxSuggestDistance+1, 0
		for cand, freq := range dict {
			if abs(len(cand)-len(term)) > maxSuggestDistance {
				continue
			}
			d := levenshtein(term, cand)
			if d < bestDist || (d == bestDist && (freq > bestFreq || (freq == bestFreq && cand < best))) {
				best, bestDist, bestFreq = cand, d, freq
			}
		}
		if best == "" {
			out = append(out, term)
			continue
		}
		out = append(out, best)
		changed = true
	}
	return strings.Join(out, " "), changed
}

// levenshtein counts the single-rune insertions, deletions and substitutions
// that turn a into b.
func levenshtein(a, b string) int {
	ra, rb := []rune(a), []rune(b)
	if len(ra) == 0 {
		return len(rb)
	}
	if len(rb) == 0 {
		return len(ra)
	}

	prev := make([]int, len(rb)+1)
	curr := make([]int, len(rb)+1)
	for j := range prev {
		prev[j] = j
	}
	for i := 1; i <= len(ra); i++ {
		curr[0] = i
		for j := 1; j <= len(rb); j++ {
			cost := 1
			if ra[i-1] == rb[j-1] {
				cost = 0
			}
			curr[j] = min(prev[j]+1, curr[j-1]+1, prev[j-1]+cost)
		}
		prev, curr = curr, prev
	}
	return prev[len(rb)]
}

func abs(n int) int {
	if n < 0 {
		return -n
	}
	return n
}
