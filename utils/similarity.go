package utils

// SimilarityRatio scores how alike a and b are on a 0..1 scale. The score is
// 2*M/T where T is the combined rune count and M is the number of runes in
// matching blocks: the longest common run is taken, then the unmatched text on
// either side of it is matched the same way.
//
// Operands are put in a canonical order first so the result does not depend
// on argument order when several longest runs tie.
func SimilarityRatio(a, b string) float64 {
	if b < a {
		a, b = b, a
	}
	ra, rb := []rune(a), []rune(b)
	total := len(ra) + len(rb)
	if total == 0 {
		return 1
	}
	return 2 * float64(matchingRunes(ra, rb)) / float64(total)
}

func matchingRunes(a, b []rune) int {
	if len(a) == 0 || len(b) == 0 {
		return 0
	}
	i, j, size := longestMatch(a, b)
	if size == 0 {
		return 0
	}
	return size + matchingRunes(a[:i], b[:j]) + matchingRunes(a[i+size:], b[j+size:])
}

// longestMatch returns the earliest longest common run of a and b.
func longestMatch(a, b []rune) (int, int, int) {
	var bestI, bestJ, bestSize int
	prev := make([]int, len(b)+1)
	cur := make([]int, len(b)+1)
	for i := 1; i <= len(a); i++ {
		for j := 1; j <= len(b); j++ {
			if a[i-1] == b[j-1] {
				cur[j] = prev[j-1] + 1
				if cur[j] > bestSize {
					bestSize = cur[j]
					bestI = i - cur[j]
					bestJ = j - cur[j]
				}
			} else {
				cur[j] = 0
			}
		}
		prev, cur = cur, prev
	}
	return bestI, bestJ, bestSize
}
