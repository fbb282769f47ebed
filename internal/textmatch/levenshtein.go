// Package textmatch provides the edit-distance primitives used by fuzzy
// brand detection.
package textmatch

// Distance returns the Levenshtein distance between a and b: the minimum
// number of single-character inserts, deletes and substitutions needed to
// turn a into b. Standard dynamic-programming table, O(len(a)*len(b)).
func Distance(a, b string) int {
	ra := []rune(a)
	rb := []rune(b)

	if len(ra) == 0 {
		return len(rb)
	}
	if len(rb) == 0 {
		return len(ra)
	}

	prev := make([]int, len(rb)+1)
	curr := make([]int, len(rb)+1)

	for j := 0; j <= len(rb); j++ {
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

// Similarity returns a normalized similarity in [0,1] based on the edit
// distance relative to the longer string. Two empty strings are identical,
// so the result is 1.
func Similarity(a, b string) float64 {
	longest := max(len([]rune(a)), len([]rune(b)))
	if longest == 0 {
		return 1
	}
	return float64(longest-Distance(a, b)) / float64(longest)
}
