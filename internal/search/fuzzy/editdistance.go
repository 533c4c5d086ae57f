// Package fuzzy provides the approximate string matching primitives behind
// typo tolerance: Damerau-Levenshtein edit distance and trigram set
// similarity. All functions operate on runes, not bytes.
package fuzzy

// DamerauLevenshtein returns the minimum number of single-rune insertions,
// deletions, substitutions and adjacent transpositions needed to turn a
// into b, via the standard dynamic-programming table.
func DamerauLevenshtein(a, b string) int {
	if a == b {
		return 0
	}
	ra := []rune(a)
	rb := []rune(b)
	if len(ra) == 0 {
		return len(rb)
	}
	if len(rb) == 0 {
		return len(ra)
	}

	rows := len(ra) + 1
	cols := len(rb) + 1
	d := make([][]int, rows)
	for i := range d {
		d[i] = make([]int, cols)
		d[i][0] = i
	}
	for j := 0; j < cols; j++ {
		d[0][j] = j
	}

	for i := 1; i < rows; i++ {
		for j := 1; j < cols; j++ {
			cost := 1
			if ra[i-1] == rb[j-1] {
				cost = 0
			}
			v := min3(
				d[i-1][j]+1,      // deletion
				d[i][j-1]+1,      // insertion
				d[i-1][j-1]+cost, // substitution
			)
			if i > 1 && j > 1 && ra[i-1] == rb[j-2] && ra[i-2] == rb[j-1] {
				if t := d[i-2][j-2] + cost; t < v {
					v = t // transposition
				}
			}
			d[i][j] = v
		}
	}
	return d[rows-1][cols-1]
}

// IsSimilar reports whether a and b are within maxDistance edits.
func IsSimilar(a, b string, maxDistance int) bool {
	return DamerauLevenshtein(a, b) <= maxDistance
}

func min3(a, b, c int) int {
	if b < a {
		a = b
	}
	if c < a {
		a = c
	}
	return a
}
