package textutil

// Ratio returns the normalized indel similarity of two strings on a 0-100
// scale, comparing them rune by rune. Two empty strings score 100.
func Ratio(a, b string) float64 {
	return SequenceRatio([]rune(a), []rune(b))
}

// TokenRatio scores two token sequences, treating each token as one symbol.
func TokenRatio(a, b []string) float64 {
	return SequenceRatio(a, b)
}

// SequenceRatio computes 100 * 2*LCS / (len(a)+len(b)), which is the
// similarity implied by the insert/delete edit distance.
func SequenceRatio[T comparable](a, b []T) float64 {
	total := len(a) + len(b)
	if total == 0 {
		return 100
	}
	lcs := longestCommonSubsequence(a, b)
	return 100 * float64(2*lcs) / float64(total)
}

func longestCommonSubsequence[T comparable](a, b []T) int {
	if len(a) == 0 || len(b) == 0 {
		return 0
	}
	prev := make([]int, len(b)+1)
	curr := make([]int, len(b)+1)
	for i := 1; i <= len(a); i++ {
		for j := 1; j <= len(b); j++ {
			switch {
			case a[i-1] == b[j-1]:
				curr[j] = prev[j-1] + 1
			case prev[j] >= curr[j-1]:
				curr[j] = prev[j]
			default:
				curr[j] = curr[j-1]
			}
		}
		prev, curr = curr, prev
	}
	return prev[len(b)]
}
