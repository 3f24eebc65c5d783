package textutil

import "github.com/pmezard/go-difflib/difflib"

// Match is a run of Size equal elements starting at a[A] and b[B].
type Match = difflib.Match

// LongestMatch finds the longest common run of a[alo:ahi] and b[blo:bhi].
// Ties resolve to the run starting earliest in a, then earliest in b. When
// nothing matches the result is {alo, blo, 0}.
func LongestMatch(a, b []string, alo, ahi, blo, bhi int) Match {
	return difflib.NewMatcher(a, b).FindLongestMatch(alo, ahi, blo, bhi)
}

// MatchingBlocks returns the non-overlapping common runs of a and b in
// increasing order. Adjacent runs are merged and the list always ends with
// the sentinel {len(a), len(b), 0}.
func MatchingBlocks(a, b []string) []Match {
	return difflib.NewMatcher(a, b).GetMatchingBlocks()
}
