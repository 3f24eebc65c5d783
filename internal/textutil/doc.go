// Package textutil provides the text primitives the synchronizer scores and
// aligns with.
//
// The primary use cases are:
//   - Splitting lyric lines into display tokens and joining them back
//   - Cleaning tokens for comparison (case and punctuation stripped)
//   - Fuzzy similarity on a 0-100 scale over strings or token sequences
//   - Diff-style matching blocks between two token sequences
//
// Similarity is the normalized insert/delete edit similarity. Matching blocks
// come from go-difflib's SequenceMatcher; its popular-element junk rule only
// applies to sequences of 200 or more tokens, far longer than a lyric line.
package textutil
