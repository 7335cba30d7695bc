// Package search matches queries against parsed transcripts. Four
// modes cover the useful shapes of spoken-word lookup: sentence
// (regex over segment text), fragment (word-precise phrase spans),
// mash (every occurrence of single words, shuffled), and semantic
// (embedding similarity). The n-gram analyzer shares the same
// tokenization so its counts line up with what the matcher would find.
package search
