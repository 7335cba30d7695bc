// Package embed turns text into fixed-length vectors for semantic
// search. The canonical implementation shells out to an embedding
// helper over a JSON protocol; a lexical TF-IDF embedder covers setups
// without the helper, and Lazy defers model startup until first use.
package embed
