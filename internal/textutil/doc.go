// Package textutil provides the text processing shared by search
// ranking and file naming: transcript fingerprints, cosine similarity,
// corpus IDF weighting, and filename sanitization.
//
// Fingerprints are term-frequency vectors over lowercase tokens.
// Tokenization splits on non-alphanumeric runs and drops tokens
// shorter than 3 characters, which filters most function words before
// any stop list is consulted. The library uses fingerprints to rank
// stored transcripts against a text query; the lexical embedder builds
// its vocabulary from the same corpus statistics.
package textutil
