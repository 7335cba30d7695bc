// Command voxcut searches spoken-word media by transcript and cuts
// the matches into supercuts. Subcommands cover querying (search,
// ngrams), producing output (supercut, export), transcript management
// (transcribe, library), and configuration.
package main
