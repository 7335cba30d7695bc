// Package library persists media files, their transcripts, and cached
// embedding vectors in a local SQLite database so repeated searches do
// not re-parse or re-embed anything.
//
// The store keeps one row per media file, one row per transcript
// segment, and one embedding row per segment. Removing a media row
// cascades to its segments and embeddings. All writes retry briefly on
// SQLITE_BUSY so two CLI invocations can share the database.
package library
