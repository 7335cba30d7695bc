// Package transcribe generates word-aligned transcripts and guards
// them against needless regeneration.
//
// A transcript is cached beside its media file together with a
// fingerprint of the settings that produced it. The guard reuses the
// cache when fingerprints match, regenerates when asked, and routes
// mismatches through a conflict decision (caller prompt or configured
// policy). Transcription streams one segment per completed chunk, so
// cancellation persists the finished prefix as a valid shorter
// transcript instead of throwing the work away.
package transcribe
