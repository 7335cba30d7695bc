// Package preflight provides readiness checks for the external tools
// and filesystem paths a run depends on.
//
// The CLI runs the applicable checks before transcription and
// rendering so a missing binary or a full disk surfaces as one clear
// findings list instead of a failure hours into a long job. Individual
// check functions also back the status output.
package preflight
