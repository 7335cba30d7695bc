// Package language normalizes user language input to the two-letter
// codes the transcription backend accepts.
//
// Input arrives in many shapes: bare codes ("en"), regional BCP 47 tags
// ("en-US"), ISO 639-2 codes ("eng", "fre"), or full names ("english").
// All of them funnel through Normalize so the rest of the tool only
// ever sees a supported code.
package language
