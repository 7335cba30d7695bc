package search

import (
	"fmt"
	"math/rand/v2"
	"strings"

	"voxcut/internal/embed"
	"voxcut/internal/services"
	"voxcut/internal/transcript"
)

// Mode selects a matching strategy.
type Mode string

const (
	ModeSentence Mode = "sentence"
	ModeFragment Mode = "fragment"
	ModeMash     Mode = "mash"
	ModeSemantic Mode = "semantic"
)

// DefaultSemanticThreshold is the minimum cosine similarity a segment
// needs to count as a semantic match.
const DefaultSemanticThreshold = 0.45

// ParseMode normalizes a user-supplied mode name.
func ParseMode(value string) (Mode, error) {
	switch Mode(strings.ToLower(strings.TrimSpace(value))) {
	case ModeSentence:
		return ModeSentence, nil
	case ModeFragment:
		return ModeFragment, nil
	case ModeMash:
		return ModeMash, nil
	case ModeSemantic:
		return ModeSemantic, nil
	}
	return "", services.Wrap(services.ErrValidation, "search", "mode",
		fmt.Sprintf("unsupported search mode %q", value), nil)
}

// Document is one media file's parsed transcript.
type Document struct {
	File     string
	Segments []transcript.Segment
}

// Match is one hit: a time span in a source file with the matched text.
// Score is populated by semantic mode only.
type Match struct {
	File    string  `json:"file"`
	Start   float64 `json:"start"`
	End     float64 `json:"end"`
	Text    string  `json:"text"`
	Score   float64 `json:"score,omitempty"`
	Speaker string  `json:"speaker,omitempty"`
}

// Duration returns the match span length in seconds.
func (m Match) Duration() float64 {
	return m.End - m.Start
}

// Options tunes a search call.
type Options struct {
	Mode Mode

	// WholeWord anchors patterns at word boundaries instead of
	// matching substrings.
	WholeWord bool

	// Threshold overrides DefaultSemanticThreshold when positive.
	Threshold float64

	// Embedder supplies vectors for semantic mode.
	Embedder embed.Embedder

	// Rand drives mash shuffling. Nil uses the process-wide source,
	// so mash order varies per call; supply a seeded source for
	// reproducible output.
	Rand *rand.Rand
}

func (o Options) threshold() float64 {
	if o.Threshold > 0 {
		return o.Threshold
	}
	return DefaultSemanticThreshold
}

func (o Options) shuffle(n int, swap func(i, j int)) {
	if o.Rand != nil {
		o.Rand.Shuffle(n, swap)
		return
	}
	rand.Shuffle(n, swap)
}
