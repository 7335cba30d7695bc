package assemble

import (
	"math/rand/v2"
	"sort"

	"voxcut/internal/search"
)

// Clip is one renderable span of a source file.
type Clip struct {
	File  string  `json:"file"`
	Start float64 `json:"start"`
	End   float64 `json:"end"`
	Text  string  `json:"text"`
}

// Duration returns the clip length in seconds.
func (c Clip) Duration() float64 {
	return c.End - c.Start
}

// Padding is the extension applied to each match before merging.
type Padding struct {
	Lead float64
	Tail float64
}

const (
	// DefaultPadding cushions sentence, fragment, and semantic clips
	// so speech is not clipped mid-word.
	DefaultPadding = 0.3
	// MashPadding is the micro-pad for single-word cuts; anything
	// larger drags in neighboring words.
	MashPadding = 0.05

	// mergeEpsilon treats spans this close as touching.
	mergeEpsilon = 0.001
)

// PaddingFor returns the default padding for a search mode.
func PaddingFor(mode search.Mode) Padding {
	if mode == search.ModeMash {
		return Padding{Lead: MashPadding, Tail: MashPadding}
	}
	return Padding{Lead: DefaultPadding, Tail: DefaultPadding}
}

// Options tunes clip assembly.
type Options struct {
	// Padding overrides the mode default when non-nil.
	Padding *Padding

	// MaxClips caps the output when positive. The cap applies after
	// merging and shuffling, keeping the first clips in order.
	MaxClips int

	// Randomize shuffles the merged clips before the cap.
	Randomize bool

	// Rand drives the shuffle; nil uses the process-wide source.
	Rand *rand.Rand

	// Durations maps file paths to media durations in seconds. Known
	// durations clamp padded ends so clips never run past the media.
	Durations map[string]float64
}

// Assemble pads matches, merges same-file spans that overlap or touch
// within an epsilon, optionally shuffles, and truncates to MaxClips.
// Unshuffled output keeps search order: files in first-appearance
// order, chronological within each file. The result is deterministic
// for the same inputs and random source.
func Assemble(matches []search.Match, mode search.Mode, opts Options) []Clip {
	if len(matches) == 0 {
		return nil
	}
	pad := PaddingFor(mode)
	if opts.Padding != nil {
		pad = *opts.Padding
	}

	byFile := make(map[string][]Clip)
	fileOrder := make([]string, 0, 4)
	for _, m := range matches {
		clip := Clip{
			File:  m.File,
			Start: m.Start - pad.Lead,
			End:   m.End + pad.Tail,
			Text:  m.Text,
		}
		if clip.Start < 0 {
			clip.Start = 0
		}
		if clip.End < 0 {
			clip.End = 0
		}
		if dur, ok := opts.Durations[m.File]; ok && dur > 0 {
			if clip.End > dur {
				clip.End = dur
			}
			if clip.Start > dur {
				clip.Start = dur
			}
		}
		if clip.End < clip.Start {
			clip.End = clip.Start
		}
		if _, seen := byFile[m.File]; !seen {
			fileOrder = append(fileOrder, m.File)
		}
		byFile[m.File] = append(byFile[m.File], clip)
	}

	clips := make([]Clip, 0, len(matches))
	for _, file := range fileOrder {
		clips = append(clips, mergeFile(byFile[file])...)
	}

	if opts.Randomize {
		shuffle := rand.Shuffle
		if opts.Rand != nil {
			shuffle = opts.Rand.Shuffle
		}
		shuffle(len(clips), func(i, j int) {
			clips[i], clips[j] = clips[j], clips[i]
		})
	}

	if opts.MaxClips > 0 && len(clips) > opts.MaxClips {
		clips = clips[:opts.MaxClips]
	}
	return clips
}

// mergeFile merges one file's padded clips. Input order does not
// matter; spans that overlap or touch collapse into their union and
// their texts join in time order.
func mergeFile(clips []Clip) []Clip {
	sort.SliceStable(clips, func(i, j int) bool {
		return clips[i].Start < clips[j].Start
	})
	out := clips[:1]
	for _, clip := range clips[1:] {
		last := &out[len(out)-1]
		if last.End+mergeEpsilon >= clip.Start {
			if clip.End > last.End {
				last.End = clip.End
			}
			if clip.Text != "" && clip.Text != last.Text {
				if last.Text != "" {
					last.Text += " "
				}
				last.Text += clip.Text
			}
			continue
		}
		out = append(out, clip)
	}
	return out
}

// TotalDuration sums clip lengths.
func TotalDuration(clips []Clip) float64 {
	var total float64
	for _, c := range clips {
		total += c.Duration()
	}
	return total
}
