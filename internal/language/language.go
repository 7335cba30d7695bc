package language

import (
	"fmt"
	"sort"
	"strings"

	xlanguage "golang.org/x/text/language"
	"golang.org/x/text/language/display"

	"voxcut/internal/services"
)

// whisperCodes is the language set the Whisper model family accepts,
// keyed the way the model expects ("jw" for Javanese, "haw" for
// Hawaiian).
var whisperCodes = []string{
	"af", "am", "ar", "as", "az", "ba", "be", "bg", "bn", "bo", "br", "bs",
	"ca", "cs", "cy", "da", "de", "el", "en", "es", "et", "eu", "fa", "fi",
	"fo", "fr", "gl", "gu", "ha", "haw", "he", "hi", "hr", "ht", "hu", "hy",
	"id", "is", "it", "ja", "jw", "ka", "kk", "km", "kn", "ko", "la", "lb",
	"ln", "lo", "lt", "lv", "mg", "mi", "mk", "ml", "mn", "mr", "ms", "mt",
	"my", "ne", "nl", "nn", "no", "oc", "pa", "pl", "ps", "pt", "ro", "ru",
	"sa", "sd", "si", "sk", "sl", "sn", "so", "sq", "sr", "su", "sv", "sw",
	"ta", "te", "tg", "th", "tk", "tl", "tr", "tt", "uk", "ur", "uz", "vi",
	"yi", "yo", "zh",
}

// wordForms maps full names and legacy ISO 639-2/B codes that BCP 47
// parsing rejects.
var wordForms = map[string]string{
	"english":    "en",
	"spanish":    "es",
	"french":     "fr",
	"german":     "de",
	"italian":    "it",
	"portuguese": "pt",
	"japanese":   "ja",
	"javanese":   "jw",
	"korean":     "ko",
	"chinese":    "zh",
	"mandarin":   "zh",
	"russian":    "ru",
	"arabic":     "ar",
	"hindi":      "hi",
	"dutch":      "nl",
	"polish":     "pl",
	"swedish":    "sv",
	"danish":     "da",
	"norwegian":  "no",
	"finnish":    "fi",
	"turkish":    "tr",
	"ukrainian":  "uk",
	"vietnamese": "vi",
	"hebrew":     "he",
	"greek":      "el",
	"czech":      "cs",
	"hungarian":  "hu",
	"romanian":   "ro",
	"thai":       "th",
	"indonesian": "id",
	"fre":        "fr",
	"ger":        "de",
	"dut":        "nl",
	"chi":        "zh",
	"gre":        "el",
	"cze":        "cs",
	"rum":        "ro",
	"ice":        "is",
	"alb":        "sq",
	"arm":        "hy",
	"baq":        "eu",
	"bur":        "my",
	"geo":        "ka",
	"mac":        "mk",
	"may":        "ms",
	"per":        "fa",
	"slo":        "sk",
	"tib":        "bo",
	"wel":        "cy",
}

// canonRemap undoes BCP 47 canonicalization where the model's code
// differs from the current ISO code.
var canonRemap = map[string]string{
	"jv":  "jw",
	"fil": "tl",
}

var (
	supported    map[string]struct{}
	matcher      xlanguage.Matcher
	matcherCodes []string
)

func init() {
	supported = make(map[string]struct{}, len(whisperCodes))
	for _, code := range whisperCodes {
		supported[code] = struct{}{}
	}

	tags := make([]xlanguage.Tag, 0, len(whisperCodes))
	matcherCodes = make([]string, 0, len(whisperCodes))
	for _, code := range whisperCodes {
		tag, err := xlanguage.Parse(code)
		if err != nil {
			continue
		}
		tags = append(tags, tag)
		matcherCodes = append(matcherCodes, code)
	}
	matcher = xlanguage.NewMatcher(tags)
}

// Normalize maps user input to a supported two-letter code. Empty input
// means autodetect and normalizes to the empty string without error.
func Normalize(input string) (string, error) {
	trimmed := strings.ToLower(strings.TrimSpace(input))
	if trimmed == "" {
		return "", nil
	}
	if _, ok := supported[trimmed]; ok {
		return trimmed, nil
	}
	if code, ok := wordForms[trimmed]; ok {
		return code, nil
	}
	if tag, err := xlanguage.Parse(trimmed); err == nil {
		if code, ok := matchTag(tag); ok {
			return code, nil
		}
	}
	return "", services.Wrap(services.ErrValidation, "language", "normalize",
		fmt.Sprintf("unrecognized language %q; use a two-letter code like \"en\" or a name like \"english\"", input), nil)
}

func matchTag(tag xlanguage.Tag) (string, bool) {
	if base, conf := tag.Base(); conf >= xlanguage.High {
		code := base.String()
		if remapped, ok := canonRemap[code]; ok {
			code = remapped
		}
		if _, ok := supported[code]; ok {
			return code, true
		}
	}
	if _, index, conf := matcher.Match(tag); conf >= xlanguage.High {
		return matcherCodes[index], true
	}
	return "", false
}

// DisplayName returns a human-readable name for a supported code, or
// the uppercased input when no name is known. Empty input reads as
// autodetection.
func DisplayName(code string) string {
	trimmed := strings.ToLower(strings.TrimSpace(code))
	if trimmed == "" {
		return "Auto-detect"
	}
	if tag, err := xlanguage.Parse(trimmed); err == nil {
		if name := display.English.Tags().Name(tag); name != "" {
			return name
		}
	}
	return strings.ToUpper(trimmed)
}

// Supported returns the accepted two-letter codes in sorted order.
func Supported() []string {
	codes := make([]string, len(whisperCodes))
	copy(codes, whisperCodes)
	sort.Strings(codes)
	return codes
}
