package language

import (
	"errors"
	"testing"

	"voxcut/internal/services"
)

func TestNormalize(t *testing.T) {
	tests := []struct {
		input    string
		expected string
	}{
		// Supported codes pass through.
		{"en", "en"},
		{"EN", "en"},
		{" es ", "es"},
		{"haw", "haw"},
		{"jw", "jw"},
		// ISO 639-2/T codes canonicalize.
		{"eng", "en"},
		{"spa", "es"},
		{"fra", "fr"},
		{"deu", "de"},
		{"jpn", "ja"},
		{"zho", "zh"},
		// Legacy ISO 639-2/B codes fall back to the word table.
		{"fre", "fr"},
		{"ger", "de"},
		{"dut", "nl"},
		{"chi", "zh"},
		// Regional tags collapse to their base.
		{"en-US", "en"},
		{"pt-BR", "pt"},
		{"zh-Hans", "zh"},
		// Full names.
		{"english", "en"},
		{"French", "fr"},
		{"GERMAN", "de"},
		{"mandarin", "zh"},
		// Codes the model spells differently from ISO.
		{"jv", "jw"},
		// Empty means autodetect.
		{"", ""},
		{"  ", ""},
	}
	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, err := Normalize(tt.input)
			if err != nil {
				t.Fatalf("Normalize(%q): %v", tt.input, err)
			}
			if got != tt.expected {
				t.Fatalf("Normalize(%q) = %q, want %q", tt.input, got, tt.expected)
			}
		})
	}
}

func TestNormalizeRejectsUnknown(t *testing.T) {
	for _, input := range []string{"xq", "klingon", "zz-ZZ", "12"} {
		_, err := Normalize(input)
		if !errors.Is(err, services.ErrValidation) {
			t.Fatalf("Normalize(%q) should fail validation, got %v", input, err)
		}
	}
}

func TestDisplayName(t *testing.T) {
	tests := []struct {
		input    string
		expected string
	}{
		{"en", "English"},
		{"fr", "French"},
		{"ja", "Japanese"},
		{"", "Auto-detect"},
	}
	for _, tt := range tests {
		if got := DisplayName(tt.input); got != tt.expected {
			t.Fatalf("DisplayName(%q) = %q, want %q", tt.input, got, tt.expected)
		}
	}
}

func TestSupportedIsSortedAndComplete(t *testing.T) {
	codes := Supported()
	if len(codes) != len(whisperCodes) {
		t.Fatalf("Supported() returned %d codes, want %d", len(codes), len(whisperCodes))
	}
	for i := 1; i < len(codes); i++ {
		if codes[i-1] >= codes[i] {
			t.Fatalf("codes not sorted at %d: %q >= %q", i, codes[i-1], codes[i])
		}
	}
	seen := make(map[string]struct{}, len(codes))
	for _, code := range codes {
		seen[code] = struct{}{}
	}
	for _, code := range []string{"en", "zh", "haw", "jw"} {
		if _, ok := seen[code]; !ok {
			t.Fatalf("Supported() missing %q", code)
		}
	}
}
