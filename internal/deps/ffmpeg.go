package deps

import (
	"bufio"
	"bytes"
	"context"
	"fmt"
	"os/exec"
	"strings"
	"sync"
)

// hwH264Preference orders hardware H.264 encoders from most to least
// desirable when more than one is compiled into the ffmpeg build.
var hwH264Preference = []string{
	"h264_videotoolbox",
	"h264_nvenc",
	"h264_vaapi",
	"h264_qsv",
}

// Encoders reports which encoders an ffmpeg build supports.
type Encoders struct {
	available map[string]struct{}
}

// Supports reports whether the probed ffmpeg build provides the named encoder.
func (e Encoders) Supports(name string) bool {
	_, ok := e.available[strings.TrimSpace(name)]
	return ok
}

// BestH264 returns the preferred available H.264 encoder, hardware
// first, falling back to libx264 even when the probe saw neither so
// callers always have a codec name to hand ffmpeg.
func (e Encoders) BestH264() string {
	for _, name := range hwH264Preference {
		if e.Supports(name) {
			return name
		}
	}
	return "libx264"
}

// HardwareH264 reports whether BestH264 resolves to a hardware encoder.
func (e Encoders) HardwareH264() bool {
	return e.BestH264() != "libx264"
}

var commandContext = exec.CommandContext

var (
	encoderCacheMu sync.Mutex
	encoderCache   = make(map[string]Encoders)
)

// ProbeEncoders runs `ffmpeg -encoders` and parses the encoder table.
// The result is cached per binary for the process lifetime since the
// installed ffmpeg build does not change under a running process.
func ProbeEncoders(ctx context.Context, binary string) (Encoders, error) {
	binary = strings.TrimSpace(binary)
	if binary == "" {
		binary = "ffmpeg"
	}

	encoderCacheMu.Lock()
	cached, ok := encoderCache[binary]
	encoderCacheMu.Unlock()
	if ok {
		return cached, nil
	}

	cmd := commandContext(ctx, binary, "-hide_banner", "-encoders")
	output, err := cmd.Output()
	if err != nil {
		return Encoders{}, fmt.Errorf("probe encoders: %w", err)
	}

	probed := Encoders{available: parseEncoderTable(output)}
	encoderCacheMu.Lock()
	encoderCache[binary] = probed
	encoderCacheMu.Unlock()
	return probed, nil
}

// parseEncoderTable extracts encoder names from the `-encoders` listing.
// Names appear as the second column once the " ------" separator has
// passed; everything before it is the flag legend.
func parseEncoderTable(output []byte) map[string]struct{} {
	available := make(map[string]struct{})
	scanner := bufio.NewScanner(bytes.NewReader(output))
	seenSeparator := false
	for scanner.Scan() {
		line := scanner.Text()
		if !seenSeparator {
			if strings.Contains(line, "------") {
				seenSeparator = true
			}
			continue
		}
		fields := strings.Fields(line)
		if len(fields) < 2 {
			continue
		}
		available[fields[1]] = struct{}{}
	}
	return available
}
