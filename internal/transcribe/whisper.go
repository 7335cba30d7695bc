package transcribe

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"os/exec"
	"strconv"
	"strings"

	"voxcut/internal/services"
	"voxcut/internal/transcript"
)

var commandContext = exec.CommandContext

// Request names the media file to transcribe and the backend settings.
type Request struct {
	MediaPath string
	Settings  Settings
}

// Backend produces transcript segments for a media file. Implementations
// call emit once per completed chunk, in order, and observe ctx between
// chunks so cancellation lands on a chunk boundary.
type Backend interface {
	Transcribe(ctx context.Context, req Request, emit func(transcript.Segment) error) error
}

// Option configures the CLI backend.
type Option func(*CLI)

// WithBinary overrides the default helper binary name.
func WithBinary(binary string) Option {
	return func(c *CLI) {
		if strings.TrimSpace(binary) != "" {
			c.binary = binary
		}
	}
}

// CLI bridges to the Whisper helper, which writes one JSON segment per
// line as chunks finish.
type CLI struct {
	binary string
}

// NewCLI constructs a CLI backend using defaults.
func NewCLI(opts ...Option) *CLI {
	cli := &CLI{binary: "voxcut-whisper"}
	for _, opt := range opts {
		opt(cli)
	}
	return cli
}

type wireWord struct {
	Word  string  `json:"word"`
	Start float64 `json:"start"`
	End   float64 `json:"end"`
}

type wireSegment struct {
	Text    string     `json:"text"`
	Start   float64    `json:"start"`
	End     float64    `json:"end"`
	Speaker string     `json:"speaker"`
	Words   []wireWord `json:"words"`
}

func buildArgs(req Request) []string {
	s := req.Settings
	args := []string{
		req.MediaPath,
		"--output_format", "jsonl",
		"--model", s.Model,
		"--device", s.Device,
		"--compute_type", s.ComputeType,
		"--beam_size", strconv.Itoa(s.BeamSize),
		"--best_of", strconv.Itoa(s.BestOf),
	}
	if strings.TrimSpace(s.Language) != "" {
		args = append(args, "--language", s.Language)
	}
	if s.VADFilter {
		args = append(args, "--vad_filter")
	}
	if s.NormalizeAudio {
		args = append(args, "--normalize_audio")
	}
	return args
}

// Transcribe launches the helper and forwards each finished segment to
// emit. An emit error stops the run and kills the helper.
func (c *CLI) Transcribe(ctx context.Context, req Request, emit func(transcript.Segment) error) error {
	if strings.TrimSpace(req.MediaPath) == "" {
		return services.Wrap(services.ErrValidation, "transcribe", "backend", "media path required", nil)
	}

	runCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	cmd := commandContext(runCtx, c.binary, buildArgs(req)...)
	var stderr bytes.Buffer
	cmd.Stderr = &stderr
	stdout, err := cmd.StdoutPipe()
	if err != nil {
		return fmt.Errorf("stdout pipe: %w", err)
	}
	if err := cmd.Start(); err != nil {
		return services.Wrap(services.ErrExternalTool, "transcribe", "backend", "start "+c.binary, err)
	}

	var emitErr error
	scanner := bufio.NewScanner(stdout)
	scanner.Buffer(make([]byte, 0, 64*1024), 4*1024*1024)
	for scanner.Scan() {
		if err := ctx.Err(); err != nil {
			emitErr = err
			break
		}
		line := bytes.TrimSpace(scanner.Bytes())
		if len(line) == 0 {
			continue
		}
		var wire wireSegment
		if err := json.Unmarshal(line, &wire); err != nil {
			continue
		}
		if err := emit(toSegment(wire)); err != nil {
			emitErr = err
			break
		}
	}
	if emitErr != nil {
		cancel()
		_ = cmd.Wait()
		return emitErr
	}
	if err := scanner.Err(); err != nil {
		cancel()
		_ = cmd.Wait()
		return fmt.Errorf("read %s output: %w", c.binary, err)
	}

	if err := cmd.Wait(); err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return ctxErr
		}
		return services.Wrap(services.ErrExternalTool, "transcribe", "backend", "transcription failed: "+condenseStderr(stderr.String()), err)
	}
	return nil
}

func toSegment(wire wireSegment) transcript.Segment {
	seg := transcript.Segment{
		Text:    strings.TrimSpace(wire.Text),
		Start:   wire.Start,
		End:     wire.End,
		Speaker: wire.Speaker,
	}
	for _, w := range wire.Words {
		seg.Words = append(seg.Words, transcript.Word{
			Text:  strings.TrimSpace(w.Word),
			Start: w.Start,
			End:   w.End,
		})
	}
	return seg
}

func condenseStderr(raw string) string {
	lines := strings.Split(strings.TrimSpace(raw), "\n")
	for i := len(lines) - 1; i >= 0; i-- {
		if line := strings.TrimSpace(lines[i]); line != "" {
			return line
		}
	}
	return "no detail"
}

var _ Backend = (*CLI)(nil)
