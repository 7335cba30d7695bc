package embed

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"os/exec"
	"strings"

	"voxcut/internal/services"
)

var commandContext = exec.CommandContext

// Option configures the CLI client.
type Option func(*CLI)

// WithBinary overrides the default helper binary name.
func WithBinary(binary string) Option {
	return func(c *CLI) {
		if binary != "" {
			c.binary = binary
		}
	}
}

// WithModel selects the sentence embedding model the helper loads.
func WithModel(model string) Option {
	return func(c *CLI) {
		if model != "" {
			c.model = model
		}
	}
}

// CLI wraps the voxcut-embed helper, which hosts the sentence
// embedding model. One invocation embeds one batch: the request goes
// in on stdin as JSON, the vectors come back on stdout.
type CLI struct {
	binary string
	model  string
}

// NewCLI constructs a CLI client using defaults.
func NewCLI(opts ...Option) *CLI {
	cli := &CLI{binary: "voxcut-embed", model: "all-MiniLM-L6-v2"}
	for _, opt := range opts {
		opt(cli)
	}
	return cli
}

type embedRequest struct {
	Model string   `json:"model"`
	Texts []string `json:"texts"`
}

type embedResponse struct {
	Vectors [][]float32 `json:"vectors"`
	Error   string      `json:"error,omitempty"`
}

// Embed embeds one text.
func (c *CLI) Embed(ctx context.Context, text string) ([]float32, error) {
	vectors, err := c.EmbedBatch(ctx, []string{text})
	if err != nil {
		return nil, err
	}
	return vectors[0], nil
}

// EmbedBatch embeds texts in one helper invocation, preserving order.
func (c *CLI) EmbedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	if len(texts) == 0 {
		return nil, nil
	}
	payload, err := json.Marshal(embedRequest{Model: c.model, Texts: texts})
	if err != nil {
		return nil, services.Wrap(services.ErrEmbeddingUnavailable, "embed", "batch", "encode request", err)
	}

	cmd := commandContext(ctx, c.binary, "--model", c.model) //nolint:gosec
	cmd.Stdin = bytes.NewReader(payload)
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr
	if err := cmd.Run(); err != nil {
		detail := strings.TrimSpace(stderr.String())
		if detail == "" {
			detail = c.binary + " failed"
		}
		return nil, services.Wrap(services.ErrEmbeddingUnavailable, "embed", "batch", detail, err)
	}

	var resp embedResponse
	if err := json.Unmarshal(stdout.Bytes(), &resp); err != nil {
		return nil, services.Wrap(services.ErrEmbeddingUnavailable, "embed", "batch", "decode response", err)
	}
	if resp.Error != "" {
		return nil, services.Wrap(services.ErrEmbeddingUnavailable, "embed", "batch", resp.Error, nil)
	}
	if len(resp.Vectors) != len(texts) {
		return nil, services.Wrap(services.ErrEmbeddingUnavailable, "embed", "batch",
			fmt.Sprintf("expected %d vectors, got %d", len(texts), len(resp.Vectors)), nil)
	}
	dim := len(resp.Vectors[0])
	for i, vec := range resp.Vectors {
		if len(vec) == 0 || len(vec) != dim {
			return nil, services.Wrap(services.ErrEmbeddingUnavailable, "embed", "batch",
				fmt.Sprintf("vector %d has dimension %d, expected %d", i, len(vec), dim), nil)
		}
	}
	return resp.Vectors, nil
}

var _ Embedder = (*CLI)(nil)
