package mermaid

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"

	"github.com/goliatone/go-publisher/internal/logging"
	"github.com/goliatone/go-publisher/pkg/interfaces"
)

// DefaultCommand is the mermaid-cli executable.
const DefaultCommand = "mmdc"

// CLIRenderer renders diagrams by shelling out to mermaid-cli.
type CLIRenderer struct {
	command string
	args    []string
	logger  interfaces.Logger
}

var _ interfaces.DiagramRenderer = (*CLIRenderer)(nil)

// RendererOption customises a CLIRenderer.
type RendererOption func(*CLIRenderer)

// WithArgs appends extra mmdc flags, e.g. "-t", "dark".
func WithArgs(args ...string) RendererOption {
	return func(r *CLIRenderer) {
		r.args = append(r.args, args...)
	}
}

func WithRendererLogger(logger interfaces.Logger) RendererOption {
	return func(r *CLIRenderer) {
		r.logger = logging.Ensure(logger)
	}
}

// NewCLIRenderer builds a renderer invoking command, or mmdc when blank.
func NewCLIRenderer(command string, opts ...RendererOption) *CLIRenderer {
	if strings.TrimSpace(command) == "" {
		command = DefaultCommand
	}
	r := &CLIRenderer{
		command: command,
		args:    []string{"-b", "white", "-s", "2"},
		logger:  logging.NoOp(),
	}
	for _, opt := range opts {
		if opt != nil {
			opt(r)
		}
	}
	return r
}

// Render writes definition to a temporary .mmd file and asks mmdc to
// produce outputPath.
func (r *CLIRenderer) Render(ctx context.Context, definition []byte, outputPath string) error {
	if err := os.MkdirAll(filepath.Dir(outputPath), 0o755); err != nil {
		return fmt.Errorf("mermaid: create output dir: %w", err)
	}
	input, err := os.CreateTemp("", "wxpub-*.mmd")
	if err != nil {
		return fmt.Errorf("mermaid: create input: %w", err)
	}
	defer os.Remove(input.Name())
	if _, err := input.Write(definition); err != nil {
		input.Close()
		return fmt.Errorf("mermaid: write input: %w", err)
	}
	if err := input.Close(); err != nil {
		return fmt.Errorf("mermaid: close input: %w", err)
	}

	args := append([]string{"-i", input.Name(), "-o", outputPath}, r.args...)
	cmd := exec.CommandContext(ctx, r.command, args...)
	var stderr bytes.Buffer
	cmd.Stderr = &stderr

	r.logger.Debug("mermaid.render.started", "output", outputPath)
	if err := cmd.Run(); err != nil {
		return fmt.Errorf("mermaid: %s failed: %w: %s", r.command, err, strings.TrimSpace(stderr.String()))
	}
	return nil
}
