package mkvinfo

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os/exec"
	"strings"

	"mkvlang/internal/logging"
)

// ErrProbeFailed reports that mkvinfo exited unsuccessfully and its output held no usable tracks.
var ErrProbeFailed = errors.New("mkvinfo probe failed")

// commandRunner executes a command and returns its combined output.
type commandRunner func(ctx context.Context, name string, args ...string) ([]byte, error)

// Prober runs mkvinfo against container files.
type Prober struct {
	binary  string
	grammar *Grammar
	logger  *slog.Logger
	run     commandRunner
}

// NewProber constructs a prober for the given mkvinfo executable.
func NewProber(binary string, logger *slog.Logger) *Prober {
	binary = strings.TrimSpace(binary)
	if binary == "" {
		binary = "mkvinfo"
	}
	return &Prober{
		binary:  binary,
		grammar: DefaultGrammar,
		logger:  logging.NewComponentLogger(logger, "mkvinfo"),
		run:     defaultCommandRunner,
	}
}

// WithCommandRunner allows injecting a custom command runner for tests.
func (p *Prober) WithCommandRunner(r commandRunner) {
	if p != nil && r != nil {
		p.run = r
	}
}

// WithGrammar swaps the line patterns used to parse output.
func (p *Prober) WithGrammar(g *Grammar) {
	if p != nil && g != nil {
		p.grammar = g
	}
}

// Probe runs mkvinfo on path and parses its output.
//
// A binary that cannot be started is an error. A non-zero exit is logged and
// the output is still parsed; it only becomes ErrProbeFailed when no track
// could be recovered from it.
func (p *Prober) Probe(ctx context.Context, path string) (MediaInfo, error) {
	if p == nil {
		return MediaInfo{}, errors.New("mkvinfo prober not initialized")
	}
	path = strings.TrimSpace(path)
	if path == "" {
		return MediaInfo{}, errors.New("mkvinfo probe: empty path")
	}
	logger := logging.WithContext(ctx, p.logger)

	output, runErr := p.run(ctx, p.binary, path)
	if runErr != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return MediaInfo{}, ctxErr
		}
		var exitErr *exec.ExitError
		if !errors.As(runErr, &exitErr) {
			return MediaInfo{}, fmt.Errorf("run %s: %w", p.binary, runErr)
		}
		logging.WarnWithContext(logger, "mkvinfo exited with non-zero status", "probe_exit_nonzero",
			logging.Int("exit_code", exitErr.ExitCode()),
			logging.String("output", lastLine(output)),
			logging.String(logging.FieldImpact, "parsing whatever output was produced"),
			logging.String(logging.FieldErrorHint, "run mkvinfo manually to inspect the file"),
		)
	}

	parsed := p.grammar.Parse(string(output), logger)
	info := MediaInfo{Path: path, Tracks: parsed.Tracks, Skipped: parsed.Skipped}
	if runErr != nil && len(info.Tracks) == 0 {
		return info, fmt.Errorf("%w: %s: %v: %s", ErrProbeFailed, path, runErr, lastLine(output))
	}
	return info, nil
}

func lastLine(output []byte) string {
	text := strings.TrimSpace(string(output))
	if idx := strings.LastIndexByte(text, '\n'); idx >= 0 {
		text = strings.TrimSpace(text[idx+1:])
	}
	return text
}

func defaultCommandRunner(ctx context.Context, name string, args ...string) ([]byte, error) {
	cmd := exec.CommandContext(ctx, name, args...)
	return cmd.CombinedOutput()
}
