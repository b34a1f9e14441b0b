// Package mkvmerge rewrites containers with per-track language directives.
package mkvmerge

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os/exec"
	"strconv"
	"strings"

	"mkvlang/internal/logging"
)

// LanguageDirective sets the language of one track, addressed by its mkvmerge track ID.
type LanguageDirective struct {
	TrackNumber int
	Language    string
}

func (d LanguageDirective) String() string {
	return strconv.Itoa(d.TrackNumber) + ":" + d.Language
}

// Request describes a single remux: read Input, write Output with Directives applied.
type Request struct {
	Input      string
	Output     string
	Directives []LanguageDirective
}

func (r Request) validate() error {
	if strings.TrimSpace(r.Input) == "" {
		return errors.New("input path is required")
	}
	if strings.TrimSpace(r.Output) == "" {
		return errors.New("output path is required")
	}
	if r.Input == r.Output {
		return fmt.Errorf("output %q must differ from input", r.Output)
	}
	if len(r.Directives) == 0 {
		return errors.New("at least one language directive is required")
	}
	for _, d := range r.Directives {
		if d.TrackNumber < 0 {
			return fmt.Errorf("invalid track number %d", d.TrackNumber)
		}
		if strings.TrimSpace(d.Language) == "" {
			return fmt.Errorf("track %d: language is required", d.TrackNumber)
		}
	}
	return nil
}

// BuildArgs renders "-o <output> [--language N:lang]... <input>" with directives in order.
func BuildArgs(req Request) []string {
	args := make([]string, 0, 3+2*len(req.Directives))
	args = append(args, "-o", req.Output)
	for _, d := range req.Directives {
		args = append(args, "--language", d.String())
	}
	return append(args, req.Input)
}

// commandRunner executes a command and returns its combined output.
type commandRunner func(ctx context.Context, name string, args ...string) ([]byte, error)

// Muxer drives mkvmerge.
type Muxer struct {
	binary string
	logger *slog.Logger
	run    commandRunner
}

// NewMuxer constructs a muxer for the given mkvmerge executable.
func NewMuxer(binary string, logger *slog.Logger) *Muxer {
	binary = strings.TrimSpace(binary)
	if binary == "" {
		binary = "mkvmerge"
	}
	return &Muxer{
		binary: binary,
		logger: logging.NewComponentLogger(logger, "mkvmerge"),
		run:    defaultCommandRunner,
	}
}

// WithCommandRunner allows injecting a custom command runner for tests.
func (m *Muxer) WithCommandRunner(r commandRunner) {
	if m != nil && r != nil {
		m.run = r
	}
}

// Binary returns the mkvmerge executable the muxer invokes.
func (m *Muxer) Binary() string {
	return m.binary
}

// CommandLine renders the command Remux would execute, quoting arguments that need it.
func (m *Muxer) CommandLine(req Request) string {
	parts := append([]string{m.binary}, BuildArgs(req)...)
	for i, part := range parts {
		if part == "" || strings.ContainsAny(part, " \t\"'\\$`") {
			parts[i] = strconv.Quote(part)
		}
	}
	return strings.Join(parts, " ")
}

// Remux runs mkvmerge for req. Exit status 1 means mkvmerge finished with
// warnings and the output is usable; it is logged, not returned.
func (m *Muxer) Remux(ctx context.Context, req Request) error {
	if m == nil {
		return errors.New("mkvmerge muxer not initialized")
	}
	if err := req.validate(); err != nil {
		return fmt.Errorf("mkvmerge request: %w", err)
	}
	logger := logging.WithContext(ctx, m.logger)
	args := BuildArgs(req)

	logger.Debug("executing mkvmerge",
		logging.String("command", m.CommandLine(req)),
		logging.Int("directives", len(req.Directives)),
	)

	output, err := m.run(ctx, m.binary, args...)
	if err == nil {
		return nil
	}
	if ctxErr := ctx.Err(); ctxErr != nil {
		return ctxErr
	}
	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) && exitErr.ExitCode() == 1 {
		logging.WarnWithContext(logger, "mkvmerge finished with warnings", "mux_warnings",
			logging.String("output", strings.TrimSpace(string(output))),
			logging.String(logging.FieldImpact, "rewritten file kept"),
			logging.String(logging.FieldErrorHint, "inspect the rewritten file if playback misbehaves"),
		)
		return nil
	}
	return fmt.Errorf("mkvmerge failed: %w: %s", err, strings.TrimSpace(string(output)))
}

func defaultCommandRunner(ctx context.Context, name string, args ...string) ([]byte, error) {
	cmd := exec.CommandContext(ctx, name, args...)
	return cmd.CombinedOutput()
}
