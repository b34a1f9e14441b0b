package main

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/mattn/go-isatty"

	"mkvlang/internal/deps"
	"mkvlang/internal/preflight"
)

type statusKind int

const (
	statusInfo statusKind = iota
	statusOK
	statusWarn
	statusError
)

const (
	ansiReset  = "\x1b[0m"
	ansiRed    = "\x1b[31m"
	ansiGreen  = "\x1b[32m"
	ansiYellow = "\x1b[33m"
	ansiBlue   = "\x1b[34m"
)

var statusStyles = map[statusKind]struct{ label, color string }{
	statusInfo:  {"INFO", ansiBlue},
	statusOK:    {"OK", ansiGreen},
	statusWarn:  {"WARN", ansiYellow},
	statusError: {"ERROR", ansiRed},
}

const statusLabelWidth = 20

// statusPrinter writes the sectioned report printed by `mkvlang status`.
type statusPrinter struct {
	out   io.Writer
	color bool
	lines int
}

func newStatusPrinter(out io.Writer) *statusPrinter {
	return &statusPrinter{out: out, color: shouldColorize(out)}
}

func (p *statusPrinter) section(title string) {
	if p.lines > 0 {
		fmt.Fprintln(p.out)
	}
	for _, line := range renderSectionHeader(title, p.color) {
		p.emit(line)
	}
}

func (p *statusPrinter) line(label string, kind statusKind, message string) {
	p.emit(renderStatusLine(label, kind, message, p.color))
}

func (p *statusPrinter) emit(line string) {
	fmt.Fprintln(p.out, line)
	p.lines++
}

// tools reports one line per mkvtoolnix executable. versions maps a tool name
// to its --version banner when known.
func (p *statusPrinter) tools(statuses []deps.Status, versions map[string]string) {
	for _, s := range statuses {
		switch {
		case s.Available:
			banner := versions[s.Name]
			if banner == "" {
				banner = "Ready"
			}
			p.line(s.Name, statusOK, banner+" ("+s.Path+")")
		case s.Optional:
			p.line(s.Name, statusWarn, s.Detail)
		default:
			p.line(s.Name, statusError, s.Detail)
		}
	}
}

func (p *statusPrinter) checks(results []preflight.Result) {
	for _, r := range results {
		kind := statusError
		if r.Passed {
			kind = statusOK
		}
		p.line(r.Name, kind, r.Detail)
	}
}

// renderStatusLine formats "  label:   [KIND] message", padded so the kinds
// line up.
func renderStatusLine(label string, kind statusKind, message string, colorize bool) string {
	style, ok := statusStyles[kind]
	if !ok {
		style = statusStyles[statusInfo]
	}
	text := "[" + style.label + "]"
	if message != "" {
		text += " " + message
	}
	line := fmt.Sprintf("  %-*s %s", statusLabelWidth, label+":", text)
	if colorize {
		return style.color + line + ansiReset
	}
	return line
}

func renderSectionHeader(title string, colorize bool) []string {
	heading := "== " + strings.TrimSpace(title) + " =="
	rule := strings.Repeat("-", len(heading))
	if colorize {
		return []string{ansiBlue + heading + ansiReset, ansiBlue + rule + ansiReset}
	}
	return []string{heading, rule}
}

func shouldColorize(writer io.Writer) bool {
	file, ok := writer.(*os.File)
	if !ok {
		return false
	}
	fd := file.Fd()
	return isatty.IsTerminal(fd) || isatty.IsCygwinTerminal(fd)
}
