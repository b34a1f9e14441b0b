package main

import (
	"bytes"
	"strings"
	"testing"

	"mkvlang/internal/deps"
	"mkvlang/internal/preflight"
)

func TestRenderStatusLine(t *testing.T) {
	line := renderStatusLine("mkvinfo", statusOK, "Ready", false)
	if !strings.HasPrefix(line, "  mkvinfo:") {
		t.Fatalf("unexpected prefix: %q", line)
	}
	requireContains(t, line, "[OK] Ready")

	bare := renderStatusLine("Run lock", statusWarn, "", false)
	if !strings.HasSuffix(bare, "[WARN]") {
		t.Fatalf("expected bare status, got %q", bare)
	}

	colored := renderStatusLine("mkvmerge", statusError, "missing", true)
	if !strings.HasPrefix(colored, ansiRed) || !strings.HasSuffix(colored, ansiReset) {
		t.Fatalf("expected red line, got %q", colored)
	}
}

func TestRenderSectionHeader(t *testing.T) {
	lines := renderSectionHeader(" Tools ", false)
	if len(lines) != 2 {
		t.Fatalf("expected two lines, got %d", len(lines))
	}
	if lines[0] != "== Tools ==" {
		t.Fatalf("header = %q", lines[0])
	}
	if lines[1] != strings.Repeat("-", len(lines[0])) {
		t.Fatalf("rule = %q", lines[1])
	}
}

func TestStatusPrinterSections(t *testing.T) {
	var buf bytes.Buffer
	p := newStatusPrinter(&buf)
	if p.color {
		t.Fatal("buffers should never be colorized")
	}

	p.section("Tools")
	p.tools([]deps.Status{
		{Requirement: deps.Requirement{Name: "mkvinfo"}, Path: "/usr/bin/mkvinfo", Available: true},
		{Requirement: deps.Requirement{Name: "mkvmerge"}, Path: "/usr/bin/mkvmerge", Available: true},
		{Requirement: deps.Requirement{Name: "extra", Optional: true}, Detail: "not installed"},
		{Requirement: deps.Requirement{Name: "broken"}, Detail: "command \"broken\" not found"},
	}, map[string]string{"mkvmerge": "mkvmerge v81.0"})
	p.section("Paths")
	p.checks([]preflight.Result{
		{Name: "State directory", Passed: true, Detail: "/tmp/state (read/write ok)"},
		{Name: "History directory", Detail: "/nope (error: does not exist)"},
	})

	lines := strings.Split(strings.TrimRight(buf.String(), "\n"), "\n")
	want := []string{
		"== Tools ==",
		"-----------",
		"  mkvinfo:             [OK] Ready (/usr/bin/mkvinfo)",
		"  mkvmerge:            [OK] mkvmerge v81.0 (/usr/bin/mkvmerge)",
		"  extra:               [WARN] not installed",
		"  broken:              [ERROR] command \"broken\" not found",
		"",
		"== Paths ==",
		"-----------",
		"  State directory:     [OK] /tmp/state (read/write ok)",
		"  History directory:   [ERROR] /nope (error: does not exist)",
	}
	if len(lines) != len(want) {
		t.Fatalf("got %d lines, want %d:\n%s", len(lines), len(want), buf.String())
	}
	for i := range want {
		if lines[i] != want[i] {
			t.Fatalf("line %d = %q, want %q", i, lines[i], want[i])
		}
	}
}
