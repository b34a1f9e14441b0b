// Package logging assembles structured slog loggers and formatting helpers used
// across mkvlang.
//
// It owns the console/JSON handlers, the optional rotating log file, and the
// context helpers that tag every line emitted while a file is processed with
// the run identifier and the file path. A no-op logger is provided for tests
// and wiring code that cannot fail.
//
// Prefer these constructors over hand-rolled slog setup so the parser, the
// batch runner and the CLI emit records with the same shape.
package logging
