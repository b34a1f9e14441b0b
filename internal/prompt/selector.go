// Package prompt asks the user which subtitle track to relabel when a file
// carries several.
package prompt

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"

	"mkvlang/internal/batch"
	"mkvlang/internal/language"
	"mkvlang/internal/logging"
	"mkvlang/internal/mkvinfo"
)

// Selector reads subtitle choices from a line-oriented reader.
type Selector struct {
	in     *bufio.Reader
	out    io.Writer
	logger *slog.Logger
}

// NewSelector returns a selector that prints to out and reads answers from in.
func NewSelector(in io.Reader, out io.Writer, logger *slog.Logger) *Selector {
	return &Selector{
		in:     bufio.NewReader(in),
		out:    out,
		logger: logging.NewComponentLogger(logger, "prompt"),
	}
}

// SelectSubtitle lists candidates and waits for an index or "N". Anything
// else is rejected and asked again. End of input declines the file.
func (s *Selector) SelectSubtitle(ctx context.Context, path string, candidates []mkvinfo.Track) (mkvinfo.Track, error) {
	if len(candidates) == 0 {
		return mkvinfo.Track{}, errors.New("no subtitle candidates")
	}
	fmt.Fprintf(s.out, "\n%s has %d subtitle tracks:\n", filepath.Base(path), len(candidates))
	fmt.Fprintln(s.out, RenderCandidates(candidates))

	for {
		if err := ctx.Err(); err != nil {
			return mkvinfo.Track{}, err
		}
		fmt.Fprintf(s.out, "Subtitle track to label [0-%d], or N to skip this file: ", len(candidates)-1)
		line, err := s.readLine(ctx)
		if ctxErr := ctx.Err(); ctxErr != nil {
			fmt.Fprintln(s.out)
			return mkvinfo.Track{}, ctxErr
		}
		if err != nil && !errors.Is(err, io.EOF) {
			return mkvinfo.Track{}, fmt.Errorf("read selection: %w", err)
		}
		answer := strings.TrimSpace(line)
		if answer == "" && errors.Is(err, io.EOF) {
			fmt.Fprintln(s.out)
			s.logger.Info("input closed; skipping file", logging.String(logging.FieldFile, path))
			return mkvinfo.Track{}, batch.ErrDeclined
		}
		if answer == "N" {
			s.logger.Info("subtitle selection declined", logging.String(logging.FieldFile, path))
			return mkvinfo.Track{}, batch.ErrDeclined
		}
		if idx, convErr := strconv.Atoi(answer); convErr == nil && idx >= 0 && idx < len(candidates) {
			chosen := candidates[idx]
			s.logger.Debug("subtitle track selected",
				logging.String(logging.FieldFile, path),
				logging.Int("index", idx),
				logging.Int("track_number", chosen.Number),
			)
			return chosen, nil
		}
		fmt.Fprintln(s.out, "Invalid selection.")
		if errors.Is(err, io.EOF) {
			return mkvinfo.Track{}, batch.ErrDeclined
		}
	}
}

// readLine returns early when ctx is cancelled. The pending read is left to
// finish in the background.
func (s *Selector) readLine(ctx context.Context) (string, error) {
	type result struct {
		line string
		err  error
	}
	ch := make(chan result, 1)
	go func() {
		line, err := s.in.ReadString('\n')
		ch <- result{line: line, err: err}
	}()
	select {
	case <-ctx.Done():
		return "", ctx.Err()
	case r := <-ch:
		return r.line, r.err
	}
}

// RenderCandidates renders the index, track number, language, and codec of
// each candidate as a table.
func RenderCandidates(candidates []mkvinfo.Track) string {
	tw := table.NewWriter()
	tw.SetStyle(table.StyleRounded)
	tw.AppendHeader(table.Row{"Index", "Track", "Language", "Codec"})
	for i, tr := range candidates {
		tw.AppendRow(table.Row{i, tr.Number, describeLanguage(tr.Language), tr.CodecID})
	}
	tw.SetColumnConfigs([]table.ColumnConfig{
		{Number: 1, Align: text.AlignRight, AlignHeader: text.AlignLeft},
		{Number: 2, Align: text.AlignRight, AlignHeader: text.AlignLeft},
	})
	return tw.Render()
}

func describeLanguage(code string) string {
	name := language.DisplayName(code)
	if name == "" || strings.EqualFold(name, code) {
		return code
	}
	return fmt.Sprintf("%s (%s)", code, name)
}

// DeclineSelector skips every file that needs a choice. It backs
// non-interactive runs.
type DeclineSelector struct {
	Logger *slog.Logger
}

// SelectSubtitle always returns batch.ErrDeclined.
func (d DeclineSelector) SelectSubtitle(_ context.Context, path string, candidates []mkvinfo.Track) (mkvinfo.Track, error) {
	logger := d.Logger
	if logger == nil {
		logger = logging.NewNop()
	}
	logger.Info("multiple subtitle tracks in non-interactive mode; skipping file",
		logging.String(logging.FieldFile, path),
		logging.Int("subtitle_tracks", len(candidates)),
	)
	return mkvinfo.Track{}, batch.ErrDeclined
}
