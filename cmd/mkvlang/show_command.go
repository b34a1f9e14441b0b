package main

import (
	"fmt"
	"io"
	"strconv"

	"github.com/spf13/cobra"

	"mkvlang/internal/batch"
	"mkvlang/internal/language"
	"mkvlang/internal/mkvinfo"
	"mkvlang/internal/prompt"
)

func newShowCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "show <file>...",
		Short: "List the tracks mkvinfo reports and what mkvlang would change",
		Args: func(cmd *cobra.Command, args []string) error {
			if len(args) == 0 {
				return fmt.Errorf("provide at least one file. Example: mkvlang show /path/to/video.mkv")
			}
			return nil
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return fmt.Errorf("load configuration: %w", err)
			}
			logger, err := ctx.newLogger(cmd, cfg)
			if err != nil {
				return err
			}
			prober := mkvinfo.NewProber(cfg.MkvinfoBinary(), logger)
			out := cmd.OutOrStdout()

			var failed int
			for _, path := range args {
				info, err := prober.Probe(cmd.Context(), path)
				if err != nil {
					failed++
					fmt.Fprintf(out, "%s: %v\n\n", path, err)
					continue
				}
				printTracks(out, info)

				// Never prompt here; several subtitles are reported as needing a choice.
				plan, err := batch.Decide(cmd.Context(), info, prompt.DeclineSelector{}, nil)
				switch {
				case err != nil:
					fmt.Fprintf(out, "Plan: %d subtitle tracks; a run will ask which one to label\n", len(info.SubtitleTracks()))
				case !plan.NeedsRewrite():
					fmt.Fprintln(out, "Plan: nothing to change")
				default:
					fmt.Fprint(out, "Plan:")
					for _, d := range plan.Directives(cfg.Processing.Language) {
						fmt.Fprintf(out, " --language %s", d)
					}
					fmt.Fprintln(out)
				}
				fmt.Fprintln(out)
			}
			if failed > 0 {
				return fmt.Errorf("%d of %d files could not be inspected", failed, len(args))
			}
			return nil
		},
	}
}

func printTracks(out io.Writer, info mkvinfo.MediaInfo) {
	rows := make([][]string, 0, len(info.Tracks))
	for _, tr := range info.Tracks {
		rows = append(rows, []string{
			strconv.Itoa(tr.Number),
			string(tr.Type),
			tr.CodecID,
			tr.Language,
			language.DisplayName(tr.Language),
			trackDetail(tr),
		})
	}
	fmt.Fprintln(out, renderTable(tableSpec{
		Title:   info.Path,
		Headers: []string{"Track", "Type", "Codec", "Lang", "Language", "Details"},
		Rows:    rows,
		Aligns:  []columnAlignment{alignRight},
	}))
	for _, skipped := range info.Skipped {
		fmt.Fprintf(out, "Skipped track block %d (line %d): %s\n", skipped.Index, skipped.Line, skipped.Reason)
	}
}

func trackDetail(tr mkvinfo.Track) string {
	switch {
	case tr.Video != nil:
		return fmt.Sprintf("%dx%d", tr.Video.PixelWidth, tr.Video.PixelHeight)
	case tr.Audio != nil:
		return fmt.Sprintf("%d Hz, %d ch", tr.Audio.SamplingFrequency, tr.Audio.Channels)
	default:
		return ""
	}
}
