package batch

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"mkvlang/internal/logging"
	"mkvlang/internal/mkvinfo"
	"mkvlang/internal/mkvmerge"
)

// Selector picks one subtitle track when a file carries several. It returns
// ErrDeclined when the user chooses to skip the file.
type Selector interface {
	SelectSubtitle(ctx context.Context, path string, candidates []mkvinfo.Track) (mkvinfo.Track, error)
}

// Plan lists the tracks that need a language stamped on them.
type Plan struct {
	Subtitle *mkvinfo.Track
	Audio    *mkvinfo.Track
}

// NeedsRewrite reports whether any track must be relabelled.
func (p Plan) NeedsRewrite() bool {
	return p.Subtitle != nil || p.Audio != nil
}

// Directives renders the plan as mkvmerge directives, subtitle first.
func (p Plan) Directives(language string) []mkvmerge.LanguageDirective {
	var out []mkvmerge.LanguageDirective
	if p.Subtitle != nil {
		out = append(out, mkvmerge.LanguageDirective{TrackNumber: p.Subtitle.Number, Language: language})
	}
	if p.Audio != nil {
		out = append(out, mkvmerge.LanguageDirective{TrackNumber: p.Audio.Number, Language: language})
	}
	return out
}

// Decide applies the relabelling policy to info.
//
// Subtitles: none or one already labelled is left alone; a single unlabelled
// track is relabelled; several tracks are handed to selector and the chosen
// one is relabelled when unlabelled.
//
// Audio: only a single unlabelled track is relabelled. Several audio tracks
// are never disambiguated.
func Decide(ctx context.Context, info mkvinfo.MediaInfo, selector Selector, logger *slog.Logger) (Plan, error) {
	if logger == nil {
		logger = logging.NewNop()
	}
	var plan Plan

	subs := info.SubtitleTracks()
	var subtitle *mkvinfo.Track
	switch len(subs) {
	case 0:
		logDecision(logger, "subtitle_language", "skip", "no subtitle tracks")
	case 1:
		subtitle = &subs[0]
	default:
		if selector == nil {
			return Plan{}, fmt.Errorf("%d subtitle tracks and no selector: %w", len(subs), ErrDeclined)
		}
		logger.Info("multiple subtitle tracks found", logging.Int("subtitle_tracks", len(subs)))
		chosen, err := selector.SelectSubtitle(ctx, info.Path, subs)
		if err != nil {
			if errors.Is(err, ErrDeclined) {
				logDecision(logger, "subtitle_language", "declined", "subtitle selection declined")
			}
			return Plan{}, err
		}
		subtitle = &chosen
	}
	if subtitle != nil {
		if subtitle.IsLanguageSet() {
			logDecision(logger, "subtitle_language", "skip", "subtitle language already set",
				logging.Int("track_number", subtitle.Number),
				logging.String("language", subtitle.Language),
			)
		} else {
			plan.Subtitle = subtitle
			logDecision(logger, "subtitle_language", "relabel", "subtitle language undetermined",
				logging.Int("track_number", subtitle.Number),
			)
		}
	}

	audio := info.AudioTracks()
	switch {
	case len(audio) == 0:
		logDecision(logger, "audio_language", "skip", "no audio tracks")
	case len(audio) > 1:
		logDecision(logger, "audio_language", "skip", "multiple audio tracks",
			logging.Int("audio_tracks", len(audio)),
		)
	case audio[0].IsLanguageSet():
		logDecision(logger, "audio_language", "skip", "audio language already set",
			logging.Int("track_number", audio[0].Number),
			logging.String("language", audio[0].Language),
		)
	default:
		plan.Audio = &audio[0]
		logDecision(logger, "audio_language", "relabel", "audio language undetermined",
			logging.Int("track_number", audio[0].Number),
		)
	}
	return plan, nil
}

func logDecision(logger *slog.Logger, decisionType, result, reason string, extra ...logging.Attr) {
	attrs := append(logging.DecisionAttrs(decisionType, result, reason), extra...)
	logger.Info(reason, logging.Args(attrs...)...)
}
