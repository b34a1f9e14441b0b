package mkvinfo

import (
	"log/slog"
	"regexp"
	"strconv"
	"strings"

	"mkvlang/internal/logging"
)

// SkippedBlock records a track block that could not be turned into a Track.
type SkippedBlock struct {
	Index  int    // zero-based block ordinal in the output
	Line   int    // one-based line of the block header
	Field  string // first required field that failed, e.g. "Track UID"
	Reason string
}

// ParseResult is the outcome of parsing one mkvinfo dump.
type ParseResult struct {
	Tracks  []Track
	Skipped []SkippedBlock
	Blocks  int
}

// Parse extracts tracks from mkvinfo output using DefaultGrammar.
func Parse(text string, logger *slog.Logger) ParseResult {
	return DefaultGrammar.Parse(text, logger)
}

// Parse extracts tracks from mkvinfo output. It never fails: blocks missing a
// required field are skipped and reported, and text without any track header
// yields an empty result.
func (g *Grammar) Parse(text string, logger *slog.Logger) ParseResult {
	if logger == nil {
		logger = logging.NewNop()
	}
	blocks := g.segment(text)
	result := ParseResult{Blocks: len(blocks)}
	if len(blocks) == 0 {
		logger.Info("no track blocks found",
			logging.String(logging.FieldEventType, "no_tracks_found"),
			logging.String("grammar", g.Version),
		)
		return result
	}

	for _, b := range blocks {
		track, skip := g.parseBlock(b)
		if skip != nil {
			result.Skipped = append(result.Skipped, *skip)
			logging.WarnWithContext(logger, "track block skipped", "track_block_skipped",
				logging.Int("block", skip.Index),
				logging.Int("line", skip.Line),
				logging.String("field", skip.Field),
				logging.String("reason", skip.Reason),
				logging.String(logging.FieldImpact, "track ignored for language decisions"),
				logging.String(logging.FieldErrorHint, "run mkvinfo on the file and compare against the parser grammar"),
			)
			continue
		}
		result.Tracks = append(result.Tracks, track)
	}

	logger.Debug("mkvinfo output parsed",
		logging.Int("blocks", result.Blocks),
		logging.Int("tracks", len(result.Tracks)),
		logging.Int("skipped", len(result.Skipped)),
	)
	return result
}

type block struct {
	index int
	line  int
	lines []string
}

// segment groups lines into track blocks. A block opens at a header node and
// keeps every following line nested deeper than the header; the first line at
// the header's depth or shallower closes it.
func (g *Grammar) segment(text string) []block {
	var (
		blocks []block
		cur    *block
		depth  int
	)
	for i, raw := range strings.Split(text, "\n") {
		line := strings.TrimRight(raw, "\r")
		d, label := treeNode(line)
		if cur != nil {
			if d > depth {
				cur.lines = append(cur.lines, line)
				continue
			}
			blocks = append(blocks, *cur)
			cur = nil
		}
		if d >= 0 && g.isHeader(label) {
			cur = &block{index: len(blocks), line: i + 1}
			depth = d
		}
	}
	if cur != nil {
		blocks = append(blocks, *cur)
	}
	return blocks
}

// treeNode splits an mkvinfo line into its nesting depth (the width of the
// "|" and space prefix) and its label. Lines outside the tree report -1.
func treeNode(line string) (int, string) {
	if !strings.HasPrefix(line, "|") {
		return -1, ""
	}
	idx := 0
	for idx < len(line) && (line[idx] == '|' || line[idx] == ' ' || line[idx] == '\t') {
		idx++
	}
	label := strings.TrimSpace(line[idx:])
	if label == "" {
		return -1, ""
	}
	return idx, label
}

func (g *Grammar) isHeader(label string) bool {
	for _, header := range g.Headers {
		// mkvinfo -v appends element positions: "+ Track at 4242 size 512".
		if label == header || strings.HasPrefix(label, header+" at ") {
			return true
		}
	}
	return false
}

func (g *Grammar) parseBlock(b block) (Track, *SkippedBlock) {
	skip := func(field, reason string) (Track, *SkippedBlock) {
		return Track{}, &SkippedBlock{Index: b.index, Line: b.line, Field: field, Reason: reason}
	}

	number, reason, ok := g.trackNumber(b.lines)
	if !ok {
		return skip("Track number", reason)
	}
	uid, ok := find(g.TrackUID, b.lines)
	if !ok {
		return skip("Track UID", "no track uid found")
	}
	rawType, ok := find(g.TrackType, b.lines)
	if !ok {
		return skip("Track type", "no track type found")
	}
	kind, ok := parseTrackType(rawType)
	if !ok {
		return skip("Track type", "unknown track type "+strconv.Quote(rawType))
	}
	codec, ok := find(g.CodecID, b.lines)
	if !ok {
		return skip("Codec ID", "no codec id found")
	}

	track := Track{
		Number:   number,
		UID:      uid,
		Type:     kind,
		CodecID:  codec,
		Language: UndeterminedLanguage,
	}
	if duration, ok := find(g.DefaultDuration, b.lines); ok {
		track.DefaultDuration = duration
	}
	if lang, ok := find(g.Language, b.lines); ok {
		track.Language = lang
	}

	switch kind {
	case TrackVideo:
		var video VideoProps
		fields := []intField{
			{"Pixel width", g.PixelWidth, &video.PixelWidth},
			{"Pixel height", g.PixelHeight, &video.PixelHeight},
			{"Display width", g.DisplayWidth, &video.DisplayWidth},
			{"Display height", g.DisplayHeight, &video.DisplayHeight},
		}
		if name, reason, ok := extractInts(fields, b.lines); !ok {
			return skip(name, reason)
		}
		track.Video = &video
	case TrackAudio:
		var audio AudioProps
		fields := []intField{
			{"Sampling frequency", g.SamplingFrequency, &audio.SamplingFrequency},
			{"Channels", g.Channels, &audio.Channels},
			{"Output sampling frequency", g.OutputSamplingFrequency, &audio.OutputSamplingFrequency},
		}
		if name, reason, ok := extractInts(fields, b.lines); !ok {
			return skip(name, reason)
		}
		track.Audio = &audio
	}
	return track, nil
}

// trackNumber prefers the mkvmerge ID from the parenthesised form and falls
// back to the first number on the line only when there is no parenthesised
// form. An ID that does not convert fails the block rather than falling back,
// since the display number would address a different track.
func (g *Grammar) trackNumber(lines []string) (int, string, bool) {
	re := g.TrackNumberMuxer
	value, ok := find(re, lines)
	if !ok {
		re = g.TrackNumber
		if value, ok = find(re, lines); !ok {
			return 0, "no track number found", false
		}
	}
	n, err := strconv.Atoi(value)
	if err != nil {
		return 0, "invalid track number " + strconv.Quote(value), false
	}
	return n, "", true
}

type intField struct {
	name string
	re   *regexp.Regexp
	dst  *int
}

func extractInts(fields []intField, lines []string) (string, string, bool) {
	for _, f := range fields {
		value, ok := find(f.re, lines)
		if !ok {
			return f.name, "no " + strings.ToLower(f.name) + " found", false
		}
		n, err := strconv.Atoi(value)
		if err != nil {
			return f.name, "invalid " + strings.ToLower(f.name) + " " + strconv.Quote(value), false
		}
		*f.dst = n
	}
	return "", "", true
}
