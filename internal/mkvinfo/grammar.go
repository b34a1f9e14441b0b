package mkvinfo

import "regexp"

// Grammar is a versioned set of line patterns for mkvinfo output. Format drift
// in new mkvinfo releases is absorbed by adding a Grammar, not by touching the
// parser.
type Grammar struct {
	Version string

	// Headers lists the node labels that open a track block, compared after
	// the "|" and space tree prefix is stripped.
	Headers []string

	// TrackNumberMuxer matches "Track number: 1 (track ID for mkvmerge & mkvextract: 0)"
	// and captures the mkvmerge ID. TrackNumber is the plain "Track number: 3" fallback.
	TrackNumberMuxer *regexp.Regexp
	TrackNumber      *regexp.Regexp

	TrackUID        *regexp.Regexp
	TrackType       *regexp.Regexp
	CodecID         *regexp.Regexp
	DefaultDuration *regexp.Regexp
	Language        *regexp.Regexp

	PixelWidth    *regexp.Regexp
	PixelHeight   *regexp.Regexp
	DisplayWidth  *regexp.Regexp
	DisplayHeight *regexp.Regexp

	SamplingFrequency       *regexp.Regexp
	Channels                *regexp.Regexp
	OutputSamplingFrequency *regexp.Regexp
}

// DefaultGrammar covers mkvinfo from MKVToolNix 5.x ("+ A track") through the
// current "+ Track" layout.
var DefaultGrammar = &Grammar{
	Version: "mkvtoolnix-v1",
	Headers: []string{"+ Track", "+ A track"},

	TrackNumberMuxer: regexp.MustCompile(`Track number:\s*\d+\s*\([^)]*?(\d+)\)`),
	TrackNumber:      regexp.MustCompile(`Track number:\s*(\d+)`),

	TrackUID:        regexp.MustCompile(`Track UID:\s*(\d+)`),
	TrackType:       regexp.MustCompile(`Track type:\s*([a-z]+)`),
	CodecID:         regexp.MustCompile(`Codec ID:\s*(\w+)`),
	DefaultDuration: regexp.MustCompile(`Default duration:\s*(.+?)\s*$`),
	Language:        regexp.MustCompile(`Language[^:]*:\s*(\w+)`),

	PixelWidth:    regexp.MustCompile(`Pixel width:\s*(\d+)`),
	PixelHeight:   regexp.MustCompile(`Pixel height:\s*(\d+)`),
	DisplayWidth:  regexp.MustCompile(`Display width:\s*(\d+)`),
	DisplayHeight: regexp.MustCompile(`Display height:\s*(\d+)`),

	// Patterns are case-sensitive, so "Sampling frequency" never matches the
	// "Output sampling frequency" line.
	SamplingFrequency:       regexp.MustCompile(`Sampling frequency:\s*(\d+)`),
	Channels:                regexp.MustCompile(`Channels:\s*(\d+)`),
	OutputSamplingFrequency: regexp.MustCompile(`Output sampling frequency:\s*(\d+)`),
}

// find returns the first capture of re across lines.
func find(re *regexp.Regexp, lines []string) (string, bool) {
	if re == nil {
		return "", false
	}
	for _, line := range lines {
		if m := re.FindStringSubmatch(line); m != nil {
			return m[1], true
		}
	}
	return "", false
}
