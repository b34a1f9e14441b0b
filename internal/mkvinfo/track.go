package mkvinfo

import (
	"fmt"
	"strings"
)

// TrackType is the closed set of stream kinds reported by mkvinfo.
type TrackType string

const (
	TrackVideo     TrackType = "video"
	TrackAudio     TrackType = "audio"
	TrackSubtitles TrackType = "subtitles"
)

func parseTrackType(value string) (TrackType, bool) {
	switch TrackType(value) {
	case TrackVideo, TrackAudio, TrackSubtitles:
		return TrackType(value), true
	default:
		return "", false
	}
}

// UndeterminedLanguage is the tag mkvinfo reports (or implies) for tracks without a language.
const UndeterminedLanguage = "und"

// VideoProps holds the geometry of a video track.
type VideoProps struct {
	PixelWidth    int
	PixelHeight   int
	DisplayWidth  int
	DisplayHeight int
}

// AudioProps holds the sampling layout of an audio track.
type AudioProps struct {
	SamplingFrequency       int
	Channels                int
	OutputSamplingFrequency int
}

// Track describes one elementary stream. Video is set only for video tracks and
// Audio only for audio tracks.
type Track struct {
	// Number is the mkvmerge-facing track ID used in --language directives.
	Number          int
	UID             string
	Type            TrackType
	CodecID         string
	Language        string
	DefaultDuration string // empty when mkvinfo omits it
	Video           *VideoProps
	Audio           *AudioProps
}

// IsLanguageSet reports whether the track carries a language other than "und".
func (t Track) IsLanguageSet() bool {
	return strings.ToLower(t.Language) != UndeterminedLanguage
}

func (t Track) String() string {
	return fmt.Sprintf("Track %d (%s): %s", t.Number, t.Type, t.Language)
}

// MediaInfo is the parsed view of one container. Tracks keep the order in which
// they appear in the mkvinfo output.
type MediaInfo struct {
	Path    string
	Tracks  []Track
	Skipped []SkippedBlock
}

// VideoTracks returns the video tracks in source order.
func (m MediaInfo) VideoTracks() []Track { return m.tracksOf(TrackVideo) }

// AudioTracks returns the audio tracks in source order.
func (m MediaInfo) AudioTracks() []Track { return m.tracksOf(TrackAudio) }

// SubtitleTracks returns the subtitle tracks in source order.
func (m MediaInfo) SubtitleTracks() []Track { return m.tracksOf(TrackSubtitles) }

func (m MediaInfo) tracksOf(kind TrackType) []Track {
	var out []Track
	for _, track := range m.Tracks {
		if track.Type == kind {
			out = append(out, track)
		}
	}
	return out
}
