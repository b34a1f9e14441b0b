package mkvinfo

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"mkvlang/internal/logging"
)

func loadFixture(t *testing.T, name string) string {
	t.Helper()
	data, err := os.ReadFile(filepath.Join("testdata", name))
	if err != nil {
		t.Fatalf("read fixture %s: %v", name, err)
	}
	return string(data)
}

func TestParseModernOutput(t *testing.T) {
	result := Parse(loadFixture(t, "movie_und.txt"), logging.NewNop())
	if len(result.Skipped) != 0 {
		t.Fatalf("unexpected skipped blocks: %+v", result.Skipped)
	}
	if len(result.Tracks) != 3 {
		t.Fatalf("expected 3 tracks, got %d", len(result.Tracks))
	}

	video := result.Tracks[0]
	if video.Number != 0 || video.UID != "8127361547382910" || video.Type != TrackVideo {
		t.Fatalf("unexpected video identity: %+v", video)
	}
	if video.CodecID != "V_MPEG4" {
		t.Fatalf("expected codec word token V_MPEG4, got %q", video.CodecID)
	}
	if video.DefaultDuration != "00:00:00.041708333 (23.976 frames/fields per second for a video track)" {
		t.Fatalf("unexpected default duration: %q", video.DefaultDuration)
	}
	if video.Video == nil || video.Audio != nil {
		t.Fatalf("video track must carry only video props: %+v", video)
	}
	if *video.Video != (VideoProps{PixelWidth: 1920, PixelHeight: 800, DisplayWidth: 1920, DisplayHeight: 800}) {
		t.Fatalf("unexpected video props: %+v", *video.Video)
	}

	audio := result.Tracks[1]
	if audio.Number != 1 || audio.Type != TrackAudio || audio.CodecID != "A_AAC" || audio.Language != "und" {
		t.Fatalf("unexpected audio track: %+v", audio)
	}
	if audio.Audio == nil || audio.Video != nil {
		t.Fatalf("audio track must carry only audio props: %+v", audio)
	}
	if *audio.Audio != (AudioProps{SamplingFrequency: 24000, Channels: 2, OutputSamplingFrequency: 48000}) {
		t.Fatalf("unexpected audio props: %+v", *audio.Audio)
	}

	sub := result.Tracks[2]
	if sub.Number != 2 || sub.UID != "77001" || sub.Type != TrackSubtitles || sub.CodecID != "S_TEXT" {
		t.Fatalf("unexpected subtitle track: %+v", sub)
	}
	if sub.Video != nil || sub.Audio != nil {
		t.Fatalf("subtitle track must not carry props: %+v", sub)
	}
	if sub.DefaultDuration != "" {
		t.Fatalf("expected absent default duration, got %q", sub.DefaultDuration)
	}
}

func TestParseLegacyHeadersAndPlainTrackNumber(t *testing.T) {
	result := Parse(loadFixture(t, "legacy.txt"), nil)
	if len(result.Tracks) != 2 {
		t.Fatalf("expected 2 tracks, got %d (%+v)", len(result.Tracks), result.Skipped)
	}
	if result.Tracks[0].Number != 1 || result.Tracks[1].Number != 3 {
		t.Fatalf("unexpected track numbers: %d, %d", result.Tracks[0].Number, result.Tracks[1].Number)
	}
	if result.Tracks[0].Language != UndeterminedLanguage {
		t.Fatalf("expected missing language to default to und, got %q", result.Tracks[0].Language)
	}
	if result.Tracks[1].Language != "jpn" {
		t.Fatalf("expected jpn, got %q", result.Tracks[1].Language)
	}
}

func TestParseLanguageTakesFirstLanguageLine(t *testing.T) {
	result := Parse(loadFixture(t, "multi_subs.txt"), nil)
	if len(result.Tracks) != 4 {
		t.Fatalf("expected 4 tracks, got %d", len(result.Tracks))
	}
	info := MediaInfo{Tracks: result.Tracks}
	subs := info.SubtitleTracks()
	if len(subs) != 2 {
		t.Fatalf("expected 2 subtitle tracks, got %d", len(subs))
	}
	if subs[0].Language != "ger" {
		t.Fatalf("expected ger from the first Language line, got %q", subs[0].Language)
	}
	if subs[1].Language != "und" {
		t.Fatalf("expected und for subtitle without language, got %q", subs[1].Language)
	}
	if got := len(info.AudioTracks()); got != 1 {
		t.Fatalf("expected 1 audio track, got %d", got)
	}
	if got := len(info.VideoTracks()); got != 1 {
		t.Fatalf("expected 1 video track, got %d", got)
	}
}

func TestTrackNumberTwoTier(t *testing.T) {
	cases := []struct {
		line string
		want int
	}{
		{"Track number: 1 (track ID for mkvmerge & mkvextract: 0)", 0},
		{"Track number: 3", 3},
		{"Track number: 12 (track ID for mkvmerge & mkvextract: 11)", 11},
	}
	for _, tc := range cases {
		t.Run(tc.line, func(t *testing.T) {
			text := subtitleBlock("|  + " + tc.line + "\n")
			result := Parse(text, nil)
			if len(result.Tracks) != 1 {
				t.Fatalf("expected 1 track, got %d (%+v)", len(result.Tracks), result.Skipped)
			}
			if result.Tracks[0].Number != tc.want {
				t.Fatalf("track number = %d, want %d", result.Tracks[0].Number, tc.want)
			}
		})
	}
}

func TestTrackNumberOverflowDropsBlock(t *testing.T) {
	line := "|  + Track number: 2 (track ID for mkvmerge & mkvextract: 99999999999999999999)\n"
	result := Parse(subtitleBlock(line), nil)
	if len(result.Tracks) != 0 {
		t.Fatalf("expected no tracks, got %+v", result.Tracks)
	}
	if len(result.Skipped) != 1 || result.Skipped[0].Field != "Track number" ||
		!strings.Contains(result.Skipped[0].Reason, "invalid track number") {
		t.Fatalf("unexpected skipped blocks %+v", result.Skipped)
	}
}

func subtitleBlock(numberLine string) string {
	return "|+ Tracks\n| + Track\n" + numberLine +
		"|  + Track UID: 9\n|  + Track type: subtitles\n|  + Codec ID: S_TEXT/ASS\n"
}

const videoBlock = `| + Track
|  + Track number: 1 (track ID for mkvmerge & mkvextract: 0)
|  + Track UID: 1
|  + Track type: video
|  + Codec ID: V_AV1
|  + Video track
|   + Pixel width: 1280
|   + Pixel height: 720
|   + Display width: 1280
|   + Display height: 720
`

const audioBlock = `| + Track
|  + Track number: 2 (track ID for mkvmerge & mkvextract: 1)
|  + Track UID: 2
|  + Track type: audio
|  + Codec ID: A_OPUS
|  + Audio track
|   + Sampling frequency: 48000
|   + Channels: 2
|   + Output sampling frequency: 48000
`

const subBlock = `| + Track
|  + Track number: 3 (track ID for mkvmerge & mkvextract: 2)
|  + Track UID: 3
|  + Track type: subtitles
|  + Codec ID: S_TEXT/UTF8
`

func TestParseIsolatesMissingRequiredFields(t *testing.T) {
	cases := []struct {
		name  string
		block string
		drop  string
		field string
	}{
		{"video pixel width", videoBlock, "|   + Pixel width: 1280\n", "Pixel width"},
		{"video pixel height", videoBlock, "|   + Pixel height: 720\n", "Pixel height"},
		{"video display width", videoBlock, "|   + Display width: 1280\n", "Display width"},
		{"video display height", videoBlock, "|   + Display height: 720\n", "Display height"},
		{"video codec", videoBlock, "|  + Codec ID: V_AV1\n", "Codec ID"},
		{"audio sampling frequency", audioBlock, "|   + Sampling frequency: 48000\n", "Sampling frequency"},
		{"audio channels", audioBlock, "|   + Channels: 2\n", "Channels"},
		{"audio output sampling frequency", audioBlock, "|   + Output sampling frequency: 48000\n", "Output sampling frequency"},
		{"audio uid", audioBlock, "|  + Track UID: 2\n", "Track UID"},
		{"subtitle number", subBlock, "|  + Track number: 3 (track ID for mkvmerge & mkvextract: 2)\n", "Track number"},
		{"subtitle type", subBlock, "|  + Track type: subtitles\n", "Track type"},
		{"subtitle codec", subBlock, "|  + Codec ID: S_TEXT/UTF8\n", "Codec ID"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			broken := strings.Replace(tc.block, tc.drop, "", 1)
			if broken == tc.block {
				t.Fatalf("fixture does not contain %q", tc.drop)
			}
			blocks := map[string]string{"video": videoBlock, "audio": audioBlock, "sub": subBlock}
			text := "|+ Tracks\n"
			for _, key := range []string{"video", "audio", "sub"} {
				if blocks[key] == tc.block {
					text += broken
				} else {
					text += blocks[key]
				}
			}

			result := Parse(text, nil)
			if len(result.Tracks) != 2 {
				t.Fatalf("expected 2 surviving tracks, got %d", len(result.Tracks))
			}
			if len(result.Skipped) != 1 {
				t.Fatalf("expected 1 skipped block, got %+v", result.Skipped)
			}
			if result.Skipped[0].Field != tc.field {
				t.Fatalf("skipped field = %q, want %q", result.Skipped[0].Field, tc.field)
			}
			if result.Blocks != 3 {
				t.Fatalf("expected 3 blocks, got %d", result.Blocks)
			}
		})
	}
}

func TestParseDropsUnknownTrackType(t *testing.T) {
	text := "|+ Tracks\n" + strings.Replace(subBlock, "subtitles", "buttons", 1) + audioBlock
	result := Parse(text, nil)
	if len(result.Tracks) != 1 || result.Tracks[0].Type != TrackAudio {
		t.Fatalf("expected only the audio track, got %+v", result.Tracks)
	}
	if len(result.Skipped) != 1 || !strings.Contains(result.Skipped[0].Reason, "buttons") {
		t.Fatalf("expected unknown type reason, got %+v", result.Skipped)
	}
	if result.Skipped[0].Index != 0 || result.Skipped[0].Line != 2 {
		t.Fatalf("unexpected skipped position: %+v", result.Skipped[0])
	}
}

func TestParseMissingLanguageDefaultsToUnd(t *testing.T) {
	result := Parse("|+ Tracks\n"+subBlock, nil)
	if len(result.Tracks) != 1 {
		t.Fatalf("expected 1 track, got %d", len(result.Tracks))
	}
	if result.Tracks[0].Language != "und" || result.Tracks[0].IsLanguageSet() {
		t.Fatalf("expected unset und language, got %q", result.Tracks[0].Language)
	}
}

func TestParseWithoutHeaders(t *testing.T) {
	for _, text := range []string{"", "mkvinfo: error opening file\n", "+ EBML head\n|+ Document type: matroska\n|+ Tracks\n"} {
		result := Parse(text, nil)
		if len(result.Tracks) != 0 || len(result.Skipped) != 0 || result.Blocks != 0 {
			t.Fatalf("expected empty result for %q, got %+v", text, result)
		}
	}
}

func TestParseToleratesCRLFAndVerboseHeaders(t *testing.T) {
	text := strings.ReplaceAll("|+ Tracks at 4000 size 300\n"+strings.Replace(audioBlock, "| + Track\n", "| + Track at 4012 size 120\n", 1)+subBlock, "\n", "\r\n")
	result := Parse(text, nil)
	if len(result.Tracks) != 2 {
		t.Fatalf("expected 2 tracks, got %d (%+v)", len(result.Tracks), result.Skipped)
	}
	if result.Tracks[0].CodecID != "A_OPUS" || result.Tracks[1].CodecID != "S_TEXT" {
		t.Fatalf("unexpected codecs: %q %q", result.Tracks[0].CodecID, result.Tracks[1].CodecID)
	}
}

func TestParseBlocksEndAtShallowerLines(t *testing.T) {
	text := "|+ Tracks\n" + subBlock + "|+ Cluster\n|  + Track UID: 999\n"
	result := Parse(text, nil)
	if len(result.Tracks) != 1 || result.Tracks[0].UID != "3" {
		t.Fatalf("unexpected tracks: %+v", result.Tracks)
	}
}

func TestIsLanguageSet(t *testing.T) {
	cases := map[string]bool{"und": false, "UND": false, "Und": false, "eng": true, "": true, "undefined": true}
	for lang, want := range cases {
		if got := (Track{Language: lang}).IsLanguageSet(); got != want {
			t.Errorf("IsLanguageSet(%q) = %v, want %v", lang, got, want)
		}
	}
}
