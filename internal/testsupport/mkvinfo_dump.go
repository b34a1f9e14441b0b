package testsupport

import (
	"fmt"
	"strings"
)

// DumpTrack describes one track for MkvinfoDump. ID is the mkvmerge track ID.
type DumpTrack struct {
	ID       int
	Type     string // video, audio, or subtitles
	Codec    string
	Language string // omitted from the dump when empty
}

// Video, Audio, and Subtitle build DumpTracks with plausible codecs.
func Video(id int) DumpTrack { return DumpTrack{ID: id, Type: "video", Codec: "V_MPEG4/ISO/AVC"} }

func Audio(id int, lang string) DumpTrack {
	return DumpTrack{ID: id, Type: "audio", Codec: "A_AC3", Language: lang}
}

func Subtitle(id int, lang string) DumpTrack {
	return DumpTrack{ID: id, Type: "subtitles", Codec: "S_TEXT/UTF8", Language: lang}
}

// MkvinfoDump renders tracks the way mkvinfo prints them.
func MkvinfoDump(tracks ...DumpTrack) string {
	var b strings.Builder
	b.WriteString("+ EBML head\n|+ Document type: matroska\n+ Segment: size 4096\n|+ Segment information\n| + Timestamp scale: 1000000\n|+ Tracks\n")
	for _, tr := range tracks {
		b.WriteString("| + Track\n")
		fmt.Fprintf(&b, "|  + Track number: %d (track ID for mkvmerge & mkvextract: %d)\n", tr.ID+1, tr.ID)
		fmt.Fprintf(&b, "|  + Track UID: %d\n", 1000+tr.ID)
		fmt.Fprintf(&b, "|  + Track type: %s\n", tr.Type)
		fmt.Fprintf(&b, "|  + Codec ID: %s\n", tr.Codec)
		if tr.Language != "" {
			fmt.Fprintf(&b, "|  + Language: %s\n", tr.Language)
		}
		switch tr.Type {
		case "video":
			b.WriteString("|  + Default duration: 00:00:00.041708333 (23.976 frames/fields per second for a video track)\n")
			b.WriteString("|  + Video track\n|   + Pixel width: 1920\n|   + Pixel height: 1080\n|   + Display width: 1920\n|   + Display height: 1080\n")
		case "audio":
			b.WriteString("|  + Audio track\n|   + Sampling frequency: 48000\n|   + Channels: 6\n|   + Output sampling frequency: 48000\n")
		}
	}
	b.WriteString("|+ Cluster\n")
	return b.String()
}
