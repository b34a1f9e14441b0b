// Package mkvinfo turns the tree-shaped text printed by mkvinfo into a typed
// track model.
//
// Key types:
//   - Track: one video, audio, or subtitle stream with its language tag
//   - MediaInfo: the ordered tracks of one container file
//   - Grammar: the versioned line patterns recognized per field
//   - ParseResult: parsed tracks plus the blocks that were skipped and why
//
// Parsing never fails. A block missing a required field is skipped, logged,
// and reported in ParseResult.Skipped while its siblings are still returned.
// Prober runs the mkvinfo binary and feeds its output to the parser.
package mkvinfo
