// Package batch walks a folder of containers and stamps a language onto
// audio and subtitle tracks whose language is undetermined.
//
// For every file the Processor probes tracks with mkvinfo, decides which
// tracks need a language (Decide), and rewrites the container with mkvmerge.
// The rewrite renames the original to a backup, lets mkvmerge write the
// canonical name, and only then removes the backup. A failed rewrite leaves
// the backup in place and the canonical path absent; Recover restores such
// leftovers.
//
// Files are processed one at a time. A failing file is logged and counted
// and never aborts the rest of the run.
package batch
