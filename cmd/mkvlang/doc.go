// Package main hosts the mkvlang CLI entrypoint and command graph.
//
// The Cobra-based command tree loads configuration, applies command-line
// overrides, and wires the mkvinfo prober, mkvmerge muxer, subtitle prompt,
// run lock, and history journal into the batch processor. Running the root
// command with a folder is the same as "mkvlang run <folder>".
//
// Keep this package lean: new behaviour belongs in the internal packages and
// is surfaced here through commands or flags.
package main
