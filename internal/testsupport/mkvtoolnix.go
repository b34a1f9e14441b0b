package testsupport

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

// Mkvtoolnix is a pair of shell scripts standing in for mkvinfo and mkvmerge.
//
// The mkvinfo script prints the dump registered with SetInfo for the probed
// file's base name and exits 2 when none exists. The mkvmerge script appends
// its arguments to a log, then writes the input plus a " +relabelled" marker
// to the -o path. After FailMerges it writes a partial output and exits 2.
type Mkvtoolnix struct {
	t   testing.TB
	dir string
}

// RelabelMarker is appended by the fake mkvmerge to every file it writes.
const RelabelMarker = " +relabelled"

// NewMkvtoolnix writes the fake scripts into a fresh temp directory.
func NewMkvtoolnix(t testing.TB) *Mkvtoolnix {
	t.Helper()
	dir := t.TempDir()
	for _, sub := range []string{"bin", "info"} {
		if err := os.MkdirAll(filepath.Join(dir, sub), 0o755); err != nil {
			t.Fatalf("mkdir %s: %v", sub, err)
		}
	}
	f := &Mkvtoolnix{t: t, dir: dir}

	mkvinfo := fmt.Sprintf(`#!/bin/sh
f='%s'/"$(basename "$1")"
if [ ! -f "$f" ]; then
  echo "Error: no fixture for $1" >&2
  exit 2
fi
cat "$f"
`, filepath.Join(dir, "info"))

	mkvmerge := fmt.Sprintf(`#!/bin/sh
log='%[1]s/mkvmerge.log'
for arg in "$@"; do printf '%%s\037' "$arg" >> "$log"; done
printf '\n' >> "$log"
out=""
in=""
while [ $# -gt 0 ]; do
  case "$1" in
    -o) out="$2"; shift 2 ;;
    --language) shift 2 ;;
    *) in="$1"; shift ;;
  esac
done
if [ -f '%[1]s/mkvmerge.fail' ]; then
  printf 'partial' > "$out"
  echo "Error: simulated mux failure" >&2
  exit 2
fi
{ cat "$in"; printf '%[2]s'; } > "$out" || exit 2
`, dir, RelabelMarker)

	f.writeScript("mkvinfo", mkvinfo)
	f.writeScript("mkvmerge", mkvmerge)
	return f
}

func (f *Mkvtoolnix) writeScript(name, body string) {
	f.t.Helper()
	if err := os.WriteFile(filepath.Join(f.dir, "bin", name), []byte(body), 0o755); err != nil {
		f.t.Fatalf("write fake %s: %v", name, err)
	}
}

// MkvinfoPath returns the fake mkvinfo executable.
func (f *Mkvtoolnix) MkvinfoPath() string { return filepath.Join(f.dir, "bin", "mkvinfo") }

// MkvmergePath returns the fake mkvmerge executable.
func (f *Mkvtoolnix) MkvmergePath() string { return filepath.Join(f.dir, "bin", "mkvmerge") }

// SetInfo registers the mkvinfo dump printed for files named like mediaPath.
// The backup name is registered too, since mkvinfo may be run on either.
func (f *Mkvtoolnix) SetInfo(mediaPath, dump string) {
	f.t.Helper()
	if err := os.WriteFile(filepath.Join(f.dir, "info", filepath.Base(mediaPath)), []byte(dump), 0o644); err != nil {
		f.t.Fatalf("write mkvinfo fixture: %v", err)
	}
}

// FailMerges makes every following mkvmerge call fail.
func (f *Mkvtoolnix) FailMerges() {
	f.t.Helper()
	if err := os.WriteFile(filepath.Join(f.dir, "mkvmerge.fail"), nil, 0o644); err != nil {
		f.t.Fatalf("arm mkvmerge failure: %v", err)
	}
}

// MergeCalls returns the argument lists of every mkvmerge invocation so far.
func (f *Mkvtoolnix) MergeCalls() [][]string {
	f.t.Helper()
	data, err := os.ReadFile(filepath.Join(f.dir, "mkvmerge.log"))
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		f.t.Fatalf("read mkvmerge log: %v", err)
	}
	var calls [][]string
	for _, line := range strings.Split(strings.TrimRight(string(data), "\n"), "\n") {
		if line == "" {
			continue
		}
		calls = append(calls, strings.Split(strings.TrimSuffix(line, "\x1f"), "\x1f"))
	}
	return calls
}
