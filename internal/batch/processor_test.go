package batch_test

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"mkvlang/internal/batch"
	"mkvlang/internal/logging"
	"mkvlang/internal/mkvinfo"
	"mkvlang/internal/mkvmerge"
	"mkvlang/internal/testsupport"
)

type indexSelector struct {
	index   int
	decline bool
}

func (s indexSelector) SelectSubtitle(_ context.Context, _ string, candidates []mkvinfo.Track) (mkvinfo.Track, error) {
	if s.decline {
		return mkvinfo.Track{}, batch.ErrDeclined
	}
	return candidates[s.index], nil
}

type fixture struct {
	fake   *testsupport.Mkvtoolnix
	dir    string
	movie  string
	backup string
	srt    string
}

func newFixture(t *testing.T, dump string) *fixture {
	t.Helper()
	fake := testsupport.NewMkvtoolnix(t)
	dir := t.TempDir()
	movie := filepath.Join(dir, "Film.mkv")
	testsupport.WriteMedia(t, movie, "original-bytes")
	fake.SetInfo(movie, dump)
	return &fixture{
		fake:   fake,
		dir:    dir,
		movie:  movie,
		backup: movie + ".original",
		srt:    filepath.Join(dir, "Film.en.srt"),
	}
}

func (f *fixture) processor(selector batch.Selector, opts batch.Options) *batch.Processor {
	logger := logging.NewNop()
	if opts.BackupSuffix == "" {
		opts.BackupSuffix = ".original"
	}
	if opts.SidecarSuffix == "" {
		opts.SidecarSuffix = ".en.srt"
	}
	return batch.NewProcessor(
		mkvinfo.NewProber(f.fake.MkvinfoPath(), logger),
		mkvmerge.NewMuxer(f.fake.MkvmergePath(), logger),
		selector,
		opts,
		logger,
	)
}

func TestProcessFileRelabelsUndeterminedTracks(t *testing.T) {
	f := newFixture(t, testsupport.MkvinfoDump(
		testsupport.Video(0),
		testsupport.Audio(1, "und"),
		testsupport.Subtitle(2, "und"),
	))
	testsupport.WriteMedia(t, f.srt, "1\n00:00:01,000 --> 00:00:02,000\nhello\n")

	res, err := f.processor(nil, batch.Options{}).ProcessFile(context.Background(), f.movie)
	if err != nil {
		t.Fatalf("ProcessFile: %v", err)
	}
	if res.Outcome != batch.OutcomePatched {
		t.Fatalf("outcome = %s, want patched", res.Outcome)
	}
	if !res.SidecarRemoved || res.BackupPath != "" {
		t.Fatalf("unexpected result %+v", res)
	}

	calls := f.fake.MergeCalls()
	if len(calls) != 1 {
		t.Fatalf("expected one mkvmerge call, got %d", len(calls))
	}
	want := []string{"-o", f.movie, "--language", "2:eng", "--language", "1:eng", f.backup}
	if strings.Join(calls[0], " ") != strings.Join(want, " ") {
		t.Fatalf("mkvmerge args = %q, want %q", calls[0], want)
	}

	if got := testsupport.ReadFile(t, f.movie); got != "original-bytes"+testsupport.RelabelMarker {
		t.Fatalf("rewritten content = %q", got)
	}
	testsupport.RequireMissing(t, f.backup)
	testsupport.RequireMissing(t, f.srt)
}

func TestProcessFileKeepOriginal(t *testing.T) {
	f := newFixture(t, testsupport.MkvinfoDump(
		testsupport.Video(0),
		testsupport.Audio(1, "und"),
		testsupport.Subtitle(2, "und"),
	))

	res, err := f.processor(nil, batch.Options{KeepOriginal: true}).ProcessFile(context.Background(), f.movie)
	if err != nil {
		t.Fatalf("ProcessFile: %v", err)
	}
	if res.BackupPath != f.backup {
		t.Fatalf("backup path = %q, want %q", res.BackupPath, f.backup)
	}
	if got := testsupport.ReadFile(t, f.backup); got != "original-bytes" {
		t.Fatalf("backup content = %q", got)
	}
	testsupport.RequireExists(t, f.movie)
}

func TestProcessFileLeavesLabelledFileAlone(t *testing.T) {
	f := newFixture(t, testsupport.MkvinfoDump(
		testsupport.Video(0),
		testsupport.Audio(1, "eng"),
		testsupport.Subtitle(2, "eng"),
	))
	testsupport.WriteMedia(t, f.srt, "subs")

	res, err := f.processor(nil, batch.Options{}).ProcessFile(context.Background(), f.movie)
	if err != nil {
		t.Fatalf("ProcessFile: %v", err)
	}
	if res.Outcome != batch.OutcomeUnchanged {
		t.Fatalf("outcome = %s, want unchanged", res.Outcome)
	}
	if calls := f.fake.MergeCalls(); len(calls) != 0 {
		t.Fatalf("mkvmerge should not run, got %v", calls)
	}
	if got := testsupport.ReadFile(t, f.movie); got != "original-bytes" {
		t.Fatalf("content changed: %q", got)
	}
	testsupport.RequireMissing(t, f.backup)
	testsupport.RequireExists(t, f.srt)
}

func TestProcessFileMultipleSubtitles(t *testing.T) {
	dump := testsupport.MkvinfoDump(
		testsupport.Video(0),
		testsupport.Audio(1, "und"),
		testsupport.Subtitle(2, "und"),
		testsupport.Subtitle(3, "und"),
	)

	t.Run("selected", func(t *testing.T) {
		f := newFixture(t, dump)
		res, err := f.processor(indexSelector{index: 1}, batch.Options{}).ProcessFile(context.Background(), f.movie)
		if err != nil {
			t.Fatalf("ProcessFile: %v", err)
		}
		if res.Outcome != batch.OutcomePatched {
			t.Fatalf("outcome = %s", res.Outcome)
		}
		calls := f.fake.MergeCalls()
		if len(calls) != 1 {
			t.Fatalf("expected one mkvmerge call, got %d", len(calls))
		}
		args := strings.Join(calls[0], " ")
		if !strings.Contains(args, "--language 3:eng --language 1:eng") {
			t.Fatalf("unexpected args %q", args)
		}
	})

	t.Run("declined", func(t *testing.T) {
		f := newFixture(t, dump)
		res, err := f.processor(indexSelector{decline: true}, batch.Options{}).ProcessFile(context.Background(), f.movie)
		if err != nil {
			t.Fatalf("ProcessFile: %v", err)
		}
		if res.Outcome != batch.OutcomeDeclined {
			t.Fatalf("outcome = %s, want declined", res.Outcome)
		}
		if calls := f.fake.MergeCalls(); len(calls) != 0 {
			t.Fatalf("mkvmerge should not run, got %v", calls)
		}
		testsupport.RequireMissing(t, f.backup)
	})
}

func TestProcessFileMuxFailureKeepsBackup(t *testing.T) {
	f := newFixture(t, testsupport.MkvinfoDump(
		testsupport.Video(0),
		testsupport.Audio(1, "und"),
		testsupport.Subtitle(2, "und"),
	))
	testsupport.WriteMedia(t, f.srt, "subs")
	f.fake.FailMerges()

	res, err := f.processor(nil, batch.Options{}).ProcessFile(context.Background(), f.movie)
	if err == nil {
		t.Fatal("expected remux error")
	}
	if res.Outcome != batch.OutcomeFailed || res.Error == "" {
		t.Fatalf("unexpected result %+v", res)
	}
	if res.BackupPath != f.backup {
		t.Fatalf("backup path = %q", res.BackupPath)
	}
	testsupport.RequireMissing(t, f.movie)
	if got := testsupport.ReadFile(t, f.backup); got != "original-bytes" {
		t.Fatalf("backup content = %q", got)
	}
	testsupport.RequireExists(t, f.srt)
}

func TestProcessFileRefusesExistingBackup(t *testing.T) {
	f := newFixture(t, testsupport.MkvinfoDump(
		testsupport.Video(0),
		testsupport.Audio(1, "und"),
	))
	testsupport.WriteMedia(t, f.backup, "stale")

	_, err := f.processor(nil, batch.Options{}).ProcessFile(context.Background(), f.movie)
	if !errors.Is(err, batch.ErrBackupExists) {
		t.Fatalf("expected ErrBackupExists, got %v", err)
	}
	if calls := f.fake.MergeCalls(); len(calls) != 0 {
		t.Fatalf("mkvmerge should not run, got %v", calls)
	}
	if got := testsupport.ReadFile(t, f.backup); got != "stale" {
		t.Fatalf("backup overwritten: %q", got)
	}
	if got := testsupport.ReadFile(t, f.movie); got != "original-bytes" {
		t.Fatalf("movie changed: %q", got)
	}
}

func TestProcessFileDryRun(t *testing.T) {
	f := newFixture(t, testsupport.MkvinfoDump(
		testsupport.Video(0),
		testsupport.Audio(1, "und"),
		testsupport.Subtitle(2, "und"),
	))

	res, err := f.processor(nil, batch.Options{DryRun: true, Language: "ger"}).ProcessFile(context.Background(), f.movie)
	if err != nil {
		t.Fatalf("ProcessFile: %v", err)
	}
	if res.Outcome != batch.OutcomeDryRun {
		t.Fatalf("outcome = %s, want dry_run", res.Outcome)
	}
	if len(res.Directives) != 2 || res.Directives[0].String() != "2:ger" || res.Directives[1].String() != "1:ger" {
		t.Fatalf("directives = %v", res.Directives)
	}
	if calls := f.fake.MergeCalls(); len(calls) != 0 {
		t.Fatalf("mkvmerge should not run, got %v", calls)
	}
	testsupport.RequireMissing(t, f.backup)
}

func TestProcessFileProbeFailure(t *testing.T) {
	f := newFixture(t, "")
	other := filepath.Join(f.dir, "Unknown.mkv")
	testsupport.WriteMedia(t, other, "x")

	res, err := f.processor(nil, batch.Options{}).ProcessFile(context.Background(), other)
	if !errors.Is(err, mkvinfo.ErrProbeFailed) {
		t.Fatalf("expected ErrProbeFailed, got %v", err)
	}
	if res.Outcome != batch.OutcomeFailed {
		t.Fatalf("outcome = %s", res.Outcome)
	}
	if _, statErr := os.Stat(other); statErr != nil {
		t.Fatalf("file should be untouched: %v", statErr)
	}
}
