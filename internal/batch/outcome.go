package batch

import (
	"errors"
	"time"

	"mkvlang/internal/mkvmerge"
)

var (
	// ErrDeclined is returned by a Selector when the user aborts the current file.
	ErrDeclined = errors.New("track selection declined")
	// ErrBackupExists means a previous run left a backup behind; the file is not touched.
	ErrBackupExists = errors.New("backup already exists")
	// ErrNoOutput means mkvmerge reported success without producing the canonical file.
	ErrNoOutput = errors.New("mkvmerge produced no output")
)

// Outcome classifies what happened to one file.
type Outcome string

const (
	OutcomePatched   Outcome = "patched"
	OutcomeUnchanged Outcome = "unchanged"
	OutcomeDeclined  Outcome = "declined"
	OutcomeFailed    Outcome = "failed"
	OutcomeDryRun    Outcome = "dry_run"
)

// Result reports the processing of one file.
type Result struct {
	Path           string
	Outcome        Outcome
	Directives     []mkvmerge.LanguageDirective
	BackupPath     string // set when a backup remains on disk
	SidecarRemoved bool
	Reason         string
	Error          string
	Duration       time.Duration
}

// Stats summarizes a batch run.
type Stats struct {
	RunID       string
	Root        string
	Discovered  int
	Patched     int
	Unchanged   int
	Declined    int
	Failed      int
	DryRun      int
	Failures    []Result
	StartedAt   time.Time
	FinishedAt  time.Time
	Interrupted bool
}

// Processed returns the number of files that reached a terminal outcome.
func (s Stats) Processed() int {
	return s.Patched + s.Unchanged + s.Declined + s.Failed + s.DryRun
}

// Add counts res under its outcome.
func (s *Stats) Add(res Result) {
	switch res.Outcome {
	case OutcomePatched:
		s.Patched++
	case OutcomeUnchanged:
		s.Unchanged++
	case OutcomeDeclined:
		s.Declined++
	case OutcomeDryRun:
		s.DryRun++
	default:
		s.Failed++
		s.Failures = append(s.Failures, res)
	}
}

// Merge folds the counters and failures of other into s. Run identity and
// timestamps stay those of s.
func (s *Stats) Merge(other Stats) {
	s.Discovered += other.Discovered
	s.Patched += other.Patched
	s.Unchanged += other.Unchanged
	s.Declined += other.Declined
	s.Failed += other.Failed
	s.DryRun += other.DryRun
	s.Failures = append(s.Failures, other.Failures...)
	s.Interrupted = s.Interrupted || other.Interrupted
}
