package history

import "time"

// Run is one invocation of run, watch, or the root command.
type Run struct {
	ID          string
	Root        string
	Command     string
	Language    string
	DryRun      bool
	StartedAt   time.Time
	FinishedAt  *time.Time
	Discovered  int
	Patched     int
	Unchanged   int
	Declined    int
	Failed      int
	DryRunFiles int
	Interrupted bool
}

// Finished reports whether FinishRun was called for the run.
func (r Run) Finished() bool {
	return r.FinishedAt != nil
}

// FileOutcome is the journaled result of processing one file.
type FileOutcome struct {
	ID             int64
	RunID          string
	Path           string
	Outcome        string
	Directives     string // space separated "N:lang" pairs
	BackupPath     string
	SidecarRemoved bool
	Reason         string
	Error          string
	Duration       time.Duration
	RecordedAt     time.Time
}
