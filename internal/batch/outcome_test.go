package batch

import "testing"

func TestStatsAddAndMerge(t *testing.T) {
	var scan Stats
	scan.Add(Result{Path: "/m/a.mkv", Outcome: OutcomePatched})
	scan.Add(Result{Path: "/m/b.mkv", Outcome: OutcomeFailed, Error: "boom"})
	scan.Discovered = 2

	var watched Stats
	watched.Add(Result{Path: "/m/c.mkv", Outcome: OutcomeDeclined})
	watched.Add(Result{Path: "/m/d.mkv", Outcome: ""})
	watched.Discovered = 2

	watched.Merge(scan)
	if watched.Discovered != 4 || watched.Patched != 1 || watched.Declined != 1 || watched.Failed != 2 {
		t.Fatalf("unexpected merged stats %+v", watched)
	}
	if len(watched.Failures) != 2 {
		t.Fatalf("expected both failures kept, got %+v", watched.Failures)
	}
	if watched.Processed() != 4 {
		t.Fatalf("Processed = %d", watched.Processed())
	}
}
