package testsupport

import (
	"testing"

	"mkvlang/internal/config"
	"mkvlang/internal/history"
)

// MustOpenHistory opens the journal configured in cfg and closes it on cleanup.
func MustOpenHistory(t testing.TB, cfg *config.Config) *history.Store {
	t.Helper()
	store, err := history.Open(cfg.History.Path)
	if err != nil {
		t.Fatalf("history.Open: %v", err)
	}
	t.Cleanup(func() {
		_ = store.Close()
	})
	return store
}
