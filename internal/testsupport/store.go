package testsupport

import (
	"context"
	"testing"

	"aria2bt/internal/config"
	"aria2bt/internal/history"
)

// MustOpenHistory opens the history store at the config's state path and
// registers cleanup.
func MustOpenHistory(t testing.TB, cfg *config.Config) *history.Store {
	t.Helper()

	if err := cfg.EnsureDirectories(); err != nil {
		t.Fatalf("EnsureDirectories: %v", err)
	}
	store, err := history.Open(cfg.HistoryPath())
	if err != nil {
		t.Fatalf("history.Open: %v", err)
	}
	t.Cleanup(func() {
		store.Close()
	})
	return store
}

// MustListHistory returns the most recent history entries.
func MustListHistory(t testing.TB, store *history.Store, limit int) []history.Entry {
	t.Helper()

	entries, err := store.List(context.Background(), limit)
	if err != nil {
		t.Fatalf("store.List: %v", err)
	}
	return entries
}
