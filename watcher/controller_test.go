package watcher_test

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/ledgerfile/ledgerfile/watcher"
)

func TestStartLoadsInitialSnapshotWithoutWatching(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "main.ledger")
	if err := os.WriteFile(path, []byte("1970-01-01 open Assets:Cash USD\n"), 0o644); err != nil {
		t.Fatalf("seed file: %v", err)
	}

	c := watcher.New(path, nil)
	if err := c.Start(context.Background(), false); err != nil {
		t.Fatalf("Start: %v", err)
	}

	snap := c.Snapshot()
	if snap == nil {
		t.Fatalf("expected a snapshot after Start")
	}
	if _, ok := snap.Accounts.Lookup("Assets:Cash"); !ok {
		t.Fatalf("expected Assets:Cash to be open in the initial snapshot")
	}
}

func TestWatchRebuildsOnFileChange(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "main.ledger")
	if err := os.WriteFile(path, []byte("1970-01-01 open Assets:Cash USD\n"), 0o644); err != nil {
		t.Fatalf("seed file: %v", err)
	}

	c := watcher.New(path, nil)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	done := make(chan error, 1)
	go func() { done <- c.Start(ctx, true) }()

	// Give the watcher time to perform its initial load and register the
	// watch before mutating the file.
	time.Sleep(50 * time.Millisecond)

	if err := os.WriteFile(path, []byte("1970-01-01 open Assets:Cash USD\n1970-01-01 open Assets:Bank USD\n"), 0o644); err != nil {
		t.Fatalf("rewrite file: %v", err)
	}

	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		snap := c.Snapshot()
		if snap != nil {
			if _, ok := snap.Accounts.Lookup("Assets:Bank"); ok {
				cancel()
				<-done
				return
			}
		}
		time.Sleep(10 * time.Millisecond)
	}

	cancel()
	<-done
	t.Fatalf("watcher did not pick up the file change within the deadline")
}
