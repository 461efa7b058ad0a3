// Package watcher wires fsnotify (declared but never exercised by the
// teacher's go.mod) into a debounced reload loop: it watches every file the
// Loader touched, and on change re-runs the Loader + Evaluator off the
// reader path, swapping an atomic.Pointer so no reader ever observes a
// partially rebuilt Snapshot. Grounded on the reload shape of the teacher's
// web.Server.reloadLedger (web/web.go), generalized from its
// sync.RWMutex-guarded pointer to the spec's atomic-swap model.
package watcher

import (
	"context"
	"fmt"
	"path/filepath"
	"sync/atomic"
	"time"

	"github.com/fsnotify/fsnotify"
	"go.uber.org/zap"

	"github.com/ledgerfile/ledgerfile/errorfmt"
	"github.com/ledgerfile/ledgerfile/ledger"
	"github.com/ledgerfile/ledgerfile/loader"
)

// DebounceInterval is how long the Controller waits after the most recent
// filesystem event before rebuilding, per spec §4.7.
const DebounceInterval = 250 * time.Millisecond

// Controller owns the single mutable resource a running server reads from:
// the current Snapshot. Rebuilds happen on a dedicated goroutine; readers
// call Snapshot and never block on a rebuild in progress.
type Controller struct {
	root    string
	log     *zap.Logger
	current atomic.Pointer[ledger.Snapshot]
	watcher *fsnotify.Watcher
	watched map[string]bool
}

// New builds a Controller for the ledger rooted at root. Call Start to
// perform the initial load and, unless noWatch, begin watching for changes.
func New(root string, log *zap.Logger) *Controller {
	if log == nil {
		log = zap.NewNop()
	}
	return &Controller{root: root, log: log, watched: make(map[string]bool)}
}

// Snapshot returns the most recently built Snapshot. Safe for concurrent
// use by any number of readers; never blocks on a rebuild in progress.
func (c *Controller) Snapshot() *ledger.Snapshot {
	return c.current.Load()
}

// Start performs the initial load and, when watch is true, begins watching
// every file the Loader touched for changes, rebuilding on each one after
// DebounceInterval of quiet. It blocks until ctx is canceled when watch is
// true; otherwise it returns after the initial load.
func (c *Controller) Start(ctx context.Context, watch bool) error {
	if err := c.reload(ctx); err != nil {
		return err
	}
	if !watch {
		return nil
	}

	w, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("create watcher: %w", err)
	}
	c.watcher = w
	defer w.Close()

	if err := c.syncWatchedFiles(); err != nil {
		return err
	}

	c.log.Info("watching ledger files for changes", zap.Int("files", len(c.watched)))
	return c.watchLoop(ctx)
}

func (c *Controller) watchLoop(ctx context.Context) error {
	var debounce *time.Timer
	var debounceC <-chan time.Time

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case event, ok := <-c.watcher.Events:
			if !ok {
				return nil
			}
			if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename|fsnotify.Remove) == 0 {
				continue
			}
			c.log.Debug("ledger file changed", zap.String("path", event.Name), zap.String("op", event.Op.String()))
			if debounce == nil {
				debounce = time.NewTimer(DebounceInterval)
			} else {
				if !debounce.Stop() {
					select {
					case <-debounce.C:
					default:
					}
				}
				debounce.Reset(DebounceInterval)
			}
			debounceC = debounce.C
		case <-debounceC:
			debounceC = nil
			if err := c.reload(ctx); err != nil {
				c.log.Warn("rebuild failed, keeping previous snapshot", zap.Error(err))
				continue
			}
			if err := c.syncWatchedFiles(); err != nil {
				c.log.Warn("failed to update watch set", zap.Error(err))
			}
		case err, ok := <-c.watcher.Errors:
			if !ok {
				return nil
			}
			c.log.Warn("watcher error", zap.Error(err))
		}
	}
}

// reload runs the Loader and Evaluator and atomically swaps the Snapshot in
// on success. A failed reload (spec §7: IoError halts the build) leaves the
// previous Snapshot in place.
func (c *Controller) reload(ctx context.Context) error {
	ldr := loader.New()
	result, err := ldr.Load(ctx, c.root)
	if err != nil {
		return fmt.Errorf("load %s: %w", c.root, err)
	}

	snap := ledger.New().Evaluate(result.AST)
	// The evaluator only knows about its own diagnostics; prepend the
	// parser/loader diagnostics (syntax errors, bad includes) gathered on
	// the way in so a Snapshot's Diagnostics is the complete picture.
	snap.Diagnostics = append(append([]errorfmt.Diagnostic(nil), result.Diagnostics...), snap.Diagnostics...)
	snap.Files = result.Files

	c.current.Store(snap)
	c.log.Info("ledger rebuilt", zap.Int("directives", len(result.AST.Directives)), zap.Int("diagnostics", len(snap.Diagnostics)))
	return nil
}

func (c *Controller) syncWatchedFiles() error {
	snap := c.current.Load()
	if snap == nil {
		return nil
	}
	seen := make(map[string]bool, len(snap.Files))
	for _, f := range snap.Files {
		seen[f] = true
		if !c.watched[f] {
			if err := c.watcher.Add(f); err != nil {
				return fmt.Errorf("watch %s: %w", f, err)
			}
			c.watched[f] = true
		}
		dir := filepath.Dir(f)
		if !c.watched[dir] {
			// Watching the directory, not just the file, lets us observe
			// the rename-based atomic writes the mutation service performs.
			if err := c.watcher.Add(dir); err == nil {
				c.watched[dir] = true
			}
		}
	}
	for f := range c.watched {
		if !seen[f] && filepath.Ext(f) != "" {
			_ = c.watcher.Remove(f)
			delete(c.watched, f)
		}
	}
	return nil
}
