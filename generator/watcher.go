package generator

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/pterm/pterm"
)

// DefaultDebounce collapses the burst of events an editor save produces into one run
const DefaultDebounce = 300 * time.Millisecond

// Watcher reruns the Orchestrator whenever a trait, definition or blueprint changes.
// Runs never overlap: events are collected on one goroutine and flushed after a quiet window.
type Watcher struct {
	orchestrator *Orchestrator
	root         string
	debounce     time.Duration
	onResult     func(*Result, error)
}

func NewWatcher(orchestrator *Orchestrator, root string, debounce time.Duration, onResult func(*Result, error)) *Watcher {
	if debounce <= 0 {
		debounce = DefaultDebounce
	}
	return &Watcher{
		orchestrator: orchestrator,
		root:         root,
		debounce:     debounce,
		onResult:     onResult,
	}
}

// Run performs an initial pass and then watches until ctx is cancelled
func (w *Watcher) Run(ctx context.Context) error {
	fsWatcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("%w: failed to start watcher: %w", ErrIO, err)
	}
	defer fsWatcher.Close()

	project, err := NewProject(w.orchestrator.fs, w.root, w.orchestrator.layout)
	if err != nil {
		return err
	}

	for _, dir := range []string{project.Root, project.IncludeDir, project.SrcDir, project.BlueprintsDir} {
		if err := fsWatcher.Add(dir); err != nil {
			return fmt.Errorf("%w: failed to watch %s: %w", ErrIO, dir, err)
		}
		pterm.Debug.Printfln("watching directory %s", dir)
	}

	w.runOnce(ctx)

	// Stop and Reset discard stale ticks since Go 1.23, so no draining is needed
	timer := time.NewTimer(w.debounce)
	timer.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil

		case event, ok := <-fsWatcher.Events:
			if !ok {
				return nil
			}
			if !w.relevant(event, project.Module) {
				continue
			}
			pterm.Debug.Printfln("%s %s", event.Op, event.Name)
			timer.Reset(w.debounce)

		case err, ok := <-fsWatcher.Errors:
			if !ok {
				return nil
			}
			pterm.Warning.Printfln("watcher error: %v", err)

		case <-timer.C:
			w.runOnce(ctx)
		}
	}
}

func (w *Watcher) runOnce(ctx context.Context) {
	result, err := w.orchestrator.Run(ctx, w.root)
	if w.onResult != nil {
		w.onResult(result, err)
	}
}

// relevant drops events for generated outputs, their temp files and chmod-only changes
func (w *Watcher) relevant(event fsnotify.Event, module string) bool {
	if event.Op == fsnotify.Chmod {
		return false
	}
	name := filepath.Base(event.Name)
	if strings.HasPrefix(name, module) {
		return false
	}
	if filepath.Dir(event.Name) == filepath.Clean(w.absRoot()) && name != IgnoreFileName {
		return false
	}
	return true
}

func (w *Watcher) absRoot() string {
	abs, err := filepath.Abs(w.root)
	if err != nil {
		return w.root
	}
	return abs
}
