// Package watch reruns a generation whenever its sources change.
package watch

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"slices"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/syssam/kodgen/compiler"
)

// DefaultDebounce is how long the watcher waits for a burst of file
// events to settle before running.
const DefaultDebounce = 300 * time.Millisecond

// RunFunc performs one generation.
type RunFunc func(ctx context.Context) *compiler.Report

// Watcher runs a generation each time a watched source changes.
type Watcher struct {
	// Debounce defaults to DefaultDebounce.
	Debounce time.Duration
	// Extensions are the files that trigger a run in watched directories.
	// Defaults to compiler.DefaultExtensions.
	Extensions []string
	// OnReport receives the report of every run.
	OnReport func(*compiler.Report)
	Logger   *slog.Logger

	settings compiler.ManagerSettings
	run      RunFunc
	fsw      *fsnotify.Watcher

	mu    sync.Mutex
	timer *time.Timer
	runs  chan struct{}
}

// New returns a watcher over the files and directories of settings.
// Directories are watched recursively, skipping ignored ones.
func New(settings compiler.ManagerSettings, run RunFunc) (*Watcher, error) {
	if run == nil {
		return nil, errors.New("watch: nil run function")
	}
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("watch: create watcher: %w", err)
	}
	w := &Watcher{
		Debounce:   DefaultDebounce,
		Extensions: settings.SupportedExtensions,
		Logger:     slog.Default(),
		settings:   settings,
		run:        run,
		fsw:        fsw,
		runs:       make(chan struct{}, 1),
	}
	if len(w.Extensions) == 0 {
		w.Extensions = compiler.DefaultExtensions
	}
	if err := w.addAll(); err != nil {
		fsw.Close()
		return nil, err
	}
	return w, nil
}

func (w *Watcher) addAll() error {
	for _, f := range w.settings.Files {
		// Editors replace files on save; watching the directory survives it.
		if err := w.fsw.Add(filepath.Dir(f)); err != nil {
			return fmt.Errorf("watch: %s: %w", f, err)
		}
	}
	for _, d := range w.settings.Directories {
		if err := w.addTree(d); err != nil {
			return err
		}
	}
	return nil
}

func (w *Watcher) addTree(root string) error {
	return filepath.WalkDir(root, func(path string, entry os.DirEntry, err error) error {
		if err != nil {
			return fmt.Errorf("watch: %s: %w", path, err)
		}
		if !entry.IsDir() {
			return nil
		}
		if w.ignoredDir(path) {
			return filepath.SkipDir
		}
		if err := w.fsw.Add(path); err != nil {
			return fmt.Errorf("watch: %s: %w", path, err)
		}
		return nil
	})
}

// Watched returns the watched directories.
func (w *Watcher) Watched() []string {
	list := w.fsw.WatchList()
	slices.Sort(list)
	return list
}

// Run performs a first generation, then one after every burst of changes,
// until ctx is done.
func (w *Watcher) Run(ctx context.Context) error {
	defer w.fsw.Close()
	w.generate(ctx)
	for {
		select {
		case <-ctx.Done():
			w.stopTimer()
			return nil
		case event, ok := <-w.fsw.Events:
			if !ok {
				return nil
			}
			w.handle(event)
		case err, ok := <-w.fsw.Errors:
			if !ok {
				return nil
			}
			w.Logger.Warn("watch error", "error", err)
		case <-w.runs:
			w.generate(ctx)
		}
	}
}

func (w *Watcher) handle(event fsnotify.Event) {
	if event.Has(fsnotify.Create) {
		if info, err := os.Stat(event.Name); err == nil && info.IsDir() && !w.ignoredDir(event.Name) {
			if err := w.addTree(event.Name); err != nil {
				w.Logger.Warn("cannot watch new directory", "dir", event.Name, "error", err)
			}
			return
		}
	}
	if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) && !event.Has(fsnotify.Rename) {
		return
	}
	if !w.relevant(event.Name) {
		return
	}
	w.Logger.Debug("source changed", "file", event.Name, "op", event.Op.String())
	w.schedule()
}

// schedule starts, or restarts, the debounce timer.
func (w *Watcher) schedule() {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.timer != nil {
		w.timer.Stop()
	}
	w.timer = time.AfterFunc(w.Debounce, func() {
		select {
		case w.runs <- struct{}{}:
		default:
		}
	})
}

func (w *Watcher) stopTimer() {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.timer != nil {
		w.timer.Stop()
	}
}

func (w *Watcher) generate(ctx context.Context) {
	report := w.run(ctx)
	if report == nil {
		return
	}
	w.Logger.Info("generation done",
		"run", report.RunID.String(),
		"generated", len(report.Generated),
		"up_to_date", len(report.UpToDate),
		"errors", len(report.Errors))
	if w.OnReport != nil {
		w.OnReport(report)
	}
}

// relevant reports whether a change to path should trigger a run.
func (w *Watcher) relevant(path string) bool {
	abs, err := filepath.Abs(path)
	if err != nil {
		return false
	}
	for _, f := range w.settings.Files {
		if fa, err := filepath.Abs(f); err == nil && fa == abs {
			return true
		}
	}
	for _, f := range w.settings.IgnoredFiles {
		if fa, err := filepath.Abs(f); err == nil && fa == abs {
			return false
		}
	}
	if w.ignoredDir(filepath.Dir(abs)) {
		return false
	}
	if !slices.Contains(w.Extensions, filepath.Ext(abs)) {
		return false
	}
	for _, d := range w.settings.Directories {
		if da, err := filepath.Abs(d); err == nil && compiler.Within(abs, da) {
			return true
		}
	}
	return false
}

func (w *Watcher) ignoredDir(path string) bool {
	abs, err := filepath.Abs(path)
	if err != nil {
		return false
	}
	for _, d := range w.settings.IgnoredDirectories {
		if da, err := filepath.Abs(d); err == nil && compiler.Within(abs, da) {
			return true
		}
	}
	return false
}
