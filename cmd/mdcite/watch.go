package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"time"

	"github.com/fsnotify/fsnotify"
)

// watchDebounce coalesces editor save bursts into one rebuild.
const watchDebounce = 200 * time.Millisecond

// watchSet lists what a watch session reacts to. Directories are watched
// rather than files so that editors replacing a file by rename keep
// triggering events.
type watchSet struct {
	dirs  []string
	files map[string]bool // absolute paths of bibliography, CSL and metadata files
}

// newWatchSet watches the input tree plus the directories of extra files.
func newWatchSet(inputPath string, extra []string, baseDir string) (*watchSet, error) {
	ws := &watchSet{files: make(map[string]bool)}
	dirs := make(map[string]bool)

	info, err := os.Stat(inputPath)
	if err != nil {
		return nil, err
	}
	if info.IsDir() {
		err := filepath.WalkDir(inputPath, func(path string, d os.DirEntry, err error) error {
			if err != nil {
				return err
			}
			if d.IsDir() {
				dirs[path] = true
			}
			return nil
		})
		if err != nil {
			return nil, fmt.Errorf("scanning %s: %w", inputPath, err)
		}
	} else {
		dirs[filepath.Dir(inputPath)] = true
	}

	for _, p := range extra {
		if p == "" {
			continue
		}
		if !filepath.IsAbs(p) {
			p = filepath.Join(baseDir, p)
		}
		abs, err := filepath.Abs(p)
		if err != nil {
			continue
		}
		ws.files[abs] = true
		dirs[filepath.Dir(abs)] = true
	}

	for d := range dirs {
		ws.dirs = append(ws.dirs, d)
	}
	sort.Strings(ws.dirs)
	return ws, nil
}

// relevant reports whether ev should trigger a rebuild.
func (ws *watchSet) relevant(ev fsnotify.Event) bool {
	if ev.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Remove|fsnotify.Rename) == 0 {
		return false
	}
	if isMarkdownFile(ev.Name) {
		return true
	}
	abs, err := filepath.Abs(ev.Name)
	if err != nil {
		return false
	}
	return ws.files[abs]
}

// watchLoop calls rebuild after every burst of relevant changes until ctx
// is canceled.
func watchLoop(ctx context.Context, ws *watchSet, rebuild func(context.Context), logger *slog.Logger) error {
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("starting watcher: %w", err)
	}
	defer func() { _ = w.Close() }()

	for _, d := range ws.dirs {
		if err := w.Add(d); err != nil {
			return fmt.Errorf("watching %s: %w", d, err)
		}
	}
	logger.Info("watching for changes", "dirs", len(ws.dirs))

	debounce := time.NewTimer(time.Hour)
	debounce.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case ev, ok := <-w.Events:
			if !ok {
				return nil
			}
			if ws.relevant(ev) {
				logger.Debug("change detected", "path", ev.Name, "op", ev.Op.String())
				debounce.Reset(watchDebounce)
			}
		case err, ok := <-w.Errors:
			if !ok {
				return nil
			}
			logger.Warn("watcher error", "error", err)
		case <-debounce.C:
			rebuild(ctx)
		}
	}
}
