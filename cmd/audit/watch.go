package audit

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/hashicorp/go-hclog"
)

const watchDebounce = 500 * time.Millisecond

// runWatchedAudit audits once, then re-audits whenever a watched source file
// changes. Events are debounced so a burst of saves produces one run.
func runWatchedAudit(ctx context.Context, log hclog.Logger, options *RunOptionsAudit) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	defer watcher.Close()

	if err := addWatchRecursive(watcher, options.TargetPath); err != nil {
		return err
	}

	trigger := func() {
		if err := runSingleAudit(ctx, log, options); err != nil {
			log.Error("re-audit failed", "error", err)
		}
	}
	trigger()
	log.Info("watching for changes", "path", options.TargetPath)

	var timer *time.Timer
	for {
		select {
		case <-ctx.Done():
			if timer != nil {
				timer.Stop()
			}
			log.Info("watch mode stopped")
			return nil
		case ev, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if !isWatchedSource(ev.Name) {
				if ev.Op.Has(fsnotify.Create) {
					if info, err := os.Stat(ev.Name); err == nil && info.IsDir() && !isExcludedDir(filepath.Base(ev.Name)) {
						_ = watcher.Add(ev.Name)
					}
				}
				continue
			}
			if timer != nil {
				timer.Stop()
			}
			timer = time.AfterFunc(watchDebounce, trigger)
		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			log.Error("watch error", "error", err)
		}
	}
}

// addWatchRecursive registers the target tree with the watcher, skipping the
// same directories the scanner skips.
func addWatchRecursive(w *fsnotify.Watcher, root string) error {
	return filepath.Walk(root, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return nil
		}
		if info.IsDir() {
			if isExcludedDir(info.Name()) {
				return filepath.SkipDir
			}
			return w.Add(path)
		}
		return nil
	})
}

func isExcludedDir(name string) bool {
	for _, excluded := range AppConfig.Scanner.ExcludedDirs {
		if strings.EqualFold(name, excluded) {
			return true
		}
	}
	return false
}

func isWatchedSource(path string) bool {
	ext := strings.ToLower(filepath.Ext(path))
	for _, include := range AppConfig.Scanner.IncludeExtensions {
		if ext == include {
			return true
		}
	}
	return false
}
