package engine

import (
	"context"
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"

	starconv "github.com/leapstack-labs/leaplayout/internal/convert/starlark"
	"github.com/leapstack-labs/leaplayout/internal/document"
)

// DefaultDebounce is how long watch waits for changes to settle.
const DefaultDebounce = 100 * time.Millisecond

// WatchOptions configures Watch.
type WatchOptions struct {
	Debounce time.Duration
	// OnBuild is called after every build, including the initial one.
	OnBuild func(*BuildResult, error)
}

// Watch builds once, then rebuilds whenever a layout, style, or converter
// file changes, until ctx is cancelled. The cache decides what each
// rebuild compiles, so an edited partial recompiles only its dependents.
func (e *Engine) Watch(ctx context.Context, opts WatchOptions) error {
	if opts.Debounce <= 0 {
		opts.Debounce = DefaultDebounce
	}
	report := func(res *BuildResult, err error) {
		if opts.OnBuild != nil {
			opts.OnBuild(res, err)
		}
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	defer func() { _ = watcher.Close() }()

	for _, dir := range []string{e.cfg.LayoutsDir, e.cfg.StylesDir, e.cfg.ConvertersDir} {
		if dir == "" {
			continue
		}
		if err := watchDirRecursive(watcher, dir); err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				e.logger.Debug("not watching missing directory", "dir", dir)
				continue
			}
			return err
		}
	}

	res, err := e.Build(ctx, BuildOptions{})
	report(res, err)

	var (
		timer           *time.Timer
		fire            <-chan time.Time
		convertersDirty bool
	)
	for {
		select {
		case <-ctx.Done():
			if timer != nil {
				timer.Stop()
			}
			return nil

		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if event.Has(fsnotify.Create) {
				if info, err := os.Stat(event.Name); err == nil && info.IsDir() {
					if err := watchDirRecursive(watcher, event.Name); err != nil {
						e.logger.Warn("failed to watch new directory", "dir", event.Name, "error", err)
					}
					continue
				}
			}
			if event.Has(fsnotify.Chmod) && !event.Has(fsnotify.Write) {
				continue
			}
			switch filepath.Ext(event.Name) {
			case document.Ext:
			case starconv.Ext:
				convertersDirty = true
			default:
				continue
			}
			e.logger.Debug("file changed", "file", event.Name, "op", event.Op.String())

			if timer == nil {
				timer = time.NewTimer(opts.Debounce)
			} else {
				if !timer.Stop() {
					select {
					case <-timer.C:
					default:
					}
				}
				timer.Reset(opts.Debounce)
			}
			fire = timer.C

		case <-fire:
			fire = nil
			if convertersDirty {
				convertersDirty = false
				if err := e.ReloadConverters(); err != nil {
					e.logger.Error("failed to reload converters", "error", err)
					report(nil, err)
					continue
				}
				e.logger.Info("converters reloaded", "fingerprint", e.Fingerprint())
			}
			res, err := e.Build(ctx, BuildOptions{})
			report(res, err)

		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			e.logger.Error("watcher error", "error", err)
		}
	}
}

// watchDirRecursive adds a directory and all subdirectories to the watcher.
func watchDirRecursive(watcher *fsnotify.Watcher, dir string) error {
	return filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return watcher.Add(path)
		}
		return nil
	})
}
