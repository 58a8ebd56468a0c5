// Package watch reports changes below a skill repository, debounced, so
// callers can rescan and resync.
package watch

import (
	"context"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/arthur-debert/skillman/pkg/errors"
	"github.com/arthur-debert/skillman/pkg/logging"
	"github.com/fsnotify/fsnotify"
)

// DefaultDebounce is the quiet period before a change is reported.
const DefaultDebounce = 500 * time.Millisecond

// Options configures a Watcher.
type Options struct {
	Debounce time.Duration

	// Skip reports whether a directory, by name and slash separated path
	// relative to the root, is ignored. Hidden directories are always
	// ignored.
	Skip func(name, rel string) bool
}

// Watcher watches every directory of a tree.
type Watcher struct {
	root string
	opts Options
	fsw  *fsnotify.Watcher
}

// New watches root and its subdirectories.
func New(root string, opts Options) (*Watcher, error) {
	if opts.Debounce <= 0 {
		opts.Debounce = DefaultDebounce
	}
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrInternal, "failed to create watcher")
	}
	w := &Watcher{root: filepath.Clean(root), opts: opts, fsw: fsw}
	if err := w.addTree(w.root); err != nil {
		_ = fsw.Close()
		return nil, err
	}
	return w, nil
}

// Close stops watching.
func (w *Watcher) Close() error {
	return w.fsw.Close()
}

func (w *Watcher) rel(path string) string {
	rel, err := filepath.Rel(w.root, path)
	if err != nil {
		return filepath.ToSlash(path)
	}
	return filepath.ToSlash(rel)
}

// ignored reports whether path lies in a skipped directory.
func (w *Watcher) ignored(path string, isDir bool) bool {
	rel := w.rel(path)
	if rel == "." {
		return false
	}
	parts := strings.Split(rel, "/")
	if !isDir {
		parts = parts[:len(parts)-1]
	}
	for i, part := range parts {
		if strings.HasPrefix(part, ".") {
			return true
		}
		if w.opts.Skip != nil && w.opts.Skip(part, strings.Join(parts[:i+1], "/")) {
			return true
		}
	}
	return false
}

func (w *Watcher) addTree(root string) error {
	logger := logging.GetLogger("watch")
	return filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			if path == root {
				return errors.Wrapf(err, errors.ErrNotFound, "cannot watch %s", root)
			}
			return nil
		}
		if !d.IsDir() {
			return nil
		}
		if path != w.root && w.ignored(path, true) {
			return filepath.SkipDir
		}
		if err := w.fsw.Add(path); err != nil {
			logger.Debug().Err(err).Str("dir", path).Msg("cannot watch directory")
		}
		return nil
	})
}

// Run calls onChange after every burst of changes until ctx is done or the
// watcher is closed. onChange errors are logged and do not stop the loop.
func (w *Watcher) Run(ctx context.Context, onChange func(context.Context) error) error {
	logger := logging.GetLogger("watch")

	var timer *time.Timer
	var fire <-chan time.Time
	defer func() {
		if timer != nil {
			timer.Stop()
		}
	}()

	for {
		select {
		case <-ctx.Done():
			return nil

		case event, ok := <-w.fsw.Events:
			if !ok {
				return nil
			}
			if event.Op == fsnotify.Chmod {
				continue
			}
			isDir := false
			if event.Has(fsnotify.Create) {
				if info, err := os.Stat(event.Name); err == nil && info.IsDir() {
					isDir = true
				}
			}
			if w.ignored(event.Name, isDir) {
				continue
			}
			if isDir {
				if err := w.addTree(event.Name); err != nil {
					logger.Debug().Err(err).Str("dir", event.Name).Msg("cannot watch new directory")
				}
			}
			logger.Debug().Str("path", event.Name).Str("op", event.Op.String()).Msg("change")

			if timer == nil {
				timer = time.NewTimer(w.opts.Debounce)
			} else {
				if !timer.Stop() {
					select {
					case <-timer.C:
					default:
					}
				}
				timer.Reset(w.opts.Debounce)
			}
			fire = timer.C

		case <-fire:
			fire = nil
			if err := onChange(ctx); err != nil {
				logger.Warn().Err(err).Msg("change handler failed")
			}

		case err, ok := <-w.fsw.Errors:
			if !ok {
				return nil
			}
			logger.Warn().Err(err).Msg("watcher error")
		}
	}
}
