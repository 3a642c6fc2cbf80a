// Package watch reruns generation when the config, a source document or a
// template changes.
package watch

import (
	"context"
	"io/fs"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/fsnotify/fsnotify"
	"go.uber.org/zap"

	"github.com/tiranuom/intrig/internal/logger"
)

const DefaultDebounce = 300 * time.Millisecond

// RunFunc is called after a burst of changes settles.
type RunFunc func(ctx context.Context) error

type Options struct {
	// Files are watched individually. Their parent directories are
	// subscribed so editors that replace files on save are still seen.
	Files []string
	// Dirs are watched recursively.
	Dirs     []string
	Debounce time.Duration
}

type Watcher struct {
	watcher  *fsnotify.Watcher
	files    map[string]struct{}
	dirs     []string
	debounce time.Duration
	run      RunFunc
	log      *zap.SugaredLogger

	mu   sync.Mutex
	runs int
}

func New(opts Options, run RunFunc, log *zap.SugaredLogger) (*Watcher, error) {
	if log == nil {
		log = logger.Nop()
	}
	if opts.Debounce <= 0 {
		opts.Debounce = DefaultDebounce
	}

	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, errors.Wrap(err, "creating file watcher")
	}

	w := &Watcher{
		watcher:  fw,
		files:    make(map[string]struct{}),
		debounce: opts.Debounce,
		run:      run,
		log:      log,
	}

	subscribed := make(map[string]struct{})
	add := func(dir string) error {
		if _, ok := subscribed[dir]; ok {
			return nil
		}
		if err := fw.Add(dir); err != nil {
			return errors.Wrapf(err, "watching %s", dir)
		}
		subscribed[dir] = struct{}{}
		return nil
	}

	for _, f := range opts.Files {
		abs, err := filepath.Abs(f)
		if err != nil {
			fw.Close()
			return nil, errors.Wrapf(err, "resolving %s", f)
		}
		w.files[abs] = struct{}{}
		if err := add(filepath.Dir(abs)); err != nil {
			fw.Close()
			return nil, err
		}
	}

	for _, d := range opts.Dirs {
		abs, err := filepath.Abs(d)
		if err != nil {
			fw.Close()
			return nil, errors.Wrapf(err, "resolving %s", d)
		}
		w.dirs = append(w.dirs, abs)
		err = filepath.WalkDir(abs, func(path string, entry fs.DirEntry, err error) error {
			if err != nil {
				return err
			}
			if entry.IsDir() {
				return add(path)
			}
			return nil
		})
		if err != nil {
			fw.Close()
			return nil, errors.Wrapf(err, "watching %s", d)
		}
	}

	return w, nil
}

// Runs reports how many times the run function has been called.
func (w *Watcher) Runs() int {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.runs
}

// Run blocks until ctx is done. Run errors are logged and do not stop the
// watcher.
func (w *Watcher) Run(ctx context.Context) error {
	defer w.watcher.Close()

	timer := time.NewTimer(w.debounce)
	if !timer.Stop() {
		<-timer.C
	}
	defer timer.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil

		case event, ok := <-w.watcher.Events:
			if !ok {
				return nil
			}
			if !w.relevant(event) {
				continue
			}
			if event.Has(fsnotify.Create) && w.inDirs(event.Name) {
				if info, err := os.Stat(event.Name); err == nil && info.IsDir() {
					if err := w.watcher.Add(event.Name); err != nil {
						w.log.Warnw("cannot watch new directory", logger.FieldPath, event.Name, logger.FieldError, err)
					}
				}
			}
			w.log.Debugw("change detected", logger.FieldFile, event.Name, "op", event.Op.String())
			timer.Reset(w.debounce)

		case <-timer.C:
			w.log.Infow("regenerating after change")
			err := w.run(ctx)
			w.mu.Lock()
			w.runs++
			w.mu.Unlock()
			if err != nil {
				w.log.Errorw("regeneration failed", logger.FieldError, err)
			}

		case err, ok := <-w.watcher.Errors:
			if !ok {
				return nil
			}
			w.log.Warnw("watcher error", logger.FieldError, err)
		}
	}
}

func (w *Watcher) relevant(event fsnotify.Event) bool {
	if event.Op == fsnotify.Chmod {
		return false
	}
	if _, ok := w.files[filepath.Clean(event.Name)]; ok {
		return true
	}
	return w.inDirs(event.Name)
}

func (w *Watcher) inDirs(path string) bool {
	for _, d := range w.dirs {
		rel, err := filepath.Rel(d, path)
		if err == nil && filepath.IsLocal(rel) {
			return true
		}
	}
	return false
}
