// Package watcher re-indexes source files as they change on disk.
package watcher

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/mvp-joe/ferrite/internal/discovery"
	"github.com/mvp-joe/ferrite/internal/logging"
)

// DefaultDebounce is the quiet period used when none is configured.
const DefaultDebounce = 250 * time.Millisecond

// FileWatcher reports batches of changed project files. Events are
// accumulated until the tree has been quiet for the debounce period, then
// delivered once as sorted, slash-separated relative paths.
type FileWatcher struct {
	watcher   *fsnotify.Watcher
	discovery *discovery.Discovery
	debounce  time.Duration
	logger    *slog.Logger

	cancel   context.CancelFunc
	doneCh   chan struct{}
	stopOnce sync.Once
}

// NewFileWatcher watches every directory under disc's root that discovery
// does not skip.
func NewFileWatcher(disc *discovery.Discovery, debounce time.Duration, logger *slog.Logger) (*FileWatcher, error) {
	if debounce <= 0 {
		debounce = DefaultDebounce
	}
	if logger == nil {
		logger = logging.Nop()
	}
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}

	fw := &FileWatcher{
		watcher:   w,
		discovery: disc,
		debounce:  debounce,
		logger:    logger,
		doneCh:    make(chan struct{}),
	}
	if err := fw.addDirectoriesRecursively(disc.Root()); err != nil {
		w.Close()
		return nil, err
	}
	return fw, nil
}

// Start begins watching and calls callback from a single goroutine with each
// debounced batch.
func (fw *FileWatcher) Start(ctx context.Context, callback func(files []string)) error {
	if callback == nil {
		return errors.New("watcher: nil callback")
	}
	if fw.cancel != nil {
		return errors.New("watcher: already started")
	}
	ctx, fw.cancel = context.WithCancel(ctx)
	go fw.watch(ctx, callback)
	return nil
}

// Stop ends the watch loop and releases the fsnotify handle. It is safe to
// call more than once.
func (fw *FileWatcher) Stop() error {
	var err error
	fw.stopOnce.Do(func() {
		if fw.cancel != nil {
			fw.cancel()
			<-fw.doneCh
		} else {
			close(fw.doneCh)
		}
		err = fw.watcher.Close()
	})
	return err
}

func (fw *FileWatcher) watch(ctx context.Context, callback func(files []string)) {
	defer close(fw.doneCh)

	var timer *time.Timer
	fire := make(chan struct{}, 1)
	pending := make(map[string]bool)

	for {
		select {
		case <-ctx.Done():
			if timer != nil {
				timer.Stop()
			}
			return

		case event, ok := <-fw.watcher.Events:
			if !ok {
				return
			}
			if event.Has(fsnotify.Create) {
				if info, err := os.Stat(event.Name); err == nil && info.IsDir() {
					if err := fw.addDirectoriesRecursively(event.Name); err != nil {
						fw.logger.Warn("failed to watch new directory", "dir", event.Name, "error", err)
					}
					continue
				}
			}
			rel, ok := fw.relevant(event)
			if !ok {
				continue
			}
			pending[rel] = true

			if timer != nil {
				timer.Stop()
			}
			timer = time.AfterFunc(fw.debounce, func() {
				select {
				case fire <- struct{}{}:
				default:
				}
			})

		case <-fire:
			if len(pending) == 0 {
				continue
			}
			files := make([]string, 0, len(pending))
			for f := range pending {
				files = append(files, f)
			}
			sort.Strings(files)
			pending = make(map[string]bool)
			callback(files)

		case err, ok := <-fw.watcher.Errors:
			if !ok {
				return
			}
			fw.logger.Warn("file watcher error", "error", err)
		}
	}
}

// relevant returns the relative path of a write, create, remove or rename of
// a file discovery would include.
func (fw *FileWatcher) relevant(event fsnotify.Event) (string, bool) {
	if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) &&
		!event.Has(fsnotify.Remove) && !event.Has(fsnotify.Rename) {
		return "", false
	}
	rel, err := filepath.Rel(fw.discovery.Root(), event.Name)
	if err != nil {
		return "", false
	}
	rel = filepath.ToSlash(rel)
	return rel, fw.discovery.Matches(rel)
}

func (fw *FileWatcher) addDirectoriesRecursively(dir string) error {
	return filepath.WalkDir(dir, func(path string, entry os.DirEntry, err error) error {
		if err != nil {
			if path == dir {
				return err
			}
			fw.logger.Warn("error accessing path", "path", path, "error", err)
			return nil
		}
		if !entry.IsDir() {
			return nil
		}
		if rel, err := filepath.Rel(fw.discovery.Root(), path); err == nil && rel != "." && fw.discovery.IgnoredDir(rel) {
			return filepath.SkipDir
		}
		if err := fw.watcher.Add(path); err != nil {
			fw.logger.Warn("failed to watch directory", "dir", path, "error", err)
		}
		return nil
	})
}
