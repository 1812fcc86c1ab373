// Package watcher reports changes to note directories.
package watcher

import (
	"context"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/fsnotify/fsnotify"

	"ragquiz/internal/loader"
	"ragquiz/internal/logx"
)

// DefaultDebounce is the quiet period after the last change before a
// batch of changes is reported.
const DefaultDebounce = 500 * time.Millisecond

// Watcher wraps fsnotify and coalesces bursts of events on note files.
type Watcher struct {
	watcher  *fsnotify.Watcher
	debounce time.Duration
}

// New creates a watcher. A non-positive debounce uses DefaultDebounce.
func New(debounce time.Duration) (*Watcher, error) {
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	if debounce <= 0 {
		debounce = DefaultDebounce
	}
	return &Watcher{watcher: w, debounce: debounce}, nil
}

// Watch monitors dirs and their subdirectories. Each value sent on the
// returned channel is the sorted set of note paths changed since the
// previous send. The channel closes when ctx is done.
func (w *Watcher) Watch(ctx context.Context, dirs ...string) (<-chan []string, error) {
	for _, d := range dirs {
		if err := w.addTree(d); err != nil {
			return nil, err
		}
	}

	out := make(chan []string, 1)
	go func() {
		defer close(out)
		pending := make(map[string]struct{})
		timer := time.NewTimer(w.debounce)
		timer.Stop()
		for {
			select {
			case <-ctx.Done():
				timer.Stop()
				return
			case event, ok := <-w.watcher.Events:
				if !ok {
					return
				}
				if event.Op.Has(fsnotify.Create) {
					if info, err := os.Stat(event.Name); err == nil && info.IsDir() {
						if err := w.addTree(event.Name); err != nil {
							logx.Warnf("watch %s: %v", event.Name, err)
						}
						continue
					}
				}
				if !relevant(event) {
					continue
				}
				logx.Debugf("watch: %s %s", event.Op, event.Name)
				pending[event.Name] = struct{}{}
				timer.Reset(w.debounce)
			case <-timer.C:
				if len(pending) == 0 {
					continue
				}
				batch := make([]string, 0, len(pending))
				for p := range pending {
					batch = append(batch, p)
				}
				clear(pending)
				sort.Strings(batch)
				select {
				case out <- batch:
				case <-ctx.Done():
					return
				}
			case err, ok := <-w.watcher.Errors:
				if !ok {
					return
				}
				logx.Warnf("watch error: %v", err)
			}
		}
	}()
	return out, nil
}

// Close stops the watcher.
func (w *Watcher) Close() error {
	return w.watcher.Close()
}

func (w *Watcher) addTree(root string) error {
	return filepath.WalkDir(root, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() {
			return nil
		}
		if p != root && strings.HasPrefix(d.Name(), ".") {
			return filepath.SkipDir
		}
		return w.watcher.Add(p)
	})
}

func relevant(event fsnotify.Event) bool {
	if !loader.Supported(event.Name) {
		return false
	}
	return event.Op.Has(fsnotify.Create) || event.Op.Has(fsnotify.Write) ||
		event.Op.Has(fsnotify.Remove) || event.Op.Has(fsnotify.Rename)
}
