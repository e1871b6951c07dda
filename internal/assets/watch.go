package assets

import (
	"fmt"
	"path/filepath"
	"sync"

	"github.com/Faultbox/midgard-anim/internal/logger"
	"github.com/fsnotify/fsnotify"
	"go.uber.org/zap"
)

// Watcher invalidates cached assets when files in the search directories change.
type Watcher struct {
	watcher *fsnotify.Watcher
	done    chan struct{}
	wg      sync.WaitGroup
	once    sync.Once
}

// Watch starts watching every search directory. onChange, if set, is called
// with the asset name after its cache entries are dropped.
func (m *Manager) Watch(onChange func(name string)) (*Watcher, error) {
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("creating watcher: %w", err)
	}

	m.mu.RLock()
	dirs := append([]string(nil), m.dirs...)
	m.mu.RUnlock()

	for _, d := range dirs {
		if err := fw.Add(d); err != nil {
			fw.Close()
			return nil, fmt.Errorf("watching %s: %w", d, err)
		}
	}

	w := &Watcher{watcher: fw, done: make(chan struct{})}
	w.wg.Add(1)
	go func() {
		defer w.wg.Done()
		for {
			select {
			case <-w.done:
				return
			case event, ok := <-fw.Events:
				if !ok {
					return
				}
				if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) &&
					!event.Has(fsnotify.Remove) && !event.Has(fsnotify.Rename) {
					continue
				}
				name := assetName(dirs, event.Name)
				m.Invalidate(name)
				logger.Debug("asset changed", zap.String("name", name), zap.Stringer("op", event.Op))
				if onChange != nil {
					onChange(name)
				}
			case err, ok := <-fw.Errors:
				if !ok {
					return
				}
				logger.Warn("watch error", zap.Error(err))
			}
		}
	}()
	return w, nil
}

// Close stops the watcher and waits for its goroutine to exit.
func (w *Watcher) Close() error {
	var err error
	w.once.Do(func() {
		close(w.done)
		err = w.watcher.Close()
		w.wg.Wait()
	})
	return err
}

// assetName maps a changed path back to the name it is loaded under.
func assetName(dirs []string, path string) string {
	for i := len(dirs) - 1; i >= 0; i-- {
		if rel, err := filepath.Rel(dirs[i], path); err == nil && filepath.Dir(rel) == "." {
			return rel
		}
	}
	return path
}
