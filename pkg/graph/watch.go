package graph

import (
	"fmt"
	"path/filepath"
	"sync"

	"github.com/fsnotify/fsnotify"
)

// Watcher reads a dataset file and reloads it whenever the file changes.
//
// The parent directory is watched rather than the file itself so that
// editors which replace files via rename are still observed.
type Watcher struct {
	path     string
	mu       sync.RWMutex
	current  *Dataset
	onChange []func(*Dataset)
	onError  []func(error)
}

// NewWatcher creates a Watcher and performs the initial load.
func NewWatcher(path string) (*Watcher, error) {
	w := &Watcher{path: path}
	d, err := ReadDatasetFile(path)
	if err != nil {
		return nil, err
	}
	w.current = d
	return w, nil
}

// Dataset returns the most recently loaded dataset.
func (w *Watcher) Dataset() *Dataset {
	w.mu.RLock()
	defer w.mu.RUnlock()
	return w.current
}

// OnChange registers a callback invoked with every successfully reloaded dataset.
func (w *Watcher) OnChange(fn func(*Dataset)) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.onChange = append(w.onChange, fn)
}

// OnError registers a callback invoked when a reload fails.
// The previous dataset stays current.
func (w *Watcher) OnError(fn func(error)) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.onError = append(w.onError, fn)
}

// Watch starts a background goroutine that reloads the dataset on file
// changes. Call the returned stop function to clean up.
func (w *Watcher) Watch() (stop func(), err error) {
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("dataset watcher: %w", err)
	}
	dir := filepath.Dir(w.path)
	if err := fw.Add(dir); err != nil {
		fw.Close()
		return nil, fmt.Errorf("dataset watcher add %s: %w", dir, err)
	}

	target := filepath.Clean(w.path)
	done := make(chan struct{})
	go func() {
		defer fw.Close()
		for {
			select {
			case ev, ok := <-fw.Events:
				if !ok {
					return
				}
				if filepath.Clean(ev.Name) != target {
					continue
				}
				if ev.Has(fsnotify.Write) || ev.Has(fsnotify.Create) {
					w.Reload()
				}
			case err, ok := <-fw.Errors:
				if !ok {
					return
				}
				w.notifyError(err)
			case <-done:
				return
			}
		}
	}()

	var once sync.Once
	return func() { once.Do(func() { close(done) }) }, nil
}

// Reload forces an immediate re-read of the dataset file.
func (w *Watcher) Reload() (*Dataset, error) {
	d, err := ReadDatasetFile(w.path)
	if err != nil {
		w.notifyError(err)
		return nil, err
	}
	w.mu.Lock()
	w.current = d
	callbacks := make([]func(*Dataset), len(w.onChange))
	copy(callbacks, w.onChange)
	w.mu.Unlock()
	for _, fn := range callbacks {
		fn(d)
	}
	return d, nil
}

func (w *Watcher) notifyError(err error) {
	w.mu.RLock()
	callbacks := make([]func(error), len(w.onError))
	copy(callbacks, w.onError)
	w.mu.RUnlock()
	for _, fn := range callbacks {
		fn(err)
	}
}
