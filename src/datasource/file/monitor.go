// monitor.go
package file

import (
	"context"
	"fmt"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/sirupsen/logrus"
)

// FileMonitor watches a fixed set of input files and reports a change once
// writes to any of them have settled for the debounce interval.
type FileMonitor struct {
	watcher  *fsnotify.Watcher
	files    map[string]struct{}
	debounce time.Duration
	log      logrus.FieldLogger

	mu      sync.Mutex
	pending string
}

// NewFileMonitor watches the directories holding files. Directories are
// watched instead of the files so editors that replace files atomically are
// still seen.
func NewFileMonitor(files []string, debounce time.Duration, log logrus.FieldLogger) (*FileMonitor, error) {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("create watcher: %w", err)
	}

	m := &FileMonitor{
		watcher:  watcher,
		files:    make(map[string]struct{}, len(files)),
		debounce: debounce,
		log:      log,
	}

	dirs := make(map[string]struct{})
	for _, f := range files {
		if f == "" {
			continue
		}
		abs, err := filepath.Abs(f)
		if err != nil {
			watcher.Close()
			return nil, err
		}
		m.files[abs] = struct{}{}
		dirs[filepath.Dir(abs)] = struct{}{}
	}

	for dir := range dirs {
		if err := watcher.Add(dir); err != nil {
			watcher.Close()
			return nil, fmt.Errorf("watch %s: %w", dir, err)
		}
	}

	return m, nil
}

// Watch blocks until ctx is done, calling handler with the last changed
// file after each quiet period. Handler calls never overlap.
func (m *FileMonitor) Watch(ctx context.Context, handler func(string)) error {
	defer m.watcher.Close()

	timer := time.NewTimer(m.debounce)
	if !timer.Stop() {
		<-timer.C
	}

	for {
		select {
		case <-ctx.Done():
			timer.Stop()
			return nil
		case event, ok := <-m.watcher.Events:
			if !ok {
				return nil
			}
			if !m.relevant(event) {
				continue
			}
			m.log.WithField("file", event.Name).Debug("input changed")

			m.mu.Lock()
			m.pending = event.Name
			m.mu.Unlock()
			timer.Reset(m.debounce)
		case <-timer.C:
			m.mu.Lock()
			name := m.pending
			m.pending = ""
			m.mu.Unlock()
			if name != "" {
				handler(name)
			}
		case err, ok := <-m.watcher.Errors:
			if !ok {
				return nil
			}
			return fmt.Errorf("watcher: %w", err)
		}
	}
}

func (m *FileMonitor) relevant(event fsnotify.Event) bool {
	if !event.Op.Has(fsnotify.Write) && !event.Op.Has(fsnotify.Create) && !event.Op.Has(fsnotify.Rename) {
		return false
	}
	abs, err := filepath.Abs(event.Name)
	if err != nil {
		return false
	}
	_, ok := m.files[abs]
	return ok
}
