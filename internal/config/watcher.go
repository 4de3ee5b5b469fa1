package config

import (
	"log"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
)

const watchDebounce = 100 * time.Millisecond

// FileWatcher calls onChange when a watched config file is written. The
// parent directory is watched so editors that save via rename are seen.
type FileWatcher struct {
	watcher  *fsnotify.Watcher
	files    map[string]bool
	dirs     map[string]int
	onChange func(string)
	mu       sync.RWMutex
	done     chan struct{}
}

func NewFileWatcher(onChange func(string)) (*FileWatcher, error) {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}

	fw := &FileWatcher{
		watcher:  watcher,
		files:    make(map[string]bool),
		dirs:     make(map[string]int),
		onChange: onChange,
		done:     make(chan struct{}),
	}

	go fw.watch()
	return fw, nil
}

func (fw *FileWatcher) AddFile(path string) error {
	absPath, err := filepath.Abs(path)
	if err != nil {
		return err
	}

	fw.mu.Lock()
	defer fw.mu.Unlock()

	if fw.files[absPath] {
		return nil
	}

	dir := filepath.Dir(absPath)
	if fw.dirs[dir] == 0 {
		if err := fw.watcher.Add(dir); err != nil {
			return err
		}
	}
	fw.dirs[dir]++
	fw.files[absPath] = true
	return nil
}

func (fw *FileWatcher) RemoveFile(path string) error {
	absPath, err := filepath.Abs(path)
	if err != nil {
		return err
	}

	fw.mu.Lock()
	defer fw.mu.Unlock()

	if !fw.files[absPath] {
		return nil
	}
	delete(fw.files, absPath)

	dir := filepath.Dir(absPath)
	fw.dirs[dir]--
	if fw.dirs[dir] <= 0 {
		delete(fw.dirs, dir)
		return fw.watcher.Remove(dir)
	}
	return nil
}

func (fw *FileWatcher) watching(path string) bool {
	fw.mu.RLock()
	defer fw.mu.RUnlock()
	return fw.files[path]
}

func (fw *FileWatcher) watch() {
	var debounceMu sync.Mutex
	debounce := make(map[string]*time.Timer)

	for {
		select {
		case event, ok := <-fw.watcher.Events:
			if !ok {
				return
			}
			if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename) == 0 {
				continue
			}

			name := filepath.Clean(event.Name)
			if !fw.watching(name) {
				continue
			}

			// Debounce rapid events
			debounceMu.Lock()
			if timer, exists := debounce[name]; exists {
				timer.Stop()
			}
			debounce[name] = time.AfterFunc(watchDebounce, func() {
				debounceMu.Lock()
				delete(debounce, name)
				debounceMu.Unlock()

				if fw.watching(name) && fw.onChange != nil {
					fw.onChange(name)
				}
			})
			debounceMu.Unlock()

		case err, ok := <-fw.watcher.Errors:
			if !ok {
				return
			}
			log.Printf("config: watch error: %v", err)

		case <-fw.done:
			return
		}
	}
}

func (fw *FileWatcher) Close() error {
	close(fw.done)
	return fw.watcher.Close()
}
