package fonts

import (
	"context"
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"sync/atomic"

	"github.com/fsnotify/fsnotify"

	"textimg-service/internal/logging"
)

// Library indexes the font files of a directory by file name stem.
type Library struct {
	dir string

	mu    sync.RWMutex
	paths []string
	gen   atomic.Uint64
}

// Open scans dir. A missing directory yields an empty library.
func Open(dir string) (*Library, error) {
	l := &Library{dir: dir}
	if err := l.Rescan(); err != nil {
		return nil, err
	}
	return l, nil
}

// Rescan rebuilds the index from the directory contents.
func (l *Library) Rescan() error {
	entries, err := os.ReadDir(l.dir)
	if err != nil && !errors.Is(err, fs.ErrNotExist) {
		return err
	}

	paths := make([]string, 0, len(entries))
	for _, entry := range entries {
		if entry.IsDir() || strings.HasPrefix(entry.Name(), ".") {
			continue
		}
		paths = append(paths, filepath.Join(l.dir, entry.Name()))
	}
	sort.Strings(paths)

	l.mu.Lock()
	l.paths = paths
	l.gen.Add(1)
	l.mu.Unlock()
	return nil
}

// Generation changes every time the index is rebuilt. A path resolved under
// one generation may point at different glyphs under the next.
func (l *Library) Generation() uint64 {
	return l.gen.Load()
}

// Lookup returns the first file whose name without extension equals name.
func (l *Library) Lookup(name string) (string, bool) {
	if name == "" {
		return "", false
	}
	l.mu.RLock()
	defer l.mu.RUnlock()
	for _, path := range l.paths {
		if stem(path) == name {
			return path, true
		}
	}
	return "", false
}

// Names lists the stems of all indexed files.
func (l *Library) Names() []string {
	l.mu.RLock()
	defer l.mu.RUnlock()
	names := make([]string, 0, len(l.paths))
	for _, path := range l.paths {
		names = append(names, stem(path))
	}
	return names
}

// Watch rescans whenever the directory changes, until ctx is done.
func (l *Library) Watch(ctx context.Context) error {
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	if err := w.Add(l.dir); err != nil {
		w.Close()
		return err
	}

	go func() {
		defer w.Close()
		for {
			select {
			case <-ctx.Done():
				return
			case err, ok := <-w.Errors:
				if !ok {
					return
				}
				logging.Warnf("font watcher dir=%s err=%v", l.dir, err)
			case ev, ok := <-w.Events:
				if !ok {
					return
				}
				if !ev.Has(fsnotify.Create) && !ev.Has(fsnotify.Write) && !ev.Has(fsnotify.Remove) && !ev.Has(fsnotify.Rename) {
					continue
				}
				if err := l.Rescan(); err != nil {
					logging.Warnf("font rescan failed dir=%s err=%v", l.dir, err)
					continue
				}
				logging.Infof("fonts reloaded dir=%s event=%s", l.dir, ev.Op)
			}
		}
	}()
	return nil
}

func stem(path string) string {
	base := filepath.Base(path)
	return strings.TrimSuffix(base, filepath.Ext(base))
}
