package viewer

import (
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"go.uber.org/zap"

	"github.com/Faultbox/gltfview/internal/logger"
)

// reloadDelay lets a burst of writes settle before the model is reloaded.
const reloadDelay = 250 * time.Millisecond

// watcher reports changes to a model's files. Directories are watched
// rather than files so that editors replacing a file by rename are seen.
type watcher struct {
	fs      *fsnotify.Watcher
	changed chan struct{}
	log     *zap.Logger

	mu    sync.Mutex
	files map[string]bool
	dirs  map[string]bool
}

func newWatcher() (*watcher, error) {
	fs, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}

	w := &watcher{
		fs:      fs,
		changed: make(chan struct{}, 1),
		log:     logger.Named("watch"),
		files:   make(map[string]bool),
		dirs:    make(map[string]bool),
	}
	go w.loop()
	return w, nil
}

// track replaces the set of watched files.
func (w *watcher) track(files []string) {
	w.mu.Lock()
	defer w.mu.Unlock()

	w.files = make(map[string]bool, len(files))
	for _, f := range files {
		abs, err := filepath.Abs(f)
		if err != nil {
			abs = f
		}
		w.files[abs] = true

		dir := filepath.Dir(abs)
		if w.dirs[dir] {
			continue
		}
		if err := w.fs.Add(dir); err != nil {
			w.log.Warn("cannot watch directory", zap.String("dir", dir), zap.Error(err))
			continue
		}
		w.dirs[dir] = true
	}
}

func (w *watcher) relevant(name string) bool {
	abs, err := filepath.Abs(name)
	if err != nil {
		abs = name
	}
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.files[abs]
}

func (w *watcher) loop() {
	for {
		select {
		case event, ok := <-w.fs.Events:
			if !ok {
				return
			}
			if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) && !event.Has(fsnotify.Rename) {
				continue
			}
			if !w.relevant(event.Name) {
				continue
			}
			w.log.Debug("model file changed", zap.String("file", event.Name), zap.Stringer("op", event.Op))
			select {
			case w.changed <- struct{}{}:
			default:
			}
		case err, ok := <-w.fs.Errors:
			if !ok {
				return
			}
			w.log.Warn("watcher error", zap.Error(err))
		}
	}
}

// Close stops watching.
func (w *watcher) Close() error {
	return w.fs.Close()
}
