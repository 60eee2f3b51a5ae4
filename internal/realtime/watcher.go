package realtime

import (
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/naviohq/navio/internal/logging"
	"go.uber.org/zap"
)

const watchDebounce = 500 * time.Millisecond

// Watcher bridges cross-process writes into the bus: it watches the
// database file and, after a quiet period, invokes the refresh callback
// so the owner can re-query and publish what changed.
type Watcher struct {
	watcher  *fsnotify.Watcher
	dbName   string
	refresh  func()
	mu       sync.Mutex
	debounce *time.Timer
	stopCh   chan struct{}
	stopOnce sync.Once
	wg       sync.WaitGroup
}

// NewWatcher watches the directory containing dbPath. refresh runs on a
// timer goroutine; it must be safe to call at any time.
func NewWatcher(dbPath string, refresh func()) (*Watcher, error) {
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	if err := fw.Add(filepath.Dir(dbPath)); err != nil {
		_ = fw.Close()
		return nil, err
	}

	w := &Watcher{
		watcher: fw,
		dbName:  filepath.Base(dbPath),
		refresh: refresh,
		stopCh:  make(chan struct{}),
	}
	w.wg.Add(1)
	go w.loop()
	return w, nil
}

func (w *Watcher) loop() {
	defer w.wg.Done()
	for {
		select {
		case <-w.stopCh:
			return
		case event, ok := <-w.watcher.Events:
			if !ok {
				return
			}
			w.handle(event)
		case err, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			logging.Warn("db watcher error", zap.Error(err))
		}
	}
}

func (w *Watcher) handle(event fsnotify.Event) {
	if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) && !event.Has(fsnotify.Rename) {
		return
	}
	// SQLite in WAL mode touches db, -wal and -shm; all count.
	base := filepath.Base(event.Name)
	if base != w.dbName && base != w.dbName+"-wal" && base != w.dbName+"-shm" {
		return
	}
	w.schedule()
}

func (w *Watcher) schedule() {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.debounce != nil {
		w.debounce.Stop()
	}
	w.debounce = time.AfterFunc(watchDebounce, func() {
		select {
		case <-w.stopCh:
			return
		default:
		}
		w.refresh()
	})
}

// Close stops the watcher and cancels any pending refresh.
func (w *Watcher) Close() error {
	var err error
	w.stopOnce.Do(func() {
		close(w.stopCh)
		w.mu.Lock()
		if w.debounce != nil {
			w.debounce.Stop()
			w.debounce = nil
		}
		w.mu.Unlock()
		err = w.watcher.Close()
		w.wg.Wait()
	})
	return err
}
