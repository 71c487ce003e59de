package preview

import (
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"git.home.luguber.info/inful/mdsite/internal/foundation/errors"
	"git.home.luguber.info/inful/mdsite/internal/logfields"
)

// watchSet decides which filesystem events belong to the site.
type watchSet struct {
	trees    []string // watched recursively
	template string
}

func (ws watchSet) relevant(path string) bool {
	if shouldIgnoreEvent(path) {
		return false
	}
	if path == ws.template {
		return true
	}
	for _, root := range ws.trees {
		if path == root || strings.HasPrefix(path, root+string(filepath.Separator)) {
			return true
		}
	}
	return false
}

// newWatcher watches every tree recursively and the template's directory.
func newWatcher(ws watchSet) (*fsnotify.Watcher, error) {
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, errors.RuntimeError("failed to create file watcher").WithCause(err).Build()
	}
	for _, root := range ws.trees {
		if st, statErr := os.Stat(root); statErr != nil || !st.IsDir() {
			slog.Warn("Not watching missing directory", logfields.Path(root))
			continue
		}
		addDirsRecursive(w, root)
	}
	if ws.template != "" {
		if err := w.Add(filepath.Dir(ws.template)); err != nil {
			slog.Warn("watch add failed", logfields.Path(ws.template), logfields.Error(err))
		}
	}
	return w, nil
}

func addDirsRecursive(w *fsnotify.Watcher, root string) {
	_ = filepath.WalkDir(root, func(path string, d os.DirEntry, err error) error {
		if err != nil {
			return nil
		}
		if d.IsDir() {
			if err := w.Add(path); err != nil {
				slog.Warn("watch add failed", logfields.Path(path), logfields.Error(err))
			}
		}
		return nil
	})
}

// handleEvent reports whether ev should trigger a rebuild. New directories are
// added to the watch list.
func handleEvent(w *fsnotify.Watcher, ws watchSet, ev fsnotify.Event) bool {
	if !ws.relevant(ev.Name) {
		return false
	}
	if ev.Op&fsnotify.Create == fsnotify.Create {
		if fi, err := os.Stat(ev.Name); err == nil && fi.IsDir() {
			addDirsRecursive(w, ev.Name)
		}
	}
	if ev.Op == fsnotify.Chmod {
		return false
	}
	slog.Debug("File change detected", logfields.Path(ev.Name), logfields.Op(ev.Op.String()))
	return true
}

// shouldIgnoreEvent returns true for filesystem events that should not trigger rebuilds.
func shouldIgnoreEvent(path string) bool {
	base := filepath.Base(path)

	if strings.HasPrefix(base, ".") {
		return true
	}

	// editor temp/swap files
	if strings.HasSuffix(base, "~") ||
		strings.HasSuffix(base, ".swp") ||
		strings.HasSuffix(base, ".swx") ||
		strings.HasPrefix(base, "#") && strings.HasSuffix(base, "#") {
		return true
	}

	return base == "Thumbs.db"
}

// debouncer coalesces bursts of trigger calls into one send on C.
type debouncer struct {
	C chan struct{}

	mu    sync.Mutex
	timer *time.Timer
	delay time.Duration
}

func newDebouncer(delay time.Duration) *debouncer {
	return &debouncer{C: make(chan struct{}, 1), delay: delay}
}

func (d *debouncer) trigger() {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.timer != nil {
		d.timer.Stop()
	}
	d.timer = time.AfterFunc(d.delay, d.fire)
}

// fire requests a rebuild immediately. A request already pending absorbs it.
func (d *debouncer) fire() {
	select {
	case d.C <- struct{}{}:
	default:
	}
}

func (d *debouncer) stop() {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.timer != nil {
		d.timer.Stop()
	}
}
