package config

import (
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/quillflow/QuillScope-Engine/internal/infrastructure/monitoring/logging"
	"github.com/quillflow/QuillScope-Engine/pkg/errors"
)

// DefaultDebounce is the settle window applied to file events before a
// reload.  Editors and atomic writers emit bursts of events per save; only
// the last one should trigger a reload.
const DefaultDebounce = 200 * time.Millisecond

// ─────────────────────────────────────────────────────────────────────────────
// RulesWatcher
// ─────────────────────────────────────────────────────────────────────────────

// RulesWatcher monitors a configuration file and invokes onChange with the
// freshly loaded Config whenever the file is rewritten on disk.  A change
// that fails to load or validate is logged and skipped, so the caller keeps
// running on the last good configuration.
//
// The watcher is non-blocking: NewRulesWatcher starts a background goroutine
// that runs until Close.  onChange is called from that goroutine and must
// not call Close.
type RulesWatcher struct {
	path     string
	debounce time.Duration
	onChange func(*Config)
	logger   logging.Logger
	fw       *fsnotify.Watcher

	closeOnce sync.Once
	stop      chan struct{}
	done      chan struct{}
}

// NewRulesWatcher watches the file at path.  A non-positive debounce falls
// back to DefaultDebounce.  The parent directory is watched rather than the
// file itself: most editors replace files by rename, which would end an
// inode-based watch after the first save.
func NewRulesWatcher(path string, debounce time.Duration, onChange func(*Config), logger logging.Logger) (*RulesWatcher, error) {
	if path == "" {
		return nil, errors.InvalidParam("watch path is empty")
	}
	if onChange == nil {
		return nil, errors.InvalidParam("onChange callback is nil")
	}
	if debounce <= 0 {
		debounce = DefaultDebounce
	}
	if logger == nil {
		logger = logging.NewNopLogger()
	}

	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeConfigWatch, "resolving watch path")
	}

	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeConfigWatch, "creating file watcher")
	}
	dir := filepath.Dir(abs)
	if err := fw.Add(dir); err != nil {
		fw.Close()
		return nil, errors.Wrap(err, errors.ErrCodeConfigWatch, "watching config directory").
			WithDetail("dir=" + dir)
	}

	w := &RulesWatcher{
		path:     abs,
		debounce: debounce,
		onChange: onChange,
		logger:   logger.Named("config"),
		fw:       fw,
		stop:     make(chan struct{}),
		done:     make(chan struct{}),
	}
	go w.loop()

	w.logger.Info("watching rules file", logging.String("path", abs))
	return w, nil
}

// Path returns the absolute path being watched.
func (w *RulesWatcher) Path() string {
	return w.path
}

// Close stops the watcher.  It is safe to call more than once.
func (w *RulesWatcher) Close() error {
	var err error
	w.closeOnce.Do(func() {
		close(w.stop)
		err = w.fw.Close()
		<-w.done
	})
	return err
}

func (w *RulesWatcher) loop() {
	defer close(w.done)

	// pending is nil until an event arrives; receiving from a nil channel
	// blocks forever, so the timer case stays dormant between bursts.
	var pending <-chan time.Time

	for {
		select {
		case <-w.stop:
			return

		case ev, ok := <-w.fw.Events:
			if !ok {
				return
			}
			if filepath.Clean(ev.Name) != w.path {
				continue
			}
			if !ev.Op.Has(fsnotify.Write) && !ev.Op.Has(fsnotify.Create) && !ev.Op.Has(fsnotify.Rename) {
				continue
			}
			pending = time.After(w.debounce)

		case err, ok := <-w.fw.Errors:
			if !ok {
				return
			}
			w.logger.Warn("file watcher error", logging.Err(err))

		case <-pending:
			pending = nil
			w.reload()
		}
	}
}

// reload re-reads the watched file and hands the result to the callback.  A
// file that no longer loads keeps the previous configuration in force.
func (w *RulesWatcher) reload() {
	cfg, err := Load(w.path)
	if err != nil {
		w.logger.Warn("rules file changed but did not load; keeping previous configuration",
			logging.String("path", w.path), logging.Err(err))
		return
	}
	w.logger.Info("rules file reloaded", logging.String("path", w.path))
	w.onChange(cfg)
}
