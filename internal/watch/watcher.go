// Package watch re-evaluates a batch file whenever it changes on disk.
package watch

import (
	"errors"
	"log/slog"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/pengelbrecht/calc/internal/batch"
)

// ErrStopped is returned by Start once the watcher has been stopped.
// A Watcher cannot be restarted; create a new one instead.
var ErrStopped = errors.New("watcher stopped")

// Event carries the evaluation of the watched file after a change.
// Err is set when the file could not be read or parsed; Outcomes is nil then.
type Event struct {
	Path     string
	Outcomes []batch.Outcome
	Err      error
}

// Option configures a Watcher.
type Option func(*Watcher)

// WithDebounce sets the delay between the last change and re-evaluation.
func WithDebounce(d time.Duration) Option {
	return func(w *Watcher) {
		w.debounceDelay = d
	}
}

// WithLogger sets the logger for the watcher.
func WithLogger(logger *slog.Logger) Option {
	return func(w *Watcher) {
		w.logger = logger
	}
}

// Watcher monitors a single batch file.
type Watcher struct {
	path    string
	logger  *slog.Logger
	watcher *fsnotify.Watcher
	events  chan Event

	debounceDelay time.Duration
	timer         *time.Timer
	timerMu       sync.Mutex

	stopCh    chan struct{}
	stoppedCh chan struct{}
	running   bool
	stopped   bool
	runningMu sync.Mutex
}

// New creates a watcher for the batch file at path.
func New(path string, opts ...Option) *Watcher {
	w := &Watcher{
		path:          filepath.Clean(path),
		logger:        slog.Default(),
		events:        make(chan Event, 16),
		debounceDelay: 100 * time.Millisecond,
		stopCh:        make(chan struct{}),
		stoppedCh:     make(chan struct{}),
	}
	for _, opt := range opts {
		opt(w)
	}
	return w
}

// Start begins watching. The parent directory is watched so that editors
// which save by renaming a temp file over the original are picked up.
// Calling Start on a running watcher is a no-op; after Stop it returns ErrStopped.
func (w *Watcher) Start() error {
	w.runningMu.Lock()
	defer w.runningMu.Unlock()

	if w.stopped {
		return ErrStopped
	}
	if w.running {
		return nil
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	if err := watcher.Add(filepath.Dir(w.path)); err != nil {
		watcher.Close()
		return err
	}
	w.watcher = watcher

	w.running = true
	go w.watchLoop()

	w.logger.Debug("watch started", "path", w.path, "debounce", w.debounceDelay)
	return nil
}

// Stop terminates the watcher and closes the events channel.
func (w *Watcher) Stop() {
	w.runningMu.Lock()
	if !w.running {
		w.runningMu.Unlock()
		return
	}
	w.running = false
	w.stopped = true
	w.runningMu.Unlock()

	close(w.stopCh)
	<-w.stoppedCh

	w.watcher.Close()

	w.timerMu.Lock()
	if w.timer != nil {
		w.timer.Stop()
		w.timer = nil
	}
	w.timerMu.Unlock()

	close(w.events)
}

// Events returns the channel of evaluation events.
func (w *Watcher) Events() <-chan Event {
	return w.events
}

// Evaluate loads and evaluates the file once.
func (w *Watcher) Evaluate() Event {
	exprs, err := batch.LoadFile(w.path)
	if err != nil {
		return Event{Path: w.path, Err: err}
	}
	return Event{Path: w.path, Outcomes: batch.Evaluate(exprs)}
}

func (w *Watcher) watchLoop() {
	defer close(w.stoppedCh)

	for {
		select {
		case <-w.stopCh:
			return

		case event, ok := <-w.watcher.Events:
			if !ok {
				return
			}
			w.handleFsEvent(event)

		case err, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			w.logger.Warn("watch error", "path", w.path, "error", err)
		}
	}
}

func (w *Watcher) handleFsEvent(event fsnotify.Event) {
	if filepath.Clean(event.Name) != w.path {
		return
	}
	if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) {
		return
	}

	w.timerMu.Lock()
	defer w.timerMu.Unlock()

	if w.timer != nil {
		w.timer.Stop()
	}
	w.timer = time.AfterFunc(w.debounceDelay, w.emit)
}

func (w *Watcher) emit() {
	ev := w.Evaluate()
	if ev.Err != nil {
		w.logger.Debug("watch evaluation failed", "path", w.path, "error", ev.Err)
	}

	w.runningMu.Lock()
	defer w.runningMu.Unlock()
	if !w.running {
		return
	}

	select {
	case w.events <- ev:
	default:
		w.logger.Warn("watch event dropped", "path", w.path)
	}
}
