// Package watch wires an fsnotify watch on a single file into the
// diff worker and the event registry: every debounced write re-reads
// the file, feeds the new revision to diff.Worker.UpdateDocument, and
// dispatches a FileChanged event so other subscribers (e.g. a
// bubbletea demo program) can react without polling.
package watch

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/nels-koby/glint/internal/diff"
	"github.com/nels-koby/glint/internal/event"
	"github.com/nels-koby/glint/internal/log"
	"github.com/nels-koby/glint/internal/rope"
)

// FileChangedEventID is the event.Registry id FileChanged events are
// dispatched under. Callers must event.RegisterEvent[FileChanged]
// against their registry before Start, the same contract as any other
// registry event.
const FileChangedEventID = "watch.file_changed"

// FileChanged is dispatched through the event registry after a
// debounced file write has been read back into a Rope and handed to
// the diff worker.
type FileChanged struct {
	Path string
	Rope *rope.Rope
}

// Config holds watcher configuration options.
type Config struct {
	Path     string
	Debounce time.Duration
}

// DefaultConfig returns sensible defaults for watching path.
func DefaultConfig(path string) Config {
	return Config{
		Path:     path,
		Debounce: 100 * time.Millisecond,
	}
}

// Watcher monitors a single file for changes, republishing its
// content to a diff.Worker and dispatching FileChanged through an
// event.Registry.
type Watcher struct {
	fsWatcher *fsnotify.Watcher
	path      string
	debounce  time.Duration
	diffs     *diff.Worker
	registry  *event.Registry
	onChange  chan struct{}
	done      chan struct{}
}

// New creates a Watcher for cfg.Path. diffs and registry may be nil;
// a nil diffs skips the diff-worker update, a nil registry skips event
// dispatch, so callers that only want one side effect don't have to
// wire up both.
func New(cfg Config, diffs *diff.Worker, registry *event.Registry) (*Watcher, error) {
	log.Debug(log.CatWatch, "creating watcher", "path", cfg.Path, "debounce", cfg.Debounce)
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		log.ErrorErr(log.CatWatch, "failed to create fsnotify watcher", err)
		return nil, fmt.Errorf("creating fsnotify watcher: %w", err)
	}

	return &Watcher{
		fsWatcher: fsw,
		path:      cfg.Path,
		debounce:  cfg.Debounce,
		diffs:     diffs,
		registry:  registry,
		onChange:  make(chan struct{}, 1),
		done:      make(chan struct{}),
	}, nil
}

// Start begins watching the directory containing the configured path.
// Returns a channel that receives a signal after every debounced
// change (in addition to the FileChanged event dispatch, for callers
// that prefer a plain channel).
func (w *Watcher) Start() (<-chan struct{}, error) {
	dir := filepath.Dir(w.path)
	if err := w.fsWatcher.Add(dir); err != nil {
		log.ErrorErr(log.CatWatch, "failed to watch directory", err, "dir", dir)
		return nil, fmt.Errorf("watching directory %s: %w", dir, err)
	}

	log.Info(log.CatWatch, "started watching", "path", w.path)
	go w.loop()

	return w.onChange, nil
}

// Stop terminates the watcher and releases resources.
func (w *Watcher) Stop() error {
	log.Debug(log.CatWatch, "stopping watcher")
	close(w.done)
	return w.fsWatcher.Close()
}

func (w *Watcher) loop() {
	var (
		timer   *time.Timer
		pending bool
	)

	for {
		select {
		case ev, ok := <-w.fsWatcher.Events:
			if !ok {
				return
			}
			if !w.isRelevantEvent(ev) {
				continue
			}
			log.Debug(log.CatWatch, "file event received", "file", ev.Name, "op", ev.Op.String())

			if timer == nil {
				timer = time.NewTimer(w.debounce)
			} else {
				if !timer.Stop() {
					select {
					case <-timer.C:
					default:
					}
				}
				timer.Reset(w.debounce)
			}
			pending = true

		case <-timerChan(timer):
			if pending {
				w.handleChange()
				pending = false
			}

		case err, ok := <-w.fsWatcher.Errors:
			if !ok {
				return
			}
			log.ErrorErr(log.CatWatch, "file watcher error", err)

		case <-w.done:
			if timer != nil {
				timer.Stop()
			}
			return
		}
	}
}

// timerChan returns t.C, or a nil channel (which blocks forever in a
// select) if t hasn't been created yet.
func timerChan(t *time.Timer) <-chan time.Time {
	if t != nil {
		return t.C
	}
	return nil
}

func (w *Watcher) handleChange() {
	log.Debug(log.CatWatch, "debounce complete, reading file", "path", w.path)

	content, err := os.ReadFile(w.path)
	if err != nil {
		log.ErrorErr(log.CatWatch, "failed to read changed file", err, "path", w.path)
		return
	}

	r := rope.New(string(content))

	if w.diffs != nil {
		w.diffs.UpdateDocument(r)
	}
	if w.registry != nil {
		event.Dispatch(w.registry, FileChangedEventID, &FileChanged{Path: w.path, Rope: r})
	}

	select {
	case w.onChange <- struct{}{}:
	default:
	}
}

// isRelevantEvent reports whether ev should trigger a refresh: only
// writes and creates (editors often replace-by-rename, which surfaces
// as a Create on the new inode) to the watched path itself.
func (w *Watcher) isRelevantEvent(ev fsnotify.Event) bool {
	if ev.Op&(fsnotify.Write|fsnotify.Create) == 0 {
		return false
	}
	return filepath.Clean(ev.Name) == filepath.Clean(w.path)
}
