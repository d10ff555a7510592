package cmd

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/nels-koby/glint/internal/annotations"
	"github.com/nels-koby/glint/internal/asynchook"
	"github.com/nels-koby/glint/internal/config"
	"github.com/nels-koby/glint/internal/diff"
	"github.com/nels-koby/glint/internal/diffpersist"
	"github.com/nels-koby/glint/internal/event"
	"github.com/nels-koby/glint/internal/highlight"
	"github.com/nels-koby/glint/internal/highlightcache"
	"github.com/nels-koby/glint/internal/log"
	"github.com/nels-koby/glint/internal/render"
	"github.com/nels-koby/glint/internal/rope"
	"github.com/nels-koby/glint/internal/textfmt"
	"github.com/nels-koby/glint/internal/tracing"
	"github.com/nels-koby/glint/internal/watch"
)

var watchCmd = &cobra.Command{
	Use:   "watch <file>",
	Short: "Live-render a file, re-diffing and redrawing on every write",
	Args:  cobra.ExactArgs(1),
	RunE:  runWatch,
}

func runWatch(cmd *cobra.Command, args []string) error {
	cleanup := initLogging()
	defer cleanup()

	path := args[0]
	if _, err := os.Stat(path); err != nil {
		return fmt.Errorf("opening %s: %w", path, err)
	}

	m, err := newWatchModel(path, toTextFormat(cfg.Format))
	if err != nil {
		return err
	}
	defer m.close()

	p := tea.NewProgram(m, tea.WithAltScreen())
	_, err = p.Run()
	return err
}

// completionStub is an AsyncHook[rune]-satisfying stand-in for a real
// completion engine: it debounces keystrokes and logs where a candidate
// list would be recomputed and shown, demonstrating the async-hook
// wiring without implementing language-specific completion (out of
// scope for this pipeline).
type completionStub struct {
	buffered []rune
}

func (c *completionStub) HandleEvent(r rune, deadline time.Time) time.Time {
	c.buffered = append(c.buffered, r)
	return time.Now().Add(150 * time.Millisecond)
}

func (c *completionStub) FinishDebounce() {
	log.Debug(log.CatAsyncHook, "completion debounce fired", "buffered", string(c.buffered))
	c.buffered = c.buffered[:0]
}

type fileChangedMsg struct{}

type watchModel struct {
	sessionID string
	path      string
	format    textfmt.TextFormat
	theme     highlight.Theme
	content   *rope.Rope
	ann       *annotations.TextAnnotations
	registry  *event.Registry

	diffWorker *diff.Worker
	watcher    *watch.Watcher
	onChange   <-chan struct{}

	tracer     *tracing.Provider
	cache      *highlightcache.EventCache
	store      *diffpersist.Store
	generation uint64

	keystrokes chan rune
	ctx        context.Context
	cancel     context.CancelFunc

	vp    viewport.Model
	ready bool
}

// statePath returns a path alongside the config file for glint's
// on-disk state (currently just the diff-snapshot store), or "" if the
// home directory can't be resolved.
func statePath(name string) string {
	cfgPath := config.DefaultConfigPath()
	if cfgPath == "" {
		return ""
	}
	return filepath.Join(filepath.Dir(cfgPath), name)
}

func newWatchModel(path string, format textfmt.TextFormat) (*watchModel, error) {
	content, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", path, err)
	}

	sessionID := uuid.New().String()
	log.Info(log.CatWatch, "watch session starting", "session_id", sessionID, "path", path)

	r := rope.New(string(content))
	ann := annotations.New()
	registry := event.NewRegistry()
	event.RegisterEvent[watch.FileChanged](registry, watch.FileChangedEventID)

	diffWorker := diff.New(r, r)

	tracer, err := tracing.NewProvider(cfg.Tracing)
	if err != nil {
		diffWorker.Close()
		return nil, fmt.Errorf("setting up tracing: %w", err)
	}
	diffWorker.SetTracer(tracer.Tracer())

	var cache *highlightcache.EventCache
	if cfg.Cache.Enabled {
		cache = highlightcache.New(cfg.Cache.TTL(), cfg.Cache.TTL())
	}

	var store *diffpersist.Store
	if dbPath := statePath("diffpersist.db"); dbPath != "" {
		store, err = diffpersist.Open(dbPath)
		if err != nil {
			log.Warn(log.CatDiff, "opening diff snapshot store, continuing without persistence", "err", err)
			store = nil
		}
	}

	watcher, err := watch.New(watch.DefaultConfig(path), diffWorker, registry)
	if err != nil {
		diffWorker.Close()
		if store != nil {
			store.Close()
		}
		return nil, fmt.Errorf("creating watcher: %w", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	keystrokes := make(chan rune, 32)
	completion := tracing.TracedAsyncHook[rune](tracer.Tracer(), "completion.debounce", &completionStub{})
	go asynchook.Run[rune](ctx, completion, keystrokes)

	m := &watchModel{
		sessionID:  sessionID,
		path:       path,
		format:     format,
		theme:      highlight.DefaultTheme(),
		content:    r,
		ann:        ann,
		registry:   registry,
		diffWorker: diffWorker,
		watcher:    watcher,
		tracer:     tracer,
		cache:      cache,
		store:      store,
		keystrokes: keystrokes,
		ctx:        ctx,
		cancel:     cancel,
	}

	fileChanged := tracing.TracedHook[watch.FileChanged](tracer.Tracer(), "watch.file_changed", event.HookFunc[watch.FileChanged](func(e *watch.FileChanged) error {
		m.content = e.Rope
		m.generation++
		if m.cache != nil {
			_ = m.cache.Invalidate()
		}
		if m.store != nil {
			if err := m.store.SaveSnapshot(m.path, m.diffWorker.GetLineDiffs()); err != nil {
				log.Warn(log.CatDiff, "saving diff snapshot", "err", err)
			}
		}
		return nil
	}))
	event.RegisterHook[watch.FileChanged](registry, watch.FileChangedEventID, fileChanged)

	if m.store != nil {
		if snap, ok, err := m.store.LoadSnapshot(path); err != nil {
			log.Warn(log.CatDiff, "loading diff snapshot", "err", err)
		} else if ok {
			log.Debug(log.CatDiff, "restored diff snapshot", "path", path, "lines", snap.Len())
		}
	}

	onChange, err := watcher.Start()
	if err != nil {
		watcher.Stop()
		diffWorker.Close()
		cancel()
		if m.store != nil {
			m.store.Close()
		}
		return nil, fmt.Errorf("starting watcher: %w", err)
	}
	m.onChange = onChange

	return m, nil
}

func (m *watchModel) close() {
	m.cancel()
	close(m.keystrokes)
	_ = m.watcher.Stop()
	m.diffWorker.Close()
	if m.store != nil {
		_ = m.store.Close()
	}
	if m.tracer != nil {
		_ = m.tracer.Shutdown(context.Background())
	}
	log.Info(log.CatWatch, "watch session ending", "session_id", m.sessionID, "path", m.path)
}

func listenForChange(ch <-chan struct{}) tea.Cmd {
	return func() tea.Msg {
		_, ok := <-ch
		if !ok {
			return nil
		}
		return fileChangedMsg{}
	}
}

func (m *watchModel) Init() tea.Cmd {
	return listenForChange(m.onChange)
}

func (m *watchModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		if !m.ready {
			m.vp = viewport.New(msg.Width, msg.Height)
			m.ready = true
		} else {
			m.vp.Width = msg.Width
			m.vp.Height = msg.Height
		}
		m.render()
		return m, nil

	case fileChangedMsg:
		m.render()
		return m, listenForChange(m.onChange)

	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c", "q":
			return m, tea.Quit
		}
		if len(msg.Runes) > 0 {
			select {
			case m.keystrokes <- msg.Runes[0]:
			default:
			}
		}
	}

	var cmd tea.Cmd
	m.vp, cmd = m.vp.Update(msg)
	return m, cmd
}

func (m *watchModel) render() {
	if !m.ready {
		return
	}
	formatter, _ := textfmt.NewAtPrevBlock(m.content, m.format, m.ann, 0)
	decorations := render.NewDecorationManager()
	decorations.AddDecoration(&render.DiffGutter{Diffs: m.diffWorker.GetLineDiffs(), Theme: m.theme})

	surface := render.RenderText(formatter, m.highlightEvents(), m.theme, decorations, m.vp.Width, m.vp.Height, 0)
	m.vp.SetContent(surface.String())
}

// highlightEvents returns the event stream to compose for the current
// render pass, serving it out of m.cache when enabled so repeated
// redraws between file changes (e.g. plain viewport scrolling) don't
// recompute it. There is no syntax highlighter wired in yet, so the
// composed stream is always empty; the cache still exercises its real
// path, keyed off the document's full char range and the annotation
// generation bumped on every file change.
func (m *watchModel) highlightEvents() highlight.EventSource {
	if m.cache == nil {
		return highlight.NewEventSlice(nil)
	}
	key := highlightcache.NewKey(0, m.content.Len(), m.generation)
	if events, ok := m.cache.Get(key); ok {
		return events
	}
	return m.cache.Set(key, highlight.NewEventSlice(nil))
}

func (m *watchModel) View() string {
	if !m.ready {
		return "initializing…"
	}
	return m.vp.View()
}
