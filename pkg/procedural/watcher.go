package procedural

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/rs/zerolog"
)

// Watcher reloads procedurals when their manifests change on disk
type Watcher struct {
	runtime  *Runtime
	watcher  *fsnotify.Watcher
	logger   zerolog.Logger
	debounce time.Duration
	roots    map[string]Source
	timers   map[string]*time.Timer
	timersMu sync.Mutex
	done     chan struct{}
	stopOnce sync.Once
	ctx      context.Context
}

// NewWatcher creates a watcher over the runtime's configured directories.
// A zero debounce defaults to 200ms.
func NewWatcher(runtime *Runtime, logger zerolog.Logger, debounce time.Duration) (*Watcher, error) {
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("failed to create watcher: %w", err)
	}

	if debounce == 0 {
		debounce = 200 * time.Millisecond
	}

	cfg := runtime.Config()
	roots := make(map[string]Source)
	if cfg.BuiltinDir != "" {
		roots[filepath.Clean(cfg.BuiltinDir)] = SourceBuiltin
	}
	if cfg.WorkspaceDir != "" {
		roots[filepath.Clean(cfg.WorkspaceDir)] = SourceWorkspace
	}
	for _, dir := range cfg.ExtraDirs {
		if dir != "" {
			roots[filepath.Clean(dir)] = SourceExtra
		}
	}

	return &Watcher{
		runtime:  runtime,
		watcher:  fw,
		logger:   logger.With().Str("component", "procedural-watcher").Logger(),
		debounce: debounce,
		roots:    roots,
		timers:   make(map[string]*time.Timer),
		done:     make(chan struct{}),
	}, nil
}

// Start watches every existing root directory and its procedural
// subdirectories. Changes are applied until ctx is done or Stop is called.
func (w *Watcher) Start(ctx context.Context) error {
	w.ctx = ctx

	for root := range w.roots {
		if _, err := os.Stat(root); err != nil {
			w.logger.Debug().Str("dir", root).Msg("Directory does not exist, not watching")
			continue
		}
		if err := w.watcher.Add(root); err != nil {
			return fmt.Errorf("failed to watch %s: %w", root, err)
		}

		entries, err := os.ReadDir(root)
		if err != nil {
			return fmt.Errorf("failed to read directory %s: %w", root, err)
		}
		for _, entry := range entries {
			if entry.IsDir() {
				if err := w.watcher.Add(filepath.Join(root, entry.Name())); err != nil {
					w.logger.Warn().Err(err).Str("dir", entry.Name()).Msg("Failed to watch procedural directory")
				}
			}
		}
	}

	go w.eventLoop()

	w.logger.Info().Int("roots", len(w.roots)).Msg("Procedural watcher started")
	return nil
}

// Stop stops the watcher
func (w *Watcher) Stop() error {
	w.stopOnce.Do(func() {
		close(w.done)
	})

	w.timersMu.Lock()
	for _, timer := range w.timers {
		timer.Stop()
	}
	clear(w.timers)
	w.timersMu.Unlock()

	if err := w.watcher.Close(); err != nil {
		return fmt.Errorf("failed to close watcher: %w", err)
	}

	w.logger.Info().Msg("Procedural watcher stopped")
	return nil
}

func (w *Watcher) eventLoop() {
	for {
		select {
		case event, ok := <-w.watcher.Events:
			if !ok {
				return
			}
			w.handleEvent(event)

		case err, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			w.logger.Error().Err(err).Msg("Watcher error")

		case <-w.ctx.Done():
			_ = w.Stop()
			return

		case <-w.done:
			return
		}
	}
}

func (w *Watcher) handleEvent(event fsnotify.Event) {
	name := filepath.Clean(event.Name)
	parent := filepath.Dir(name)

	// A procedural directory appeared or vanished directly under a root.
	if _, isRoot := w.roots[parent]; isRoot {
		if event.Has(fsnotify.Create) {
			if info, err := os.Stat(name); err == nil && info.IsDir() {
				if err := w.watcher.Add(name); err != nil {
					w.logger.Warn().Err(err).Str("dir", name).Msg("Failed to watch procedural directory")
				}
			}
		}
		w.schedule(filepath.Join(name, ManifestFile))
		return
	}

	if filepath.Base(name) == ManifestFile {
		w.schedule(name)
	}
}

// schedule debounces rapid changes to the same manifest
func (w *Watcher) schedule(manifestPath string) {
	w.timersMu.Lock()
	defer w.timersMu.Unlock()

	if timer, exists := w.timers[manifestPath]; exists {
		timer.Stop()
	}

	w.timers[manifestPath] = time.AfterFunc(w.debounce, func() {
		w.timersMu.Lock()
		delete(w.timers, manifestPath)
		w.timersMu.Unlock()

		select {
		case <-w.done:
			return
		default:
		}
		w.apply(manifestPath)
	})
}

// apply brings the runtime in line with the manifest at manifestPath
func (w *Watcher) apply(manifestPath string) {
	dir := filepath.Dir(manifestPath)
	current := w.loadedAt(dir)

	if _, err := os.Stat(manifestPath); err != nil {
		if current != "" {
			if err := w.runtime.Unload(w.ctx, current); err != nil {
				w.logger.Error().Err(err).Str("procedural", current).Msg("Failed to unload removed procedural")
				return
			}
			w.logger.Info().Str("procedural", current).Msg("Procedural removed")
		}
		return
	}

	if current != "" {
		if err := w.runtime.Reload(w.ctx, current); err != nil {
			w.logger.Error().Err(err).Str("procedural", current).Msg("Failed to reload procedural")
		}
		return
	}

	manifest, err := w.runtime.manifestLoader.LoadManifest(manifestPath)
	if err != nil {
		w.logger.Error().Err(err).Str("path", manifestPath).Msg("Failed to load new procedural manifest")
		return
	}
	source := w.roots[filepath.Dir(dir)]
	if err := w.runtime.loadAndRegister(w.ctx, manifest, dir, source); err != nil {
		w.logger.Error().Err(err).Str("procedural", manifest.ID).Msg("Failed to load new procedural")
		return
	}
	w.runtime.observer.SetLoaded(len(w.runtime.registry.GetAll()))
	w.logger.Info().Str("procedural", manifest.ID).Msg("Procedural added")
}

// loadedAt returns the ID of the procedural loaded from dir, if any
func (w *Watcher) loadedAt(dir string) string {
	for _, record := range w.runtime.registry.GetAll() {
		if record.Procedural.Path != "" && filepath.Clean(record.Procedural.Path) == dir {
			return record.Procedural.ID
		}
	}
	return ""
}
