package procedural

import (
	"context"
	"fmt"
	"path/filepath"
	"sort"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/harun/gearproc/pkg/scene"
)

// Runtime orchestrates the procedural system
type Runtime struct {
	logger         zerolog.Logger
	discovery      *Discovery
	manifestLoader *ManifestLoader
	loader         *Loader
	registry       *Registry
	observer       Observer
	config         RuntimeConfig
	builtins       map[string]*Manifest
	mu             sync.Mutex
}

// NewRuntime creates a new runtime whose procedurals emit into resolver
func NewRuntime(logger zerolog.Logger, resolver scene.Resolver, config RuntimeConfig) *Runtime {
	return &Runtime{
		logger:         logger.With().Str("component", "procedural-runtime").Logger(),
		discovery:      NewDiscovery(logger),
		manifestLoader: NewManifestLoader(logger),
		loader:         NewLoader(logger, resolver),
		registry:       NewRegistry(),
		observer:       nopObserver{},
		config:         config,
		builtins:       make(map[string]*Manifest),
	}
}

// SetObserver sets the observer notified of executions
func (r *Runtime) SetObserver(o Observer) {
	if o == nil {
		o = nopObserver{}
	}
	r.observer = o
}

// RegisterBuiltin registers an in-process procedural described by
// manifestData. Its main must be of the form builtin:<name>.
func (r *Runtime) RegisterBuiltin(manifestData []byte, load LoadFunc) error {
	manifest, err := r.manifestLoader.Parse(manifestData)
	if err != nil {
		return fmt.Errorf("invalid builtin manifest: %w", err)
	}

	name, ok := manifest.Builtin()
	if !ok {
		return fmt.Errorf("builtin procedural %s must have a %s main", manifest.ID, BuiltinPrefix)
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.builtins[manifest.ID]; exists {
		return fmt.Errorf("builtin procedural %s already registered", manifest.ID)
	}
	r.builtins[manifest.ID] = manifest
	r.loader.RegisterBuiltin(name, load)

	r.logger.Debug().Str("id", manifest.ID).Str("builtin", name).Msg("Registered builtin procedural")
	return nil
}

// Initialize loads every builtin procedural, then every procedural found in
// the configured directories
func (r *Runtime) Initialize(ctx context.Context) (*LoadResult, error) {
	r.logger.Info().Msg("Initializing procedural runtime")

	result := &LoadResult{
		Loaded: []string{},
		Failed: []string{},
		Errors: make(map[string]error),
	}

	fail := func(id string, err error) {
		r.logger.Error().Err(err).Str("procedural", id).Msg("Failed to load procedural")
		result.Failed = append(result.Failed, id)
		result.Errors[id] = err
	}

	for _, manifest := range r.builtinManifests() {
		if err := r.loadAndRegister(ctx, manifest, "", SourceBuiltin); err != nil {
			fail(manifest.ID, err)
			continue
		}
		result.Loaded = append(result.Loaded, manifest.ID)
	}

	discovered := r.discovery.Discover(DiscoveryConfig{
		BuiltinDir:   r.config.BuiltinDir,
		WorkspaceDir: r.config.WorkspaceDir,
		ExtraDirs:    r.config.ExtraDirs,
	})

	for _, d := range discovered {
		if err := ctx.Err(); err != nil {
			return nil, fmt.Errorf("procedural runtime initialization cancelled: %w", err)
		}

		manifest, err := r.manifestLoader.LoadManifest(d.ManifestPath)
		if err != nil {
			fail(d.ID, err)
			continue
		}

		if err := r.loadAndRegister(ctx, manifest, d.Path, d.Source); err != nil {
			fail(manifest.ID, err)
			continue
		}
		result.Loaded = append(result.Loaded, manifest.ID)
	}

	r.observer.SetLoaded(len(r.registry.GetAll()))

	r.logger.Info().
		Int("loaded", len(result.Loaded)).
		Int("failed", len(result.Failed)).
		Msg("Procedural runtime initialization complete")

	return result, nil
}

func (r *Runtime) builtinManifests() []*Manifest {
	r.mu.Lock()
	defer r.mu.Unlock()

	manifests := make([]*Manifest, 0, len(r.builtins))
	for _, m := range r.builtins {
		manifests = append(manifests, m)
	}
	sort.Slice(manifests, func(i, j int) bool { return manifests[i].ID < manifests[j].ID })
	return manifests
}

func (r *Runtime) loadAndRegister(ctx context.Context, manifest *Manifest, dir string, source Source) error {
	if _, exists := r.registry.Get(manifest.ID); exists {
		return fmt.Errorf("procedural %s already registered", manifest.ID)
	}

	loaded, err := r.loader.Load(ctx, manifest, dir, source)
	if err != nil {
		return err
	}

	if err := r.registry.Register(loaded); err != nil {
		_ = r.loader.Unload(ctx, loaded)
		return err
	}
	return nil
}

// Execute runs procedural id against scene context sceneCtx. Diagnostics
// raised by the procedural, or by its sandbox, are passed to report; the
// returned error only covers failures to run the procedural at all.
func (r *Runtime) Execute(ctx context.Context, id string, sceneCtx scene.ContextID, args scene.ArgList, report ReportFunc) error {
	record, exists := r.registry.Get(id)
	if !exists {
		return fmt.Errorf("procedural %s not found", id)
	}
	info, _ := r.registry.Info(id)
	if info.State != StateEnabled {
		return fmt.Errorf("procedural %s is %s", id, info.State)
	}

	loaded := record.Procedural
	loaded.exec.Lock()
	defer loaded.exec.Unlock()

	status := StatusSuccess
	var lastError string

	forward := func(severity scene.Severity, message string) {
		r.observer.ObserveReport(id, severity)
		if severity >= scene.SeverityError {
			status = StatusError
			lastError = message
		}
		r.logReport(id, severity, message)
		if report != nil {
			report(severity, message)
		}
	}

	loaded.Sandbox.SetReporter(forward)
	defer loaded.Sandbox.SetReporter(nil)

	start := time.Now()
	func() {
		defer func() {
			if rec := recover(); rec != nil {
				forward(scene.SeverityError, fmt.Sprintf("procedural %s panicked: %v", id, rec))
				status = StatusPanic
			}
		}()
		loaded.Instance.Execute(ctx, sceneCtx, args, forward)
	}()
	duration := time.Since(start)

	r.observer.ObserveExecution(id, status, duration)
	if err := r.registry.RecordExecution(id, lastError); err != nil {
		r.logger.Warn().Err(err).Str("procedural", id).Msg("Failed to record execution")
	}

	r.logger.Debug().
		Str("procedural", id).
		Str("context", string(sceneCtx)).
		Str("status", status).
		Dur("duration", duration).
		Msg("Procedural executed")

	return nil
}

func (r *Runtime) logReport(id string, severity scene.Severity, message string) {
	var event *zerolog.Event
	switch severity {
	case scene.SeverityError:
		event = r.logger.Error()
	case scene.SeverityWarning:
		event = r.logger.Warn()
	case scene.SeverityInfo:
		event = r.logger.Info()
	default:
		event = r.logger.Debug()
	}
	event.Str("procedural", id).Msg(message)
}

// ParseArgs converts name=value pairs using the parameters declared by id
func (r *Runtime) ParseArgs(id string, pairs []string) (scene.ArgList, error) {
	info, exists := r.registry.Info(id)
	if !exists {
		return nil, fmt.Errorf("procedural %s not found", id)
	}
	return ParseArgs(info.Manifest, pairs)
}

// Get returns the info of a loaded procedural
func (r *Runtime) Get(id string) (Info, error) {
	info, exists := r.registry.Info(id)
	if !exists {
		return Info{}, fmt.Errorf("procedural %s not found", id)
	}
	return info, nil
}

// List returns all loaded procedurals sorted by ID
func (r *Runtime) List() []Info {
	records := r.registry.GetAll()
	infos := make([]Info, 0, len(records))
	for _, record := range records {
		if info, ok := r.registry.Info(record.Procedural.ID); ok {
			infos = append(infos, info)
		}
	}
	return infos
}

// EnableProcedural enables a disabled procedural
func (r *Runtime) EnableProcedural(id string) error {
	info, exists := r.registry.Info(id)
	if !exists {
		return fmt.Errorf("procedural %s not found", id)
	}

	if info.State != StateDisabled {
		return fmt.Errorf("procedural %s is not disabled", id)
	}

	if err := r.registry.UpdateState(id, StateEnabled); err != nil {
		return err
	}

	r.logger.Info().Str("procedural", id).Msg("Procedural enabled")
	return nil
}

// DisableProcedural disables an enabled procedural
func (r *Runtime) DisableProcedural(id string) error {
	info, exists := r.registry.Info(id)
	if !exists {
		return fmt.Errorf("procedural %s not found", id)
	}

	if info.State != StateEnabled {
		return fmt.Errorf("procedural %s is not enabled", id)
	}

	if err := r.registry.UpdateState(id, StateDisabled); err != nil {
		return err
	}

	r.logger.Info().Str("procedural", id).Msg("Procedural disabled")
	return nil
}

// Unload unloads a procedural and removes it from the registry
func (r *Runtime) Unload(ctx context.Context, id string) error {
	record, exists := r.registry.Get(id)
	if !exists {
		return fmt.Errorf("procedural %s not found", id)
	}

	loaded := record.Procedural
	loaded.exec.Lock()
	unloadErr := r.loader.Unload(ctx, loaded)
	loaded.exec.Unlock()

	if err := r.registry.Remove(id); err != nil {
		return fmt.Errorf("failed to remove procedural from registry: %w", err)
	}
	r.observer.SetLoaded(len(r.registry.GetAll()))

	if unloadErr != nil {
		return fmt.Errorf("procedural %s unloaded with error: %w", id, unloadErr)
	}
	return nil
}

// Reload unloads a procedural and loads it again from its manifest
func (r *Runtime) Reload(ctx context.Context, id string) error {
	record, exists := r.registry.Get(id)
	if !exists {
		return fmt.Errorf("procedural %s not found", id)
	}
	source, dir := record.Procedural.Source, record.Procedural.Path

	manifest, err := r.manifestFor(id, dir)
	if err != nil {
		return fmt.Errorf("failed to reload procedural %s: %w", id, err)
	}
	if manifest.ID != id {
		return fmt.Errorf("failed to reload procedural %s: manifest now declares %s", id, manifest.ID)
	}

	if err := r.Unload(ctx, id); err != nil {
		r.logger.Warn().Err(err).Str("procedural", id).Msg("Unload before reload reported an error")
	}

	if err := r.loadAndRegister(ctx, manifest, dir, source); err != nil {
		r.observer.SetLoaded(len(r.registry.GetAll()))
		return fmt.Errorf("failed to reload procedural %s: %w", id, err)
	}
	r.observer.SetLoaded(len(r.registry.GetAll()))

	if err := r.registry.RecordReload(id); err != nil {
		r.logger.Warn().Err(err).Msg("Failed to record reload")
	}

	r.logger.Info().Str("procedural", id).Msg("Procedural reloaded successfully")
	return nil
}

func (r *Runtime) manifestFor(id, dir string) (*Manifest, error) {
	if dir == "" {
		r.mu.Lock()
		defer r.mu.Unlock()
		manifest, ok := r.builtins[id]
		if !ok {
			return nil, fmt.Errorf("builtin procedural %s not registered", id)
		}
		return manifest, nil
	}
	return r.manifestLoader.LoadManifest(filepath.Join(dir, ManifestFile))
}

// Shutdown unloads every procedural
func (r *Runtime) Shutdown(ctx context.Context) error {
	r.logger.Info().Msg("Shutting down procedural runtime")

	for _, record := range r.registry.GetAll() {
		if err := r.Unload(ctx, record.Procedural.ID); err != nil {
			r.logger.Error().Err(err).Str("procedural", record.Procedural.ID).Msg("Failed to unload procedural")
		}
	}

	r.logger.Info().Msg("Procedural runtime shutdown complete")
	return nil
}

// Config returns the runtime configuration
func (r *Runtime) Config() RuntimeConfig {
	return r.config
}

// GetRegistry returns the procedural registry
func (r *Runtime) GetRegistry() *Registry {
	return r.registry
}
