package procedural

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"sync"

	"github.com/google/uuid"
	"github.com/hashicorp/go-hclog"
	"github.com/hashicorp/go-plugin"
	"github.com/rs/zerolog"

	"github.com/harun/gearproc/pkg/scene"
)

// Loader creates procedural instances from manifests
type Loader struct {
	logger   zerolog.Logger
	resolver scene.Resolver
	builtins map[string]LoadFunc
	mu       sync.RWMutex
}

// NewLoader creates a new loader. Every instance it creates reaches the
// scene through resolver, filtered by the instance's sandbox.
func NewLoader(logger zerolog.Logger, resolver scene.Resolver) *Loader {
	return &Loader{
		logger:   logger.With().Str("component", "procedural-loader").Logger(),
		resolver: resolver,
		builtins: make(map[string]LoadFunc),
	}
}

// RegisterBuiltin makes an in-process procedural available as builtin:<name>
func (l *Loader) RegisterBuiltin(name string, load LoadFunc) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.builtins[name] = load
}

func (l *Loader) builtin(name string) (LoadFunc, bool) {
	l.mu.RLock()
	defer l.mu.RUnlock()
	load, ok := l.builtins[name]
	return load, ok
}

// Load creates an instance of the procedural described by manifest.
// dir is the directory the manifest was found in, empty for builtins.
func (l *Loader) Load(ctx context.Context, manifest *Manifest, dir string, source Source) (*Loaded, error) {
	if err := CheckHostVersion(manifest.HostVersion); err != nil {
		return nil, fmt.Errorf("incompatible procedural %s: %w", manifest.ID, err)
	}

	sandbox := NewSandbox(manifest.ID, manifest.Capabilities)
	resolver := sandbox.Wrap(l.resolver)

	loaded := &Loaded{
		ID:         manifest.ID,
		InstanceID: uuid.New().String(),
		Manifest:   *manifest,
		State:      StateLoading,
		Sandbox:    sandbox,
		Source:     source,
		Path:       dir,
	}

	if name, ok := manifest.Builtin(); ok {
		load, exists := l.builtin(name)
		if !exists {
			return nil, fmt.Errorf("builtin procedural %s not registered", name)
		}
		instance, err := load(dir, resolver)
		if err != nil {
			return nil, fmt.Errorf("failed to load builtin procedural %s: %w", name, err)
		}
		loaded.Instance = instance
	} else {
		instance, kill, err := l.launch(ctx, manifest, dir, resolver)
		if err != nil {
			return nil, err
		}
		loaded.Instance = instance
		loaded.kill = kill
	}

	loaded.State = StateEnabled

	l.logger.Info().
		Str("id", manifest.ID).
		Str("instance", loaded.InstanceID).
		Str("version", manifest.Version).
		Str("source", string(source)).
		Msg("Procedural loaded successfully")

	return loaded, nil
}

// launch starts an out-of-process procedural through go-plugin
func (l *Loader) launch(ctx context.Context, manifest *Manifest, dir string, resolver scene.Resolver) (Procedural, func(), error) {
	path := manifest.Main
	if !filepath.IsAbs(path) {
		path = filepath.Join(dir, path)
	}

	if _, err := os.Stat(path); err != nil {
		return nil, nil, fmt.Errorf("procedural executable not found: %s", path)
	}

	client := plugin.NewClient(&plugin.ClientConfig{
		HandshakeConfig:  Handshake,
		Plugins:          PluginMap,
		Cmd:              exec.Command(path),
		AllowedProtocols: []plugin.Protocol{plugin.ProtocolNetRPC},
		Logger: hclog.New(&hclog.LoggerOptions{
			Name:   "procedural." + manifest.ID,
			Level:  hclog.Warn,
			Output: l.logger,
		}),
	})

	rpcClient, err := client.Client()
	if err != nil {
		client.Kill()
		return nil, nil, fmt.Errorf("failed to connect to procedural: %w", err)
	}

	raw, err := rpcClient.Dispense(dispenseName)
	if err != nil {
		client.Kill()
		return nil, nil, fmt.Errorf("failed to dispense procedural: %w", err)
	}

	rc, ok := raw.(*RPCClient)
	if !ok {
		client.Kill()
		return nil, nil, fmt.Errorf("unexpected procedural type %T", raw)
	}

	if err := rc.Load(ctx, path); err != nil {
		client.Kill()
		return nil, nil, fmt.Errorf("failed to load procedural: %w", err)
	}

	return &remoteProcedural{client: rc, resolver: resolver}, client.Kill, nil
}

// Unload tears down an instance. The procedural's own Unload error is
// returned after the process, if any, has been stopped.
func (l *Loader) Unload(ctx context.Context, loaded *Loaded) error {
	var err error
	if loaded.Instance != nil {
		err = loaded.Instance.Unload(ctx)
		if err != nil {
			l.logger.Warn().Err(err).Str("procedural", loaded.ID).Msg("Failed to unload procedural")
		}
	}
	if loaded.kill != nil {
		loaded.kill()
	}
	loaded.Sandbox.SetReporter(nil)
	loaded.State = StateUnloaded

	l.logger.Info().Str("id", loaded.ID).Str("instance", loaded.InstanceID).Msg("Procedural unloaded")
	return err
}
