package procedural

import (
	"sync"
	"time"

	"github.com/harun/gearproc/pkg/scene"
)

// State represents the current state of a procedural
type State string

const (
	StateLoading  State = "loading"
	StateEnabled  State = "enabled"
	StateDisabled State = "disabled"
	StateFailed   State = "failed"
	StateUnloaded State = "unloaded"
)

// Capability is a scene operation a procedural may perform
type Capability string

const (
	CapabilityCreate       Capability = "scene:create"
	CapabilityDelete       Capability = "scene:delete"
	CapabilitySetAttribute Capability = "scene:setattribute"
	CapabilityConnect      Capability = "scene:connect"
	CapabilityDisconnect   Capability = "scene:disconnect"
)

// ValidCapabilities is a set of all valid capabilities
var ValidCapabilities = map[Capability]bool{
	CapabilityCreate:       true,
	CapabilityDelete:       true,
	CapabilitySetAttribute: true,
	CapabilityConnect:      true,
	CapabilityDisconnect:   true,
}

// Manifest represents the procedural.json file structure
type Manifest struct {
	ID           string          `json:"id"`
	Name         string          `json:"name"`
	Version      string          `json:"version"`
	Description  string          `json:"description,omitempty"`
	Main         string          `json:"main"`
	HostVersion  string          `json:"hostVersion,omitempty"` // Semver constraint
	Capabilities []Capability    `json:"capabilities,omitempty"`
	Parameters   []ParameterDecl `json:"parameters,omitempty"`
}

// ParameterDecl declares one parameter a procedural reads
type ParameterDecl struct {
	Name        string        `json:"name"`
	Type        scene.ArgType `json:"type"`
	Required    bool          `json:"required,omitempty"`
	Description string        `json:"description,omitempty"`
}

// Discovered represents a procedural found during discovery
type Discovered struct {
	ID           string
	Path         string
	Source       Source
	ManifestPath string
}

// Source indicates where a procedural was discovered
type Source string

const (
	SourceBuiltin   Source = "builtin"
	SourceWorkspace Source = "workspace"
	SourceExtra     Source = "extra"
)

// Loaded represents a fully loaded procedural
type Loaded struct {
	ID         string
	InstanceID string
	Manifest   Manifest
	State      State
	Sandbox    *Sandbox
	Instance   Procedural
	Source     Source
	Path       string

	// kill stops an out-of-process procedural, nil for builtins
	kill func()
	// exec serializes executions of one instance
	exec sync.Mutex
}

// Record tracks a procedural and its execution history
type Record struct {
	Procedural     *Loaded
	LoadedAt       time.Time
	LastReloadAt   *time.Time
	ExecutionCount int
	ErrorCount     int
	LastError      string
}

// LoadResult contains the results of loading procedurals
type LoadResult struct {
	Loaded []string         // Successfully loaded procedural IDs
	Failed []string         // Failed procedural IDs
	Errors map[string]error // Errors by procedural ID
}

// Info contains procedural metadata for listing
type Info struct {
	ID             string
	InstanceID     string
	Manifest       Manifest
	State          State
	Source         Source
	LoadedAt       time.Time
	LastReload     *time.Time
	ExecutionCount int
	ErrorCount     int
	LastError      string
}

// DiscoveryConfig configures procedural discovery
type DiscoveryConfig struct {
	BuiltinDir   string
	WorkspaceDir string
	ExtraDirs    []string
}

// RuntimeConfig configures the procedural runtime
type RuntimeConfig struct {
	BuiltinDir   string
	WorkspaceDir string
	ExtraDirs    []string
}
