package procedural

import (
	"fmt"
	"sync"

	"github.com/harun/gearproc/pkg/scene"
)

// Sandbox enforces capability-based access to the scene API.
// Denied calls are dropped and reported as errors.
type Sandbox struct {
	procedural   string
	capabilities map[Capability]bool
	report       ReportFunc
	mu           sync.RWMutex
}

// NewSandbox creates a sandbox granting the given capabilities
func NewSandbox(procedural string, capabilities []Capability) *Sandbox {
	capMap := make(map[Capability]bool)
	for _, c := range capabilities {
		capMap[c] = true
	}
	return &Sandbox{
		procedural:   procedural,
		capabilities: capMap,
	}
}

// CheckCapability checks if the procedural has the capability
func (s *Sandbox) CheckCapability(c Capability) bool {
	return s.capabilities[c]
}

// RequireCapability returns an error if the procedural lacks the capability
func (s *Sandbox) RequireCapability(c Capability) error {
	if !s.CheckCapability(c) {
		return fmt.Errorf("capability denied: %s lacks %s", s.procedural, c)
	}
	return nil
}

// GetCapabilities returns all capabilities granted to the procedural
func (s *Sandbox) GetCapabilities() []Capability {
	caps := make([]Capability, 0, len(s.capabilities))
	for c := range s.capabilities {
		caps = append(caps, c)
	}
	return caps
}

// SetReporter sets where denials are reported. A nil report discards them.
func (s *Sandbox) SetReporter(report ReportFunc) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.report = report
}

func (s *Sandbox) allow(c Capability) bool {
	err := s.RequireCapability(c)
	if err == nil {
		return true
	}

	s.mu.RLock()
	report := s.report
	s.mu.RUnlock()
	if report != nil {
		report(scene.SeverityError, err.Error())
	}
	return false
}

// Wrap returns a resolver whose APIs only forward permitted calls
func (s *Sandbox) Wrap(inner scene.Resolver) scene.Resolver {
	return scene.ResolverFunc(func(id scene.ContextID) scene.API {
		return &sandboxedAPI{sandbox: s, inner: inner.Resolve(id)}
	})
}

type sandboxedAPI struct {
	sandbox *Sandbox
	inner   scene.API
}

func (a *sandboxedAPI) Create(handle, nodeType string) {
	if a.sandbox.allow(CapabilityCreate) {
		a.inner.Create(handle, nodeType)
	}
}

func (a *sandboxedAPI) Delete(handle string) {
	if a.sandbox.allow(CapabilityDelete) {
		a.inner.Delete(handle)
	}
}

func (a *sandboxedAPI) SetAttribute(handle string, args ...scene.Arg) {
	if a.sandbox.allow(CapabilitySetAttribute) {
		a.inner.SetAttribute(handle, args...)
	}
}

func (a *sandboxedAPI) Connect(from, fromAttr, to, toAttr string) {
	if a.sandbox.allow(CapabilityConnect) {
		a.inner.Connect(from, fromAttr, to, toAttr)
	}
}

func (a *sandboxedAPI) Disconnect(from, fromAttr, to, toAttr string) {
	if a.sandbox.allow(CapabilityDisconnect) {
		a.inner.Disconnect(from, fromAttr, to, toAttr)
	}
}
