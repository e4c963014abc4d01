package scene

import (
	"fmt"
	"sort"
	"sync"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// Connection links an output of one node to an input of another.
// An empty FromAttr refers to the node itself.
type Connection struct {
	From     string `json:"from" yaml:"from"`
	FromAttr string `json:"from_attr,omitempty" yaml:"from_attr,omitempty"`
	To       string `json:"to" yaml:"to"`
	ToAttr   string `json:"to_attr" yaml:"to_attr"`
}

type node struct {
	nodeType   string
	attributes map[string]Arg
}

type graph struct {
	nodes       map[string]*node
	connections []Connection
}

func newGraph() *graph {
	return &graph{
		nodes: map[string]*node{
			Root: {nodeType: NodeTransform, attributes: make(map[string]Arg)},
		},
	}
}

// Store is an in-memory scene host holding any number of contexts
type Store struct {
	contexts map[ContextID]*graph
	onError  ErrorHandler
	logger   zerolog.Logger
	mu       sync.RWMutex
}

// NewStore creates a new store. onError may be nil.
func NewStore(logger zerolog.Logger, onError ErrorHandler) *Store {
	return &Store{
		contexts: make(map[ContextID]*graph),
		onError:  onError,
		logger:   logger.With().Str("component", "scene-store").Logger(),
	}
}

// Begin opens a new scene context containing only the root node
func (s *Store) Begin() ContextID {
	s.mu.Lock()
	defer s.mu.Unlock()

	id := ContextID(uuid.New().String())
	s.contexts[id] = newGraph()

	s.logger.Debug().Str("context", string(id)).Msg("Context opened")
	return id
}

// End closes a scene context and discards its nodes
func (s *Store) End(id ContextID) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.contexts[id]; !exists {
		return fmt.Errorf("context %s not found", id)
	}
	delete(s.contexts, id)

	s.logger.Debug().Str("context", string(id)).Msg("Context closed")
	return nil
}

// Resolve returns the API bound to context id
func (s *Store) Resolve(id ContextID) API {
	return &contextAPI{store: s, id: id}
}

func (s *Store) report(severity Severity, format string, args ...any) {
	msg := fmt.Sprintf(format, args...)
	s.logger.Debug().Str("severity", severity.String()).Msg(msg)
	if s.onError != nil {
		s.onError(severity, msg)
	}
}

// withGraph runs fn on the graph of context id under the write lock.
// The error handler is called after the lock is released.
func (s *Store) withGraph(id ContextID, fn func(g *graph) (Severity, string)) {
	s.mu.Lock()
	g, exists := s.contexts[id]
	var severity Severity
	var msg string
	if !exists {
		severity, msg = SeverityError, fmt.Sprintf("invalid context %s", id)
	} else {
		severity, msg = fn(g)
	}
	s.mu.Unlock()

	if msg != "" {
		s.report(severity, "%s", msg)
	}
}

type contextAPI struct {
	store *Store
	id    ContextID
}

func (c *contextAPI) Create(handle, nodeType string) {
	c.store.withGraph(c.id, func(g *graph) (Severity, string) {
		if handle == "" {
			return SeverityError, "cannot create node with empty handle"
		}
		if existing, ok := g.nodes[handle]; ok {
			if existing.nodeType != nodeType {
				return SeverityError, fmt.Sprintf("node %q already exists with type %q", handle, existing.nodeType)
			}
			return SeverityWarning, fmt.Sprintf("node %q already exists", handle)
		}
		g.nodes[handle] = &node{nodeType: nodeType, attributes: make(map[string]Arg)}
		return 0, ""
	})
}

func (c *contextAPI) Delete(handle string) {
	c.store.withGraph(c.id, func(g *graph) (Severity, string) {
		if handle == Root {
			return SeverityError, "cannot delete the scene root"
		}
		if _, ok := g.nodes[handle]; !ok {
			return SeverityError, fmt.Sprintf("cannot delete unknown node %q", handle)
		}
		delete(g.nodes, handle)

		kept := g.connections[:0]
		for _, conn := range g.connections {
			if conn.From != handle && conn.To != handle {
				kept = append(kept, conn)
			}
		}
		g.connections = kept
		return 0, ""
	})
}

func (c *contextAPI) SetAttribute(handle string, args ...Arg) {
	c.store.withGraph(c.id, func(g *graph) (Severity, string) {
		n, ok := g.nodes[handle]
		if !ok {
			return SeverityError, fmt.Sprintf("cannot set attributes on unknown node %q", handle)
		}
		// Validate the whole batch before applying any of it.
		for _, a := range args {
			if a.Name == "" {
				return SeverityError, fmt.Sprintf("unnamed attribute on node %q", handle)
			}
		}
		for _, a := range args {
			a.Value = cloneValue(a.Value)
			n.attributes[a.Name] = a
		}
		return 0, ""
	})
}

func (c *contextAPI) Connect(from, fromAttr, to, toAttr string) {
	c.store.withGraph(c.id, func(g *graph) (Severity, string) {
		if _, ok := g.nodes[from]; !ok {
			return SeverityError, fmt.Sprintf("cannot connect unknown node %q", from)
		}
		if _, ok := g.nodes[to]; !ok {
			return SeverityError, fmt.Sprintf("cannot connect to unknown node %q", to)
		}
		conn := Connection{From: from, FromAttr: fromAttr, To: to, ToAttr: toAttr}
		for _, existing := range g.connections {
			if existing == conn {
				return 0, ""
			}
		}
		g.connections = append(g.connections, conn)
		return 0, ""
	})
}

func (c *contextAPI) Disconnect(from, fromAttr, to, toAttr string) {
	c.store.withGraph(c.id, func(g *graph) (Severity, string) {
		conn := Connection{From: from, FromAttr: fromAttr, To: to, ToAttr: toAttr}
		for i, existing := range g.connections {
			if existing == conn {
				g.connections = append(g.connections[:i], g.connections[i+1:]...)
				return 0, ""
			}
		}
		return SeverityWarning, fmt.Sprintf("no connection from %q to %q.%s", from, to, toAttr)
	})
}

// NodeSnapshot is a read-only view of one node
type NodeSnapshot struct {
	Handle     string  `json:"handle" yaml:"handle"`
	Type       string  `json:"type" yaml:"type"`
	Attributes []Value `json:"attributes,omitempty" yaml:"attributes,omitempty"`
}

// Value is a read-only view of one attribute
type Value struct {
	Name  string  `json:"name" yaml:"name"`
	Type  ArgType `json:"type" yaml:"type"`
	Count int     `json:"count" yaml:"count"`
	Data  any     `json:"data" yaml:"data"`
}

// Snapshot is a deterministic listing of a scene context
type Snapshot struct {
	Context     ContextID      `json:"context" yaml:"context"`
	Nodes       []NodeSnapshot `json:"nodes" yaml:"nodes"`
	Connections []Connection   `json:"connections" yaml:"connections"`
}

// Snapshot returns the current contents of context id, with nodes and
// attributes sorted by name
func (s *Store) Snapshot(id ContextID) (*Snapshot, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	g, exists := s.contexts[id]
	if !exists {
		return nil, fmt.Errorf("context %s not found", id)
	}

	snap := &Snapshot{
		Context:     id,
		Nodes:       make([]NodeSnapshot, 0, len(g.nodes)),
		Connections: make([]Connection, len(g.connections)),
	}
	copy(snap.Connections, g.connections)

	for handle, n := range g.nodes {
		ns := NodeSnapshot{Handle: handle, Type: n.nodeType}
		for _, a := range n.attributes {
			ns.Attributes = append(ns.Attributes, Value{
				Name:  a.Name,
				Type:  a.Type,
				Count: a.Count,
				Data:  cloneValue(a.Value),
			})
		}
		sort.Slice(ns.Attributes, func(i, j int) bool {
			return ns.Attributes[i].Name < ns.Attributes[j].Name
		})
		snap.Nodes = append(snap.Nodes, ns)
	}
	sort.Slice(snap.Nodes, func(i, j int) bool {
		return snap.Nodes[i].Handle < snap.Nodes[j].Handle
	})

	return snap, nil
}

// cloneValue copies slice values so the stored graph never aliases caller memory
func cloneValue(v any) any {
	switch data := v.(type) {
	case []int:
		return append([]int(nil), data...)
	case []float32:
		return append([]float32(nil), data...)
	default:
		return v
	}
}

// Node returns the snapshot of a single node
func (s *Snapshot) Node(handle string) (NodeSnapshot, bool) {
	for _, n := range s.Nodes {
		if n.Handle == handle {
			return n, true
		}
	}
	return NodeSnapshot{}, false
}

// Attribute returns the named attribute of a node snapshot
func (n NodeSnapshot) Attribute(name string) (Value, bool) {
	for _, v := range n.Attributes {
		if v.Name == name {
			return v, true
		}
	}
	return Value{}, false
}
