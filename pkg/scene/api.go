// Package scene provides the scene-description API that procedurals emit
// geometry through, along with an in-memory host implementation.
package scene

// Root is the handle of the node every scene context starts with
const Root = ".root"

// Common node types
const (
	NodeTransform = "transform"
	NodeMesh      = "mesh"
)

// ObjectsSlot is the transform input that geometry connects to
const ObjectsSlot = "objects"

// ContextID identifies a scene context within a host
type ContextID string

// API is the set of scene mutations available to a procedural.
// Calls do not return errors: the host reports failures through its own
// error channel.
type API interface {
	Create(handle, nodeType string)
	Delete(handle string)
	SetAttribute(handle string, args ...Arg)
	Connect(from, fromAttr, to, toAttr string)
	Disconnect(from, fromAttr, to, toAttr string)
}

// Resolver hands out the API bound to a given scene context. A procedural
// receives one when it is loaded and uses it for every outbound call.
type Resolver interface {
	Resolve(id ContextID) API
}

// ResolverFunc adapts a function to the Resolver interface
type ResolverFunc func(id ContextID) API

// Resolve calls f(id)
func (f ResolverFunc) Resolve(id ContextID) API {
	return f(id)
}
