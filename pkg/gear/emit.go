package gear

import "github.com/harun/gearproc/pkg/scene"

// Mesh attribute names
const (
	AttrFaceSizes = "nvertices"
	AttrPositions = "P"
)

// Emit creates the mesh node, sets its topology and positions in a single
// batch and connects it under the parent's objects slot
func Emit(api scene.API, p Parameters, m Mesh) {
	api.Create(p.Node, scene.NodeMesh)
	api.SetAttribute(p.Node,
		scene.IntegerArrayArg(AttrFaceSizes, m.FaceSizes()),
		scene.PointsArg(AttrPositions, m.Points),
	)
	api.Connect(p.Node, "", p.ParentNode, scene.ObjectsSlot)
}
