package scene

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"
)

type diagnostic struct {
	severity Severity
	message  string
}

func newTestStore() (*Store, *[]diagnostic) {
	var diags []diagnostic
	store := NewStore(zerolog.Nop(), func(severity Severity, message string) {
		diags = append(diags, diagnostic{severity, message})
	})
	return store, &diags
}

func TestStore_Contexts(t *testing.T) {
	t.Run("new context holds only the root", func(t *testing.T) {
		store, _ := newTestStore()
		id := store.Begin()

		snap, err := store.Snapshot(id)
		require.NoError(t, err)
		require.Len(t, snap.Nodes, 1)
		assert.Equal(t, Root, snap.Nodes[0].Handle)
		assert.Equal(t, NodeTransform, snap.Nodes[0].Type)
		assert.Empty(t, snap.Connections)
	})

	t.Run("contexts are isolated", func(t *testing.T) {
		store, _ := newTestStore()
		a := store.Begin()
		b := store.Begin()
		assert.NotEqual(t, a, b)

		store.Resolve(a).Create("only-in-a", NodeMesh)

		snapB, err := store.Snapshot(b)
		require.NoError(t, err)
		_, found := snapB.Node("only-in-a")
		assert.False(t, found)
	})

	t.Run("end removes context", func(t *testing.T) {
		store, _ := newTestStore()
		id := store.Begin()

		require.NoError(t, store.End(id))
		_, err := store.Snapshot(id)
		assert.Error(t, err)
		assert.Error(t, store.End(id))
	})

	t.Run("calls on unknown context are reported", func(t *testing.T) {
		store, diags := newTestStore()
		store.Resolve("missing").Create("x", NodeMesh)

		require.Len(t, *diags, 1)
		assert.Equal(t, SeverityError, (*diags)[0].severity)
		assert.Contains(t, (*diags)[0].message, "invalid context")
	})
}

func TestStore_Mutations(t *testing.T) {
	t.Run("create set and connect", func(t *testing.T) {
		store, diags := newTestStore()
		id := store.Begin()
		api := store.Resolve(id)

		api.Create("mesh1", NodeMesh)
		api.SetAttribute("mesh1",
			IntegerArrayArg("nvertices", []int{4}),
			PointsArg("P", []mgl32.Vec3{{0, 1, 0}, {1, 1, 0}, {1, 0, 0}, {0, 0, 0}}),
		)
		api.Connect("mesh1", "", Root, ObjectsSlot)

		assert.Empty(t, *diags)

		snap, err := store.Snapshot(id)
		require.NoError(t, err)

		mesh, ok := snap.Node("mesh1")
		require.True(t, ok)
		assert.Equal(t, NodeMesh, mesh.Type)
		require.Len(t, mesh.Attributes, 2)
		assert.Equal(t, "P", mesh.Attributes[0].Name)
		assert.Equal(t, "nvertices", mesh.Attributes[1].Name)

		p, ok := mesh.Attribute("P")
		require.True(t, ok)
		assert.Equal(t, 4, p.Count)

		assert.Equal(t, []Connection{{From: "mesh1", To: Root, ToAttr: ObjectsSlot}}, snap.Connections)
	})

	t.Run("snapshot does not alias stored attributes", func(t *testing.T) {
		store, _ := newTestStore()
		id := store.Begin()
		api := store.Resolve(id)

		api.Create("mesh1", NodeMesh)
		api.SetAttribute("mesh1",
			IntegerArrayArg("nvertices", []int{4}),
			PointsArg("P", []mgl32.Vec3{{0, 1, 0}, {1, 1, 0}, {1, 0, 0}, {0, 0, 0}}),
		)

		first, err := store.Snapshot(id)
		require.NoError(t, err)
		mesh, _ := first.Node("mesh1")
		nv, _ := mesh.Attribute("nvertices")
		nv.Data.([]int)[0] = 99
		p, _ := mesh.Attribute("P")
		p.Data.([]float32)[0] = 42

		second, err := store.Snapshot(id)
		require.NoError(t, err)
		mesh, _ = second.Node("mesh1")
		nv, _ = mesh.Attribute("nvertices")
		assert.Equal(t, []int{4}, nv.Data)
		p, _ = mesh.Attribute("P")
		assert.Equal(t, float32(0), p.Data.([]float32)[0])
	})

	t.Run("duplicate create warns and keeps node", func(t *testing.T) {
		store, diags := newTestStore()
		id := store.Begin()
		api := store.Resolve(id)

		api.Create("n", NodeMesh)
		api.Create("n", NodeMesh)
		require.Len(t, *diags, 1)
		assert.Equal(t, SeverityWarning, (*diags)[0].severity)

		api.Create("n", NodeTransform)
		require.Len(t, *diags, 2)
		assert.Equal(t, SeverityError, (*diags)[1].severity)
	})

	t.Run("set attribute on unknown node", func(t *testing.T) {
		store, diags := newTestStore()
		api := store.Resolve(store.Begin())

		api.SetAttribute("ghost", IntegerArg("x", 1))
		require.Len(t, *diags, 1)
		assert.Contains(t, (*diags)[0].message, "ghost")
	})

	t.Run("attribute batch is all or nothing", func(t *testing.T) {
		store, diags := newTestStore()
		id := store.Begin()
		api := store.Resolve(id)

		api.Create("n", NodeMesh)
		api.SetAttribute("n", IntegerArg("good", 1), Arg{Type: TypeInteger, Value: 2})
		require.Len(t, *diags, 1)

		snap, err := store.Snapshot(id)
		require.NoError(t, err)
		n, _ := snap.Node("n")
		assert.Empty(t, n.Attributes)
	})

	t.Run("connect to unknown parent", func(t *testing.T) {
		store, diags := newTestStore()
		api := store.Resolve(store.Begin())

		api.Create("n", NodeMesh)
		api.Connect("n", "", "nowhere", ObjectsSlot)
		require.Len(t, *diags, 1)
		assert.Contains(t, (*diags)[0].message, "nowhere")
	})

	t.Run("delete drops connections", func(t *testing.T) {
		store, diags := newTestStore()
		id := store.Begin()
		api := store.Resolve(id)

		api.Create("n", NodeMesh)
		api.Connect("n", "", Root, ObjectsSlot)
		api.Delete("n")
		assert.Empty(t, *diags)

		snap, err := store.Snapshot(id)
		require.NoError(t, err)
		assert.Len(t, snap.Nodes, 1)
		assert.Empty(t, snap.Connections)
	})

	t.Run("root cannot be deleted", func(t *testing.T) {
		store, diags := newTestStore()
		api := store.Resolve(store.Begin())

		api.Delete(Root)
		require.Len(t, *diags, 1)
		assert.Equal(t, SeverityError, (*diags)[0].severity)
	})

	t.Run("disconnect", func(t *testing.T) {
		store, diags := newTestStore()
		id := store.Begin()
		api := store.Resolve(id)

		api.Create("n", NodeMesh)
		api.Connect("n", "", Root, ObjectsSlot)
		api.Disconnect("n", "", Root, ObjectsSlot)
		assert.Empty(t, *diags)

		api.Disconnect("n", "", Root, ObjectsSlot)
		require.Len(t, *diags, 1)
		assert.Equal(t, SeverityWarning, (*diags)[0].severity)
	})
}

func TestSnapshot_Encode(t *testing.T) {
	store, _ := newTestStore()
	id := store.Begin()
	api := store.Resolve(id)
	api.Create("gear", NodeMesh)
	api.SetAttribute("gear", IntegerArrayArg("nvertices", []int{4, 4}))
	api.Connect("gear", "", Root, ObjectsSlot)

	snap, err := store.Snapshot(id)
	require.NoError(t, err)

	t.Run("json", func(t *testing.T) {
		var buf bytes.Buffer
		require.NoError(t, snap.Encode(&buf, FormatJSON))

		var decoded map[string]any
		require.NoError(t, json.Unmarshal(buf.Bytes(), &decoded))
		assert.Equal(t, string(id), decoded["context"])
		assert.Len(t, decoded["nodes"], 2)
	})

	t.Run("yaml", func(t *testing.T) {
		var buf bytes.Buffer
		require.NoError(t, snap.Encode(&buf, FormatYAML))

		var decoded map[string]any
		require.NoError(t, yaml.Unmarshal(buf.Bytes(), &decoded))
		assert.Equal(t, string(id), decoded["context"])
		assert.Len(t, decoded["connections"], 1)
	})

	t.Run("unknown format", func(t *testing.T) {
		var buf bytes.Buffer
		err := snap.Encode(&buf, "xml")
		assert.Error(t, err)
	})
}
