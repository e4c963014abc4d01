package gear_test

import (
	"bytes"
	"context"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/harun/gearproc/pkg/gear"
	"github.com/harun/gearproc/pkg/procedural"
	"github.com/harun/gearproc/pkg/scene"
)

func newRuntime(t *testing.T) (*procedural.Runtime, *scene.Store) {
	t.Helper()

	store := scene.NewStore(zerolog.Nop(), nil)
	runtime := procedural.NewRuntime(zerolog.Nop(), store, procedural.RuntimeConfig{})
	require.NoError(t, runtime.RegisterBuiltin(gear.Manifest, gear.Load))

	result, err := runtime.Initialize(context.Background())
	require.NoError(t, err)
	require.Equal(t, []string{"gear"}, result.Loaded)
	return runtime, store
}

func TestGear_ThroughRuntime(t *testing.T) {
	ctx := context.Background()
	runtime, store := newRuntime(t)
	id := store.Begin()

	args, err := runtime.ParseArgs("gear", []string{
		"nb_teeth=8",
		"inner_radius=1",
		"outer_radius=1.5",
		"node=spur",
	})
	require.NoError(t, err)

	var messages []string
	require.NoError(t, runtime.Execute(ctx, "gear", id, args, func(severity scene.Severity, message string) {
		messages = append(messages, message)
	}))
	assert.Empty(t, messages)

	snap, err := store.Snapshot(id)
	require.NoError(t, err)

	node, ok := snap.Node("spur")
	require.True(t, ok)
	assert.Equal(t, scene.NodeMesh, node.Type)

	faces, ok := node.Attribute(gear.AttrFaceSizes)
	require.True(t, ok)
	assert.Equal(t, []int{4, 4, 4, 4, 4, 4, 4, 4}, faces.Data)

	positions, ok := node.Attribute(gear.AttrPositions)
	require.True(t, ok)
	assert.Equal(t, 32, positions.Count)

	assert.Equal(t, []scene.Connection{{From: "spur", To: scene.Root, ToAttr: scene.ObjectsSlot}}, snap.Connections)

	var out bytes.Buffer
	require.NoError(t, snap.Encode(&out, scene.FormatYAML))
	assert.Contains(t, out.String(), "handle: spur")
}

func TestGear_InvalidThroughRuntime(t *testing.T) {
	ctx := context.Background()
	runtime, store := newRuntime(t)
	id := store.Begin()

	args, err := runtime.ParseArgs("gear", []string{"nb_teeth=5", "inner_radius=1", "outer_radius=2"})
	require.NoError(t, err)

	var messages []string
	require.NoError(t, runtime.Execute(ctx, "gear", id, args, func(severity scene.Severity, message string) {
		assert.Equal(t, scene.SeverityError, severity)
		messages = append(messages, message)
	}))
	assert.Equal(t, []string{"gear : invalid number of teeth"}, messages)

	snap, err := store.Snapshot(id)
	require.NoError(t, err)
	assert.Len(t, snap.Nodes, 1)

	info, err := runtime.Get("gear")
	require.NoError(t, err)
	assert.Equal(t, 1, info.ErrorCount)
	assert.Equal(t, "gear : invalid number of teeth", info.LastError)
}

func TestGear_NonFiniteArgsThroughRuntime(t *testing.T) {
	tests := []struct {
		name    string
		pairs   []string
		message string
	}{
		{"nan inner radius", []string{"nb_teeth=6", "inner_radius=NaN", "outer_radius=2"}, "gear : invalid inner radius"},
		{"infinite outer radius", []string{"nb_teeth=6", "inner_radius=1", "outer_radius=Inf"}, "gear : invalid outer radius"},
		{"nan slope", []string{"nb_teeth=6", "inner_radius=1", "outer_radius=2", "teeth_slope=NaN"}, "gear : invalid teeth slope"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			runtime, store := newRuntime(t)
			id := store.Begin()

			args, err := runtime.ParseArgs("gear", tt.pairs)
			require.NoError(t, err)

			var messages []string
			require.NoError(t, runtime.Execute(context.Background(), "gear", id, args, func(severity scene.Severity, message string) {
				messages = append(messages, message)
			}))
			assert.Equal(t, []string{tt.message}, messages)

			snap, err := store.Snapshot(id)
			require.NoError(t, err)
			assert.Len(t, snap.Nodes, 1)
		})
	}
}
