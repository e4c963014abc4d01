package procedural

import (
	"context"
	"net"
	"net/rpc"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/harun/gearproc/pkg/scene"
)

// newPipeClient serves an RPCServer over an in-memory connection, the
// same way go-plugin does over its net/rpc transport
func newPipeClient(t *testing.T, load LoadFunc) *RPCClient {
	t.Helper()

	server := rpc.NewServer()
	require.NoError(t, server.RegisterName("Plugin", &RPCServer{load: load}))

	serverConn, clientConn := net.Pipe()
	go server.ServeConn(serverConn)

	client := rpc.NewClient(clientConn)
	t.Cleanup(func() { _ = client.Close() })
	return &RPCClient{client: client}
}

func TestRPC_Lifecycle(t *testing.T) {
	ctx := context.Background()

	t.Run("execute before load fails", func(t *testing.T) {
		client := newPipeClient(t, loadBox)
		_, err := client.Execute(ctx, "c", nil)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "not loaded")
	})

	t.Run("load twice fails", func(t *testing.T) {
		client := newPipeClient(t, loadBox)
		require.NoError(t, client.Load(ctx, "/bin/box"))
		err := client.Load(ctx, "/bin/box")
		require.Error(t, err)
		assert.Contains(t, err.Error(), "already loaded")
	})

	t.Run("execute returns recorded ops", func(t *testing.T) {
		client := newPipeClient(t, loadBox)
		require.NoError(t, client.Load(ctx, "/bin/box"))

		resp, err := client.Execute(ctx, "c", scene.ArgList{scene.StringArg("node", "n")})
		require.NoError(t, err)
		require.Len(t, resp.Ops, 2)
		assert.Equal(t, scene.OpCreate, resp.Ops[0].Kind)
		assert.Equal(t, "n", resp.Ops[0].Handle)
		assert.Equal(t, scene.OpConnect, resp.Ops[1].Kind)
		assert.Equal(t, scene.Root, resp.Ops[1].To)
		assert.Empty(t, resp.Reports)
	})

	t.Run("execute returns reports", func(t *testing.T) {
		client := newPipeClient(t, loadBox)
		require.NoError(t, client.Load(ctx, "/bin/box"))

		resp, err := client.Execute(ctx, "c", scene.ArgList{scene.StringArg("fail", "no good")})
		require.NoError(t, err)
		assert.Empty(t, resp.Ops)
		assert.Equal(t, []Report{{Severity: scene.SeverityError, Message: "no good"}}, resp.Reports)
	})

	t.Run("unload", func(t *testing.T) {
		client := newPipeClient(t, loadBox)
		require.NoError(t, client.Load(ctx, "/bin/box"))
		require.NoError(t, client.Unload(ctx))

		_, err := client.Execute(ctx, "c", nil)
		assert.Error(t, err)

		// A second unload is a no-op.
		assert.NoError(t, client.Unload(ctx))
	})

	t.Run("cancelled context", func(t *testing.T) {
		client := newPipeClient(t, loadBox)
		cancelled, cancel := context.WithCancel(ctx)
		cancel()

		// The call may complete before the cancellation is observed.
		err := client.Load(cancelled, "/bin/box")
		if err != nil {
			assert.ErrorIs(t, err, context.Canceled)
		}
	})
}

func TestRemoteProcedural_ReplaysOntoHost(t *testing.T) {
	ctx := context.Background()
	store := scene.NewStore(zerolog.Nop(), nil)
	id := store.Begin()

	client := newPipeClient(t, loadBox)
	require.NoError(t, client.Load(ctx, "/bin/box"))

	remote := &remoteProcedural{client: client, resolver: store}

	var reports []string
	report := func(severity scene.Severity, message string) {
		reports = append(reports, message)
	}

	remote.Execute(ctx, id, scene.ArgList{scene.StringArg("node", "remote")}, report)
	remote.Execute(ctx, id, scene.ArgList{scene.StringArg("fail", "bad")}, report)

	snap, err := store.Snapshot(id)
	require.NoError(t, err)
	node, ok := snap.Node("remote")
	require.True(t, ok)
	assert.Equal(t, scene.NodeMesh, node.Type)
	assert.Equal(t, []scene.Connection{{From: "remote", To: scene.Root, ToAttr: scene.ObjectsSlot}}, snap.Connections)
	assert.Equal(t, []string{"bad"}, reports)

	require.NoError(t, remote.Unload(ctx))
}
