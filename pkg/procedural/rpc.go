package procedural

import (
	"context"
	"fmt"
	"net/rpc"
	"sync"

	"github.com/hashicorp/go-hclog"
	"github.com/hashicorp/go-plugin"

	"github.com/harun/gearproc/pkg/scene"
)

// Handshake is used to verify that the procedural and host are compatible
var Handshake = plugin.HandshakeConfig{
	ProtocolVersion:  1,
	MagicCookieKey:   "GEARPROC_PROCEDURAL",
	MagicCookieValue: "gearproc-procedural-v1",
}

const dispenseName = "procedural"

// PluginMap is the map of procedurals the host can dispense
var PluginMap = map[string]plugin.Plugin{
	dispenseName: &RPCPlugin{},
}

// Serve runs load as an out-of-process procedural. It blocks until the
// host disconnects and is meant to be called from a procedural's main.
func Serve(load LoadFunc, logger hclog.Logger) {
	plugin.Serve(&plugin.ServeConfig{
		HandshakeConfig: Handshake,
		Plugins: map[string]plugin.Plugin{
			dispenseName: &RPCPlugin{Load: load},
		},
		Logger: logger,
	})
}

// RPCPlugin is the implementation of plugin.Plugin for net/rpc
type RPCPlugin struct {
	Load LoadFunc
}

func (p *RPCPlugin) Server(*plugin.MuxBroker) (interface{}, error) {
	return &RPCServer{load: p.Load}, nil
}

func (p *RPCPlugin) Client(b *plugin.MuxBroker, c *rpc.Client) (interface{}, error) {
	return &RPCClient{client: c}, nil
}

// Report is one diagnostic raised during a remote execution
type Report struct {
	Severity scene.Severity
	Message  string
}

// LoadArgs are the arguments for the Load RPC call
type LoadArgs struct {
	LibraryPath string
}

// ExecuteArgs are the arguments for the Execute RPC call
type ExecuteArgs struct {
	Context scene.ContextID
	Args    scene.ArgList
}

// ExecuteResp carries the scene calls and diagnostics of one execution
type ExecuteResp struct {
	Ops     []scene.Op
	Reports []Report
}

// RPCServer runs a procedural in the plugin process. Scene calls are
// recorded and shipped back to the host for replay.
type RPCServer struct {
	load     LoadFunc
	impl     Procedural
	recorder *scene.Recorder
	mu       sync.Mutex
}

func (s *RPCServer) resolve(scene.ContextID) scene.API {
	if s.recorder == nil {
		// Calls outside an execution have nowhere to go.
		return scene.NewRecorder()
	}
	return s.recorder
}

func (s *RPCServer) Load(args *LoadArgs, resp *bool) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.impl != nil {
		return fmt.Errorf("procedural already loaded")
	}
	impl, err := s.load(args.LibraryPath, scene.ResolverFunc(s.resolve))
	if err != nil {
		return err
	}
	s.impl = impl
	*resp = true
	return nil
}

func (s *RPCServer) Execute(args *ExecuteArgs, resp *ExecuteResp) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.impl == nil {
		return fmt.Errorf("procedural not loaded")
	}

	s.recorder = scene.NewRecorder()
	defer func() { s.recorder = nil }()

	s.impl.Execute(context.Background(), args.Context, args.Args, func(severity scene.Severity, message string) {
		resp.Reports = append(resp.Reports, Report{Severity: severity, Message: message})
	})
	resp.Ops = s.recorder.Ops()
	return nil
}

func (s *RPCServer) Unload(args interface{}, resp *bool) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.impl == nil {
		return nil
	}
	err := s.impl.Unload(context.Background())
	s.impl = nil
	*resp = err == nil
	return err
}

// RPCClient is the RPC client that talks to RPCServer
type RPCClient struct {
	client *rpc.Client
}

func (c *RPCClient) call(ctx context.Context, method string, args, resp any) error {
	if ctx == nil {
		ctx = context.Background()
	}
	call := c.client.Go("Plugin."+method, args, resp, make(chan *rpc.Call, 1))
	select {
	case <-call.Done:
		return call.Error
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (c *RPCClient) Load(ctx context.Context, libraryPath string) error {
	var ok bool
	return c.call(ctx, "Load", &LoadArgs{LibraryPath: libraryPath}, &ok)
}

func (c *RPCClient) Execute(ctx context.Context, sceneCtx scene.ContextID, args scene.ArgList) (*ExecuteResp, error) {
	var resp ExecuteResp
	if err := c.call(ctx, "Execute", &ExecuteArgs{Context: sceneCtx, Args: args}, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

func (c *RPCClient) Unload(ctx context.Context) error {
	var ok bool
	return c.call(ctx, "Unload", new(interface{}), &ok)
}

// remoteProcedural adapts an RPCClient to the Procedural interface on the
// host side, replaying recorded scene calls through the host resolver
type remoteProcedural struct {
	client   *RPCClient
	resolver scene.Resolver
}

func (p *remoteProcedural) Execute(ctx context.Context, sceneCtx scene.ContextID, args scene.ArgList, report ReportFunc) {
	resp, err := p.client.Execute(ctx, sceneCtx, args)
	if err != nil {
		report(scene.SeverityError, fmt.Sprintf("procedural execution failed: %v", err))
		return
	}

	for _, r := range resp.Reports {
		report(r.Severity, r.Message)
	}
	scene.Replay(p.resolver.Resolve(sceneCtx), resp.Ops)
}

func (p *remoteProcedural) Unload(ctx context.Context) error {
	return p.client.Unload(ctx)
}
