package procedural

import (
	"context"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/harun/gearproc/pkg/scene"
)

// boxProcedural creates one node per execution, named by the "node"
// parameter, and reports an error when "fail" is set
type boxProcedural struct {
	resolver scene.Resolver
	unloaded bool
}

func loadBox(libraryPath string, resolver scene.Resolver) (Procedural, error) {
	return &boxProcedural{resolver: resolver}, nil
}

func (b *boxProcedural) Execute(ctx context.Context, sceneCtx scene.ContextID, args scene.ArgList, report ReportFunc) {
	if msg, ok := args.FindString("fail"); ok {
		report(scene.SeverityError, msg)
		return
	}
	if _, ok := args.FindString("panic"); ok {
		panic("boom")
	}
	node, ok := args.FindString("node")
	if !ok {
		node = "box"
	}
	api := b.resolver.Resolve(sceneCtx)
	api.Create(node, scene.NodeMesh)
	api.Connect(node, "", scene.Root, scene.ObjectsSlot)
	if _, ok := args.FindString("delete"); ok {
		api.Delete(node)
	}
}

func (b *boxProcedural) Unload(ctx context.Context) error {
	b.unloaded = true
	return nil
}

const boxManifest = `{
	"id": "box",
	"name": "Box",
	"version": "1.0.0",
	"main": "builtin:box",
	"hostVersion": "^1.0.0",
	"capabilities": ["scene:create", "scene:connect"],
	"parameters": [
		{"name": "node", "type": "string"},
		{"name": "fail", "type": "string"},
		{"name": "panic", "type": "string"},
		{"name": "delete", "type": "string"},
		{"name": "size", "type": "float"}
	]
}`

type observed struct {
	id       string
	status   string
	severity scene.Severity
}

type fakeObserver struct {
	executions []observed
	reports    []observed
	loaded     int
	mu         sync.Mutex
}

func (o *fakeObserver) ObserveExecution(id, status string, _ time.Duration) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.executions = append(o.executions, observed{id: id, status: status})
}

func (o *fakeObserver) ObserveReport(id string, severity scene.Severity) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.reports = append(o.reports, observed{id: id, severity: severity})
}

func (o *fakeObserver) SetLoaded(count int) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.loaded = count
}

func (o *fakeObserver) loadedCount() int {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.loaded
}

func writeManifest(t *testing.T, dir, name, content string) string {
	t.Helper()
	procDir := filepath.Join(dir, name)
	require.NoError(t, os.MkdirAll(procDir, 0755))
	path := filepath.Join(procDir, ManifestFile)
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}
