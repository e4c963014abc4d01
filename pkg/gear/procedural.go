package gear

import (
	"context"
	_ "embed"
	"errors"

	"github.com/harun/gearproc/pkg/procedural"
	"github.com/harun/gearproc/pkg/scene"
)

// Manifest is the procedural.json describing the gear procedural
//
//go:embed procedural.json
var Manifest []byte

// ErrUnloaded is reported when an unloaded instance is executed
var ErrUnloaded = errors.New("gear : procedural is unloaded")

// Procedural generates one gear mesh per execution
type Procedural struct {
	libraryPath string
	resolver    scene.Resolver
}

// Load is the procedural entry point. The resolver is kept for the lifetime
// of the instance and used for every scene call.
func Load(libraryPath string, resolver scene.Resolver) (procedural.Procedural, error) {
	return &Procedural{
		libraryPath: libraryPath,
		resolver:    resolver,
	}, nil
}

// Execute validates args and, if they are valid, emits the gear into the
// scene context. Invalid parameters are reported once and nothing is emitted.
func (p *Procedural) Execute(ctx context.Context, sceneCtx scene.ContextID, args scene.ArgList, report procedural.ReportFunc) {
	if p.resolver == nil {
		report(scene.SeverityError, ErrUnloaded.Error())
		return
	}

	params, err := ParseParameters(args)
	if err != nil {
		report(scene.SeverityError, err.Error())
		return
	}

	Emit(p.resolver.Resolve(sceneCtx), params, BuildMesh(params))
}

// Unload releases the resolver
func (p *Procedural) Unload(ctx context.Context) error {
	p.resolver = nil
	return nil
}
