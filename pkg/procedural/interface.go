package procedural

import (
	"context"

	"github.com/harun/gearproc/pkg/scene"
)

// Procedural is the interface procedurals must implement
type Procedural interface {
	// Execute is called once per evaluation request. Diagnostics go through
	// report; nothing is returned to the caller.
	Execute(ctx context.Context, sceneCtx scene.ContextID, args scene.ArgList, report ReportFunc)

	// Unload is called once when the procedural is torn down
	Unload(ctx context.Context) error
}

// LoadFunc creates a procedural instance. The resolver is the capability
// object used for every scene call the instance makes.
type LoadFunc func(libraryPath string, resolver scene.Resolver) (Procedural, error)

// ReportFunc receives diagnostics from a procedural
type ReportFunc func(severity scene.Severity, message string)
