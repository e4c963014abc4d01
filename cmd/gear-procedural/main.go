// Command gear-procedural serves the gear procedural out of process. It is
// launched by the host through a procedural.json whose main points at it.
package main

import (
	"os"

	"github.com/hashicorp/go-hclog"

	"github.com/harun/gearproc/pkg/gear"
	"github.com/harun/gearproc/pkg/procedural"
)

func main() {
	logger := hclog.New(&hclog.LoggerOptions{
		Name:       "gear-procedural",
		Level:      hclog.LevelFromString(os.Getenv("GEARPROC_PROCEDURAL_LOG_LEVEL")),
		Output:     os.Stderr,
		JSONFormat: true,
	})

	procedural.Serve(gear.Load, logger)
}
