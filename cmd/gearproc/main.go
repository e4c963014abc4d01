package main

import (
	"os"

	"github.com/harun/gearproc/internal/cli"
)

func main() {
	if err := cli.Execute(); err != nil {
		os.Exit(1)
	}
}
