// Package main is the htmledit command: it replays edit scripts against HTML documents.
package main

import (
	"fmt"
	"os"
)

// Build information injected via ldflags at build time.
var (
	buildVersion = "dev"
	commit       = "none"
	date         = "unknown"
)

func main() {
	setVersion(fmt.Sprintf("%s (commit: %s, built: %s)", buildVersion, commit, date))
	if err := execute(); err != nil {
		os.Exit(1)
	}
}
