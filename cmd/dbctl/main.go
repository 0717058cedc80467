package main

import (
	"fmt"
	"os"

	"github.com/marmos91/dbrt/cmd/dbctl/commands"
	"github.com/marmos91/dbrt/internal/telemetry"
	"github.com/marmos91/dbrt/pkg/config"
)

// Build-time variables injected via ldflags.
var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

func main() {
	commands.Version = version
	commands.Commit = commit
	commands.Date = date

	cfg, err := config.Load(os.Getenv("DBRT_CONFIG"))
	if err == nil && cfg.Telemetry.Profiling.Enabled {
		shutdown, err := telemetry.InitProfiling(telemetry.ProfilingConfig{
			Enabled:        true,
			ServiceName:    "dbctl",
			ServiceVersion: version,
			Endpoint:       cfg.Telemetry.Profiling.Endpoint,
		})
		if err != nil {
			fmt.Fprintf(os.Stderr, "dbctl: profiling disabled: %v\n", err)
		} else {
			defer shutdown()
		}
	}

	if err := commands.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
