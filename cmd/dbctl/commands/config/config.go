// Package config implements dbctl's "config" subcommand group.
package config

import (
	"github.com/spf13/cobra"
)

// Cmd is the config subcommand.
var Cmd = &cobra.Command{
	Use:   "config",
	Short: "Inspect the client runtime's configuration",
}

func init() {
	Cmd.AddCommand(schemaCmd)
}
