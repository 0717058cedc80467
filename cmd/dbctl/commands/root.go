// Package commands implements the dbctl CLI: the boundary between an
// operator's terminal and a client runtime that otherwise only exists as a
// library (pkg/dbclient, pkg/backup, pkg/lock, pkg/queryresult).
package commands

import (
	"fmt"
	"os"

	configcmd "github.com/marmos91/dbrt/cmd/dbctl/commands/config"
	"github.com/marmos91/dbrt/internal/logger"
	"github.com/marmos91/dbrt/pkg/config"
	"github.com/spf13/cobra"
)

// Version information injected at build time.
var (
	Version = "dev"
	Commit  = "none"
	Date    = "unknown"
)

// Flags holds the global flag values read by every subcommand.
var Flags = &GlobalFlags{}

// GlobalFlags mirrors the teacher's cmdutil.GlobalFlags shape, narrowed to
// what a single-connection embedded client needs.
type GlobalFlags struct {
	ConfigPath string
	Server     string
	Output     string
	NoColor    bool
	Verbose    bool
}

// Cfg is the loaded configuration, populated by rootCmd's PersistentPreRunE
// before any subcommand runs.
var Cfg *config.Config

// rootCmd represents the base command when called without any subcommands.
var rootCmd = &cobra.Command{
	Use:   "dbctl",
	Short: "dbctl - operator CLI for the dbrt client runtime",
	Long: `dbctl drives the client runtime from a terminal: start a streaming
backup, inspect the lock compatibility and conversion matrices, dump the
forced server parameters cached locally, and print the runtime's
configuration schema.

Use "dbctl [command] --help" for more information about a command.`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		Flags.ConfigPath, _ = cmd.Flags().GetString("config")
		Flags.Server, _ = cmd.Flags().GetString("server")
		Flags.Output, _ = cmd.Flags().GetString("output")
		Flags.NoColor, _ = cmd.Flags().GetBool("no-color")
		Flags.Verbose, _ = cmd.Flags().GetBool("verbose")

		cfg, err := config.Load(Flags.ConfigPath)
		if err != nil {
			return fmt.Errorf("dbctl: load config: %w", err)
		}
		Cfg = cfg

		if Flags.Server != "" {
			host, port, err := splitHostPort(Flags.Server)
			if err != nil {
				return fmt.Errorf("dbctl: --server: %w", err)
			}
			Cfg.Connection.Host = host
			Cfg.Connection.Port = port
		}

		level := Cfg.Logging.Level
		if Flags.Verbose {
			level = "DEBUG"
		}
		return logger.Init(logger.Config{
			Level:  level,
			Format: Cfg.Logging.Format,
			Output: Cfg.Logging.Output,
		})
	},
}

// Execute adds all child commands to the root command and runs it.
func Execute() error {
	return rootCmd.Execute()
}

// GetRootCmd returns the root command, for testing.
func GetRootCmd() *cobra.Command {
	return rootCmd
}

func init() {
	rootCmd.PersistentFlags().String("config", "", "Configuration file path (default: "+config.GetDefaultConfigPath()+")")
	rootCmd.PersistentFlags().String("server", "", "Server address host:port (overrides the config file)")
	rootCmd.PersistentFlags().StringP("output", "o", "table", "Output format (table|json)")
	rootCmd.PersistentFlags().Bool("no-color", false, "Disable colored output")
	rootCmd.PersistentFlags().BoolP("verbose", "v", false, "Enable debug logging")

	rootCmd.AddCommand(versionCmd)
	rootCmd.AddCommand(backupCmd)
	rootCmd.AddCommand(lockdbCmd)
	rootCmd.AddCommand(paramdumpCmd)
	rootCmd.AddCommand(configcmd.Cmd)

	rootCmd.CompletionOptions.DisableDefaultCmd = true
}

// PrintErr prints an error message to stderr.
func PrintErr(format string, args ...any) {
	rootCmd.PrintErrf(format+"\n", args...)
}

// Exit prints an error and exits with code 1.
func Exit(format string, args ...any) {
	PrintErr(format, args...)
	os.Exit(1)
}
