package commands

import (
	"fmt"
	"sort"

	"github.com/marmos91/dbrt/internal/cli/output"
	"github.com/marmos91/dbrt/pkg/paramcache"
	"github.com/spf13/cobra"
)

var paramdumpOpts struct {
	Server string
}

var paramdumpCmd = &cobra.Command{
	Use:   "paramdump",
	Short: "Dump the locally cached forced server parameters",
	Long: `paramdump prints the forced parameter set cached for a server,
as last populated by a get_force_server_parameters round trip, without
opening a new connection.`,
	RunE: runParamdump,
}

func init() {
	paramdumpCmd.Flags().StringVar(&paramdumpOpts.Server, "server", "", "Server address the cache entry was stored under (default: config connection.host:port)")
}

func runParamdump(cmd *cobra.Command, args []string) error {
	cache, err := paramcache.Open(Cfg.ParamCache.Path)
	if err != nil {
		return fmt.Errorf("dbctl paramdump: %w", err)
	}
	defer cache.Close()

	server := paramdumpOpts.Server
	if server == "" {
		server = serverAddr()
	}

	values, hit, err := cache.Get(server)
	if err != nil {
		return fmt.Errorf("dbctl paramdump: %w", err)
	}
	if !hit {
		_, err := fmt.Fprintf(cmd.OutOrStdout(), "no cached forced parameters for %s\n", server)
		return err
	}

	names := make([]string, 0, len(values))
	for name := range values {
		names = append(names, name)
	}
	sort.Strings(names)

	table := output.NewTableData("Parameter", "Value")
	for _, name := range names {
		table.AddRow(name, values[name])
	}
	return output.PrintTable(cmd.OutOrStdout(), table)
}
