package commands

import (
	"github.com/marmos91/dbrt/internal/cli/output"
	"github.com/marmos91/dbrt/pkg/lock"
	"github.com/spf13/cobra"
)

var lockdbCmd = &cobra.Command{
	Use:   "lockdb",
	Short: "Print the lock compatibility and conversion matrices",
	Long: `lockdb renders the 5x5 lock-mode compatibility and conversion
tables from pkg/lock, without needing a live connection.`,
	RunE: runLockdb,
}

var allLockModes = []lock.Mode{lock.ModeNA, lock.ModeNull, lock.ModeS, lock.ModeU, lock.ModeX}

func runLockdb(cmd *cobra.Command, args []string) error {
	w := cmd.OutOrStdout()

	compat := output.NewTableData(headerRow("compatible with")...)
	for _, req := range allLockModes {
		row := []string{req.String()}
		for _, held := range allLockModes {
			row = append(row, boolCell(lock.Compat(req, held)))
		}
		compat.AddRow(row...)
	}

	conv := output.NewTableData(headerRow("converts to")...)
	for _, req := range allLockModes {
		row := []string{req.String()}
		for _, held := range allLockModes {
			row = append(row, lock.Conv(req, held).String())
		}
		conv.AddRow(row...)
	}

	if _, err := w.Write([]byte("compatibility (requested x held)\n")); err != nil {
		return err
	}
	if err := output.PrintTable(w, compat); err != nil {
		return err
	}
	if _, err := w.Write([]byte("\nconversion (requested x held)\n")); err != nil {
		return err
	}
	return output.PrintTable(w, conv)
}

func headerRow(corner string) []string {
	headers := []string{corner}
	for _, m := range allLockModes {
		headers = append(headers, m.String())
	}
	return headers
}

func boolCell(b bool) string {
	if b {
		return "yes"
	}
	return "no"
}
