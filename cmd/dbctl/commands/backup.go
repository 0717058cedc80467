package commands

import (
	"context"
	"fmt"
	"os"

	"github.com/marmos91/dbrt/internal/cli/output"
	"github.com/marmos91/dbrt/internal/cli/prompt"
	"github.com/marmos91/dbrt/internal/dispatch"
	"github.com/marmos91/dbrt/pkg/backup"
	"github.com/marmos91/dbrt/pkg/dbclient"
	"github.com/spf13/cobra"
)

var backupOpts struct {
	Destination     string
	Threads         int
	SleepMsecs      int
	CompressionType string
	MakeSlave       bool
	DataDir         string
	LogDir          string
	Force           bool
}

var backupCmd = &cobra.Command{
	Use:   "backup",
	Short: "Run a full streaming backup against the configured server",
	Long: `backup drives the streaming backup protocol end to end: prepare,
pull permanent volumes, pull log volumes, and patch the final checkpoint
LSA into the backup header.

An existing destination file is overwritten only after the user confirms
at a prompt, or without prompting when --force is given.`,
	RunE: runBackup,
}

func init() {
	flags := backupCmd.Flags()
	flags.StringVar(&backupOpts.Destination, "destination", "", "Backup destination path (default: config backup.destination)")
	flags.IntVar(&backupOpts.Threads, "threads", 0, "Number of backup threads (default: config backup.threads)")
	flags.IntVar(&backupOpts.SleepMsecs, "sleep-msecs", -1, "Sleep between pages, milliseconds (default: config backup.sleep_msecs)")
	flags.StringVar(&backupOpts.CompressionType, "compression", "", "Page compression: none, lzo1x, s2, zstd (default: config backup.compression_type)")
	flags.BoolVar(&backupOpts.MakeSlave, "make-slave", false, "Write one file per server volume instead of a single backup file")
	flags.StringVar(&backupOpts.DataDir, "data-dir", "", "Destination directory for data volumes in --make-slave mode")
	flags.StringVar(&backupOpts.LogDir, "log-dir", "", "Destination directory for log volumes in --make-slave mode")
	flags.BoolVar(&backupOpts.Force, "force", false, "Overwrite an existing destination without prompting")
}

func runBackup(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	opts := resolveBackupOptions()

	if opts.Destination != "" && !opts.MakeSlave && !opts.ForceOverwrite {
		if _, err := os.Stat(opts.Destination); err == nil {
			confirmed, err := prompt.ConfirmWithForce(
				fmt.Sprintf("Destination %s already exists. Overwrite?", opts.Destination), false)
			if err != nil {
				if prompt.IsAborted(err) {
					fmt.Fprintln(cmd.OutOrStdout(), "\nAborted.")
					return nil
				}
				return err
			}
			if !confirmed {
				fmt.Fprintln(cmd.OutOrStdout(), "Aborted.")
				return nil
			}
			opts.ForceOverwrite = true
		}
	}

	metrics := dispatch.NewMetrics(nil)
	conn, err := dbclient.Dial(ctx, serverAddr(), metrics)
	if err != nil {
		return fmt.Errorf("dbctl backup: %w", err)
	}
	defer conn.Close()

	session := backup.NewSession(conn.Dispatcher(), opts)
	session.OnProgress(func(tick int) {
		fmt.Fprintf(cmd.OutOrStdout(), "\rbackup progress: %d%%", tick*4)
	})

	header, err := session.Prepare(ctx)
	if err != nil {
		return fmt.Errorf("dbctl backup: prepare: %w", err)
	}
	fmt.Fprintf(cmd.OutOrStdout(), "backup of %s started at %s\n", header.DBName, header.StartTime.Format("2006-01-02T15:04:05"))

	if err := session.OpenVolume(ctx); err != nil {
		return fmt.Errorf("dbctl backup: %w", err)
	}
	if err := session.WriteHeader(); err != nil {
		return fmt.Errorf("dbctl backup: %w", err)
	}
	if err := session.StreamVolumes(ctx, dispatch.OpBackupVolume); err != nil {
		return fmt.Errorf("dbctl backup: data volumes: %w", err)
	}
	if err := session.StreamVolumes(ctx, dispatch.OpBackupLogVolume); err != nil {
		return fmt.Errorf("dbctl backup: log volumes: %w", err)
	}

	fmt.Fprintln(cmd.OutOrStdout())
	printBackupSummary(cmd, opts)
	return nil
}

func resolveBackupOptions() backup.Options {
	b := Cfg.Backup
	opts := backup.Options{
		NumThreads:      int32(b.Threads),
		DoCompress:      b.CompressionType != "" && b.CompressionType != "none",
		SleepMsecs:      int32(b.SleepMsecs),
		MakeSlave:       backupOpts.MakeSlave,
		Destination:     b.Destination,
		CompressionType: b.CompressionType,
		DataDir:         backupOpts.DataDir,
		LogDir:          backupOpts.LogDir,
	}
	if backupOpts.Destination != "" {
		opts.Destination = backupOpts.Destination
	}
	if backupOpts.Threads != 0 {
		opts.NumThreads = int32(backupOpts.Threads)
	}
	if backupOpts.SleepMsecs >= 0 {
		opts.SleepMsecs = int32(backupOpts.SleepMsecs)
	}
	if backupOpts.CompressionType != "" {
		opts.CompressionType = backupOpts.CompressionType
		opts.DoCompress = backupOpts.CompressionType != "none"
	}
	opts.ForceOverwrite = backupOpts.Force
	return opts
}

func printBackupSummary(cmd *cobra.Command, opts backup.Options) {
	table := output.NewTableData("Field", "Value")
	table.AddRow("destination", opts.Destination)
	table.AddRow("make_slave", fmt.Sprintf("%t", opts.MakeSlave))
	table.AddRow("compression", opts.CompressionType)
	_ = output.PrintTable(cmd.OutOrStdout(), table)
}
