package commands

import (
	"context"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/thoreinstein/savekeep/internal/account"
	"github.com/thoreinstein/savekeep/internal/backup"
	"github.com/thoreinstein/savekeep/internal/locator"
)

func init() {
	rootCmd.AddCommand(backupCmd)
}

var backupCmd = &cobra.Command{
	Use:   "backup [application...]",
	Short: "Back up save files into the archive",
	Long: `Back up the save files of every configured application the catalog has
rules for, or only the named ones.

Only files whose content changed since the last backup are copied. An
application with nothing new leaves its archive folder untouched. A failure
in one application does not stop the others.`,
	Example: `  # Back up everything
  savekeep backup

  # Back up two applications
  savekeep backup "Example Game" "Other Game"

  See Also: savekeep restore, savekeep status`,
	RunE: runBackup,
}

func runBackup(cmd *cobra.Command, args []string) error {
	s, err := newSession(cmd.Context(), loadedConfig, account.DefaultChooser())
	if err != nil {
		return err
	}
	return runBackupWithWriter(cmd.Context(), os.Stdout, s, args)
}

// runBackupWithWriter allows injecting a writer for testing.
func runBackupWithWriter(ctx context.Context, w io.Writer, s *session, names []string) error {
	apps, err := selectNames(locator.Known(s.apps, s.catalog), appName, names)
	if err != nil {
		return err
	}

	report, err := backup.NewBatch(s.engine, s.cfg.MalformedManifest).Backup(ctx, s.planner().BackupJobs(apps))
	if !quiet {
		printReport(w, report)
	}
	return exitError(err)
}
