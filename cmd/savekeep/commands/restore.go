package commands

import (
	"context"
	"io"
	"os"

	"github.com/hashicorp/go-multierror"
	"github.com/spf13/cobra"

	"github.com/thoreinstein/savekeep/internal/account"
	"github.com/thoreinstein/savekeep/internal/backup"
	"github.com/thoreinstein/savekeep/internal/errors"
	"github.com/thoreinstein/savekeep/internal/logging"
	"github.com/thoreinstein/savekeep/internal/paths"
)

func init() {
	rootCmd.AddCommand(restoreCmd)
}

var restoreCmd = &cobra.Command{
	Use:   "restore [application...]",
	Short: "Restore save files from the archive",
	Long: `Restore every archived application, or only the named ones, to the live
save locations on this machine.

Every archived file is verified against its manifest first; a missing or
modified archive copy aborts that application before anything is written.
Live files that already match the archive are left alone.`,
	Example: `  # Restore everything in the archive
  savekeep restore

  # Restore one application from another archive
  savekeep restore --archive-dir /mnt/usb/saves "Example Game"

  See Also: savekeep backup, savekeep account select`,
	ValidArgsFunction: completeArchived,
	RunE:              runRestore,
}

// completeArchived offers the applications present in the archive.
func completeArchived(_ *cobra.Command, _ []string, _ string) ([]string, cobra.ShellCompDirective) {
	if loadedConfig == nil {
		return nil, cobra.ShellCompDirectiveNoFileComp
	}
	home, _ := paths.ResolveHome()
	names, err := backup.NewArchive(archiveRoot(loadedConfig, home)).Applications()
	if err != nil {
		return nil, cobra.ShellCompDirectiveError
	}
	return names, cobra.ShellCompDirectiveNoFileComp
}

func runRestore(cmd *cobra.Command, args []string) error {
	s, err := newSession(cmd.Context(), loadedConfig, account.DefaultChooser())
	if err != nil {
		return err
	}
	return runRestoreWithWriter(cmd.Context(), os.Stdout, s, args)
}

// runRestoreWithWriter allows injecting a writer for testing.
func runRestoreWithWriter(ctx context.Context, w io.Writer, s *session, names []string) error {
	stored, err := s.engine.Archive().Scan()
	if err != nil {
		return exitError(err)
	}
	stored, err = selectNames(stored, backup.Stored.Name, names)
	if err != nil {
		return err
	}

	// Unreadable manifests never become jobs but still fail the run.
	var unreadable *multierror.Error
	for _, st := range stored {
		if st.Err != nil {
			logging.FromContext(ctx).Error("skipping application with unreadable manifest", "application", st.Name(), "error", st.Err)
			unreadable = multierror.Append(unreadable, errors.Wrapf(st.Err, "%s", st.Name()))
		}
	}

	report, err := backup.NewBatch(s.engine, s.cfg.MalformedManifest).Restore(ctx, s.planner().RestoreJobs(stored, s.apps))
	if !quiet {
		printReport(w, report)
	}
	if err != nil {
		unreadable = multierror.Append(unreadable, err)
	}
	return exitError(unreadable.ErrorOrNil())
}
