package commands

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/thoreinstein/savekeep/internal/backup"
	"github.com/thoreinstein/savekeep/internal/errors"
	"github.com/thoreinstein/savekeep/internal/paths"
)

var statusJSON bool

func init() {
	statusCmd.Flags().BoolVar(&statusJSON, "json", false, "output as JSON")
	rootCmd.AddCommand(statusCmd)
}

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show what the archive holds",
	Long: `List every application in the archive with its number of files, total
size and the newest save time recorded in its manifest.

Applications whose manifest cannot be read are listed with the reason.`,
	Example: `  # Show the archive
  savekeep status

  # JSON output for scripting
  savekeep status --json`,
	RunE: runStatus,
}

// statusOutput is one application in status output.
type statusOutput struct {
	Application  string     `json:"application"`
	Directory    string     `json:"directory"`
	Files        int        `json:"files"`
	SizeBytes    int64      `json:"size_bytes"`
	LastModified *time.Time `json:"last_modified,omitempty"`
	Error        string     `json:"error,omitempty"`
}

func runStatus(_ *cobra.Command, _ []string) error {
	home, _ := paths.ResolveHome()
	return runStatusWithWriter(os.Stdout, backup.NewArchive(archiveRoot(loadedConfig, home)), statusJSON)
}

// runStatusWithWriter allows injecting a writer for testing.
func runStatusWithWriter(w io.Writer, archive *backup.Archive, asJSON bool) error {
	stored, err := archive.Scan()
	if err != nil {
		return exitError(err)
	}

	rows := make([]statusOutput, 0, len(stored))
	for _, s := range stored {
		row := statusOutput{Application: s.Name(), Directory: s.Dir}
		if s.Err != nil {
			row.Error = s.Err.Error()
		} else {
			row.Files = len(s.Manifest.Entries)
			row.SizeBytes = s.Manifest.TotalSize()
			row.LastModified = lastModified(s)
		}
		rows = append(rows, row)
	}

	if asJSON {
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return errors.Wrap(enc.Encode(rows), "encoding status")
	}
	return outputStatusTabular(w, archive.Root(), rows)
}

func outputStatusTabular(w io.Writer, root string, rows []statusOutput) error {
	if len(rows) == 0 {
		fmt.Fprintf(w, "No applications archived in %s.\n", root)
		return nil
	}

	fmt.Fprintf(w, "Archive: %s\n\n", root)
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "APPLICATION\tFILES\tBYTES\tLAST SAVE")
	for _, r := range rows {
		if r.Error != "" {
			fmt.Fprintf(tw, "%s\t-\t-\t%s\n", r.Application, failColor.Sprint(firstLine(r.Error)))
			continue
		}
		last := "-"
		if r.LastModified != nil {
			last = r.LastModified.Local().Format(time.DateTime)
		}
		fmt.Fprintf(tw, "%s\t%d\t%d\t%s\n", r.Application, r.Files, r.SizeBytes, last)
	}
	return errors.Wrap(tw.Flush(), "writing status")
}

func lastModified(s backup.Stored) *time.Time {
	var latest time.Time
	for _, e := range s.Manifest.Entries {
		if e.ModifiedAt.After(latest) {
			latest = e.ModifiedAt
		}
	}
	if latest.IsZero() {
		return nil
	}
	return &latest
}
