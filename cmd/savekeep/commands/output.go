package commands

import (
	"fmt"
	"io"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/fatih/color"

	"github.com/thoreinstein/savekeep/internal/backup"
	"github.com/thoreinstein/savekeep/internal/errors"
	"github.com/thoreinstein/savekeep/internal/locator"
	"github.com/thoreinstein/savekeep/internal/manifest"
	"github.com/thoreinstein/savekeep/internal/placeholder"
)

var (
	okColor    = color.New(color.FgGreen)
	idleColor  = color.New(color.FgHiBlack)
	failColor  = color.New(color.FgRed)
	titleColor = color.New(color.Bold)
)

// printReport writes one row per application and a summary line.
func printReport(w io.Writer, report *backup.Report) {
	if len(report.Results) == 0 {
		fmt.Fprintln(w, "No applications to process.")
		return
	}

	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, titleColor.Sprint("APPLICATION")+"\t"+titleColor.Sprint("RESULT")+"\t"+titleColor.Sprint("TIME"))
	for _, res := range report.Results {
		fmt.Fprintf(tw, "%s\t%s\t%s\n", res.Application, resultLabel(report.Operation, res), res.Duration.Round(time.Millisecond))
	}
	_ = tw.Flush()

	fmt.Fprintf(w, "\n%d changed, %d unchanged, %d failed\n",
		report.Changed(), len(report.Results)-report.Changed()-report.Failed(), report.Failed())
}

func resultLabel(op backup.Operation, res backup.Result) string {
	switch {
	case res.Err != nil:
		return failColor.Sprint("failed: " + firstLine(res.Err.Error()))
	case res.Changed && op == backup.OperationRestore:
		return okColor.Sprint("restored")
	case res.Changed:
		return okColor.Sprint("updated")
	default:
		return idleColor.Sprint("up to date")
	}
}

func firstLine(s string) string {
	if i := strings.IndexByte(s, '\n'); i >= 0 {
		return s[:i]
	}
	return s
}

// exitError maps a failure to the exit code and advice the user sees.
// Errors the user can fix by changing input or configuration exit with
// ExitUser; everything else is a system failure.
func exitError(err error) error {
	if err == nil {
		return nil
	}
	var exitErr *errors.ExitError
	if errors.As(err, &exitErr) {
		return err
	}

	suggestion := strings.Join(errors.Hints(err), "\n")
	switch {
	case errors.Is(err, placeholder.ErrMissingContext),
		errors.Is(err, backup.ErrApplicationNotFound),
		errors.Is(err, backup.ErrArchiveCollision),
		errors.Is(err, errors.ErrNotFound):
		return errors.NewUserError(err, suggestion)
	case errors.Is(err, backup.ErrCorruptedArchive):
		if suggestion == "" {
			suggestion = "The archive copy was modified or removed. Take a fresh backup from a machine with good saves."
		}
		return errors.NewSystemError(err, suggestion)
	case errors.Is(err, manifest.ErrMalformedManifest):
		if suggestion == "" {
			suggestion = "Set malformed_manifest: rebuild to back up from scratch."
		}
		return errors.NewSystemError(err, suggestion)
	default:
		return errors.NewSystemError(err, suggestion)
	}
}

// PrintError writes err for the user and returns the process exit code.
func PrintError(w io.Writer, err error) int {
	code := errors.ExitSystem
	suggestion := ""

	var exitErr *errors.ExitError
	if errors.As(err, &exitErr) {
		err = exitErr
		code = exitErr.Code
		suggestion = exitErr.Suggestion
	}

	fmt.Fprintf(w, "%s %v\n", failColor.Sprint("Error:"), err)
	if suggestion != "" {
		fmt.Fprintln(w, suggestion)
	}
	return code
}

// appName returns the display name of an application.
func appName(app locator.Application) string { return app.Name }
