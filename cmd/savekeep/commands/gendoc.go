package commands

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/cobra/doc"

	buildinfo "github.com/thoreinstein/savekeep/cmd"
	"github.com/thoreinstein/savekeep/internal/errors"
	"github.com/thoreinstein/savekeep/internal/paths"
)

var (
	genDocDir    string
	genDocFormat string
)

var genDocCmd = &cobra.Command{
	Use:    "gen-doc",
	Short:  "Generate reference documentation for the CLI",
	Hidden: true,
	RunE: func(_ *cobra.Command, _ []string) error {
		return runGenDocWithWriter(os.Stdout, genDocDir, genDocFormat)
	},
}

func init() {
	genDocCmd.Flags().StringVarP(&genDocDir, "dir", "d", "", "output directory for documentation")
	genDocCmd.Flags().StringVar(&genDocFormat, "format", "markdown", "output format: markdown, man")
	rootCmd.AddCommand(genDocCmd)
}

// runGenDocWithWriter allows injecting a writer for testing.
func runGenDocWithWriter(w io.Writer, dir, format string) error {
	if dir == "" {
		return errors.NewUserError(errors.New("output directory is required"), "Pass --dir <directory>.")
	}
	if err := paths.EnsureDir(dir, 0); err != nil {
		return errors.Wrap(err, "creating output directory")
	}

	// Keep generated files stable across builds.
	rootCmd.DisableAutoGenTag = true

	var err error
	switch format {
	case "markdown":
		err = doc.GenMarkdownTreeCustom(rootCmd, dir, filePrepender, linkHandler)
	case "man":
		err = doc.GenManTree(rootCmd, &doc.GenManHeader{
			Title:   "SAVEKEEP",
			Section: "1",
			Source:  "savekeep " + buildinfo.Version,
		}, dir)
	default:
		return errors.NewUserError(errors.Newf("unknown format %q", format), "Use --format markdown or --format man.")
	}
	if err != nil {
		return errors.Wrapf(err, "generating %s", format)
	}

	fmt.Fprintf(w, "Documentation generated in %s\n", dir)
	return nil
}

func filePrepender(filename string) string {
	base := strings.TrimSuffix(filepath.Base(filename), filepath.Ext(filename))
	// savekeep_account_select.md -> savekeep account select
	title := strings.ReplaceAll(base, "_", " ")

	return fmt.Sprintf("---\ntitle: %q\ndescription: %q\n---\n", title, "Reference for "+title)
}

func linkHandler(name string) string {
	return strings.TrimSuffix(name, filepath.Ext(name)) + "/"
}
