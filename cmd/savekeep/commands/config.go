package commands

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/thoreinstein/savekeep/internal/config"
	"github.com/thoreinstein/savekeep/internal/errors"
	"github.com/thoreinstein/savekeep/internal/paths"
)

func init() {
	configCmd.AddCommand(configPathCmd)
	configCmd.AddCommand(configShowCmd)
	rootCmd.AddCommand(configCmd)
}

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Inspect savekeep configuration",
	Long: `Inspect the configuration read from config.yaml and SAVEKEEP_*
environment variables.

Without a subcommand, shows the effective configuration.`,
	Example: `  # Where is the config file?
  savekeep config path

  # Effective settings after defaults and environment
  savekeep config show`,
	RunE: runConfigShow,
}

var configPathCmd = &cobra.Command{
	Use:   "path",
	Short: "Print the config file location",
	RunE: func(_ *cobra.Command, _ []string) error {
		fmt.Println(config.Path())
		return nil
	},
}

var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Print the effective configuration as YAML",
	RunE:  runConfigShow,
}

func runConfigShow(_ *cobra.Command, _ []string) error {
	return runConfigShowWithWriter(os.Stdout, loadedConfig)
}

// runConfigShowWithWriter allows injecting a writer for testing.
func runConfigShowWithWriter(w io.Writer, cfg *config.Config) error {
	effective := *cfg
	home, _ := paths.ResolveHome()
	effective.ArchiveDir = archiveRoot(cfg, home)

	data, err := yaml.Marshal(&effective)
	if err != nil {
		return errors.Wrap(err, "marshaling config")
	}
	_, err = w.Write(data)
	return err
}
