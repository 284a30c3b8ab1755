package commands

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/thoreinstein/savekeep/internal/account"
	"github.com/thoreinstein/savekeep/internal/config"
	"github.com/thoreinstein/savekeep/internal/errors"
	"github.com/thoreinstein/savekeep/internal/logging"
)

func init() {
	accountCmd.AddCommand(accountListCmd)
	accountCmd.AddCommand(accountSelectCmd)
	rootCmd.AddCommand(accountCmd)
}

var accountCmd = &cobra.Command{
	Use:   "account",
	Short: "Manage the Steam account used for cloud saves",
	Long: `Cloud-save paths contain the Steam account id. With one account on the
machine it is used automatically; with several, pick one with
'savekeep account select' or set account_id in the config file.`,
}

var accountListCmd = &cobra.Command{
	Use:   "list",
	Short: "List Steam accounts found on this machine",
	RunE: func(cmd *cobra.Command, _ []string) error {
		s, err := newSession(cmd.Context(), loadedConfig, nil)
		if err != nil {
			return err
		}
		return runAccountListWithWriter(os.Stdout, s)
	},
}

var accountSelectCmd = &cobra.Command{
	Use:   "select [id]",
	Short: "Choose the account and save it in the config file",
	Long: `Choose the Steam account cloud saves resolve to and store it as
account_id. Without an argument the accounts found on this machine are
offered for selection. 64-bit Steam ids are converted automatically.`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		s, err := newSession(cmd.Context(), loadedConfig, nil)
		if err != nil {
			return err
		}
		chooser := account.Chooser(account.NewPromptChooser())
		if logging.IsInteractive() {
			chooser = account.FuzzyChooser{}
		}
		return runAccountSelectWithWriter(cmd.Context(), os.Stdout, s, chooser, args)
	},
}

// runAccountListWithWriter allows injecting a writer for testing.
func runAccountListWithWriter(w io.Writer, s *session) error {
	ids, err := s.accounts()
	if err != nil {
		return exitError(err)
	}
	if len(ids) == 0 {
		fmt.Fprintln(w, "No Steam accounts found.")
		return nil
	}
	for _, id := range ids {
		marker := "  "
		if id == s.accountID {
			marker = okColor.Sprint("* ")
		}
		fmt.Fprintf(w, "%s%s\n", marker, id)
	}
	if s.accountID == "" {
		fmt.Fprintln(w, "\nNo account selected; cloud saves match any account.")
	}
	return nil
}

// runAccountSelectWithWriter allows injecting a writer and chooser for testing.
func runAccountSelectWithWriter(ctx context.Context, w io.Writer, s *session, chooser account.Chooser, args []string) error {
	var (
		id  string
		err error
	)
	if len(args) == 1 {
		id, err = account.Normalize(args[0])
	} else {
		var ids []string
		ids, err = s.accounts()
		if err == nil {
			id, err = chooser.Choose(ids)
		}
	}
	if errors.Is(err, account.ErrSelectionCancelled) {
		fmt.Fprintln(w, "Selection cancelled.")
		return nil
	}
	if err != nil {
		return errors.NewUserError(err, "Pass the account id explicitly: savekeep account select <id>")
	}

	if err := config.SaveAccountID(id); err != nil {
		return errors.NewSystemError(err, "Check that the config directory is writable.")
	}
	logging.FromContext(ctx).Info("account saved", "account_id", id, "config", config.Path())
	fmt.Fprintf(w, "Using account %s for cloud saves.\n", id)
	return nil
}
