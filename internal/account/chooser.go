package account

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/ktr0731/go-fuzzyfinder"

	"github.com/thoreinstein/savekeep/internal/errors"
	"github.com/thoreinstein/savekeep/internal/logging"
)

// DefaultChooser returns a fuzzy finder when the session is interactive and
// nil otherwise.
func DefaultChooser() Chooser {
	if logging.IsInteractive() {
		return FuzzyChooser{}
	}
	return nil
}

// FuzzyChooser picks an account with a full-screen fuzzy finder.
type FuzzyChooser struct{}

// Choose shows the finder and returns the picked account.
func (FuzzyChooser) Choose(accounts []string) (string, error) {
	switch len(accounts) {
	case 0:
		return "", ErrNoAccounts
	case 1:
		return accounts[0], nil
	}

	idx, err := fuzzyfinder.Find(
		accounts,
		func(i int) string { return accounts[i] },
		fuzzyfinder.WithHeader("Select the account to use for cloud saves"),
	)
	if err != nil {
		if errors.Is(err, fuzzyfinder.ErrAbort) {
			return "", ErrSelectionCancelled
		}
		return "", errors.Wrap(err, "account selection failed")
	}
	return accounts[idx], nil
}

// PromptChooser asks for a numbered choice on a line-based terminal.
type PromptChooser struct {
	reader io.Reader
	writer io.Writer
}

// NewPromptChooser creates a PromptChooser using stdin and stdout.
func NewPromptChooser() *PromptChooser {
	return NewPromptChooserWithIO(os.Stdin, os.Stdout)
}

// NewPromptChooserWithIO creates a PromptChooser with custom reader and writer for testing.
func NewPromptChooserWithIO(r io.Reader, w io.Writer) *PromptChooser {
	return &PromptChooser{reader: r, writer: w}
}

// Choose lists the accounts and reads a 1-based selection. An empty answer
// picks the first account; EOF cancels.
func (p *PromptChooser) Choose(accounts []string) (string, error) {
	if len(accounts) == 0 {
		return "", ErrNoAccounts
	}
	if len(accounts) == 1 {
		return accounts[0], nil
	}

	fmt.Fprintln(p.writer, "Multiple accounts found:")
	for i, a := range accounts {
		fmt.Fprintf(p.writer, "  [%d] %s\n", i+1, a)
	}
	fmt.Fprint(p.writer, "Select [1]: ")

	input, err := bufio.NewReader(p.reader).ReadString('\n')
	if err != nil && !(errors.Is(err, io.EOF) && input != "") {
		if errors.Is(err, io.EOF) {
			return "", ErrSelectionCancelled
		}
		return "", errors.Wrap(err, "reading selection")
	}

	input = strings.TrimSpace(input)
	if input == "" {
		return accounts[0], nil
	}

	n, err := strconv.Atoi(input)
	if err != nil {
		return "", errors.Wrapf(ErrInvalidID, "%q is not a number", input)
	}
	if n < 1 || n > len(accounts) {
		return "", errors.Wrapf(ErrInvalidID, "%d is out of range [1-%d]", n, len(accounts))
	}
	return accounts[n-1], nil
}
