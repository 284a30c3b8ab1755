// Package account finds the launcher accounts present on this machine and
// decides which one cloud-save paths resolve to.
package account

import (
	"context"
	"os"
	"path/filepath"
	"slices"
	"strconv"

	"github.com/thoreinstein/savekeep/internal/errors"
	"github.com/thoreinstein/savekeep/internal/logging"
	"github.com/thoreinstein/savekeep/internal/paths"
	"github.com/thoreinstein/savekeep/internal/placeholder"
)

// steamID64Base is the offset between a 64-bit Steam id and the 32-bit
// account id used for userdata directory names.
const steamID64Base uint64 = 76561197960265728

// Sentinel errors for account selection.
var (
	ErrInvalidID          = errors.New("invalid account id")
	ErrNoAccounts         = errors.New("no accounts to select from")
	ErrSelectionCancelled = errors.New("selection cancelled")
)

// Chooser asks the user to pick one of several accounts.
type Chooser interface {
	Choose(accounts []string) (string, error)
}

// SteamRoot returns the Steam installation directory for family, or "" when
// it is unknown.
func SteamRoot(family placeholder.Family, host paths.HostDirs, lookups *placeholder.Lookups) string {
	switch family {
	case placeholder.Windows:
		return filepath.FromSlash(lookups.SteamDir())
	case placeholder.Linux:
		return filepath.Join(host.DataHome, "Steam")
	default:
		return ""
	}
}

// SteamUserdata lists the account ids with a userdata directory below
// steamRoot, in ascending numeric order. A missing directory yields none.
func SteamUserdata(steamRoot string) ([]string, error) {
	if steamRoot == "" {
		return nil, nil
	}
	dir := filepath.Join(steamRoot, "userdata")
	entries, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, errors.Wrapf(err, "reading %s", dir)
	}

	var ids []uint64
	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}
		id, err := strconv.ParseUint(entry.Name(), 10, 64)
		if err != nil || id == 0 {
			continue
		}
		ids = append(ids, id)
	}
	slices.Sort(ids)

	accounts := make([]string, len(ids))
	for i, id := range ids {
		accounts[i] = strconv.FormatUint(id, 10)
	}
	return accounts, nil
}

// Normalize converts a 64-bit Steam id to the 32-bit userdata form. Ids
// already in that form are returned unchanged.
func Normalize(id string) (string, error) {
	n, err := strconv.ParseUint(id, 10, 64)
	if err != nil || n == 0 {
		return "", errors.Wrapf(ErrInvalidID, "%q", id)
	}
	if n > steamID64Base {
		n -= steamID64Base
	}
	return strconv.FormatUint(n, 10), nil
}

// Select decides the account to resolve cloud saves for.
//
// A configured id always wins. Otherwise the only account is used, or the
// chooser is asked when there are several. An empty result means every
// account matches.
func Select(ctx context.Context, configured string, accounts []string, chooser Chooser) (string, error) {
	logger := logging.FromContext(ctx)

	if configured != "" {
		return Normalize(configured)
	}

	switch len(accounts) {
	case 0:
		logger.Debug("no accounts found, matching any")
		return "", nil
	case 1:
		logger.Debug("using the only account", "account", accounts[0])
		return accounts[0], nil
	}

	if chooser == nil {
		logger.Info("several accounts found, matching any", "accounts", len(accounts))
		return "", nil
	}
	return chooser.Choose(accounts)
}
