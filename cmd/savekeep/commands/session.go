package commands

import (
	"context"
	"path/filepath"
	"strings"

	buildinfo "github.com/thoreinstein/savekeep/cmd"
	"github.com/thoreinstein/savekeep/internal/account"
	"github.com/thoreinstein/savekeep/internal/backup"
	"github.com/thoreinstein/savekeep/internal/catalog"
	"github.com/thoreinstein/savekeep/internal/config"
	"github.com/thoreinstein/savekeep/internal/errors"
	"github.com/thoreinstein/savekeep/internal/locator"
	"github.com/thoreinstein/savekeep/internal/logging"
	"github.com/thoreinstein/savekeep/internal/paths"
	"github.com/thoreinstein/savekeep/internal/placeholder"
)

// Host detection seams, replaced in tests.
var (
	detectHost    = paths.Detect
	currentFamily = placeholder.CurrentFamily
)

// session is everything one command run needs, built from the loaded
// configuration and the host.
type session struct {
	cfg       *config.Config
	host      paths.HostDirs
	family    placeholder.Family
	lookups   *placeholder.Lookups
	engine    *backup.Engine
	catalog   catalog.Catalog
	apps      []locator.Application
	accountID string
}

// newSession loads catalogs, locates applications and settles the account.
// chooser may be nil, in which case several accounts match any.
func newSession(ctx context.Context, cfg *config.Config, chooser account.Chooser) (*session, error) {
	host, err := detectHost()
	if err != nil {
		return nil, errors.NewSystemError(err, "Set HOME (or USERPROFILE on Windows) and retry.")
	}

	catalogs := make([]string, len(cfg.Catalogs))
	for i, c := range cfg.Catalogs {
		catalogs[i] = expandHome(c, host.Home)
	}
	cat, err := catalog.LoadAll(catalogs...)
	if err != nil {
		return nil, errors.NewConfigError(err)
	}

	apps, err := locator.Static(cfg.Applications).Applications(ctx)
	if err != nil {
		return nil, err
	}

	s := &session{
		cfg:     cfg,
		host:    host,
		family:  currentFamily(),
		lookups: placeholder.NewLookups(),
		engine:  backup.NewEngine(backup.WithArchiveDir(archiveRoot(cfg, host.Home))),
		catalog: cat,
		apps:    apps,
	}

	ids, err := s.accounts()
	if err != nil {
		logging.FromContext(ctx).Warn("could not list accounts", "error", err)
	}
	s.accountID, err = account.Select(ctx, cfg.AccountID, ids, chooser)
	if err != nil {
		return nil, errors.NewUserError(err, "Set account_id in the config file or run: savekeep account select")
	}

	logging.FromContext(ctx).Debug("session ready",
		"build", buildinfo.Summary(),
		"family", s.family.String(),
		"archive", s.engine.Archive().Root(),
		"applications", len(apps),
		"catalog", len(cat),
		"account", s.accountID,
	)
	return s, nil
}

// accounts lists the Steam accounts present on this host.
func (s *session) accounts() ([]string, error) {
	return account.SteamUserdata(account.SteamRoot(s.family, s.host, s.lookups))
}

func (s *session) planner() backup.Planner {
	return backup.Planner{
		Family:    s.family,
		Host:      s.host,
		Lookups:   s.lookups,
		AccountID: s.accountID,
		Catalog:   s.catalog,
	}
}

// archiveRoot returns the archive directory from --archive-dir or the
// configuration.
func archiveRoot(cfg *config.Config, home string) string {
	dir := cfg.ArchiveDir
	if archiveDirFlag != "" {
		dir = archiveDirFlag
	}
	if dir == "" {
		dir = paths.DefaultArchiveDir()
	}
	return expandHome(dir, home)
}

// expandHome replaces a leading "~" with home.
func expandHome(p, home string) string {
	if p == "~" {
		return home
	}
	if strings.HasPrefix(p, "~/") || strings.HasPrefix(p, `~\`) {
		return filepath.Join(home, p[2:])
	}
	return p
}

// selectNames keeps the items whose cleaned name is in names; an empty names
// keeps everything. Unmatched names are returned as an error.
func selectNames[T any](items []T, name func(T) string, names []string) ([]T, error) {
	if len(names) == 0 {
		return items, nil
	}

	want := make(map[string]bool, len(names))
	for _, n := range names {
		want[strings.ToLower(catalog.CleanName(n))] = false
	}

	var out []T
	for _, item := range items {
		key := strings.ToLower(catalog.CleanName(name(item)))
		if _, ok := want[key]; ok {
			want[key] = true
			out = append(out, item)
		}
	}

	var missing []string
	for _, n := range names {
		if !want[strings.ToLower(catalog.CleanName(n))] {
			missing = append(missing, n)
		}
	}
	if len(missing) > 0 {
		return nil, errors.NewUserError(
			errors.Wrapf(errors.ErrNotFound, "unknown application(s): %s", strings.Join(missing, ", ")),
			"Run: savekeep status",
		)
	}
	return out, nil
}
