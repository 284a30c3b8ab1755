package backup

import (
	"context"
	"os"
	"path/filepath"

	"github.com/bmatcuk/doublestar/v4"

	"github.com/thoreinstein/savekeep/internal/errors"
	"github.com/thoreinstein/savekeep/internal/logging"
	"github.com/thoreinstein/savekeep/internal/manifest"
	"github.com/thoreinstein/savekeep/internal/placeholder"
	"github.com/thoreinstein/savekeep/pkg/fileutil"
)

// restoreTarget pairs a manifest entry with its archived and live paths.
type restoreTarget struct {
	entry    manifest.Entry
	archived string
	live     string
}

// Restore copies archived files of app back to their live locations.
//
// Every archived file is verified against the manifest first; any failure
// aborts with a *CorruptedFileError before a single file is written. Live
// files that already match are left alone. It reports whether anything was
// copied.
func (e *Engine) Restore(ctx context.Context, app string, r Resolver, m *manifest.Manifest, installed bool) (bool, error) {
	logger := logging.FromContext(ctx).With("application", app)

	if err := e.Verify(app, m); err != nil {
		return false, err
	}
	if !installed {
		return false, errors.Wrapf(ErrApplicationNotFound, "%s", app)
	}

	targets := make([]restoreTarget, 0, len(m.Entries))
	for _, entry := range m.Entries {
		x, err := r.Split(entry.PortablePath)
		if err != nil {
			return false, err
		}
		live, err := liveTarget(x)
		if err != nil {
			return false, errors.Wrapf(err, "restoring %s", entry.PortablePath)
		}
		targets = append(targets, restoreTarget{
			entry:    entry,
			archived: e.archive.FilePath(app, entry.PortablePath),
			live:     live,
		})
	}

	restored := false
	for _, t := range targets {
		if err := ctx.Err(); err != nil {
			return restored, err
		}

		if current, err := manifest.DigestFile(t.live); err == nil && current == t.entry.ContentHash {
			logger.Log(ctx, logging.LevelTrace, "live file already current", "path", t.live)
			continue
		}

		if err := os.MkdirAll(filepath.Dir(t.live), DefaultDirPerm); err != nil {
			return restored, errors.Wrapf(ErrDirectoryCreation, "%s: %v", filepath.Dir(t.live), err)
		}
		if _, err := fileutil.AtomicCopyFile(t.archived, t.live); err != nil {
			return restored, errors.Wrapf(err, "restoring %s", t.live)
		}
		mtime := t.entry.ModifiedAt
		if err := os.Chtimes(t.live, mtime, mtime); err != nil {
			logger.Warn("could not set modification time", "path", t.live, "error", err)
		}
		restored = true
		logger.Debug("restored", "path", t.live)
	}

	return restored, nil
}

// Verify checks every archived file of app against its manifest entry.
func (e *Engine) Verify(app string, m *manifest.Manifest) error {
	for _, entry := range m.Entries {
		archived := e.archive.FilePath(app, entry.PortablePath)
		sum, err := manifest.DigestFile(archived)
		if err != nil {
			reason := "unreadable"
			if errors.Is(err, os.ErrNotExist) {
				reason = "missing"
			}
			return &CorruptedFileError{File: archived, Reason: reason}
		}
		if sum != entry.ContentHash {
			return &CorruptedFileError{File: archived, Reason: "digest mismatch"}
		}
	}
	return nil
}

// liveTarget turns an expansion into the one path a file restores to. The
// wildcard, if any, must match exactly one existing directory; everything
// else is taken literally.
func liveTarget(x placeholder.Expansion) (string, error) {
	if x.Base == "" {
		return filepath.FromSlash(x.Rest), nil
	}
	base := x.Base
	if x.Wildcard != "" {
		dir, err := uniqueDir(base, x.Wildcard)
		if err != nil {
			return "", err
		}
		base = filepath.Join(base, dir)
	}
	return filepath.Join(base, filepath.FromSlash(x.Rest)), nil
}

func uniqueDir(parent, pattern string) (string, error) {
	entries, err := os.ReadDir(parent)
	if err != nil && !os.IsNotExist(err) {
		return "", errors.Wrapf(err, "reading %s", parent)
	}
	var matches []string
	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}
		if ok, _ := doublestar.Match(pattern, entry.Name()); ok {
			matches = append(matches, entry.Name())
		}
	}
	if len(matches) != 1 {
		err := errors.Wrapf(placeholder.ErrMissingContext, "%s in %s matches %d directories, want exactly one",
			pattern, parent, len(matches))
		return "", errors.WithHint(err, "Set account_id or run: savekeep account select")
	}
	return matches[0], nil
}
