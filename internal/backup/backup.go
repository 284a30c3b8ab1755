package backup

import (
	"context"
	"os"

	"github.com/thoreinstein/savekeep/internal/discovery"
	"github.com/thoreinstein/savekeep/internal/errors"
	"github.com/thoreinstein/savekeep/internal/logging"
	"github.com/thoreinstein/savekeep/internal/manifest"
	"github.com/thoreinstein/savekeep/internal/placeholder"
	"github.com/thoreinstein/savekeep/pkg/fileutil"
)

// DefaultDirPerm is used for archive and restored live directories.
const DefaultDirPerm = 0o755

// Resolver translates between portable and live paths for one application.
// *placeholder.Resolver satisfies it.
type Resolver interface {
	Split(template string) (placeholder.Expansion, error)
	Shrink(path string) (string, bool)
}

// Engine backs applications up into an Archive and restores them.
type Engine struct {
	archive *Archive
}

// Option configures an Engine.
type Option func(*Engine)

// WithArchiveDir sets the archive root directory.
func WithArchiveDir(dir string) Option {
	return func(e *Engine) {
		e.archive = NewArchive(dir)
	}
}

// NewEngine creates an Engine. Without WithArchiveDir the archive lives in
// the current directory.
func NewEngine(opts ...Option) *Engine {
	e := &Engine{archive: NewArchive(".")}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Archive returns the archive the engine writes to.
func (e *Engine) Archive() *Archive { return e.archive }

// candidate is one discovered live file.
type candidate struct {
	live     string
	portable string
	info     os.FileInfo
}

// BackupApplication loads the previous manifest and backs app up. A
// malformed manifest is reported as manifest.ErrMalformedManifest rather
// than silently replaced.
func (e *Engine) BackupApplication(ctx context.Context, app string, r Resolver, rules []string) (bool, error) {
	previous, err := e.archive.LoadManifest(app)
	if err != nil {
		if !errors.Is(err, os.ErrNotExist) {
			return false, err
		}
		previous = nil
	}
	return e.Backup(ctx, app, r, rules, previous)
}

// Backup copies every new or changed save file of app into the archive and
// rewrites its manifest. It reports whether anything was written; when
// nothing changed the archive is not touched at all.
//
// A file whose modification time is not newer than its manifest entry is
// assumed unchanged without rehashing.
func (e *Engine) Backup(ctx context.Context, app string, r Resolver, rules []string, previous *manifest.Manifest) (bool, error) {
	logger := logging.FromContext(ctx).With("application", app)
	ctx = logging.NewContext(ctx, logger)

	found, err := discovery.Discover(ctx, r, rules)
	if err != nil {
		return false, err
	}
	if len(found.Files) == 0 {
		logger.Info("no save files found")
		return false, nil
	}

	candidates, err := e.collect(ctx, r, found.Files)
	if err != nil {
		return false, err
	}
	if err := checkCollisions(candidates, previous); err != nil {
		return false, err
	}

	next := manifest.New(app)
	index := make(map[string]int)
	if previous != nil {
		next.Entries = append(next.Entries, previous.Entries...)
		for i, entry := range next.Entries {
			index[entry.PortablePath] = i
		}
	}

	changed := false
	dirReady := false
	for _, c := range candidates {
		entry, ok, err := e.backupFile(ctx, app, c, previous, &dirReady)
		if err != nil {
			return false, err
		}
		if !ok {
			continue
		}
		changed = true
		if i, exists := index[entry.PortablePath]; exists {
			next.Entries[i] = entry
		} else {
			index[entry.PortablePath] = len(next.Entries)
			next.Entries = append(next.Entries, entry)
		}
	}

	if !changed {
		logger.Info("archive up to date", "files", len(candidates))
		return false, nil
	}

	if err := manifest.Save(e.archive.ManifestPath(app), next); err != nil {
		return false, err
	}
	logger.Info("backup written", "entries", len(next.Entries))
	return true, nil
}

func (e *Engine) collect(ctx context.Context, r Resolver, files []string) ([]candidate, error) {
	out := make([]candidate, 0, len(files))
	for _, live := range files {
		info, err := os.Stat(live)
		if err != nil {
			return nil, errors.Wrapf(err, "stat %s", live)
		}
		portable, ok := r.Shrink(live)
		if !ok {
			logging.FromContext(ctx).Warn("save file will not be portable", "path", live)
		}
		out = append(out, candidate{live: live, portable: portable, info: info})
	}
	return out, nil
}

// checkCollisions rejects two portable paths sharing one archive file name,
// including names already held by previous entries and the manifest itself.
func checkCollisions(candidates []candidate, previous *manifest.Manifest) error {
	owner := make(map[string]string)
	claim := func(portable string) error {
		name := ArchiveName(portable)
		if name == manifest.FileName {
			return errors.Wrapf(ErrArchiveCollision, "%s is reserved for the manifest", portable)
		}
		if prev, ok := owner[name]; ok && prev != portable {
			return errors.Wrapf(ErrArchiveCollision, "%s and %s both archive as %s", prev, portable, name)
		}
		owner[name] = portable
		return nil
	}

	if previous != nil {
		for _, entry := range previous.Entries {
			if err := claim(entry.PortablePath); err != nil {
				return err
			}
		}
	}
	livePaths := make(map[string]string)
	for _, c := range candidates {
		if other, ok := livePaths[c.portable]; ok && other != c.live {
			err := errors.Wrapf(ErrArchiveCollision, "%s and %s both shrink to %s", other, c.live, c.portable)
			return errors.WithHint(err, "Set account_id so the Steam userdata directory is unambiguous.")
		}
		livePaths[c.portable] = c.live
		if err := claim(c.portable); err != nil {
			return err
		}
	}
	return nil
}

// backupFile decides whether c needs archiving and copies it if so. It
// returns the new entry and true when the file was copied.
func (e *Engine) backupFile(ctx context.Context, app string, c candidate, previous *manifest.Manifest, dirReady *bool) (manifest.Entry, bool, error) {
	logger := logging.FromContext(ctx)

	prev, known := previous.Lookup(c.portable)
	if known {
		if !c.info.ModTime().After(prev.ModifiedAt) {
			logger.Log(ctx, logging.LevelTrace, "unchanged by modification time", "path", c.portable)
			return manifest.Entry{}, false, nil
		}
		sum, err := manifest.DigestFile(c.live)
		if err != nil {
			return manifest.Entry{}, false, err
		}
		if sum == prev.ContentHash {
			logger.Log(ctx, logging.LevelTrace, "unchanged by content", "path", c.portable)
			return manifest.Entry{}, false, nil
		}
	}

	if !*dirReady {
		if err := os.MkdirAll(e.archive.Dir(app), DefaultDirPerm); err != nil {
			return manifest.Entry{}, false, errors.Wrapf(ErrDirectoryCreation, "%s: %v", e.archive.Dir(app), err)
		}
		*dirReady = true
	}

	res, err := fileutil.AtomicCopyFile(c.live, e.archive.FilePath(app, c.portable))
	if err != nil {
		return manifest.Entry{}, false, errors.Wrapf(err, "archiving %s", c.live)
	}

	logger.Debug("archived", "path", c.portable, "size", res.Size)
	return manifest.Entry{
		PortablePath: c.portable,
		ContentHash:  res.Digest,
		SizeBytes:    res.Size,
		ModifiedAt:   c.info.ModTime().UTC(),
	}, true, nil
}
