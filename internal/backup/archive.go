package backup

import (
	"os"
	"path"
	"path/filepath"
	"slices"
	"strings"

	"github.com/thoreinstein/savekeep/internal/errors"
	"github.com/thoreinstein/savekeep/internal/manifest"
)

// Archive is the on-disk layout: one flat directory per application holding
// the archived files and manifest.yaml.
type Archive struct {
	root string
}

// NewArchive returns the archive rooted at root.
func NewArchive(root string) *Archive {
	return &Archive{root: root}
}

// Root returns the archive root directory.
func (a *Archive) Root() string { return a.root }

// Dir returns the archive directory of an application.
func (a *Archive) Dir(app string) string {
	return filepath.Join(a.root, SanitizeName(app))
}

// ManifestPath returns the manifest location of an application.
func (a *Archive) ManifestPath(app string) string {
	return filepath.Join(a.Dir(app), manifest.FileName)
}

// FilePath returns where the archived copy of portable is stored.
func (a *Archive) FilePath(app, portable string) string {
	return filepath.Join(a.Dir(app), ArchiveName(portable))
}

// LoadManifest reads an application's manifest. A missing manifest matches
// os.ErrNotExist.
func (a *Archive) LoadManifest(app string) (*manifest.Manifest, error) {
	return manifest.Load(a.ManifestPath(app))
}

// Stored is one application directory found in the archive.
type Stored struct {
	// Dir is the directory name under the archive root.
	Dir string

	// Manifest is nil when Err is set.
	Manifest *manifest.Manifest

	// Err is the reason the manifest could not be loaded.
	Err error
}

// Name returns the application name, falling back to the directory name.
func (s Stored) Name() string {
	if s.Manifest != nil {
		return s.Manifest.ApplicationName
	}
	return s.Dir
}

// Scan lists every application directory that holds a manifest, sorted by
// directory name. Dot directories and stray files are ignored.
func (a *Archive) Scan() ([]Stored, error) {
	entries, err := os.ReadDir(a.root)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, errors.Wrap(err, "reading archive directory")
	}

	var out []Stored
	for _, entry := range entries {
		if !entry.IsDir() || strings.HasPrefix(entry.Name(), ".") {
			continue
		}
		mpath := filepath.Join(a.root, entry.Name(), manifest.FileName)
		m, err := manifest.Load(mpath)
		if errors.Is(err, os.ErrNotExist) {
			continue
		}
		out = append(out, Stored{Dir: entry.Name(), Manifest: m, Err: err})
	}
	slices.SortFunc(out, func(x, y Stored) int { return strings.Compare(x.Dir, y.Dir) })
	return out, nil
}

// Applications returns the names of every application with a valid manifest.
func (a *Archive) Applications() ([]string, error) {
	stored, err := a.Scan()
	if err != nil {
		return nil, err
	}
	var names []string
	for _, s := range stored {
		if s.Err == nil {
			names = append(names, s.Name())
		}
	}
	return names, nil
}

// ArchiveName is the flat file name a portable path is archived under.
func ArchiveName(portable string) string {
	return path.Base(filepath.ToSlash(portable))
}

// SanitizeName makes an application name safe as a directory name on every
// supported filesystem. NTFS is the most restrictive: it rejects <>:"/\|?*
// and control characters, and silently drops trailing dots and spaces.
func SanitizeName(name string) string {
	var b strings.Builder
	for _, r := range name {
		if r < 0x20 || r == 0x7f || strings.ContainsRune(`<>:"/\|?*`, r) {
			continue
		}
		b.WriteRune(r)
	}
	out := strings.TrimSpace(strings.TrimRight(b.String(), ". "))
	if out == "" {
		return "_"
	}
	return out
}
