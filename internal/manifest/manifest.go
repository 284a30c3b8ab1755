package manifest

import (
	"io"
	"os"
	"time"

	"github.com/opencontainers/go-digest"
	"gopkg.in/yaml.v3"

	"github.com/thoreinstein/savekeep/internal/errors"
	"github.com/thoreinstein/savekeep/pkg/fileutil"
)

// FileName is the name of the manifest inside an application's archive directory.
const FileName = "manifest.yaml"

// ErrMalformedManifest is returned when a manifest exists but cannot be trusted.
var ErrMalformedManifest = errors.New("malformed manifest")

// Entry records one archived file.
type Entry struct {
	// PortablePath is the shrunk live path, unique within a manifest.
	PortablePath string `yaml:"portable_path"`

	// ContentHash is the sha256 digest of the file contents.
	ContentHash digest.Digest `yaml:"content_hash"`

	SizeBytes  int64     `yaml:"size_bytes"`
	ModifiedAt time.Time `yaml:"modified_at"`
}

// Manifest is the ledger of one application's archive.
type Manifest struct {
	ApplicationName string  `yaml:"application_name"`
	Entries         []Entry `yaml:"entries"`
}

// New returns an empty manifest for name.
func New(name string) *Manifest {
	return &Manifest{ApplicationName: name, Entries: []Entry{}}
}

// Lookup finds the entry for a portable path.
func (m *Manifest) Lookup(portable string) (Entry, bool) {
	if m == nil {
		return Entry{}, false
	}
	for _, e := range m.Entries {
		if e.PortablePath == portable {
			return e, true
		}
	}
	return Entry{}, false
}

// TotalSize is the sum of every entry's size.
func (m *Manifest) TotalSize() int64 {
	var total int64
	for _, e := range m.Entries {
		total += e.SizeBytes
	}
	return total
}

// Validate checks the manifest invariants.
func (m *Manifest) Validate() error {
	if m.ApplicationName == "" {
		return errors.Wrap(ErrMalformedManifest, "missing application_name")
	}
	seen := make(map[string]bool, len(m.Entries))
	for _, e := range m.Entries {
		if e.PortablePath == "" {
			return errors.Wrap(ErrMalformedManifest, "entry without portable_path")
		}
		if seen[e.PortablePath] {
			return errors.Wrapf(ErrMalformedManifest, "duplicate portable_path %q", e.PortablePath)
		}
		seen[e.PortablePath] = true
		if err := e.ContentHash.Validate(); err != nil {
			return errors.Wrapf(ErrMalformedManifest, "entry %q: %v", e.PortablePath, err)
		}
		if e.SizeBytes < 0 {
			return errors.Wrapf(ErrMalformedManifest, "entry %q: negative size", e.PortablePath)
		}
	}
	return nil
}

// Load reads and validates a manifest. A missing file returns an error
// matching os.ErrNotExist.
func Load(path string) (*Manifest, error) {
	data, err := fileutil.ReadFileWithLimit(path)
	if err != nil {
		return nil, errors.Wrapf(err, "reading manifest %s", path)
	}

	var m Manifest
	if err := yaml.Unmarshal(data, &m); err != nil {
		return nil, errors.Wrapf(ErrMalformedManifest, "%s: %v", path, err)
	}
	if err := m.Validate(); err != nil {
		return nil, errors.Wrapf(err, "%s", path)
	}
	if m.Entries == nil {
		m.Entries = []Entry{}
	}
	return &m, nil
}

// Save writes the manifest atomically. Timestamps are stored in UTC.
func Save(path string, m *Manifest) error {
	for i := range m.Entries {
		m.Entries[i].ModifiedAt = m.Entries[i].ModifiedAt.UTC()
	}
	if err := fileutil.AtomicWriteYAML(path, m); err != nil {
		return errors.Wrapf(err, "writing manifest %s", path)
	}
	return nil
}

// DigestFile hashes the contents of path.
func DigestFile(path string) (digest.Digest, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", errors.Wrap(err, "opening file for hashing")
	}
	defer f.Close()

	return DigestReader(f)
}

// DigestReader hashes everything readable from r.
func DigestReader(r io.Reader) (digest.Digest, error) {
	d, err := digest.Canonical.FromReader(r)
	if err != nil {
		return "", errors.Wrap(err, "hashing file")
	}
	return d, nil
}
