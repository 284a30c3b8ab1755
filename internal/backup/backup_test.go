package backup

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/opencontainers/go-digest"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/thoreinstein/savekeep/internal/errors"
	"github.com/thoreinstein/savekeep/internal/logging"
	"github.com/thoreinstein/savekeep/internal/manifest"
	"github.com/thoreinstein/savekeep/internal/paths"
	"github.com/thoreinstein/savekeep/internal/placeholder"
)

var baseTime = time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)

type fixture struct {
	t       *testing.T
	root    string
	host    paths.HostDirs
	engine  *Engine
	lookups *placeholder.Lookups
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	root := t.TempDir()
	home := filepath.Join(root, "home")
	return &fixture{
		t:    t,
		root: root,
		host: paths.HostDirs{
			Home:       home,
			ConfigHome: filepath.Join(home, ".config"),
			DataHome:   filepath.Join(home, ".local", "share"),
			Documents:  filepath.Join(home, "Documents"),
			Username:   "tester",
		},
		engine:  NewEngine(WithArchiveDir(filepath.Join(root, "archive"))),
		lookups: placeholder.NewLookups(),
	}
}

func (f *fixture) resolver(opts ...placeholder.Option) *placeholder.Resolver {
	ctx := placeholder.NewContext(placeholder.Linux, opts...)
	return placeholder.NewResolver(ctx, f.host, f.lookups, placeholder.WithLogger(logging.ForTest(f.t)))
}

// write creates a file below root with a fixed modification time.
func (f *fixture) write(path, content string, mtime time.Time) string {
	f.t.Helper()
	require.NoError(f.t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(f.t, os.WriteFile(path, []byte(content), 0o644))
	require.NoError(f.t, os.Chtimes(path, mtime, mtime))
	return path
}

func (f *fixture) documents(rel ...string) string {
	return filepath.Join(append([]string{f.host.Documents}, rel...)...)
}

func (f *fixture) loadManifest(app string) *manifest.Manifest {
	f.t.Helper()
	m, err := f.engine.Archive().LoadManifest(app)
	require.NoError(f.t, err)
	return m
}

func readFile(t *testing.T, path string) string {
	t.Helper()
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	return string(data)
}

func TestBackup_DocumentsScenario(t *testing.T) {
	f := newFixture(t)
	ctx := logging.TestContext(t)
	r := f.resolver()
	rules := []string{"{Documents}/Example/save.dat"}

	f.write(f.documents("Example", "save.dat"), "level=1", baseTime)

	changed, err := f.engine.BackupApplication(ctx, "Example", r, rules)
	require.NoError(t, err)
	assert.True(t, changed)

	m := f.loadManifest("Example")
	assert.Equal(t, "Example", m.ApplicationName)
	require.Len(t, m.Entries, 1)
	assert.Equal(t, "{Documents}/Example/save.dat", m.Entries[0].PortablePath)
	assert.Equal(t, digest.FromString("level=1"), m.Entries[0].ContentHash)
	assert.Equal(t, int64(len("level=1")), m.Entries[0].SizeBytes)
	assert.True(t, baseTime.Equal(m.Entries[0].ModifiedAt))
	assert.Equal(t, "level=1", readFile(t, f.engine.Archive().FilePath("Example", m.Entries[0].PortablePath)))

	before := readFile(t, f.engine.Archive().ManifestPath("Example"))

	changed, err = f.engine.BackupApplication(ctx, "Example", r, rules)
	require.NoError(t, err)
	assert.False(t, changed, "second run without changes must report no change")
	assert.Equal(t, before, readFile(t, f.engine.Archive().ManifestPath("Example")), "manifest must be byte-identical")
}

func TestBackup_NothingDiscovered(t *testing.T) {
	f := newFixture(t)

	changed, err := f.engine.BackupApplication(logging.TestContext(t), "Example", f.resolver(), []string{"{Documents}/Example/*.sav"})
	require.NoError(t, err)
	assert.False(t, changed)

	_, err = os.Stat(f.engine.Archive().Dir("Example"))
	assert.True(t, os.IsNotExist(err), "archive folder must not be created when nothing is found")
}

func TestBackup_SkipRehashWhenNotNewer(t *testing.T) {
	f := newFixture(t)
	ctx := logging.TestContext(t)
	r := f.resolver()
	rules := []string{"{Documents}/Example/save.dat"}
	live := f.write(f.documents("Example", "save.dat"), "original", baseTime)

	_, err := f.engine.BackupApplication(ctx, "Example", r, rules)
	require.NoError(t, err)
	before := f.loadManifest("Example").Entries[0]

	// Bytes change out of band but the modification time does not advance.
	f.write(live, "tampered", baseTime)

	changed, err := f.engine.BackupApplication(ctx, "Example", r, rules)
	require.NoError(t, err)
	assert.False(t, changed)

	after := f.loadManifest("Example").Entries[0]
	assert.Equal(t, before, after)
	assert.Equal(t, "original", readFile(t, f.engine.Archive().FilePath("Example", after.PortablePath)))
}

func TestBackup_NewerMtimeSameContent(t *testing.T) {
	f := newFixture(t)
	ctx := logging.TestContext(t)
	r := f.resolver()
	rules := []string{"{Documents}/Example/save.dat"}
	live := f.write(f.documents("Example", "save.dat"), "same", baseTime)

	_, err := f.engine.BackupApplication(ctx, "Example", r, rules)
	require.NoError(t, err)
	before := f.loadManifest("Example").Entries[0]

	f.write(live, "same", baseTime.Add(time.Hour))

	changed, err := f.engine.BackupApplication(ctx, "Example", r, rules)
	require.NoError(t, err)
	assert.False(t, changed)
	assert.Equal(t, before, f.loadManifest("Example").Entries[0], "entry must be carried forward unchanged")
}

func TestBackup_ChangedFileAndCarryForward(t *testing.T) {
	f := newFixture(t)
	ctx := logging.TestContext(t)
	r := f.resolver()
	rules := []string{"{Documents}/Example/*.dat"}

	slot1 := f.write(f.documents("Example", "slot1.dat"), "one", baseTime)
	slot2 := f.write(f.documents("Example", "slot2.dat"), "two", baseTime)

	_, err := f.engine.BackupApplication(ctx, "Example", r, rules)
	require.NoError(t, err)

	require.NoError(t, os.Remove(slot2))
	f.write(slot1, "one, later", baseTime.Add(time.Minute))

	changed, err := f.engine.BackupApplication(ctx, "Example", r, rules)
	require.NoError(t, err)
	assert.True(t, changed)

	m := f.loadManifest("Example")
	require.Len(t, m.Entries, 2, "entries of vanished files are kept")
	assert.Equal(t, "{Documents}/Example/slot1.dat", m.Entries[0].PortablePath)
	assert.Equal(t, digest.FromString("one, later"), m.Entries[0].ContentHash)
	assert.True(t, baseTime.Add(time.Minute).Equal(m.Entries[0].ModifiedAt))
	assert.Equal(t, "{Documents}/Example/slot2.dat", m.Entries[1].PortablePath)
	assert.Equal(t, "two", readFile(t, f.engine.Archive().FilePath("Example", m.Entries[1].PortablePath)))
}

func TestBackup_NewFileAppended(t *testing.T) {
	f := newFixture(t)
	ctx := logging.TestContext(t)
	r := f.resolver()
	rules := []string{"{Documents}/Example/*.dat"}

	f.write(f.documents("Example", "b.dat"), "b", baseTime)
	_, err := f.engine.BackupApplication(ctx, "Example", r, rules)
	require.NoError(t, err)

	f.write(f.documents("Example", "a.dat"), "a", baseTime)
	changed, err := f.engine.BackupApplication(ctx, "Example", r, rules)
	require.NoError(t, err)
	assert.True(t, changed)

	m := f.loadManifest("Example")
	require.Len(t, m.Entries, 2)
	assert.Equal(t, "{Documents}/Example/b.dat", m.Entries[0].PortablePath)
	assert.Equal(t, "{Documents}/Example/a.dat", m.Entries[1].PortablePath)
}

func TestBackup_ArchiveCollision(t *testing.T) {
	f := newFixture(t)
	f.write(f.documents("Example", "A", "save.dat"), "a", baseTime)
	f.write(f.documents("Example", "B", "save.dat"), "b", baseTime)

	_, err := f.engine.BackupApplication(logging.TestContext(t), "Example", f.resolver(),
		[]string{"{Documents}/Example/*/save.dat"})
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrArchiveCollision))

	_, statErr := os.Stat(f.engine.Archive().Dir("Example"))
	assert.True(t, os.IsNotExist(statErr), "nothing may be copied before the collision check")
}

func TestBackup_ManifestNameReserved(t *testing.T) {
	f := newFixture(t)
	f.write(f.documents("Example", manifest.FileName), "x", baseTime)

	_, err := f.engine.BackupApplication(logging.TestContext(t), "Example", f.resolver(),
		[]string{"{Documents}/Example/*"})
	assert.True(t, errors.Is(err, ErrArchiveCollision))
}

func TestBackup_DirectoryCreationFails(t *testing.T) {
	f := newFixture(t)
	f.write(f.documents("Example", "save.dat"), "x", baseTime)

	// The archive root is a regular file, so no directory can be created below it.
	blocker := filepath.Join(f.root, "blocked")
	require.NoError(t, os.WriteFile(blocker, nil, 0o644))
	engine := NewEngine(WithArchiveDir(blocker))

	_, err := engine.Backup(logging.TestContext(t), "Example", f.resolver(),
		[]string{"{Documents}/Example/save.dat"}, nil)
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrDirectoryCreation))
}

func TestBackupApplication_MalformedManifest(t *testing.T) {
	f := newFixture(t)
	f.write(f.documents("Example", "save.dat"), "x", baseTime)
	f.write(f.engine.Archive().ManifestPath("Example"), "application_name: [", baseTime)

	_, err := f.engine.BackupApplication(logging.TestContext(t), "Example", f.resolver(),
		[]string{"{Documents}/Example/save.dat"})
	assert.True(t, errors.Is(err, manifest.ErrMalformedManifest))
}

func TestBackup_UnresolvableRuleSkipped(t *testing.T) {
	f := newFixture(t)
	f.write(f.documents("Example", "save.dat"), "x", baseTime)

	changed, err := f.engine.BackupApplication(logging.TestContext(t), "Example", f.resolver(),
		[]string{"{LocalLow}/Vendor/Example/*", "{Documents}/Example/save.dat"})
	require.NoError(t, err)
	assert.True(t, changed)
}

func TestSanitizeName(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"Example", "Example"},
		{`Game: The "Sequel"`, "Game The Sequel"},
		{"What?/Why*", "WhatWhy"},
		{"Trailing dots...", "Trailing dots"},
		{"tab\tname", "tabname"},
		{"  spaced  ", "spaced"},
		{`<>:"/\|?*`, "_"},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.want, SanitizeName(tt.in))
		})
	}
}

func TestArchive_Scan(t *testing.T) {
	f := newFixture(t)
	ctx := logging.TestContext(t)
	f.write(f.documents("Example", "save.dat"), "x", baseTime)
	_, err := f.engine.BackupApplication(ctx, "Example: Deluxe", f.resolver(), []string{"{Documents}/Example/save.dat"})
	require.NoError(t, err)

	archive := f.engine.Archive()
	f.write(filepath.Join(archive.Root(), "Broken", manifest.FileName), "entries: []", baseTime)
	require.NoError(t, os.MkdirAll(filepath.Join(archive.Root(), ".trash"), 0o755))
	require.NoError(t, os.MkdirAll(filepath.Join(archive.Root(), "NoManifest"), 0o755))

	stored, err := archive.Scan()
	require.NoError(t, err)
	require.Len(t, stored, 2)
	assert.Equal(t, "Broken", stored[0].Dir)
	assert.True(t, errors.Is(stored[0].Err, manifest.ErrMalformedManifest))
	assert.Equal(t, "Example Deluxe", stored[1].Dir)
	assert.Equal(t, "Example: Deluxe", stored[1].Name())

	names, err := archive.Applications()
	require.NoError(t, err)
	assert.Equal(t, []string{"Example: Deluxe"}, names)

	empty, err := NewArchive(filepath.Join(f.root, "nowhere")).Scan()
	require.NoError(t, err)
	assert.Empty(t, empty)
}

func TestBackup_InstallDirWithGlobSyntax(t *testing.T) {
	for _, dir := range []string{"Game [GOTY]", "Game {Deluxe}", "Plain Game"} {
		t.Run(dir, func(t *testing.T) {
			f := newFixture(t)
			install := filepath.Join(f.root, "games", dir)
			f.write(filepath.Join(install, "save.dat"), "hp=3", baseTime)
			f.write(filepath.Join(install, "extra", "slot [1].sav"), "slot", baseTime)

			r := f.resolver(placeholder.WithInstallDir(install))
			rules := []string{"{GameRoot}/save.dat", "{GameRoot}/extra/*.sav"}
			changed, err := f.engine.BackupApplication(logging.TestContext(t), "Example", r, rules)
			require.NoError(t, err)
			assert.True(t, changed)

			var portables []string
			for _, e := range f.loadManifest("Example").Entries {
				portables = append(portables, e.PortablePath)
			}
			assert.Equal(t, []string{"{GameRoot}/save.dat", "{GameRoot}/extra/slot [1].sav"}, portables)
		})
	}
}

func TestBackup_IgnoresAbandonedTempFiles(t *testing.T) {
	f := newFixture(t)
	f.write(f.documents("Example", "save.dat"), "level=1", baseTime)
	f.write(f.documents("Example", ".savekeep-atomic-998877.tmp"), "partial", baseTime)

	_, err := f.engine.BackupApplication(logging.TestContext(t), "Example", f.resolver(), []string{"{Documents}/Example/*"})
	require.NoError(t, err)

	m := f.loadManifest("Example")
	require.Len(t, m.Entries, 1)
	assert.Equal(t, "{Documents}/Example/save.dat", m.Entries[0].PortablePath)
}
